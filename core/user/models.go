package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/identity"
)

type User struct {
	ID           string        `json:"id" db:"id"`
	Name         string        `json:"name" db:"name"`
	Email        string        `json:"email" db:"email"`
	Role         identity.Role `json:"role" db:"role"`
	AvatarURL    string        `json:"avatar_url" db:"avatar_url"`
	IsActive     bool          `json:"is_active" db:"is_active"`
	PasswordHash string        `json:"-" db:"password_hash"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"` // UTC
	UpdatedAt    time.Time     `json:"updated_at" db:"updated_at"` // UTC
	LastLogin    null.Time     `json:"last_login" db:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(pwd))
}

func (u *User) IsAdmin() bool {
	return u.Role == identity.RoleAdmin
}

// Actor returns the request identity of the user.
func (u User) Actor() identity.Actor {
	return identity.Actor{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		AvatarURL: u.AvatarURL,
	}
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name            string        `json:"name" validate:"required"`
	Email           string        `json:"email" validate:"required,email"`
	Role            identity.Role `json:"role" validate:"omitempty,userrole"`
	AvatarURL       string        `json:"avatar_url" validate:"omitempty,url"`
	Password        string        `json:"password" validate:"required"`
	PasswordConfirm string        `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (nu *NewUser) Validate(validate *validator.Validate, svc *Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	if nu.Role == "" {
		nu.Role = identity.RoleLearner
	}

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.checkUniqueness(nu.Email)
}

type GetFilter struct {
	ID    string
	Email string
}
