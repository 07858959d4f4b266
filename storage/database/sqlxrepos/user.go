package sqlxrepos

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

const userColumns = `id, name, email, role, avatar_url, is_active, password_hash, created_at, updated_at, last_login`

type userRepository struct {
	baseRepository
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(exec core.DBExecutor, driverName string) *userRepository {
	return &userRepository{baseRepository: newBase(exec, driverName)}
}

func (repo userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedIDs []string, exec ...core.DBExecutor) error {
	q := `SELECT COUNT(*) FROM users WHERE email = ?`
	args := []interface{}{email}
	if len(excludedIDs) > 0 {
		q += ` AND id NOT IN (?)`
		args = append(args, excludedIDs)
	}
	q, args, err := repo.in(q, args...)
	if err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}

	n, err := repo.count(ctx, repo.getExec(exec), q, args...)
	if err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if n > 0 {
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	usr.ID = uuid.New().String()
	q := repo.rebind(`INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := repo.getExec(exec).ExecContext(
		ctx, q,
		usr.ID, usr.Name, usr.Email, usr.Role, usr.AvatarURL, usr.IsActive, usr.PasswordHash,
		usr.CreatedAt.UTC(), usr.UpdatedAt.UTC(), usr.LastLogin,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter, exec ...core.DBExecutor) (user.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE `
	var arg string
	switch {
	case filter.ID != "":
		if _, err := uuid.Parse(filter.ID); err != nil {
			return user.User{}, user.ErrNotFound
		}
		q += `id = ?`
		arg = filter.ID
	case filter.Email != "":
		q += `email = ?`
		arg = filter.Email
	default:
		return user.User{}, user.ErrNotFound
	}

	var usr user.User
	if err := repo.getOne(ctx, repo.getExec(exec), &usr, repo.rebind(q), arg); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "getting user")
	}
	return usr, nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	q := repo.rebind(`
		UPDATE users
		SET name = ?, email = ?, role = ?, avatar_url = ?, is_active = ?, password_hash = ?, updated_at = ?, last_login = ?
		WHERE id = ?`)
	res, err := repo.getExec(exec).ExecContext(
		ctx, q,
		usr.Name, usr.Email, usr.Role, usr.AvatarURL, usr.IsActive, usr.PasswordHash, usr.UpdatedAt.UTC(), usr.LastLogin,
		usr.ID,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}
