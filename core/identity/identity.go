// Package identity resolves who is acting on a request.
// The Actor is resolved once per request by the transport layer and passed
// explicitly to every core operation; core services check it at their boundary.
package identity

import "github.com/trezcool/darasa/core"

type Role string

const (
	RoleLearner Role = "learner"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleLearner || r == RoleAdmin
}

// Actor is an authenticated user of the system.
type Actor struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// RequireActor returns the resolved actor, or an authentication error when there is none.
func RequireActor(actor *Actor) (Actor, error) {
	if actor == nil || actor.ID == "" {
		return Actor{}, core.NewAuthenticationError("authentication required")
	}
	return *actor, nil
}

// RequireAdmin is RequireActor restricted to admins.
func RequireAdmin(actor *Actor) (Actor, error) {
	a, err := RequireActor(actor)
	if err != nil {
		return Actor{}, err
	}
	if !a.IsAdmin() {
		return Actor{}, core.NewAuthorizationError("permission denied")
	}
	return a, nil
}
