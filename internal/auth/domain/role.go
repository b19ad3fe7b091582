package domain

import (
	"strings"

	autherror "github.com/hendisantika/jwt-auth-service/internal/errors"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

const (
	AuthorityUser  = "ROLE_USER"
	AuthorityAdmin = "ROLE_ADMIN"
)

// ParseRole accepts role names case-insensitively.
func ParseRole(s string) (Role, error) {
	switch strings.ToUpper(s) {
	case string(RoleUser):
		return RoleUser, nil
	case string(RoleAdmin):
		return RoleAdmin, nil
	default:
		return "", autherror.ErrUnknownRole
	}
}

// Authorities maps a role onto the authority list embedded in tokens and
// responses. Admins keep the plain user authority as well.
func (r Role) Authorities() []string {
	switch r {
	case RoleAdmin:
		return []string{AuthorityAdmin, AuthorityUser}
	case RoleUser:
		return []string{AuthorityUser}
	default:
		return nil
	}
}
