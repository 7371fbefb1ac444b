package middleware

import (
	"fmt"

	"github.com/authkit/user-service/internal/core/domain"
)

// PolicyKind tags how a route is protected.
type PolicyKind int

const (
	PolicyPublic PolicyKind = iota
	PolicyAuthenticated
	PolicyRoles
)

// Policy is the access requirement a route declares when it is registered.
// For PolicyRoles, an empty Roles set means any authenticated user.
type Policy struct {
	Kind  PolicyKind
	Roles []domain.Role
}

func Public() Policy {
	return Policy{Kind: PolicyPublic}
}

func Authenticated() Policy {
	return Policy{Kind: PolicyAuthenticated}
}

// Roles requires an authenticated user holding at least one of roles.
func Roles(roles ...domain.Role) Policy {
	return Policy{Kind: PolicyRoles, Roles: roles}
}

func (p Policy) String() string {
	switch p.Kind {
	case PolicyPublic:
		return "public"
	case PolicyAuthenticated:
		return "authenticated"
	case PolicyRoles:
		return fmt.Sprintf("roles%v", p.Roles)
	default:
		return fmt.Sprintf("policy(%d)", int(p.Kind))
	}
}
