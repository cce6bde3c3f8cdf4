package application

import (
	"github.com/oksasatya/go-access-control/internal/domain/entity"
	"github.com/oksasatya/go-access-control/pkg/helpers"
)

// Principal is the identity extracted from a verified access token.
type Principal struct {
	SubjectID string
	Email     string
	Role      entity.Role
}

func PrincipalFromClaims(c *helpers.Claims) *Principal {
	if c == nil {
		return nil
	}
	return &Principal{SubjectID: c.Subject, Email: c.Email, Role: entity.Role(c.Role)}
}

// RequireRole succeeds only when p carries exactly the required role.
// Roles form no hierarchy.
func RequireRole(p *Principal, required entity.Role) error {
	if p == nil {
		return ErrUnauthenticated
	}
	if p.Role != required {
		return ErrForbidden
	}
	return nil
}

// RequireSelfOrRole lets a principal act on its own record, or on any record with the given role.
func RequireSelfOrRole(p *Principal, subjectID string, role entity.Role) error {
	if p == nil {
		return ErrUnauthenticated
	}
	if p.SubjectID == subjectID {
		return nil
	}
	return RequireRole(p, role)
}
