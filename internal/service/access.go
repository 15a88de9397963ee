package service

import (
	"fmt"

	"github.com/alexanderramin/buildtrack/internal/domain"
)

func validateActor(actor domain.Principal) error {
	if err := actor.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return nil
}

// requireOperator allows the project's own builder or manager, and admins,
// to drive task progress and spend.
func requireOperator(actor domain.Principal, p *domain.Project) error {
	switch actor.Role {
	case domain.RoleAdmin:
		return nil
	case domain.RoleProjectManager:
		if p.ManagerID == actor.UserID {
			return nil
		}
	case domain.RoleBuilder:
		if p.BuilderID == actor.UserID {
			return nil
		}
	}
	return fmt.Errorf("%w: %s cannot operate project %d", ErrPermissionDenied, actor, p.ID)
}

// requireOwner allows only the project's builder, and admins, to edit the
// project itself.
func requireOwner(actor domain.Principal, p *domain.Project) error {
	if actor.Role == domain.RoleAdmin {
		return nil
	}
	if actor.Role == domain.RoleBuilder && p.BuilderID == actor.UserID {
		return nil
	}
	return fmt.Errorf("%w: %s does not own project %d", ErrPermissionDenied, actor, p.ID)
}
