package application

import "github.com/pavelkhrustalyov/energy-app-local/internal/domain/entity"

// Requester is the authenticated caller of an operation.
type Requester struct {
	ID   string
	Role entity.Role
}

func (r Requester) IsAdmin() bool { return r.Role.IsAdmin() }

// AuthorizeUpdate allows admins to edit anyone and users to edit themselves.
func AuthorizeUpdate(r Requester, targetID string) error {
	if r.IsAdmin() || r.ID == targetID {
		return nil
	}
	return ErrEditForbidden
}

// AuthorizeDelete applies the checks in a fixed order: existence, role, self.
func AuthorizeDelete(r Requester, targetID string, targetExists bool) error {
	if !targetExists {
		return ErrNotFound
	}
	if !r.IsAdmin() {
		return ErrNotAdmin
	}
	if r.ID == targetID {
		return ErrSelfDelete
	}
	return nil
}
