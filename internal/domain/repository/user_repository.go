package repository

import (
	"context"
	"errors"

	"github.com/pavelkhrustalyov/energy-app-local/internal/domain/entity"
)

// ErrNotFound is returned by repositories when the addressed row does not exist.
var ErrNotFound = errors.New("not found")

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// UpdateProfile applies patch and returns the updated record.
	// A missing user yields (nil, nil), mirroring find-one-and-update.
	UpdateProfile(ctx context.Context, id string, patch entity.ProfilePatch) (*entity.User, error)
	// SetAvatar stores filename and returns the avatar it replaced.
	SetAvatar(ctx context.Context, id, filename string) (previous *string, err error)
	Delete(ctx context.Context, id string) error
}
