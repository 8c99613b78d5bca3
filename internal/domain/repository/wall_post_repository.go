package repository

import (
	"context"

	"github.com/pavelkhrustalyov/energy-app-local/internal/domain/entity"
)

// WallPostRepository persists wall posts and serves recipient listings.
type WallPostRepository interface {
	Create(ctx context.Context, p *entity.WallPost) error
	// ListByRecipient returns the recipient's posts newest first with the
	// author expanded and redacted.
	ListByRecipient(ctx context.Context, recipientID string) ([]entity.WallPostView, error)
}
