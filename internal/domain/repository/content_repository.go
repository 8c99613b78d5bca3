package repository

import "context"

// PostRepository covers the post operations needed by account removal.
type PostRepository interface {
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

// CommentRepository covers the comment operations needed by account removal.
type CommentRepository interface {
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}
