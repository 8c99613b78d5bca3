package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pavelkhrustalyov/energy-app-local/internal/domain/repository"
)

type PostRepository struct {
	pool *pgxpool.Pool
}

func NewPostRepository(pool *pgxpool.Pool) *PostRepository {
	return &PostRepository{pool: pool}
}

func (r *PostRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

type CommentRepository struct {
	pool *pgxpool.Pool
}

func NewCommentRepository(pool *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{pool: pool}
}

func (r *CommentRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

var (
	_ repository.PostRepository    = (*PostRepository)(nil)
	_ repository.CommentRepository = (*CommentRepository)(nil)
)
