package postgres

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pavelkhrustalyov/energy-app-local/internal/domain/entity"
	"github.com/pavelkhrustalyov/energy-app-local/internal/domain/repository"
)

type WallPostRepository struct {
	pool *pgxpool.Pool
}

func NewWallPostRepository(pool *pgxpool.Pool) *WallPostRepository {
	return &WallPostRepository{pool: pool}
}

func (r *WallPostRepository) Create(ctx context.Context, p *entity.WallPost) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO wall_posts (author_id, recipient_id, text, date)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, p.AuthorID, p.RecipientID, p.Text, p.Date)

	return row.Scan(&p.ID, &p.CreatedAt)
}

// ListByRecipient left-joins the author so posts of removed users are still
// listed with a nil author.
func (r *WallPostRepository) ListByRecipient(ctx context.Context, recipientID string) ([]entity.WallPostView, error) {
	query, args, err := psql.
		Select(
			"w.id", "w.recipient_id", "w.text", "w.date", "w.created_at",
			"u.id", "u.role", "u.name", "u.lastname", "u.patronymic", "u.birthday",
			"u.phone", "u.avatar", "u.created_at", "u.updated_at",
		).
		From("wall_posts w").
		LeftJoin("users u ON u.id = w.author_id").
		Where(sq.Eq{"w.recipient_id": recipientID}).
		OrderBy("w.date DESC", "w.created_at DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]entity.WallPostView, 0)
	for rows.Next() {
		var (
			v                                 entity.WallPostView
			authorID, role                    *string
			name, lastname, patronymic, phone *string
			birthday                          *time.Time
			avatar                            *string
			createdAt, updatedAt              *time.Time
		)
		if err := rows.Scan(&v.ID, &v.RecipientID, &v.Text, &v.Date, &v.CreatedAt,
			&authorID, &role, &name, &lastname, &patronymic, &birthday,
			&phone, &avatar, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		if authorID != nil {
			v.Author = &entity.PublicUser{
				ID:         *authorID,
				Role:       entity.Role(deref(role)),
				Name:       deref(name),
				Lastname:   deref(lastname),
				Patronymic: deref(patronymic),
				Birthday:   birthday,
				Phone:      deref(phone),
				Avatar:     avatar,
			}
			if createdAt != nil {
				v.Author.CreatedAt = *createdAt
			}
			if updatedAt != nil {
				v.Author.UpdatedAt = *updatedAt
			}
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var _ repository.WallPostRepository = (*WallPostRepository)(nil)
