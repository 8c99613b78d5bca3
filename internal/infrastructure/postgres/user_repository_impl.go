package postgres

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pavelkhrustalyov/energy-app-local/internal/domain/entity"
	"github.com/pavelkhrustalyov/energy-app-local/internal/domain/repository"
)

const userColumns = "id, role, login, password_hash, email, name, lastname, patronymic, birthday, phone, avatar, created_at, updated_at"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	var role string
	if err := row.Scan(&u.ID, &role, &u.Login, &u.Password, &u.Email, &u.Name, &u.Lastname,
		&u.Patronymic, &u.Birthday, &u.Phone, &u.Avatar, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Role = entity.Role(role)
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	if u.Role == "" {
		u.Role = entity.RoleUser
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (role, login, password_hash, email, name, lastname, patronymic, birthday, phone, avatar)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`, string(u.Role), u.Login, u.Password, u.Email, u.Name, u.Lastname, u.Patronymic, u.Birthday, u.Phone, u.Avatar)

	return row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id string, patch entity.ProfilePatch) (*entity.User, error) {
	q := psql.Update("users").Set("updated_at", time.Now())
	if patch.Name != nil {
		q = q.Set("name", *patch.Name)
	}
	if patch.Lastname != nil {
		q = q.Set("lastname", *patch.Lastname)
	}
	if patch.Patronymic != nil {
		q = q.Set("patronymic", *patch.Patronymic)
	}
	if patch.Birthday != nil {
		q = q.Set("birthday", *patch.Birthday)
	}
	if patch.Phone != nil {
		q = q.Set("phone", *patch.Phone)
	}
	query, args, err := q.Where(sq.Eq{"id": id}).Suffix("RETURNING " + userColumns).ToSql()
	if err != nil {
		return nil, err
	}

	u, err := scanUser(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) SetAvatar(ctx context.Context, id, filename string) (*string, error) {
	var previous *string
	err := r.pool.QueryRow(ctx, `
		UPDATE users u
		SET avatar = $1, updated_at = now()
		FROM (SELECT id, avatar FROM users WHERE id = $2 FOR UPDATE) old
		WHERE u.id = old.id
		RETURNING old.avatar
	`, filename, id).Scan(&previous)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return previous, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
