package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/pavelkhrustalyov/energy-app-local/config"
	"github.com/pavelkhrustalyov/energy-app-local/internal/domain/entity"
	"github.com/pavelkhrustalyov/energy-app-local/pkg/helpers"
)

type seedUser struct {
	login    string
	password string
	email    string
	name     string
	role     entity.Role
}

var seedUsers = []seedUser{
	{login: "admin", password: "password123", email: "admin@energy.local", name: "Admin", role: entity.RoleAdmin},
	{login: "demo", password: "password123", email: "demo@energy.local", name: "Demo", role: entity.RoleUser},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	jwt := helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.AccessTTL)
	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer func() { _ = rdb.Close() }()
	sessions := cfg.RedisAddr != "" && rdb.Ping(ctx).Err() == nil
	if !sessions {
		fmt.Println("redis unavailable; sessions not written (tokens only work with REDIS_ADDR empty)")
	}

	for _, su := range seedUsers {
		hash, err := helpers.HashPassword(su.password)
		if err != nil {
			log.Fatalf("failed to hash password: %v", err)
		}

		var id string
		err = db.QueryRowContext(ctx, `
			INSERT INTO users (login, password_hash, email, name, role)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (login) DO UPDATE SET role = EXCLUDED.role, updated_at = now()
			RETURNING id
		`, su.login, hash, su.email, su.name, string(su.role)).Scan(&id)
		if err != nil {
			log.Fatalf("failed to seed user %s: %v", su.login, err)
		}

		sid := uuid.NewString()
		if sessions {
			key := helpers.SessionKey(id)
			if err := rdb.HSet(ctx, key, map[string]any{
				"user_id": id,
				"role":    string(su.role),
				"sid":     sid,
			}).Err(); err != nil {
				log.Fatalf("failed to write session: %v", err)
			}
			_ = rdb.Expire(ctx, key, cfg.AccessTTL).Err()
		}

		token, exp, err := jwt.GenerateAccessToken(id, string(su.role), sid)
		if err != nil {
			log.Fatalf("failed to sign token: %v", err)
		}
		fmt.Printf("seeded %s: id=%s login=%s password=%s\n  token (expires %s): %s\n",
			su.role, id, su.login, su.password, exp.Format(time.RFC3339), token)
	}
}
