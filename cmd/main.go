package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/pavelkhrustalyov/energy-app-local/config"
	"github.com/pavelkhrustalyov/energy-app-local/internal/application"
	"github.com/pavelkhrustalyov/energy-app-local/internal/container"
	"github.com/pavelkhrustalyov/energy-app-local/internal/infrastructure/filestore"
	"github.com/pavelkhrustalyov/energy-app-local/internal/infrastructure/memory"
	pginfra "github.com/pavelkhrustalyov/energy-app-local/internal/infrastructure/postgres"
	"github.com/pavelkhrustalyov/energy-app-local/internal/interface/middleware"
	"github.com/pavelkhrustalyov/energy-app-local/internal/router"
	"github.com/pavelkhrustalyov/energy-app-local/pkg/helpers"
	"github.com/pavelkhrustalyov/energy-app-local/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container.SetConfig(cfg)
	container.SetLogger(logger)

	// Entity store
	switch cfg.StoreDriver {
	case "memory":
		logger.Warn("STORE_DRIVER=memory; data is lost on restart")
		container.SetMemStore(memory.NewStore())
	default:
		pool, err := pginfra.NewPool(ctx, cfg)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer pool.Close()
		if err := runMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
		container.SetPGPool(pool)
	}

	// Redis (sessions, cache, cascade journal, rate limiting)
	if cfg.RedisAddr != "" {
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := rdb.Ping(pctx).Err()
		cancel()
		if err != nil {
			logger.WithError(err).Warn("redis unavailable; sessions, cache and rate limits disabled")
			_ = rdb.Close()
		} else {
			defer func() { _ = rdb.Close() }()
			container.SetRedis(rdb)
		}
	}

	// Avatar file storage
	store, closeStore, err := buildFileStore(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to init avatar storage: %v", err)
	}
	defer closeStore()
	container.SetFileStore(store)

	// Elasticsearch
	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			logger.WithError(err).Warn("elasticsearch disabled")
		} else {
			container.SetES(es)
		}
	}

	// RabbitMQ notifications
	if cfg.NotifyEnabled {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQNotifyQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable; notifications disabled")
		} else {
			defer pub.Close()
			container.SetRabbitPub(pub)
		}
	}

	container.SetJWT(helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.AccessTTL))

	// Gin engine and global middleware
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RealIP())
	r.Use(middleware.RequestIDMiddleware())
	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowOrigins = []string{"http://localhost:3000"}
	}
	r.Use(cors.New(corsCfg))
	if cfg.Env == "development" || cfg.HTTPLogEnabled {
		r.Use(gin.Logger())
	}
	if cfg.StorageDriver != "gcs" {
		r.Static("/images/avatars", cfg.AvatarDir)
	}

	services := router.BuildServices()
	reg := router.NewRegistry(r)
	router.InitModules(reg, services)
	reg.RegisterAll()

	go sweepCascades(ctx, services.Profile, cfg.CascadeSweepInterval, logger)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Errorf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}

func buildFileStore(ctx context.Context, cfg *config.Config) (application.FileStore, func(), error) {
	switch cfg.StorageDriver {
	case "gcs":
		client, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			return nil, nil, err
		}
		container.SetGCS(client)
		store, err := filestore.NewGCS(client, cfg.GCSBucket, cfg.AvatarPrefix)
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return store, func() { _ = client.Close() }, nil
	case "local", "":
		store, err := filestore.NewLocal(cfg.AvatarDir)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
}

// sweepCascades periodically completes account removals that stopped part way.
func sweepCascades(ctx context.Context, svc *application.ProfileService, every time.Duration, logger *logrus.Logger) {
	if svc.Journal == nil || every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := svc.ResumePendingCascades(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.WithError(err).Warn("cascade sweep failed")
				continue
			}
			if n > 0 {
				logger.WithField("resumed", n).Info("cascade sweep completed removals")
			}
		}
	}
}

func runMigrations(dsn string, migrationsDir string, logger *logrus.Logger) error {
	// Open sql DB via pgx stdlib
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsDir), "postgres", driver)
	if err != nil {
		return err
	}
	logger.Info("running migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	return err
}
