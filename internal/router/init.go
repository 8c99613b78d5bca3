package router

import (
	"github.com/pavelkhrustalyov/energy-app-local/internal/application"
	"github.com/pavelkhrustalyov/energy-app-local/internal/container"
	repo "github.com/pavelkhrustalyov/energy-app-local/internal/domain/repository"
	"github.com/pavelkhrustalyov/energy-app-local/internal/infrastructure/memory"
	pginfra "github.com/pavelkhrustalyov/energy-app-local/internal/infrastructure/postgres"
	handlers "github.com/pavelkhrustalyov/energy-app-local/internal/interface/http"
	"github.com/pavelkhrustalyov/energy-app-local/internal/router/modules"
	"github.com/pavelkhrustalyov/energy-app-local/pkg/imaging"
)

type repositories struct {
	Users     repo.UserRepository
	Posts     repo.PostRepository
	Comments  repo.CommentRepository
	WallPosts repo.WallPostRepository
}

// buildRepositories uses Postgres when a pool is registered and the memory
// store otherwise.
func buildRepositories() repositories {
	if pool := container.GetPGPool(); pool != nil {
		return repositories{
			Users:     pginfra.NewUserRepository(pool),
			Posts:     pginfra.NewPostRepository(pool),
			Comments:  pginfra.NewCommentRepository(pool),
			WallPosts: pginfra.NewWallPostRepository(pool),
		}
	}
	store := container.GetMemStore()
	if store == nil {
		store = memory.NewStore()
		container.SetMemStore(store)
	}
	return repositories{
		Users:     store.Users(),
		Posts:     store.Posts(),
		Comments:  store.Comments(),
		WallPosts: store.WallPosts(),
	}
}

// Services are the application services behind the HTTP modules.
type Services struct {
	Profile *application.ProfileService
	Avatar  *application.AvatarService
	Wall    *application.WallService
}

// BuildServices wires the application services from the container.
func BuildServices() *Services {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	rdb := container.GetRedis()
	repos := buildRepositories()

	cache := application.NewProfileCache(rdb, cfg.ProfileCacheTTL, logger)
	index := application.NewProfileIndex(container.GetES(), cfg.ESUsersIndex, logger)

	profile := application.NewProfileService(repos.Users, repos.Posts, repos.Comments, logger)
	profile.Cache = cache
	profile.Index = index
	if rdb != nil {
		profile.Journal = application.NewRedisCascadeJournal(rdb)
	}
	if pub := container.GetRabbitPub(); pub != nil {
		profile.Notify = application.NewNotifier(pub, cfg.AppName, logger)
	}

	avatarCfg := application.DefaultAvatarConfig()
	avatarCfg.MaxBytes = cfg.AvatarMaxBytes
	avatarCfg.RemoveSuperseded = cfg.AvatarRemoveSuperseded
	avatar := application.NewAvatarService(repos.Users, imaging.NewTranscoder(), container.GetFileStore(), avatarCfg, logger)
	avatar.Cache = cache
	avatar.Index = index

	wall := application.NewWallService(repos.Users, repos.WallPosts, logger)

	return &Services{Profile: profile, Avatar: avatar, Wall: wall}
}

// InitModules registers every HTTP module with the router registry.
// This function should be called once during application startup.
func InitModules(r *Registry, svc *Services) {
	logger := container.GetLogger()
	jwt := container.GetJWT()
	rdb := container.GetRedis()

	r.Add(modules.NewProfileModule(
		handlers.NewProfileHandler(svc.Profile, logger),
		handlers.NewAvatarHandler(svc.Avatar, logger),
		jwt, rdb,
	))
	r.Add(modules.NewWallModule(handlers.NewWallHandler(svc.Wall, logger), jwt, rdb))
	if cfg := container.GetConfig(); cfg != nil && cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(jwt, rdb))
	}
}
