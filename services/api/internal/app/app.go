package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"unievent/pkg/cache"
	"unievent/pkg/config"
	"unievent/pkg/database"
	"unievent/pkg/jwt"
	"unievent/pkg/logger"
	"unievent/pkg/s3"
	"unievent/services/api/internal/repo"
	"unievent/services/api/internal/repo/memory"
	"unievent/services/api/internal/repo/persistent"
	"unievent/services/api/internal/usecase"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// App owns the HTTP server and the connections behind it.
type App struct {
	cfg    *config.Config
	log    *logger.Logger
	db     *gorm.DB
	redis  *redis.Client
	server *http.Server
}

// New connects storage and builds the router. Failing to reach the database
// is fatal; redis and S3 are optional and only logged.
func New(cfg *config.Config, log *logger.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	jwtService, err := jwt.NewService(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, log: log}

	var store repo.Store
	var ping func(ctx context.Context) error
	if cfg.DBDriver == "memory" {
		log.Warn("Using in-memory storage; data is lost on restart")
		store = memory.NewStore()
	} else {
		db, err := database.New(cfg)
		if err != nil {
			log.Error("Failed to connect to database: %v", err)
			return nil, err
		}
		a.db = db
		store = persistent.NewStore(db)
		ping = func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}

	if cfg.RedisHost != "" {
		redisClient, err := cache.NewRedisClient(cfg)
		if err != nil {
			log.Warn("Failed to connect to redis: %v (continuing without cache)", err)
		} else {
			a.redis = redisClient
		}
	}

	var storage usecase.ObjectStorage
	if cfg.S3Enabled() {
		s3Client, err := s3.NewClient(cfg)
		if err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			err = s3Client.EnsureBucket(ctx)
			cancel()
		}
		if err != nil {
			log.Warn("Failed to initialize S3: %v (avatar uploads disabled)", err)
		} else {
			storage = s3Client
		}
	}

	router := NewRouter(Dependencies{
		Store:          store,
		Redis:          a.redis,
		Storage:        storage,
		JWT:            jwtService,
		Logger:         log,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		PostCacheTTL:   cfg.PostCacheTTL,
		Ping:           ping,
	})

	a.server = &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return a, nil
}

// Run serves until SIGINT or SIGTERM, then shuts down gracefully.
func (a *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.log.Info("UniEvent API starting on port %s", a.cfg.ServerPort)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		a.log.Error("Failed to start server: %v", err)
		a.close()
		return err
	case <-quit:
	}

	a.log.Info("Shutting down UniEvent API...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return a.Shutdown(ctx)
}

// Shutdown stops accepting requests, waits for in-flight ones and closes
// the connections.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	if err != nil {
		a.log.Error("Server forced to shutdown: %v", err)
	}
	a.close()
	a.log.Info("UniEvent API exited")
	return err
}

func (a *App) close() {
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				a.log.Error("Error closing database: %v", err)
			}
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Error("Error closing Redis: %v", err)
		}
	}
}

func (a *App) Handler() http.Handler {
	return a.server.Handler
}
