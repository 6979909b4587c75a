package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/muttaqilab/studio/config"
	httpapi "github.com/muttaqilab/studio/internal/api/http"
	"github.com/muttaqilab/studio/internal/auth"
	"github.com/muttaqilab/studio/internal/content"
	"github.com/muttaqilab/studio/internal/store"
	"github.com/muttaqilab/studio/internal/store/firestore"
	"github.com/muttaqilab/studio/internal/store/postgres"
	"github.com/muttaqilab/studio/internal/store/redisstore"
)

func OpenRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("REDIS_ADDR is not set")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func OpenFirebase(ctx context.Context, cfg *config.FirebaseConfig) (*firebase.App, error) {
	return auth.InitializeFirebase(ctx, cfg)
}

// OpenStore opens the configured backend. A nil store with a nil error
// means the backend's primary key is absent and the service runs on its
// local defaults.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Remote, httpapi.Pinger, error) {
	if !cfg.StoreConfigured() {
		logger.Warn("store not configured", "backend", cfg.Store.Backend)
		return nil, nil, nil
	}

	switch cfg.Store.Backend {
	case config.BackendFirestore:
		app, err := OpenFirebase(ctx, &cfg.Firebase)
		if err != nil {
			return nil, nil, err
		}
		client, err := app.Firestore(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("firestore client: %w", err)
		}
		ping := func(ctx context.Context) error {
			_, err := client.Collection(content.CollectionSettings).Doc(content.SettingsSocialsDoc).Get(ctx)
			if status.Code(err) == codes.NotFound {
				return nil
			}
			return err
		}
		logger.Info("store opened", "backend", cfg.Store.Backend, "project", cfg.Firebase.ProjectID)
		return firestore.New(client), ping, nil

	case config.BackendRedis:
		client, err := OpenRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("store opened", "backend", cfg.Store.Backend, "addr", cfg.Redis.Addr)
		return redisstore.New(client), func(ctx context.Context) error { return client.Ping(ctx).Err() }, nil

	case config.BackendPostgres:
		pool, err := OpenDB(ctx, DBOptions{DSN: cfg.Database.DSN})
		if err != nil {
			return nil, nil, err
		}
		pg := postgres.New(pool, cfg.Database.DSN)
		if err := pg.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		logger.Info("store opened", "backend", cfg.Store.Backend)
		return pg, pool.Ping, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

// OpenAuth picks the console identity provider: Firebase sign-in when an
// API key is set, else the static admin account, else none. Tokens are
// verified with the Admin SDK only when a project is configured.
func OpenAuth(ctx context.Context, cfg *config.Config, logger *slog.Logger) (auth.Provider, error) {
	switch {
	case cfg.Firebase.APIKey != "":
		var verifier auth.TokenVerifier
		if cfg.Firebase.ProjectID != "" || cfg.Firebase.CredentialsPath != "" {
			app, err := OpenFirebase(ctx, &cfg.Firebase)
			if err != nil {
				return nil, err
			}
			client, err := app.Auth(ctx)
			if err != nil {
				return nil, fmt.Errorf("firebase auth client: %w", err)
			}
			verifier = client
		}
		logger.Info("auth provider", "kind", "firebase", "verified", verifier != nil)
		return auth.NewFirebase(cfg.Firebase.APIKey, verifier), nil

	case cfg.StaticAdminConfigured():
		logger.Info("auth provider", "kind", "static", "email", cfg.Admin.Email)
		return auth.NewStatic(cfg.Admin.Email, cfg.Admin.PasswordHash), nil
	}

	logger.Warn("no auth provider configured, console is closed")
	return nil, nil
}
