package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/muttaqilab/studio/config"
	"github.com/muttaqilab/studio/internal/auth"
)

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestSetGinMode(t *testing.T) {
	t.Cleanup(func() { gin.SetMode(gin.TestMode) })

	SetGinMode("production")
	assert.Equal(t, gin.ReleaseMode, gin.Mode())
	SetGinMode("development")
	assert.Equal(t, gin.DebugMode, gin.Mode())
}

func TestOpenDB_RequiresDSN(t *testing.T) {
	_, err := OpenDB(context.Background(), DBOptions{})
	assert.ErrorContains(t, err, "DB_DSN")

	_, err = OpenDB(context.Background(), DBOptions{DSN: "postgres://%zz"})
	assert.Error(t, err)
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	t.Run("missing primary key runs unconfigured", func(t *testing.T) {
		remote, ping, err := OpenStore(ctx, &config.Config{Store: config.StoreConfig{Backend: config.BackendFirestore}}, quietLogger())
		require.NoError(t, err)
		assert.Nil(t, remote)
		assert.Nil(t, ping)
	})

	t.Run("redis", func(t *testing.T) {
		mr, err := miniredis.Run()
		require.NoError(t, err)
		t.Cleanup(mr.Close)

		cfg := &config.Config{
			Store: config.StoreConfig{Backend: config.BackendRedis},
			Redis: config.RedisConfig{Addr: mr.Addr()},
		}
		remote, ping, err := OpenStore(ctx, cfg, quietLogger())
		require.NoError(t, err)
		t.Cleanup(func() { _ = remote.Close() })
		assert.NoError(t, ping(ctx))
	})

	t.Run("unreachable redis", func(t *testing.T) {
		_, err := OpenRedis(ctx, config.RedisConfig{Addr: "127.0.0.1:1"})
		assert.Error(t, err)
	})

	t.Run("firestore without a project", func(t *testing.T) {
		cfg := &config.Config{
			Store:    config.StoreConfig{Backend: config.BackendFirestore},
			Firebase: config.FirebaseConfig{APIKey: "key"},
		}
		_, _, err := OpenStore(ctx, cfg, quietLogger())
		assert.ErrorContains(t, err, "FIREBASE_PROJECT_ID")
	})
}

func TestOpenAuth(t *testing.T) {
	ctx := context.Background()

	p, err := OpenAuth(ctx, &config.Config{}, quietLogger())
	require.NoError(t, err)
	assert.Nil(t, p)

	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)
	p, err = OpenAuth(ctx, &config.Config{Admin: config.AdminConfig{Email: "a@b.co", PasswordHash: string(hash)}}, quietLogger())
	require.NoError(t, err)
	assert.IsType(t, &auth.Static{}, p)

	p, err = OpenAuth(ctx, &config.Config{Firebase: config.FirebaseConfig{APIKey: "key"}}, quietLogger())
	require.NoError(t, err)
	fb, ok := p.(*auth.Firebase)
	require.True(t, ok)
	assert.Nil(t, fb.Verifier)
}
