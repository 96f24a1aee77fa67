package application

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/config"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	return &config.Config{
		LogLevel: "info",
		HTTPPort: "0",
		Storage: config.Storage{
			Driver:     config.DriverSQLite,
			SQLitePath: filepath.Join(t.TempDir(), "games.db"),
		},
		Session: config.Session{TTL: time.Hour},
	}
}

func TestOpenStore(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))

	t.Run("sqlite driver", func(t *testing.T) {
		conf := testConfig(t)

		sessionStore, err := openStore(ctx, logger, conf)
		require.NoError(t, err)
		t.Cleanup(func() {
			_ = sessionStore.Close()
		})

		// When: the manager is built on top of it
		manager := newSessionManager(logger, conf, sessionStore, nil)
		session, err := manager.CreateSession(ctx, "p1", "Alice", entity.ModeVsAI)

		// Then: the game round-trips through the store
		require.NoError(t, err)

		stored, err := manager.GetSession(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, session.ID, stored.ID)
		require.NoError(t, manager.Health(ctx))
	})

	t.Run("redis driver without an address", func(t *testing.T) {
		conf := testConfig(t)
		conf.Storage.Driver = config.DriverRedis

		_, err := openStore(ctx, logger, conf)

		require.ErrorIs(t, err, ErrAddrNotFound)
	})

	t.Run("unknown driver", func(t *testing.T) {
		conf := testConfig(t)
		conf.Storage.Driver = "mongo"

		_, err := openStore(ctx, logger, conf)

		require.ErrorIs(t, err, config.ErrUnknownDriver)
	})
}

func TestNewUserService(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(logs, nil))

	conf := testConfig(t)
	conf.Auth = config.Auth{TTL: 24 * time.Hour}

	sessionStore, err := openStore(ctx, logger, conf)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sessionStore.Close()
	})

	// Given: no secret is configured
	users, err := newUserService(logger, conf, sessionStore)
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "auth secret is not set")

	// When: a user logs in
	login, err := users.Login(ctx, "Alice")
	require.NoError(t, err)

	// Then: the session verifies against the same store
	user, err := users.Verify(ctx, login.SessionID)
	require.NoError(t, err)
	assert.Equal(t, login.User.ID, user.ID)

	raw, err := sessionStore.Get(ctx, "user:"+user.ID)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"username":"Alice"`)

	// And: a second service with its own random secret does not accept the session
	other, err := newUserService(logger, conf, sessionStore)
	require.NoError(t, err)

	_, err = other.Verify(ctx, login.SessionID)
	require.Error(t, err)
}

func TestRandomSecret(t *testing.T) {
	first, err := randomSecret()
	require.NoError(t, err)
	second, err := randomSecret()
	require.NoError(t, err)

	assert.Len(t, first, 2*secretSize)
	assert.NotEqual(t, first, second)
}
