package application

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/config"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/repository"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/service"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/transport/mcp"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/transport/rest"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/transport/websocket"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/usecase"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

const (
	purgeInterval = time.Minute
	secretSize    = 32
)

type store interface {
	repository.Store
	Close() error
}

// RunApp - runs the HTTP server (REST, websocket feed and MCP endpoint) until SIGINT/SIGTERM.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	sessionStore, err := openStore(ctx, logger, conf)
	if err != nil {
		return err
	}

	defer func() {
		if err = sessionStore.Close(); err != nil {
			log.Error("could not close storage", "error", err)
		}
	}()

	hub := websocket.NewHub(logger)
	defer hub.Close()

	manager := newSessionManager(logger, conf, sessionStore, hub)
	mcpServer := mcp.NewServer(logger, manager)

	var restOptions []rest.Option
	if !conf.Auth.Disabled {
		users, err := newUserService(logger, conf, sessionStore)
		if err != nil {
			return err
		}

		restOptions = append(restOptions, rest.WithAuth(users, conf.Auth.Required))
	}

	restServer := rest.NewServer(logger, manager, hub, mcpServer, restOptions...)

	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		httpErrCh <- restServer.Start(ctx, conf.HTTPPort)
	}()

	select {
	case err = <-httpErrCh:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return <-httpErrCh
	}
}

// RunMCPStdio - serves the MCP tools on stdin/stdout. Logs must not go to stdout in this mode.
func RunMCPStdio(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessionStore, err := openStore(ctx, logger, conf)
	if err != nil {
		return err
	}

	defer func() {
		if err = sessionStore.Close(); err != nil {
			log.Error("could not close storage", "error", err)
		}
	}()

	manager := newSessionManager(logger, conf, sessionStore, nil)

	log.Info("Serving MCP over stdio")

	return mcp.NewServer(logger, manager).ServeStdio()
}

func newSessionManager(logger *slog.Logger, conf *config.Config, sessionStore store, notifier usecase.Notifier) usecase.SessionManager {
	sessionRepo := repository.NewSessionRepository(sessionStore)
	gameService := service.NewGameService(sessionRepo, conf.Session.TTL)
	gamePlayService := service.NewGamePlayService(gameService, service.NewBotService(nil))

	return usecase.NewSessionManager(logger, gameService, gamePlayService, notifier)
}

// newUserService - login sessions share the game store under their own key prefixes.
func newUserService(logger *slog.Logger, conf *config.Config, sessionStore store) (service.UserService, error) {
	secret := conf.Auth.Secret
	if secret == "" {
		generated, err := randomSecret()
		if err != nil {
			return nil, err
		}

		logger.Warn("auth secret is not set, login sessions will not survive a restart", "component", "app")
		secret = generated
	}

	authService, err := service.NewAuthService(secret)
	if err != nil {
		return nil, fmt.Errorf("could not create auth service: %w", err)
	}

	return service.NewUserService(repository.NewUserRepository(sessionStore), authService, conf.Auth.TTL), nil
}

func randomSecret() (string, error) {
	buf := make([]byte, secretSize)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("could not generate auth secret: %w", err)
	}

	return hex.EncodeToString(buf), nil
}

func openStore(ctx context.Context, logger *slog.Logger, conf *config.Config) (store, error) {
	log := logger.With("component", "app", "driver", conf.Storage.Driver)

	switch conf.Storage.Driver {
	case config.DriverSQLite:
		sqliteStorage, err := storage.NewSQLiteStorage(ctx, conf.Storage.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("could not open sqlite storage: %w", err)
		}

		go purgeExpired(ctx, log, sqliteStorage)

		log.Info("Using sqlite storage", "path", conf.Storage.SQLitePath)

		return sqliteStorage, nil
	case config.DriverRedis:
		redisAddrString := conf.Redis.GetRedisAddr()
		if redisAddrString == "" {
			return nil, ErrAddrNotFound
		}

		redisStorage, err := storage.NewRedisStorage(ctx, storage.RedisOptions{
			Addr:         redisAddrString,
			Password:     conf.Redis.Password,
			DB:           conf.Redis.DB,
			DialTimeout:  conf.Redis.DialTimeout,
			ReadTimeout:  conf.Redis.ReadTimeout,
			WriteTimeout: conf.Redis.WriteTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		log.Info("Using redis storage", "addr", redisAddrString)

		return redisStorage, nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownDriver, conf.Storage.Driver)
	}
}

// purgeExpired - Redis expires keys itself; the sqlite table needs sweeping.
func purgeExpired(ctx context.Context, log *slog.Logger, sqliteStorage *storage.SQLiteStorage) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := sqliteStorage.PurgeExpired(ctx)
			if errors.Is(err, storage.ErrNotInitialized) {
				return
			}

			if err != nil {
				log.Error("failed to purge expired games", "error", err)
				continue
			}

			if removed > 0 {
				log.Debug("purged expired games", "removed", removed)
			}
		}
	}
}
