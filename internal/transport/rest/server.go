package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/usecase"
)

const (
	readTimeout     = 10 * time.Second
	writeTimeout    = 10 * time.Second
	idleTimeout     = 30 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Subscriber - streams live updates of one game to a websocket client.
type Subscriber interface {
	ServeWS(w http.ResponseWriter, r *http.Request, session *entity.Session)
}

type Server struct {
	logger  *slog.Logger
	manager usecase.SessionManager
	router  *mux.Router

	auth         Authenticator
	authRequired bool
}

// NewServer - subscriber and mcpHandler are optional; their routes are only mounted when set.
func NewServer(logger *slog.Logger, manager usecase.SessionManager, subscriber Subscriber, mcpHandler http.Handler, opts ...Option) *Server {
	s := &Server{
		logger:  logger.With("component", "rest"),
		manager: manager,
		router:  mux.NewRouter(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes(subscriber, mcpHandler)

	return s
}

func (that *Server) setupRoutes(subscriber Subscriber, mcpHandler http.Handler) {
	that.router.HandleFunc("/ping", that.handlePing).Methods(http.MethodGet)
	that.router.HandleFunc("/health", that.handleHealth).Methods(http.MethodGet)

	if that.auth != nil {
		auth := that.router.PathPrefix("/api/auth").Subrouter()
		auth.HandleFunc("/login", that.handleLogin).Methods(http.MethodPost)
		auth.HandleFunc("/verify/{sessionId}", that.handleVerify).Methods(http.MethodGet)
		auth.HandleFunc("/logout/{sessionId}", that.handleLogout).Methods(http.MethodPost)
	}

	api := that.router.PathPrefix("/api/game").Subrouter()
	if that.auth != nil {
		api.Use(that.sessionMiddleware)
	}

	api.HandleFunc("/create", that.handleCreateGame).Methods(http.MethodPost)
	api.HandleFunc("/join/{id}", that.handleJoinGame).Methods(http.MethodPost)
	api.HandleFunc("/move/{id}", that.handleMakeMove).Methods(http.MethodPost)
	api.HandleFunc("/abandon/{id}", that.handleAbandonGame).Methods(http.MethodPost)
	api.HandleFunc("/state/{id}", that.handleGetGame).Methods(http.MethodGet)
	api.HandleFunc("/list", that.handleListGames).Methods(http.MethodGet)
	api.HandleFunc("/{id}", that.handleDeleteGame).Methods(http.MethodDelete)

	if subscriber != nil {
		that.router.HandleFunc("/ws/game/{id}", func(w http.ResponseWriter, r *http.Request) {
			that.handleWebSocket(w, r, subscriber)
		}).Methods(http.MethodGet)
	}

	if mcpHandler != nil {
		that.router.Handle("/mcp", mcpHandler)
	}
}

func (that *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	that.router.ServeHTTP(w, r)
}

// Start - serves until ctx is cancelled, then shuts down gracefully.
func (that *Server) Start(ctx context.Context, port string) error {
	log := that.logger.With("method", "Start")

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	log.Info("HTTP server stopped")

	return nil
}
