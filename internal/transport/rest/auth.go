package rest

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/service"
)

const SessionHeader = "X-Session-Id"

// Authenticator - login sessions behind /api/auth and the X-Session-Id check on /api/game.
type Authenticator interface {
	Login(ctx context.Context, username string) (*service.LoginResult, error)
	Verify(ctx context.Context, sessionID string) (*entity.User, error)
	Logout(ctx context.Context, sessionID string) (*entity.User, error)
}

type Option func(*Server)

// WithAuth - mounts /api/auth. With required set, every /api/game request needs a valid X-Session-Id;
// otherwise the header is checked only when present.
func WithAuth(auth Authenticator, required bool) Option {
	return func(s *Server) {
		s.auth = auth
		s.authRequired = required
	}
}

type userContextKey struct{}

func userFromContext(ctx context.Context) *entity.User {
	user, _ := ctx.Value(userContextKey{}).(*entity.User)
	return user
}

type loginRequest struct {
	Username string `json:"username"`
}

type authUser struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

type loginResponse struct {
	Success   bool     `json:"success"`
	User      authUser `json:"user"`
	SessionID string   `json:"sessionId"`
	Message   string   `json:"message"`
}

type verifyResponse struct {
	Success bool     `json:"success"`
	User    authUser `json:"user"`
}

func (that *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		that.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := that.auth.Login(r.Context(), req.Username)
	if err != nil {
		that.respondAppError(w, "handleLogin", err)
		return
	}

	that.logger.Info("user logged in", "user_id", result.User.ID, "username", result.User.Username)

	that.respondJSON(w, http.StatusOK, loginResponse{
		Success:   true,
		User:      authUser{UserID: result.User.ID, Username: result.User.Username},
		SessionID: result.SessionID,
		Message:   "Login successful",
	})
}

func (that *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	user, err := that.auth.Verify(r.Context(), mux.Vars(r)["sessionId"])
	if err != nil {
		that.respondAppError(w, "handleVerify", err)
		return
	}

	that.respondJSON(w, http.StatusOK, verifyResponse{
		Success: true,
		User:    authUser{UserID: user.ID, Username: user.Username},
	})
}

func (that *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	user, err := that.auth.Logout(r.Context(), mux.Vars(r)["sessionId"])
	if err != nil {
		that.respondAppError(w, "handleLogout", err)
		return
	}

	if user != nil {
		that.logger.Info("user logged out", "user_id", user.ID, "username", user.Username)
	}

	that.respondJSON(w, http.StatusOK, messageResponse{
		Success: true,
		Message: "Logged out successfully",
	})
}

// sessionMiddleware - puts the verified user into the request context.
func (that *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.Header.Get(SessionHeader)
		if sessionID == "" {
			if that.authRequired {
				that.respondError(w, http.StatusUnauthorized, "Session ID required")
				return
			}

			next.ServeHTTP(w, r)
			return
		}

		user, err := that.auth.Verify(r.Context(), sessionID)
		if err != nil {
			that.respondAppError(w, "sessionMiddleware", err)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userContextKey{}, user)))
	})
}
