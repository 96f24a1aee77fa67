package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

const DefaultLoginTTL = 24 * time.Hour

// LoginResult - SessionID is the signed token clients send back as X-Session-Id.
type LoginResult struct {
	User      *entity.User
	SessionID string
}

type UserService interface {
	Login(ctx context.Context, username string) (*LoginResult, error)
	Verify(ctx context.Context, sessionID string) (*entity.User, error)
	Logout(ctx context.Context, sessionID string) (*entity.User, error)
}

type userRepo interface {
	Save(ctx context.Context, sessionID string, user *entity.User, ttl time.Duration) error
	FindBySession(ctx context.Context, sessionID string) (*entity.User, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

type userService struct {
	userRepo    userRepo
	authService AuthService
	ttl         time.Duration

	now   func() time.Time
	newID func() string
}

func NewUserService(userRepo userRepo, authService AuthService, ttl time.Duration) UserService {
	if ttl <= 0 {
		ttl = DefaultLoginTTL
	}

	return &userService{
		userRepo:    userRepo,
		authService: authService,
		ttl:         ttl,
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
	}
}

// Login - every login creates a new user id; there is no account lookup by name.
func (that *userService) Login(ctx context.Context, username string) (*LoginResult, error) {
	name, err := entity.ParseUsername(username)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrInvalidRequest, err)
	}

	now := that.now()
	loginID := that.newID()
	user := entity.NewUser(that.newID(), name, now)

	if err = that.userRepo.Save(ctx, loginID, user, that.ttl); err != nil {
		return nil, fmt.Errorf("could not save login session: %w", err)
	}

	token, err := that.authService.GenerateToken(loginID, user.ID, now, that.ttl)
	if err != nil {
		return nil, fmt.Errorf("could not issue session id: %w", err)
	}

	return &LoginResult{
		User:      user,
		SessionID: token,
	}, nil
}

func (that *userService) Verify(ctx context.Context, sessionID string) (*entity.User, error) {
	claims, err := that.authService.ParseToken(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrUnauthorized, err)
	}

	user, err := that.userRepo.FindBySession(ctx, claims.SessionID)
	if err != nil {
		return nil, fmt.Errorf("could not find login session: %w", err)
	}

	if user.ID != claims.UserID {
		return nil, apperror.ErrUnauthorized
	}

	return user, nil
}

// Logout - always succeeds for unknown or expired session ids; the user is nil then.
func (that *userService) Logout(ctx context.Context, sessionID string) (*entity.User, error) {
	claims, err := that.authService.ParseToken(sessionID)
	if err != nil {
		return nil, nil
	}

	user, err := that.userRepo.FindBySession(ctx, claims.SessionID)
	if err != nil && !errors.Is(err, apperror.ErrUnauthorized) {
		return nil, fmt.Errorf("could not find login session: %w", err)
	}

	if err = that.userRepo.DeleteSession(ctx, claims.SessionID); err != nil {
		return nil, fmt.Errorf("could not delete login session: %w", err)
	}

	return user, nil
}
