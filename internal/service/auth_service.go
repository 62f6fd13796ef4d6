package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/config"
	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/events"
	"github.com/spec-kit/auth-service/internal/repository"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

const (
	msgInvalidCredentials = "Invalid email or password"
	msgUnauthenticated    = "Un-Authenticated"
	msgSessionNotFound    = "Requested Token not found"
	msgTokenMismatch      = "Provided token does not match"
)

// TokenIssuer signs and verifies tokens.
type TokenIssuer interface {
	Issue(claims domain.TokenClaims, ttl time.Duration) (string, error)
	Verify(token string) (*domain.TokenClaims, error)
}

// AuthService coordinates login and access-token refresh.
type AuthService struct {
	users      repository.UserRepository
	sessions   repository.SessionRepository
	tokens     TokenIssuer
	dispatcher events.Dispatcher
	logger     *zap.Logger
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo    repository.UserRepository
	SessionRepo repository.SessionRepository
	Tokens      TokenIssuer
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		sessions:   deps.SessionRepo,
		tokens:     deps.Tokens,
		dispatcher: deps.Dispatcher,
		logger:     logger.Named("auth"),
		accessTTL:  cfg.AccessTTL(),
		refreshTTL: cfg.RefreshTTL(),
	}
}

// Login verifies the email/password pair, issues an access and a refresh token
// and records the refresh token as the user's only session. Unknown email and
// wrong password fail identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn("login rejected", zap.String("reason", "unknown email"))
			return nil, apperrors.NewUnauthenticated(msgInvalidCredentials)
		}
		return nil, apperrors.NewInternalError(fmt.Errorf("lookup user: %w", err))
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		s.logger.Warn("login rejected", zap.String("reason", "password mismatch"), zap.String("user_id", user.ID))
		return nil, apperrors.NewUnauthenticated(msgInvalidCredentials)
	}

	claims := domain.ClaimsFromUser(user)

	accessToken, err := s.tokens.Issue(claims, s.accessTTL)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("issue access token: %w", err))
	}
	refreshToken, err := s.tokens.Issue(claims, s.refreshTTL)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("issue refresh token: %w", err))
	}

	if err := s.sessions.Put(ctx, user.ID, refreshToken); err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("store refresh token: %w", err))
	}

	s.logger.Debug("login succeeded", zap.String("user_id", user.ID))
	s.publish(ctx, events.NewEvent(events.EventUserLoggedIn, user.ID, nil))

	return &domain.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// RefreshAccessToken issues a new access token for a "Bearer <refresh token>"
// header. The refresh token must verify and must equal the one stored by the
// user's latest login. The refresh token itself is not rotated.
func (s *AuthService) RefreshAccessToken(ctx context.Context, authorization string) (*domain.AccessToken, error) {
	token, ok := auth.ParseBearer(authorization)
	if !ok {
		s.logger.Warn("refresh rejected", zap.String("reason", "malformed authorization header"))
		return nil, apperrors.NewUnauthenticated(msgUnauthenticated)
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		s.logger.Warn("refresh rejected", zap.String("reason", "token verification failed"), zap.Error(err))
		return nil, auth.TokenError(err)
	}

	entry, err := s.sessions.Get(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			s.logger.Warn("refresh rejected", zap.String("reason", "no session"), zap.String("user_id", claims.ID))
			return nil, apperrors.NewNotFound(msgSessionNotFound)
		}
		return nil, apperrors.NewInternalError(fmt.Errorf("load session: %w", err))
	}

	if subtle.ConstantTimeCompare([]byte(entry.RefreshToken), []byte(token)) != 1 {
		s.logger.Warn("refresh rejected", zap.String("reason", "superseded token"), zap.String("user_id", claims.ID))
		return nil, apperrors.NewBadRequest(msgTokenMismatch)
	}

	accessToken, err := s.tokens.Issue(projectClaims(claims), s.accessTTL)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("issue access token: %w", err))
	}

	s.logger.Debug("access token refreshed", zap.String("user_id", claims.ID))
	s.publish(ctx, events.NewEvent(events.EventAccessTokenRefreshed, claims.ID, nil))

	return &domain.AccessToken{AccessToken: accessToken}, nil
}

func projectClaims(verified *domain.TokenClaims) domain.TokenClaims {
	return domain.ClaimsFromUser(&domain.User{
		ID:          verified.ID,
		Name:        verified.Name,
		Email:       verified.Email,
		Permissions: verified.Permissions,
	})
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event", string(event.Type)), zap.Error(err))
	}
}
