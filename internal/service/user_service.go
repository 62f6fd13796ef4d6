package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
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
	msgUserNotFound  = "user not found"
	msgEmailTaken    = "Email is already used"
	msgMissingFields = "Missing: email or password"
)

// UserInput carries the writable fields of a user account. On update the
// Password field holds either the current password or a new one.
type UserInput struct {
	Name        string
	Email       string
	Password    string
	Permissions []string
}

// UserService manages credential records.
type UserService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
}

// NewUserService constructs the service.
func NewUserService(cfg config.AuthConfig, users repository.UserRepository, dispatcher events.Dispatcher, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		users:      users,
		dispatcher: dispatcher,
		logger:     logger.Named("users"),
		bcryptCost: cfg.BcryptCost,
	}
}

// CreateUser registers a new account with a hashed password.
func (s *UserService) CreateUser(ctx context.Context, in UserInput) (*domain.User, error) {
	if in.Email == "" || in.Password == "" {
		return nil, apperrors.NewBadRequest(msgMissingFields)
	}
	if in.Name == "" || in.Permissions == nil {
		s.logger.Warn("creating user without name or permissions",
			zap.Bool("has_name", in.Name != ""),
			zap.Bool("has_permissions", in.Permissions != nil))
	}

	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, apperrors.NewConflict(msgEmailTaken, nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewInternalError(fmt.Errorf("lookup email: %w", err))
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("hash password: %w", err))
	}

	user := &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Permissions:  in.Permissions,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, apperrors.NewConflict(msgEmailTaken, nil)
		}
		return nil, apperrors.NewInternalError(fmt.Errorf("create user: %w", err))
	}

	s.logger.Info("user created", zap.String("user_id", user.ID))
	return user, nil
}

// GetUser returns the account with the given id.
func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	if !isID(id) {
		return nil, apperrors.NewNotFound(msgUserNotFound)
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound(msgUserNotFound)
		}
		return nil, apperrors.NewInternalError(fmt.Errorf("lookup user: %w", err))
	}
	return user, nil
}

// UpdateUser replaces the account fields. The password is rehashed only when
// it differs from the stored one.
func (s *UserService) UpdateUser(ctx context.Context, id string, in UserInput) (*domain.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Email != "" && in.Email != user.Email {
		if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
			return nil, apperrors.NewConflict(msgEmailTaken, nil)
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewInternalError(fmt.Errorf("lookup email: %w", err))
		}
		user.Email = in.Email
	}
	if in.Name != "" {
		user.Name = in.Name
	}
	if in.Permissions != nil {
		user.Permissions = in.Permissions
	}

	if in.Password != "" && auth.NeedsRehash(in.Password, user.PasswordHash) {
		hash, err := auth.HashPassword(in.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.NewInternalError(fmt.Errorf("hash password: %w", err))
		}
		user.PasswordHash = hash
		s.logger.Debug("password rehashed", zap.String("user_id", user.ID))
	}

	if err := s.users.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailTaken):
			return nil, apperrors.NewConflict(msgEmailTaken, nil)
		case errors.Is(err, pgx.ErrNoRows):
			return nil, apperrors.NewNotFound(msgUserNotFound)
		}
		return nil, apperrors.NewInternalError(fmt.Errorf("update user: %w", err))
	}
	return user, nil
}

// DeleteUser removes the account. Owned tasks and the session entry are
// cleaned up first; if that fails the account is left in place so the call
// can be retried.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}

	if s.dispatcher != nil {
		event := events.NewEvent(events.EventUserDeleting, id, events.UserDeletingPayload{Email: user.Email})
		if err := s.dispatcher.Publish(ctx, event); err != nil {
			return apperrors.NewInternalError(fmt.Errorf("clean up user %s: %w", id, err))
		}
	}

	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound(msgUserNotFound)
		}
		return apperrors.NewInternalError(fmt.Errorf("delete user: %w", err))
	}

	s.logger.Info("user deleted", zap.String("user_id", id))
	return nil
}

// EnsureBootstrapUser creates an account holding every user-administration
// permission when no account with email exists yet.
func (s *UserService) EnsureBootstrapUser(ctx context.Context, email, password string) error {
	if email == "" {
		return nil
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("lookup bootstrap user: %w", err)
	}

	_, err := s.CreateUser(ctx, UserInput{
		Name:     "admin",
		Email:    email,
		Password: password,
		Permissions: []string{
			domain.PermissionUsersCreate,
			domain.PermissionUsersGet,
			domain.PermissionUsersUpdate,
			domain.PermissionUsersDelete,
		},
	})
	return err
}

// isID reports whether id can name a stored row. Ids are UUIDs in every store.
func isID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
