package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/events"
	"github.com/spec-kit/auth-service/internal/repository"
)

// AccountEventsService reacts to account lifecycle events: it writes an audit
// trail and removes data owned by deleted users.
type AccountEventsService struct {
	dispatcher events.Dispatcher
	tasks      *TaskService
	sessions   repository.SessionRepository
	logger     *zap.Logger
}

// NewAccountEventsService creates the service.
func NewAccountEventsService(dispatcher events.Dispatcher, tasks *TaskService, sessions repository.SessionRepository, logger *zap.Logger) *AccountEventsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountEventsService{
		dispatcher: dispatcher,
		tasks:      tasks,
		sessions:   sessions,
		logger:     logger.Named("audit"),
	}
}

// RegisterHandlers subscribes to events.
func (a *AccountEventsService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventUserLoggedIn, a.handleUserLoggedIn)
	a.dispatcher.Subscribe(events.EventAccessTokenRefreshed, a.handleAccessTokenRefreshed)
	a.dispatcher.Subscribe(events.EventUserDeleting, a.handleUserDeleting)
}

func (a *AccountEventsService) handleUserLoggedIn(_ context.Context, event events.Event) error {
	a.logger.Info("UserLoggedIn", zap.String("user_id", event.UserID), zap.String("event_id", event.ID))
	return nil
}

func (a *AccountEventsService) handleAccessTokenRefreshed(_ context.Context, event events.Event) error {
	a.logger.Info("AccessTokenRefreshed", zap.String("user_id", event.UserID), zap.String("event_id", event.ID))
	return nil
}

func (a *AccountEventsService) handleUserDeleting(ctx context.Context, event events.Event) error {
	removed, err := a.tasks.DeleteAllByUser(ctx, event.UserID)
	if err != nil {
		return fmt.Errorf("delete tasks of %s: %w", event.UserID, err)
	}
	if err := a.sessions.Delete(ctx, event.UserID); err != nil {
		return fmt.Errorf("delete session of %s: %w", event.UserID, err)
	}
	a.logger.Info("UserDataRemoved",
		zap.String("user_id", event.UserID),
		zap.Int64("tasks_removed", removed),
		zap.Any("payload", event.Payload))
	return nil
}
