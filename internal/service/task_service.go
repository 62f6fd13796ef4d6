package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/repository"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

const (
	msgTaskNotFound = "task not found"
	defaultTaskPage = 50
	maxTaskPage     = 200
)

// TaskService coordinates task workflows for the owning user.
type TaskService struct {
	tasks repository.TaskRepository
}

// NewTaskService constructs the service.
func NewTaskService(tasks repository.TaskRepository) *TaskService {
	return &TaskService{tasks: tasks}
}

// CreateTask adds a task owned by userID.
func (s *TaskService) CreateTask(ctx context.Context, userID, name string) (*domain.Task, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("Name is required", map[string]any{"name": "required"})
	}
	task := &domain.Task{Name: name, UserID: userID}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("create task: %w", err))
	}
	return task, nil
}

// ListTasks returns a page of the user's tasks, newest first.
func (s *TaskService) ListTasks(ctx context.Context, userID string, limit, offset int) ([]domain.Task, error) {
	if limit <= 0 {
		limit = defaultTaskPage
	}
	if limit > maxTaskPage {
		limit = maxTaskPage
	}
	if offset < 0 {
		offset = 0
	}
	tasks, err := s.tasks.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("list tasks: %w", err))
	}
	return tasks, nil
}

// GetTask returns the task when it belongs to userID. Tasks of other users are
// reported as missing.
func (s *TaskService) GetTask(ctx context.Context, userID, id string) (*domain.Task, error) {
	if !isID(id) {
		return nil, apperrors.NewNotFound(msgTaskNotFound)
	}
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound(msgTaskNotFound)
		}
		return nil, apperrors.NewInternalError(fmt.Errorf("get task: %w", err))
	}
	if task.UserID != userID {
		return nil, apperrors.NewNotFound(msgTaskNotFound)
	}
	return task, nil
}

// UpdateTask renames a task owned by userID.
func (s *TaskService) UpdateTask(ctx context.Context, userID, id, name string) (*domain.Task, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("Name is required", map[string]any{"name": "required"})
	}
	task, err := s.GetTask(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	task.Name = name
	if err := s.tasks.Update(ctx, task); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound(msgTaskNotFound)
		}
		return nil, apperrors.NewInternalError(fmt.Errorf("update task: %w", err))
	}
	return task, nil
}

// DeleteTask removes a task owned by userID.
func (s *TaskService) DeleteTask(ctx context.Context, userID, id string) error {
	if _, err := s.GetTask(ctx, userID, id); err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound(msgTaskNotFound)
		}
		return apperrors.NewInternalError(fmt.Errorf("delete task: %w", err))
	}
	return nil
}

// DeleteAllByUser removes every task owned by userID.
func (s *TaskService) DeleteAllByUser(ctx context.Context, userID string) (int64, error) {
	return s.tasks.DeleteByUser(ctx, userID)
}
