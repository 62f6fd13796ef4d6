package dto

import (
	"time"

	"github.com/spec-kit/auth-service/internal/domain"
)

// TaskRequest payload for creating or renaming a task.
type TaskRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// TaskListQuery captures paging parameters.
type TaskListQuery struct {
	Limit  int `query:"limit" validate:"omitempty,min=1,max=200"`
	Offset int `query:"offset" validate:"omitempty,min=0"`
}

// TaskResponse response.
type TaskResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTaskResponse maps a task to its public representation.
func NewTaskResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:        task.ID,
		Name:      task.Name,
		UserID:    task.UserID,
		CreatedAt: task.CreatedAt,
		UpdatedAt: task.UpdatedAt,
	}
}

// NewTaskListResponse maps a slice of tasks.
func NewTaskListResponse(tasks []domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, NewTaskResponse(&tasks[i]))
	}
	return out
}
