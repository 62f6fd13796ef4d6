package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/auth-service/internal/repository"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

func TestTaskLifecycle(t *testing.T) {
	svc := NewTaskService(repository.NewMemoryTaskRepository())
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, "u1", "  write docs ")
	require.NoError(t, err)
	assert.Equal(t, "write docs", task.Name)

	got, err := svc.GetTask(ctx, "u1", task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)

	updated, err := svc.UpdateTask(ctx, "u1", task.ID, "ship docs")
	require.NoError(t, err)
	assert.Equal(t, "ship docs", updated.Name)

	list, err := svc.ListTasks(ctx, "u1", 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "ship docs", list[0].Name)

	require.NoError(t, svc.DeleteTask(ctx, "u1", task.ID))
	_, err = svc.GetTask(ctx, "u1", task.ID)
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestTaskOwnership(t *testing.T) {
	svc := NewTaskService(repository.NewMemoryTaskRepository())
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, "u1", "private")
	require.NoError(t, err)

	_, err = svc.GetTask(ctx, "u2", task.ID)
	requireCode(t, err, apperrors.CodeNotFound)
	_, err = svc.UpdateTask(ctx, "u2", task.ID, "hijack")
	requireCode(t, err, apperrors.CodeNotFound)
	err = svc.DeleteTask(ctx, "u2", task.ID)
	requireCode(t, err, apperrors.CodeNotFound)

	still, err := svc.GetTask(ctx, "u1", task.ID)
	require.NoError(t, err)
	assert.Equal(t, "private", still.Name)
}

func TestTaskNameRequired(t *testing.T) {
	svc := NewTaskService(repository.NewMemoryTaskRepository())

	_, err := svc.CreateTask(context.Background(), "u1", "   ")
	de := requireCode(t, err, apperrors.CodeValidationFailed)
	assert.Equal(t, "Name is required", de.Message)
}

func TestMalformedTaskIDIsNotFound(t *testing.T) {
	svc := NewTaskService(repository.NewMemoryTaskRepository())
	ctx := context.Background()

	_, err := svc.GetTask(ctx, "u1", "abc")
	de := requireCode(t, err, apperrors.CodeNotFound)
	assert.Equal(t, "task not found", de.Message)

	_, err = svc.UpdateTask(ctx, "u1", "abc", "rename")
	requireCode(t, err, apperrors.CodeNotFound)

	err = svc.DeleteTask(ctx, "u1", "abc")
	requireCode(t, err, apperrors.CodeNotFound)
}
