package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/auth-service/internal/domain"
)

func TestTaskRepository_ListByUser(t *testing.T) {
	mockDB := newMockDB(t)
	repo := NewTaskRepository(mockDB)
	now := time.Now()

	mockDB.ExpectQuery("SELECT id, name, user_id, created_at, updated_at").
		WithArgs("u1", 10, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "user_id", "created_at", "updated_at"}).
			AddRow("t1", "write docs", "u1", now, now).
			AddRow("t2", "ship", "u1", now, now))

	tasks, err := repo.ListByUser(context.Background(), "u1", 10, 0)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "write docs", tasks[0].Name)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestTaskRepository_DeleteByUser(t *testing.T) {
	mockDB := newMockDB(t)
	repo := NewTaskRepository(mockDB)

	mockDB.ExpectExec("DELETE FROM tasks WHERE user_id").
		WithArgs("u1").
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	removed, err := repo.DeleteByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, removed)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestMemoryTaskRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTaskRepository()

	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Create(ctx, &domain.Task{Name: name, UserID: "u1"}))
	}
	other := &domain.Task{Name: "x", UserID: "u2"}
	require.NoError(t, repo.Create(ctx, other))

	tasks, err := repo.ListByUser(ctx, "u1", 2, 0)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)

	tasks, err = repo.ListByUser(ctx, "u1", 10, 5)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	other.Name = "renamed"
	require.NoError(t, repo.Update(ctx, other))
	got, err := repo.GetByID(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)

	removed, err := repo.DeleteByUser(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, removed)

	require.NoError(t, repo.Delete(ctx, other.ID))
	assert.ErrorIs(t, repo.Delete(ctx, other.ID), pgx.ErrNoRows)
}
