package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/go-task-manager/internal/models"
	"github.com/adanyl0v/go-task-manager/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	connURL := os.Getenv("POSTGRES_TEST_URL")
	if connURL == "" {
		t.Skip("POSTGRES_TEST_URL not set (integration test)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := Connect(ctx, connURL, 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, store.Ping(ctx))
	require.NoError(t, store.Migrate(ctx))
	t.Cleanup(store.Close)
	return store
}

func TestTaskRepository_Integration(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	users := store.Users()
	tasks := store.Tasks()

	now := time.Now().UTC().Truncate(time.Millisecond)
	alice := &models.User{
		Email:     uuid.NewString() + "@example.com",
		Password:  "hash",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, users.Create(ctx, alice))
	assert.ErrorIs(t, users.Create(ctx, &models.User{Email: alice.Email, CreatedAt: now, UpdatedAt: now}), storage.ErrDuplicate)

	byEmail, err := users.GetByEmail(ctx, alice.Email)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byEmail.ID)

	due := now.Add(48 * time.Hour)
	start := now.Add(24 * time.Hour)
	task := &models.Task{
		UserID:    alice.ID,
		TaskName:  "ship it",
		Status:    models.StatusPending,
		Priority:  models.PriorityUrgent,
		DueDate:   due,
		StartDate: &start,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, tasks.Create(ctx, task))

	got, err := tasks.Get(ctx, task.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PriorityUrgent, got.Priority)
	assert.Empty(t, got.Tags)

	_, err = tasks.Get(ctx, task.ID, uuid.NewString())
	assert.ErrorIs(t, err, storage.ErrNotFound)

	earlyDue := start.Add(-time.Hour)
	_, err = tasks.Update(ctx, task.ID, alice.ID, models.TaskPatch{DueDate: &earlyDue, UpdatedAt: now})
	assert.ErrorIs(t, err, storage.ErrDateOrder)

	tags := []string{"a", "b"}
	updated, err := tasks.Update(ctx, task.ID, alice.ID, models.TaskPatch{Tags: &tags, UpdatedAt: now.Add(time.Second)})
	require.NoError(t, err)
	assert.Equal(t, tags, updated.Tags)
	assert.Equal(t, "ship it", updated.TaskName)

	list, total, err := tasks.List(ctx, storage.TaskListParams{
		Filter: storage.TaskFilter{UserID: alice.ID},
		Sort:   storage.TaskSort{Field: storage.SortByStatus, Desc: true},
		Limit:  10,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, list, 1)

	require.NoError(t, tasks.Delete(ctx, task.ID, alice.ID))
	assert.ErrorIs(t, tasks.Delete(ctx, task.ID, alice.ID), storage.ErrNotFound)
}
