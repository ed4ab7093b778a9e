package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/adanyl0v/go-task-manager/internal/models"
	"github.com/adanyl0v/go-task-manager/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set (integration test)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	database := "task_manager_test_" + primitive.NewObjectID().Hex()
	store, err := Connect(ctx, uri, database, 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, store.Ping(ctx))
	require.NoError(t, store.EnsureIndexes(ctx))

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = store.db.Drop(ctx)
		_ = store.Disconnect(ctx)
	})
	return store
}

func TestTaskRepository_Integration(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	users := store.Users()
	tasks := store.Tasks()

	now := time.Now().UTC().Truncate(time.Millisecond)
	alice := &models.User{Email: "alice@example.com", Password: "hash", IsActive: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, users.Create(ctx, alice))
	assert.ErrorIs(t, users.Create(ctx, &models.User{Email: "ALICE@example.com"}), storage.ErrDuplicate)

	bob := &models.User{Email: "bob@example.com", Password: "hash", IsActive: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, users.Create(ctx, bob))

	due := now.Add(48 * time.Hour)
	task := &models.Task{
		UserID:    alice.ID,
		TaskName:  "ship it",
		Status:    models.StatusPending,
		Priority:  models.PriorityHigh,
		DueDate:   due,
		Tags:      []string{"work"},
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, tasks.Create(ctx, task))
	require.True(t, tasks.ValidID(task.ID))

	got, err := tasks.Get(ctx, task.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, task.TaskName, got.TaskName)
	assert.Equal(t, []string{"work"}, got.Tags)
	assert.True(t, got.DueDate.Equal(due))

	_, err = tasks.Get(ctx, task.ID, bob.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	lateStart := due.Add(time.Hour)
	_, err = tasks.Update(ctx, task.ID, alice.ID, models.TaskPatch{StartDate: &lateStart, UpdatedAt: now})
	assert.ErrorIs(t, err, storage.ErrDateOrder)

	_, err = tasks.Update(ctx, task.ID, bob.ID, models.TaskPatch{StartDate: &lateStart, UpdatedAt: now})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	completed := models.StatusCompleted
	updated, err := tasks.Update(ctx, task.ID, alice.ID, models.TaskPatch{Status: &completed, CompletedAt: &now, UpdatedAt: now})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, updated.Status)
	require.NotNil(t, updated.CompletedAt)

	other := *task
	other.Priority = models.PriorityLow
	require.NoError(t, tasks.Create(ctx, &other))

	list, total, err := tasks.List(ctx, storage.TaskListParams{
		Filter: storage.TaskFilter{UserID: alice.ID},
		Sort:   storage.TaskSort{Field: storage.SortByPriority},
		Limit:  10,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, list, 2)
	assert.Equal(t, models.PriorityLow, list[0].Priority)

	require.NoError(t, tasks.Delete(ctx, task.ID, alice.ID))
	assert.ErrorIs(t, tasks.Delete(ctx, task.ID, alice.ID), storage.ErrNotFound)
}
