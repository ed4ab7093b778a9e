package memory

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/go-task-manager/internal/models"
	"github.com/adanyl0v/go-task-manager/internal/storage"
)

func newTask(userID string, due time.Time) *models.Task {
	now := time.Now()
	return &models.Task{
		UserID:    userID,
		TaskName:  "write tests",
		Status:    models.StatusPending,
		Priority:  models.PriorityMedium,
		DueDate:   due,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestTaskRepository_OwnerScoping(t *testing.T) {
	ctx := context.Background()
	repo := New().Tasks()

	task := newTask("alice", time.Now().Add(time.Hour))
	require.NoError(t, repo.Create(ctx, task))
	require.True(t, repo.ValidID(task.ID))
	assert.False(t, repo.ValidID("urn:uuid:"+task.ID))
	assert.False(t, repo.ValidID("{"+task.ID+"}"))
	assert.False(t, repo.ValidID(strings.ReplaceAll(task.ID, "-", "")))

	_, err := repo.Get(ctx, task.ID, "bob")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	name := "stolen"
	_, err = repo.Update(ctx, task.ID, "bob", models.TaskPatch{TaskName: &name, UpdatedAt: time.Now()})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, task.ID, "bob"), storage.ErrNotFound)

	got, err := repo.Get(ctx, task.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, "write tests", got.TaskName)
}

func TestTaskRepository_ListPagination(t *testing.T) {
	ctx := context.Background()
	repo := New().Tasks()

	base := time.Now().Add(time.Hour)
	for i := 0; i < 15; i++ {
		require.NoError(t, repo.Create(ctx, newTask("alice", base.Add(time.Duration(i)*time.Minute))))
	}
	require.NoError(t, repo.Create(ctx, newTask("bob", base)))

	tasks, total, err := repo.List(ctx, storage.TaskListParams{
		Filter: storage.TaskFilter{UserID: "alice"},
		Sort:   storage.TaskSort{Field: storage.SortByDueDate},
		Offset: 10,
		Limit:  10,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 15, total)
	require.Len(t, tasks, 5)
	assert.True(t, tasks[0].DueDate.Equal(base.Add(10*time.Minute)))

	tasks, _, err = repo.List(ctx, storage.TaskListParams{
		Filter: storage.TaskFilter{UserID: "alice"},
		Sort:   storage.TaskSort{Field: storage.SortByDueDate},
		Offset: 100,
		Limit:  10,
	})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestTaskRepository_ListSortsByEnumOrder(t *testing.T) {
	ctx := context.Background()
	repo := New().Tasks()

	due := time.Now().Add(time.Hour)
	for _, p := range []models.Priority{models.PriorityHigh, models.PriorityLow, models.PriorityUrgent, models.PriorityMedium} {
		task := newTask("alice", due)
		task.Priority = p
		require.NoError(t, repo.Create(ctx, task))
	}

	tasks, _, err := repo.List(ctx, storage.TaskListParams{
		Filter: storage.TaskFilter{UserID: "alice"},
		Sort:   storage.TaskSort{Field: storage.SortByPriority, Desc: true},
		Limit:  10,
	})
	require.NoError(t, err)

	got := make([]models.Priority, 0, len(tasks))
	for _, task := range tasks {
		got = append(got, task.Priority)
	}
	assert.Equal(t, []models.Priority{
		models.PriorityUrgent,
		models.PriorityHigh,
		models.PriorityMedium,
		models.PriorityLow,
	}, got)
}

func TestTaskRepository_UpdateDateOrder(t *testing.T) {
	ctx := context.Background()
	repo := New().Tasks()

	due := time.Now().Add(48 * time.Hour)
	task := newTask("alice", due)
	require.NoError(t, repo.Create(ctx, task))

	lateStart := due.Add(time.Hour)
	_, err := repo.Update(ctx, task.ID, "alice", models.TaskPatch{StartDate: &lateStart, UpdatedAt: time.Now()})
	assert.ErrorIs(t, err, storage.ErrDateOrder)

	start := due.Add(-24 * time.Hour)
	updated, err := repo.Update(ctx, task.ID, "alice", models.TaskPatch{StartDate: &start, UpdatedAt: time.Now()})
	require.NoError(t, err)
	require.NotNil(t, updated.StartDate)

	earlyDue := start.Add(-time.Hour)
	_, err = repo.Update(ctx, task.ID, "alice", models.TaskPatch{DueDate: &earlyDue, UpdatedAt: time.Now()})
	assert.ErrorIs(t, err, storage.ErrDateOrder)
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	store := New()
	repo := store.Users()

	user := &models.User{Email: "Alice@Example.com", Password: "hash", IsActive: true}
	require.NoError(t, repo.Create(ctx, user))

	err := repo.Create(ctx, &models.User{Email: "alice@example.com"})
	assert.ErrorIs(t, err, storage.ErrDuplicate)

	got, err := repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	require.NoError(t, store.SetActive(user.ID, false))
	got, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	_, err = repo.GetByID(ctx, fmt.Sprintf("%s-missing", user.ID))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
