// Package storage declares the persistence contracts of the task manager.
//
// Every task operation takes the owner's user ID and implementations must
// put it into the same predicate as the task ID, so a task owned by someone
// else is indistinguishable from a missing one.
package storage

import (
	"context"
	"errors"
	"slices"

	"github.com/adanyl0v/go-task-manager/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
	// ErrDateOrder is returned by TaskRepository.Update when the patch
	// would leave the start date at or after the due date.
	ErrDateOrder = errors.New("start date must be before due date")
)

type SortField string

const (
	SortByDueDate   SortField = "dueDate"
	SortByCreatedAt SortField = "createdAt"
	SortByPriority  SortField = "priority"
	SortByStatus    SortField = "status"
)

var SortFields = []SortField{
	SortByDueDate,
	SortByCreatedAt,
	SortByPriority,
	SortByStatus,
}

type TaskFilter struct {
	UserID   string
	Status   *models.Status
	Priority *models.Priority
}

type TaskSort struct {
	Field SortField
	Desc  bool
}

type TaskListParams struct {
	Filter TaskFilter
	Sort   TaskSort
	Offset int64
	Limit  int64
}

type TaskRepository interface {
	// ValidID reports whether id has the shape of an identifier
	// issued by this repository.
	ValidID(id string) bool

	// Create assigns an ID to the task and stores it.
	Create(ctx context.Context, task *models.Task) error

	// Get returns the task with the given ID owned by userID
	// or ErrNotFound.
	Get(ctx context.Context, id, userID string) (*models.Task, error)

	// List returns a page of the tasks matching the filter and
	// the total number of matches. Ties in the sort field are
	// broken by ID in ascending order.
	List(ctx context.Context, params TaskListParams) ([]*models.Task, int64, error)

	// Update applies the patch to the task with the given ID owned
	// by userID and returns the updated task.
	//
	// When the patch sets exactly one of StartDate and DueDate, the
	// stored counterpart is checked in the same predicate and
	// ErrDateOrder is returned if the order would break.
	Update(ctx context.Context, id, userID string, patch models.TaskPatch) (*models.Task, error)

	// Delete removes the task with the given ID owned by userID
	// or returns ErrNotFound.
	Delete(ctx context.Context, id, userID string) error
}

type UserRepository interface {
	// Create assigns an ID to the user and stores it. It returns
	// ErrDuplicate if the email is taken.
	Create(ctx context.Context, user *models.User) error

	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// Rank returns the position of the task's value for the sort field in its
// declared order. It is only meaningful for SortByPriority and SortByStatus.
func Rank(field SortField, task *models.Task) int {
	switch field {
	case SortByPriority:
		return slices.Index(models.Priorities, task.Priority)
	case SortByStatus:
		return slices.Index(models.Statuses, task.Status)
	default:
		return 0
	}
}
