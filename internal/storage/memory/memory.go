// Package memory keeps users and tasks in process memory. It backs the
// "memory" store driver and serves as the repository double in tests.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/adanyl0v/go-task-manager/internal/models"
	"github.com/adanyl0v/go-task-manager/internal/storage"
)

type Store struct {
	mu          sync.RWMutex
	users       map[string]*models.User
	usersByMail map[string]string
	tasks       map[string]*models.Task
}

func New() *Store {
	return &Store{
		users:       make(map[string]*models.User),
		usersByMail: make(map[string]string),
		tasks:       make(map[string]*models.Task),
	}
}

func (s *Store) Tasks() storage.TaskRepository {
	return taskRepository{s}
}

func (s *Store) Users() storage.UserRepository {
	return userRepository{s}
}

func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}
	return id.String(), nil
}

type userRepository struct {
	s *Store
}

func (r userRepository) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, taken := r.s.usersByMail[email]; taken {
		return storage.ErrDuplicate
	}

	id, err := newID()
	if err != nil {
		return err
	}
	user.ID = id

	stored := *user
	r.s.users[id] = &stored
	r.s.usersByMail[email] = id
	return nil
}

func (r userRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	found := *user
	return &found, nil
}

func (r userRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.usersByMail[strings.ToLower(email)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	found := *r.s.users[id]
	return &found, nil
}

// SetActive flips the user's active flag. There is no HTTP surface for it;
// it exists for operators and tests.
func (s *Store) SetActive(id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	user.IsActive = active
	return nil
}

type taskRepository struct {
	s *Store
}

// ValidID accepts the canonical 36-character form, the one newID issues.
func (taskRepository) ValidID(id string) bool {
	return len(id) == 36 && uuid.Validate(id) == nil
}

func (r taskRepository) Create(_ context.Context, task *models.Task) error {
	id, err := newID()
	if err != nil {
		return err
	}
	task.ID = id

	r.s.mu.Lock()
	r.s.tasks[id] = cloneTask(task)
	r.s.mu.Unlock()
	return nil
}

func (r taskRepository) Get(_ context.Context, id, userID string) (*models.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	task, ok := r.s.owned(id, userID)
	if !ok {
		return nil, storage.ErrNotFound
	}
	return cloneTask(task), nil
}

func (r taskRepository) List(_ context.Context, params storage.TaskListParams) ([]*models.Task, int64, error) {
	r.s.mu.RLock()
	matched := make([]*models.Task, 0)
	for _, task := range r.s.tasks {
		if matches(task, params.Filter) {
			matched = append(matched, cloneTask(task))
		}
	}
	r.s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b *models.Task) int {
		c := compareBy(params.Sort.Field, a, b)
		if params.Sort.Desc {
			c = -c
		}
		if c == 0 {
			c = strings.Compare(a.ID, b.ID)
		}
		return c
	})

	total := int64(len(matched))
	start := min(max(params.Offset, 0), total)
	end := total
	if params.Limit > 0 {
		end = min(start+params.Limit, total)
	}
	return matched[start:end], total, nil
}

func (r taskRepository) Update(_ context.Context, id, userID string, patch models.TaskPatch) (*models.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	task, ok := r.s.owned(id, userID)
	if !ok {
		return nil, storage.ErrNotFound
	}

	switch {
	case patch.StartDate != nil && patch.DueDate == nil:
		if !patch.StartDate.Before(task.DueDate) {
			return nil, storage.ErrDateOrder
		}
	case patch.DueDate != nil && patch.StartDate == nil:
		if task.StartDate != nil && !task.StartDate.Before(*patch.DueDate) {
			return nil, storage.ErrDateOrder
		}
	}

	applyPatch(task, patch)
	return cloneTask(task), nil
}

func (r taskRepository) Delete(_ context.Context, id, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.owned(id, userID); !ok {
		return storage.ErrNotFound
	}
	delete(r.s.tasks, id)
	return nil
}

// owned must be called with s.mu held.
func (s *Store) owned(id, userID string) (*models.Task, bool) {
	task, ok := s.tasks[id]
	if !ok || task.UserID != userID {
		return nil, false
	}
	return task, true
}

func matches(task *models.Task, filter storage.TaskFilter) bool {
	if task.UserID != filter.UserID {
		return false
	}
	if filter.Status != nil && task.Status != *filter.Status {
		return false
	}
	if filter.Priority != nil && task.Priority != *filter.Priority {
		return false
	}
	return true
}

func compareBy(field storage.SortField, a, b *models.Task) int {
	switch field {
	case storage.SortByCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case storage.SortByPriority, storage.SortByStatus:
		return cmp.Compare(storage.Rank(field, a), storage.Rank(field, b))
	default:
		return a.DueDate.Compare(b.DueDate)
	}
}

func applyPatch(task *models.Task, patch models.TaskPatch) {
	if patch.TaskName != nil {
		task.TaskName = *patch.TaskName
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Status != nil {
		task.Status = *patch.Status
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	if patch.DueDate != nil {
		task.DueDate = *patch.DueDate
	}
	if patch.StartDate != nil {
		start := *patch.StartDate
		task.StartDate = &start
	}
	if patch.Tags != nil {
		task.Tags = slices.Clone(*patch.Tags)
	}
	if patch.CompletedAt != nil {
		completedAt := *patch.CompletedAt
		task.CompletedAt = &completedAt
	}
	task.UpdatedAt = patch.UpdatedAt
}

func cloneTask(task *models.Task) *models.Task {
	c := *task
	c.Tags = slices.Clone(task.Tags)
	if task.StartDate != nil {
		start := *task.StartDate
		c.StartDate = &start
	}
	if task.CompletedAt != nil {
		completedAt := *task.CompletedAt
		c.CompletedAt = &completedAt
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	return &c
}
