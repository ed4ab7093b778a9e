package services

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-manager/internal/models"
	"github.com/adanyl0v/go-task-manager/internal/storage"
)

type taskServiceImpl struct {
	logger zerolog.Logger
	tasks  storage.TaskRepository
}

func NewTaskService(
	logger zerolog.Logger,
	tasks storage.TaskRepository,
) TaskService {
	return &taskServiceImpl{
		logger: logger,
		tasks:  tasks,
	}
}

// now is the timestamp of every mutation. Stores keep milliseconds only.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func toMillis(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	truncated := t.UTC().Truncate(time.Millisecond)
	return &truncated
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error) {
	createdAt := now()
	task := &models.Task{
		UserID:      params.UserID,
		TaskName:    params.TaskName,
		Description: params.Description,
		Status:      params.Status,
		Priority:    params.Priority,
		DueDate:     params.DueDate.UTC().Truncate(time.Millisecond),
		StartDate:   toMillis(params.StartDate),
		Tags:        params.Tags,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	if task.Status == "" {
		task.Status = models.DefaultStatus
	}
	if task.Priority == "" {
		task.Priority = models.DefaultPriority
	}
	if task.Tags == nil {
		task.Tags = []string{}
	}

	err := s.tasks.Create(ctx, task)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", params.UserID).
			Msg("failed to insert task")
		return nil, err
	}
	s.logger.Debug().
		Str("task_id", task.ID).
		Msg("created task")

	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", task.UserID).
		Msg("created task")
	return task, nil
}

func (s *taskServiceImpl) GetTask(ctx context.Context, userID, taskID string) (*models.Task, error) {
	task, err := s.tasks.Get(ctx, taskID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Info().
				Str("task_id", taskID).
				Str("user_id", userID).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to select task")
		return nil, err
	}
	s.logger.Debug().
		Str("task_id", task.ID).
		Msg("selected task")
	return task, nil
}

func (s *taskServiceImpl) ListTasks(ctx context.Context, params ListTasksParams) (*ListTasksResult, error) {
	page := params.Page
	if page < 1 {
		page = DefaultPage
	}
	limit := params.Limit
	if limit < 1 {
		limit = DefaultPageSize
	}
	sortBy := params.SortBy
	if sortBy == "" {
		sortBy = DefaultSortBy
	}

	tasks, total, err := s.tasks.List(ctx, storage.TaskListParams{
		Filter: storage.TaskFilter{
			UserID:   params.UserID,
			Status:   params.Status,
			Priority: params.Priority,
		},
		Sort: storage.TaskSort{
			Field: sortBy,
			Desc:  params.SortDesc,
		},
		Offset: pageOffset(page, limit),
		Limit:  int64(limit),
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", params.UserID).
			Msg("failed to select tasks by user id")
		return nil, err
	}
	s.logger.Debug().
		Int("count", len(tasks)).
		Int64("total", total).
		Str("user_id", params.UserID).
		Msg("selected tasks by user id")

	return &ListTasksResult{
		Tasks: tasks,
		Total: total,
		Page:  page,
		Pages: (total + int64(limit) - 1) / int64(limit),
	}, nil
}

// pageOffset saturates at math.MaxInt64 for pages far past the end, so they
// come back empty instead of wrapping around.
func pageOffset(page, limit int) int64 {
	if int64(page-1) > math.MaxInt64/int64(limit) {
		return math.MaxInt64
	}
	return int64(page-1) * int64(limit)
}

func (s *taskServiceImpl) UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error) {
	updatedAt := now()
	patch := models.TaskPatch{
		TaskName:    params.TaskName,
		Description: params.Description,
		Status:      params.Status,
		Priority:    params.Priority,
		DueDate:     toMillis(params.DueDate),
		StartDate:   toMillis(params.StartDate),
		Tags:        params.Tags,
		UpdatedAt:   updatedAt,
	}
	if patch.Status != nil && *patch.Status == models.StatusCompleted {
		patch.CompletedAt = &updatedAt
	}

	task, err := s.tasks.Update(ctx, params.ID, params.UserID, patch)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			s.logger.Info().
				Str("task_id", params.ID).
				Str("user_id", params.UserID).
				Msg("task not found")
			return nil, ErrTaskNotFound
		case errors.Is(err, storage.ErrDateOrder):
			s.logger.Info().
				Str("task_id", params.ID).
				Msg("start date is not before due date")
			return nil, ErrStartAfterDue
		}

		s.logger.Error().
			Err(err).
			Str("task_id", params.ID).
			Msg("failed to update task")
		return nil, err
	}
	s.logger.Debug().
		Str("task_id", task.ID).
		Msg("updated task")

	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", task.UserID).
		Msg("updated task")
	return task, nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, userID, taskID string) error {
	err := s.tasks.Delete(ctx, taskID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Info().
				Str("task_id", taskID).
				Str("user_id", userID).
				Msg("task not found")
			return ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to delete task")
		return err
	}
	s.logger.Debug().
		Str("task_id", taskID).
		Msg("deleted task")

	s.logger.Info().
		Str("task_id", taskID).
		Str("user_id", userID).
		Msg("deleted task")
	return nil
}
