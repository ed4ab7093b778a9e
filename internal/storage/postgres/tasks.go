package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adanyl0v/go-task-manager/internal/models"
	"github.com/adanyl0v/go-task-manager/internal/storage"
)

const taskColumns = `id,
       user_id,
       task_name,
       description,
       status,
       priority,
       due_date,
       start_date,
       completed_at,
       tags,
       created_at,
       updated_at`

// orderExpressions maps every sort field to a trusted SQL expression.
// Enum fields are ranked by their declared order.
var orderExpressions = map[storage.SortField]string{
	storage.SortByDueDate:   "due_date",
	storage.SortByCreatedAt: "created_at",
	storage.SortByPriority:  rankExpression("priority", models.Priorities),
	storage.SortByStatus:    rankExpression("status", models.Statuses),
}

func rankExpression[T ~string](column string, order []T) string {
	quoted := make([]string, len(order))
	for i, v := range order {
		quoted[i] = "'" + string(v) + "'"
	}
	return fmt.Sprintf("array_position(ARRAY[%s]::text[], %s)", strings.Join(quoted, ", "), column)
}

type taskRepository struct {
	pool *pgxpool.Pool
}

func (*taskRepository) ValidID(id string) bool {
	return validID(id)
}

func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	id, err := newID()
	if err != nil {
		return err
	}

	tags := task.Tags
	if tags == nil {
		tags = []string{}
	}

	const insertTaskQuery = `
INSERT INTO tasks (id,
                   user_id,
                   task_name,
                   description,
                   status,
                   priority,
                   due_date,
                   start_date,
                   completed_at,
                   tags,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`
	_, err = r.pool.Exec(
		ctx,
		insertTaskQuery,
		id,
		task.UserID,
		task.TaskName,
		task.Description,
		string(task.Status),
		string(task.Priority),
		task.DueDate,
		task.StartDate,
		task.CompletedAt,
		tags,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}

	task.ID = id
	task.Tags = tags
	return nil
}

func (r *taskRepository) Get(ctx context.Context, id, userID string) (*models.Task, error) {
	if !validID(id) || !validID(userID) {
		return nil, storage.ErrNotFound
	}

	const selectTaskQuery = `
SELECT ` + taskColumns + `
FROM tasks
WHERE id = $1 AND user_id = $2
`
	task, err := scanTask(r.pool.QueryRow(ctx, selectTaskQuery, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select task: %w", err)
	}
	return task, nil
}

func (r *taskRepository) List(ctx context.Context, params storage.TaskListParams) ([]*models.Task, int64, error) {
	if !validID(params.Filter.UserID) {
		return []*models.Task{}, 0, nil
	}

	var status, priority *string
	if params.Filter.Status != nil {
		s := string(*params.Filter.Status)
		status = &s
	}
	if params.Filter.Priority != nil {
		p := string(*params.Filter.Priority)
		priority = &p
	}

	const where = `
WHERE user_id = $1
  AND ($2::text IS NULL OR status = $2)
  AND ($3::text IS NULL OR priority = $3)
`
	var total int64
	err := r.pool.QueryRow(
		ctx,
		`SELECT count(*) FROM tasks`+where,
		params.Filter.UserID,
		status,
		priority,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	orderBy, ok := orderExpressions[params.Sort.Field]
	if !ok {
		orderBy = orderExpressions[storage.SortByDueDate]
	}
	direction := "ASC"
	if params.Sort.Desc {
		direction = "DESC"
	}

	selectTasksQuery := `SELECT ` + taskColumns + `
FROM tasks` + where + `
ORDER BY ` + orderBy + ` ` + direction + `, id ASC
LIMIT $4 OFFSET $5
`
	rows, err := r.pool.Query(
		ctx,
		selectTasksQuery,
		params.Filter.UserID,
		status,
		priority,
		params.Limit,
		params.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to select tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0, params.Limit)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	err = rows.Err()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to iterate over rows: %w", err)
	}
	return tasks, total, nil
}

func (r *taskRepository) Update(ctx context.Context, id, userID string, patch models.TaskPatch) (*models.Task, error) {
	if !validID(id) || !validID(userID) {
		return nil, storage.ErrNotFound
	}

	var startGuard, dueGuard *time.Time
	switch {
	case patch.StartDate != nil && patch.DueDate == nil:
		startGuard = patch.StartDate
	case patch.DueDate != nil && patch.StartDate == nil:
		dueGuard = patch.DueDate
	}

	var tags []string
	if patch.Tags != nil {
		tags = *patch.Tags
		if tags == nil {
			tags = []string{}
		}
	}

	const updateTaskQuery = `
UPDATE tasks
SET task_name    = COALESCE($1, task_name),
    description  = COALESCE($2, description),
    status       = COALESCE($3, status),
    priority     = COALESCE($4, priority),
    due_date     = COALESCE($5, due_date),
    start_date   = COALESCE($6, start_date),
    tags         = COALESCE($7, tags),
    completed_at = COALESCE($8, completed_at),
    updated_at   = $9
WHERE id = $10 AND user_id = $11
  AND ($12::timestamptz IS NULL OR due_date > $12)
  AND ($13::timestamptz IS NULL OR start_date IS NULL OR start_date < $13)
RETURNING ` + taskColumns

	task, err := scanTask(r.pool.QueryRow(
		ctx,
		updateTaskQuery,
		patch.TaskName,
		patch.Description,
		enumPtr(patch.Status),
		enumPtr(patch.Priority),
		patch.DueDate,
		patch.StartDate,
		tags,
		patch.CompletedAt,
		patch.UpdatedAt,
		id,
		userID,
		startGuard,
		dueGuard,
	))
	if err == nil {
		return task, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	if startGuard == nil && dueGuard == nil {
		return nil, storage.ErrNotFound
	}

	const existsQuery = `
SELECT EXISTS(SELECT 1 FROM tasks WHERE id = $1 AND user_id = $2)
`
	var exists bool
	err = r.pool.QueryRow(ctx, existsQuery, id, userID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check task existence: %w", err)
	}
	if !exists {
		return nil, storage.ErrNotFound
	}
	return nil, storage.ErrDateOrder
}

func (r *taskRepository) Delete(ctx context.Context, id, userID string) error {
	if !validID(id) || !validID(userID) {
		return storage.ErrNotFound
	}

	const deleteTaskQuery = `
DELETE FROM tasks
WHERE id = $1 AND user_id = $2
`
	tag, err := r.pool.Exec(ctx, deleteTaskQuery, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanTask(row pgx.Row) (*models.Task, error) {
	var (
		task     models.Task
		status   string
		priority string
	)
	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.TaskName,
		&task.Description,
		&status,
		&priority,
		&task.DueDate,
		&task.StartDate,
		&task.CompletedAt,
		&task.Tags,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Status = models.Status(status)
	task.Priority = models.Priority(priority)
	if task.Tags == nil {
		task.Tags = []string{}
	}

	// pgx returns timestamptz in the local zone.
	task.DueDate = task.DueDate.UTC()
	task.CreatedAt = task.CreatedAt.UTC()
	task.UpdatedAt = task.UpdatedAt.UTC()
	for _, t := range []*time.Time{task.StartDate, task.CompletedAt} {
		if t != nil {
			*t = t.UTC()
		}
	}
	return &task, nil
}

func enumPtr[T ~string](v *T) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}
