package v1

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/adanyl0v/go-task-manager/internal/models"
	"github.com/adanyl0v/go-task-manager/internal/services"
	"github.com/adanyl0v/go-task-manager/internal/storage"
	"github.com/adanyl0v/go-task-manager/internal/validation"
)

const (
	msgTaskCreated       = "Task created successfully"
	msgTaskUpdated       = "Task updated successfully"
	msgTaskDeleted       = "Task deleted successfully"
	msgErrorCreatingTask = "Error creating task"
	msgErrorFetchingTask = "Error fetching tasks"
	msgErrorUpdatingTask = "Error updating task"
	msgErrorDeletingTask = "Error deleting task"
)

type taskResponse struct {
	ID          string     `json:"_id"`
	UserID      string     `json:"userId"`
	TaskName    string     `json:"taskName"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     time.Time  `json:"dueDate"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Tags        []string   `json:"tags"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func newTaskResponse(task *models.Task) taskResponse {
	tags := task.Tags
	if tags == nil {
		tags = []string{}
	}
	return taskResponse{
		ID:          task.ID,
		UserID:      task.UserID,
		TaskName:    task.TaskName,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		DueDate:     task.DueDate,
		StartDate:   task.StartDate,
		CompletedAt: task.CompletedAt,
		Tags:        tags,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

type taskEnvelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    taskResponse `json:"data"`
}

type pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int64 `json:"pages"`
}

type taskListEnvelope struct {
	Success    bool           `json:"success"`
	Data       []taskResponse `json:"data"`
	Pagination pagination     `json:"pagination"`
}

type messageEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// bindFields decodes a JSON object body. An empty body decodes to no
// fields so that validation reports what is missing.
func (h *handlerImpl) bindFields(c *gin.Context) (validation.Fields, bool) {
	body, err := c.GetRawData()
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to read request body")
		abort(c, newBadRequestError(msgInvalidRequestBody))
		return nil, false
	}

	fields := validation.Fields{}
	if len(bytes.TrimSpace(body)) == 0 {
		return fields, true
	}

	err = binding.JSON.BindBody(body, &fields)
	if err != nil || fields == nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind request body")
		abort(c, newBadRequestError(msgInvalidRequestBody))
		return nil, false
	}
	return fields, true
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	userID := mustUserID(c)

	fields, ok := h.bindFields(c)
	if !ok {
		return
	}
	if errs := h.validator.CreateTask(fields); len(errs) > 0 {
		abortValidation(c, errs)
		return
	}

	params := services.CreateTaskParams{UserID: userID}
	params.TaskName, _ = fields.String(validation.FieldTaskName)
	params.Description, _ = fields.String(validation.FieldDescription)
	params.DueDate, _ = fields.Time(validation.FieldDueDate)
	if status, ok := fields.String(validation.FieldStatus); ok {
		params.Status = models.Status(status)
	}
	if priority, ok := fields.String(validation.FieldPriority); ok {
		params.Priority = models.Priority(priority)
	}
	if start, ok := fields.Time(validation.FieldStartDate); ok {
		params.StartDate = &start
	}
	if tags, ok := fields.Strings(validation.FieldTags); ok {
		params.Tags = tags
	}

	task, err := h.tasks.CreateTask(c, params)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to create task")
		abort(c, h.newInternalError(msgErrorCreatingTask, err))
		return
	}

	c.JSON(http.StatusCreated, taskEnvelope{
		Success: true,
		Message: msgTaskCreated,
		Data:    newTaskResponse(task),
	})
}

func (h *handlerImpl) HandleGetTasks(c *gin.Context) {
	userID := mustUserID(c)

	query, errs := h.validator.TaskQuery(c.Request.URL.Query())
	if len(errs) > 0 {
		abortValidation(c, errs)
		return
	}

	params := services.ListTasksParams{UserID: userID}
	if status, ok := query.String(validation.FieldStatus); ok {
		s := models.Status(status)
		params.Status = &s
	}
	if priority, ok := query.String(validation.FieldPriority); ok {
		p := models.Priority(priority)
		params.Priority = &p
	}
	if sortBy, ok := query.String(validation.FieldSortBy); ok {
		params.SortBy = storage.SortField(sortBy)
	}
	if order, ok := query.String(validation.FieldSortOrder); ok {
		params.SortDesc = order == validation.SortDesc
	}
	params.Page, _ = query.Int(validation.FieldPage)
	params.Limit, _ = query.Int(validation.FieldLimit)

	result, err := h.tasks.ListTasks(c, params)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to list tasks")
		abort(c, h.newInternalError(msgErrorFetchingTask, err))
		return
	}

	data := make([]taskResponse, 0, len(result.Tasks))
	for _, task := range result.Tasks {
		data = append(data, newTaskResponse(task))
	}
	c.JSON(http.StatusOK, taskListEnvelope{
		Success: true,
		Data:    data,
		Pagination: pagination{
			Total: result.Total,
			Page:  result.Page,
			Pages: result.Pages,
		},
	})
}

func (h *handlerImpl) HandleGetTask(c *gin.Context) {
	userID := mustUserID(c)
	taskID := c.Param("id")

	if errs := h.validator.TaskID(taskID); len(errs) > 0 {
		abortValidation(c, errs)
		return
	}

	task, err := h.tasks.GetTask(c, userID, taskID)
	if err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			abort(c, newNotFoundError(msgTaskNotFound))
			return
		}

		h.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to get task")
		abort(c, h.newInternalError(msgErrorFetchingTask, err))
		return
	}

	c.JSON(http.StatusOK, taskEnvelope{
		Success: true,
		Data:    newTaskResponse(task),
	})
}

func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	userID := mustUserID(c)
	taskID := c.Param("id")

	fields, ok := h.bindFields(c)
	if !ok {
		return
	}
	if errs := h.validator.UpdateTask(taskID, fields); len(errs) > 0 {
		abortValidation(c, errs)
		return
	}

	params := services.UpdateTaskParams{ID: taskID, UserID: userID}
	if name, ok := fields.String(validation.FieldTaskName); ok {
		params.TaskName = &name
	}
	if desc, ok := fields.String(validation.FieldDescription); ok {
		params.Description = &desc
	}
	if status, ok := fields.String(validation.FieldStatus); ok {
		s := models.Status(status)
		params.Status = &s
	}
	if priority, ok := fields.String(validation.FieldPriority); ok {
		p := models.Priority(priority)
		params.Priority = &p
	}
	if due, ok := fields.Time(validation.FieldDueDate); ok {
		params.DueDate = &due
	}
	if start, ok := fields.Time(validation.FieldStartDate); ok {
		params.StartDate = &start
	}
	if tags, ok := fields.Strings(validation.FieldTags); ok {
		params.Tags = &tags
	}

	task, err := h.tasks.UpdateTask(c, params)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTaskNotFound):
			abort(c, newNotFoundError(msgTaskNotFound))
		case errors.Is(err, services.ErrStartAfterDue):
			abortValidation(c, validation.Errors{{
				Type:     "field",
				Value:    fields[validation.FieldStartDate],
				Msg:      validation.MsgStartBeforeDue,
				Path:     validation.FieldStartDate,
				Location: validation.LocationBody,
			}})
		default:
			h.logger.Error().
				Err(err).
				Str("task_id", taskID).
				Msg("failed to update task")
			abort(c, h.newInternalError(msgErrorUpdatingTask, err))
		}
		return
	}

	c.JSON(http.StatusOK, taskEnvelope{
		Success: true,
		Message: msgTaskUpdated,
		Data:    newTaskResponse(task),
	})
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	userID := mustUserID(c)
	taskID := c.Param("id")

	if errs := h.validator.TaskID(taskID); len(errs) > 0 {
		abortValidation(c, errs)
		return
	}

	err := h.tasks.DeleteTask(c, userID, taskID)
	if err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			abort(c, newNotFoundError(msgTaskNotFound))
			return
		}

		h.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to delete task")
		abort(c, h.newInternalError(msgErrorDeletingTask, err))
		return
	}

	c.JSON(http.StatusOK, messageEnvelope{
		Success: true,
		Message: msgTaskDeleted,
	})
}
