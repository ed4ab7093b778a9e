package validation

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/adanyl0v/go-task-manager/internal/models"
	"github.com/adanyl0v/go-task-manager/internal/storage"
)

const (
	FieldTaskName    = "taskName"
	FieldDescription = "description"
	FieldDueDate     = "dueDate"
	FieldStartDate   = "startDate"
	FieldPriority    = "priority"
	FieldStatus      = "status"
	FieldTags        = "tags"
	FieldID          = "id"
	FieldSortBy      = "sortBy"
	FieldSortOrder   = "sortOrder"
	FieldPage        = "page"
	FieldLimit       = "limit"
)

const (
	MsgTaskNameRequired = "Task name is required"
	MsgTaskNameLength   = "Task name must be between 3 and 100 characters"
	MsgDescriptionLong  = "Description cannot exceed 500 characters"
	MsgDueDateRequired  = "Due date is required"
	MsgInvalidDate      = "Invalid date format"
	MsgDueDateFuture    = "Due date must be in the future"
	MsgInvalidPriority  = "Invalid priority level"
	MsgInvalidStatus    = "Invalid status"
	MsgStartBeforeDue   = "Start date must be before due date"
	MsgTagsArray        = "Tags must be an array"
	MsgInvalidTag       = "Invalid tag format or length"
	MsgInvalidTaskID    = "Invalid task ID"
	MsgInvalidSortField = "Invalid sort field"
	MsgInvalidSortOrder = "Sort order must be asc or desc"
	MsgInvalidPage      = "Page must be a positive integer"
	MsgInvalidLimit     = "Limit must be between 1 and 100"
)

const (
	TaskNameMinLength    = 3
	TaskNameMaxLength    = 100
	DescriptionMaxLength = 500
	TagMaxLength         = 30
	MaxPageSize          = 100
)

const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// Validator holds the rule tables of the task endpoints.
type Validator struct {
	engine     *validator.Validate
	createTask Schema
	updateTask Schema
	taskQuery  Schema
	taskID     Schema
}

// New builds the rule tables and the validator engine that runs them.
// validID reports whether a string is an identifier of the active store; now
// is consulted for every due date check.
func New(validID func(string) bool, now func() time.Time) *Validator {
	idField := Field{
		Name:     FieldID,
		Location: LocationParams,
		Rules:    []Rule{Tag(tagTaskID, MsgInvalidTaskID)},
	}

	taskFields := func(requireCore bool) Schema {
		taskName := Field{
			Name:     FieldTaskName,
			Location: LocationBody,
			Optional: !requireCore,
			Trim:     true,
			Rules:    []Rule{Tag(lengthTag(TaskNameMinLength, TaskNameMaxLength), MsgTaskNameLength)},
		}
		dueDate := Field{
			Name:     FieldDueDate,
			Location: LocationBody,
			Optional: !requireCore,
			Rules: []Rule{
				Tag(tagISODate, MsgInvalidDate),
				Tag(tagFuture, MsgDueDateFuture),
			},
		}
		if requireCore {
			taskName.Rules = append([]Rule{Tag("required", MsgTaskNameRequired)}, taskName.Rules...)
			dueDate.Rules = append([]Rule{Tag("required", MsgDueDateRequired)}, dueDate.Rules...)
		}

		return Schema{
			taskName,
			{
				Name:     FieldDescription,
				Location: LocationBody,
				Optional: true,
				Trim:     true,
				Rules:    []Rule{Tag(lengthTag(0, DescriptionMaxLength), MsgDescriptionLong)},
			},
			dueDate,
			{
				Name:     FieldPriority,
				Location: LocationBody,
				Optional: true,
				Rules:    []Rule{Tag(oneOf(models.Priorities), MsgInvalidPriority)},
			},
			{
				Name:     FieldStatus,
				Location: LocationBody,
				Optional: true,
				Rules:    []Rule{Tag(oneOf(models.Statuses), MsgInvalidStatus)},
			},
			{
				Name:     FieldStartDate,
				Location: LocationBody,
				Optional: true,
				Rules: []Rule{
					Tag(tagISODate, MsgInvalidDate),
					Tag(tagBeforeField+"="+FieldDueDate, MsgStartBeforeDue),
				},
			},
			{
				Name:     FieldTags,
				Location: LocationBody,
				Optional: true,
				Rules: []Rule{
					Tag(tagArray, MsgTagsArray),
					Each(lengthTag(0, TagMaxLength), MsgInvalidTag),
				},
			},
		}
	}

	return &Validator{
		engine:     newEngine(validID, now),
		createTask: taskFields(true),
		updateTask: append(Schema{idField}, taskFields(false)...),
		taskQuery: Schema{
			{
				Name:     FieldStatus,
				Location: LocationQuery,
				Optional: true,
				Rules:    []Rule{Tag(oneOf(models.Statuses), MsgInvalidStatus)},
			},
			{
				Name:     FieldPriority,
				Location: LocationQuery,
				Optional: true,
				Rules:    []Rule{Tag(oneOf(models.Priorities), MsgInvalidPriority)},
			},
			{
				Name:     FieldSortBy,
				Location: LocationQuery,
				Optional: true,
				Rules:    []Rule{Tag(oneOf(storage.SortFields), MsgInvalidSortField)},
			},
			{
				Name:     FieldSortOrder,
				Location: LocationQuery,
				Optional: true,
				Rules:    []Rule{Tag(oneOf([]string{SortAsc, SortDesc}), MsgInvalidSortOrder)},
			},
			{
				Name:     FieldPage,
				Location: LocationQuery,
				Optional: true,
				Rules:    []Rule{Tag(tagInt+",min=1", MsgInvalidPage)},
			},
			{
				Name:     FieldLimit,
				Location: LocationQuery,
				Optional: true,
				Rules:    []Rule{Tag(tagInt+",min=1,max="+strconv.Itoa(MaxPageSize), MsgInvalidLimit)},
			},
		},
		taskID: Schema{idField},
	}
}

// CreateTask validates a create body. String fields are trimmed in place.
func (v *Validator) CreateTask(body Fields) Errors {
	return v.createTask.Validate(v.engine, body)
}

// UpdateTask validates the path id and a partial body. String fields are
// trimmed in place.
func (v *Validator) UpdateTask(id string, body Fields) Errors {
	input := make(Fields, len(body)+1)
	for k, val := range body {
		input[k] = val
	}
	input[FieldID] = id

	errs := v.updateTask.Validate(v.engine, input)
	for k := range body {
		body[k] = input[k]
	}
	return errs
}

func (v *Validator) TaskID(id string) Errors {
	return v.taskID.Validate(v.engine, Fields{FieldID: id})
}

// TaskQuery validates list parameters and returns them as Fields. Only the
// first value of a repeated parameter counts. page and limit are converted
// to int when they parse as one.
func (v *Validator) TaskQuery(query url.Values) (Fields, Errors) {
	fields := make(Fields, len(query))
	for key := range query {
		fields[key] = query.Get(key)
	}
	for _, key := range []string{FieldPage, FieldLimit} {
		if str, ok := fields.String(key); ok {
			if n, err := strconv.Atoi(str); err == nil {
				fields[key] = n
			}
		}
	}
	return fields, v.taskQuery.Validate(v.engine, fields)
}

func (f Fields) String(name string) (string, bool) {
	str, ok := f[name].(string)
	return str, ok
}

func (f Fields) Time(name string) (time.Time, bool) {
	str, ok := f.String(name)
	if !ok {
		return time.Time{}, false
	}
	return ParseDate(str)
}

// Strings returns an array of strings with every element trimmed.
func (f Fields) Strings(name string) ([]string, bool) {
	items, ok := f[name].([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		str, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, strings.TrimSpace(str))
	}
	return out, true
}

func (f Fields) Int(name string) (int, bool) {
	n, ok := f[name].(int)
	return n, ok
}
