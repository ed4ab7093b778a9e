package models

import (
	"slices"
	"time"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Statuses lists every status in lifecycle order. Sorting by status follows
// this order rather than the lexical one.
var Statuses = []Status{
	StatusPending,
	StatusInProgress,
	StatusCompleted,
	StatusCancelled,
}

func (s Status) Valid() bool {
	return slices.Contains(Statuses, s)
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Priorities lists every priority from least to most pressing.
var Priorities = []Priority{
	PriorityLow,
	PriorityMedium,
	PriorityHigh,
	PriorityUrgent,
}

func (p Priority) Valid() bool {
	return slices.Contains(Priorities, p)
}

const (
	DefaultStatus   = StatusPending
	DefaultPriority = PriorityMedium
)

type Task struct {
	ID          string
	UserID      string
	TaskName    string
	Description string
	Status      Status
	Priority    Priority
	DueDate     time.Time
	StartDate   *time.Time
	CompletedAt *time.Time
	Tags        []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskPatch carries the fields of a partial update. Nil fields are left
// untouched by the store.
type TaskPatch struct {
	TaskName    *string
	Description *string
	Status      *Status
	Priority    *Priority
	DueDate     *time.Time
	StartDate   *time.Time
	Tags        *[]string
	CompletedAt *time.Time
	UpdatedAt   time.Time
}
