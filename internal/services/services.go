package services

import (
	"context"
	"errors"
	"time"

	"github.com/adanyl0v/go-task-manager/internal/models"
	"github.com/adanyl0v/go-task-manager/internal/storage"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	// ErrStartAfterDue is returned when an update would leave the start
	// date at or after the due date stored on the task.
	ErrStartAfterDue = errors.New("start date must be before due date")

	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrNoCredential        = errors.New("no authentication token")
	ErrMalformedCredential = errors.New("malformed authentication token")
	ErrInvalidCredential   = errors.New("authentication token is not valid or expired")
	ErrUnknownSubject      = errors.New("token subject no longer exists")
	ErrSubjectDeactivated  = errors.New("user account is deactivated")
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	DefaultSortBy   = storage.SortByDueDate
)

type TaskService interface {
	// CreateTask stores a new task owned by params.UserID. Missing status
	// and priority get their defaults.
	CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error)

	// GetTask returns ErrTaskNotFound if the task doesn't exist or
	// belongs to another user.
	GetTask(ctx context.Context, userID, taskID string) (*models.Task, error)

	// ListTasks returns a page of the user's tasks. Zero values in
	// params fall back to page 1, DefaultPageSize and DefaultSortBy.
	ListTasks(ctx context.Context, params ListTasksParams) (*ListTasksResult, error)

	// UpdateTask applies a partial update.
	//
	// Setting the status to completed stamps CompletedAt with the
	// update time. It returns ErrTaskNotFound if the task doesn't exist
	// or belongs to another user, and ErrStartAfterDue if the dates
	// would end up out of order.
	UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error)

	// DeleteTask returns ErrTaskNotFound if the task doesn't exist or
	// belongs to another user.
	DeleteTask(ctx context.Context, userID, taskID string) error
}

type AuthService interface {
	// Register creates an active user with the given email and password
	// and issues an access token for it.
	//
	// It returns ErrUserAlreadyExists if the email is taken.
	Register(ctx context.Context, params CredentialsParams) (*AuthResult, error)

	// Login authenticates the user by email and password.
	//
	// It returns ErrInvalidCredentials both for an unknown email and for
	// a wrong password, and ErrSubjectDeactivated for inactive users.
	Login(ctx context.Context, params CredentialsParams) (*AuthResult, error)

	// VerifyToken checks the value of an Authorization header and returns
	// the ID of the user it was issued to. The "Bearer " prefix is
	// optional.
	VerifyToken(ctx context.Context, header string) (string, error)
}

type CreateTaskParams struct {
	UserID      string
	TaskName    string
	Description string
	Status      models.Status
	Priority    models.Priority
	DueDate     time.Time
	StartDate   *time.Time
	Tags        []string
}

type ListTasksParams struct {
	UserID   string
	Status   *models.Status
	Priority *models.Priority
	SortBy   storage.SortField
	SortDesc bool
	Page     int
	Limit    int
}

type ListTasksResult struct {
	Tasks []*models.Task
	Total int64
	Page  int
	Pages int64
}

type UpdateTaskParams struct {
	ID          string
	UserID      string
	TaskName    *string
	Description *string
	Status      *models.Status
	Priority    *models.Priority
	DueDate     *time.Time
	StartDate   *time.Time
	Tags        *[]string
}

type CredentialsParams struct {
	Email    string
	Password string
}

type AuthResult struct {
	User        *models.User
	AccessToken string
	ExpiresAt   time.Time
}
