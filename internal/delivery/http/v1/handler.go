package v1

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-manager/internal/services"
	"github.com/adanyl0v/go-task-manager/internal/validation"
)

type Handler interface {
	HandleRegister(c *gin.Context)
	HandleLogin(c *gin.Context)
	HandleAuthMiddleware(c *gin.Context)

	HandleCreateTask(c *gin.Context)
	HandleGetTasks(c *gin.Context)
	HandleGetTask(c *gin.Context)
	HandleUpdateTask(c *gin.Context)
	HandleDeleteTask(c *gin.Context)

	HandleAccessLog(c *gin.Context)
	HandleRecovery(c *gin.Context, recovered any)
	HandleNoRoute(c *gin.Context)
}

type handlerImpl struct {
	logger    zerolog.Logger
	auth      services.AuthService
	tasks     services.TaskService
	validator *validation.Validator
	// exposeErrors adds the underlying error to 500 responses.
	exposeErrors bool
}

func New(
	logger zerolog.Logger,
	authService services.AuthService,
	taskService services.TaskService,
	validator *validation.Validator,
	exposeErrors bool,
) Handler {
	useJSONFieldNames()
	return &handlerImpl{
		logger:       logger,
		auth:         authService,
		tasks:        taskService,
		validator:    validator,
		exposeErrors: exposeErrors,
	}
}

// RegisterRoutes mounts the API under /api and answers unknown routes with
// the JSON envelope.
func RegisterRoutes(router *gin.Engine, h Handler) {
	api := router.Group("/api")

	authRouter := api.Group("/auth")
	authRouter.POST("/signup", h.HandleRegister)
	authRouter.POST("/login", h.HandleLogin)

	taskRouter := api.Group("/tasks", h.HandleAuthMiddleware)
	taskRouter.POST("/createTask", h.HandleCreateTask)
	taskRouter.GET("", h.HandleGetTasks)
	taskRouter.GET("/:id", h.HandleGetTask)
	taskRouter.PUT("/:id", h.HandleUpdateTask)
	taskRouter.DELETE("/:id", h.HandleDeleteTask)

	router.NoRoute(h.HandleNoRoute)
}

var registerTagNameOnce sync.Once

// useJSONFieldNames makes binding errors report JSON keys instead of Go
// struct field names.
func useJSONFieldNames() {
	registerTagNameOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
}
