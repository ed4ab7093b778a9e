package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/adanyl0v/go-task-manager/internal/validation"
)

const (
	msgInvalidRequestBody = "Invalid request body"
	msgTaskNotFound       = "Task not found"
	msgRouteNotFound      = "Route not found"
	msgSomethingWentWrong = "Something went wrong!"
)

type apiError struct {
	Code    int    `json:"-"`
	Success bool   `json:"success"`
	Message string `json:"message"`
	// Detail carries the underlying error of a 500 response and is only
	// filled when errors are exposed.
	Detail string `json:"error,omitempty"`
}

func newAPIError(code int, message string) apiError {
	return apiError{
		Code:    code,
		Message: message,
	}
}

func (e apiError) Error() string {
	return e.Message
}

func abort(c *gin.Context, err apiError) {
	c.AbortWithStatusJSON(err.Code, err)
}

func newBadRequestError(message string) apiError {
	return newAPIError(http.StatusBadRequest, message)
}

func newUnauthorizedError(message string) apiError {
	return newAPIError(http.StatusUnauthorized, message)
}

func newNotFoundError(message string) apiError {
	return newAPIError(http.StatusNotFound, message)
}

func newConflictError(message string) apiError {
	return newAPIError(http.StatusConflict, message)
}

func (h *handlerImpl) newInternalError(message string, cause error) apiError {
	e := newAPIError(http.StatusInternalServerError, message)
	if h.exposeErrors && cause != nil {
		e.Detail = cause.Error()
	}
	return e
}

type validationErrorResponse struct {
	Success bool              `json:"success"`
	Errors  validation.Errors `json:"errors"`
}

func abortValidation(c *gin.Context, errs validation.Errors) {
	c.AbortWithStatusJSON(http.StatusBadRequest, validationErrorResponse{Errors: errs})
}

// bindingErrors converts struct binding failures into field errors. It
// returns false for errors that are not validator failures, such as
// malformed JSON.
func bindingErrors(err error, messages map[string]string) (validation.Errors, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}

	errs := make(validation.Errors, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := messages[fe.Field()]
		if !ok {
			msg = "Invalid value"
		}
		fieldErr := validation.FieldError{
			Type:     "field",
			Msg:      msg,
			Path:     fe.Field(),
			Location: validation.LocationBody,
		}
		// Passwords are never echoed back.
		if fe.Field() != "password" {
			fieldErr.Value = fe.Value()
		}
		errs = append(errs, fieldErr)
	}
	return errs, true
}
