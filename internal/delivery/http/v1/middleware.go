package v1

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-task-manager/internal/services"
)

const userIDCtxKey = "user_id"

const (
	msgNoToken           = "No authentication token, access denied"
	msgInvalidFormat     = "Invalid token format"
	msgInvalidToken      = "Token is not valid or expired"
	msgUserGone          = "User no longer exists"
	msgUserDeactivated   = "User account is deactivated"
	msgAuthInternalError = "Server error in authentication"
)

func (h *handlerImpl) HandleAuthMiddleware(c *gin.Context) {
	const authHeader = "Authorization"
	userID, err := h.auth.VerifyToken(c, c.GetHeader(authHeader))
	if err != nil {
		h.logger.Warn().
			Err(err).
			Str("path", c.FullPath()).
			Msg("rejected request credentials")
		switch {
		case errors.Is(err, services.ErrNoCredential):
			abort(c, newUnauthorizedError(msgNoToken))
		case errors.Is(err, services.ErrMalformedCredential):
			abort(c, newUnauthorizedError(msgInvalidFormat))
		case errors.Is(err, services.ErrInvalidCredential):
			abort(c, newUnauthorizedError(msgInvalidToken))
		case errors.Is(err, services.ErrUnknownSubject):
			abort(c, newUnauthorizedError(msgUserGone))
		case errors.Is(err, services.ErrSubjectDeactivated):
			abort(c, newUnauthorizedError(msgUserDeactivated))
		default:
			abort(c, newAPIError(http.StatusInternalServerError, msgAuthInternalError))
		}
		return
	}

	c.Set(userIDCtxKey, userID)
	c.Next()
}

// HandleAccessLog logs one line per request after the rest of the chain
// has run.
func (h *handlerImpl) HandleAccessLog(c *gin.Context) {
	start := time.Now()
	path := c.Request.URL.Path
	if raw := c.Request.URL.RawQuery; raw != "" {
		path += "?" + raw
	}

	c.Next()

	status := c.Writer.Status()
	event := h.logger.Info()
	switch {
	case status >= http.StatusInternalServerError:
		event = h.logger.Error()
	case status >= http.StatusBadRequest:
		event = h.logger.Warn()
	}
	if userID := c.GetString(userIDCtxKey); userID != "" {
		event = event.Str("user_id", userID)
	}
	event.
		Str("method", c.Request.Method).
		Str("path", path).
		Int("status", status).
		Dur("latency", time.Since(start)).
		Str("client_ip", c.ClientIP()).
		Int("size", c.Writer.Size()).
		Msg("handled request")
}

// HandleRecovery is meant for gin.CustomRecovery.
func (h *handlerImpl) HandleRecovery(c *gin.Context, recovered any) {
	err, ok := recovered.(error)
	if !ok {
		err = fmt.Errorf("%v", recovered)
	}
	h.logger.Error().
		Err(err).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Msg("recovered from panic")
	abort(c, h.newInternalError(msgSomethingWentWrong, err))
}

func (h *handlerImpl) HandleNoRoute(c *gin.Context) {
	abort(c, newNotFoundError(msgRouteNotFound))
}

func mustUserID(c *gin.Context) string {
	return c.MustGet(userIDCtxKey).(string)
}
