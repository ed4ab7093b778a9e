package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-task-manager/internal/models"
	"github.com/adanyl0v/go-task-manager/internal/services"
)

const (
	msgUserRegistered       = "User registered successfully"
	msgLoggedIn             = "Login successful"
	msgUserExists           = "User with this email already exists"
	msgInvalidCredentials   = "Invalid email or password"
	msgErrorRegisteringUser = "Error registering user"
	msgErrorLoggingIn       = "Error logging in"
)

type signupRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=255"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,max=255"`
}

var credentialMessages = map[string]string{
	"email":    "Please provide a valid email",
	"password": "Password must be at least 6 characters",
}

var loginMessages = map[string]string{
	"email":    "Please provide a valid email",
	"password": "Password is required",
}

type userResponse struct {
	ID        string    `json:"_id"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

func newUserResponse(user *models.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Email:     user.Email,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
	}
}

type authData struct {
	User      userResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

type authEnvelope struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Data    authData `json:"data"`
}

func newAuthEnvelope(message string, result *services.AuthResult) authEnvelope {
	return authEnvelope{
		Success: true,
		Message: message,
		Data: authData{
			User:      newUserResponse(result.User),
			Token:     result.AccessToken,
			ExpiresAt: result.ExpiresAt,
		},
	}
}

func (h *handlerImpl) HandleRegister(c *gin.Context) {
	var req signupRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind request body")
		if errs, ok := bindingErrors(err, credentialMessages); ok {
			abortValidation(c, errs)
			return
		}
		abort(c, newBadRequestError(msgInvalidRequestBody))
		return
	}

	result, err := h.auth.Register(c, services.CredentialsParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, services.ErrUserAlreadyExists) {
			abort(c, newConflictError(msgUserExists))
			return
		}

		h.logger.Error().
			Err(err).
			Msg("failed to register")
		abort(c, h.newInternalError(msgErrorRegisteringUser, err))
		return
	}

	c.JSON(http.StatusCreated, newAuthEnvelope(msgUserRegistered, result))
}

func (h *handlerImpl) HandleLogin(c *gin.Context) {
	var req loginRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind request body")
		if errs, ok := bindingErrors(err, loginMessages); ok {
			abortValidation(c, errs)
			return
		}
		abort(c, newBadRequestError(msgInvalidRequestBody))
		return
	}

	result, err := h.auth.Login(c, services.CredentialsParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			abort(c, newUnauthorizedError(msgInvalidCredentials))
		case errors.Is(err, services.ErrSubjectDeactivated):
			abort(c, newUnauthorizedError(msgUserDeactivated))
		default:
			h.logger.Error().
				Err(err).
				Msg("failed to login")
			abort(c, h.newInternalError(msgErrorLoggingIn, err))
		}
		return
	}

	c.JSON(http.StatusOK, newAuthEnvelope(msgLoggedIn, result))
}
