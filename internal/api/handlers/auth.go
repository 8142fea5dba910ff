package handlers

import (
	"net/http"
	"time"

	"fleet-dashboard/internal/models"
	"fleet-dashboard/internal/session"
	"fleet-dashboard/pkg/jwt"
	"fleet-dashboard/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// CredentialsRequest is the body of login and register. The password is
// required for form parity only; it is never checked.
type CredentialsRequest struct {
	Username string `json:"username" validate:"required,min=2"`
	Password string `json:"password" validate:"required,min=4"`
}

type RefreshTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// AuthResponse is returned by a successful login or registration
type AuthResponse struct {
	Token        string              `json:"token"`
	User         models.User         `json:"user"`
	Notification models.Notification `json:"notification"`
}

type SessionResponse struct {
	State session.State `json:"state"`
	Ready bool          `json:"ready"`
	User  *models.User  `json:"user,omitempty"`
}

type AuthHandler struct {
	sessions  *session.Manager
	tokens    *jwt.JWTUtil
	validator *validator.Validate
}

func NewAuthHandler(sessions *session.Manager, tokens *jwt.JWTUtil) *AuthHandler {
	return &AuthHandler{
		sessions:  sessions,
		tokens:    tokens,
		validator: newValidator(time.Now),
	}
}

// Login signs in a registered user and issues a bearer token
func (h *AuthHandler) Login(c *gin.Context) {
	var req CredentialsRequest
	if !bindAndValidate(c, h.validator, &req) {
		return
	}

	ok, notification := h.sessions.Login(c.Request.Context(), req.Username, req.Password)
	if !ok {
		utils.FailureResponse(c, http.StatusUnauthorized, notification.Description, gin.H{"notification": notification})
		return
	}

	h.issueToken(c, http.StatusOK, notification)
}

// Register creates an admin user, signs it in and issues a bearer token
func (h *AuthHandler) Register(c *gin.Context) {
	var req CredentialsRequest
	if !bindAndValidate(c, h.validator, &req) {
		return
	}

	ok, notification := h.sessions.Register(c.Request.Context(), req.Username, req.Password)
	if !ok {
		utils.FailureResponse(c, http.StatusConflict, notification.Description, gin.H{"notification": notification})
		return
	}

	h.issueToken(c, http.StatusCreated, notification)
}

// Logout always succeeds, even when nobody is signed in
func (h *AuthHandler) Logout(c *gin.Context) {
	notification := h.sessions.Logout(c.Request.Context())
	utils.SuccessResponse(c, http.StatusOK, "Logout successful", gin.H{"notification": notification})
}

// GetSession reports the session state so clients can decide between the
// loading indicator, the login page and the dashboard.
func (h *AuthHandler) GetSession(c *gin.Context) {
	response := SessionResponse{
		State: h.sessions.State(),
		Ready: h.sessions.Ready(),
	}
	if user, ok := h.sessions.CurrentUser(); ok {
		response.User = &user
	}

	utils.SuccessResponse(c, http.StatusOK, "Session retrieved successfully", response)
}

// RefreshToken exchanges a still-valid token for one with a fresh expiry
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if !bindAndValidate(c, h.validator, &req) {
		return
	}

	token, err := h.tokens.RefreshToken(req.Token)
	if err != nil {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Token refresh failed", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Token refreshed successfully", gin.H{"token": token})
}

func (h *AuthHandler) issueToken(c *gin.Context, status int, notification models.Notification) {
	user, ok := h.sessions.CurrentUser()
	if !ok {
		utils.ErrorResponse(c, http.StatusConflict, "Session ended before a token could be issued", nil)
		return
	}

	token, err := h.tokens.GenerateToken(user.ID, user.Username, string(user.Role))
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to generate token", err)
		return
	}

	utils.SuccessResponse(c, status, notification.Title, AuthResponse{
		Token:        token,
		User:         user,
		Notification: notification,
	})
}
