package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
)

// ErrorResponse represents a generic error payload with the request id for
// debugging.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// NewErrorResponse creates an error response with the request id from context.
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	requestID, _ := c.Get("request_id")
	requestIDStr, _ := requestID.(string)

	return ErrorResponse{
		Error:     errorMsg,
		RequestID: requestIDStr,
	}
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthCodeResponse carries a single-use auth code redeemable for an
// identity token.
type AuthCodeResponse struct {
	AuthCode string `json:"auth_code"`
}

// RegistrationSessionResponse describes a pending registration session.
type RegistrationSessionResponse struct {
	SessionID string    `json:"session_id"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RegisterRequest defines the payload for completing a registration.
type RegisterRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Password  string `json:"password" binding:"required"`
	Restore   bool   `json:"restore"`
}

// ChangePasswordRequest defines the payload for rotating a password.
type ChangePasswordRequest struct {
	Name        string `json:"name" binding:"required"`
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// TokenRequest defines the payload for exchanging an auth code.
type TokenRequest struct {
	AuthCode string `json:"auth_code" binding:"required"`
}

// TokenResponse carries a signed identity token.
type TokenResponse struct {
	Token string `json:"token"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse reports per-dependency readiness.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
