package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arklim/realmeye-identity/internal/usecase"
)

// AuthHandler exposes the credential lifecycle endpoints.
type AuthHandler struct {
	service *usecase.Service
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(service *usecase.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

// RegisterRoutes binds the credential lifecycle routes.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/login", h.login)
	r.POST("/register/start", h.startRegistration)
	r.GET("/register/:session_id", h.getRegistrationSession)
	r.POST("/register", h.register)
	r.POST("/password", h.changePassword)
	r.POST("/token", h.createToken)
}

func (h *AuthHandler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	authCode, err := h.service.Login(c.Request.Context(), strings.TrimSpace(req.Name), req.Password)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
			{Err: usecase.ErrIncorrectPassword, Status: http.StatusUnauthorized, Message: "incorrect password"},
		}, http.StatusInternalServerError, "login failed")
		return
	}

	c.JSON(http.StatusOK, AuthCodeResponse{AuthCode: authCode})
}

func (h *AuthHandler) startRegistration(c *gin.Context) {
	session, err := h.service.StartRegistration(c.Request.Context())
	if err != nil {
		RespondWithMappedError(c, err, nil, http.StatusInternalServerError, "failed to start registration")
		return
	}

	c.JSON(http.StatusCreated, RegistrationSessionResponse{
		SessionID: session.ID,
		Code:      session.Code,
		ExpiresAt: session.ExpiresAt,
	})
}

func (h *AuthHandler) getRegistrationSession(c *gin.Context) {
	session, err := h.service.GetRegistrationSession(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrSessionExpired, Status: http.StatusNotFound, Message: "registration session expired"},
		}, http.StatusInternalServerError, "failed to load registration session")
		return
	}

	c.JSON(http.StatusOK, RegistrationSessionResponse{
		SessionID: session.ID,
		Code:      session.Code,
		ExpiresAt: session.ExpiresAt,
	})
}

func (h *AuthHandler) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid registration payload"))
		return
	}

	authCode, err := h.service.Register(c.Request.Context(), req.SessionID, strings.TrimSpace(req.Name), req.Password, req.Restore)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrSessionExpired, Status: http.StatusGone, Message: "registration session expired"},
			{Err: usecase.ErrAlreadyExists, Status: http.StatusConflict, Message: "user already exists"},
			{Err: usecase.ErrRestoreNotFound, Status: http.StatusNotFound, Message: "no account to restore"},
			{Err: usecase.ErrIncorrectCode, Status: http.StatusBadRequest, Message: "verification code not found on profile"},
		}, http.StatusInternalServerError, "registration failed")
		return
	}

	c.JSON(http.StatusOK, AuthCodeResponse{AuthCode: authCode})
}

func (h *AuthHandler) changePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid password change payload"))
		return
	}

	err := h.service.ChangePassword(c.Request.Context(), strings.TrimSpace(req.Name), req.OldPassword, req.NewPassword)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
			{Err: usecase.ErrIncorrectPassword, Status: http.StatusUnauthorized, Message: "incorrect password"},
		}, http.StatusInternalServerError, "password change failed")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) createToken(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid token payload"))
		return
	}

	token, err := h.service.CreateIdentityToken(c.Request.Context(), req.AuthCode)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidAuthCode, Status: http.StatusUnauthorized, Message: "invalid auth code"},
		}, http.StatusInternalServerError, "token issuance failed")
		return
	}

	c.JSON(http.StatusOK, TokenResponse{Token: token})
}
