package handlers

import (
	"net/http"
	"time"

	"github.com/AtRiskMedia/storefront-go/internal/application/services"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/storefront-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// CredentialsRequest is the body of login and sign-up.
type CredentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthHandlers contains all authentication-related HTTP handlers
type AuthHandlers struct {
	authService  *services.AuthService
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
	secureCookie bool
}

// NewAuthHandlers creates auth handlers with injected dependencies
func NewAuthHandlers(authService *services.AuthService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker, secureCookie bool) *AuthHandlers {
	return &AuthHandlers{
		authService:  authService,
		logger:       logger,
		perfTracker:  perfTracker,
		secureCookie: secureCookie,
	}
}

// PostLogin handles POST /api/v1/auth/login
func (h *AuthHandlers) PostLogin(c *gin.Context) {
	marker := h.perfTracker.StartOperation("post_login_request", "")
	defer marker.Complete()
	h.logger.Auth().Debug("Received login request", "method", c.Request.Method, "path", c.Request.URL.Path)

	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, marker, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger.Auth(), marker, err)
		return
	}

	maxAge := int(time.Until(result.ExpiresAt).Seconds())
	c.SetCookie(middleware.AuthCookie, result.Token, maxAge, "/", "", h.secureCookie, true)

	marker.SetSuccess(true)
	h.logger.Perf().Info("Performance for PostLogin request", "duration", marker.Elapsed(), "success", true)
	c.JSON(http.StatusOK, result)
}

// PostLogout handles POST /api/v1/auth/logout
func (h *AuthHandlers) PostLogout(c *gin.Context) {
	marker := h.perfTracker.StartOperation("post_logout_request", "")
	defer marker.Complete()

	c.SetCookie(middleware.AuthCookie, "", -1, "/", "", h.secureCookie, true)

	h.logger.Auth().Info("Logout completed")
	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// PostSignUp handles POST /api/v1/auth/signup
func (h *AuthHandlers) PostSignUp(c *gin.Context) {
	marker := h.perfTracker.StartOperation("post_signup_request", "")
	defer marker.Complete()

	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, marker, err)
		return
	}

	result, err := h.authService.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger.Auth(), marker, err)
		return
	}

	marker.SetSuccess(true)
	h.logger.Perf().Info("Performance for PostSignUp request", "duration", marker.Elapsed(), "success", true)
	c.JSON(http.StatusCreated, result)
}

// GetSession handles GET /api/v1/auth/session. An anonymous caller gets
// {"user": null} rather than an error.
func (h *AuthHandlers) GetSession(c *gin.Context) {
	marker := h.perfTracker.StartOperation("get_session_request", "")
	defer marker.Complete()

	admin, err := h.authService.CurrentUser(c.Request.Context(), middleware.ExtractToken(c))
	if err != nil {
		respondError(c, h.logger.Auth(), marker, err)
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"user": admin, "authenticated": admin != nil})
}

// GetConfirm handles GET /api/v1/auth/confirm?token=, the target of the
// confirmation email.
func (h *AuthHandlers) GetConfirm(c *gin.Context) {
	marker := h.perfTracker.StartOperation("get_confirm_request", "")
	defer marker.Complete()

	if _, err := h.authService.Confirm(c.Request.Context(), c.Query("token")); err != nil {
		respondError(c, h.logger.Auth(), marker, err)
		return
	}

	marker.SetSuccess(true)
	c.Redirect(http.StatusFound, "/?confirmed=1")
}
