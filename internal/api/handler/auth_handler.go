package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/natanhermes/buildflow/config"
	"github.com/natanhermes/buildflow/internal/api/middleware"
	"github.com/natanhermes/buildflow/internal/dto"
	"github.com/natanhermes/buildflow/internal/service"
	"github.com/natanhermes/buildflow/pkg/response"
)

// AuthHandler session endpoints.
type AuthHandler struct {
	authSvc service.AuthService
	cookie  config.CookieConfig
	logger  *zap.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(authSvc service.AuthService, cookie config.CookieConfig, logger *zap.Logger) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = "buildflow_session"
	}
	return &AuthHandler{authSvc: authSvc, cookie: cookie, logger: logger}
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	switch strings.ToLower(h.cookie.SameSite) {
	case "strict":
		c.SetSameSite(http.SameSiteStrictMode)
	case "none":
		c.SetSameSite(http.SameSiteNoneMode)
	default:
		c.SetSameSite(http.SameSiteLaxMode)
	}
	c.SetCookie(h.cookie.Name, value, maxAge, "/", h.cookie.Domain, h.cookie.Secure, true)
}

// Login authenticates and opens a session.
//
// @Summary     Login
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body     dto.LoginRequest true "Credenciais"
// @Success     200     {object} response.Response{data=dto.TokenResponse}
// @Failure     400     {object} response.Response
// @Failure     401     {object} response.Response
// @Failure     403     {object} response.Response
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.Unauthorized(c, 11001, err.Error())
		case errors.Is(err, service.ErrUsuarioInativo):
			response.Forbidden(c, 11002, err.Error())
		default:
			internalError(c, h.logger, err)
		}
		return
	}

	h.setSessionCookie(c, result.AccessToken, result.ExpiresIn)
	response.OK(c, result)
}

// Logout revokes the current token and clears the cookie.
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	jti := c.GetString(middleware.CtxTokenJTI)
	exp := c.GetTime(middleware.CtxTokenExp)
	if exp.IsZero() {
		exp = time.Now()
	}

	if err := h.authSvc.Logout(c.Request.Context(), jti, exp); err != nil {
		// the cookie is cleared anyway; the token stays valid until expiry
		h.logger.Warn("token não revogado", zap.String("jti", jti), zap.Error(err))
	}

	h.setSessionCookie(c, "", -1)
	response.OK(c, nil)
}

// Me returns the authenticated user.
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	user, err := h.authSvc.Me(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUsuarioNotFound) {
			response.Unauthorized(c, 11003, err.Error())
			return
		}
		internalError(c, h.logger, err)
		return
	}
	response.OK(c, user)
}
