package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/natanhermes/buildflow/internal/dto"
	"github.com/natanhermes/buildflow/internal/service"
	"github.com/natanhermes/buildflow/pkg/response"
)

// UsuarioHandler account management, MASTER only.
type UsuarioHandler struct {
	usuarioSvc service.UsuarioService
	logger     *zap.Logger
}

// NewUsuarioHandler creates a UsuarioHandler.
func NewUsuarioHandler(usuarioSvc service.UsuarioService, logger *zap.Logger) *UsuarioHandler {
	return &UsuarioHandler{usuarioSvc: usuarioSvc, logger: logger}
}

// Create POST /api/v1/usuarios
func (h *UsuarioHandler) Create(c *gin.Context) {
	var req dto.CreateUsuarioRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.usuarioSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleUsuarioError(c, err)
		return
	}
	response.Created(c, user)
}

// List GET /api/v1/usuarios
func (h *UsuarioHandler) List(c *gin.Context) {
	var req dto.UsuarioListRequest
	if !bindQuery(c, &req) {
		return
	}
	list, total, err := h.usuarioSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleUsuarioError(c, err)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// UpdateStatus PATCH /api/v1/usuarios/:id/status
func (h *UsuarioHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateUsuarioStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	if err := h.usuarioSvc.UpdateStatus(c.Request.Context(), c.Param("id"), &req, callerID); err != nil {
		h.handleUsuarioError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *UsuarioHandler) handleUsuarioError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrUsuarioNotFound):
		response.NotFound(c, 12001, err.Error())
	case errors.Is(err, service.ErrUsernameExists):
		response.Conflict(c, 12002, err.Error())
	case errors.Is(err, service.ErrEmailExists):
		response.Conflict(c, 12003, err.Error())
	case errors.Is(err, service.ErrUsuarioSelfDisable):
		response.BadRequest(c, 12004, err.Error())
	default:
		internalError(c, h.logger, err)
	}
}
