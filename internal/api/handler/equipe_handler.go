package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/natanhermes/buildflow/internal/dto"
	"github.com/natanhermes/buildflow/internal/service"
	"github.com/natanhermes/buildflow/pkg/response"
)

// EquipeHandler crews and membership.
type EquipeHandler struct {
	equipeSvc service.EquipeService
	logger    *zap.Logger
}

// NewEquipeHandler creates an EquipeHandler.
func NewEquipeHandler(equipeSvc service.EquipeService, logger *zap.Logger) *EquipeHandler {
	return &EquipeHandler{equipeSvc: equipeSvc, logger: logger}
}

// Create POST /api/v1/equipes
func (h *EquipeHandler) Create(c *gin.Context) {
	var req dto.CreateEquipeRequest
	if !bindJSON(c, &req) {
		return
	}
	e, err := h.equipeSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleEquipeError(c, err)
		return
	}
	response.Created(c, e)
}

// GetByID GET /api/v1/equipes/:id
func (h *EquipeHandler) GetByID(c *gin.Context) {
	e, err := h.equipeSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleEquipeError(c, err)
		return
	}
	response.OK(c, e)
}

// List GET /api/v1/equipes
func (h *EquipeHandler) List(c *gin.Context) {
	var req dto.EquipeListRequest
	if !bindQuery(c, &req) {
		return
	}
	list, total, err := h.equipeSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleEquipeError(c, err)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Update PUT /api/v1/equipes/:id
func (h *EquipeHandler) Update(c *gin.Context) {
	var req dto.UpdateEquipeRequest
	if !bindJSON(c, &req) {
		return
	}
	e, err := h.equipeSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleEquipeError(c, err)
		return
	}
	response.OK(c, e)
}

// Delete DELETE /api/v1/equipes/:id
func (h *EquipeHandler) Delete(c *gin.Context) {
	if err := h.equipeSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleEquipeError(c, err)
		return
	}
	response.OK(c, nil)
}

// AddIntegrante POST /api/v1/equipes/:id/integrantes
func (h *EquipeHandler) AddIntegrante(c *gin.Context) {
	var req dto.EquipeIntegranteRequest
	if !bindJSON(c, &req) {
		return
	}
	e, err := h.equipeSvc.AddIntegrante(c.Request.Context(), c.Param("id"), req.IntegranteID)
	if err != nil {
		h.handleEquipeError(c, err)
		return
	}
	response.OK(c, e)
}

// MoveIntegrante POST /api/v1/equipes/:id/integrantes/mover
func (h *EquipeHandler) MoveIntegrante(c *gin.Context) {
	var req dto.MoveIntegranteRequest
	if !bindJSON(c, &req) {
		return
	}
	e, err := h.equipeSvc.MoveIntegrante(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleEquipeError(c, err)
		return
	}
	response.OK(c, e)
}

// RemoveIntegrante DELETE /api/v1/equipes/:id/integrantes/:integranteId
func (h *EquipeHandler) RemoveIntegrante(c *gin.Context) {
	e, err := h.equipeSvc.RemoveIntegrante(c.Request.Context(), c.Param("id"), c.Param("integranteId"))
	if err != nil {
		h.handleEquipeError(c, err)
		return
	}
	response.OK(c, e)
}

func (h *EquipeHandler) handleEquipeError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrEquipeNotFound):
		response.NotFound(c, 15001, err.Error())
	case errors.Is(err, service.ErrEquipeNomeExists):
		response.Conflict(c, 15002, err.Error())
	case errors.Is(err, service.ErrIntegranteJaNaEquipe):
		response.Conflict(c, 15003, err.Error())
	case errors.Is(err, service.ErrIntegranteForaDaEquipe):
		response.BadRequest(c, 15004, err.Error())
	case errors.Is(err, service.ErrMesmaEquipe):
		response.BadRequest(c, 15005, err.Error())
	case errors.Is(err, service.ErrObraNotFound):
		response.NotFound(c, 13001, err.Error())
	case errors.Is(err, service.ErrIntegranteNotFound):
		response.NotFound(c, 16001, err.Error())
	default:
		internalError(c, h.logger, err)
	}
}
