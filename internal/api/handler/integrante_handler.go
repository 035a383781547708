package handler

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/natanhermes/buildflow/internal/dto"
	"github.com/natanhermes/buildflow/internal/service"
	"github.com/natanhermes/buildflow/pkg/response"
)

// IntegranteHandler workers.
type IntegranteHandler struct {
	integranteSvc service.IntegranteService
	logger        *zap.Logger
}

// NewIntegranteHandler creates an IntegranteHandler.
func NewIntegranteHandler(integranteSvc service.IntegranteService, logger *zap.Logger) *IntegranteHandler {
	return &IntegranteHandler{integranteSvc: integranteSvc, logger: logger}
}

// Create POST /api/v1/integrantes
func (h *IntegranteHandler) Create(c *gin.Context) {
	var req dto.CreateIntegranteRequest
	if !bindJSON(c, &req) {
		return
	}
	i, err := h.integranteSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleIntegranteError(c, err)
		return
	}
	response.Created(c, i)
}

// GetByID GET /api/v1/integrantes/:id
func (h *IntegranteHandler) GetByID(c *gin.Context) {
	i, err := h.integranteSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleIntegranteError(c, err)
		return
	}
	response.OK(c, i)
}

// List GET /api/v1/integrantes
func (h *IntegranteHandler) List(c *gin.Context) {
	var req dto.IntegranteListRequest
	if !bindQuery(c, &req) {
		return
	}
	list, total, err := h.integranteSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleIntegranteError(c, err)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Update PUT /api/v1/integrantes/:id
func (h *IntegranteHandler) Update(c *gin.Context) {
	var req dto.UpdateIntegranteRequest
	if !bindJSON(c, &req) {
		return
	}
	i, err := h.integranteSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleIntegranteError(c, err)
		return
	}
	response.OK(c, i)
}

// Delete DELETE /api/v1/integrantes/:id
func (h *IntegranteHandler) Delete(c *gin.Context) {
	if err := h.integranteSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleIntegranteError(c, err)
		return
	}
	response.OK(c, nil)
}

// CPFExists GET /api/v1/integrantes/cpf-exists?cpf=
func (h *IntegranteHandler) CPFExists(c *gin.Context) {
	exists, err := h.integranteSvc.CPFExists(c.Request.Context(), c.Query("cpf"))
	if err != nil {
		h.handleIntegranteError(c, err)
		return
	}
	response.OK(c, dto.ExistsResponse{Exists: exists})
}

// ListAtividades GET /api/v1/integrantes/:id/atividades
func (h *IntegranteHandler) ListAtividades(c *gin.Context) {
	var req dto.PaginationRequest
	if !bindQuery(c, &req) {
		return
	}
	list, total, err := h.integranteSvc.ListAtividades(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleIntegranteError(c, err)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Import POST /api/v1/integrantes/import (multipart, field "file")
func (h *IntegranteHandler) Import(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.ValidationFailed(c, map[string][]string{"file": {"envie uma planilha .xlsx no campo file"}})
		return
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".xlsx") {
		response.ValidationFailed(c, map[string][]string{"file": {"apenas arquivos .xlsx são aceitos"}})
		return
	}

	f, err := fh.Open()
	if err != nil {
		internalError(c, h.logger, err)
		return
	}
	defer f.Close()

	rows, err := h.integranteSvc.ParseImportFile(f)
	if err != nil {
		h.handleIntegranteError(c, err)
		return
	}
	result, err := h.integranteSvc.Import(c.Request.Context(), rows)
	if err != nil {
		h.handleIntegranteError(c, err)
		return
	}
	response.OK(c, result)
}

func (h *IntegranteHandler) handleIntegranteError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrIntegranteNotFound):
		response.NotFound(c, 16001, err.Error())
	case errors.Is(err, service.ErrCPFExists):
		response.Conflict(c, 16002, err.Error())
	case errors.Is(err, service.ErrImportFileInvalid):
		response.BadRequest(c, 16003, service.ErrImportFileInvalid.Error())
	case errors.Is(err, service.ErrImportBadHeader):
		response.BadRequest(c, 16004, err.Error())
	case errors.Is(err, service.ErrImportNoData):
		response.BadRequest(c, 16005, err.Error())
	case errors.Is(err, service.ErrImportTooManyRows):
		response.BadRequest(c, 16006, err.Error())
	case errors.Is(err, service.ErrEquipeNotFound):
		response.NotFound(c, 15001, err.Error())
	default:
		internalError(c, h.logger, err)
	}
}
