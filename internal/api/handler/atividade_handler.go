package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/natanhermes/buildflow/internal/dto"
	"github.com/natanhermes/buildflow/internal/service"
	"github.com/natanhermes/buildflow/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AtividadeHandler daily work-log entries.
type AtividadeHandler struct {
	atividadeSvc service.AtividadeService
	reportSvc    service.ReportService
	logger       *zap.Logger
}

// NewAtividadeHandler creates an AtividadeHandler.
func NewAtividadeHandler(atividadeSvc service.AtividadeService, reportSvc service.ReportService, logger *zap.Logger) *AtividadeHandler {
	return &AtividadeHandler{atividadeSvc: atividadeSvc, reportSvc: reportSvc, logger: logger}
}

// Create records an activity and, for executions, updates the floor progress.
//
// @Summary     Registrar atividade
// @Description Para EXECUCAO o pavimento é bloqueado e percentual, espessura e saldo acumulado são gravados na mesma transação.
// @Tags        atividades
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body     dto.CreateAtividadeRequest true "Atividade"
// @Success     201     {object} response.Response{data=dto.AtividadeResponse}
// @Failure     400     {object} response.Response
// @Failure     404     {object} response.Response
// @Failure     503     {object} response.Response "tempo limite da transação; repetir"
// @Router      /atividades [post]
func (h *AtividadeHandler) Create(c *gin.Context) {
	var req dto.CreateAtividadeRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	a, err := h.atividadeSvc.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleAtividadeError(c, err)
		return
	}
	response.Created(c, a)
}

// GetByID GET /api/v1/atividades/:id
func (h *AtividadeHandler) GetByID(c *gin.Context) {
	a, err := h.atividadeSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleAtividadeError(c, err)
		return
	}
	response.OK(c, a)
}

// List GET /api/v1/atividades
func (h *AtividadeHandler) List(c *gin.Context) {
	var req dto.AtividadeListRequest
	if !bindQuery(c, &req) {
		return
	}
	list, total, err := h.atividadeSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleAtividadeError(c, err)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Update PUT /api/v1/atividades/:id
func (h *AtividadeHandler) Update(c *gin.Context) {
	var req dto.UpdateAtividadeRequest
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.atividadeSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleAtividadeError(c, err)
		return
	}
	response.OK(c, a)
}

// Delete DELETE /api/v1/atividades/:id
func (h *AtividadeHandler) Delete(c *gin.Context) {
	if err := h.atividadeSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleAtividadeError(c, err)
		return
	}
	response.OK(c, nil)
}

// Export GET /api/v1/atividades/export
func (h *AtividadeHandler) Export(c *gin.Context) {
	var req dto.AtividadeListRequest
	if !bindQuery(c, &req) {
		return
	}
	buf, filename, err := h.reportSvc.ExportAtividades(c.Request.Context(), &req)
	if err != nil {
		h.handleAtividadeError(c, err)
		return
	}
	sendFile(c, xlsxContentType, filename, buf.Bytes())
}

func (h *AtividadeHandler) handleAtividadeError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrAtividadeNotFound):
		response.NotFound(c, 17001, err.Error())
	case errors.Is(err, service.ErrObraNotFound):
		response.NotFound(c, 13001, err.Error())
	case errors.Is(err, service.ErrPavimentoNotFound):
		response.NotFound(c, 14001, err.Error())
	case errors.Is(err, service.ErrPavimentoForaDaObra):
		response.BadRequest(c, 14002, err.Error())
	case errors.Is(err, service.ErrIntegranteNotFound):
		response.NotFound(c, 16001, err.Error())
	case errors.Is(err, service.ErrExportNoData):
		response.NotFound(c, 19001, err.Error())
	default:
		internalError(c, h.logger, err)
	}
}
