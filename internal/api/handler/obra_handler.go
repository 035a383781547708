package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/natanhermes/buildflow/internal/dto"
	"github.com/natanhermes/buildflow/internal/service"
	"github.com/natanhermes/buildflow/pkg/response"
)

// ObraHandler construction sites, their totals and reports.
type ObraHandler struct {
	obraSvc   service.ObraService
	totalsSvc service.TotalsService
	reportSvc service.ReportService
	logger    *zap.Logger
}

// NewObraHandler creates an ObraHandler.
func NewObraHandler(obraSvc service.ObraService, totalsSvc service.TotalsService, reportSvc service.ReportService, logger *zap.Logger) *ObraHandler {
	return &ObraHandler{obraSvc: obraSvc, totalsSvc: totalsSvc, reportSvc: reportSvc, logger: logger}
}

// Create registers an obra with its address, towers and floors.
//
// @Summary     Criar obra
// @Tags        obras
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body     dto.CreateObraRequest true "Obra com torres e pavimentos"
// @Success     201     {object} response.Response{data=dto.ObraDetailResponse}
// @Failure     400     {object} response.Response
// @Failure     409     {object} response.Response
// @Router      /obras [post]
func (h *ObraHandler) Create(c *gin.Context) {
	var req dto.CreateObraRequest
	if !bindJSON(c, &req) {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	obra, err := h.obraSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleObraError(c, err)
		return
	}
	response.Created(c, obra)
}

// GetByID GET /api/v1/obras/:id
func (h *ObraHandler) GetByID(c *gin.Context) {
	obra, err := h.obraSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleObraError(c, err)
		return
	}
	response.OK(c, obra)
}

// List GET /api/v1/obras
func (h *ObraHandler) List(c *gin.Context) {
	var req dto.ObraListRequest
	if !bindQuery(c, &req) {
		return
	}
	list, total, err := h.obraSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleObraError(c, err)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Options GET /api/v1/obras/options
func (h *ObraHandler) Options(c *gin.Context) {
	opts, err := h.obraSvc.Options(c.Request.Context())
	if err != nil {
		h.handleObraError(c, err)
		return
	}
	response.OK(c, opts)
}

// CEIExists GET /api/v1/obras/cei-exists?cei=
func (h *ObraHandler) CEIExists(c *gin.Context) {
	cei := c.Query("cei")
	if !dto.ValidCEI(cei) {
		response.ValidationFailed(c, map[string][]string{"cei": {"CEI deve seguir o formato 00.000.000/0000-00"}})
		return
	}
	exists, err := h.obraSvc.CEIExists(c.Request.Context(), cei)
	if err != nil {
		h.handleObraError(c, err)
		return
	}
	response.OK(c, dto.ExistsResponse{Exists: exists})
}

// ListPavimentos GET /api/v1/obras/:id/pavimentos
func (h *ObraHandler) ListPavimentos(c *gin.Context) {
	list, err := h.obraSvc.ListPavimentos(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleObraError(c, err)
		return
	}
	response.OK(c, list)
}

// Delete DELETE /api/v1/obras/:id
func (h *ObraHandler) Delete(c *gin.Context) {
	if err := h.obraSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleObraError(c, err)
		return
	}
	response.OK(c, nil)
}

// RecalculateTotals POST /api/v1/obras/:id/recalcular
func (h *ObraHandler) RecalculateTotals(c *gin.Context) {
	totals, err := h.totalsSvc.RecalculateObra(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleObraError(c, err)
		return
	}
	response.OK(c, totals)
}

// ReportPDF GET /api/v1/obras/:id/relatorio.pdf
func (h *ObraHandler) ReportPDF(c *gin.Context) {
	buf, filename, err := h.reportSvc.ObraReportPDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleObraError(c, err)
		return
	}
	sendFile(c, "application/pdf", filename, buf.Bytes())
}

// Calendar GET /api/v1/obras/:id/atividades.ics
func (h *ObraHandler) Calendar(c *gin.Context) {
	data, filename, err := h.reportSvc.ObraCalendar(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleObraError(c, err)
		return
	}
	sendFile(c, "text/calendar; charset=utf-8", filename, data)
}

func (h *ObraHandler) handleObraError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrObraNotFound):
		response.NotFound(c, 13001, err.Error())
	case errors.Is(err, service.ErrCEIExists):
		response.Conflict(c, 13002, err.Error())
	case errors.Is(err, service.ErrExportGenerateFail):
		response.Error(c, http.StatusInternalServerError, 19002, err.Error())
	default:
		internalError(c, h.logger, err)
	}
}
