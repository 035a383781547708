package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/natanhermes/buildflow/internal/service"
	"github.com/natanhermes/buildflow/pkg/response"
)

// PavimentoHandler floors.
type PavimentoHandler struct {
	pavimentoSvc service.PavimentoService
	logger       *zap.Logger
}

// NewPavimentoHandler creates a PavimentoHandler.
func NewPavimentoHandler(pavimentoSvc service.PavimentoService, logger *zap.Logger) *PavimentoHandler {
	return &PavimentoHandler{pavimentoSvc: pavimentoSvc, logger: logger}
}

// GetByID GET /api/v1/pavimentos/:id
func (h *PavimentoHandler) GetByID(c *gin.Context) {
	p, err := h.pavimentoSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handlePavimentoError(c, err)
		return
	}
	response.OK(c, p)
}

// QRCode GET /api/v1/pavimentos/:id/qrcode.png
func (h *PavimentoHandler) QRCode(c *gin.Context) {
	png, err := h.pavimentoSvc.QRCode(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handlePavimentoError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *PavimentoHandler) handlePavimentoError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPavimentoNotFound):
		response.NotFound(c, 14001, err.Error())
	default:
		internalError(c, h.logger, err)
	}
}
