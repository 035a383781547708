package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/natanhermes/buildflow/pkg/cep"
	"github.com/natanhermes/buildflow/pkg/response"
)

// CEPLookup resolves postal codes.
type CEPLookup interface {
	Lookup(ctx context.Context, raw string) (*cep.Address, error)
}

// CEPHandler postal code lookup for the obra form.
type CEPHandler struct {
	client CEPLookup
	logger *zap.Logger
}

// NewCEPHandler creates a CEPHandler.
func NewCEPHandler(client CEPLookup, logger *zap.Logger) *CEPHandler {
	return &CEPHandler{client: client, logger: logger}
}

// Lookup GET /api/v1/cep/:cep
func (h *CEPHandler) Lookup(c *gin.Context) {
	if h.client == nil {
		response.Unavailable(c, 18003, "consulta de CEP indisponível", time.Minute)
		return
	}

	addr, err := h.client.Lookup(c.Request.Context(), c.Param("cep"))
	if err != nil {
		switch {
		case errors.Is(err, cep.ErrInvalidCEP):
			response.ValidationFailed(c, map[string][]string{"cep": {err.Error()}})
		case errors.Is(err, cep.ErrCEPNotFound):
			response.NotFound(c, 18001, err.Error())
		default:
			h.logger.Warn("falha na consulta de CEP", zap.Error(err))
			response.Error(c, http.StatusBadGateway, 18002, "serviço de CEP indisponível")
		}
		return
	}
	response.OK(c, addr)
}
