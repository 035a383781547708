package handler

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/natanhermes/buildflow/internal/api/middleware"
	"github.com/natanhermes/buildflow/internal/dto"
	pkgerrors "github.com/natanhermes/buildflow/pkg/errors"
	"github.com/natanhermes/buildflow/pkg/response"
)

// retryAfter is advertised when a unit of work timed out.
const retryAfter = 2 * time.Second

// MustGetUserID reads the authenticated user id. It writes a 401 and returns
// false when the auth middleware did not run.
func MustGetUserID(c *gin.Context) (string, bool) {
	s := c.GetString(middleware.CtxUserID)
	if s == "" {
		response.Unauthorized(c, 10002, "Autenticação necessária")
		return "", false
	}
	return s, true
}

// bindJSON binds the body and answers 400 with field details on failure.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.ValidationFailed(c, dto.FieldErrors(err))
		return false
	}
	return true
}

// bindQuery binds query parameters and answers 400 with field details on failure.
func bindQuery(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		response.ValidationFailed(c, dto.FieldErrors(err))
		return false
	}
	return true
}

// handleCommonError answers the errors shared by every module. It reports
// whether a response was written.
func handleCommonError(c *gin.Context, err error) bool {
	var verr *dto.ValidationError
	switch {
	case errors.As(err, &verr):
		response.ValidationFailed(c, verr.Fields)
	case errors.Is(err, pkgerrors.ErrTransactionTimeout):
		response.Unavailable(c, 50300, pkgerrors.ErrTransactionTimeout.Error(), retryAfter)
	default:
		return false
	}
	return true
}

// internalError logs err with the request id and answers a generic 500.
func internalError(c *gin.Context, logger *zap.Logger, err error) {
	logger.Error("erro não tratado",
		zap.String("path", c.FullPath()),
		zap.String("request_id", c.GetString("request_id")),
		zap.Error(err),
	)
	_ = c.Error(err)
	response.InternalError(c)
}

// sendFile writes a download with an RFC 5987 encoded filename.
func sendFile(c *gin.Context, contentType, filename string, data []byte) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, contentType, data)
}
