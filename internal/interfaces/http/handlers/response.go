// Package handlers implements the HTTP API: the dashboard pipeline
// endpoints, the choropleth color endpoints, the metadata pickers and the
// health probes.
package handlers

import (
	stderrors "errors"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/RD-Observatory/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/RD-Observatory/internal/interfaces/http/middleware"
	"github.com/turtacn/RD-Observatory/pkg/errors"
)

// ErrorBody is the JSON shape of every non-2xx response.
type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

// respondError maps an error onto its HTTP status and the common error body.
// Internal errors are logged with their cause; the response never carries it.
func respondError(c *gin.Context, log logging.Logger, err error) {
	code := errors.GetCode(err)
	status := code.HTTPStatus()

	message := "internal error"
	var ae *errors.AppError
	if stderrors.As(err, &ae) {
		message = ae.Message
	}
	if status >= 500 {
		log.Error("request handler failed",
			logging.String("request_id", middleware.GetRequestID(c)),
			logging.Err(err),
		)
		message = "internal error"
	}

	c.AbortWithStatusJSON(status, ErrorBody{
		Code:      string(code),
		Message:   message,
		RequestID: middleware.GetRequestID(c),
	})
}
