package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront-bff/internal/clients"
	"storefront-bff/internal/middleware"
	"storefront-bff/internal/models"
)

// bindOptionalJSON decodes the request body into dst. An empty body leaves
// dst untouched.
func bindOptionalJSON(c *gin.Context, dst interface{}) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return models.NewInvalidInput("", "invalid request body: %v", err)
	}
	return nil
}

// respondReadError renders a failed read endpoint.
func respondReadError(c *gin.Context, logger *logrus.Entry, logMsg string, err error) {
	status, body := readError(err)
	body.Log = logMsg
	body.Timestamp = time.Now().UTC().Format(time.RFC3339)
	body.RequestID = middleware.GetRequestID(c)

	logFailure(logger, c, status, err)
	c.JSON(status, body)
}

func readError(err error) (int, models.ErrorResponse) {
	var invalid *models.InvalidInputError
	var upstream *clients.UpstreamError

	switch {
	case errors.As(err, &invalid):
		return http.StatusBadRequest, models.ErrorResponse{
			Error: models.Error{
				Code:    models.CodeInvalidInput,
				Message: invalid.Message,
				Field:   invalid.Field,
			},
		}
	case errors.As(err, &upstream):
		code := models.CodeUpstreamError
		if clients.IsNotFound(err) {
			code = models.CodeNotFound
		}
		details := models.JSON{"upstream": upstream.Details()}
		return upstream.HTTPStatus(), models.ErrorResponse{
			Error: models.Error{
				Code:    code,
				Message: upstream.Error(),
				Details: &details,
			},
		}
	}
	return http.StatusInternalServerError, models.ErrorResponse{
		Error: models.Error{
			Code:    models.CodeInternalError,
			Message: "An unexpected error occurred",
		},
	}
}

// respondWriteError renders a failed update endpoint.
func respondWriteError(c *gin.Context, logger *logrus.Entry, err error) {
	var invalid *models.InvalidInputError
	var upstream *clients.UpstreamError

	switch {
	case errors.As(err, &invalid):
		status, body := readError(err)
		body.RequestID = middleware.GetRequestID(c)
		logFailure(logger, c, status, err)
		c.JSON(status, body)
	case errors.As(err, &upstream):
		logFailure(logger, c, upstream.HTTPStatus(), err)
		c.JSON(upstream.HTTPStatus(), models.WriteErrorResponse{
			Success: false,
			Message: upstream.Error(),
			Error:   upstream.Details(),
		})
	default:
		logFailure(logger, c, http.StatusInternalServerError, err)
		c.JSON(http.StatusInternalServerError, models.WriteErrorResponse{
			Success: false,
			Message: "An unexpected error occurred",
		})
	}
}

func logFailure(logger *logrus.Entry, c *gin.Context, status int, err error) {
	entry := logger.WithFields(logrus.Fields{
		"path":       c.FullPath(),
		"status":     status,
		"request_id": middleware.GetRequestID(c),
	}).WithError(err)
	if status >= 500 {
		entry.Error("Request failed")
		return
	}
	entry.Warn("Request rejected")
}
