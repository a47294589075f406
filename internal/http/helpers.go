// Package http exposes the REST surface. Controllers translate gin
// requests into service calls and service failures into the envelope
// format every endpoint shares.
package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"libroteca/internal/services"
)

// ErrorItem is one entry of an error envelope.
type ErrorItem struct {
	Message string `json:"message"`
}

// Response is the shared envelope. Data, Total and Message are
// populated per endpoint; Errors only on failures.
type Response struct {
	Status  string      `json:"status"`
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	Data    any         `json:"data,omitempty"`
	Total   *int64      `json:"total,omitempty"`
	Errors  []ErrorItem `json:"error,omitempty"`
}

// respondData sends a success envelope carrying a payload.
func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, Response{Status: "success", Code: status, Data: data})
}

// respondPage sends a success envelope carrying a page plus the
// pre-pagination total.
func respondPage(c *gin.Context, data any, total int64) {
	c.JSON(http.StatusOK, Response{
		Status: "success",
		Code:   http.StatusOK,
		Data:   data,
		Total:  &total,
	})
}

// respondMessage sends a success envelope with just a message.
func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, Response{Status: "success", Code: status, Message: message})
}

// respondErr sends an error envelope.
func respondErr(c *gin.Context, status int, messages ...string) {
	items := make([]ErrorItem, 0, len(messages))
	for _, m := range messages {
		items = append(items, ErrorItem{Message: m})
	}
	c.JSON(status, Response{Status: "error", Code: status, Errors: items})
}

// respondServiceError maps the service failure taxonomy onto status
// codes. Storage failures are logged and masked.
func respondServiceError(c *gin.Context, err error) {
	var notFound *services.NotFoundError
	var validation *services.ValidationError
	var conflict *services.ConflictError
	var unauthorized *services.UnauthorizedError

	switch {
	case errors.As(err, &notFound):
		respondErr(c, http.StatusNotFound, notFound.Error())
	case errors.As(err, &validation):
		messages := make([]string, 0, len(validation.Fields))
		for _, f := range validation.Fields {
			messages = append(messages, f.Message)
		}
		if len(messages) == 0 {
			messages = append(messages, "validation failed")
		}
		respondErr(c, http.StatusBadRequest, messages...)
	case errors.As(err, &conflict):
		respondErr(c, http.StatusConflict, conflict.Error())
	case errors.As(err, &unauthorized):
		respondErr(c, http.StatusUnauthorized, unauthorized.Error())
	default:
		log.Printf("Internal error (%s %s): %v", c.Request.Method, c.FullPath(), err)
		respondErr(c, http.StatusInternalServerError, "internal server error")
	}
}

// parseIDParam extracts a positive integer id from the URL, answering
// 400 itself on garbage.
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		respondErr(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}
