package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/telecare/scheduler/pkg/errors"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// WriteError maps an AppError code to its HTTP status. Conflict errors
// additionally carry the overlapping appointments so the client can
// offer alternative slots.
func WriteError(c *gin.Context, err error) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(err.Error()))
		return
	}

	status := http.StatusInternalServerError
	switch appErr.Code {
	case apperrors.ErrBadRequest, apperrors.ErrRecurrenceConfig:
		status = http.StatusBadRequest
	case apperrors.ErrUnauthorized:
		status = http.StatusUnauthorized
	case apperrors.ErrForbidden:
		status = http.StatusForbidden
	case apperrors.ErrNotFound:
		status = http.StatusNotFound
	case apperrors.ErrConflict:
		status = http.StatusConflict
	}

	resp := NewErrorResponse(appErr.Message)
	resp.Data = appErr.Details
	c.JSON(status, resp)
}
