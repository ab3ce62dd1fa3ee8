// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fencer/internal/modules/drawing"
	"fencer/internal/modules/editing"
	"fencer/internal/modules/fence"
	"fencer/internal/modules/monitor"
)

type errorResponse struct {
	Error string `json:"error"`
}

// isValidID ensures IDs are hex and at most 32 chars (matches current ID generator).
func isValidID(v string) bool {
	if v == "" || len(v) > 32 {
		return false
	}
	for _, c := range v {
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			continue
		}
		return false
	}
	return true
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func writeFenceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, fence.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, fence.ErrInvalidShape):
		writeError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, fence.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func writeDrawError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, drawing.ErrNotReady):
		writeError(c, http.StatusConflict, err.Error())
	default:
		writeFenceError(c, err)
	}
}

func writeEditError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, editing.ErrEditActive):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, editing.ErrUnknownHandle):
		writeError(c, http.StatusBadRequest, err.Error())
	default:
		writeFenceError(c, err)
	}
}

func writeAlertError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, monitor.ErrAlertNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
