package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"email-assistant/internal/app"
	"email-assistant/internal/transport/http/middleware"
	"email-assistant/internal/transport/http/response"
)

type LogHandler struct {
	draftService *app.DraftService
}

func NewLogHandler(draftService *app.DraftService) *LogHandler {
	return &LogHandler{draftService: draftService}
}

func (h *LogHandler) List(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not authenticated")
		return
	}

	logs, err := h.draftService.ListLogs(c.Request.Context(), user.ID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list logs failed")
		return
	}

	c.JSON(http.StatusOK, logs)
}

func (h *LogHandler) Get(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not authenticated")
		return
	}

	logID64, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || logID64 == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid log id")
		return
	}

	logEntry, err := h.draftService.GetLog(uint(logID64), user.ID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrLogNotFound):
			// Someone else's log id gets the same answer as a
			// nonexistent one.
			response.Error(c, http.StatusNotFound, response.CodeLogNotFound, "log not found")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get log failed")
		}
		return
	}

	c.JSON(http.StatusOK, logEntry)
}
