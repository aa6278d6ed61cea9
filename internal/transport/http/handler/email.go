package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"email-assistant/internal/app"
	"email-assistant/internal/transport/http/middleware"
	"email-assistant/internal/transport/http/response"
)

type EmailHandler struct {
	draftService *app.DraftService
}

// GenerateRequest uses pointers for the optional fields so an absent
// length is distinguishable from an explicit zero, both of which pass
// through to the provider unvalidated.
type GenerateRequest struct {
	UserInput string  `json:"user_input" binding:"required"`
	ReplyTo   *string `json:"reply_to"`
	Context   *string `json:"context"`
	Length    *int    `json:"length"`
	Tone      string  `json:"tone"`
}

type GenerateResponse struct {
	GeneratedEmail string `json:"generated_email"`
}

func NewEmailHandler(draftService *app.DraftService) *EmailHandler {
	return &EmailHandler{draftService: draftService}
}

func (h *EmailHandler) Generate(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not authenticated")
		return
	}

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	logEntry, err := h.draftService.Generate(c.Request.Context(), app.GenerateInput{
		UserID:    user.ID,
		UserInput: req.UserInput,
		ReplyTo:   req.ReplyTo,
		Context:   req.Context,
		Length:    req.Length,
		Tone:      req.Tone,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrProviderFailure):
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "generate email failed")
		}
		return
	}

	c.JSON(http.StatusOK, GenerateResponse{GeneratedEmail: logEntry.GeneratedEmail})
}
