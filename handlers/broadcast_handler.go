package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/andersoncassiani/chatsuite/internal/service"
	"github.com/andersoncassiani/chatsuite/pkg/response"
	"github.com/andersoncassiani/chatsuite/pkg/validator"
)

type BroadcastHandler struct {
	service *service.BroadcastService
}

func NewBroadcastHandler(svc *service.BroadcastService) *BroadcastHandler {
	return &BroadcastHandler{service: svc}
}

type BroadcastRequest struct {
	Numbers   string            `json:"numbers" validate:"required,phonelist"`
	Variables map[string]string `json:"variables,omitempty"`
}

// Broadcast godoc
// @Summary Broadcast a template
// @Description Sends the content template to a pasted list of numbers and returns a per-number tally
// @Tags broadcast
// @Accept json
// @Produce json
// @Param x-cs-auth-key header string true "API key for broadcast"
// @Param request body BroadcastRequest true "Numbers and template variables"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/broadcast [post]
func (h *BroadcastHandler) Broadcast(c echo.Context) error {
	var req BroadcastRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	result, err := h.service.Run(c.Request().Context(), req.Numbers, req.Variables)
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return response.Ok(c, result)
}
