package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/andersoncassiani/chatsuite/internal/service"
	"github.com/andersoncassiani/chatsuite/pkg/phone"
	"github.com/andersoncassiani/chatsuite/pkg/response"
	"github.com/andersoncassiani/chatsuite/pkg/validator"
)

type ConversationHandler struct {
	threads *service.ThreadService
	replies *service.ReplyService
}

func NewConversationHandler(threads *service.ThreadService, replies *service.ReplyService) *ConversationHandler {
	return &ConversationHandler{
		threads: threads,
		replies: replies,
	}
}

type SendReplyRequest struct {
	Text         string `json:"text" validate:"required,max=4096"`
	PauseMinutes *int   `json:"pauseMinutes,omitempty" validate:"omitempty,min=1,max=1440"`
}

// ListConversations godoc
// @Summary List conversations
// @Description Retrieves a paginated list of conversations, one row per contact with the latest message
// @Tags conversations
// @Accept json
// @Produce json
// @Param x-cs-auth-key header string true "API key for conversations"
// @Param page query int false "Page number (default: 1)"
// @Param pageSize query int false "Page size (default: 20, max: 100)"
// @Param search query string false "Filter by contact address substring"
// @Success 200 {object} response.PaginatedResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/conversations [get]
func (h *ConversationHandler) ListConversations(c echo.Context) error {
	page, pageSize, err := parsePaginationParams(c)
	if err != nil {
		return response.BadRequest(c, err)
	}

	search := c.QueryParam("search")

	conversations, totalCount, err := h.threads.ListConversations(c.Request().Context(), search, page, pageSize)
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return response.Paginated(c, conversations, page, pageSize, totalCount)
}

// GetThread godoc
// @Summary Get a conversation thread
// @Description Retrieves the full bidirectional thread with a contact, each entry classified by author
// @Tags conversations
// @Accept json
// @Produce json
// @Param x-cs-auth-key header string true "API key for conversations"
// @Param contact path string true "Contact address"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/conversations/{contact} [get]
func (h *ConversationHandler) GetThread(c echo.Context) error {
	contact := c.Param("contact")
	if contact == "" {
		return response.BadRequestWithMessage(c, "contact is required")
	}

	entries, err := h.threads.GetThread(c.Request().Context(), contact)
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return response.Ok(c, entries)
}

// SendReply godoc
// @Summary Send a manual reply
// @Description Relays an operator-typed text to the contact and pauses the bot for that conversation
// @Tags conversations
// @Accept json
// @Produce json
// @Param x-cs-auth-key header string true "API key for conversations"
// @Param contact path string true "Contact address"
// @Param reply body SendReplyRequest true "Reply to send"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/conversations/{contact}/reply [post]
func (h *ConversationHandler) SendReply(c echo.Context) error {
	contact := c.Param("contact")
	if contact == "" {
		return response.BadRequestWithMessage(c, "contact is required")
	}

	var req SendReplyRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	if err := h.replies.SendReply(c.Request().Context(), contact, req.Text, req.PauseMinutes); err != nil {
		if errors.Is(err, phone.ErrInvalidNumber) {
			return response.BadRequest(c, err)
		}
		return response.InternalServerError(c, err)
	}

	return response.OkWithMessage(c, "Reply sent successfully", nil)
}

func parsePaginationParams(c echo.Context) (int, int, error) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)

	pageStr := c.QueryParam("page")
	pageSizeStr := c.QueryParam("pageSize")

	// Page
	page := defaultPage
	if pageStr != "" {
		p, err := strconv.Atoi(pageStr)
		if err != nil || p <= 0 {
			return 0, 0, fmt.Errorf("page must be a positive integer")
		}
		page = p
	}

	// Page size
	pageSize := defaultPageSize
	if pageSizeStr != "" {
		ps, err := strconv.Atoi(pageSizeStr)
		if err != nil || ps <= 0 || ps > maxPageSize {
			return 0, 0, fmt.Errorf("pageSize must be between 1 and %d", maxPageSize)
		}

		pageSize = ps
	}

	return page, pageSize, nil
}
