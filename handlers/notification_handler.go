package handlers

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/andersoncassiani/chatsuite/internal/domain"
	"github.com/andersoncassiani/chatsuite/internal/service"
	"github.com/andersoncassiani/chatsuite/pkg/response"
	"github.com/andersoncassiani/chatsuite/pkg/validator"
)

type NotificationHandler struct {
	service *service.NotificationService
}

func NewNotificationHandler(svc *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: svc}
}

type RunBatchRequest struct {
	Consume *bool `json:"consume,omitempty"`
	DryRun  bool  `json:"dryRun,omitempty"`
}

type CreateNotificationRequest struct {
	Titulo      string `json:"titulo" validate:"required,max=255"`
	Descripcion string `json:"descripcion" validate:"max=2000"`
	Asignado    string `json:"asignado" validate:"required,max=100"`
	Creador     string `json:"creador" validate:"max=100"`
	Proyecto    string `json:"proyecto" validate:"max=255"`
}

// GetAllNotifications godoc
// @Summary Get task notifications
// @Description Retrieves a paginated list of task notifications with optional filters
// @Tags notifications
// @Accept json
// @Produce json
// @Param x-cs-auth-key header string true "API key for notifications"
// @Param page query int false "Page number (default: 1)"
// @Param pageSize query int false "Page size (default: 20, max: 100)"
// @Param status query string false "Filter by status (pending, sent, delivered, read, failed)"
// @Param asignado query string false "Filter by assignee name substring"
// @Success 200 {object} response.PaginatedResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/notifications [get]
func (h *NotificationHandler) GetAllNotifications(c echo.Context) error {
	page, pageSize, err := parsePaginationParams(c)
	if err != nil {
		return response.BadRequest(c, err)
	}

	statusStr := c.QueryParam("status")

	// Convert status string to pointer (optional filter).
	var status *domain.NotificationStatus
	if statusStr != "" {
		parsedStatus := domain.NotificationStatus(statusStr)
		status = &parsedStatus
	}

	asignado := c.QueryParam("asignado")

	notifications, totalCount, err := h.service.GetAll(c.Request().Context(), status, asignado, page, pageSize)
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return response.Paginated(c, notifications, page, pageSize, totalCount)
}

// GetStats godoc
// @Summary Get notification statistics
// @Description Returns count of task notifications by status
// @Tags notifications
// @Accept json
// @Produce json
// @Param x-cs-auth-key header string true "API key for notifications"
// @Success 200 {object} response.SuccessResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/notifications/stats [get]
func (h *NotificationHandler) GetStats(c echo.Context) error {
	stats, err := h.service.GetStats(c.Request().Context())
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return response.Ok(c, map[string]any{
		"pending":   stats.Pending,
		"sent":      stats.Sent,
		"delivered": stats.Delivered,
		"read":      stats.Read,
		"failed":    stats.Failed,
		"total":     stats.Total(),
	})
}

// RunBatch godoc
// @Summary Run a notification batch
// @Description Fetches pending high-priority tasks and notifies each assignee
// @Tags notifications
// @Accept json
// @Produce json
// @Param x-cs-auth-key header string true "API key for notifications"
// @Param request body RunBatchRequest false "Batch parameters (optional)"
// @Success 200 {object} response.SuccessResponse
// @Failure 409 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/notifications/run [post]
func (h *NotificationHandler) RunBatch(c echo.Context) error {
	var req RunBatchRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	// Consuming fetch unless explicitly disabled.
	consume := true
	if req.Consume != nil {
		consume = *req.Consume
	}

	result, err := h.service.RunBatch(c.Request().Context(), consume, req.DryRun)
	if err != nil {
		if errors.Is(err, service.ErrBatchInProgress) {
			return response.Conflict(c, err.Error())
		}
		return response.InternalServerError(c, err)
	}

	return response.Ok(c, result)
}

// PeekTasks godoc
// @Summary Peek at pending tasks
// @Description Returns pending high-priority tasks without consuming them, with resolved phone numbers
// @Tags notifications
// @Accept json
// @Produce json
// @Param x-cs-auth-key header string true "API key for notifications"
// @Success 200 {object} response.SuccessResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/notifications/peek [get]
func (h *NotificationHandler) PeekTasks(c echo.Context) error {
	previews, count, err := h.service.Peek(c.Request().Context())
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return response.Ok(c, map[string]any{
		"count": count,
		"tasks": previews,
	})
}

// CreateManualNotification godoc
// @Summary Send a manual task notification
// @Description Creates and sends one task notification without going through the task queue
// @Tags notifications
// @Accept json
// @Produce json
// @Param x-cs-auth-key header string true "API key for notifications"
// @Param notification body CreateNotificationRequest true "Notification to send"
// @Success 201 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/notifications [post]
func (h *NotificationHandler) CreateManualNotification(c echo.Context) error {
	var req CreateNotificationRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	record, err := h.service.SendManual(c.Request().Context(), service.ManualTaskInput{
		Titulo:      req.Titulo,
		Descripcion: req.Descripcion,
		Asignado:    req.Asignado,
		Creador:     req.Creador,
		Proyecto:    req.Proyecto,
	})
	if err != nil {
		if errors.Is(err, service.ErrAssigneeNotFound) {
			return response.BadRequest(c, err)
		}
		return response.InternalServerError(c, err)
	}

	return response.Created(c, "Notification sent successfully", record)
}

// ResendNotification godoc
// @Summary Resend a notification
// @Description Resends a failed or stuck notification to its stored destination number
// @Tags notifications
// @Accept json
// @Produce json
// @Param x-cs-auth-key header string true "API key for notifications"
// @Param id path int true "Notification ID"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/notifications/{id}/resend [post]
func (h *NotificationHandler) ResendNotification(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, err)
	}

	record, err := h.service.Resend(c.Request().Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotificationNotFound):
			return response.NotFound(c, err.Error())
		case errors.Is(err, service.ErrNotResendable):
			return response.BadRequest(c, err)
		default:
			return response.InternalServerError(c, err)
		}
	}

	return response.OkWithMessage(c, "Notification resent successfully", record)
}

// DeleteNotification godoc
// @Summary Delete a notification
// @Description Deletes one task notification record
// @Tags notifications
// @Accept json
// @Produce json
// @Param x-cs-auth-key header string true "API key for notifications"
// @Param id path int true "Notification ID"
// @Success 204
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/notifications/{id} [delete]
func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, err)
	}

	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			return response.NotFound(c, err.Error())
		}
		return response.InternalServerError(c, err)
	}

	return response.NoContent(c)
}

// GetCachedNotifications godoc
// @Summary Get cached notifications from Redis
// @Description Returns recently sent notifications cached in Redis
// @Tags notifications
// @Accept json
// @Produce json
// @Param x-cs-auth-key header string true "API key for notifications"
// @Success 200 {object} response.SuccessResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/notifications/cached [get]
func (h *NotificationHandler) GetCachedNotifications(c echo.Context) error {
	cached, err := h.service.GetCachedNotifications(c.Request().Context())
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return response.Ok(c, cached)
}

func parseIDParam(c echo.Context) (int64, error) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("id must be a positive integer")
	}
	return id, nil
}
