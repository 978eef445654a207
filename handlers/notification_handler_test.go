package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/andersoncassiani/chatsuite/pkg/response"
	validatorpkg "github.com/andersoncassiani/chatsuite/pkg/validator"
)

// TestCreateManualNotification_BadJSON verifies that invalid JSON returns 400 Bad Request.
func TestCreateManualNotification_BadJSON(t *testing.T) {
	e := echo.New()
	// Validator is not needed here because Bind will fail before Validate is called.
	handler := NewNotificationHandler(nil)

	// Malformed JSON (missing closing quote / brace)
	reqBody := `{"titulo": "Revisar pedido", "asignado":`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications", strings.NewReader(reqBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.CreateManualNotification(c)
	if err != nil {
		t.Fatalf("CreateManualNotification returned error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}

	var resp response.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response body: %v", err)
	}

	if resp.Success {
		t.Fatalf("expected Success=false, got true")
	}
	if resp.Error == "" {
		t.Fatalf("expected Error to be non-empty")
	}
}

// TestCreateManualNotification_MissingFields verifies that validation failure
// (missing titulo and asignado) returns 422 via the validation error handler.
func TestCreateManualNotification_MissingFields(t *testing.T) {
	e := echo.New()
	// Use the real custom validator so we exercise the normal flow.
	e.Validator = validatorpkg.New()

	// service is nil on purpose; we want validation to fail before service is called.
	handler := NewNotificationHandler(nil)

	reqBody := `{"descripcion": "Sin responsable todavía"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications", strings.NewReader(reqBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.CreateManualNotification(c)
	if err != nil {
		t.Fatalf("CreateManualNotification returned error: %v", err)
	}

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status %d, got %d", http.StatusUnprocessableEntity, rec.Code)
	}

	var resp validatorpkg.ValidationErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response body: %v", err)
	}

	if resp.Success {
		t.Fatalf("expected Success=false, got true")
	}
	if resp.Error != "Validation failed" {
		t.Fatalf("expected Error=%q, got %q", "Validation failed", resp.Error)
	}
	if _, ok := resp.Details["titulo"]; !ok {
		t.Fatalf("expected Details to contain 'titulo' key")
	}
	if _, ok := resp.Details["asignado"]; !ok {
		t.Fatalf("expected Details to contain 'asignado' key")
	}
}

// TestGetAllNotifications_BadPagination verifies that a non-numeric page
// parameter is rejected before the service is touched.
func TestGetAllNotifications_BadPagination(t *testing.T) {
	e := echo.New()
	handler := NewNotificationHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications?page=abc", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.GetAllNotifications(c)
	if err != nil {
		t.Fatalf("GetAllNotifications returned error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

// TestResendNotification_BadID verifies that a non-numeric id parameter is
// rejected before the service is touched.
func TestResendNotification_BadID(t *testing.T) {
	e := echo.New()
	handler := NewNotificationHandler(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/abc/resend", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("abc")

	err := handler.ResendNotification(c)
	if err != nil {
		t.Fatalf("ResendNotification returned error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}
