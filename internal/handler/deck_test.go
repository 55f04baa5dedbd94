package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"deckcraft-backend/internal/model"
	"deckcraft-backend/internal/storage"
)

func newTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, rec
}

func TestWriteErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			"validation error",
			model.NewValidationError("topic", "must be at least 3 characters"),
			http.StatusBadRequest,
			"invalid topic: must be at least 3 characters",
		},
		{
			"generation error sanitized",
			model.NewGenerationError("failed to process AI response"),
			http.StatusBadGateway,
			"failed to process AI response",
		},
		{
			"overloaded generation error",
			model.WrapGenerationError("upstream busy", nil, true),
			http.StatusBadGateway,
			"AI service unavailable",
		},
		{
			"render error",
			&model.RenderError{},
			http.StatusInternalServerError,
			"failed to render presentation",
		},
		{
			"deck not found",
			storage.ErrDeckNotFound,
			http.StatusNotFound,
			"deck not found",
		},
		{
			"unknown error",
			http.ErrAbortHandler,
			http.StatusInternalServerError,
			"internal server error",
		},
	}

	h := &DeckHandler{}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newTestContext(t)
			h.writeError(c, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var body model.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid error body: %v", err)
			}
			if body.Error != tt.wantError {
				t.Errorf("error = %q, want %q", body.Error, tt.wantError)
			}
		})
	}
}

func TestWriteErrorNeverLeaksWrappedDetail(t *testing.T) {
	c, rec := newTestContext(t)
	h := &DeckHandler{}

	inner := model.WrapGenerationError("model call failed",
		http.ErrHandlerTimeout, false)
	h.writeError(c, inner)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if body == "" || len(body) > 200 {
		t.Fatalf("unexpected body %q", body)
	}
	var resp model.ErrorResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error != "failed to process AI response" {
		t.Errorf("error = %q, want sanitized message", resp.Error)
	}
}
