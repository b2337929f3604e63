package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shop-agent/internal/app"
	"shop-agent/internal/core"
)

type stubService struct {
	result *app.MessageResult
	userID string
	text   string
}

func (s *stubService) HandleMessage(_ context.Context, userID, text string) (*app.MessageResult, error) {
	s.userID, s.text = userID, text
	return s.result, nil
}

func (s *stubService) HandleVoice(_ context.Context, userID string, audio io.Reader, _ string) (*app.MessageResult, error) {
	s.userID = userID
	_, _ = io.ReadAll(audio)
	return s.result, nil
}

func newTestHandler(result *app.MessageResult) (*stubService, http.Handler) {
	svc := &stubService{result: result}
	return svc, NewHandler(svc, zap.NewNop())
}

func TestMessageEndpoint(t *testing.T) {
	svc, h := newTestHandler(&app.MessageResult{
		Intent: core.IntentSalesEntry,
		State:  core.StateSuccess,
		Reply:  "Sold 3 x Pen",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/message",
		strings.NewReader(`{"user_id":"u1","text":"sold 3 pens"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", svc.userID)
	assert.Equal(t, "sold 3 pens", svc.text)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "sales_entry", resp["intent"])
	assert.Equal(t, "success", resp["state"])
	assert.Equal(t, "Sold 3 x Pen", resp["reply"])
}

func TestMessageEndpointValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"missing user_id", `{"text":"hi"}`},
		{"missing text", `{"user_id":"u1"}`},
		{"blank text", `{"user_id":"u1","text":"  "}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, h := newTestHandler(&app.MessageResult{})
			req := httptest.NewRequest(http.MethodPost, "/api/v1/message", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			var resp errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "BAD_REQUEST", resp.Code)
			assert.NotEmpty(t, resp.RequestID)
		})
	}
}

func TestHealthEndpoint(t *testing.T) {
	_, h := newTestHandler(&app.MessageResult{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRequestIDPassthrough(t *testing.T) {
	_, h := newTestHandler(&app.MessageResult{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "caller-supplied-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "caller-supplied-1", rec.Header().Get("X-Request-ID"))

	// Unsafe ids are replaced.
	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "bad id with spaces")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEqual(t, "bad id with spaces", rec.Header().Get("X-Request-ID"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
