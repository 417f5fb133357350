package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// logLines は JSON ハンドラの出力を 1 行ずつデコードします。
func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestLoggingMiddleware_InjectsRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var fromCtx *slog.Logger
	handler := chimiddleware.RequestID(LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = GetLogger(r.Context())
		fromCtx.Info("inside handler")
		w.WriteHeader(http.StatusNotFound)
	})))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/cards/x", nil))

	require.NotNil(t, fromCtx)
	lines := logLines(t, &buf)
	require.Len(t, lines, 3)
	assert.Equal(t, "Request started", lines[0]["msg"])
	assert.Equal(t, "inside handler", lines[1]["msg"])
	assert.NotEmpty(t, lines[1]["req_id"], "ハンドラ内のログにもリクエストIDが付く")
	assert.Equal(t, "Request completed", lines[2]["msg"])
	assert.Equal(t, "WARN", lines[2]["level"])
	assert.Equal(t, float64(http.StatusNotFound), lines[2]["status"])
}

func TestLoggingMiddleware_DebugMasksSensitiveHeaders(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var seenBody string
	handler := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b := new(bytes.Buffer)
		_, _ = b.ReadFrom(r.Body)
		seenBody = b.String()
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/draws", strings.NewReader(`{"cardCount":1}`))
	req.Header.Set("Authorization", "Bearer secret")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, `{"cardCount":1}`, seenBody, "ログ取得後もハンドラはボディを読める")
	out := buf.String()
	assert.NotContains(t, out, "Bearer secret")
	assert.Contains(t, out, "[SENSITIVE]")
	assert.Contains(t, out, `{\"ok\":true}`)
}

func TestGetLogger_DefaultsWithoutMiddleware(t *testing.T) {
	assert.Equal(t, slog.Default(), GetLogger(context.Background()))
}
