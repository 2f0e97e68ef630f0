package api

import (
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/conceptpulse/internal/errors"
)

func TestTimeoutMiddlewareWritesProblem(t *testing.T) {
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		handleError(w, r, errors.NewInternalError(r.Context().Err()))
	})
	h := loggingMiddleware(timeoutMiddleware(10 * time.Millisecond)(slow))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/cards/1/review", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code, rec.Body.String())
	assert.Equal(t, problemContentType, rec.Header().Get("Content-Type"))

	var p struct {
		Type      string `json:"type"`
		Status    int    `json:"status"`
		Detail    string `json:"detail"`
		Instance  string `json:"instance"`
		Code      string `json:"code"`
		RequestID string `json:"request_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, http.StatusServiceUnavailable, p.Status)
	assert.Equal(t, errors.ErrCodeUnavailable, p.Code)
	assert.Equal(t, "unavailable", p.Type)
	assert.Equal(t, "request timed out", p.Detail)
	assert.Equal(t, "/api/cards/1/review", p.Instance)
	assert.Equal(t, rec.Header().Get("X-Request-ID"), p.RequestID)
	assert.NotEmpty(t, p.RequestID)
}

func TestTimeoutMiddlewarePassesFastHandlers(t *testing.T) {
	fast := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasDeadline := r.Context().Deadline()
		assert.True(t, hasDeadline)
		writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	rec := httptest.NewRecorder()
	timeoutMiddleware(time.Second)(fast).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/domains", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestDeadlineErrorWithLiveContextStaysInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	handleError(rec, req, errors.NewInternalError(stderrors.New("driver: deadline exceeded")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, problemContentType, rec.Header().Get("Content-Type"))
}
