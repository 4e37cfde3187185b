package middleware_http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"eshop-api/internal/logger"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func TestTraceMiddleware_SetsTraceHeaderAndKeepsStatus(t *testing.T) {
	r := chi.NewRouter()
	r.Use(TraceMiddleware())
	r.Get("/things/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(`{"id":"1"}`))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/things/1", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Len(t, rec.Header().Get("X-Trace-ID"), 32)
	assert.JSONEq(t, `{"id":"1"}`, rec.Body.String())
}

func TestResponseWriter_CapsBuffer(t *testing.T) {
	rw := &ResponseWriter{ResponseWriter: httptest.NewRecorder(), statusCode: http.StatusOK}
	big := make([]byte, logger.MaxBodyLogged+10)

	n, err := rw.Write(big)
	assert.NoError(t, err)
	assert.Equal(t, len(big), n)

	_, err = rw.Write([]byte("tail"))
	assert.NoError(t, err)

	assert.Equal(t, int64(len(big)+4), rw.size)
	assert.Equal(t, logger.MaxBodyLogged, rw.buf.Len())
}
