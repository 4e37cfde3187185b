package main

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPServer_ShutdownDrainsInFlightRequests(t *testing.T) {
	signalCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := make(chan struct{})
	handlerErr := make(chan error, 1)
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		select {
		case <-time.After(300 * time.Millisecond):
			handlerErr <- nil
			_, _ = io.WriteString(w, "done")
		case <-r.Context().Done():
			handlerErr <- r.Context().Err()
		}
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := newHTTPServer(signalCtx, ln.Addr().String(), h)
	go func() { _ = srv.Serve(ln) }()

	type result struct {
		status int
		body   string
		err    error
	}
	resCh := make(chan result, 1)
	go func() {
		resp, err := http.Get("http://" + ln.Addr().String() + "/slow")
		if err != nil {
			resCh <- result{err: err}
			return
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		resCh <- result{status: resp.StatusCode, body: string(b)}
	}()

	<-started
	cancel()

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	require.NoError(t, srv.Shutdown(shutdownCtx))

	assert.NoError(t, <-handlerErr)
	res := <-resCh
	require.NoError(t, res.err)
	assert.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, "done", res.body)
}

func TestHTTPServer_RequestContextKeepsValues(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "v")
	srv := newHTTPServer(ctx, ":0", http.NotFoundHandler())

	base := srv.BaseContext(nil)
	assert.Equal(t, "v", base.Value(key{}))
	assert.Nil(t, base.Done())
}
