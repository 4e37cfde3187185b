package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_PostAndGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/users/login":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			_ = json.NewEncoder(w).Encode(map[string]string{"email": body["email"], "token": "t"})
		case "/api/v1/users/get/count":
			if r.Header.Get("Authorization") != "Bearer t" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"message":"The user is not authorized"}`))
				return
			}
			_, _ = w.Write([]byte(`{"userCount":3}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL+"/api/v1/", time.Second)
	ctx := context.Background()

	var count map[string]int
	status, err := c.Get(ctx, "/users/get/count", &count)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, err.Error(), "not authorized")

	var login map[string]string
	status, err = c.Post(ctx, "users/login", map[string]string{"email": "a@b.c", "password": "x"}, &login)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "a@b.c", login["email"])

	c.SetBearerToken(login["token"])
	status, err = c.Get(ctx, "/users/get/count", &count)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 3, count["userCount"])
}
