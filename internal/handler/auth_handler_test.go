package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postJSON(t *testing.T, srv *httptest.Server, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp
}

func TestRegister(t *testing.T) {
	srv, _ := newTestServer(t)

	t.Run("returns id and username only", func(t *testing.T) {
		resp := postJSON(t, srv, "/register", `{"username":"alice","password":"secret"}`)
		defer resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		var body map[string]any
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, "alice", body["username"])
		assert.NotEmpty(t, body["id"])

		// ни пароль, ни его хэш не должны попасть в ответ
		assert.NotContains(t, string(raw), "secret")
		assert.NotContains(t, string(raw), "password")
	})

	t.Run("duplicate username is a conflict", func(t *testing.T) {
		resp := postJSON(t, srv, "/register", `{"username":"bob","password":"one"}`)
		resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		resp = postJSON(t, srv, "/register", `{"username":"bob","password":"two"}`)
		resp.Body.Close()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("empty credentials are rejected", func(t *testing.T) {
		resp := postJSON(t, srv, "/register", `{"username":"","password":"x"}`)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("malformed body is rejected", func(t *testing.T) {
		resp := postJSON(t, srv, "/register", `not json`)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestLogin(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv, "/register", `{"username":"carol","password":"correct"}`)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	t.Run("success", func(t *testing.T) {
		resp := postJSON(t, srv, "/login", `{"username":"carol","password":"correct"}`)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "carol", body["username"])
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		resp := postJSON(t, srv, "/login", `{"username":"carol","password":"wrong"}`)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unknown username is not found", func(t *testing.T) {
		resp := postJSON(t, srv, "/login", `{"username":"nobody","password":"correct"}`)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
