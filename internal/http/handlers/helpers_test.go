package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/messagely/messagely-be/internal/auth"
	"github.com/messagely/messagely-be/internal/models/dto"
)

const testSecret = "handler-test-secret"

// newTestServer wires every handler onto a mux backed by an in-memory store.
func newTestServer(t *testing.T) (*httptest.Server, *memStore, *auth.TokenManager) {
	t.Helper()

	store := newMemStore()
	tokens := auth.NewTokenManager(testSecret, "messagely-test", time.Hour)
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)

	mux := http.NewServeMux()
	NewHealthHandler(time.Now()).Register(mux)
	NewAuthHandler(store, tokens, hasher).Register(mux)
	NewUsersHandler(store, tokens).Register(mux)
	NewMessagesHandler(store, tokens).Register(mux)

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts, store, tokens
}

func doJSON(t *testing.T, method, url, token string, payload any) *http.Response {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// registerUser registers a user through the API and returns the issued token.
func registerUser(t *testing.T, baseURL, username, password string) string {
	t.Helper()

	resp := doJSON(t, http.MethodPost, baseURL+"/register", "", dto.RegisterRequest{
		Username:  username,
		Password:  password,
		FirstName: "First-" + username,
		LastName:  "Last-" + username,
		Phone:     fmt.Sprintf("+1555%s", username),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	token := decodeBody[dto.TokenResponse](t, resp).Token
	require.NotEmpty(t, token)
	return token
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Status  int    `json:"status"`
	} `json:"error"`
}
