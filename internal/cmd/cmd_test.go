package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trilhalab/portalctl/internal/token"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func testToken(t *testing.T) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &token.Payload{
		UserID: "1",
		Email:  "a@b.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return raw
}

// portalBackend fakes the subset of the portal API the CLI talks to.
func portalBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /users/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds struct{ Email, Password string }
		json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "123456" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "invalid credentials"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"user": map[string]any{
					"_id": "1", "name": "A", "email": creds.Email,
					"roles": []string{"manager"},
				},
				"token":     testToken(t),
				"expiresIn": "1h",
			},
		})
	})
	mux.HandleFunc("GET /users/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]any{"status": "ok"}})
	})
	mux.HandleFunc("GET /videos", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": true, "data": []any{map[string]any{"_id": "v1", "title": "Intro"}}})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestLoginStatusLogoutFlow(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	server := portalBackend(t)
	stateDir := t.TempDir()

	out, err := runCommand(t, "login",
		"--email", "a@b.com", "--password", "123456",
		"--api-url", server.URL, "--state-dir", stateDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as A <a@b.com>")
	assert.Contains(t, out, "manager")

	out, err = runCommand(t, "status", "--api-url", server.URL, "--state-dir", stateDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in")
	assert.Contains(t, out, "manager")

	out, err = runCommand(t, "logout", "--api-url", server.URL, "--state-dir", stateDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out.")

	out, err = runCommand(t, "status", "--api-url", server.URL, "--state-dir", stateDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in.")
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	server := portalBackend(t)

	_, err := runCommand(t, "login",
		"--email", "a@b.com", "--password", "wrong",
		"--api-url", server.URL, "--state-dir", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid credentials")
}

func TestHealthCommand(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	server := portalBackend(t)

	out, err := runCommand(t, "health", "--api-url", server.URL, "--state-dir", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "ok")
}

func TestAPICommand(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	server := portalBackend(t)

	out, err := runCommand(t, "api", "get", "/videos", "--api-url", server.URL, "--state-dir", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, `"success": true`)
	assert.Contains(t, out, "Intro")
}

func TestAPICommandRejectsUnknownMethod(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := runCommand(t, "api", "head", "/videos", "--state-dir", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown method")
}

func TestAPICommandRejectsBadJSONBody(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := runCommand(t, "api", "post", "/videos", "--data", "{broken", "--state-dir", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid JSON")
}
