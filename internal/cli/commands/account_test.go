package commands

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_StoresToken(t *testing.T) {
	ts := startMock(t)
	signUp(t, ts.URL, "login@example.com")

	env := newTestEnv(t, ts.URL, "")
	require.NoError(t, runLogin(context.Background(), env.Env, "login@example.com", testPassword))

	assert.NotEmpty(t, env.token(t))
	assert.Contains(t, env.out.String(), "Login successful")
	assert.Contains(t, env.out.String(), "login@example.com")
}

func TestLogin_FromEnvironment(t *testing.T) {
	ts := startMock(t)
	signUp(t, ts.URL, "env@example.com")

	env := newTestEnv(t, ts.URL, "")
	env.Config.Email = "env@example.com"
	env.Config.Password = testPassword

	require.NoError(t, runLogin(context.Background(), env.Env, "", ""))
	assert.NotEmpty(t, env.token(t))
}

func TestLogin_BadCredentials(t *testing.T) {
	ts := startMock(t)
	signUp(t, ts.URL, "bad@example.com")

	env := newTestEnv(t, ts.URL, "")
	err := runLogin(context.Background(), env.Env, "bad@example.com", "Wrong1!pass")

	require.ErrorIs(t, err, errBadCredentials)
	assert.Contains(t, err.Error(), "Username or password is not correct")
	assert.Empty(t, env.token(t))
	assert.Empty(t, env.errOut.String(), "login is public: no session-expired notice")
}

func TestLogin_NonInteractiveNeedsEmail(t *testing.T) {
	env := newTestEnv(t, "http://127.0.0.1:1", "")
	err := runLogin(context.Background(), env.Env, "", "")
	assert.ErrorContains(t, err, "email is required")
}

func TestRegister(t *testing.T) {
	ts := startMock(t)
	env := newTestEnv(t, ts.URL, "")

	opts := registerOptions{
		FullName:  "Anna",
		Email:     "anna@example.com",
		Password:  testPassword,
		Gender:    "Female",
		BirthDate: "1995-05-20",
		Phone:     "+7 (912) 345-67-89",
	}
	require.NoError(t, runRegister(context.Background(), env.Env, opts))
	assert.NotEmpty(t, env.token(t))

	again := newTestEnv(t, ts.URL, "")
	err := runRegister(context.Background(), again.Env, opts)
	assert.ErrorContains(t, err, "already exists")
}

func TestRegister_ValidatesBeforeSending(t *testing.T) {
	requests := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { requests++ }))
	t.Cleanup(ts.Close)

	env := newTestEnv(t, ts.URL, "")
	err := runRegister(context.Background(), env.Env, registerOptions{
		FullName: "Weak",
		Email:    "weak@example.com",
		Password: "password",
		Gender:   "Male",
	})

	assert.ErrorContains(t, err, "password must be at least 8 characters")
	assert.Zero(t, requests)
}

func TestLogout(t *testing.T) {
	ts := startMock(t)
	token := signUp(t, ts.URL, "logout@example.com")

	env := newTestEnv(t, ts.URL, token)
	require.NoError(t, runLogout(context.Background(), env.Env))
	assert.Empty(t, env.token(t))
	assert.Contains(t, env.out.String(), "Logged out")

	// The server revoked the token
	reused := newTestEnv(t, ts.URL, token)
	err := runProfile(context.Background(), reused.Env)
	assert.True(t, IsReported(err))
}

func TestLogout_ServerErrorStillClears(t *testing.T) {
	ts := statusServer(t, http.StatusInternalServerError, "")
	env := newTestEnv(t, ts.URL, "stale-token")

	require.NoError(t, runLogout(context.Background(), env.Env))
	assert.Empty(t, env.token(t))
	assert.Contains(t, env.errOut.String(), "server logout failed")
}

func TestLogout_ExpiredTokenIsQuiet(t *testing.T) {
	ts := statusServer(t, http.StatusUnauthorized, "")
	env := newTestEnv(t, ts.URL, "expired-token")

	require.NoError(t, runLogout(context.Background(), env.Env))
	assert.Empty(t, env.token(t))
	assert.Contains(t, env.out.String(), "Logged out")
	assert.Empty(t, env.errOut.String(), "no session-expired notice or login hint")
}

func TestStatus(t *testing.T) {
	env := newTestEnv(t, "http://example.test", "")
	require.NoError(t, runStatus(env.Env))
	assert.Contains(t, env.out.String(), "not logged in")

	expires := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "user-1",
		"email": "user@example.com",
		"exp":   expires.Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	env = newTestEnv(t, "http://example.test", token)
	env.Now = fixedNow(expires.Add(-time.Hour))
	require.NoError(t, runStatus(env.Env))
	assert.Contains(t, env.out.String(), "Session: active")
	assert.Contains(t, env.out.String(), "user@example.com")

	env = newTestEnv(t, "http://example.test", token)
	env.Now = fixedNow(expires.Add(time.Hour))
	require.NoError(t, runStatus(env.Env))
	assert.Contains(t, env.out.String(), "Session: expired")
}
