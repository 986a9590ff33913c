package mockapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodctl/foodctl/internal/mockapi/models"
)

const testPassword = "Secret1!"

func newTestServer(t *testing.T) *Server {
	t.Helper()

	db, err := OpenDatabase(":memory:", zerolog.Nop())
	require.NoError(t, err)

	srv, err := New(&Config{
		JWTSecret:     "test-secret",
		TokenTTL:      time.Hour,
		SweepSchedule: "@every 1m",
	}, db, zerolog.Nop())
	require.NoError(t, err)

	t.Cleanup(func() { _ = srv.Close() })
	return srv
}

func do(t *testing.T, srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func registerUser(t *testing.T, srv *Server, email string) string {
	t.Helper()
	rec := do(t, srv, http.MethodPost, "/api/account/register", "", map[string]string{
		"fullName":    "Test User",
		"password":    testPassword,
		"email":       email,
		"gender":      "Female",
		"address":     "Lenina 1",
		"phoneNumber": "+7 (912) 345-67-89",
		"birthDate":   "1990-04-01",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[TokenResponse](t, rec).Token
}

func firstDish(t *testing.T, srv *Server) models.Dish {
	t.Helper()
	var dish models.Dish
	require.NoError(t, srv.db.Order("id ASC").First(&dish).Error)
	return dish
}

func TestRegisterAndLogin(t *testing.T) {
	srv := newTestServer(t)

	token := registerUser(t, srv, "User@Example.com")
	assert.NotEmpty(t, token)

	rec := do(t, srv, http.MethodPost, "/api/account/register", "", map[string]string{
		"fullName": "Other", "password": testPassword, "email": "user@example.com", "gender": "Male",
	})
	assert.Equal(t, http.StatusConflict, rec.Code, "duplicate email")

	rec = do(t, srv, http.MethodPost, "/api/account/login", "", LoginRequest{Email: "user@example.com", Password: testPassword})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode[TokenResponse](t, rec).Token)

	rec = do(t, srv, http.MethodPost, "/api/account/login", "", LoginRequest{Email: "user@example.com", Password: "Wrong1!pass"})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "bad credentials")

	rec = do(t, srv, http.MethodPost, "/api/account/login", "", LoginRequest{Email: "nobody@example.com", Password: testPassword})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "unknown user")
}

func TestRegister_Validation(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/api/account/register", "", map[string]string{
		"fullName": "Weak", "password": "password", "email": "weak@example.com", "gender": "Male",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode[map[string]any](t, rec)
	assert.Contains(t, body["errors"], "Password")
}

func TestProfile(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "profile@example.com")

	rec := do(t, srv, http.MethodGet, "/api/account/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decode[map[string]any](t, rec)
	assert.Equal(t, "profile@example.com", profile["email"])
	assert.Equal(t, "+79123456789", profile["phoneNumber"], "phone stored normalized")
	assert.NotContains(t, profile, "PasswordHash")

	rec = do(t, srv, http.MethodPut, "/api/account/profile", token, ProfileUpdateRequest{
		FullName: "Renamed", Gender: "Female", Address: "Mira 5",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, rec.Header().Get("Content-Type"))

	rec = do(t, srv, http.MethodGet, "/api/account/profile", token, nil)
	profile = decode[map[string]any](t, rec)
	assert.Equal(t, "Renamed", profile["fullName"])
	assert.Equal(t, "Mira 5", profile["address"])
	assert.Nil(t, profile["birthDate"])
}

func TestAuthMiddleware(t *testing.T) {
	srv := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, do(t, srv, http.MethodGet, "/api/basket", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, srv, http.MethodGet, "/api/basket", "not-a-jwt", nil).Code)

	token := registerUser(t, srv, "auth@example.com")
	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/api/basket", token, nil).Code)

	rec := do(t, srv, http.MethodPost, "/api/account/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, http.StatusUnauthorized, do(t, srv, http.MethodGet, "/api/basket", token, nil).Code, "revoked token")
}

func TestSweepRevokedTokens(t *testing.T) {
	srv := newTestServer(t)
	now := time.Now().UTC()

	require.NoError(t, srv.db.Create(&[]models.RevokedToken{
		{ID: "expired", ExpiresAt: now.Add(-time.Minute)},
		{ID: "live", ExpiresAt: now.Add(time.Hour)},
	}).Error)

	n, err := srv.sweepRevokedTokens(now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var remaining []models.RevokedToken
	require.NoError(t, srv.db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, "live", remaining[0].ID)
}

func TestStartSweeper_InvalidSchedule(t *testing.T) {
	srv := newTestServer(t)
	srv.config.SweepSchedule = "every now and then"
	assert.Error(t, srv.startSweeper())
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t)
	rec := do(t, srv, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"online"`)
}

func TestNewInMemory_AllowsBrowserOrigins(t *testing.T) {
	srv, err := NewInMemory(zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })

	req := httptest.NewRequest(http.MethodOptions, "/api/dish", nil)
	req.Header.Set("Origin", DefaultCORSOrigins[0])
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, DefaultCORSOrigins[0], rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestNew_WithoutCORSOrigins(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/dish", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
