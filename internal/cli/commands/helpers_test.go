package commands

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/foodctl/foodctl/internal/cli/client"
	"github.com/foodctl/foodctl/internal/cli/config"
	"github.com/foodctl/foodctl/internal/cli/session"
	"github.com/foodctl/foodctl/internal/mockapi"
)

const testPassword = "Secret1!"

// testEnv is an Env writing to buffers with an in-memory session
type testEnv struct {
	*Env
	out    *bytes.Buffer
	errOut *bytes.Buffer
	store  *session.MemoryStore
}

func newTestEnv(t *testing.T, baseURL, token string) *testEnv {
	t.Helper()

	// Keep user config writes inside the test
	t.Setenv("HOME", t.TempDir())

	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	store := session.NewMemoryStore(token)

	return &testEnv{
		Env: &Env{
			BaseURL: baseURL,
			Store:   store,
			Config:  &config.Config{},
			Logger:  zerolog.Nop(),
			Out:     out,
			Err:     errOut,
		},
		out:    out,
		errOut: errOut,
		store:  store,
	}
}

func (e *testEnv) token(t *testing.T) string {
	t.Helper()
	token, err := e.store.Token()
	require.NoError(t, err)
	return token
}

// startMock runs the mock API on a fresh in-memory database
func startMock(t *testing.T) *httptest.Server {
	t.Helper()

	srv, err := mockapi.NewInMemory(zerolog.Nop())
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = srv.Close()
	})
	return ts
}

// signUp registers a user on the mock and returns the token
func signUp(t *testing.T, baseURL, email string) string {
	t.Helper()

	api := client.New(baseURL)
	resp, err := api.Register(context.Background(), client.RegisterRequest{
		FullName:    "Test User",
		Password:    testPassword,
		Email:       email,
		Gender:      "Female",
		Address:     "Lenina 1",
		PhoneNumber: "+79123456789",
	})
	require.NoError(t, err)
	return resp.Token
}

// firstDishID returns the id of the first dish on the default menu page
func firstDishID(t *testing.T, baseURL string) string {
	t.Helper()

	page, err := client.New(baseURL).Dishes(context.Background(), client.DishQuery{})
	require.NoError(t, err)
	require.NotEmpty(t, page.Dishes)
	return page.Dishes[0].ID
}

// statusServer answers every request with status and body
func statusServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if body != "" {
			w.Header().Set("Content-Type", "application/json")
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
