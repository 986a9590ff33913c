package commands

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodctl/foodctl/internal/cli/client"
)

// placeOrder puts the dish in the cart and checks out
func placeOrder(t *testing.T, env *testEnv, dishID string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, runCartAdd(ctx, env.Env, dishID))
	require.NoError(t, runCheckout(ctx, env.Env, checkoutOptions{}))
	env.out.Reset()
}

func orderIDs(t *testing.T, env *testEnv) []string {
	t.Helper()
	orders, err := env.client(pageOrders).Orders(context.Background())
	require.NoError(t, err)
	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	return ids
}

func TestOrders_Empty(t *testing.T) {
	ts := startMock(t)
	token := signUp(t, ts.URL, "noorders@example.com")
	env := newTestEnv(t, ts.URL, token)

	require.NoError(t, runOrders(context.Background(), env.Env))
	assert.Contains(t, env.out.String(), "You haven't placed any orders yet.")
}

func TestOrders_ListsDetails(t *testing.T) {
	ts := startMock(t)
	token := signUp(t, ts.URL, "orders@example.com")
	dishID := firstDishID(t, ts.URL)
	env := newTestEnv(t, ts.URL, token)

	placeOrder(t, env, dishID)
	placeOrder(t, env, dishID)

	require.NoError(t, runOrders(context.Background(), env.Env))

	out := env.out.String()
	assert.Equal(t, 2, strings.Count(out, "In Process"))
	assert.Contains(t, out, "×1")
}

func TestOrders_ServerErrorShowsEmpty(t *testing.T) {
	ts := statusServer(t, http.StatusInternalServerError, "")
	env := newTestEnv(t, ts.URL, "token")

	require.NoError(t, runOrders(context.Background(), env.Env))
	assert.Contains(t, env.out.String(), "You haven't placed any orders yet.")
}

func TestFetchOrderDetails_FailsTogether(t *testing.T) {
	ts := statusServer(t, http.StatusNotFound, `{"message":"missing"}`)
	api := client.New(ts.URL)

	_, err := fetchOrderDetails(context.Background(), api, []client.OrderSummary{{ID: "a"}, {ID: "b"}})
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, client.StatusCode(err))
}

func TestOrderShowAndConfirm(t *testing.T) {
	ts := startMock(t)
	token := signUp(t, ts.URL, "confirm@example.com")
	dishID := firstDishID(t, ts.URL)
	env := newTestEnv(t, ts.URL, token)
	ctx := context.Background()

	placeOrder(t, env, dishID)
	ids := orderIDs(t, env)
	require.Len(t, ids, 1)

	require.NoError(t, runOrderShow(ctx, env.Env, ids[0]))
	assert.Contains(t, env.out.String(), "Status:    In Process")
	assert.Contains(t, env.out.String(), "foodctl order confirm "+ids[0])

	env.out.Reset()
	require.NoError(t, runOrderConfirm(ctx, env.Env, ids[0]))
	assert.Contains(t, env.out.String(), "Delivery confirmed")

	err := runOrderConfirm(ctx, env.Env, ids[0])
	assert.ErrorContains(t, err, "failed to confirm delivery")

	env.out.Reset()
	require.NoError(t, runOrderShow(ctx, env.Env, ids[0]))
	assert.Contains(t, env.out.String(), "Status:    Delivered")
}

func TestOrderConfirm_NonInteractiveNeedsID(t *testing.T) {
	env := newTestEnv(t, "http://127.0.0.1:1", "token")
	err := runOrderConfirm(context.Background(), env.Env, "")
	assert.ErrorContains(t, err, "order id is required")
}

func TestOrderOptions_OnlyInProcess(t *testing.T) {
	options := orderOptions([]client.OrderSummary{
		{ID: "01HZX0000000000000000000AA", Status: client.StatusInProcess, Price: 420},
		{ID: "01HZX0000000000000000000BB", Status: client.StatusDelivered, Price: 110},
	})
	require.Len(t, options, 1)
	assert.Equal(t, "01HZX0000000000000000000AA", options[0].Value)
	assert.Contains(t, options[0].Label, "#01HZX000")
}

func TestOrders_ExpiredSessionRedirectsOnce(t *testing.T) {
	const orders = 3

	var (
		mu      sync.Mutex
		arrived int
		release = make(chan struct{})
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/order" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"id":"a","status":"InProcess"},{"id":"b","status":"InProcess"},{"id":"c","status":"Delivered"}]`))
			return
		}

		// Hold the detail requests so they all fail together
		mu.Lock()
		arrived++
		if arrived == orders {
			close(release)
		}
		mu.Unlock()
		select {
		case <-release:
		case <-time.After(2 * time.Second):
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(ts.Close)

	env := newTestEnv(t, ts.URL, "stale")

	err := runOrders(context.Background(), env.Env)

	assert.ErrorIs(t, err, errSessionExpired)
	assert.Empty(t, env.token(t))
	assert.Equal(t, 1, strings.Count(env.errOut.String(), client.SessionExpiredMessage))
	assert.Equal(t, 1, strings.Count(env.errOut.String(), "foodctl login"))
	assert.Empty(t, env.out.String())
}
