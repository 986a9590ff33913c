package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodctl/foodctl/internal/cli/session"
)

func TestDishQuery_Values(t *testing.T) {
	q := DishQuery{
		Categories: []string{CategoryWok, CategoryPizza},
		Vegetarian: true,
		Sorting:    SortPriceDesc,
		Page:       2,
	}
	assert.Equal(t, "categories=Wok&categories=Pizza&page=2&sorting=PriceDesc&vegetarian=true", q.Values().Encode())

	assert.Equal(t, "vegetarian=false", DishQuery{}.Values().Encode())
}

func TestIsCategoryAndSorting(t *testing.T) {
	assert.True(t, IsCategory("Soup"))
	assert.False(t, IsCategory("soup"))
	assert.True(t, IsSorting(SortRatingAsc))
	assert.False(t, IsSorting("Random"))
}

func TestDecodeBasketItems(t *testing.T) {
	flat := `[{"id":"1","name":"Tom Yum","price":300,"totalPrice":600,"amount":2,"image":"x"}]`
	wrapped := `{"dishes":[{"id":"1","name":"Tom Yum","price":300,"totalPrice":600,"amount":2,"image":"x"}]}`

	for name, body := range map[string]string{"flat": flat, "wrapped": wrapped} {
		t.Run(name, func(t *testing.T) {
			items, err := decodeBasketItems(json.RawMessage(body))
			require.NoError(t, err)
			require.Len(t, items, 1)
			assert.Equal(t, "Tom Yum", items[0].Name)
			assert.Equal(t, 2, items[0].Amount)
		})
	}

	items, err := decodeBasketItems(nil)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = decodeBasketItems(json.RawMessage(`"nonsense"`))
	assert.Error(t, err)
}

func TestBasketTotals(t *testing.T) {
	b := &Basket{Items: []BasketItem{
		{ID: "1", Price: 100, TotalPrice: 200, Amount: 2},
		{ID: "2", Price: 50, Amount: 3},
	}}

	assert.Equal(t, 5, b.TotalQuantity())
	assert.Equal(t, 350.0, b.Total())
	assert.Equal(t, 3, b.Amount("2"))
	assert.Zero(t, b.Amount("missing"))
	assert.False(t, b.Empty())
	assert.True(t, (&Basket{}).Empty())
}

func TestParseTime(t *testing.T) {
	for _, s := range []string{"2024-05-01T12:30:00Z", "2024-05-01T12:30:00.123", "2024-05-01T12:30:00", "2024-05-01"} {
		_, err := ParseTime(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseTime("yesterday")
	assert.Error(t, err)
}

func TestTimeJSON(t *testing.T) {
	var order OrderSummary
	require.NoError(t, json.Unmarshal([]byte(`{"id":"abcdef0123","deliveryTime":"2024-05-01T12:30:00.5","orderTime":null,"status":"InProcess","price":990}`), &order))

	assert.Equal(t, 2024, order.DeliveryTime.Year())
	assert.Equal(t, 500*time.Millisecond, time.Duration(order.DeliveryTime.Nanosecond()))
	assert.True(t, order.OrderTime.IsZero())
	assert.Equal(t, "abcdef01", order.ShortID())
	assert.Equal(t, "In Process", StatusLabel(order.Status))
	assert.Equal(t, "Delivered", StatusLabel(StatusDelivered))

	data, err := json.Marshal(CreateOrderRequest{
		DeliveryTime: Time{time.Date(2024, 5, 1, 15, 0, 0, 0, time.UTC)},
		Address:      "Lenina 1",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"deliveryTime":"2024-05-01T15:00:00Z","address":"Lenina 1"}`, string(data))
}

func TestLoginStoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/account/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"fresh"}`))
	}))
	defer srv.Close()

	store := session.NewMemoryStore("")
	c := New(srv.URL, WithStore(store), WithPage("login"))

	resp, err := c.Login(context.Background(), "user@example.com", "Secret_123")
	require.NoError(t, err)
	assert.Equal(t, "fresh", resp.Token)

	token, _ := store.Token()
	assert.Equal(t, "fresh", token)
	assert.True(t, c.Authenticated())
}

func TestLogin_BadCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Login failed"}`))
	}))
	defer srv.Close()

	store := session.NewMemoryStore("")
	c := New(srv.URL, WithStore(store), WithPage("login"))

	_, err := c.Login(context.Background(), "user@example.com", "wrong")
	assert.True(t, errors.Is(err, HTTPStatus(http.StatusBadRequest)))
	assert.False(t, c.Authenticated())
}

func TestLogoutClearsTokenEvenOnFailure(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusUnauthorized, http.StatusInternalServerError} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		store := session.NewMemoryStore("token")
		nav := &recordingNavigator{}
		c := New(srv.URL, WithStore(store), WithNavigator(nav), WithPage("logout"))

		err := c.Logout(context.Background())
		if status == http.StatusInternalServerError {
			assert.Error(t, err)
		} else {
			assert.NoError(t, err, "status %d", status)
		}
		assert.False(t, c.Authenticated(), "status %d", status)
		srv.Close()
	}
}

func TestOrderDetailAndDishes(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/order/o-1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"o-1","status":"Delivered","price":600,"address":"Lenina 1","deliveryTime":"2024-05-01T12:00:00","orderTime":"2024-05-01T10:00:00","dishes":[{"id":"d-1","name":"Pho","price":300,"amount":2,"totalPrice":600}]}`))
	})
	mux.HandleFunc("/api/dish/d-1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"d-1","name":"Pho","price":300,"vegetarian":false,"rating":4.5,"category":"Soup"}`))
	})
	mux.HandleFunc("/api/dish/d-1/rating/check", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`true`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL, WithStore(session.NewMemoryStore("t")))
	ctx := context.Background()

	order, err := c.Order(ctx, "o-1")
	require.NoError(t, err)
	assert.Equal(t, "Lenina 1", order.Address)
	assert.Equal(t, StatusDelivered, order.Status)
	require.Len(t, order.Dishes, 1)
	assert.Equal(t, 600.0, order.Dishes[0].LineTotal())

	dish, err := c.Dish(ctx, "d-1")
	require.NoError(t, err)
	require.NotNil(t, dish.Rating)
	assert.Equal(t, 4.5, *dish.Rating)

	ok, err := c.CanRate(ctx, "d-1")
	require.NoError(t, err)
	assert.True(t, ok)
}
