package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// BasketItem is one dish line in the basket or in an order
type BasketItem struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	TotalPrice float64 `json:"totalPrice"`
	Amount     int     `json:"amount"`
	Image      string  `json:"image"`
}

// LineTotal returns the line price, computing it when the service omitted it
func (i BasketItem) LineTotal() float64 {
	if i.TotalPrice > 0 {
		return i.TotalPrice
	}
	return i.Price * float64(i.Amount)
}

// Basket is the user's cart
type Basket struct {
	Items []BasketItem
}

// TotalQuantity returns the number of dishes across all lines
func (b *Basket) TotalQuantity() int {
	total := 0
	for _, item := range b.Items {
		total += item.Amount
	}
	return total
}

// Total returns the cart price
func (b *Basket) Total() float64 {
	total := 0.0
	for _, item := range b.Items {
		total += item.LineTotal()
	}
	return total
}

// Amount returns how many of a dish are in the cart
func (b *Basket) Amount(dishID string) int {
	for _, item := range b.Items {
		if item.ID == dishID {
			return item.Amount
		}
	}
	return 0
}

// Empty reports whether the cart has no lines
func (b *Basket) Empty() bool {
	return len(b.Items) == 0
}

// Basket returns the cart. Both a flat list of lines and an object wrapping
// them in "dishes" are accepted.
func (c *Client) Basket(ctx context.Context) (*Basket, error) {
	res, err := c.Do(ctx, http.MethodGet, "/api/basket", nil)
	if err != nil {
		return nil, err
	}
	items, err := decodeBasketItems(res.Raw())
	if err != nil {
		return nil, &Error{Kind: KindDecode, Method: http.MethodGet, Path: "/api/basket", Err: err}
	}
	return &Basket{Items: items}, nil
}

func decodeBasketItems(raw json.RawMessage) ([]BasketItem, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var items []BasketItem
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		return items, nil
	}

	var wrapped struct {
		Dishes []BasketItem `json:"dishes"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, fmt.Errorf("unexpected basket shape: %w", err)
	}
	return wrapped.Dishes, nil
}

// AddToBasket adds one portion of a dish
func (c *Client) AddToBasket(ctx context.Context, dishID string) error {
	return c.call(ctx, http.MethodPost, "/api/basket/dish/"+url.PathEscape(dishID), nil, nil)
}

// RemoveFromBasket removes one portion of a dish when decrease is true, and
// the whole line otherwise. The service names the flag "increase".
func (c *Client) RemoveFromBasket(ctx context.Context, dishID string, decrease bool) error {
	path := fmt.Sprintf("/api/basket/dish/%s?increase=%s", url.PathEscape(dishID), strconv.FormatBool(decrease))
	return c.call(ctx, http.MethodDelete, path, nil, nil)
}
