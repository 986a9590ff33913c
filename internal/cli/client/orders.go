package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Order statuses
const (
	StatusInProcess = "InProcess"
	StatusDelivered = "Delivered"
)

// StatusLabel returns the display form of an order status
func StatusLabel(status string) string {
	switch status {
	case StatusInProcess:
		return "In Process"
	default:
		return status
	}
}

// OrderSummary is an entry of the order history
type OrderSummary struct {
	ID           string  `json:"id"`
	DeliveryTime Time    `json:"deliveryTime"`
	OrderTime    Time    `json:"orderTime"`
	Status       string  `json:"status"`
	Price        float64 `json:"price"`
}

// ShortID returns the first eight characters of the id, as shown in lists
func (o OrderSummary) ShortID() string {
	if len(o.ID) > 8 {
		return o.ID[:8]
	}
	return o.ID
}

// Order is a full order with its dishes
type Order struct {
	OrderSummary
	Dishes  []BasketItem `json:"dishes"`
	Address string       `json:"address"`
}

// CreateOrderRequest places an order for the current basket
type CreateOrderRequest struct {
	DeliveryTime Time   `json:"deliveryTime"`
	Address      string `json:"address" validate:"required"`
}

// Orders returns the order history
func (c *Client) Orders(ctx context.Context) ([]OrderSummary, error) {
	var orders []OrderSummary
	if err := c.call(ctx, http.MethodGet, "/api/order", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Order returns a single order with its dishes
func (c *Client) Order(ctx context.Context, id string) (*Order, error) {
	var order Order
	if err := c.call(ctx, http.MethodGet, "/api/order/"+url.PathEscape(id), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateOrder turns the basket into an order
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) error {
	return c.call(ctx, http.MethodPost, "/api/order", req, nil)
}

// ConfirmDelivery marks an order as delivered
func (c *Client) ConfirmDelivery(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodPost, fmt.Sprintf("/api/order/%s/status", url.PathEscape(id)), nil, nil)
}
