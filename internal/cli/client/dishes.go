package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Dish categories
const (
	CategoryWok     = "Wok"
	CategoryPizza   = "Pizza"
	CategorySoup    = "Soup"
	CategoryDessert = "Dessert"
	CategoryDrink   = "Drink"
)

// Categories lists every dish category in menu order
var Categories = []string{CategoryWok, CategoryPizza, CategorySoup, CategoryDessert, CategoryDrink}

// Menu sort orders
const (
	SortNameAsc    = "NameAsc"
	SortNameDesc   = "NameDesc"
	SortPriceAsc   = "PriceAsc"
	SortPriceDesc  = "PriceDesc"
	SortRatingAsc  = "RatingAsc"
	SortRatingDesc = "RatingDesc"
)

// Sortings lists every sort order with its label
var Sortings = []struct {
	Value string
	Label string
}{
	{SortNameAsc, "Name A-Z"},
	{SortNameDesc, "Name Z-A"},
	{SortPriceAsc, "Price Low to High"},
	{SortPriceDesc, "Price High to Low"},
	{SortRatingAsc, "Rating Low to High"},
	{SortRatingDesc, "Rating High to Low"},
}

// IsCategory reports whether s is a known category
func IsCategory(s string) bool {
	for _, c := range Categories {
		if c == s {
			return true
		}
	}
	return false
}

// IsSorting reports whether s is a known sort order
func IsSorting(s string) bool {
	for _, o := range Sortings {
		if o.Value == s {
			return true
		}
	}
	return false
}

// Dish represents a menu item
type Dish struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Image       string   `json:"image"`
	Vegetarian  bool     `json:"vegetarian"`
	Rating      *float64 `json:"rating"`
	Category    string   `json:"category"`
}

// Pagination describes a page of the menu. Count is the number of pages.
type Pagination struct {
	Size    int `json:"size"`
	Count   int `json:"count"`
	Current int `json:"current"`
}

// DishPage is one page of the menu
type DishPage struct {
	Dishes     []Dish     `json:"dishes"`
	Pagination Pagination `json:"pagination"`
}

// DishQuery holds the menu filters
type DishQuery struct {
	Categories []string
	Vegetarian bool
	Sorting    string
	Page       int
}

// Values encodes the query the way the menu page does: repeated categories,
// vegetarian always present.
func (q DishQuery) Values() url.Values {
	params := url.Values{}
	for _, category := range q.Categories {
		params.Add("categories", category)
	}
	params.Set("vegetarian", strconv.FormatBool(q.Vegetarian))
	if q.Sorting != "" {
		params.Set("sorting", q.Sorting)
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	return params
}

// Dishes returns one page of the menu
func (c *Client) Dishes(ctx context.Context, query DishQuery) (*DishPage, error) {
	var page DishPage
	if err := c.call(ctx, http.MethodGet, "/api/dish?"+query.Values().Encode(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Dish returns a single dish
func (c *Client) Dish(ctx context.Context, id string) (*Dish, error) {
	var dish Dish
	if err := c.call(ctx, http.MethodGet, "/api/dish/"+url.PathEscape(id), nil, &dish); err != nil {
		return nil, err
	}
	return &dish, nil
}

// CanRate reports whether the signed-in user may rate the dish
func (c *Client) CanRate(ctx context.Context, id string) (bool, error) {
	var ok bool
	if err := c.call(ctx, http.MethodGet, fmt.Sprintf("/api/dish/%s/rating/check", url.PathEscape(id)), nil, &ok); err != nil {
		return false, err
	}
	return ok, nil
}

// Rate sets the user's rating of a dish. The service answers 403 until the
// user has received an order containing it.
func (c *Client) Rate(ctx context.Context, id string, score int) error {
	path := fmt.Sprintf("/api/dish/%s/rating?ratingScore=%d", url.PathEscape(id), score)
	return c.call(ctx, http.MethodPost, path, nil, nil)
}
