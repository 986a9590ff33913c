package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse is returned by login and registration
type TokenResponse struct {
	Token string `json:"token"`
}

// RegisterRequest represents the registration form
type RegisterRequest struct {
	FullName    string `json:"fullName" validate:"required"`
	Password    string `json:"password" validate:"required,foodpassword"`
	Email       string `json:"email" validate:"required,email"`
	Address     string `json:"address,omitempty"`
	BirthDate   string `json:"birthDate,omitempty" validate:"omitempty,fooddate"`
	Gender      string `json:"gender" validate:"required,oneof=Male Female"`
	PhoneNumber string `json:"phoneNumber,omitempty" validate:"omitempty,foodphone"`
}

// Profile is the account as returned by the service
type Profile struct {
	ID          string `json:"id"`
	FullName    string `json:"fullName"`
	BirthDate   Time   `json:"birthDate"`
	Gender      string `json:"gender"`
	Address     string `json:"address"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}

// ProfileUpdate represents the editable profile fields
type ProfileUpdate struct {
	FullName    string `json:"fullName" validate:"required"`
	BirthDate   string `json:"birthDate,omitempty" validate:"omitempty,fooddate"`
	Gender      string `json:"gender" validate:"required,oneof=Male Female"`
	Address     string `json:"address,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty" validate:"omitempty,foodphone"`
}

// Login authenticates the user and stores the returned token
func (c *Client) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	var resp TokenResponse
	if err := c.call(ctx, http.MethodPost, "/api/account/login", LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	if err := c.saveToken(resp.Token); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account and stores the returned token
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error) {
	var resp TokenResponse
	if err := c.call(ctx, http.MethodPost, "/api/account/register", req, &resp); err != nil {
		return nil, err
	}
	if err := c.saveToken(resp.Token); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout ends the session on the server. The stored token is removed even if
// the server call fails; a 401 means the session was already gone.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.Do(ctx, http.MethodPost, "/api/account/logout", nil)
	if errors.Is(err, ErrUnauthorized) {
		err = nil
	}
	if clearErr := c.store.Clear(); clearErr != nil {
		return errors.Join(err, clearErr)
	}
	return err
}

// Profile returns the signed-in user's profile
func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	var profile Profile
	if err := c.call(ctx, http.MethodGet, "/api/account/profile", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile replaces the editable profile fields
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) error {
	return c.call(ctx, http.MethodPut, "/api/account/profile", update, nil)
}

func (c *Client) saveToken(token string) error {
	if token == "" {
		return &Error{Kind: KindDecode, Err: fmt.Errorf("response did not include a token")}
	}
	return c.store.Save(token)
}
