package auth

import (
	"github.com/ethanhollis/cartwright-backend/internal/cart"
	"github.com/ethanhollis/cartwright-backend/internal/users"
)

// RegisterRequest captures the payload for creating a storefront account.
// A guest cart token, when present, is merged into the new account's cart.
type RegisterRequest struct {
	FirstName      string `json:"first_name" validate:"required"`
	LastName       string `json:"last_name" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=8"`
	GuestCartToken string `json:"guest_cart_token,omitempty"`
}

// LoginRequest captures the credentials sent to the login endpoint.
type LoginRequest struct {
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required"`
	GuestCartToken string `json:"guest_cart_token,omitempty"`
}

// AuthResponse contains the tokens and user produced by login or
// registration, plus the merged cart when a guest token was supplied.
type AuthResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         *users.UserDTO `json:"user"`
	Cart         *cart.Quote    `json:"cart,omitempty"`
}

// RefreshRequest rotates a refresh token.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshResponse returns the rotated token pair.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
