package api

import (
	"context"
	"net/http"

	"github.com/justsurfingit/job-tracker-client/internal/dtos"
)

func (c *Client) Login(ctx context.Context, email, password string) (*dtos.AuthResponse, error) {
	var out dtos.AuthResponse
	if err := c.anonJSON(ctx, "/auth/login", dtos.LoginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Signup(ctx context.Context, req dtos.SignupRequest) (*dtos.AuthResponse, error) {
	var out dtos.AuthResponse
	if err := c.anonJSON(ctx, "/auth/signup", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh exchanges a refresh token for a new token pair. It never sends the
// (possibly expired) access token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*dtos.AuthResponse, error) {
	var out dtos.AuthResponse
	if err := c.anonJSON(ctx, "/auth/refresh", dtos.RefreshRequest{RefreshToken: refreshToken}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout revokes the refresh token server-side.
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	return c.sendJSON(ctx, http.MethodPost, "/auth/logout", dtos.RefreshRequest{RefreshToken: refreshToken}, nil)
}

func (c *Client) Me(ctx context.Context) (*dtos.User, error) {
	var out dtos.User
	if err := c.getJSON(ctx, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) anonJSON(ctx context.Context, path string, in, out any) error {
	body, err := encode(in)
	if err != nil {
		return err
	}
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   path,
		body:   body,
		ctype:  "application/json",
		out:    out,
		anon:   true,
	})
}
