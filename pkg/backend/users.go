package backend

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelmondragon/storefront-gateway/pkg/auth"
	pkgerrors "github.com/angelmondragon/storefront-gateway/pkg/errors"
)

// Login exchanges credentials for a backend bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp loginResponse
	err := c.do(ctx, auth.Anonymous, request{
		endpoint: "auth.login",
		method:   http.MethodPost,
		path:     "auth/login",
		body:     loginRequest{Email: email, Password: password},
		out:      &resp,
	})
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(resp.Token)
	if token == "" {
		return "", pkgerrors.New(pkgerrors.CodeUpstream, "the storefront service did not return a token")
	}
	return token, nil
}

// Signup registers an account and returns the backend confirmation text.
func (c *Client) Signup(ctx context.Context, fullName, email, password string) (string, error) {
	var msg string
	err := c.do(ctx, auth.Anonymous, request{
		endpoint: "auth.signup",
		method:   http.MethodPost,
		path:     "auth/signup",
		body:     signupRequest{FullName: fullName, Email: email, Password: password},
		out:      &msg,
	})
	return msg, err
}

// Me fetches the current user's profile.
func (c *Client) Me(ctx context.Context, cred auth.Credential) (*UserProfile, error) {
	var profile UserProfile
	if err := c.do(ctx, cred, request{
		endpoint: "users.me",
		method:   http.MethodGet,
		path:     "users/me",
		out:      &profile,
	}); err != nil {
		return nil, err
	}
	return &profile, nil
}

// BecomeSeller opens a shop and returns the updated profile.
func (c *Client) BecomeSeller(ctx context.Context, cred auth.Credential, req BecomeSellerRequest) (*UserProfile, error) {
	var profile UserProfile
	if err := c.do(ctx, cred, request{
		endpoint: "users.become_seller",
		method:   http.MethodPost,
		path:     "users/become-seller",
		body:     req,
		out:      &profile,
	}); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateBuyerProfile edits the buyer profile and returns the backend confirmation text.
func (c *Client) UpdateBuyerProfile(ctx context.Context, cred auth.Credential, req UpdateBuyerProfileRequest) (string, error) {
	var msg string
	err := c.do(ctx, cred, request{
		endpoint: "users.update_buyer_profile",
		method:   http.MethodPut,
		path:     "users/update-buyer-profile",
		body:     req,
		out:      &msg,
	})
	return msg, err
}

// UpdateSellerProfile edits the seller profile and returns the backend confirmation text.
func (c *Client) UpdateSellerProfile(ctx context.Context, cred auth.Credential, req UpdateSellerProfileRequest) (string, error) {
	var msg string
	err := c.do(ctx, cred, request{
		endpoint: "users.update_seller_profile",
		method:   http.MethodPut,
		path:     "users/update-seller-profile",
		body:     req,
		out:      &msg,
	})
	return msg, err
}
