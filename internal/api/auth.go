package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/and161185/notekeeper/internal/model"
)

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account: POST /users/signup with a JSON body.
func (c *Client) Register(ctx context.Context, creds model.Credentials) (model.Account, error) {
	var out model.Account
	err := c.doJSON(ctx, http.MethodPost, "/users/signup", nil,
		signupRequest{Email: creds.Email, Password: creds.Password}, &out)
	return out, err
}

// Login exchanges credentials for a token: POST /auth/token, form-encoded,
// with the email sent as username (OAuth2 password flow).
func (c *Client) Login(ctx context.Context, creds model.Credentials) (model.Token, error) {
	form := url.Values{}
	form.Set("username", creds.Email)
	form.Set("password", creds.Password)

	var out model.Token
	if err := c.doForm(ctx, "/auth/token", form, &out); err != nil {
		return model.Token{}, err
	}
	return out, nil
}

// Me returns the account the current token belongs to.
func (c *Client) Me(ctx context.Context) (model.Account, error) {
	var out model.Account
	err := c.doJSON(ctx, http.MethodGet, "/users/me", nil, nil, &out)
	return out, err
}
