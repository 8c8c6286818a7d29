package api

import (
	"context"
	"net/url"

	"github.com/blackenaxe/icom/internal/model"
)

// Login exchanges credentials for an access token. The endpoint is
// form-encoded, unlike the rest of the API.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.postForm(ctx, "/api/login", form, &resp); err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

// Me fetches the profile of the user the token belongs to. The token
// is passed explicitly because during login it has not been persisted
// yet; the profile fetch must succeed before anything is stored.
func (c *Client) Me(ctx context.Context, token string) (*model.User, error) {
	var user model.User
	err := c.do(ctx, "GET", "/api/users/me", "", nil, token, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Register creates a new account and returns the backend's success
// message.
func (c *Client) Register(ctx context.Context, username, email, password string) (string, error) {
	body := map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}
	var resp struct {
		Message string `json:"message"`
	}
	if err := c.postJSON(ctx, "/api/register", body, &resp); err != nil {
		return "", err
	}
	if resp.Message == "" {
		resp.Message = "Registration successful."
	}
	return resp.Message, nil
}

// Users lists the accounts a work order can be assigned to.
func (c *Client) Users(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := c.get(ctx, "/api/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}
