package backend

import (
	"context"
	"errors"
	"net/http"
)

const authPath = "/api/Auth"

// LoginRequest is the body of the login call.
type LoginRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	CompanyID string `json:"companyID"`
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (string, error) {
	env, err := c.do(ctx, Credentials{}, call{
		op:       "auth.login",
		method:   http.MethodPost,
		path:     authPath + "/login",
		body:     req,
		fallback: "invalid credentials",
	})
	if err != nil {
		return "", err
	}
	if env.AccessToken == "" {
		return "", &APIError{StatusCode: http.StatusOK, Message: "login response carried no access token", Messages: env.Messages}
	}
	return env.AccessToken, nil
}

// Logout invalidates the token on the API side.
func (c *Client) Logout(ctx context.Context, creds Credentials) error {
	if creds.Token == "" {
		return errors.New("backend: logout without token")
	}
	_, err := c.do(ctx, creds, call{
		op:       "auth.logout",
		method:   http.MethodPost,
		path:     authPath + "/logout",
		fallback: "logout failed",
	})
	return err
}
