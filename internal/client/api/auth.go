package api

import (
	"context"
	"net/url"
	"time"
)

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type User struct {
	Email         string    `json:"email"`
	Mobile        string    `json:"mobile"`
	Name          string    `json:"name"`
	Role          string    `json:"role"`
	CreatedAt     time.Time `json:"created_at"`
	TotalUploads  int       `json:"total_uploads"`
	ProfilePicURL string    `json:"profile_pic_url,omitempty"`
}

// SendOTP asks the server to mail a fresh code to email.
func (c *Client) SendOTP(ctx context.Context, email string) error {
	_, err := c.postJSON(ctx, "/api/send-otp", "", map[string]string{"email": email}, nil)
	return err
}

// VerifyOTP exchanges a code for an access token.
func (c *Client) VerifyOTP(ctx context.Context, email, otp string) (Token, error) {
	var tkn Token
	_, err := c.postJSON(ctx, "/api/verify-otp", "", map[string]string{"email": email, "otp": otp}, &tkn)
	return tkn, err
}

func (c *Client) GetUser(ctx context.Context, token, email string) (User, error) {
	var u User
	_, err := c.get(ctx, "/api/get-user", token, url.Values{"email": {email}}, &u)
	return u, err
}
