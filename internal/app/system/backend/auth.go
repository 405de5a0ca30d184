// internal/app/system/backend/auth.go
package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/hrportal/internal/domain/models"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the data payload of POST /auth/login.
type LoginResponse struct {
	Token  string          `json:"token"`
	Role   string          `json:"role"`
	Roles  []string        `json:"roles"`
	User   models.User     `json:"user"`
	Expiry json.RawMessage `json:"expiry"`
}

// Identity converts the login payload into an Identity. The single role
// field and the role list are merged so either form works.
func (lr LoginResponse) Identity() models.Identity {
	raw := append([]string{}, lr.Roles...)
	raw = append(raw, lr.User.Roles...)
	if lr.Role != "" {
		raw = append(raw, lr.Role)
	}
	return models.Identity{
		UserID:   lr.User.ID,
		Username: lr.User.Username,
		Email:    lr.User.Email,
		Roles:    models.ParseRoles(raw),
		Token:    lr.Token,
		Expiry:   parseExpiry(lr.Expiry),
	}
}

// parseExpiry accepts an RFC 3339 string, epoch seconds or epoch
// milliseconds. Anything else yields the zero time.
func parseExpiry(raw json.RawMessage) time.Time {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" || s == "null" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return time.Time{}
	}
	// Anything past year 33658 in seconds is really milliseconds.
	if n > 1e12 {
		return time.UnixMilli(n)
	}
	return time.Unix(n, 0)
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, identifier, password string) (*LoginResponse, error) {
	var out LoginResponse
	if err := c.call(ctx, http.MethodPost, "/auth/login", nil, loginRequest{Username: identifier, Password: password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout invalidates the server-side session of the token on ctx.
func (c *Client) Logout(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
}

// UserProfile returns the account of the token on ctx.
func (c *Client) UserProfile(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.call(ctx, http.MethodGet, "/auth/profile", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account from an HR-issued registration token.
func (c *Client) Register(ctx context.Context, reg models.Registration) error {
	return c.call(ctx, http.MethodPost, "/auth/register", nil, reg, nil)
}
