// internal/app/features/userinfo/handler.go
package userinfo

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/hrportal/internal/app/system/auth"
)

// Handler serves user information for authenticated sessions.
type Handler struct{}

// NewHandler creates a new userinfo handler.
func NewHandler() *Handler {
	return &Handler{}
}

type userInfo struct {
	IsAuthenticated bool     `json:"isAuthenticated"`
	ID              string   `json:"id"`
	Username        string   `json:"username"`
	Email           string   `json:"email"`
	Role            string   `json:"role"`
	Roles           []string `json:"roles"`
	EmployeeID      string   `json:"employeeId,omitempty"`
	HouseID         string   `json:"houseId,omitempty"`
}

// ServeUserInfo returns JSON with the current user's authentication status and identity.
//
// Response format:
//
//	{ "isAuthenticated": bool, "id": "...", "username": "...", "email": "...",
//	  "role": "HR|Employee", "roles": [...], "employeeId": "...", "houseId": "..." }
//
// The session token is never included.
func (h *Handler) ServeUserInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	user, ok := auth.CurrentUser(r)
	if !ok {
		_ = json.NewEncoder(w).Encode(userInfo{Roles: []string{}})
		return
	}

	roles := make([]string, 0, len(user.Roles))
	for _, role := range user.Roles {
		roles = append(roles, string(role))
	}
	_ = json.NewEncoder(w).Encode(userInfo{
		IsAuthenticated: true,
		ID:              user.ID,
		Username:        user.Username,
		Email:           user.Email,
		Role:            string(user.Role),
		Roles:           roles,
		EmployeeID:      user.EmployeeID,
		HouseID:         user.HouseID,
	})
}
