// internal/app/features/health/handler.go
package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/hrportal/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

var errNoDatabase = errors.New("no database client")

// Pinger is satisfied by *mongo.Client.
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// Breaker reports the backend circuit breaker state; satisfied by
// *backend.Client.
type Breaker interface {
	BreakerState() string
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	DB      Pinger
	Backend Breaker
	Log     *zap.Logger
}

// NewHandler constructs a health Handler. backend may be nil.
func NewHandler(db Pinger, backend Breaker, logger *zap.Logger) *Handler {
	return &Handler{
		DB:      db,
		Backend: backend,
		Log:     logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Backend  string `json:"backend,omitempty"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "backend":"closed" }
//
// With the backend breaker open: 200 and status "degraded"; the portal is
// up but backend calls fail fast.
//
// On DB failure: 503 and
//
//	{ "status":"error", "message":"Database unavailable", "error":"…"}
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:   "ok",
		Database: "connected",
	}
	if h.Backend != nil {
		resp.Backend = h.Backend.BreakerState()
	}

	// Check database
	err := errNoDatabase
	if h.DB != nil {
		err = h.DB.Ping(ctx, readpref.Primary())
	}
	if err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		resp.Error = err.Error()
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	if resp.Backend == "open" {
		h.Log.Warn("health-check: backend circuit open")
		resp.Status = "degraded"
		resp.Message = "Backend unavailable"
	}

	_ = json.NewEncoder(w).Encode(resp)
}
