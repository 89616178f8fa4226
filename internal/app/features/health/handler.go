// Package health serves the liveness and readiness probes.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/samaquete/admin/internal/app/features/shared/httpjson"
	"github.com/samaquete/admin/internal/app/system/timeouts"
	"github.com/samaquete/admin/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

type Handler struct {
	DB      *mongo.Database
	Version string
	Started time.Time
	Log     *zap.Logger
}

func NewHandler(db *mongo.Database, version string, logger *zap.Logger) *Handler {
	return &Handler{
		DB:      db,
		Version: version,
		Started: time.Now(),
		Log:     logger,
	}
}

type readiness struct {
	Status   string `json:"status"` // ok | degraded | error
	Database string `json:"database"`
	Dioceses int64  `json:"dioceses"`
	Version  string `json:"version,omitempty"`
	Uptime   string `json:"uptime"`
	Error    string `json:"error,omitempty"`
}

// ServeLive answers 200 as long as the process can serve HTTP.
func (h *Handler) ServeLive(w http.ResponseWriter, r *http.Request) {
	httpjson.OK(w, map[string]string{"status": "ok"})
}

// ServeReady pings MongoDB and checks that the fixed dioceses are seeded.
// A failed ping answers 503; missing dioceses report "degraded" with 200
// since the console still serves everything else.
func (h *Handler) ServeReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	resp := readiness{
		Status:   "ok",
		Database: "connected",
		Version:  h.Version,
		Uptime:   time.Since(h.Started).Truncate(time.Second).String(),
	}

	if err := h.DB.Client().Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Error = "base de données indisponible"
		httpjson.Write(w, http.StatusServiceUnavailable, resp)
		return
	}

	n, err := h.DB.Collection("dioceses").CountDocuments(ctx, bson.M{})
	if err != nil {
		h.Log.Warn("health-check: diocese count failed", zap.Error(err))
	}
	resp.Dioceses = n
	if n < int64(len(models.FixedDioceses())) {
		resp.Status = "degraded"
	}
	httpjson.OK(w, resp)
}
