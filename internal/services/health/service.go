package health

import (
	"context"
	"database/sql"
	"time"

	"resume-portal/internal/shared/storage/db"
)

// Service encapsulates health-related checks.
type Service struct {
	DB          *sql.DB
	PingTimeout time.Duration
}

// NewService constructs a new health service. database may be nil for in-memory mode.
func NewService(database *sql.DB, pingTimeout time.Duration) *Service {
	return &Service{DB: database, PingTimeout: pingTimeout}
}

// Status reports overall health and the state of each dependency.
func (s *Service) Status(ctx context.Context) (map[string]any, bool) {
	status := map[string]any{"ok": true, "database": "memory"}
	if s == nil || s.DB == nil {
		return status, true
	}
	if err := db.Ping(ctx, s.DB, s.PingTimeout); err != nil {
		status["ok"] = false
		status["database"] = "unavailable"
		return status, false
	}
	status["database"] = "ok"
	return status, true
}
