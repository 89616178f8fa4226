package accessor

import (
	"context"
	"time"

	"github.com/samaquete/admin/internal/app/reports"
	activitylogstore "github.com/samaquete/admin/internal/app/store/activitylog"
	"github.com/samaquete/admin/internal/app/system/apperr"
	"github.com/samaquete/admin/internal/app/system/authz"
	"github.com/samaquete/admin/internal/domain/models"
)

const (
	maxActivityDays  = 365
	maxActivityLimit = 500
	// statsScanLimit bounds the logs read to compute statistics.
	statsScanLimit = 10000
)

// Activity reads the activity logs. Admins read their own; super admins may
// read anyone's, or everyone's with an empty userID.
type Activity struct {
	store *activitylogstore.Store
	now   func() time.Time
}

func (a *Activity) clock() time.Time {
	if a.now != nil {
		return a.now()
	}
	return time.Now().UTC()
}

func (a *Activity) window(c models.Claims, userID string, days int) (activitylogstore.QueryFilter, error) {
	if err := signedIn(c); err != nil {
		return activitylogstore.QueryFilter{}, err
	}
	if !authz.CanReadActivity(c, userID) {
		return activitylogstore.QueryFilter{}, apperr.Denied("%s cannot read activity of %q", c.Role, userID)
	}
	if days <= 0 {
		days = reports.DefaultWindowDays
	}
	if days > maxActivityDays {
		days = maxActivityDays
	}
	start := a.clock().AddDate(0, 0, -days)
	return activitylogstore.QueryFilter{UserID: userID, StartTime: &start}, nil
}

// Logs returns up to limit entries from the last days, newest first.
func (a *Activity) Logs(ctx context.Context, c models.Claims, userID string, days, limit int) ([]models.ActivityLog, error) {
	f, err := a.window(c, userID, days)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > maxActivityLimit {
		limit = activitylogstore.DefaultLimit
	}
	f.Limit = int64(limit)
	out, err := a.store.Query(ctx, f)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.ActivityLog{}
	}
	return out, nil
}

// Stats summarizes the same window as Logs. Today is computed in loc.
func (a *Activity) Stats(ctx context.Context, c models.Claims, userID string, days int, loc *time.Location) (reports.ActivityStats, error) {
	f, err := a.window(c, userID, days)
	if err != nil {
		return reports.ActivityStats{}, err
	}
	f.Limit = statsScanLimit
	logs, err := a.store.Query(ctx, f)
	if err != nil {
		return reports.ActivityStats{}, err
	}
	if days <= 0 {
		days = reports.DefaultWindowDays
	}
	return reports.ComputeActivityStats(logs, a.clock(), loc, min(days, maxActivityDays)), nil
}
