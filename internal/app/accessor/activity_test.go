package accessor_test

import (
	"testing"
	"time"

	"github.com/samaquete/admin/internal/app/system/apperr"
	"github.com/samaquete/admin/internal/domain/models"
	"github.com/samaquete/admin/internal/testutil"
)

func TestActivity_LogsAndStats(t *testing.T) {
	e := newEnv(t)
	admin := testutil.DioceseAdmin(testutil.DioceseA)
	other := testutil.ParishAdmin(testutil.DioceseA, "p1")
	now := time.Now().UTC()

	seed := []struct {
		uid    string
		action string
		ago    time.Duration
	}{
		{admin.UID, models.ActionCreate, time.Hour},
		{admin.UID, models.ActionUpdate, 3 * 24 * time.Hour},
		{admin.UID, models.ActionDelete, 40 * 24 * time.Hour},
		{other.UID, models.ActionLogin, 2 * time.Hour},
	}
	for _, s := range seed {
		if _, err := e.logs.Insert(e.ctx, models.ActivityLog{UserID: s.uid, Action: s.action, EntityType: "parish", Timestamp: now.Add(-s.ago)}); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	mine, err := e.set.Activity.Logs(e.ctx, admin, admin.UID, 0, 0)
	if err != nil {
		t.Fatalf("Logs: %v", err)
	}
	if len(mine) != 2 || mine[0].Action != models.ActionCreate {
		t.Errorf("own logs = %+v", mine)
	}
	longer, _ := e.set.Activity.Logs(e.ctx, admin, admin.UID, 60, 0)
	if len(longer) != 3 {
		t.Errorf("60-day logs = %d, want 3", len(longer))
	}

	_, err = e.set.Activity.Logs(e.ctx, admin, other.UID, 30, 10)
	assertIs(t, err, apperr.ErrPermissionDenied)
	_, err = e.set.Activity.Logs(e.ctx, admin, "", 30, 10)
	assertIs(t, err, apperr.ErrPermissionDenied)

	all, err := e.set.Activity.Logs(e.ctx, testutil.SuperAdmin(), "", 30, 1)
	if err != nil || len(all) != 1 {
		t.Errorf("super limited logs = %d, %v", len(all), err)
	}

	stats, err := e.set.Activity.Stats(e.ctx, admin, admin.UID, 0, time.UTC)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 2 || stats.ThisWeek != 2 || stats.WindowDays != 30 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.ByAction[models.ActionCreate] != 1 || stats.ByEntity["parish"] != 2 {
		t.Errorf("breakdown = %v %v", stats.ByAction, stats.ByEntity)
	}

	everyone, err := e.set.Activity.Stats(e.ctx, testutil.SuperAdmin(), "", 1000, time.UTC)
	if err != nil {
		t.Fatalf("super Stats: %v", err)
	}
	if everyone.Total != 4 || everyone.WindowDays != 365 {
		t.Errorf("everyone = %+v", everyone)
	}
}
