package accessor

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/samaquete/admin/internal/app/policy/contentpolicy"
	prayertimestore "github.com/samaquete/admin/internal/app/store/prayertimes"
	"github.com/samaquete/admin/internal/app/system/apperr"
	"github.com/samaquete/admin/internal/app/system/auditlog"
	"github.com/samaquete/admin/internal/app/system/authz"
	"github.com/samaquete/admin/internal/app/system/inputval"
	"github.com/samaquete/admin/internal/app/system/normalize"
	"github.com/samaquete/admin/internal/app/system/notify"
	"github.com/samaquete/admin/internal/domain/models"
)

// PrayerTimes guards the mass and prayer schedules. Items written by a church
// admin wait for their parish to validate them.
type PrayerTimes struct {
	store   *prayertimestore.Store
	parents parents
	audit   *auditlog.Logger
	notify  *notify.Notifier
}

func prayerTimeTarget(s models.Scope) authz.Target {
	return authz.Target{Kind: authz.KindPrayerTime, Scope: s}
}

func cleanSchedule(t *string, days *[]string) error {
	if t != nil {
		*t = normalize.Time(*t)
		if !inputval.IsValidTime(*t) {
			return apperr.Invalid("time", "l'heure doit être au format HH:MM")
		}
	}
	if days != nil && *days != nil {
		*days = normalize.Days(*days)
		for _, d := range *days {
			if !inputval.IsWeekday(d) {
				return apperr.Invalid("days", fmt.Sprintf("jour inconnu %q", d))
			}
		}
	}
	return nil
}

// scheduleChanged reports whether the faithful would see a difference.
func scheduleChanged(before, after models.PrayerTime) bool {
	return before.Name != after.Name || before.Time != after.Time ||
		before.Active != after.Active || !slices.Equal(before.Days, after.Days)
}

func (a *PrayerTimes) Create(ctx context.Context, c models.Claims, pt models.PrayerTime) (models.PrayerTime, error) {
	if err := signedIn(c); err != nil {
		return models.PrayerTime{}, err
	}
	c = c.Normalize()

	name, err := requiredText("name", pt.Name)
	if err != nil {
		return models.PrayerTime{}, err
	}
	pt.Name = name
	if err := cleanSchedule(&pt.Time, &pt.Days); err != nil {
		return models.PrayerTime{}, err
	}
	rich(&pt.Description)

	pt.ID = ""
	pt.Scope = stampScope(c, pt.Scope)
	pt.ArchdioceseID = ""
	if pt.Scope, err = a.parents.resolve(ctx, pt.Scope, true); err != nil {
		return models.PrayerTime{}, err
	}
	if err := authz.Require(c, authz.Create, prayerTimeTarget(pt.Scope)); err != nil {
		return models.PrayerTime{}, err
	}

	pt.CreatedBy = c.UID
	pt.CreatedByRole = c.Role
	pt.ValidatedByParish = contentpolicy.InitialValidated(c.Role)
	pt.ValidatedBy = ""
	pt.ValidatedAt = nil

	created, err := a.store.Create(ctx, pt)
	if err != nil {
		return models.PrayerTime{}, err
	}
	record(ctx, a.audit, c, models.ActionCreate, authz.KindPrayerTime, created.ID, created.Name, nil)
	if created.ValidatedByParish {
		a.notify.Send(ctx, notify.PrayerTimeSaved(created, true, c.UID))
	}
	return created, nil
}

func (a *PrayerTimes) Get(ctx context.Context, c models.Claims, id string) (models.PrayerTime, error) {
	if err := signedIn(c); err != nil {
		return models.PrayerTime{}, err
	}
	pt, err := a.store.GetByID(ctx, id)
	if err != nil {
		return models.PrayerTime{}, err
	}
	if err := authz.Require(c, authz.Read, prayerTimeTarget(pt.Scope)); err != nil {
		return models.PrayerTime{}, err
	}
	return pt, nil
}

// ScheduleQuery narrows prayer time and donation type lists. Nil flags are
// not filtered on.
type ScheduleQuery struct {
	Scope     models.Scope
	Validated *bool
	Active    *bool
}

func (a *PrayerTimes) List(ctx context.Context, c models.Claims, q ScheduleQuery) ([]models.PrayerTime, error) {
	scope, empty, err := listScope(c, authz.KindPrayerTime, q.Scope)
	if err != nil || empty {
		return []models.PrayerTime{}, err
	}
	out, err := a.store.Find(ctx, prayertimestore.Filter{Scope: scope, Validated: q.Validated, Active: q.Active})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.PrayerTime{}
	}
	return out, nil
}

// Update edits the schedule. The parish and church an item belongs to do
// not change.
func (a *PrayerTimes) Update(ctx context.Context, c models.Claims, id string, u prayertimestore.Update) (models.PrayerTime, error) {
	if err := signedIn(c); err != nil {
		return models.PrayerTime{}, err
	}
	before, err := a.store.GetByID(ctx, id)
	if err != nil {
		return models.PrayerTime{}, err
	}
	if err := authz.Require(c, authz.Update, prayerTimeTarget(before.Scope)); err != nil {
		return models.PrayerTime{}, err
	}
	if u.Name != nil {
		name, err := requiredText("name", *u.Name)
		if err != nil {
			return models.PrayerTime{}, err
		}
		u.Name = &name
	}
	if err := cleanSchedule(u.Time, &u.Days); err != nil {
		return models.PrayerTime{}, err
	}
	rich(u.Description)

	if err := a.store.Update(ctx, id, u); err != nil {
		return models.PrayerTime{}, err
	}
	after, err := a.store.GetByID(ctx, id)
	if err != nil {
		return models.PrayerTime{}, err
	}
	record(ctx, a.audit, c, models.ActionUpdate, authz.KindPrayerTime, id, after.Name, changes(before, after))
	if after.ValidatedByParish && scheduleChanged(before, after) {
		a.notify.Send(ctx, notify.PrayerTimeSaved(after, false, c.UID))
	}
	return after, nil
}

func (a *PrayerTimes) Delete(ctx context.Context, c models.Claims, id string) error {
	if err := signedIn(c); err != nil {
		return err
	}
	pt, err := a.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.Require(c, authz.Delete, prayerTimeTarget(pt.Scope)); err != nil {
		return err
	}
	if err := a.store.Delete(ctx, id); err != nil {
		return err
	}
	record(ctx, a.audit, c, models.ActionDelete, authz.KindPrayerTime, id, pt.Name, nil)
	if pt.ValidatedByParish {
		a.notify.Send(ctx, notify.PrayerTimeDeleted(pt, c.UID))
	}
	return nil
}

// ValidateByParish marks the item as validated by its parish. Validating an
// already validated item changes nothing.
func (a *PrayerTimes) ValidateByParish(ctx context.Context, c models.Claims, id string) (models.PrayerTime, error) {
	if err := signedIn(c); err != nil {
		return models.PrayerTime{}, err
	}
	pt, err := a.store.GetByID(ctx, id)
	if err != nil {
		return models.PrayerTime{}, err
	}
	if !contentpolicy.CanValidate(c, authz.KindPrayerTime, pt.Scope) {
		return models.PrayerTime{}, apperr.Denied("%s cannot validate prayer time %q", c.Role, id)
	}
	changed, err := a.store.SetValidated(ctx, id, c.UID, time.Now().UTC())
	if err != nil {
		return models.PrayerTime{}, err
	}
	if !changed {
		return pt, nil
	}
	after, err := a.store.GetByID(ctx, id)
	if err != nil {
		return models.PrayerTime{}, err
	}
	record(ctx, a.audit, c, models.ActionValidate, authz.KindPrayerTime, id, after.Name, validatedChange())
	a.notify.Send(ctx, notify.PrayerTimeSaved(after, true, c.UID))
	return after, nil
}

func validatedChange() *models.Changes {
	return &models.Changes{
		Before: map[string]any{"validatedByParish": false},
		After:  map[string]any{"validatedByParish": true},
		Fields: []string{"validatedByParish"},
	}
}
