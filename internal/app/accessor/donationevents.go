package accessor

import (
	"context"
	"time"

	donationeventstore "github.com/samaquete/admin/internal/app/store/donationevents"
	"github.com/samaquete/admin/internal/app/system/apperr"
	"github.com/samaquete/admin/internal/app/system/auditlog"
	"github.com/samaquete/admin/internal/app/system/authz"
	"github.com/samaquete/admin/internal/domain/models"
)

// DonationEvents guards fundraising events. CurrentAmount is never written
// here; it only moves when donations are recorded against the event.
type DonationEvents struct {
	store   *donationeventstore.Store
	parents parents
	audit   *auditlog.Logger
}

func eventTarget(e models.DonationEvent) authz.Target {
	return authz.Target{Kind: authz.KindDonationEvent, Scope: models.Scope{DioceseID: e.DioceseID, ParishID: e.ParishID}}
}

func checkEventDates(start time.Time, end *time.Time) error {
	if end != nil && !start.IsZero() && end.Before(start) {
		return apperr.Invalid("endDate", "la date de fin précède la date de début")
	}
	return nil
}

func (a *DonationEvents) Create(ctx context.Context, c models.Claims, e models.DonationEvent) (models.DonationEvent, error) {
	if err := signedIn(c); err != nil {
		return models.DonationEvent{}, err
	}
	c = c.Normalize()

	title, err := requiredText("title", e.Title)
	if err != nil {
		return models.DonationEvent{}, err
	}
	e.Title = title
	rich(&e.Description)
	plain(&e.Type)
	if e.Type == "" {
		e.Type = "general"
	}
	if e.TargetAmount < 0 {
		return models.DonationEvent{}, apperr.Invalid("targetAmount", "l'objectif doit être positif")
	}
	if err := checkEventDates(e.StartDate, e.EndDate); err != nil {
		return models.DonationEvent{}, err
	}

	scope := stampScope(c, models.Scope{DioceseID: e.DioceseID, ParishID: e.ParishID})
	scope.ChurchID = ""
	scope.ArchdioceseID = ""
	if scope, err = a.parents.resolve(ctx, scope, true); err != nil {
		return models.DonationEvent{}, err
	}
	e.ID = ""
	e.DioceseID, e.ParishID = scope.DioceseID, scope.ParishID
	if err := authz.Require(c, authz.Create, eventTarget(e)); err != nil {
		return models.DonationEvent{}, err
	}

	e.CurrentAmount = 0
	e.CreatedBy = c.UID
	created, err := a.store.Create(ctx, e)
	if err != nil {
		return models.DonationEvent{}, err
	}
	record(ctx, a.audit, c, models.ActionCreate, authz.KindDonationEvent, created.ID, created.Title, nil)
	return created, nil
}

func (a *DonationEvents) Get(ctx context.Context, c models.Claims, id string) (models.DonationEvent, error) {
	if err := signedIn(c); err != nil {
		return models.DonationEvent{}, err
	}
	e, err := a.store.GetByID(ctx, id)
	if err != nil {
		return models.DonationEvent{}, err
	}
	if err := authz.Require(c, authz.Read, eventTarget(e)); err != nil {
		return models.DonationEvent{}, err
	}
	return e, nil
}

// List returns the events visible to c, newest start date first.
func (a *DonationEvents) List(ctx context.Context, c models.Claims, requested models.Scope, activeOnly bool) ([]models.DonationEvent, error) {
	scope, empty, err := listScope(c, authz.KindDonationEvent, requested)
	if err != nil || empty {
		return []models.DonationEvent{}, err
	}
	out, err := a.store.Find(ctx, scope, activeOnly)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.DonationEvent{}
	}
	return out, nil
}

func (a *DonationEvents) Update(ctx context.Context, c models.Claims, id string, u donationeventstore.Update) (models.DonationEvent, error) {
	if err := signedIn(c); err != nil {
		return models.DonationEvent{}, err
	}
	before, err := a.store.GetByID(ctx, id)
	if err != nil {
		return models.DonationEvent{}, err
	}
	if err := authz.Require(c, authz.Update, eventTarget(before)); err != nil {
		return models.DonationEvent{}, err
	}
	if u.Title != nil {
		title, err := requiredText("title", *u.Title)
		if err != nil {
			return models.DonationEvent{}, err
		}
		u.Title = &title
	}
	rich(u.Description)
	plain(u.Type)
	if u.TargetAmount != nil && *u.TargetAmount < 0 {
		return models.DonationEvent{}, apperr.Invalid("targetAmount", "l'objectif doit être positif")
	}
	start, end := before.StartDate, before.EndDate
	if u.StartDate != nil {
		start = *u.StartDate
	}
	if u.EndDate != nil {
		end = u.EndDate
	}
	if err := checkEventDates(start, end); err != nil {
		return models.DonationEvent{}, err
	}

	if err := a.store.Update(ctx, id, u); err != nil {
		return models.DonationEvent{}, err
	}
	after, err := a.store.GetByID(ctx, id)
	if err != nil {
		return models.DonationEvent{}, err
	}
	record(ctx, a.audit, c, models.ActionUpdate, authz.KindDonationEvent, id, after.Title, changes(before, after))
	return after, nil
}

func (a *DonationEvents) Delete(ctx context.Context, c models.Claims, id string) error {
	if err := signedIn(c); err != nil {
		return err
	}
	e, err := a.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.Require(c, authz.Delete, eventTarget(e)); err != nil {
		return err
	}
	if err := a.store.Delete(ctx, id); err != nil {
		return err
	}
	record(ctx, a.audit, c, models.ActionDelete, authz.KindDonationEvent, id, e.Title, nil)
	return nil
}
