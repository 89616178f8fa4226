package accessor

import (
	"context"
	"errors"
	"fmt"

	donationeventstore "github.com/samaquete/admin/internal/app/store/donationevents"
	donationstore "github.com/samaquete/admin/internal/app/store/donations"
	"github.com/samaquete/admin/internal/app/system/apperr"
	"github.com/samaquete/admin/internal/app/system/auditlog"
	"github.com/samaquete/admin/internal/app/system/authz"
	"github.com/samaquete/admin/internal/app/system/normalize"
	"github.com/samaquete/admin/internal/app/system/notify"
	"github.com/samaquete/admin/internal/domain/models"
)

// DefaultPaymentMethod is recorded when a donation names none.
const DefaultPaymentMethod = "cash"

// Donations guards the donation records kept by the console. Recording a
// donation against an event adds its amount to the event's running total.
type Donations struct {
	store   *donationstore.Store
	events  *donationeventstore.Store
	parents parents
	audit   *auditlog.Logger
	notify  *notify.Notifier
}

func donationTarget(d models.Donation) authz.Target {
	return authz.Target{Kind: authz.KindDonation, Scope: models.Scope{DioceseID: d.DioceseID, ParishID: d.ParishID}}
}

// Create records d. When d names an event, the donation takes the event's
// parish and the event total is incremented atomically; if that increment
// fails the donation is removed again.
func (a *Donations) Create(ctx context.Context, c models.Claims, d models.Donation) (models.Donation, error) {
	if err := signedIn(c); err != nil {
		return models.Donation{}, err
	}
	c = c.Normalize()

	name, err := requiredText("donorName", d.DonorName)
	if err != nil {
		return models.Donation{}, err
	}
	d.DonorName = name
	plain(&d.DonorPhone)
	plain(&d.Type)
	plain(&d.PaymentMethod)
	plain(&d.Message)
	if err := checkEmail(&d.DonorEmail); err != nil {
		return models.Donation{}, err
	}
	if d.Amount <= 0 {
		return models.Donation{}, apperr.Invalid("amount", "le montant doit être positif")
	}
	d.Status = normalize.Status(d.Status)
	if d.Status == "" {
		d.Status = models.DonationPending
	}
	if !models.IsValidDonationStatus(d.Status) {
		return models.Donation{}, apperr.Invalid("status", fmt.Sprintf("statut inconnu %q", d.Status))
	}
	if d.PaymentMethod == "" {
		d.PaymentMethod = DefaultPaymentMethod
	}

	scope := models.Scope{DioceseID: d.DioceseID, ParishID: d.ParishID}
	if d.EventID != "" {
		ev, err := a.events.GetByID(ctx, d.EventID)
		if errors.Is(err, apperr.ErrNotFound) {
			return models.Donation{}, apperr.Invalid("eventId", "événement inconnu")
		}
		if err != nil {
			return models.Donation{}, err
		}
		if scope.ParishID, err = fill("parishId", scope.ParishID, ev.ParishID, "le don et l'événement sont dans des paroisses différentes"); err != nil {
			return models.Donation{}, err
		}
		if d.Type == "" {
			d.Type = ev.Type
		}
	}
	scope = stampScope(c, scope)
	scope.ChurchID = ""
	scope.ArchdioceseID = ""
	if scope, err = a.parents.resolve(ctx, scope, true); err != nil {
		return models.Donation{}, err
	}
	d.ID = ""
	d.DioceseID, d.ParishID = scope.DioceseID, scope.ParishID
	if err := authz.Require(c, authz.Create, donationTarget(d)); err != nil {
		return models.Donation{}, err
	}
	d.CreatedBy = c.UID

	created, err := a.store.Create(ctx, d)
	if err != nil {
		return models.Donation{}, err
	}
	if created.EventID != "" {
		if _, err := a.events.IncrementAmount(ctx, created.EventID, created.Amount); err != nil {
			if derr := a.store.Delete(context.WithoutCancel(ctx), created.ID); derr != nil {
				return models.Donation{}, fmt.Errorf("increment event (rollback failed: %v): %w", derr, err)
			}
			return models.Donation{}, err
		}
	}
	record(ctx, a.audit, c, models.ActionCreate, authz.KindDonation, created.ID, created.DonorName, nil)
	if created.Status == models.DonationCompleted {
		a.notify.Send(ctx, notify.DonationReceived(created, c.UID))
	}
	return created, nil
}

func (a *Donations) Get(ctx context.Context, c models.Claims, id string) (models.Donation, error) {
	if err := signedIn(c); err != nil {
		return models.Donation{}, err
	}
	d, err := a.store.GetByID(ctx, id)
	if err != nil {
		return models.Donation{}, err
	}
	if err := authz.Require(c, authz.Read, donationTarget(d)); err != nil {
		return models.Donation{}, err
	}
	return d, nil
}

// DonationQuery narrows List and Stats.
type DonationQuery struct {
	Scope   models.Scope
	EventID string
	Status  string
	Limit   int64
}

func (a *Donations) filter(c models.Claims, q DonationQuery) (donationstore.Filter, bool, error) {
	scope, empty, err := listScope(c, authz.KindDonation, q.Scope)
	if err != nil || empty {
		return donationstore.Filter{}, true, err
	}
	status := normalize.Status(q.Status)
	if status != "" && !models.IsValidDonationStatus(status) {
		return donationstore.Filter{}, true, apperr.Invalid("status", fmt.Sprintf("statut inconnu %q", q.Status))
	}
	return donationstore.Filter{
		DioceseID: scope.DioceseID,
		ParishID:  scope.ParishID,
		EventID:   q.EventID,
		Status:    status,
		Limit:     q.Limit,
	}, false, nil
}

func (a *Donations) List(ctx context.Context, c models.Claims, q DonationQuery) ([]models.Donation, error) {
	f, empty, err := a.filter(c, q)
	if err != nil || empty {
		return []models.Donation{}, err
	}
	out, err := a.store.Find(ctx, f)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Donation{}
	}
	return out, nil
}

// Stats counts the donations visible to c by status.
func (a *Donations) Stats(ctx context.Context, c models.Claims, q DonationQuery) (models.DonationStats, error) {
	q.Limit = 0
	f, empty, err := a.filter(c, q)
	if err != nil || empty {
		return models.DonationStats{}, err
	}
	return a.store.Stats(ctx, f)
}

// UpdateStatus changes the status of a donation record.
func (a *Donations) UpdateStatus(ctx context.Context, c models.Claims, id, status string) (models.Donation, error) {
	if err := signedIn(c); err != nil {
		return models.Donation{}, err
	}
	status = normalize.Status(status)
	if !models.IsValidDonationStatus(status) {
		return models.Donation{}, apperr.Invalid("status", fmt.Sprintf("statut inconnu %q", status))
	}
	d, err := a.store.GetByID(ctx, id)
	if err != nil {
		return models.Donation{}, err
	}
	if err := authz.Require(c, authz.Update, donationTarget(d)); err != nil {
		return models.Donation{}, err
	}
	prev, err := a.store.SetStatus(ctx, id, status)
	if err != nil {
		return models.Donation{}, err
	}
	d.Status = status
	if prev != status {
		record(ctx, a.audit, c, models.ActionUpdate, authz.KindDonation, id, d.DonorName, &models.Changes{
			Before: map[string]any{"status": prev},
			After:  map[string]any{"status": status},
			Fields: []string{"status"},
		})
		if status == models.DonationCompleted {
			a.notify.Send(ctx, notify.DonationReceived(d, c.UID))
		}
	}
	return d, nil
}

// Delete removes a donation record and takes its amount back off its event.
func (a *Donations) Delete(ctx context.Context, c models.Claims, id string) error {
	if err := signedIn(c); err != nil {
		return err
	}
	d, err := a.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.Require(c, authz.Delete, donationTarget(d)); err != nil {
		return err
	}
	if err := a.store.Delete(ctx, id); err != nil {
		return err
	}
	if d.EventID != "" {
		if _, err := a.events.IncrementAmount(ctx, d.EventID, -d.Amount); err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return err
		}
	}
	record(ctx, a.audit, c, models.ActionDelete, authz.KindDonation, id, d.DonorName, nil)
	return nil
}

// PaymentScope narrows a payment API query to what c may read. Callers
// below the archdiocese get their own diocese or parish forced in. empty
// reports a filter outside that scope.
func PaymentScope(c models.Claims, requested models.Scope) (scope models.Scope, empty bool, err error) {
	return listScope(c, authz.KindDonation, requested)
}
