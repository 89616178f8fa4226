package accessor

import (
	"context"
	"time"

	"github.com/samaquete/admin/internal/app/policy/contentpolicy"
	donationtypestore "github.com/samaquete/admin/internal/app/store/donationtypes"
	"github.com/samaquete/admin/internal/app/system/apperr"
	"github.com/samaquete/admin/internal/app/system/auditlog"
	"github.com/samaquete/admin/internal/app/system/authz"
	"github.com/samaquete/admin/internal/domain/models"
)

// DonationTypes guards the giving categories a parish offers. They carry the
// same parish validation overlay as prayer times.
type DonationTypes struct {
	store   *donationtypestore.Store
	parents parents
	audit   *auditlog.Logger
}

func donationTypeTarget(s models.Scope) authz.Target {
	return authz.Target{Kind: authz.KindDonationType, Scope: s}
}

func checkAmounts(amounts []int64) error {
	for _, v := range amounts {
		if v <= 0 {
			return apperr.Invalid("amounts", "les montants doivent être positifs")
		}
	}
	return nil
}

func (a *DonationTypes) Create(ctx context.Context, c models.Claims, dt models.DonationType) (models.DonationType, error) {
	if err := signedIn(c); err != nil {
		return models.DonationType{}, err
	}
	c = c.Normalize()

	name, err := requiredText("name", dt.Name)
	if err != nil {
		return models.DonationType{}, err
	}
	dt.Name = name
	if err := checkAmounts(dt.Amounts); err != nil {
		return models.DonationType{}, err
	}
	rich(&dt.Description)
	plain(&dt.Icon)

	dt.ID = ""
	dt.Scope = stampScope(c, dt.Scope)
	dt.ArchdioceseID = ""
	if dt.Scope, err = a.parents.resolve(ctx, dt.Scope, true); err != nil {
		return models.DonationType{}, err
	}
	if err := authz.Require(c, authz.Create, donationTypeTarget(dt.Scope)); err != nil {
		return models.DonationType{}, err
	}

	dt.CreatedBy = c.UID
	dt.CreatedByRole = c.Role
	dt.ValidatedByParish = contentpolicy.InitialValidated(c.Role)
	dt.ValidatedBy = ""
	dt.ValidatedAt = nil

	created, err := a.store.Create(ctx, dt)
	if err != nil {
		return models.DonationType{}, err
	}
	record(ctx, a.audit, c, models.ActionCreate, authz.KindDonationType, created.ID, created.Name, nil)
	return created, nil
}

func (a *DonationTypes) Get(ctx context.Context, c models.Claims, id string) (models.DonationType, error) {
	if err := signedIn(c); err != nil {
		return models.DonationType{}, err
	}
	dt, err := a.store.GetByID(ctx, id)
	if err != nil {
		return models.DonationType{}, err
	}
	if err := authz.Require(c, authz.Read, donationTypeTarget(dt.Scope)); err != nil {
		return models.DonationType{}, err
	}
	return dt, nil
}

// List returns the donation types visible to c. Active is ignored.
func (a *DonationTypes) List(ctx context.Context, c models.Claims, q ScheduleQuery) ([]models.DonationType, error) {
	scope, empty, err := listScope(c, authz.KindDonationType, q.Scope)
	if err != nil || empty {
		return []models.DonationType{}, err
	}
	out, err := a.store.Find(ctx, scope, q.Validated)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.DonationType{}
	}
	return out, nil
}

func (a *DonationTypes) Update(ctx context.Context, c models.Claims, id string, u donationtypestore.Update) (models.DonationType, error) {
	if err := signedIn(c); err != nil {
		return models.DonationType{}, err
	}
	before, err := a.store.GetByID(ctx, id)
	if err != nil {
		return models.DonationType{}, err
	}
	if err := authz.Require(c, authz.Update, donationTypeTarget(before.Scope)); err != nil {
		return models.DonationType{}, err
	}
	if u.Name != nil {
		name, err := requiredText("name", *u.Name)
		if err != nil {
			return models.DonationType{}, err
		}
		u.Name = &name
	}
	if err := checkAmounts(u.Amounts); err != nil {
		return models.DonationType{}, err
	}
	rich(u.Description)
	plain(u.Icon)

	if err := a.store.Update(ctx, id, u); err != nil {
		return models.DonationType{}, err
	}
	after, err := a.store.GetByID(ctx, id)
	if err != nil {
		return models.DonationType{}, err
	}
	record(ctx, a.audit, c, models.ActionUpdate, authz.KindDonationType, id, after.Name, changes(before, after))
	return after, nil
}

func (a *DonationTypes) Delete(ctx context.Context, c models.Claims, id string) error {
	if err := signedIn(c); err != nil {
		return err
	}
	dt, err := a.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.Require(c, authz.Delete, donationTypeTarget(dt.Scope)); err != nil {
		return err
	}
	if err := a.store.Delete(ctx, id); err != nil {
		return err
	}
	record(ctx, a.audit, c, models.ActionDelete, authz.KindDonationType, id, dt.Name, nil)
	return nil
}

// ValidateByParish marks the type as validated by its parish. It is idempotent.
func (a *DonationTypes) ValidateByParish(ctx context.Context, c models.Claims, id string) (models.DonationType, error) {
	if err := signedIn(c); err != nil {
		return models.DonationType{}, err
	}
	dt, err := a.store.GetByID(ctx, id)
	if err != nil {
		return models.DonationType{}, err
	}
	if !contentpolicy.CanValidate(c, authz.KindDonationType, dt.Scope) {
		return models.DonationType{}, apperr.Denied("%s cannot validate donation type %q", c.Role, id)
	}
	changed, err := a.store.SetValidated(ctx, id, c.UID, time.Now().UTC())
	if err != nil {
		return models.DonationType{}, err
	}
	if !changed {
		return dt, nil
	}
	after, err := a.store.GetByID(ctx, id)
	if err != nil {
		return models.DonationType{}, err
	}
	record(ctx, a.audit, c, models.ActionValidate, authz.KindDonationType, id, after.Name, validatedChange())
	return after, nil
}
