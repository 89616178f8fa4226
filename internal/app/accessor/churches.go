package accessor

import (
	"context"

	churchstore "github.com/samaquete/admin/internal/app/store/churches"
	"github.com/samaquete/admin/internal/app/system/apperr"
	"github.com/samaquete/admin/internal/app/system/auditlog"
	"github.com/samaquete/admin/internal/app/system/authz"
	"github.com/samaquete/admin/internal/app/system/normalize"
	"github.com/samaquete/admin/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Churches guards church CRUD. A church always has a diocese; its parish is
// optional but, when set, must exist inside that diocese.
type Churches struct {
	store   *churchstore.Store
	parents parents
	audit   *auditlog.Logger
}

func churchTarget(ch models.Church) authz.Target {
	return authz.Target{Kind: authz.KindChurch, Scope: models.Scope{DioceseID: ch.DioceseID, ParishID: ch.ParishID, ChurchID: ch.ID}}
}

// placement validates a church's diocese and optional parish.
func (a *Churches) placement(ctx context.Context, dioceseID, parishID string) (models.Scope, error) {
	if dioceseID == "" {
		return models.Scope{}, apperr.Invalid("dioceseId", "le diocèse est requis")
	}
	return a.parents.resolve(ctx, models.Scope{DioceseID: dioceseID, ParishID: parishID}, false)
}

func (a *Churches) Create(ctx context.Context, c models.Claims, ch models.Church) (models.Church, error) {
	if err := signedIn(c); err != nil {
		return models.Church{}, err
	}
	ch.ID = ""
	ch.DioceseID = normalize.DioceseID(ch.DioceseID)
	if err := authz.Require(c, authz.Create, churchTarget(ch)); err != nil {
		return models.Church{}, err
	}

	name, err := requiredText("name", ch.Name)
	if err != nil {
		return models.Church{}, err
	}
	ch.Name = name
	if _, err := a.placement(ctx, ch.DioceseID, ch.ParishID); err != nil {
		return models.Church{}, err
	}
	plain(&ch.Address)
	plain(&ch.Phone)
	rich(&ch.Description)
	if err := checkEmail(&ch.Email); err != nil {
		return models.Church{}, err
	}

	created, err := a.store.Create(ctx, ch)
	if err != nil {
		return models.Church{}, err
	}
	record(ctx, a.audit, c, models.ActionCreate, authz.KindChurch, created.ID, created.Name, nil)
	return created, nil
}

func (a *Churches) Get(ctx context.Context, c models.Claims, id string) (models.Church, error) {
	if err := signedIn(c); err != nil {
		return models.Church{}, err
	}
	ch, err := a.store.GetByID(ctx, id)
	if err != nil {
		return models.Church{}, err
	}
	if err := authz.Require(c, authz.Read, churchTarget(ch)); err != nil {
		return models.Church{}, err
	}
	return ch, nil
}

// List returns the churches visible to c, narrowed by requested.
func (a *Churches) List(ctx context.Context, c models.Claims, requested models.Scope, opts ...*options.FindOptions) ([]models.Church, error) {
	scope, empty, err := listScope(c, authz.KindChurch, requested)
	if err != nil || empty {
		return []models.Church{}, err
	}
	return a.store.Find(ctx, scope, opts...)
}

// Update applies u. A church admin may edit their own church; moving a
// church to another parish or diocese needs create rights at the destination.
func (a *Churches) Update(ctx context.Context, c models.Claims, id string, u churchstore.Update) (models.Church, error) {
	if err := signedIn(c); err != nil {
		return models.Church{}, err
	}
	before, err := a.store.GetByID(ctx, id)
	if err != nil {
		return models.Church{}, err
	}
	if err := authz.Require(c, authz.Update, churchTarget(before)); err != nil {
		return models.Church{}, err
	}

	dest := before
	if u.DioceseID != nil {
		d := normalize.DioceseID(*u.DioceseID)
		u.DioceseID = &d
		dest.DioceseID = d
	}
	if u.ParishID != nil {
		dest.ParishID = *u.ParishID
	}
	if dest.DioceseID != before.DioceseID || dest.ParishID != before.ParishID {
		if err := authz.Require(c, authz.Create, churchTarget(dest)); err != nil {
			return models.Church{}, err
		}
		if _, err := a.placement(ctx, dest.DioceseID, dest.ParishID); err != nil {
			return models.Church{}, err
		}
	}

	if u.Name != nil {
		name, err := requiredText("name", *u.Name)
		if err != nil {
			return models.Church{}, err
		}
		u.Name = &name
	}
	plain(u.Address)
	plain(u.Phone)
	rich(u.Description)
	if err := checkEmail(u.Email); err != nil {
		return models.Church{}, err
	}

	if err := a.store.Update(ctx, id, u); err != nil {
		return models.Church{}, err
	}
	after, err := a.store.GetByID(ctx, id)
	if err != nil {
		return models.Church{}, err
	}
	record(ctx, a.audit, c, models.ActionUpdate, authz.KindChurch, id, after.Name, changes(before, after))
	return after, nil
}

func (a *Churches) Delete(ctx context.Context, c models.Claims, id string) error {
	if err := signedIn(c); err != nil {
		return err
	}
	ch, err := a.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.Require(c, authz.Delete, churchTarget(ch)); err != nil {
		return err
	}
	if err := a.store.Delete(ctx, id); err != nil {
		return err
	}
	record(ctx, a.audit, c, models.ActionDelete, authz.KindChurch, id, ch.Name, nil)
	return nil
}
