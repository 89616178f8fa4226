package accessor

import (
	"context"

	diocesestore "github.com/samaquete/admin/internal/app/store/dioceses"
	"github.com/samaquete/admin/internal/app/system/auditlog"
	"github.com/samaquete/admin/internal/app/system/authz"
	"github.com/samaquete/admin/internal/domain/models"
)

// Dioceses serves the fixed diocese reference data. Only super admins edit it.
type Dioceses struct {
	store *diocesestore.Store
	audit *auditlog.Logger
}

func dioceseTarget(id string) authz.Target {
	return authz.Target{Kind: authz.KindDiocese, Scope: models.Scope{DioceseID: id}}
}

func (a *Dioceses) List(ctx context.Context, c models.Claims) ([]models.Diocese, error) {
	if _, _, err := listScope(c, authz.KindDiocese, models.Scope{}); err != nil {
		return nil, err
	}
	return a.store.List(ctx)
}

func (a *Dioceses) Get(ctx context.Context, c models.Claims, id string) (models.Diocese, error) {
	if err := signedIn(c); err != nil {
		return models.Diocese{}, err
	}
	if err := authz.Require(c, authz.Read, dioceseTarget(id)); err != nil {
		return models.Diocese{}, err
	}
	return a.store.GetByID(ctx, id)
}

// Update changes the name, bishop, location or contact of a diocese.
func (a *Dioceses) Update(ctx context.Context, c models.Claims, id string, u diocesestore.Update) (models.Diocese, error) {
	if err := signedIn(c); err != nil {
		return models.Diocese{}, err
	}
	if err := authz.Require(c, authz.Update, dioceseTarget(id)); err != nil {
		return models.Diocese{}, err
	}
	before, err := a.store.GetByID(ctx, id)
	if err != nil {
		return models.Diocese{}, err
	}
	if u.Name != nil {
		name, err := requiredText("name", *u.Name)
		if err != nil {
			return models.Diocese{}, err
		}
		u.Name = &name
	}
	plain(u.Bishop)
	plain(u.Location)
	plain(u.Contact)

	if err := a.store.Update(ctx, id, u); err != nil {
		return models.Diocese{}, err
	}
	after, err := a.store.GetByID(ctx, id)
	if err != nil {
		return models.Diocese{}, err
	}
	record(ctx, a.audit, c, models.ActionUpdate, authz.KindDiocese, id, after.Name, changes(before, after))
	return after, nil
}
