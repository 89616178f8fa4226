package accessor

import (
	"context"

	churchstore "github.com/samaquete/admin/internal/app/store/churches"
	diocesestore "github.com/samaquete/admin/internal/app/store/dioceses"
	parishstore "github.com/samaquete/admin/internal/app/store/parishes"
	"github.com/samaquete/admin/internal/app/system/apperr"
	"github.com/samaquete/admin/internal/app/system/auditlog"
	"github.com/samaquete/admin/internal/app/system/authz"
	"github.com/samaquete/admin/internal/app/system/inputval"
	"github.com/samaquete/admin/internal/app/system/normalize"
	"github.com/samaquete/admin/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Parishes guards parish CRUD. A parish always belongs to an existing diocese.
type Parishes struct {
	store    *parishstore.Store
	dioceses *diocesestore.Store
	churches *churchstore.Store
	audit    *auditlog.Logger
}

func parishTarget(p models.Parish) authz.Target {
	return authz.Target{Kind: authz.KindParish, Scope: models.Scope{DioceseID: p.DioceseID, ParishID: p.ID}}
}

func (a *Parishes) checkDiocese(ctx context.Context, id string) error {
	if id == "" {
		return apperr.Invalid("dioceseId", "le diocèse est requis")
	}
	ok, err := a.dioceses.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Invalid("dioceseId", "diocèse inconnu")
	}
	return nil
}

func checkEmail(p *string) error {
	if p == nil || *p == "" {
		return nil
	}
	*p = normalize.Email(*p)
	if !inputval.IsValidEmail(*p) {
		return apperr.Invalid("email", "adresse email invalide")
	}
	return nil
}

func (a *Parishes) Create(ctx context.Context, c models.Claims, p models.Parish) (models.Parish, error) {
	if err := signedIn(c); err != nil {
		return models.Parish{}, err
	}
	p.ID = ""
	p.DioceseID = normalize.DioceseID(p.DioceseID)
	if err := authz.Require(c, authz.Create, authz.Target{Kind: authz.KindParish, Scope: models.Scope{DioceseID: p.DioceseID}}); err != nil {
		return models.Parish{}, err
	}

	name, err := requiredText("name", p.Name)
	if err != nil {
		return models.Parish{}, err
	}
	p.Name = name
	if err := a.checkDiocese(ctx, p.DioceseID); err != nil {
		return models.Parish{}, err
	}
	for _, f := range []*string{&p.Address, &p.City, &p.Phone, &p.Priest} {
		plain(f)
	}
	rich(&p.Description)
	if err := checkEmail(&p.Email); err != nil {
		return models.Parish{}, err
	}

	created, err := a.store.Create(ctx, p)
	if err != nil {
		return models.Parish{}, err
	}
	record(ctx, a.audit, c, models.ActionCreate, authz.KindParish, created.ID, created.Name, nil)
	return created, nil
}

func (a *Parishes) Get(ctx context.Context, c models.Claims, id string) (models.Parish, error) {
	if err := signedIn(c); err != nil {
		return models.Parish{}, err
	}
	p, err := a.store.GetByID(ctx, id)
	if err != nil {
		return models.Parish{}, err
	}
	if err := authz.Require(c, authz.Read, parishTarget(p)); err != nil {
		return models.Parish{}, err
	}
	return p, nil
}

// List returns the parishes visible to c, narrowed by requested.
func (a *Parishes) List(ctx context.Context, c models.Claims, requested models.Scope, opts ...*options.FindOptions) ([]models.Parish, error) {
	scope, empty, err := listScope(c, authz.KindParish, requested)
	if err != nil || empty {
		return []models.Parish{}, err
	}
	return a.store.Find(ctx, scope, opts...)
}

func (a *Parishes) Count(ctx context.Context, c models.Claims, requested models.Scope) (int64, error) {
	scope, empty, err := listScope(c, authz.KindParish, requested)
	if err != nil || empty {
		return 0, err
	}
	return a.store.Count(ctx, scope)
}

// Update applies u. Moving a parish to another diocese needs create rights
// in the destination.
func (a *Parishes) Update(ctx context.Context, c models.Claims, id string, u parishstore.Update) (models.Parish, error) {
	if err := signedIn(c); err != nil {
		return models.Parish{}, err
	}
	before, err := a.store.GetByID(ctx, id)
	if err != nil {
		return models.Parish{}, err
	}
	if err := authz.Require(c, authz.Update, parishTarget(before)); err != nil {
		return models.Parish{}, err
	}

	if u.DioceseID != nil {
		d := normalize.DioceseID(*u.DioceseID)
		u.DioceseID = &d
		if d != before.DioceseID {
			if err := authz.Require(c, authz.Create, authz.Target{Kind: authz.KindParish, Scope: models.Scope{DioceseID: d}}); err != nil {
				return models.Parish{}, err
			}
			if err := a.checkDiocese(ctx, d); err != nil {
				return models.Parish{}, err
			}
		}
	}
	if u.Name != nil {
		name, err := requiredText("name", *u.Name)
		if err != nil {
			return models.Parish{}, err
		}
		u.Name = &name
	}
	for _, f := range []*string{u.Address, u.City, u.Phone, u.Priest} {
		plain(f)
	}
	rich(u.Description)
	if err := checkEmail(u.Email); err != nil {
		return models.Parish{}, err
	}

	if err := a.store.Update(ctx, id, u); err != nil {
		return models.Parish{}, err
	}
	after, err := a.store.GetByID(ctx, id)
	if err != nil {
		return models.Parish{}, err
	}
	record(ctx, a.audit, c, models.ActionUpdate, authz.KindParish, id, after.Name, changes(before, after))
	return after, nil
}

// Delete removes a parish that no church references any more.
func (a *Parishes) Delete(ctx context.Context, c models.Claims, id string) error {
	if err := signedIn(c); err != nil {
		return err
	}
	p, err := a.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.Require(c, authz.Delete, parishTarget(p)); err != nil {
		return err
	}
	n, err := a.churches.CountByParish(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperr.Invalid("id", "la paroisse a encore des églises rattachées")
	}
	if err := a.store.Delete(ctx, id); err != nil {
		return err
	}
	record(ctx, a.audit, c, models.ActionDelete, authz.KindParish, id, p.Name, nil)
	return nil
}
