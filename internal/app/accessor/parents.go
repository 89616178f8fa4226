package accessor

import (
	"context"
	"errors"

	churchstore "github.com/samaquete/admin/internal/app/store/churches"
	diocesestore "github.com/samaquete/admin/internal/app/store/dioceses"
	parishstore "github.com/samaquete/admin/internal/app/store/parishes"
	"github.com/samaquete/admin/internal/app/system/apperr"
	"github.com/samaquete/admin/internal/domain/models"
)

// parents checks that the diocese, parish and church an item is attached to
// exist and belong together, filling the identifiers a caller left out.
type parents struct {
	dioceses *diocesestore.Store
	parishes *parishstore.Store
	churches *churchstore.Store
}

func (p parents) resolve(ctx context.Context, s models.Scope, requireParish bool) (models.Scope, error) {
	if s.ChurchID != "" {
		ch, err := p.churches.GetByID(ctx, s.ChurchID)
		if errors.Is(err, apperr.ErrNotFound) {
			return s, apperr.Invalid("churchId", "église inconnue")
		}
		if err != nil {
			return s, err
		}
		if s.ParishID, err = fill("parishId", s.ParishID, ch.ParishID, "l'église n'appartient pas à cette paroisse"); err != nil {
			return s, err
		}
		if s.DioceseID, err = fill("dioceseId", s.DioceseID, ch.DioceseID, "l'église n'appartient pas à ce diocèse"); err != nil {
			return s, err
		}
	}

	if s.ParishID != "" {
		pa, err := p.parishes.GetByID(ctx, s.ParishID)
		if errors.Is(err, apperr.ErrNotFound) {
			return s, apperr.Invalid("parishId", "paroisse inconnue")
		}
		if err != nil {
			return s, err
		}
		if s.DioceseID, err = fill("dioceseId", s.DioceseID, pa.DioceseID, "la paroisse n'appartient pas à ce diocèse"); err != nil {
			return s, err
		}
	} else if requireParish {
		return s, apperr.Invalid("parishId", "la paroisse est requise")
	}

	if s.DioceseID != "" {
		ok, err := p.dioceses.Exists(ctx, s.DioceseID)
		if err != nil {
			return s, err
		}
		if !ok {
			return s, apperr.Invalid("dioceseId", "diocèse inconnu")
		}
	}
	return s, nil
}

// fill returns stored when given is empty, and rejects a given value that
// disagrees with the stored one.
func fill(field, given, stored, msg string) (string, error) {
	switch {
	case given == "":
		return stored, nil
	case stored == "" || given == stored:
		return given, nil
	}
	return given, apperr.Invalid(field, msg)
}
