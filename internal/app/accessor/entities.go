package accessor

import (
	"context"
	"fmt"
	"strings"

	churchstore "github.com/samaquete/admin/internal/app/store/churches"
	diocesestore "github.com/samaquete/admin/internal/app/store/dioceses"
	parishstore "github.com/samaquete/admin/internal/app/store/parishes"
	"github.com/samaquete/admin/internal/app/system/apperr"
	"github.com/samaquete/admin/internal/domain/models"
)

// Entities renames organizational units by type. Document ids are fixed
// once created, so a request that would change one is refused.
type Entities struct {
	dioceses *Dioceses
	parishes *Parishes
	churches *Churches
}

// Renamed is the result of a rename.
type Renamed struct {
	EntityType string `json:"entityType"`
	ID         string `json:"id"`
	Name       string `json:"name"`
}

func (a *Entities) Rename(ctx context.Context, c models.Claims, entityType, id, newName, newID string) (Renamed, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Renamed{}, apperr.Invalid("id", "ce champ est requis")
	}
	if newID = strings.TrimSpace(newID); newID != "" && newID != id {
		return Renamed{}, apperr.Invalid("newId", "l'identifiant d'une entité ne peut pas être modifié")
	}
	name, err := requiredText("newName", newName)
	if err != nil {
		return Renamed{}, err
	}

	switch strings.ToLower(strings.TrimSpace(entityType)) {
	case EntityDiocese, EntityArchdiocese:
		d, err := a.dioceses.Update(ctx, c, strings.ToUpper(id), diocesestore.Update{Name: &name})
		if err != nil {
			return Renamed{}, err
		}
		return Renamed{EntityType: EntityDiocese, ID: d.ID, Name: d.Name}, nil
	case EntityParish:
		p, err := a.parishes.Update(ctx, c, id, parishstore.Update{Name: &name})
		if err != nil {
			return Renamed{}, err
		}
		return Renamed{EntityType: EntityParish, ID: p.ID, Name: p.Name}, nil
	case EntityChurch:
		ch, err := a.churches.Update(ctx, c, id, churchstore.Update{Name: &name})
		if err != nil {
			return Renamed{}, err
		}
		return Renamed{EntityType: EntityChurch, ID: ch.ID, Name: ch.Name}, nil
	}
	return Renamed{}, apperr.Invalid("entityType", fmt.Sprintf("type d'entité inconnu %q", entityType))
}
