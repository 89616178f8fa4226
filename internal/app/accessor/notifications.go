package accessor

import (
	"context"
	"fmt"

	notificationstore "github.com/samaquete/admin/internal/app/store/notifications"
	"github.com/samaquete/admin/internal/app/system/apperr"
	"github.com/samaquete/admin/internal/app/system/authz"
	"github.com/samaquete/admin/internal/domain/models"
)

const maxNotificationLimit = 200

// Notifications reads the parish notifications written by the other
// accessors. Church admins see their parish's feed but cannot mark it read.
type Notifications struct {
	store *notificationstore.Store
}

func notificationTarget(n models.ParishNotification) authz.Target {
	return authz.Target{Kind: authz.KindNotification, Scope: models.Scope{DioceseID: n.DioceseID, ParishID: n.ParishID}}
}

// NotificationQuery narrows List. Limit 0 means the store default.
type NotificationQuery struct {
	Scope      models.Scope
	Type       string
	UnreadOnly bool
	Limit      int64
}

// NotificationFeed is one page of notifications plus the unread total for
// the same scope.
type NotificationFeed struct {
	Items  []models.ParishNotification `json:"items"`
	Unread int64                       `json:"unread"`
}

func (a *Notifications) List(ctx context.Context, c models.Claims, q NotificationQuery) (NotificationFeed, error) {
	empty := NotificationFeed{Items: []models.ParishNotification{}}
	scope, none, err := listScope(c, authz.KindNotification, q.Scope)
	if err != nil || none {
		return empty, err
	}
	switch q.Type {
	case "", models.NotifyPrayer, models.NotifyNews, models.NotifyActivity, models.NotifyDonation, models.NotifyGeneral:
	default:
		return NotificationFeed{}, apperr.Invalid("type", fmt.Sprintf("type inconnu %q", q.Type))
	}
	if q.Limit < 0 || q.Limit > maxNotificationLimit {
		return NotificationFeed{}, apperr.Invalid("limit", fmt.Sprintf("la limite doit être comprise entre 0 et %d", maxNotificationLimit))
	}

	f := notificationstore.Filter{Scope: scope, Type: q.Type, UnreadOnly: q.UnreadOnly, Limit: q.Limit}
	items, err := a.store.Find(ctx, f)
	if err != nil {
		return NotificationFeed{}, err
	}
	unread, err := a.store.CountUnread(ctx, f)
	if err != nil {
		return NotificationFeed{}, err
	}
	if items == nil {
		items = []models.ParishNotification{}
	}
	return NotificationFeed{Items: items, Unread: unread}, nil
}

// MarkRead flags one notification as read for its parish.
func (a *Notifications) MarkRead(ctx context.Context, c models.Claims, id string) error {
	if err := signedIn(c); err != nil {
		return err
	}
	n, err := a.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.Require(c, authz.Update, notificationTarget(n)); err != nil {
		return err
	}
	return a.store.MarkRead(ctx, id)
}
