// Package notify writes parish notifications for the mobile app when
// published content, prayer times or donations change.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	notificationstore "github.com/samaquete/admin/internal/app/store/notifications"
	"github.com/samaquete/admin/internal/app/system/metrics"
	"github.com/samaquete/admin/internal/app/system/timeouts"
	"github.com/samaquete/admin/internal/domain/models"
	"go.uber.org/zap"
)

// Notifier stores notifications in the background. Sending never fails the
// caller: store errors are logged and counted.
type Notifier struct {
	store *notificationstore.Store
	log   *zap.Logger
	wg    sync.WaitGroup
}

func New(store *notificationstore.Store, logger *zap.Logger) *Notifier {
	return &Notifier{store: store, log: logger}
}

// Send stores n asynchronously. A nil Notifier is a no-op, and so is a
// notification without a parish since nobody would see it.
func (n *Notifier) Send(ctx context.Context, msg models.ParishNotification) {
	if n == nil || msg.ParishID == "" {
		return
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	bg := context.WithoutCancel(ctx)
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		wctx, cancel := context.WithTimeout(bg, timeouts.Short())
		defer cancel()
		if _, err := n.store.Insert(wctx, msg); err != nil {
			metrics.NotificationsDropped.Inc()
			n.log.Error("failed to store parish notification",
				zap.Error(err),
				zap.String("parish_id", msg.ParishID),
				zap.String("type", msg.Type),
				zap.String("related_id", msg.RelatedID),
			)
		}
	}()
}

// Wait blocks until every pending write has finished.
func (n *Notifier) Wait() {
	if n == nil {
		return
	}
	n.wg.Wait()
}

func base(s models.Scope, typ, icon, priority, relatedID, by string) models.ParishNotification {
	return models.ParishNotification{
		ParishID:  s.ParishID,
		DioceseID: s.DioceseID,
		Type:      typ,
		Icon:      icon,
		Priority:  priority,
		RelatedID: relatedID,
		CreatedBy: by,
	}
}

// PrayerTimeSaved announces a new or changed prayer time.
func PrayerTimeSaved(pt models.PrayerTime, isNew bool, by string) models.ParishNotification {
	n := base(pt.Scope, models.NotifyPrayer, "time", models.PriorityNormal, pt.ID, by)
	n.Title = "⏰ Heure de prière modifiée"
	if isNew {
		n.Title = "⏰ Nouvelle heure de prière"
	}
	n.Message = fmt.Sprintf("%s à %s", pt.Name, pt.Time)
	return n
}

// PrayerTimeDeleted announces a removed prayer time.
func PrayerTimeDeleted(pt models.PrayerTime, by string) models.ParishNotification {
	n := base(pt.Scope, models.NotifyPrayer, "time", models.PriorityLow, pt.ID, by)
	n.Title = "🔕 Heure de prière supprimée"
	n.Message = fmt.Sprintf("L'heure de prière %q a été supprimée", pt.Name)
	return n
}

// ContentPublished announces a news item or activity that just went live
// (isNew) or was edited while live. ok is false for kinds the app does not
// notify about.
func ContentPublished(item models.ContentItem, isNew bool, by string) (models.ParishNotification, bool) {
	switch item.Kind {
	case models.KindNews:
		n := base(item.Scope, models.NotifyNews, "newspaper", models.PriorityNormal, item.ID, by)
		n.Title = "📰 Actualité mise à jour"
		if isNew {
			n.Title = "📰 Nouvelle actualité"
		}
		n.Message = item.Title
		return n, true
	case models.KindActivity:
		if !isNew {
			n := base(item.Scope, models.NotifyActivity, "calendar", models.PriorityNormal, item.ID, by)
			n.Title = "📝 Activité modifiée"
			n.Message = fmt.Sprintf("L'activité %q a été mise à jour", item.Title)
			return n, true
		}
		n := base(item.Scope, models.NotifyActivity, "calendar", models.PriorityHigh, item.ID, by)
		n.Title = "📅 Nouvelle activité"
		n.Message = item.Title
		if item.Date != nil {
			n.Message = fmt.Sprintf("%s - %s", item.Title, item.Date.Format("02/01/2006"))
		}
		return n, true
	}
	return models.ParishNotification{}, false
}

// ContentWithdrawn announces that a live news item or activity was deleted.
func ContentWithdrawn(item models.ContentItem, by string) (models.ParishNotification, bool) {
	var n models.ParishNotification
	switch item.Kind {
	case models.KindNews:
		n = base(item.Scope, models.NotifyNews, "newspaper", models.PriorityLow, item.ID, by)
		n.Title = "🗑️ Actualité retirée"
		n.Message = fmt.Sprintf("L'actualité %q a été retirée", item.Title)
	case models.KindActivity:
		n = base(item.Scope, models.NotifyActivity, "calendar", models.PriorityNormal, item.ID, by)
		n.Title = "🚫 Activité annulée"
		n.Message = fmt.Sprintf("L'activité %q a été annulée", item.Title)
	default:
		return models.ParishNotification{}, false
	}
	return n, true
}

// DonationReceived thanks the parish for a completed donation.
func DonationReceived(d models.Donation, by string) models.ParishNotification {
	n := base(models.Scope{DioceseID: d.DioceseID, ParishID: d.ParishID}, models.NotifyDonation, "heart", models.PriorityLow, d.ID, by)
	n.Title = "💝 Nouveau don reçu"
	n.Message = fmt.Sprintf("%s a fait un don de %d FCFA", d.DonorName, d.Amount)
	return n
}
