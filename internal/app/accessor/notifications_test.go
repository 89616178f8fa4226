package accessor_test

import (
	"slices"
	"testing"

	"github.com/samaquete/admin/internal/app/accessor"
	contentstore "github.com/samaquete/admin/internal/app/store/content"
	prayertimestore "github.com/samaquete/admin/internal/app/store/prayertimes"
	"github.com/samaquete/admin/internal/app/system/apperr"
	"github.com/samaquete/admin/internal/domain/models"
	"github.com/samaquete/admin/internal/testutil"
)

func titles(ns []models.ParishNotification) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = n.Title
	}
	return out
}

func assertNotified(t *testing.T, ns []models.ParishNotification, want int, title string) {
	t.Helper()
	if len(ns) != want {
		t.Fatalf("notifications = %d %q, want %d", len(ns), titles(ns), want)
	}
	if title != "" && !slices.Contains(titles(ns), title) {
		t.Errorf("titles %q missing %q", titles(ns), title)
	}
}

func TestContent_NotifiesParishOfLiveChanges(t *testing.T) {
	e := newEnv(t)
	s := setupParish(t, e, testutil.DioceseB)

	news, err := e.set.News.Create(e.ctx, s.padmin, models.ContentItem{Title: "Kermesse", Status: models.StatusPublished})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	ns := e.notified(t, news.ID)
	assertNotified(t, ns, 1, "📰 Nouvelle actualité")
	if n := ns[0]; n.ParishID != s.parish.ID || n.DioceseID != testutil.DioceseB || n.Type != models.NotifyNews || n.Message != "Kermesse" || n.Read {
		t.Errorf("notification = %+v", n)
	}

	// Edits nobody reads in the app stay quiet.
	cat := "Fête"
	if _, err := e.set.News.Update(e.ctx, s.padmin, news.ID, contentstore.Update{Category: &cat}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	assertNotified(t, e.notified(t, news.ID), 1, "")

	title := "Grande kermesse"
	if _, err := e.set.News.Update(e.ctx, s.padmin, news.ID, contentstore.Update{Title: &title}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	assertNotified(t, e.notified(t, news.ID), 2, "📰 Actualité mise à jour")

	if err := e.set.News.Delete(e.ctx, s.padmin, news.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	assertNotified(t, e.notified(t, news.ID), 3, "🗑️ Actualité retirée")
}

func TestContent_NotifiesWhenPendingItemGoesLive(t *testing.T) {
	e := newEnv(t)
	s := setupParish(t, e, testutil.DioceseB)

	act, err := e.set.Activities.Create(e.ctx, s.cadmin, models.ContentItem{Title: "Pèlerinage", Status: models.StatusPending})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	assertNotified(t, e.notified(t, act.ID), 0, "")

	if _, err := e.set.Activities.Validate(e.ctx, s.padmin, act.ID); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	ns := e.notified(t, act.ID)
	assertNotified(t, ns, 1, "📅 Nouvelle activité")
	if ns[0].Priority != models.PriorityHigh {
		t.Errorf("priority = %q", ns[0].Priority)
	}

	// Prayers and drafts are not announced.
	prayer, err := e.set.Prayers.Create(e.ctx, s.padmin, models.ContentItem{Title: "Angélus", Status: models.StatusPublished})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	assertNotified(t, e.notified(t, prayer.ID), 0, "")
	draft, err := e.set.News.Create(e.ctx, s.padmin, models.ContentItem{Title: "Brouillon"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := e.set.News.Delete(e.ctx, s.padmin, draft.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	assertNotified(t, e.notified(t, draft.ID), 0, "")

	// Diocese-wide items have no parish to notify.
	wide, err := e.set.News.Create(e.ctx, testutil.DioceseAdmin(testutil.DioceseB), models.ContentItem{Title: "Lettre", Status: models.StatusPublished})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	assertNotified(t, e.notified(t, wide.ID), 0, "")
}

func TestPrayerTimes_NotifyOnceValidated(t *testing.T) {
	e := newEnv(t)
	s := setupParish(t, e, testutil.DioceseB)

	fromChurch, err := e.set.PrayerTimes.Create(e.ctx, s.cadmin, models.PrayerTime{Name: "Messe", Time: "09:30", Days: []string{"sunday"}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	assertNotified(t, e.notified(t, fromChurch.ID), 0, "")
	if _, err := e.set.PrayerTimes.ValidateByParish(e.ctx, s.padmin, fromChurch.ID); err != nil {
		t.Fatalf("ValidateByParish: %v", err)
	}
	ns := e.notified(t, fromChurch.ID)
	assertNotified(t, ns, 1, "⏰ Nouvelle heure de prière")
	if ns[0].Message != "Messe à 09:30" {
		t.Errorf("message = %q", ns[0].Message)
	}

	pt, err := e.set.PrayerTimes.Create(e.ctx, s.padmin, models.PrayerTime{Name: "Vêpres", Time: "18:00"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	assertNotified(t, e.notified(t, pt.ID), 1, "⏰ Nouvelle heure de prière")

	desc := "<p>Chantées</p>"
	if _, err := e.set.PrayerTimes.Update(e.ctx, s.padmin, pt.ID, prayertimestore.Update{Description: &desc}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	assertNotified(t, e.notified(t, pt.ID), 1, "")

	at := "18:30"
	if _, err := e.set.PrayerTimes.Update(e.ctx, s.padmin, pt.ID, prayertimestore.Update{Time: &at}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	assertNotified(t, e.notified(t, pt.ID), 2, "⏰ Heure de prière modifiée")

	if err := e.set.PrayerTimes.Delete(e.ctx, s.padmin, pt.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	assertNotified(t, e.notified(t, pt.ID), 3, "🔕 Heure de prière supprimée")
}

func TestDonations_NotifyWhenCompleted(t *testing.T) {
	e := newEnv(t)
	s := setupParish(t, e, testutil.DioceseB)

	d, err := e.set.Donations.Create(e.ctx, s.padmin, models.Donation{DonorName: "Awa", Amount: 2500})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	assertNotified(t, e.notified(t, d.ID), 0, "")

	if _, err := e.set.Donations.UpdateStatus(e.ctx, s.padmin, d.ID, models.DonationCompleted); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	ns := e.notified(t, d.ID)
	assertNotified(t, ns, 1, "💝 Nouveau don reçu")
	if ns[0].Message != "Awa a fait un don de 2500 FCFA" {
		t.Errorf("message = %q", ns[0].Message)
	}

	// Completing it again is not a new gift.
	if _, err := e.set.Donations.UpdateStatus(e.ctx, s.padmin, d.ID, models.DonationCompleted); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	assertNotified(t, e.notified(t, d.ID), 1, "")
}

func TestNotifications_ListAndMarkRead(t *testing.T) {
	e := newEnv(t)
	s := setupParish(t, e, testutil.DioceseB)
	other := setupParish(t, e, testutil.DioceseA)

	for _, title := range []string{"Kermesse", "Retraite"} {
		if _, err := e.set.News.Create(e.ctx, s.padmin, models.ContentItem{Title: title, Status: models.StatusPublished}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	if _, err := e.set.News.Create(e.ctx, other.padmin, models.ContentItem{Title: "Ailleurs", Status: models.StatusPublished}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	e.notes.Wait()

	tests := []struct {
		name   string
		claims models.Claims
		q      accessor.NotificationQuery
		want   int
	}{
		{"parish admin sees own parish", s.padmin, accessor.NotificationQuery{}, 2},
		{"church admin sees its parish", s.cadmin, accessor.NotificationQuery{}, 2},
		{"diocese admin", testutil.DioceseAdmin(testutil.DioceseA), accessor.NotificationQuery{}, 1},
		{"super admin", testutil.SuperAdmin(), accessor.NotificationQuery{}, 3},
		{"filter outside scope is empty", s.padmin, accessor.NotificationQuery{Scope: models.Scope{ParishID: other.parish.ID}}, 0},
		{"type filter", testutil.SuperAdmin(), accessor.NotificationQuery{Type: models.NotifyPrayer}, 0},
		{"limit", testutil.SuperAdmin(), accessor.NotificationQuery{Limit: 1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feed, err := e.set.Notifications.List(e.ctx, tt.claims, tt.q)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(feed.Items) != tt.want {
				t.Errorf("items = %d, want %d", len(feed.Items), tt.want)
			}
		})
	}

	_, err := e.set.Notifications.List(e.ctx, s.padmin, accessor.NotificationQuery{Type: "sms"})
	assertInvalid(t, err, "type")
	_, err = e.set.Notifications.List(e.ctx, models.Claims{}, accessor.NotificationQuery{})
	assertIs(t, err, apperr.ErrUnauthenticated)

	feed, err := e.set.Notifications.List(e.ctx, s.padmin, accessor.NotificationQuery{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if feed.Unread != 2 {
		t.Fatalf("unread = %d, want 2", feed.Unread)
	}
	id := feed.Items[0].ID

	assertIs(t, e.set.Notifications.MarkRead(e.ctx, s.cadmin, id), apperr.ErrPermissionDenied)
	assertIs(t, e.set.Notifications.MarkRead(e.ctx, other.padmin, id), apperr.ErrPermissionDenied)
	assertIs(t, e.set.Notifications.MarkRead(e.ctx, s.padmin, "missing"), apperr.ErrNotFound)
	if err := e.set.Notifications.MarkRead(e.ctx, s.padmin, id); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if err := e.set.Notifications.MarkRead(e.ctx, s.padmin, id); err != nil {
		t.Fatalf("MarkRead twice: %v", err)
	}

	unread, err := e.set.Notifications.List(e.ctx, s.padmin, accessor.NotificationQuery{UnreadOnly: true})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(unread.Items) != 1 || unread.Unread != 1 {
		t.Errorf("after MarkRead: items = %d, unread = %d", len(unread.Items), unread.Unread)
	}
}
