// Package accessor sits between the HTTP handlers and the stores.
//
// Every method takes the caller's claims, runs the authorization guard
// against the scope of the entity being touched (the stored one for
// updates, the intended one for creates), writes through the store and
// appends an activity log. Logging is best effort and never fails the call.
package accessor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/samaquete/admin/internal/app/policy/contentpolicy"
	activitylogstore "github.com/samaquete/admin/internal/app/store/activitylog"
	churchstore "github.com/samaquete/admin/internal/app/store/churches"
	contentstore "github.com/samaquete/admin/internal/app/store/content"
	diocesestore "github.com/samaquete/admin/internal/app/store/dioceses"
	donationeventstore "github.com/samaquete/admin/internal/app/store/donationevents"
	donationstore "github.com/samaquete/admin/internal/app/store/donations"
	donationtypestore "github.com/samaquete/admin/internal/app/store/donationtypes"
	notificationstore "github.com/samaquete/admin/internal/app/store/notifications"
	parishstore "github.com/samaquete/admin/internal/app/store/parishes"
	prayertimestore "github.com/samaquete/admin/internal/app/store/prayertimes"
	"github.com/samaquete/admin/internal/app/system/apperr"
	"github.com/samaquete/admin/internal/app/system/auditlog"
	"github.com/samaquete/admin/internal/app/system/authz"
	"github.com/samaquete/admin/internal/app/system/htmlsanitize"
	"github.com/samaquete/admin/internal/app/system/identity"
	"github.com/samaquete/admin/internal/app/system/normalize"
	"github.com/samaquete/admin/internal/app/system/notify"
	"github.com/samaquete/admin/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
)

// DefaultPassword is given to new admin accounts when none is configured.
const DefaultPassword = "J@ngubi26"

// Deps are the collaborators shared by the accessors.
type Deps struct {
	DB              *mongo.Database
	Identity        identity.Provider
	Audit           *auditlog.Logger
	Notify          *notify.Notifier
	Mode            contentpolicy.Mode
	DefaultPassword string
}

// Set holds one accessor per entity.
type Set struct {
	Dioceses       *Dioceses
	Parishes       *Parishes
	Churches       *Churches
	News           *Content
	Prayers        *Content
	Activities     *Content
	PrayerTimes    *PrayerTimes
	DonationTypes  *DonationTypes
	DonationEvents *DonationEvents
	Donations      *Donations
	Users          *Users
	Entities       *Entities
	Activity       *Activity
	Notifications  *Notifications
}

// NewSet builds every accessor over d.DB.
func NewSet(d Deps) *Set {
	if d.Mode == "" {
		d.Mode = contentpolicy.Permissive
	}
	if d.DefaultPassword == "" {
		d.DefaultPassword = DefaultPassword
	}

	dio := diocesestore.New(d.DB)
	par := parishstore.New(d.DB)
	chu := churchstore.New(d.DB)
	pr := parents{dioceses: dio, parishes: par, churches: chu}
	events := donationeventstore.New(d.DB)

	s := &Set{
		Dioceses:       &Dioceses{store: dio, audit: d.Audit},
		Parishes:       &Parishes{store: par, dioceses: dio, churches: chu, audit: d.Audit},
		Churches:       &Churches{store: chu, parents: pr, audit: d.Audit},
		News:           NewContent(contentstore.New(d.DB, models.KindNews), pr, d.Audit, d.Notify, d.Mode),
		Prayers:        NewContent(contentstore.New(d.DB, models.KindPrayer), pr, d.Audit, d.Notify, d.Mode),
		Activities:     NewContent(contentstore.New(d.DB, models.KindActivity), pr, d.Audit, d.Notify, d.Mode),
		PrayerTimes:    &PrayerTimes{store: prayertimestore.New(d.DB), parents: pr, audit: d.Audit, notify: d.Notify},
		DonationTypes:  &DonationTypes{store: donationtypestore.New(d.DB), parents: pr, audit: d.Audit},
		DonationEvents: &DonationEvents{store: events, parents: pr, audit: d.Audit},
		Donations:      &Donations{store: donationstore.New(d.DB), events: events, parents: pr, audit: d.Audit, notify: d.Notify},
		Users:          &Users{idp: d.Identity, parents: pr, audit: d.Audit, defaultPassword: d.DefaultPassword},
		Activity:       &Activity{store: activitylogstore.New(d.DB)},
		Notifications:  &Notifications{store: notificationstore.New(d.DB)},
	}
	s.Entities = &Entities{dioceses: s.Dioceses, parishes: s.Parishes, churches: s.Churches}
	return s
}

// Content returns the accessor for kind, or nil for an unknown kind.
func (s *Set) Content(kind models.ContentKind) *Content {
	switch kind {
	case models.KindNews:
		return s.News
	case models.KindPrayer:
		return s.Prayers
	case models.KindActivity:
		return s.Activities
	}
	return nil
}

func signedIn(c models.Claims) error {
	if c.UID == "" {
		return fmt.Errorf("accessor: %w", apperr.ErrUnauthenticated)
	}
	return nil
}

// listScope returns the scope a list of kind runs with. empty reports that
// the caller's filter conflicts with their enforced scope, in which case the
// list is empty rather than an error.
func listScope(c models.Claims, kind authz.Kind, requested models.Scope) (scope models.Scope, empty bool, err error) {
	if err := signedIn(c); err != nil {
		return models.Scope{}, true, err
	}
	enforced, ok := authz.ListScope(c, kind)
	if !ok {
		return models.Scope{}, true, apperr.Denied("%s cannot list %s", c.Role, kind)
	}
	scope, ok = authz.MergeScope(enforced, requested)
	return scope, !ok, nil
}

// stampScope fills the scope of a new item from the author's claims.
// Church and parish admins always write inside their own unit.
func stampScope(c models.Claims, s models.Scope) models.Scope {
	c = c.Normalize()
	switch c.Role {
	case models.RoleChurchAdmin:
		return models.Scope{DioceseID: c.DioceseID, ParishID: c.ParishID, ChurchID: c.ChurchID}
	case models.RoleParishAdmin:
		s.ArchdioceseID = ""
		s.DioceseID = c.DioceseID
		s.ParishID = c.ParishID
	case models.RoleDioceseAdmin:
		if s.DioceseID == "" {
			s.DioceseID = c.DioceseID
		}
	case models.RoleArchdioceseAdmin:
		if s.ArchdioceseID == "" {
			s.ArchdioceseID = c.ArchdioceseID
		}
	}
	s.DioceseID = normalize.DioceseID(s.DioceseID)
	return s
}

func record(ctx context.Context, a *auditlog.Logger, c models.Claims, action string, kind authz.Kind, id, name string, ch *models.Changes) {
	e := auditlog.Entry(c, action, string(kind), id, name)
	e.Changes = ch
	a.Record(ctx, e)
}

// snapshot flattens v into its JSON field map. updatedAt is dropped so a
// diff only lists what the caller changed.
func snapshot(v any) map[string]any {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil
	}
	delete(m, "updatedAt")
	return m
}

func changes(before, after any) *models.Changes {
	return auditlog.Diff(snapshot(before), snapshot(after))
}

// requiredText strips markup from a single-line field and rejects it when empty.
func requiredText(field, s string) (string, error) {
	s = normalize.Name(htmlsanitize.StripTags(s))
	if s == "" {
		return "", apperr.Invalid(field, "ce champ est requis")
	}
	return s, nil
}

// plain strips markup from an optional single-line field in place.
func plain(p *string) {
	if p != nil {
		*p = normalize.Name(htmlsanitize.StripTags(*p))
	}
}

// rich sanitizes an optional rich-text field in place.
func rich(p *string) {
	if p != nil {
		*p = htmlsanitize.Sanitize(*p)
	}
}
