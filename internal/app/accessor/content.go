package accessor

import (
	"context"
	"fmt"
	"time"

	"github.com/samaquete/admin/internal/app/policy/contentpolicy"
	contentstore "github.com/samaquete/admin/internal/app/store/content"
	"github.com/samaquete/admin/internal/app/system/apperr"
	"github.com/samaquete/admin/internal/app/system/auditlog"
	"github.com/samaquete/admin/internal/app/system/authz"
	"github.com/samaquete/admin/internal/app/system/htmlsanitize"
	"github.com/samaquete/admin/internal/app/system/inputval"
	"github.com/samaquete/admin/internal/app/system/notify"
	"github.com/samaquete/admin/internal/domain/models"
)

const excerptLength = 200

// Content guards one content collection (news, prayers or activities) and
// runs its status changes through the lifecycle policy.
type Content struct {
	kind    models.ContentKind
	store   *contentstore.Store
	parents parents
	audit   *auditlog.Logger
	notify  *notify.Notifier
	mode    contentpolicy.Mode
	now     func() time.Time
}

// NewContent returns the accessor for store's kind. n may be nil.
func NewContent(store *contentstore.Store, pr parents, audit *auditlog.Logger, n *notify.Notifier, mode contentpolicy.Mode) *Content {
	return &Content{
		kind:    store.Kind(),
		store:   store,
		parents: pr,
		audit:   audit,
		notify:  n,
		mode:    mode,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (a *Content) Kind() models.ContentKind { return a.kind }

func (a *Content) guardKind() authz.Kind { return authz.ContentKind(a.kind) }

// announce tells the item's parish that it went live or changed while live.
func (a *Content) announce(ctx context.Context, item models.ContentItem, isNew bool, by string) {
	item.Kind = a.kind
	if n, ok := notify.ContentPublished(item, isNew, by); ok {
		a.notify.Send(ctx, n)
	}
}

func liveTextChanged(before, after models.ContentItem) bool {
	return after.Status == models.StatusPublished &&
		(before.Title != after.Title || before.Excerpt != after.Excerpt || before.Body != after.Body)
}

func checkImageURL(p *string) error {
	if p == nil || *p == "" {
		return nil
	}
	if !inputval.IsValidHTTPURL(*p) {
		return apperr.Invalid("imageUrl", "URL d'image invalide")
	}
	return nil
}

// Create stores a new item. The scope is stamped from the author's claims,
// the body is sanitized and the initial status is checked against the
// author's publish rights. A blank status means draft.
func (a *Content) Create(ctx context.Context, c models.Claims, item models.ContentItem) (models.ContentItem, error) {
	if err := signedIn(c); err != nil {
		return models.ContentItem{}, err
	}
	c = c.Normalize()

	title, err := requiredText("title", item.Title)
	if err != nil {
		return models.ContentItem{}, err
	}
	item.Title = title
	item.Body = htmlsanitize.Sanitize(item.Body)
	if item.Excerpt == "" {
		item.Excerpt = htmlsanitize.Excerpt(item.Body, excerptLength)
	} else {
		plain(&item.Excerpt)
	}
	plain(&item.Category)
	plain(&item.Author)
	plain(&item.Location)
	if err := checkImageURL(&item.ImageURL); err != nil {
		return models.ContentItem{}, err
	}

	item.ID = ""
	item.Kind = a.kind
	item.Scope = stampScope(c, item.Scope)
	if item.Scope, err = a.parents.resolve(ctx, item.Scope, false); err != nil {
		return models.ContentItem{}, err
	}
	if err := authz.Require(c, authz.Create, contentpolicy.TargetOf(item)); err != nil {
		return models.ContentItem{}, err
	}

	status, err := contentpolicy.InitialStatus(c, item, item.Status)
	if err != nil {
		return models.ContentItem{}, err
	}
	item.Status = ""
	item.ValidatedBy = ""
	item.ValidatedAt = nil
	item.PublishedAt = nil
	item.Views = 0
	item = contentpolicy.Apply(item, status, c.UID, a.now())
	item.CreatedBy = c.UID
	item.CreatedByRole = c.Role

	created, err := a.store.Create(ctx, item)
	if err != nil {
		return models.ContentItem{}, err
	}
	record(ctx, a.audit, c, models.ActionCreate, a.guardKind(), created.ID, created.Title, nil)
	if created.Status == models.StatusPublished {
		a.announce(ctx, created, true, c.UID)
	}
	return created, nil
}

func (a *Content) Get(ctx context.Context, c models.Claims, id string) (models.ContentItem, error) {
	if err := signedIn(c); err != nil {
		return models.ContentItem{}, err
	}
	item, err := a.store.GetByID(ctx, id)
	if err != nil {
		return models.ContentItem{}, err
	}
	if err := authz.Require(c, authz.Read, contentpolicy.TargetOf(item)); err != nil {
		return models.ContentItem{}, err
	}
	return item, nil
}

// RecordView bumps the item's view counter.
func (a *Content) RecordView(ctx context.Context, c models.Claims, id string) error {
	if _, err := a.Get(ctx, c, id); err != nil {
		return err
	}
	return a.store.IncrementViews(ctx, id)
}

// ContentQuery narrows List. Limit 0 means no limit.
type ContentQuery struct {
	Scope  models.Scope
	Status models.ContentStatus
	Limit  int64
	Skip   int64
}

// List returns one page of the items visible to c, newest first, and the
// total number of matching items.
func (a *Content) List(ctx context.Context, c models.Claims, q ContentQuery) ([]models.ContentItem, int64, error) {
	scope, empty, err := listScope(c, a.guardKind(), q.Scope)
	if err != nil || empty {
		return []models.ContentItem{}, 0, err
	}
	if q.Status != "" && !q.Status.Valid() {
		return nil, 0, apperr.Invalid("status", fmt.Sprintf("statut inconnu %q", q.Status))
	}
	f := contentstore.Filter{Scope: scope, Status: q.Status, Limit: q.Limit, Skip: q.Skip}
	items, err := a.store.Find(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := a.store.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	if items == nil {
		items = []models.ContentItem{}
	}
	return items, total, nil
}

// Update edits the item's text fields. The status moves through SetStatus.
func (a *Content) Update(ctx context.Context, c models.Claims, id string, u contentstore.Update) (models.ContentItem, error) {
	if err := signedIn(c); err != nil {
		return models.ContentItem{}, err
	}
	before, err := a.store.GetByID(ctx, id)
	if err != nil {
		return models.ContentItem{}, err
	}
	if err := authz.Require(c, authz.Update, contentpolicy.TargetOf(before)); err != nil {
		return models.ContentItem{}, err
	}

	if u.Title != nil {
		title, err := requiredText("title", *u.Title)
		if err != nil {
			return models.ContentItem{}, err
		}
		u.Title = &title
	}
	rich(u.Body)
	if u.Body != nil && u.Excerpt == nil {
		ex := htmlsanitize.Excerpt(*u.Body, excerptLength)
		u.Excerpt = &ex
	} else {
		plain(u.Excerpt)
	}
	plain(u.Category)
	plain(u.Author)
	plain(u.Location)
	if err := checkImageURL(u.ImageURL); err != nil {
		return models.ContentItem{}, err
	}

	if err := a.store.Update(ctx, id, u); err != nil {
		return models.ContentItem{}, err
	}
	after, err := a.store.GetByID(ctx, id)
	if err != nil {
		return models.ContentItem{}, err
	}
	record(ctx, a.audit, c, models.ActionUpdate, a.guardKind(), id, after.Title, changes(before, after))
	if liveTextChanged(before, after) {
		a.announce(ctx, after, false, c.UID)
	}
	return after, nil
}

func (a *Content) Delete(ctx context.Context, c models.Claims, id string) error {
	if err := signedIn(c); err != nil {
		return err
	}
	item, err := a.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.Require(c, authz.Delete, contentpolicy.TargetOf(item)); err != nil {
		return err
	}
	if err := a.store.Delete(ctx, id); err != nil {
		return err
	}
	record(ctx, a.audit, c, models.ActionDelete, a.guardKind(), id, item.Title, nil)
	if item.Status == models.StatusPublished {
		item.Kind = a.kind
		if n, ok := notify.ContentWithdrawn(item, c.UID); ok {
			a.notify.Send(ctx, n)
		}
	}
	return nil
}

// SetStatus moves the item to status to. Asking for the status it already
// has changes nothing and returns the stored item.
func (a *Content) SetStatus(ctx context.Context, c models.Claims, id string, to models.ContentStatus) (models.ContentItem, error) {
	if err := signedIn(c); err != nil {
		return models.ContentItem{}, err
	}
	item, err := a.store.GetByID(ctx, id)
	if err != nil {
		return models.ContentItem{}, err
	}
	action := models.ActionUpdate
	if to == models.StatusPublished {
		action = models.ActionPublish
	}
	return a.transition(ctx, c, item, to, action, "")
}

// Validate publishes a pending item. Validating an item that is already
// published is a no-op.
func (a *Content) Validate(ctx context.Context, c models.Claims, id string) (models.ContentItem, error) {
	if err := signedIn(c); err != nil {
		return models.ContentItem{}, err
	}
	item, err := a.store.GetByID(ctx, id)
	if err != nil {
		return models.ContentItem{}, err
	}
	switch item.Status {
	case models.StatusPublished:
		if err := authz.Require(c, authz.Read, contentpolicy.TargetOf(item)); err != nil {
			return models.ContentItem{}, err
		}
		return item, nil
	case models.StatusPending:
	default:
		return models.ContentItem{}, fmt.Errorf("only pending items can be validated: %w", apperr.ErrInvalidTransition)
	}
	return a.transition(ctx, c, item, models.StatusPublished, models.ActionValidate, "")
}

// Reject sends a pending item back to draft with a reason for its author.
// Only callers who could have published it may reject it.
func (a *Content) Reject(ctx context.Context, c models.Claims, id, reason string) (models.ContentItem, error) {
	if err := signedIn(c); err != nil {
		return models.ContentItem{}, err
	}
	reason, err := requiredText("reason", reason)
	if err != nil {
		return models.ContentItem{}, err
	}
	item, err := a.store.GetByID(ctx, id)
	if err != nil {
		return models.ContentItem{}, err
	}
	if err := authz.Require(c, authz.Publish, contentpolicy.TargetOf(item)); err != nil {
		return models.ContentItem{}, err
	}
	if item.Status != models.StatusPending {
		return models.ContentItem{}, fmt.Errorf("only pending items can be rejected: %w", apperr.ErrInvalidTransition)
	}
	return a.transition(ctx, c, item, models.StatusDraft, models.ActionReject, reason)
}

func (a *Content) transition(ctx context.Context, c models.Claims, item models.ContentItem, to models.ContentStatus, action, reason string) (models.ContentItem, error) {
	if err := contentpolicy.CheckTransition(a.mode, c, item, to); err != nil {
		return models.ContentItem{}, err
	}
	if item.Status == to {
		return item, nil
	}

	from := item.Status
	next := contentpolicy.Apply(item, to, c.UID, a.now())
	if reason != "" {
		next.RejectionReason = reason
	}
	if err := a.store.SetStatus(ctx, next); err != nil {
		return models.ContentItem{}, err
	}

	ch := &models.Changes{
		Before: map[string]any{"status": string(from)},
		After:  map[string]any{"status": string(to)},
		Fields: []string{"status"},
	}
	if reason != "" {
		ch.After["rejectionReason"] = reason
		ch.Fields = append(ch.Fields, "rejectionReason")
	}
	record(ctx, a.audit, c, action, a.guardKind(), next.ID, next.Title, ch)
	if to == models.StatusPublished {
		a.announce(ctx, next, true, c.UID)
	}
	return next, nil
}
