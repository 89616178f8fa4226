// internal/app/policy/contentpolicy/contentpolicy.go
package contentpolicy

import (
	"fmt"
	"strings"
	"time"

	"github.com/samaquete/admin/internal/app/system/apperr"
	"github.com/samaquete/admin/internal/app/system/authz"
	"github.com/samaquete/admin/internal/domain/models"
)

// Mode selects how much authority publishing requires.
type Mode string

const (
	// Permissive lets any writer with publish authority over the item's scope
	// publish directly, including the draft→published toggle.
	Permissive Mode = "permissive"
	// Strict only publishes from pending, and never by the item's own author.
	Strict Mode = "strict"
)

// ParseMode maps a config value to a Mode. Blank means Permissive.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(Permissive):
		return Permissive, nil
	case string(Strict):
		return Strict, nil
	}
	return "", fmt.Errorf("unknown publish policy %q (want permissive or strict)", s)
}

// TargetOf builds the guard target for a content item.
func TargetOf(item models.ContentItem) authz.Target {
	return authz.Target{Kind: authz.ContentKind(item.Kind), Scope: item.Scope}
}

// InitialStatus decides the status a new item is stored with.
// Blank becomes draft; asking for published requires publish authority.
func InitialStatus(c models.Claims, item models.ContentItem, requested models.ContentStatus) (models.ContentStatus, error) {
	if requested == "" {
		return models.StatusDraft, nil
	}
	if !requested.Valid() {
		return "", apperr.Invalid("status", fmt.Sprintf("must be draft, pending or published, got %q", requested))
	}
	if requested == models.StatusPublished {
		if err := authz.Require(c, authz.Publish, TargetOf(item)); err != nil {
			return "", err
		}
	}
	return requested, nil
}

// CheckTransition validates moving item to status `to` on behalf of c.
// The caller needs update rights on the item even for a same-state move,
// which then returns nil and is treated as a no-op.
func CheckTransition(mode Mode, c models.Claims, item models.ContentItem, to models.ContentStatus) error {
	if !to.Valid() {
		return apperr.Invalid("status", fmt.Sprintf("must be draft, pending or published, got %q", to))
	}
	tgt := TargetOf(item)
	if err := authz.Require(c, authz.Update, tgt); err != nil {
		return err
	}

	from := item.Status
	if from == "" {
		from = models.StatusDraft
	}
	if from == to {
		return nil
	}

	switch {
	case from == models.StatusDraft && to == models.StatusPending:
		return nil
	case from == models.StatusPublished && to == models.StatusDraft:
		return nil
	case from == models.StatusPending && to == models.StatusDraft:
		return nil
	case from == models.StatusPending && to == models.StatusPublished:
		return checkPublish(mode, c, item, tgt)
	case from == models.StatusDraft && to == models.StatusPublished:
		if mode == Strict {
			return fmt.Errorf("%s → %s requires review: %w", from, to, apperr.ErrInvalidTransition)
		}
		return checkPublish(mode, c, item, tgt)
	}
	return fmt.Errorf("%s → %s: %w", from, to, apperr.ErrInvalidTransition)
}

func checkPublish(mode Mode, c models.Claims, item models.ContentItem, tgt authz.Target) error {
	if err := authz.Require(c, authz.Publish, tgt); err != nil {
		return err
	}
	if mode == Strict && item.CreatedBy != "" && item.CreatedBy == c.UID {
		return apperr.Denied("author cannot publish their own %s", item.Kind)
	}
	return nil
}

// Apply stamps item with the new status. It does not check anything; call
// CheckTransition first.
func Apply(item models.ContentItem, to models.ContentStatus, actor string, now time.Time) models.ContentItem {
	from := item.Status
	item.Status = to
	item.UpdatedAt = now

	switch to {
	case models.StatusPublished:
		item.Published = true
		if from != models.StatusPublished {
			item.PublishedAt = &now
			item.ValidatedBy = actor
			item.ValidatedAt = &now
		}
		item.RejectionReason = ""
	case models.StatusPending:
		item.Published = false
		item.RejectionReason = ""
	case models.StatusDraft:
		item.Published = false
	}
	return item
}
