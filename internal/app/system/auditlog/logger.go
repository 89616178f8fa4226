// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"reflect"
	"sort"
	"strings"
	"sync"

	activitylogstore "github.com/samaquete/admin/internal/app/store/activitylog"
	"github.com/samaquete/admin/internal/app/system/metrics"
	"github.com/samaquete/admin/internal/app/system/timeouts"
	"github.com/samaquete/admin/internal/domain/models"
	"go.uber.org/zap"
)

// Modes for the audit_log_activity setting.
const (
	ModeAll = "all" // MongoDB + zap
	ModeDB  = "db"  // MongoDB only
	ModeLog = "log" // zap only
	ModeOff = "off"
)

// ValidMode reports whether m is a known mode.
func ValidMode(m string) bool {
	switch m {
	case ModeAll, ModeDB, ModeLog, ModeOff:
		return true
	}
	return false
}

// Logger records activity logs in the background. Recording never fails the
// caller: store errors are logged and counted.
type Logger struct {
	store  *activitylogstore.Store
	zapLog *zap.Logger
	mode   string
	wg     sync.WaitGroup
}

// New creates a Logger. An empty mode means ModeAll.
func New(store *activitylogstore.Store, zapLog *zap.Logger, mode string) *Logger {
	if mode == "" {
		mode = ModeAll
	}
	return &Logger{store: store, zapLog: zapLog, mode: mode}
}

// Record stores entry asynchronously. A nil Logger is a no-op so tests can
// pass nil.
func (l *Logger) Record(ctx context.Context, entry models.ActivityLog) {
	if l == nil || l.mode == ModeOff {
		return
	}
	if ci, ok := ctx.Value(clientKey{}).(clientInfo); ok {
		if entry.IP == "" {
			entry.IP = ci.ip
		}
		if entry.UserAgent == "" {
			entry.UserAgent = ci.userAgent
		}
	}
	if l.mode == ModeAll || l.mode == ModeLog {
		l.logToZap(entry)
	}
	if l.mode != ModeAll && l.mode != ModeDB {
		return
	}

	// Detached from the request: the write outlives the response.
	bg := context.WithoutCancel(ctx)
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		wctx, cancel := context.WithTimeout(bg, timeouts.Short())
		defer cancel()
		if _, err := l.store.Insert(wctx, entry); err != nil {
			metrics.AuditDropped.Inc()
			l.zapLog.Error("failed to store activity log",
				zap.Error(err),
				zap.String("action", entry.Action),
				zap.String("entity_type", entry.EntityType),
				zap.String("entity_id", entry.EntityID),
			)
		}
	}()
}

// Wait blocks until every pending write has finished.
func (l *Logger) Wait() {
	if l == nil {
		return
	}
	l.wg.Wait()
}

func (l *Logger) logToZap(e models.ActivityLog) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("action", e.Action),
		zap.String("user_id", e.UserID),
		zap.String("ip", e.IP),
	}
	if e.UserEmail != "" {
		fields = append(fields, zap.String("user_email", e.UserEmail))
	}
	if e.EntityType != "" {
		fields = append(fields, zap.String("entity_type", e.EntityType), zap.String("entity_id", e.EntityID))
	}
	if e.Changes != nil && len(e.Changes.Fields) > 0 {
		fields = append(fields, zap.Strings("fields", e.Changes.Fields))
	}
	l.zapLog.Info(e.Description, fields...)
}

// Entry builds an ActivityLog for actor. Use FromRequest to add ip and user agent.
func Entry(actor models.Claims, action, entityType, entityID, entityName string) models.ActivityLog {
	return models.ActivityLog{
		UserID:      actor.UID,
		UserEmail:   actor.Email,
		UserRole:    actor.Role,
		Action:      action,
		Description: describe(action, entityType, entityName),
		EntityType:  entityType,
		EntityID:    entityID,
		EntityName:  entityName,
	}
}

func describe(action, entityType, name string) string {
	verb := map[string]string{
		models.ActionCreate:         "Création",
		models.ActionUpdate:         "Modification",
		models.ActionDelete:         "Suppression",
		models.ActionPublish:        "Publication",
		models.ActionValidate:       "Validation",
		models.ActionReject:         "Rejet",
		models.ActionExport:         "Export",
		models.ActionLogin:          "Connexion",
		models.ActionLogout:         "Déconnexion",
		models.ActionPasswordChange: "Changement de mot de passe",
	}[action]
	if verb == "" {
		verb = action
	}
	switch {
	case entityType == "":
		return verb
	case name == "":
		return fmt.Sprintf("%s %s", verb, entityType)
	default:
		return fmt.Sprintf("%s %s \"%s\"", verb, entityType, name)
	}
}

// FromRequest copies the client ip and user agent of r onto e.
func FromRequest(e models.ActivityLog, r *http.Request) models.ActivityLog {
	if r == nil {
		return e
	}
	e.IP = clientIP(r)
	e.UserAgent = r.UserAgent()
	return e
}

type clientKey struct{}

type clientInfo struct {
	ip        string
	userAgent string
}

// WithRequest returns ctx carrying r's client ip and user agent. Record fills
// them into entries that do not set their own.
func WithRequest(ctx context.Context, r *http.Request) context.Context {
	if r == nil {
		return ctx
	}
	return context.WithValue(ctx, clientKey{}, clientInfo{ip: clientIP(r), userAgent: r.UserAgent()})
}

// Middleware attaches the request's client info to its context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithRequest(r.Context(), r)))
	})
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// Diff compares two field maps and returns the changed keys, sorted, with
// only those keys kept in Before and After. It returns nil when nothing changed.
func Diff(before, after map[string]any) *models.Changes {
	keys := map[string]struct{}{}
	for k := range before {
		keys[k] = struct{}{}
	}
	for k := range after {
		keys[k] = struct{}{}
	}

	ch := &models.Changes{Before: map[string]any{}, After: map[string]any{}}
	for k := range keys {
		b, inB := before[k]
		a, inA := after[k]
		if inB == inA && reflect.DeepEqual(b, a) {
			continue
		}
		ch.Fields = append(ch.Fields, k)
		if inB {
			ch.Before[k] = b
		}
		if inA {
			ch.After[k] = a
		}
	}
	if len(ch.Fields) == 0 {
		return nil
	}
	sort.Strings(ch.Fields)
	return ch
}
