package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/samaquete/admin/internal/app/system/auth"
	"github.com/samaquete/admin/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Scope identifiers used by the claims builders and fixtures.
const (
	Archdiocese = "DAKAR"
	DioceseA    = "DAKAR"
	DioceseB    = "THIES"
)

// SuperAdmin returns claims for a super_admin.
func SuperAdmin() models.Claims {
	return models.Claims{UID: newUID(), Email: "super@test.sn", Name: "Super Admin", Role: models.RoleSuperAdmin}
}

// ArchdioceseAdmin returns claims for an archdiocese_admin of DAKAR.
func ArchdioceseAdmin() models.Claims {
	return models.Claims{
		UID:   newUID(),
		Email: "archi@test.sn",
		Name:  "Archdiocese Admin",
		Role:  models.RoleArchdioceseAdmin,
		Scope: models.Scope{ArchdioceseID: Archdiocese, DioceseID: DioceseA},
	}
}

// DioceseAdmin returns claims for a diocese_admin of dioceseID.
func DioceseAdmin(dioceseID string) models.Claims {
	return models.Claims{
		UID:   newUID(),
		Email: "diocese@test.sn",
		Name:  "Diocese Admin",
		Role:  models.RoleDioceseAdmin,
		Scope: models.Scope{DioceseID: dioceseID},
	}
}

// ParishAdmin returns claims for a parish_admin.
func ParishAdmin(dioceseID, parishID string) models.Claims {
	return models.Claims{
		UID:   newUID(),
		Email: "parish@test.sn",
		Name:  "Parish Admin",
		Role:  models.RoleParishAdmin,
		Scope: models.Scope{DioceseID: dioceseID, ParishID: parishID},
	}
}

// ChurchAdmin returns claims for a church_admin.
func ChurchAdmin(dioceseID, parishID, churchID string) models.Claims {
	return models.Claims{
		UID:   newUID(),
		Email: "church@test.sn",
		Name:  "Church Admin",
		Role:  models.RoleChurchAdmin,
		Scope: models.Scope{DioceseID: dioceseID, ParishID: parishID, ChurchID: churchID},
	}
}

func newUID() string { return primitive.NewObjectID().Hex() }

// WithClaims adds claims to the request context, bypassing token verification.
func WithClaims(r *http.Request, c models.Claims) *http.Request {
	return auth.WithClaims(r, c)
}

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewJSONRequest creates a request whose body is v encoded as JSON.
func NewJSONRequest(t *testing.T, method, target string, v any) *http.Request {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewAuthenticatedRequest creates a JSON request with claims in context.
// body may be nil.
func NewAuthenticatedRequest(t *testing.T, method, target string, c models.Claims, body any) *http.Request {
	t.Helper()
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = NewJSONRequest(t, method, target, body)
	}
	return WithClaims(req, c)
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d (body %s)", r.Code, expected, r.Body.String())
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q", expected)
	}
}

// DecodeJSON decodes the response body into v.
func (r *ResponseRecorder) DecodeJSON(t *testing.T, v any) {
	t.Helper()
	if err := json.Unmarshal(r.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", r.Body.String(), err)
	}
}
