package bootstrap

import (
	"testing"
	"time"

	identitystore "github.com/samaquete/admin/internal/app/store/identities"
	"github.com/samaquete/admin/internal/app/system/identity"
	"github.com/samaquete/admin/internal/domain/models"
	"github.com/samaquete/admin/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func newLocal(t *testing.T) *identity.Local {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return identity.NewLocal(identitystore.New(db), []byte("test-secret-test-secret-test-sec"), time.Hour, identity.WithBcryptCost(bcrypt.MinCost))
}

func TestEnsureSuperAdmin_CreatesNew(t *testing.T) {
	idp := newLocal(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := ensureSuperAdmin(ctx, idp, " SuperAdmin@Test.sn ", "J@ngubi26", testLogger()); err != nil {
		t.Fatalf("ensureSuperAdmin failed: %v", err)
	}

	_, claims, err := idp.SignIn(ctx, "superadmin@test.sn", "J@ngubi26")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if claims.Role != models.RoleSuperAdmin {
		t.Errorf("expected role %q, got %q", models.RoleSuperAdmin, claims.Role)
	}
	if !claims.MustChangePassword {
		t.Error("expected a created superadmin to have to change the password")
	}
}

func TestEnsureSuperAdmin_PromotesExisting(t *testing.T) {
	idp := newLocal(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rec, err := idp.CreateUser(ctx, identity.NewUser{Email: "eveque@test.sn", Password: "secret-pass"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	prev := models.Claims{Role: models.RoleDioceseAdmin, Scope: models.Scope{DioceseID: "THIES"}}
	if err := idp.SetCustomClaims(ctx, rec.UID, identity.ClaimsToMap(prev)); err != nil {
		t.Fatalf("SetCustomClaims: %v", err)
	}

	if err := ensureSuperAdmin(ctx, idp, "eveque@test.sn", "ignored", testLogger()); err != nil {
		t.Fatalf("ensureSuperAdmin failed: %v", err)
	}

	got, err := idp.GetUser(ctx, rec.UID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	c := got.Claims()
	if c.Role != models.RoleSuperAdmin {
		t.Errorf("expected role %q, got %q", models.RoleSuperAdmin, c.Role)
	}
	if c.DioceseID != "" {
		t.Errorf("expected scope cleared after promotion, got %+v", c.Scope)
	}
	if c.MustChangePassword {
		t.Error("promotion must not force a password change")
	}
	// The existing password still works.
	if _, _, err := idp.SignIn(ctx, "eveque@test.sn", "secret-pass"); err != nil {
		t.Errorf("SignIn with original password: %v", err)
	}
}

func TestEnsureSuperAdmin_AlreadySuperAdmin(t *testing.T) {
	idp := newLocal(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := ensureSuperAdmin(ctx, idp, "superadmin@test.sn", "J@ngubi26", testLogger()); err != nil {
		t.Fatalf("first ensureSuperAdmin failed: %v", err)
	}
	if err := ensureSuperAdmin(ctx, idp, "superadmin@test.sn", "J@ngubi26", testLogger()); err != nil {
		t.Fatalf("second ensureSuperAdmin failed: %v", err)
	}

	users, err := idp.ListUsers(ctx, 100)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("expected 1 identity, got %d", len(users))
	}
}

func TestEnsureSchema_SeedsDioceses(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoDatabase: db}
	for i := 0; i < 2; i++ {
		if err := EnsureSchema(ctx, nil, AppConfig{}, deps, testLogger()); err != nil {
			t.Fatalf("EnsureSchema run %d: %v", i+1, err)
		}
	}

	n, err := db.Collection("dioceses").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("count dioceses: %v", err)
	}
	if int(n) != len(models.FixedDioceses()) {
		t.Errorf("expected %d dioceses, got %d", len(models.FixedDioceses()), n)
	}
}

func validConfig() AppConfig {
	return AppConfig{
		MongoURI:           "mongodb://localhost:27017",
		IdentityProvider:   ProviderFirebase,
		FirebaseProjectID:  "samaquete",
		PublishPolicy:      "permissive",
		AuditLogActivity:   "all",
		Timezone:           "Africa/Dakar",
		LoginRatePerMinute: 10,
		LoginRateBurst:     5,
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{"valid", func(*AppConfig) {}, false},
		{"local provider", func(c *AppConfig) {
			c.IdentityProvider = ProviderLocal
			c.LocalTokenSecret = "0123456789abcdef0123456789abcdef"
		}, false},
		{"bad mongo uri", func(c *AppConfig) { c.MongoURI = "postgres://nope" }, true},
		{"unknown provider", func(c *AppConfig) { c.IdentityProvider = "ldap" }, true},
		{"firebase without project", func(c *AppConfig) { c.FirebaseProjectID = "" }, true},
		{"short local secret", func(c *AppConfig) {
			c.IdentityProvider = ProviderLocal
			c.LocalTokenSecret = "short"
		}, true},
		{"unknown policy", func(c *AppConfig) { c.PublishPolicy = "anarchy" }, true},
		{"unknown audit mode", func(c *AppConfig) { c.AuditLogActivity = "verbose" }, true},
		{"bad timezone", func(c *AppConfig) { c.Timezone = "Africa/Atlantis" }, true},
		{"zero rate", func(c *AppConfig) { c.LoginRatePerMinute = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := ValidateConfig(nil, cfg, testLogger())
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
