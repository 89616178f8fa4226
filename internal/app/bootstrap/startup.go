// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/waffle/config"
	"github.com/samaquete/admin/internal/app/system/identity"
	"github.com/samaquete/admin/internal/app/system/metrics"
	"github.com/samaquete/admin/internal/app/system/timeouts"
	"github.com/samaquete/admin/internal/domain/models"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	metrics.Init()
	// Payment proxy calls and user listings share the Long deadline.
	timeouts.Configure(timeouts.Config{Long: appCfg.PaymentAPITimeout})

	if appCfg.SuperAdminEmail != "" {
		if err := ensureSuperAdmin(ctx, deps.Identity, appCfg.SuperAdminEmail, appCfg.DefaultPassword, logger); err != nil {
			return err
		}
	}
	return nil
}

// ensureSuperAdmin gives the identity with email the super_admin role,
// creating it with password (and the must-change flag) when it is missing.
func ensureSuperAdmin(ctx context.Context, idp identity.Provider, email, password string, logger *zap.Logger) error {
	email = strings.ToLower(strings.TrimSpace(email))

	rec, err := idp.GetUserByEmail(ctx, email)
	created := false
	switch {
	case errors.Is(err, identity.ErrUserNotFound):
		rec, err = idp.CreateUser(ctx, identity.NewUser{Email: email, Password: password, DisplayName: "Super Admin"})
		if err != nil {
			return fmt.Errorf("create superadmin: %w", err)
		}
		created = true
	case err != nil:
		return fmt.Errorf("lookup superadmin: %w", err)
	}

	current := rec.Claims()
	if !created && current.Role == models.RoleSuperAdmin {
		logger.Debug("superadmin already configured", zap.String("email", email))
		return nil
	}

	claims := models.Claims{Role: models.RoleSuperAdmin, MustChangePassword: created || current.MustChangePassword}
	if err := idp.SetCustomClaims(ctx, rec.UID, identity.ClaimsToMap(claims)); err != nil {
		return fmt.Errorf("set superadmin claims: %w", err)
	}
	if created {
		logger.Info("created superadmin", zap.String("email", email), zap.String("uid", rec.UID))
	} else {
		logger.Info("promoted superadmin", zap.String("email", email), zap.String("uid", rec.UID), zap.String("previous_role", current.Role))
	}
	return nil
}
