// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"

	userstore "github.com/brooky/dazle/internal/app/store/users"
	"github.com/brooky/dazle/internal/app/system/passwords"
	"github.com/brooky/dazle/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time initialization after DB connections and schema
// setup, before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
	})
	cur := timeouts.Current()
	logger.Info("handler timeouts",
		zap.Duration("short", cur.Short),
		zap.Duration("medium", cur.Medium),
		zap.Duration("long", cur.Long))

	if appCfg.AdminEmail != "" {
		if err := ensureAdmin(ctx, deps, appCfg.AdminEmail, appCfg.AdminPassword, appCfg.AdminLicenseNumber, logger); err != nil {
			return err
		}
	}
	return nil
}

// ensureAdmin creates the platform admin broker if it does not exist yet.
// An existing admin is never modified.
func ensureAdmin(ctx context.Context, deps DBDeps, email, password, license string, logger *zap.Logger) error {
	hash, err := passwords.Hash(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()

	created, err := userstore.New(deps.DazleMongoDatabase).UpsertAdmin(ctx, email, hash, license)
	if err != nil {
		logger.Error("admin seed failed", zap.Error(err), zap.String("email", email))
		return fmt.Errorf("seed admin: %w", err)
	}
	if created {
		logger.Info("created platform admin", zap.String("email", email), zap.String("license", license))
	}
	return nil
}
