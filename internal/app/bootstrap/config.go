// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/brooky/dazle/internal/app/system/auditlog"
	"github.com/brooky/dazle/internal/app/system/authtoken"
	"github.com/brooky/dazle/internal/app/system/passwords"
	"github.com/brooky/dazle/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/toolkit/validate"
	"go.uber.org/zap"
)

const defaultJWTSecret = "dev-only-change-me-please-0123456789ABCDEF"

// appConfigKeys defines the configuration keys for Dazle.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: DAZLE_MONGO_URI, DAZLE_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "dazle", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Bearer tokens
	{Name: "jwt_secret", Default: defaultJWTSecret, Desc: "HMAC secret for bearer tokens (must be strong in production)"},
	{Name: "jwt_issuer", Default: "dazle", Desc: "Token issuer"},
	{Name: "jwt_ttl", Default: "720h", Desc: "Token lifetime (e.g., 720h, 24h)"},

	// Platform admin
	{Name: "admin_email", Default: "", Desc: "Email of the platform admin broker (created on startup)"},
	{Name: "admin_password", Default: "", Desc: "Password for a newly created platform admin"},
	{Name: "admin_license_number", Default: "1234567890", Desc: "Broker license number of the platform admin"},

	// Login throttling
	{Name: "login_per_ip", Default: 10, Desc: "Login attempts allowed per IP per minute"},
	{Name: "login_per_email", Default: 5, Desc: "Login attempts allowed per email per 5 minutes"},

	// Audit logging
	{Name: "audit_log", Default: "all", Desc: "Audit event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Handler timeouts
	{Name: "timeout_short", Default: "5s", Desc: "Timeout for single-document reads"},
	{Name: "timeout_medium", Default: "10s", Desc: "Timeout for invite toggles and listing reads"},
	{Name: "timeout_long", Default: "30s", Desc: "Timeout for connection reads and registration"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// Precedence is flags > env (WAFFLE_* for core, DAZLE_* for app) > files >
// defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "DAZLE", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret: appValues.String("jwt_secret"),
		JWTIssuer: appValues.String("jwt_issuer"),
		JWTTTL:    appValues.Duration("jwt_ttl", authtoken.DefaultTTL),

		AdminEmail:         appValues.String("admin_email"),
		AdminPassword:      appValues.String("admin_password"),
		AdminLicenseNumber: appValues.String("admin_license_number"),

		LoginPerIP:    appValues.Int("login_per_ip"),
		LoginPerEmail: appValues.Int("login_per_email"),

		AuditLog: appValues.String("audit_log"),

		TimeoutShort:  appValues.Duration("timeout_short", timeouts.DefaultShort),
		TimeoutMedium: appValues.Duration("timeout_medium", timeouts.DefaultMedium),
		TimeoutLong:   appValues.Duration("timeout_long", timeouts.DefaultLong),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.MongoDatabase == "" {
		return fmt.Errorf("mongo_database must be set")
	}
	if appCfg.JWTSecret == "" {
		return fmt.Errorf("jwt_secret must be set")
	}
	if appCfg.JWTTTL <= 0 {
		return fmt.Errorf("jwt_ttl must be positive, got %s", appCfg.JWTTTL)
	}

	switch appCfg.AuditLog {
	case auditlog.DestAll, auditlog.DestDB, auditlog.DestLog, auditlog.DestOff:
	default:
		return fmt.Errorf("audit_log must be one of all, db, log, off; got %q", appCfg.AuditLog)
	}

	if appCfg.AdminEmail != "" {
		if !validate.SimpleEmailValid(appCfg.AdminEmail) {
			return fmt.Errorf("admin_email %q is not a valid email address", appCfg.AdminEmail)
		}
		if len(appCfg.AdminPassword) < passwords.MinLength {
			return fmt.Errorf("admin_password must be at least %d characters when admin_email is set", passwords.MinLength)
		}
		if appCfg.AdminLicenseNumber == "" {
			return fmt.Errorf("admin_license_number must be set when admin_email is set")
		}
	}

	if coreCfg != nil && coreCfg.Env == "prod" && appCfg.JWTSecret == defaultJWTSecret {
		logger.Warn("jwt_secret is the development default; set DAZLE_JWT_SECRET in production")
	}

	for _, d := range []time.Duration{appCfg.TimeoutShort, appCfg.TimeoutMedium, appCfg.TimeoutLong} {
		if d < 0 {
			return fmt.Errorf("timeouts must not be negative")
		}
	}
	return nil
}
