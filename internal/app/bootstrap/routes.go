// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	activityfeature "github.com/brooky/dazle/internal/app/features/activity"
	connectionfeature "github.com/brooky/dazle/internal/app/features/connection"
	feedbackfeature "github.com/brooky/dazle/internal/app/features/feedback"
	healthfeature "github.com/brooky/dazle/internal/app/features/health"
	listingsfeature "github.com/brooky/dazle/internal/app/features/listings"
	usersfeature "github.com/brooky/dazle/internal/app/features/users"
	verificationfeature "github.com/brooky/dazle/internal/app/features/verification"
	"github.com/brooky/dazle/internal/app/store/audit"
	feedbackstore "github.com/brooky/dazle/internal/app/store/feedback"
	listingstore "github.com/brooky/dazle/internal/app/store/listings"
	"github.com/brooky/dazle/internal/app/store/queries/connectionqueries"
	userstore "github.com/brooky/dazle/internal/app/store/users"
	verificationstore "github.com/brooky/dazle/internal/app/store/verification"
	"github.com/brooky/dazle/internal/app/system/auditlog"
	"github.com/brooky/dazle/internal/app/system/auth"
	"github.com/brooky/dazle/internal/app/system/authtoken"
	"github.com/brooky/dazle/internal/app/system/invites"
	"github.com/brooky/dazle/internal/app/system/metrics"
	"github.com/brooky/dazle/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler.
//
// Every request passes through LoadTokenUser, which puts the bearer-token
// user (if any) into the context. Feature routers decide which of their
// routes require one.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.DazleMongoDatabase

	tokens, err := authtoken.New(authtoken.Config{
		Secret: appCfg.JWTSecret,
		Issuer: appCfg.JWTIssuer,
		TTL:    appCfg.JWTTTL,
	})
	if err != nil {
		logger.Error("token service init failed", zap.Error(err))
		return nil, err
	}

	// The fetcher reloads the user on every request so deleted accounts
	// lose access immediately.
	am := auth.NewManager(tokens, userstore.NewFetcher(db), logger)

	users := userstore.New(db)
	events := audit.New(db)
	auditLog := auditlog.New(events, logger, auditlog.Uniform(appCfg.AuditLog))
	inv := invites.New(users, auditLog, logger, appCfg.AdminLicenseNumber)

	mx := metrics.New()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(mx.Middleware)
	r.Use(am.LoadTokenUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.DazleMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Prometheus scrape endpoint
	r.Handle("/metrics", mx.Handler())

	// Registration, login and profile
	usersHandler := usersfeature.NewHandler(users, inv, tokens, auditLog, logger)
	usersHandler.Limiter = ratelimit.NewLoginLimiter(ratelimit.LoginConfig{
		PerIP:    appCfg.LoginPerIP,
		PerEmail: appCfg.LoginPerEmail,
	})
	usersHandler.Metrics = mx
	// Sweeps expired windows until Shutdown.
	goBackground(usersHandler.Limiter.Run)
	r.Mount("/users", usersfeature.Routes(usersHandler, am))

	// Broker/salesperson connections
	connHandler := connectionfeature.NewHandler(connectionqueries.New(users), inv, logger)
	connHandler.Metrics = mx
	r.Mount("/connection", connectionfeature.Routes(connHandler, am))

	// Property listings
	listingsHandler := listingsfeature.NewHandler(listingstore.New(db), users, logger)
	r.Mount("/listings", listingsfeature.Routes(listingsHandler, am))

	// The caller's own audit trail
	activityHandler := activityfeature.NewHandler(events, logger)
	r.Mount("/activity", activityfeature.Routes(activityHandler, am))

	// App feedback and identity verification requests
	feedbackHandler := feedbackfeature.NewHandler(feedbackstore.New(db), logger)
	r.Mount("/feedback", feedbackfeature.Routes(feedbackHandler, am))
	verificationHandler := verificationfeature.NewHandler(verificationstore.New(db), logger)
	r.Mount("/verification", verificationfeature.Routes(verificationHandler, am))

	return r, nil
}
