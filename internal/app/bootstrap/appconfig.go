// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig covers ports, TLS, log level, CORS and body limits.
// Everything specific to Dazle lives here and is passed to every lifecycle
// hook.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Bearer tokens
	JWTSecret string        // HMAC secret (must be strong in production)
	JWTIssuer string        // iss claim
	JWTTTL    time.Duration // token lifetime

	// Platform admin broker. Seeded at startup when AdminEmail is set; every
	// new broker gets a pending entry in its invites list.
	AdminEmail         string
	AdminPassword      string
	AdminLicenseNumber string

	// Login throttling: attempts per minute per IP, per 5 minutes per email
	LoginPerIP    int
	LoginPerEmail int

	// Audit destination: all, db, log or off
	AuditLog string

	// Handler database timeouts
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}
