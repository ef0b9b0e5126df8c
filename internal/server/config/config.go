// Package config handles configuration for the server component,
// including defaults, a dotenv/environment overlay, a JSON overlay and
// command-line flags.
package config

import "time"

// Integration names reported by Missing.
const (
	IntegrationDatabase       = "database"
	IntegrationObjectStorage  = "object_storage"
	IntegrationTextGeneration = "text_generation"
	IntegrationAuth           = "auth"
)

// Config holds runtime settings for the productkeeper server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the HTTP API.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty disables the record store.
//   - SecretKey: HMAC secret used to verify bearer JWTs (HS256).
//   - S3RootUser / S3RootPassword: static credentials for the S3-compatible backend.
//   - S3Bucket / S3Region / S3BaseEndpoint: object storage settings.
//   - S3PublicBaseURL: prefix used to build public photo URLs; defaults to
//     S3BaseEndpoint + bucket when empty.
//   - Namespace: fixed product namespace, e.g. "tvh".
//   - TextGenAPIKey / TextGenModel / TextGenLanguage / TextGenTimeout: Google GenAI settings.
//   - MaxUploadBytes: upper bound for one multipart photo upload request.
//   - PhotosRequired: save needs at least one photo; when false, photos or a
//     description are enough.
//   - SessionIdleTimeout: an open form untouched for this long is torn down;
//     zero keeps sessions until they are closed explicitly.
//   - LogLevel, ShutdownTimeout: process settings.
type Config struct {
	EndpointAddrHTTP   string
	DatabaseDSN        string
	SecretKey          string
	S3RootUser         string
	S3RootPassword     string
	S3Bucket           string
	S3Region           string
	S3BaseEndpoint     string
	S3PublicBaseURL    string
	Namespace          string
	TextGenAPIKey      string
	TextGenModel       string
	TextGenLanguage    string
	TextGenTimeout     time.Duration
	MaxUploadBytes     int64
	PhotosRequired     bool
	SessionIdleTimeout time.Duration
	LogLevel           string
	ShutdownTimeout    time.Duration
}

// LoadDefaults populates Config with development defaults. Credentials, the
// DSN and the API key stay empty so that an unconfigured deployment reports
// "not configured" instead of talking to a guessed endpoint.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.S3Bucket = "product-photos"
	c.S3Region = "us-east-1"
	c.Namespace = "tvh"
	c.TextGenModel = "gemini-2.5-flash"
	c.TextGenLanguage = "Dutch"
	c.TextGenTimeout = 30 * time.Second
	c.MaxUploadBytes = 20 << 20
	c.PhotosRequired = true
	c.SessionIdleTimeout = 30 * time.Minute
	c.LogLevel = "info"
	c.ShutdownTimeout = 10 * time.Second
}

// Missing lists the integrations whose settings are absent.
func (c *Config) Missing() []string {
	var missing []string
	if c.DatabaseDSN == "" {
		missing = append(missing, IntegrationDatabase)
	}
	if c.S3RootUser == "" || c.S3RootPassword == "" || c.S3Bucket == "" {
		missing = append(missing, IntegrationObjectStorage)
	}
	if c.TextGenAPIKey == "" {
		missing = append(missing, IntegrationTextGeneration)
	}
	if c.SecretKey == "" {
		missing = append(missing, IntegrationAuth)
	}
	return missing
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from the environment (optionally seeded from a .env file), an optional
// JSON file and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
