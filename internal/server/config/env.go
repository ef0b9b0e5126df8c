package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/productkeeper/internal/flagx"
	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

// Environment variable names. GOOGLE_AI_API_KEY is accepted as a fallback
// for TEXTGEN_API_KEY.
const (
	envHTTPAddr        = "HTTP_ADDR"
	envDatabaseDSN     = "DATABASE_DSN"
	envSecretKey       = "JWT_SECRET"
	envS3AccessKey     = "S3_ACCESS_KEY"
	envS3SecretKey     = "S3_SECRET_KEY"
	envS3Bucket        = "S3_BUCKET"
	envS3Region        = "S3_REGION"
	envS3Endpoint      = "S3_ENDPOINT"
	envS3PublicURL     = "S3_PUBLIC_URL"
	envNamespace       = "NAMESPACE"
	envTextGenAPIKey   = "TEXTGEN_API_KEY"
	envGoogleAIAPIKey  = "GOOGLE_AI_API_KEY"
	envTextGenModel    = "TEXTGEN_MODEL"
	envTextGenLanguage = "TEXTGEN_LANGUAGE"
	envTextGenTimeout  = "TEXTGEN_TIMEOUT"
	envMaxUploadBytes  = "MAX_UPLOAD_BYTES"
	envPhotosRequired  = "PHOTOS_REQUIRED"
	envSessionIdle     = "SESSION_IDLE_TIMEOUT"
	envLogLevel        = "LOG_LEVEL"
)

// loadDotenv is a seam for testing godotenv.Load.
var loadDotenv = func(path string) error {
	return godotenv.Load(path)
}

// parseEnv seeds the process environment from a dotenv file and copies the
// recognised variables into config.
//
// The dotenv path comes from -f/-env-file; without the flag ".env" in the
// working directory is tried and silently skipped when absent. An explicit
// path that cannot be read, or a malformed numeric/boolean/duration value,
// panics, the same way an unreadable JSON config does. Variables already set
// in the environment are never overridden by the file.
func parseEnv(config *Config) {
	path := flagx.EnvFileFlags()
	explicit := path != ""
	if !explicit {
		path = defaultEnvFile
	}

	if err := loadDotenv(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			panic(fmt.Errorf("load env file %s: %w", path, err))
		}
	}

	setString(&config.EndpointAddrHTTP, envHTTPAddr)
	setString(&config.DatabaseDSN, envDatabaseDSN)
	setString(&config.SecretKey, envSecretKey)
	setString(&config.S3RootUser, envS3AccessKey)
	setString(&config.S3RootPassword, envS3SecretKey)
	setString(&config.S3Bucket, envS3Bucket)
	setString(&config.S3Region, envS3Region)
	setString(&config.S3BaseEndpoint, envS3Endpoint)
	setString(&config.S3PublicBaseURL, envS3PublicURL)
	setString(&config.Namespace, envNamespace)
	setString(&config.TextGenAPIKey, envGoogleAIAPIKey)
	setString(&config.TextGenAPIKey, envTextGenAPIKey)
	setString(&config.TextGenModel, envTextGenModel)
	setString(&config.TextGenLanguage, envTextGenLanguage)
	setString(&config.LogLevel, envLogLevel)

	if v, ok := os.LookupEnv(envTextGenTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(fmt.Errorf("%s: %w", envTextGenTimeout, err))
		}
		config.TextGenTimeout = d
	}

	if v, ok := os.LookupEnv(envSessionIdle); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(fmt.Errorf("%s: %w", envSessionIdle, err))
		}
		config.SessionIdleTimeout = d
	}

	if v, ok := os.LookupEnv(envMaxUploadBytes); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			panic(fmt.Errorf("%s: %w", envMaxUploadBytes, err))
		}
		config.MaxUploadBytes = n
	}

	if v, ok := os.LookupEnv(envPhotosRequired); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(fmt.Errorf("%s: %w", envPhotosRequired, err))
		}
		config.PhotosRequired = b
	}
}

func setString(dst *string, name string) {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		*dst = v
	}
}
