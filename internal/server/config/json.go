package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/productkeeper/internal/flagx"
	"github.com/dmitrijs2005/productkeeper/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "30s" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. Only fields present in the file (non-zero after
// decoding) are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddrHTTP string         `json:"endpoint_addr_http"`
	DatabaseDSN      string         `json:"database_dsn"`
	SecretKey        string         `json:"secret_key"`
	S3RootUser       string         `json:"s3_root_user"`
	S3RootPassword   string         `json:"s3_root_password"`
	S3Bucket         string         `json:"s3_bucket"`
	S3Region         string         `json:"s3_region"`
	S3BaseEndpoint   string         `json:"s3_base_endpoint"`
	S3PublicBaseURL  string         `json:"s3_public_base_url"`
	Namespace        string         `json:"namespace"`
	TextGenAPIKey    string         `json:"textgen_api_key"`
	TextGenModel     string         `json:"textgen_model"`
	TextGenLanguage  string         `json:"textgen_language"`
	TextGenTimeout   timex.Duration `json:"textgen_timeout"`
	MaxUploadBytes   int64          `json:"max_upload_bytes"`
	PhotosRequired   *bool          `json:"photos_required"`
	SessionIdle      timex.Duration `json:"session_idle_timeout"`
	LogLevel         string         `json:"log_level"`
	ShutdownTimeout  timex.Duration `json:"shutdown_timeout"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path comes from the -c or -config command-line flags. If neither
// is set, no JSON file is loaded. If the file cannot be read or contains
// invalid JSON, the function panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	overlay(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	overlay(&config.DatabaseDSN, c.DatabaseDSN)
	overlay(&config.SecretKey, c.SecretKey)
	overlay(&config.S3RootUser, c.S3RootUser)
	overlay(&config.S3RootPassword, c.S3RootPassword)
	overlay(&config.S3Bucket, c.S3Bucket)
	overlay(&config.S3Region, c.S3Region)
	overlay(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	overlay(&config.S3PublicBaseURL, c.S3PublicBaseURL)
	overlay(&config.Namespace, c.Namespace)
	overlay(&config.TextGenAPIKey, c.TextGenAPIKey)
	overlay(&config.TextGenModel, c.TextGenModel)
	overlay(&config.TextGenLanguage, c.TextGenLanguage)
	overlay(&config.TextGenTimeout, c.TextGenTimeout.Duration)
	overlay(&config.MaxUploadBytes, c.MaxUploadBytes)
	overlay(&config.SessionIdleTimeout, c.SessionIdle.Duration)
	overlay(&config.LogLevel, c.LogLevel)
	overlay(&config.ShutdownTimeout, c.ShutdownTimeout.Duration)

	if c.PhotosRequired != nil {
		config.PhotosRequired = *c.PhotosRequired
	}
}

func overlay[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}
