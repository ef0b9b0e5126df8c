package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/productkeeper/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-u string   S3 access key
//	-p string   S3 secret key
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-w string   public base URL for stored photos
//	-n string   product namespace (e.g., "tvh")
//	-k string   text generation API key
//	-m string   text generation model
//	-t int      text generation timeout, seconds
//	-l string   log level
//	-P bool     photos required on save (use -P=false to allow text-only saves)
//	-i int      idle session timeout, seconds (0 keeps sessions until closed)
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - The timeout flag is accepted as an integer in seconds and then converted
//     to a time.Duration value.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-d", "-s", "-u", "-p", "-b", "-g", "-e", "-w", "-n", "-k", "-m", "-t", "-l", "-P", "-i",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 access key")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 secret key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3PublicBaseURL, "w", config.S3PublicBaseURL, "public base URL for photos")

	fs.StringVar(&config.Namespace, "n", config.Namespace, "product namespace")
	fs.StringVar(&config.TextGenAPIKey, "k", config.TextGenAPIKey, "text generation API key")
	fs.StringVar(&config.TextGenModel, "m", config.TextGenModel, "text generation model")
	textGenTimeout := fs.Int("t", int(config.TextGenTimeout.Seconds()), "text generation timeout (in seconds)")

	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.BoolVar(&config.PhotosRequired, "P", config.PhotosRequired, "photos required on save")
	sessionIdle := fs.Int("i", int(config.SessionIdleTimeout.Seconds()), "idle session timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TextGenTimeout = time.Duration(*textGenTimeout) * time.Second
	config.SessionIdleTimeout = time.Duration(*sessionIdle) * time.Second
}
