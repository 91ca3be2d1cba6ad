package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/rfile/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   TLS bind address (e.g., "127.0.0.1:7878")
//	-crt string TLS certificate chain file (PEM)
//	-key string TLS private key file (PEM)
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      session token validity, hours
//	-k string   storage backend: "local" or "s3"
//	-dir string block directory for the local backend
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:],
		[]string{"-a", "-crt", "-key", "-d", "-s", "-t", "-k", "-dir", "-u", "-p", "-b", "-g", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.CertFile, "crt", config.CertFile, "TLS certificate file")
	fs.StringVar(&config.PrivateKeyFile, "key", config.PrivateKeyFile, "TLS private key file")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	tokenValidity := fs.Int("t", int(config.TokenValidityDuration.Hours()), "token_validity_duration (in hours)")

	fs.StringVar(&config.StorageBackend, "k", config.StorageBackend, "storage backend (local|s3)")
	fs.StringVar(&config.StorageDir, "dir", config.StorageDir, "local block storage directory")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TokenValidityDuration = time.Duration(*tokenValidity) * time.Hour
}
