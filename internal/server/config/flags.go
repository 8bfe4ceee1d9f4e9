package config

import (
	"flag"
	"os"

	"github.com/namaniisc/CloudDrop/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string            HTTP bind address (e.g., ":3030")
//	-d string            PostgreSQL DSN
//	-base-url string     external base URL used in access links
//	-max-upload int      upload size ceiling, MiB
//	-blob string         payload backend: "fs" or "s3"
//	-upload-dir string   root directory of the fs backend
//	-s3-user string      S3 root user
//	-s3-password string  S3 root password
//	-s3-bucket string    S3 bucket name
//	-s3-region string    S3 region
//	-s3-endpoint string  S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-smtp-host string    SMTP relay host
//	-smtp-port int       SMTP relay port
//	-smtp-user string    SMTP username (empty disables auth)
//	-smtp-password string SMTP password
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-d", "-base-url", "-max-upload", "-blob", "-upload-dir",
		"-s3-user", "-s3-password", "-s3-bucket", "-s3-region", "-s3-endpoint",
		"-smtp-host", "-smtp-port", "-smtp-user", "-smtp-password",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.Addr, "a", config.Addr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.BaseURL, "base-url", config.BaseURL, "external base URL for access links")

	maxUploadMiB := fs.Int64("max-upload", config.MaxUploadSize>>20, "upload size ceiling (in MiB)")

	fs.StringVar(&config.BlobBackend, "blob", config.BlobBackend, "payload backend (fs or s3)")
	fs.StringVar(&config.UploadDir, "upload-dir", config.UploadDir, "fs backend root directory")

	fs.StringVar(&config.S3RootUser, "s3-user", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "s3-password", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "s3-bucket", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "s3-region", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "s3-endpoint", config.S3BaseEndpoint, "S3 base endpoint")

	fs.StringVar(&config.SMTPHost, "smtp-host", config.SMTPHost, "SMTP relay host")
	fs.IntVar(&config.SMTPPort, "smtp-port", config.SMTPPort, "SMTP relay port")
	fs.StringVar(&config.SMTPUsername, "smtp-user", config.SMTPUsername, "SMTP username")
	fs.StringVar(&config.SMTPPassword, "smtp-password", config.SMTPPassword, "SMTP password")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.MaxUploadSize = *maxUploadMiB << 20
}
