package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/namaniisc/CloudDrop/internal/flagx"
	"github.com/namaniisc/CloudDrop/internal/timex"
)

// JsonConfig is an intermediate DTO used only for reading JSON configuration
// files. It uses timex.Duration for interval fields, which allows parsing
// both string values such as "10s" and integer nanoseconds. After
// unmarshalling, its fields are copied into the runtime Config struct.
type JsonConfig struct {
	Addr            string         `json:"addr"`
	BaseURL         string         `json:"base_url"`
	DatabaseDSN     string         `json:"database_dsn"`
	MaxUploadSize   int64          `json:"max_upload_size"`
	ShutdownTimeout timex.Duration `json:"shutdown_timeout"`
	BlobBackend     string         `json:"blob_backend"`
	UploadDir       string         `json:"upload_dir"`
	S3RootUser      string         `json:"s3_root_user"`
	S3RootPassword  string         `json:"s3_root_password"`
	S3Bucket        string         `json:"s3_bucket"`
	S3Region        string         `json:"s3_region"`
	S3BaseEndpoint  string         `json:"s3_base_endpoint"`
	SMTPHost        string         `json:"smtp_host"`
	SMTPPort        int            `json:"smtp_port"`
	SMTPUsername    string         `json:"smtp_username"`
	SMTPPassword    string         `json:"smtp_password"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path comes from the -c or -config command-line flags; when
// neither is set, no JSON file is loaded. The DTO is pre-seeded from the
// current Config, so keys absent from the file keep their defaults. If the
// file cannot be read or contains invalid JSON, the function panics.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{
		Addr:            config.Addr,
		BaseURL:         config.BaseURL,
		DatabaseDSN:     config.DatabaseDSN,
		MaxUploadSize:   config.MaxUploadSize,
		ShutdownTimeout: timex.Duration{Duration: config.ShutdownTimeout},
		BlobBackend:     config.BlobBackend,
		UploadDir:       config.UploadDir,
		S3RootUser:      config.S3RootUser,
		S3RootPassword:  config.S3RootPassword,
		S3Bucket:        config.S3Bucket,
		S3Region:        config.S3Region,
		S3BaseEndpoint:  config.S3BaseEndpoint,
		SMTPHost:        config.SMTPHost,
		SMTPPort:        config.SMTPPort,
		SMTPUsername:    config.SMTPUsername,
		SMTPPassword:    config.SMTPPassword,
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.Addr = c.Addr
	config.BaseURL = c.BaseURL
	config.DatabaseDSN = c.DatabaseDSN
	config.MaxUploadSize = c.MaxUploadSize
	config.ShutdownTimeout = time.Duration(c.ShutdownTimeout.Duration)
	config.BlobBackend = c.BlobBackend
	config.UploadDir = c.UploadDir
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.SMTPHost = c.SMTPHost
	config.SMTPPort = c.SMTPPort
	config.SMTPUsername = c.SMTPUsername
	config.SMTPPassword = c.SMTPPassword
}
