package config

import "github.com/spf13/viper"

// Default configuration values.
const (
	DefaultLogLevel      = "info"
	DefaultLogFile       = "~/.config/docexport/docexport.log"
	DefaultLogMaxSizeMB  = 50
	DefaultLogMaxBackups = 3
	DefaultLogMaxAgeDays = 28

	// Server configuration defaults.
	DefaultServerHTTPPort          = 7700
	DefaultServerHTTPBind          = "127.0.0.1"
	DefaultServerShutdownTimeout   = 30 // seconds
	DefaultServerReadHeaderTimeout = 10 // seconds
	DefaultServerUserHeader        = "X-User-Id"

	DefaultDocumentsDir = "~/.config/docexport/documents"

	// Drive defaults. The upload is declared as a legacy Excel binary and
	// converted by Drive into a native spreadsheet.
	DefaultDriveSourceMIMEType = "application/vnd.ms-excel"
	DefaultDriveTargetMIMEType = "application/vnd.google-apps.spreadsheet"
)

// NewDefaultConfig returns a Config populated with default values.
func NewDefaultConfig() Config {
	return Config{
		LogLevel:      DefaultLogLevel,
		LogFile:       DefaultLogFile,
		LogMaxSizeMB:  DefaultLogMaxSizeMB,
		LogMaxBackups: DefaultLogMaxBackups,
		LogMaxAgeDays: DefaultLogMaxAgeDays,
		Server: ServerConfig{
			HTTPPort:          DefaultServerHTTPPort,
			HTTPBind:          DefaultServerHTTPBind,
			ShutdownTimeout:   DefaultServerShutdownTimeout,
			ReadHeaderTimeout: DefaultServerReadHeaderTimeout,
			UserHeader:        DefaultServerUserHeader,
		},
		Documents: DocumentsConfig{
			Dir: DefaultDocumentsDir,
		},
		Drive: DriveConfig{
			SourceMIMEType: DefaultDriveSourceMIMEType,
			TargetMIMEType: DefaultDriveTargetMIMEType,
		},
	}
}

// setViperDefaults registers all default configuration values with a viper instance.
func setViperDefaults(v *viper.Viper) {
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_file", DefaultLogFile)
	v.SetDefault("log_max_size_mb", DefaultLogMaxSizeMB)
	v.SetDefault("log_max_backups", DefaultLogMaxBackups)
	v.SetDefault("log_max_age_days", DefaultLogMaxAgeDays)

	// Server defaults
	v.SetDefault("server.http_port", DefaultServerHTTPPort)
	v.SetDefault("server.http_bind", DefaultServerHTTPBind)
	v.SetDefault("server.shutdown_timeout", DefaultServerShutdownTimeout)
	v.SetDefault("server.read_header_timeout", DefaultServerReadHeaderTimeout)
	v.SetDefault("server.user_header", DefaultServerUserHeader)

	v.SetDefault("documents.dir", DefaultDocumentsDir)

	// Drive defaults
	v.SetDefault("drive.endpoint", "")
	v.SetDefault("drive.source_mime_type", DefaultDriveSourceMIMEType)
	v.SetDefault("drive.target_mime_type", DefaultDriveTargetMIMEType)
}
