package config

// Config is the root configuration structure for the application.
type Config struct {
	LogLevel      string          `yaml:"log_level" mapstructure:"log_level"`
	LogFile       string          `yaml:"log_file" mapstructure:"log_file"`
	LogMaxSizeMB  int             `yaml:"log_max_size_mb" mapstructure:"log_max_size_mb"`
	LogMaxBackups int             `yaml:"log_max_backups" mapstructure:"log_max_backups"`
	LogMaxAgeDays int             `yaml:"log_max_age_days" mapstructure:"log_max_age_days"`
	Server        ServerConfig    `yaml:"server" mapstructure:"server"`
	Documents     DocumentsConfig `yaml:"documents" mapstructure:"documents"`
	Drive         DriveConfig     `yaml:"drive" mapstructure:"drive"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	HTTPPort          int    `yaml:"http_port" mapstructure:"http_port"`
	HTTPBind          string `yaml:"http_bind" mapstructure:"http_bind"`
	ShutdownTimeout   int    `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`       // seconds
	ReadHeaderTimeout int    `yaml:"read_header_timeout" mapstructure:"read_header_timeout"` // seconds

	// UserHeader names the header an upstream auth proxy uses to pass the
	// requesting user's id. Used for log correlation only.
	UserHeader string `yaml:"user_header" mapstructure:"user_header"`
}

// DocumentsConfig holds document store configuration.
type DocumentsConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// DriveConfig holds Google Drive upload configuration.
type DriveConfig struct {
	// Endpoint overrides the Drive API base URL. Empty uses the Google default.
	Endpoint       string `yaml:"endpoint,omitempty" mapstructure:"endpoint"`
	SourceMIMEType string `yaml:"source_mime_type" mapstructure:"source_mime_type"`
	TargetMIMEType string `yaml:"target_mime_type" mapstructure:"target_mime_type"`
}
