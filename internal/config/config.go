package config

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

// Config holds the configuration for the Sprintline server and its dependencies.
type Config struct {
	// Listen is the address the Sprintline server will listen on.
	Listen string `yaml:"listen" mapstructure:"listen"`
	// ServerURL is the base URL of the Sprintline server.
	ServerURL string `yaml:"server_url" mapstructure:"server_url"`
	// SessionKey is the key used to encrypt session data.
	SessionKey string `yaml:"session_key" mapstructure:"session_key"`
	// SessionMaxAge is the maximum age of a session in seconds.
	SessionMaxAge int `yaml:"session_max_age" mapstructure:"session_max_age"`
	// LogLevel is the log level of the server (debug, info, warn, error).
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
	// Database holds the database configuration.
	Database *DatabaseConfig `yaml:"database" mapstructure:"database"`
	// Uploads holds the video upload configuration.
	Uploads *UploadConfig `yaml:"uploads" mapstructure:"uploads"`
	// Analysis holds the configuration for the metrics synthesizer.
	Analysis *AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
	// Admin holds the credentials seeded on first run.
	Admin *AdminConfig `yaml:"admin" mapstructure:"admin"`
	// Email holds the email notification configuration.
	Email *EmailConfig `yaml:"email" mapstructure:"email"`
}

// DatabaseConfig holds the database configuration.
type DatabaseConfig struct {
	// Path is the path to the sqlite database file.
	Path string `yaml:"path" mapstructure:"path"`
}

// UploadConfig holds the video upload configuration.
type UploadConfig struct {
	// Dir is the directory uploaded videos are stored in.
	Dir string `yaml:"dir" mapstructure:"dir"`
	// MaxSize is the maximum accepted upload size in bytes.
	MaxSize int64 `yaml:"max_size" mapstructure:"max_size"`
	// AllowedExtensions lists the accepted video container extensions.
	AllowedExtensions []string `yaml:"allowed_extensions" mapstructure:"allowed_extensions"`
	// RetentionHours is how long staged uploads are kept before an
	// incomplete session is discarded by the cleanup job.
	RetentionHours int `yaml:"retention_hours" mapstructure:"retention_hours"`
	// CleanupInterval is the interval in hours for the cleanup job.
	CleanupInterval int `yaml:"cleanup_interval" mapstructure:"cleanup_interval"`
}

// AnalysisConfig holds the configuration for the metrics synthesizer.
//
// The synthesizer fabricates the per-segment time series from the assumed
// segment speeds; it never inspects the uploaded video content.
type AnalysisConfig struct {
	// SampleRate is the number of samples generated per second.
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
	// AssumedSpeeds maps segment labels to the assumed average speed in m/s.
	AssumedSpeeds map[string]float64 `yaml:"assumed_speeds" mapstructure:"assumed_speeds"`
	// VelocityJitter is the standard deviation of the gaussian noise
	// applied to velocity samples, in m/s.
	VelocityJitter float64 `yaml:"velocity_jitter" mapstructure:"velocity_jitter"`
}

// AdminConfig holds the default administrative account seeded on first run.
type AdminConfig struct {
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`
	Email    string `yaml:"email" mapstructure:"email"`
}

// EmailConfig holds the email notification configuration.
type EmailConfig struct {
	// Enabled indicates whether email notifications are enabled.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// SMTPHost is the SMTP server host.
	SMTPHost string `yaml:"smtp_host" mapstructure:"smtp_host"`
	// SMTPPort is the SMTP server port.
	SMTPPort int `yaml:"smtp_port" mapstructure:"smtp_port"`
	// Username is the SMTP username.
	Username string `yaml:"username" mapstructure:"username"`
	// Password is the SMTP password.
	Password string `yaml:"password" mapstructure:"password"`
	// FromEmail is the email address from which notifications are sent.
	FromEmail string `yaml:"from_email" mapstructure:"from_email"`
	// FromName is the name from which notifications are sent.
	FromName string `yaml:"from_name" mapstructure:"from_name"`
	// UseTLS indicates whether to use TLS for the SMTP connection.
	UseTLS bool `yaml:"use_tls" mapstructure:"use_tls"`
	// InsecureSkipVerify indicates whether to skip TLS certificate verification.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify" mapstructure:"insecure_skip_verify"`
}

// Load reads the configuration from the specified path and returns a Config struct.
// If path is empty, it will use default search paths for config files.
// If no config file is found, the defaults are used.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix("SPRINTLINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var configFileFound bool
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.sprintline")
		v.AddConfigPath("/etc/sprintline")
	}

	if err := v.ReadInConfig(); err != nil {
		// If no config file is found, use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		configFileFound = true
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if configFileFound {
		log.Debug("Using config file", "file", v.ConfigFileUsed())
		log.Debug("Environment variables with SPRINTLINE_ prefix will override config file values")
	}

	if err := validateConfig(&c); err != nil {
		return nil, err
	}

	return &c, nil
}

// setDefaults sets default values for the configuration.
func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", "0.0.0.0:3003")
	v.SetDefault("server_url", "http://localhost:3003")
	v.SetDefault("session_key", "")
	v.SetDefault("session_max_age", 172800) // 48 hours
	v.SetDefault("log_level", "info")

	v.SetDefault("database.path", "./data/sprintline.db")

	v.SetDefault("uploads.dir", "./data/uploads")
	v.SetDefault("uploads.max_size", 256<<20) // 256 MiB
	v.SetDefault("uploads.allowed_extensions", []string{".mp4", ".avi", ".mov"})
	v.SetDefault("uploads.retention_hours", 24)
	v.SetDefault("uploads.cleanup_interval", 6)

	v.SetDefault("analysis.sample_rate", 30.0)
	v.SetDefault("analysis.velocity_jitter", 0.15)
	v.SetDefault("analysis.assumed_speeds", map[string]float64{
		"0-25m":   6.5,
		"25-50m":  8.5,
		"50-75m":  8.3,
		"75-100m": 7.9,
	})

	v.SetDefault("admin.username", "admin")
	v.SetDefault("admin.password", "admin123")
	v.SetDefault("admin.email", "admin@sprintline.local")

	v.SetDefault("email.enabled", false)
	v.SetDefault("email.smtp_port", 587)
	v.SetDefault("email.from_name", "Sprintline")
	v.SetDefault("email.use_tls", true)
	v.SetDefault("email.insecure_skip_verify", false)
}

// validateConfig checks that the configuration is usable.
func validateConfig(c *Config) error {
	if c.Listen == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.Database == nil || c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if c.Uploads == nil || c.Uploads.Dir == "" {
		return fmt.Errorf("uploads directory is required")
	}
	if c.Uploads.MaxSize <= 0 {
		return fmt.Errorf("uploads max_size must be positive")
	}
	if c.Uploads.RetentionHours <= 0 {
		return fmt.Errorf("uploads retention_hours must be positive")
	}
	if c.Uploads.CleanupInterval <= 0 {
		return fmt.Errorf("uploads cleanup_interval must be positive")
	}
	if c.Analysis == nil || c.Analysis.SampleRate <= 0 {
		return fmt.Errorf("analysis sample_rate must be positive")
	}
	for segment, speed := range c.Analysis.AssumedSpeeds {
		if speed <= 0 {
			return fmt.Errorf("assumed speed for segment %q must be positive", segment)
		}
	}
	if c.Email != nil && c.Email.Enabled {
		if c.Email.SMTPHost == "" {
			return fmt.Errorf("email smtp_host is required when email is enabled")
		}
		if c.Email.FromEmail == "" {
			return fmt.Errorf("email from_email is required when email is enabled")
		}
	}
	return nil
}
