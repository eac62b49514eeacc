package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sungwon/quick-mail/internal/mailutil"
	"github.com/sungwon/quick-mail/internal/mxcache"
)

// Config holds all application configuration.
type Config struct {
	Site       SiteConfig       `mapstructure:"site"`
	User       UserConfig       `mapstructure:"user"`
	Provider   ProviderConfig   `mapstructure:"provider"`
	Validation ValidationConfig `mapstructure:"validation"`
	MXCache    mxcache.Config   `mapstructure:"mx_cache"`
	SMTP       SMTPConfig       `mapstructure:"smtp"`
	API        APIConfig        `mapstructure:"api"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// SiteConfig describes the host installation the mail helpers run in.
type SiteConfig struct {
	Charset        string   `mapstructure:"charset"`
	UploadTmpDir   string   `mapstructure:"upload_tmp_dir"`
	Multisite      bool     `mapstructure:"multisite"`
	ActivePlugins  []string `mapstructure:"active_plugins"`
	NetworkPlugins []string `mapstructure:"network_plugins"`
}

// UserConfig is the profile of the user mail is sent as.
type UserConfig struct {
	FirstName   string `mapstructure:"first_name"`
	LastName    string `mapstructure:"last_name"`
	DisplayName string `mapstructure:"display_name"`
	Email       string `mapstructure:"email"`
}

// ProviderConfig holds the third-party mail provider settings.
type ProviderConfig struct {
	// Plugin is matched against the active plugins to decide whether the
	// provider integration applies.
	Plugin        string `mapstructure:"plugin"`
	FromEmail     string `mapstructure:"from_email"`
	Transactional bool   `mapstructure:"transactional"`
}

// ValidationConfig holds address and input validation settings.
type ValidationConfig struct {
	// Option is "N" for syntax checks only or "Y" to require MX records.
	Option     string        `mapstructure:"option"`
	DNSTimeout time.Duration `mapstructure:"dns_timeout"`
	MinChars   int           `mapstructure:"min_chars"`
	MaxChars   int           `mapstructure:"max_chars"`
}

// SMTPConfig holds the relay used to submit outgoing mail.
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	// TLS is "starttls" (default), "implicit" or "none".
	TLS      string `mapstructure:"tls"`
	Insecure bool   `mapstructure:"insecure"`
}

// APIConfig holds REST API server configuration.
type APIConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// KeyHash is the bcrypt hash of the API key. Empty disables auth.
	KeyHash string `mapstructure:"key_hash"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level     string `mapstructure:"level"`
	Output    string `mapstructure:"output"`
	FilePath  string `mapstructure:"file_path"`
	MaxSizeMB int    `mapstructure:"max_size_mb"`
	MaxFiles  int    `mapstructure:"max_files"`
}

// Load reads configuration from the given config directory path.
// It looks for a file named "config.yaml" in that directory.
// Environment variables with prefix QUICK_MAIL_ override file values.
// For example, QUICK_MAIL_PROVIDER_FROM_EMAIL overrides provider.from_email.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)

	v.SetEnvPrefix("QUICK_MAIL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("site.charset", "UTF-8")
	v.SetDefault("site.upload_tmp_dir", "")
	v.SetDefault("site.multisite", false)
	v.SetDefault("site.active_plugins", []string{})
	v.SetDefault("site.network_plugins", []string{})

	v.SetDefault("user.first_name", "")
	v.SetDefault("user.last_name", "")
	v.SetDefault("user.display_name", "")
	v.SetDefault("user.email", "")

	v.SetDefault("provider.plugin", "sparkpost")
	v.SetDefault("provider.from_email", "")
	v.SetDefault("provider.transactional", false)

	v.SetDefault("validation.option", string(mailutil.ValidateSyntax))
	v.SetDefault("validation.dns_timeout", 5*time.Second)
	v.SetDefault("validation.min_chars", mailutil.DefaultMinChars)
	v.SetDefault("validation.max_chars", mailutil.DefaultMaxChars)

	v.SetDefault("mx_cache.type", "memory")
	v.SetDefault("mx_cache.ttl", time.Hour)
	v.SetDefault("mx_cache.redis_addr", "localhost:6379")
	v.SetDefault("mx_cache.redis_password", "")
	v.SetDefault("mx_cache.redis_db", 0)

	v.SetDefault("smtp.host", "localhost")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.tls", "starttls")
	v.SetDefault("smtp.insecure", false)

	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.read_timeout", 10*time.Second)
	v.SetDefault("api.write_timeout", 30*time.Second)
	v.SetDefault("api.key_hash", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.file_path", "")
	v.SetDefault("logging.max_size_mb", 100)
	v.SetDefault("logging.max_files", 5)
}

// SiteInfo converts the site section into the helpers' host context.
func (c *Config) SiteInfo() mailutil.Site {
	return mailutil.Site{
		Charset:        c.Site.Charset,
		UploadTmpDir:   c.Site.UploadTmpDir,
		Multisite:      c.Site.Multisite,
		ActivePlugins:  c.Site.ActivePlugins,
		NetworkPlugins: c.Site.NetworkPlugins,
	}
}

// CurrentUser returns the configured sender profile.
func (c *Config) CurrentUser() *mailutil.User {
	return &mailutil.User{
		FirstName:   c.User.FirstName,
		LastName:    c.User.LastName,
		DisplayName: c.User.DisplayName,
		Email:       c.User.Email,
	}
}

// ProviderSettings returns the mail provider settings.
func (c *Config) ProviderSettings() mailutil.ProviderSettings {
	return mailutil.ProviderSettings{
		FromEmail:     c.Provider.FromEmail,
		Transactional: c.Provider.Transactional,
	}
}
