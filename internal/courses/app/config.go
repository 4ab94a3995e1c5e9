package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/aussiebroadwan/courses/pkg/cryptox"
)

// ConfigFileEnv names the optional YAML config file.
const ConfigFileEnv = "COURSES_CONFIG_FILE"

type Config struct {
	SecretKey           string        `mapstructure:"secret_key"`            // Session cookie signing key (default: your_secret_key)
	DatabaseFile        string        `mapstructure:"database_file"`         // Path to SQLite database file (default: ./site.db)
	PepperFile          string        `mapstructure:"pepper_file"`           // Path to file containing pepper for password hashing (default: ./pepper)
	PasswordHasher      string        `mapstructure:"password_hasher"`       // argon2id or bcrypt (default: argon2id)
	Env                 string        `mapstructure:"env"`                   // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        `mapstructure:"log_level"`             // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        `mapstructure:"log_format"`            // Log format (json, text) (default: json)
	Port                int           `mapstructure:"port"`                  // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration `mapstructure:"shutdown_grace_period"` // Graceful shutdown timeout (default: 10s)
	SecureCookies       bool          `mapstructure:"secure_cookies"`        // Mark the session cookie Secure (default: false)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("secret_key", "your_secret_key")
	v.SetDefault("database_file", "site.db")
	v.SetDefault("pepper_file", "pepper")
	v.SetDefault("password_hasher", cryptox.AlgorithmArgon2id)
	v.SetDefault("env", "dev")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("port", 8080)
	v.SetDefault("shutdown_grace_period", 10*time.Second)
	v.SetDefault("secure_cookies", false)
}

// LoadConfig resolves the configuration from defaults, the optional config
// file and COURSES_* environment variables, in increasing precedence.
func LoadConfig() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("COURSES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file := os.Getenv(ConfigFileEnv); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret_key must not be empty"))
	}
	if c.DatabaseFile == "" {
		errs = append(errs, errors.New("database_file must not be empty"))
	}
	switch strings.ToLower(c.PasswordHasher) {
	case cryptox.AlgorithmArgon2id, cryptox.AlgorithmBcrypt:
	default:
		errs = append(errs, fmt.Errorf("password_hasher %q is not supported", c.PasswordHasher))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d is out of range", c.Port))
	}
	if c.ShutdownGracePeriod <= 0 {
		errs = append(errs, errors.New("shutdown_grace_period must be positive"))
	}

	return errors.Join(errs...)
}
