package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Keys understood by LoadFromViper. The CLI binds its flags to the same keys.
const (
	KeyConfigFile     = "config"
	KeyHost           = "host"
	KeyPort           = "port"
	KeyDatabase       = "database"
	KeyUser           = "user"
	KeyPassword       = "password"
	KeySSLMode        = "sslmode"
	KeyConnectTimeout = "connect-timeout"
	KeyLogLevel       = "log-level"
	KeyTrace          = "trace"
	KeyMetrics        = "enable-metrics"
)

var envBindings = map[string]string{
	KeyConfigFile:     "NIMBLE_CONFIG",
	KeyHost:           "NIMBLE_DB_HOST",
	KeyPort:           "NIMBLE_DB_PORT",
	KeyDatabase:       "NIMBLE_DB_NAME",
	KeyUser:           "NIMBLE_DB_USER",
	KeyPassword:       "NIMBLE_DB_PASSWORD",
	KeySSLMode:        "NIMBLE_DB_SSLMODE",
	KeyConnectTimeout: "NIMBLE_DB_CONNECT_TIMEOUT",
	KeyLogLevel:       "NIMBLE_LOG_LEVEL",
	KeyTrace:          "NIMBLE_TRACE",
	KeyMetrics:        "NIMBLE_ENABLE_METRICS",
}

// NewViper returns a viper instance with the NIMBLE_* environment variables
// bound to the configuration keys.
func NewViper() *viper.Viper {
	v := viper.New()
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}
	return v
}

// LoadFromViper resolves the configuration. Precedence, highest first:
// explicitly set flags and environment variables, the YAML file named by
// the config key, defaults.
func LoadFromViper(v *viper.Viper) (*Config, error) {
	cfg := Default()

	if path := v.GetString(KeyConfigFile); path != "" {
		if err := Load(path, cfg); err != nil {
			return nil, err
		}
	}

	db := &cfg.Database
	overlayString(v, KeyHost, &db.Host)
	overlayString(v, KeyPort, &db.Port)
	overlayString(v, KeyDatabase, &db.Database)
	overlayString(v, KeyUser, &db.User)
	overlayString(v, KeyPassword, &db.Password)
	overlayString(v, KeySSLMode, &db.SSLMode)
	if v.IsSet(KeyConnectTimeout) {
		db.ConnectTimeout = v.GetDuration(KeyConnectTimeout)
	}

	overlayString(v, KeyLogLevel, &cfg.Logging.Level)
	if v.IsSet(KeyTrace) {
		cfg.Observability.EnableTracing = v.GetBool(KeyTrace)
	}
	if v.IsSet(KeyMetrics) {
		cfg.Observability.EnableMetrics = v.GetBool(KeyMetrics)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func overlayString(v *viper.Viper, key string, dst *string) {
	if v.IsSet(key) {
		*dst = v.GetString(key)
	}
}
