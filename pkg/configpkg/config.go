// Package configpkg provides parsing functionality for environment variables.
package configpkg

import (
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
//
// The values are read by viper from a config file or environment variables.
type Config struct {
	DBDriver            string        `mapstructure:"DB_DRIVER"`
	DBSource            string        `mapstructure:"DB_SOURCE"`
	ServerAddress       string        `mapstructure:"SERVER_ADDRESS"`
	TokenKind           string        `mapstructure:"TOKEN_KIND"`
	TokenSymmetricKey   string        `mapstructure:"TOKEN_SYMMETRIC_KEY"`
	AccessTokenDuration time.Duration `mapstructure:"ACCESS_TOKEN_DURATION"`
	LoginRateLimit      string        `mapstructure:"LOGIN_RATE_LIMIT"`
	MigrateOnStart      bool          `mapstructure:"MIGRATE_ON_START"`
	CookieSecure        bool          `mapstructure:"COOKIE_SECURE"`
	TrustedProxies      []string      `mapstructure:"TRUSTED_PROXIES"`
	Environement        string        `mapstructure:"GO_ENV"`
}

// Load read configuration from file or environment variables.
func Load(path string) (Config, error) {
	var c Config

	v := viper.New()

	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	v.SetDefault("SERVER_ADDRESS", "0.0.0.0:8080")
	v.SetDefault("TOKEN_KIND", "paseto")
	v.SetDefault("ACCESS_TOKEN_DURATION", 8*time.Hour)
	v.SetDefault("LOGIN_RATE_LIMIT", "10-M")

	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		return c, err
	}

	err = v.Unmarshal(&c)
	if err != nil {
		return c, err
	}

	return c, nil
}
