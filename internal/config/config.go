package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is built once at startup and handed to every component that needs it.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Images   ImagesConfig   `mapstructure:"images"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Tracker  TrackerConfig  `mapstructure:"tracker"`
}

type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	Mode           string        `mapstructure:"mode"` // gin mode: debug, release, test
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// Address returns the listen address derived from the port.
func (s ServerConfig) Address() string {
	if strings.HasPrefix(s.Port, ":") {
		return s.Port
	}
	return ":" + s.Port
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

// ImagesConfig describes the profile image store. CloudName doubles as the
// bucket name, APIKey/APISecret as the access key pair.
type ImagesConfig struct {
	CloudName string        `mapstructure:"cloud_name"`
	APIKey    string        `mapstructure:"api_key"`
	APISecret string        `mapstructure:"api_secret"`
	Endpoint  string        `mapstructure:"endpoint"`
	Region    string        `mapstructure:"region"`
	URLExpiry time.Duration `mapstructure:"url_expiry"`
}

// Enabled reports whether enough credentials are present to talk to the store.
func (i ImagesConfig) Enabled() bool {
	return i.CloudName != "" && i.APIKey != "" && i.APISecret != ""
}

// JWTConfig defines session token configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

type TrackerConfig struct {
	Buffer  int  `mapstructure:"buffer"`
	Persist bool `mapstructure:"persist"` // also write request records to MongoDB
}

// keys lists every leaf setting. Each is bound to its upper-snake env name
// so env-only deployments work without a config file.
var keys = []string{
	"server.port", "server.mode", "server.request_timeout",
	"database.uri", "database.name",
	"images.cloud_name", "images.api_key", "images.api_secret", "images.endpoint", "images.region", "images.url_expiry",
	"jwt.secret", "jwt.expiration",
	"tracker.buffer", "tracker.persist",
}

// legacyEnv maps config keys to the environment names the gateway has always read.
var legacyEnv = map[string]string{
	"server.port":       "PORT",
	"database.uri":      "URI",
	"images.cloud_name": "CLOUD_NAME",
	"images.api_key":    "CLOUDINARY_API_KEY",
	"images.api_secret": "CLOUDINARY_API_SECRET",
}

// LoadConfig reads configuration from an optional .env file, an optional
// config.yaml under path, and environment variables.
func LoadConfig(path string) (Config, error) {
	var config Config

	// .env is optional; a missing file is not an error.
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// server.port -> SERVER_PORT, jwt.expiration -> JWT_EXPIRATION
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))
	for _, key := range keys {
		names := []string{key, strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}
		if env, ok := legacyEnv[key]; ok {
			names = append(names, env)
		}
		if err := v.BindEnv(names...); err != nil {
			return config, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.request_timeout", "10s")
	v.SetDefault("database.name", "gym_tracker")
	v.SetDefault("images.region", "us-east-1")
	v.SetDefault("images.url_expiry", "15m")
	v.SetDefault("jwt.expiration", "24h")
	v.SetDefault("tracker.buffer", 256)
	v.SetDefault("tracker.persist", true)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

// Validate checks the settings the process cannot start without.
func (c Config) Validate() error {
	if c.Database.URI == "" {
		return errors.New("database uri is required (URI or DATABASE_URI)")
	}
	if c.JWT.Secret == "" {
		return errors.New("jwt secret is required (JWT_SECRET)")
	}
	if c.Server.Port == "" {
		return errors.New("server port is required (PORT)")
	}
	return nil
}
