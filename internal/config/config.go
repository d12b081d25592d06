// config.go

// Package config provides runtime configuration values for the service.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds configuration knobs for the HTTP server, storage and identity.
type Config struct {
	ServiceName string
	Env         string
	LogLevel    string

	HTTPAddr        string
	ShutdownTimeout time.Duration
	CORSOrigins     []string

	Store        string
	MongoURL     string
	MongoDB      string
	MongoTimeout time.Duration

	JWTSecret     string
	JWTExpires    time.Duration
	JWTCookieName string
	BcryptCost    int

	KafkaBrokers []string
	KafkaTopic   string
}

// SetDefaults registers defaults and environment bindings on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("service_name", "shop-backend")
	v.SetDefault("env", "dev")
	v.SetDefault("log_level", "info")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("shutdown_timeout", 10*time.Second)
	v.SetDefault("cors_origins", "http://localhost:3000")
	v.SetDefault("store", "mongo")
	v.SetDefault("mongo_url", "mongodb://localhost:27017")
	v.SetDefault("mongo_db", "backend1")
	v.SetDefault("mongo_timeout", 5*time.Second)
	v.SetDefault("jwt_secret", "secret-dev")
	v.SetDefault("jwt_expires", 24*time.Hour)
	v.SetDefault("jwt_cookie_name", "token")
	v.SetDefault("bcrypt_cost", 10)
	v.SetDefault("kafka_brokers", "")
	v.SetDefault("kafka_topic", "catalog.products")

	v.AutomaticEnv()
	_ = v.BindEnv("mongo_url", "MONGODB_URI", "MONGO_URL")
	_ = v.BindEnv("http_addr", "HTTP_ADDR")
}

// Load collects configuration from v. SetDefaults must have been called on v.
func Load(v *viper.Viper) Config {
	cfg := Config{
		ServiceName:     v.GetString("service_name"),
		Env:             v.GetString("env"),
		LogLevel:        strings.ToLower(v.GetString("log_level")),
		HTTPAddr:        v.GetString("http_addr"),
		ShutdownTimeout: v.GetDuration("shutdown_timeout"),
		CORSOrigins:     splitList(v.GetString("cors_origins")),
		Store:           strings.ToLower(v.GetString("store")),
		MongoURL:        v.GetString("mongo_url"),
		MongoDB:         v.GetString("mongo_db"),
		MongoTimeout:    v.GetDuration("mongo_timeout"),
		JWTSecret:       v.GetString("jwt_secret"),
		JWTExpires:      v.GetDuration("jwt_expires"),
		JWTCookieName:   v.GetString("jwt_cookie_name"),
		BcryptCost:      v.GetInt("bcrypt_cost"),
		KafkaBrokers:    splitList(v.GetString("kafka_brokers")),
		KafkaTopic:      v.GetString("kafka_topic"),
	}
	if cfg.JWTExpires <= 0 {
		cfg.JWTExpires = 24 * time.Hour
	}
	if cfg.MongoTimeout <= 0 {
		cfg.MongoTimeout = 5 * time.Second
	}
	return cfg
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
