// Package config loads and validates the application configuration.
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds every setting the services need.
type Config struct {
	Env                     string   `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string   `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string   `yaml:"migrations_path" env-default:"./migrations"`
	CORSAllowedOrigins      []string `yaml:"cors_allowed_origins" env:"CORS_ALLOWED_ORIGINS"`
	EmailEnabled            bool     `yaml:"email_enabled" env:"EMAIL_ENABLED" env-default:"false"`
	PublicBaseURL           string   `yaml:"public_base_url" env-default:"http://localhost:8080"`
	HTTPServer              `yaml:"http_server"`
	RedisConnection         `yaml:"redis_connection"`
	RabbitMQ                `yaml:"rabbitmq"`
	SMTP                    `yaml:"smtp"`
	SessionConfig           `yaml:"session"`
}

// HTTPServer holds the HTTP listener settings.
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection holds the settings for the session store backend.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env-default:"localhost:6379"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"5s"`
}

// RabbitMQ holds the settings of the mail queue broker.
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"url" env:"RABBITMQ_URL"`
	RabbitMQMaxRetries int           `yaml:"max_retries" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"retry_delay" env-default:"3s"`
}

// SMTP holds the outbound mail transport settings.
type SMTP struct {
	SMTPHost string `yaml:"host"`
	SMTPPort string `yaml:"port" env-default:"587"`
	SMTPUser string `yaml:"user" env:"SMTP_USER"`
	SMTPPass string `yaml:"pass" env:"SMTP_PASS"`
}

// SessionConfig holds the session cookie settings.
type SessionConfig struct {
	SessionTTL    time.Duration `yaml:"ttl" env-default:"24h"`
	CookieName    string        `yaml:"cookie_name" env-default:"session_id"`
	SecureCookies bool          `yaml:"secure_cookies"`
}

// MustLoad reads the config file pointed to by CONFIG_PATH and exits
// the process when the file is missing or, in prod, when a required
// setting is absent.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %s", err)
	}
	return &cfg
}

// IsProd reports whether the app runs in the production environment.
func (c *Config) IsProd() bool {
	return c.Env == "prod"
}

// Validate enforces the settings that must be present in prod.
// Secure cookies are forced on in prod regardless of the file value.
func (c *Config) Validate() error {
	if !c.IsProd() {
		return nil
	}
	c.SecureCookies = true
	required := map[string]string{
		"storage_connection_string": c.StorageConnectionString,
		"redis_connection.address":  c.AddressRedis,
		"rabbitmq.url":              c.RabbitMQURL,
	}
	for name, v := range required {
		if v == "" {
			return fmt.Errorf("%s is required in prod", name)
		}
	}
	if len(c.CORSAllowedOrigins) == 0 {
		return fmt.Errorf("cors_allowed_origins is required in prod")
	}
	if c.EmailEnabled && (c.SMTPHost == "" || c.SMTPUser == "") {
		return fmt.Errorf("smtp host and user are required in prod when email is enabled")
	}
	return nil
}
