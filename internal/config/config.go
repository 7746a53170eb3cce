package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Stripe   StripeConfig   `json:"stripe"`
	Email    EmailConfig    `json:"email"`
	Uploads  UploadsConfig  `json:"uploads"`
	Security SecurityConfig `json:"security"`
	Outbox   OutboxConfig   `json:"outbox"`
	Logging  LoggingConfig  `json:"logging"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

// StripeConfig carries the processor credentials. An empty secret key means
// the portal runs against the sample processor.
type StripeConfig struct {
	SecretKey string `json:"secret_key"`
}

// EmailConfig configures the SES mailer; empty values select the sample mailer.
type EmailConfig struct {
	Region      string `json:"region"`
	FromAddress string `json:"from_address"`
}

// UploadsConfig configures the asset bucket; empty values select sample URLs.
type UploadsConfig struct {
	Region string `json:"region"`
	Bucket string `json:"bucket"`
}

// SecurityConfig
type SecurityConfig struct {
	JWTSecret         string `json:"jwt_secret"`
	StaffEmail        string `json:"staff_email"`
	StaffPasswordHash string `json:"staff_password_hash"`
}

// OutboxConfig controls the event drain.
type OutboxConfig struct {
	// Cron spec for the drain; empty disables draining in this process.
	DrainSchedule string `json:"drain_schedule"`
	// Optional automation endpoint each drained event is POSTed to.
	WebhookURL string `json:"webhook_url"`
}

// LoggingConfig
type LoggingConfig struct {
	Level string `json:"level"`
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			User:    os.Getenv("USER"),
			DBName:  "launchpad_portal",
			SSLMode: "disable",
		},
		Outbox: OutboxConfig{
			DrainSchedule: "@every 15s",
		},
	}

	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	overrideWithEnv(config)

	return config, nil
}

func overrideWithEnv(config *Config) {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if dbHost := os.Getenv("DATABASE_HOST"); dbHost != "" {
		config.Database.Host = dbHost
	}
	if dbUser := os.Getenv("DATABASE_USER"); dbUser != "" {
		config.Database.User = dbUser
	}
	if dbPass := os.Getenv("DATABASE_PASSWORD"); dbPass != "" {
		config.Database.Password = dbPass
	}
	if dbName := os.Getenv("DATABASE_DBNAME"); dbName != "" {
		config.Database.DBName = dbName
	}
	if key := os.Getenv("STRIPE_SECRET_KEY"); key != "" {
		config.Stripe.SecretKey = key
	}
	if region := os.Getenv("SES_REGION"); region != "" {
		config.Email.Region = region
	}
	if from := os.Getenv("SES_FROM_ADDRESS"); from != "" {
		config.Email.FromAddress = from
	}
	if bucket := os.Getenv("UPLOADS_BUCKET"); bucket != "" {
		config.Uploads.Bucket = bucket
	}
	if region := os.Getenv("UPLOADS_REGION"); region != "" {
		config.Uploads.Region = region
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		config.Security.JWTSecret = secret
	}
	if email := os.Getenv("STAFF_EMAIL"); email != "" {
		config.Security.StaffEmail = email
	}
	if hash := os.Getenv("STAFF_PASSWORD_HASH"); hash != "" {
		config.Security.StaffPasswordHash = hash
	}
	if url := os.Getenv("OUTBOX_WEBHOOK_URL"); url != "" {
		config.Outbox.WebhookURL = url
	}
}

// GetDatabaseURL returns the database connection string
func (c *DatabaseConfig) GetDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
