// Package config reads the service configuration from environment variables.
// Every setting except the database password has a default suitable for local
// development only.
package config

import (
	"fmt"
	"os"
)

// Config holds all settings needed to run the service.
type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Port is the TCP port the HTTP server listens on.
	Port string

	// UploadDir is the directory where contact photos are stored. It is
	// created at startup if it does not exist.
	UploadDir string
}

// FromEnv builds a Config from the environment. It returns an error when
// DB_PASSWORD is unset; there is deliberately no default credential.
func FromEnv() (Config, error) {
	cfg := Config{
		DBHost:     envOr("DB_HOST", "localhost"),
		DBPort:     envOr("DB_PORT", "3306"),
		DBUser:     envOr("DB_USER", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     envOr("DB_NAME", "contacts"),
		Port:       envOr("PORT", "5000"),
		UploadDir:  envOr("UPLOAD_DIR", "uploads"),
	}
	if cfg.DBPassword == "" {
		return Config{}, fmt.Errorf("config: DB_PASSWORD must be set")
	}
	return cfg, nil
}

// DSN returns the MySQL data source name. parseTime makes DATE columns scan
// into time.Time; clientFoundRows makes UPDATE report matched rows, so that
// updating a contact with unchanged values still counts as a hit.
func (c Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&clientFoundRows=true",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
