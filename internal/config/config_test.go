package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_HOST", "")
	t.Setenv("PORT", "")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, "3306", cfg.DBPort)
	assert.Equal(t, "root", cfg.DBUser)
	assert.Equal(t, "contacts", cfg.DBName)
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "uploads", cfg.UploadDir)
}

// TestFromEnvRequiresPassword expects startup to fail without a database
// password; there is no default credential.
func TestFromEnvRequiresPassword(t *testing.T) {
	t.Setenv("DB_PASSWORD", "")
	_, err := FromEnv()
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_HOST", "db.example.com")
	t.Setenv("DB_USER", "dirk")
	t.Setenv("DB_NAME", "contacts")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t,
		"dirk:secret@tcp(db.example.com:3306)/contacts?parseTime=true&clientFoundRows=true",
		cfg.DSN())
}
