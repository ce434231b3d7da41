package database

import (
	"testing"
	"time"

	"github.com/BradenHooton/lumina/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolConfig(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Host:              "db.internal",
		Port:              6543,
		User:              "lumina",
		Password:          "pw",
		Name:              "portal",
		SSLMode:           "disable",
		MaxConns:          8,
		MinConns:          2,
		MaxConnLifetime:   7 * time.Minute,
		MaxConnIdleTime:   90 * time.Second,
		HealthCheckPeriod: 30 * time.Second,
	}

	poolConfig, err := PoolConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, "db.internal", poolConfig.ConnConfig.Host)
	assert.EqualValues(t, 6543, poolConfig.ConnConfig.Port)
	assert.Equal(t, "portal", poolConfig.ConnConfig.Database)
	assert.EqualValues(t, 8, poolConfig.MaxConns)
	assert.EqualValues(t, 2, poolConfig.MinConns)
	assert.Equal(t, 7*time.Minute, poolConfig.MaxConnLifetime)
	assert.Equal(t, 90*time.Second, poolConfig.MaxConnIdleTime)
	assert.Equal(t, 30*time.Second, poolConfig.HealthCheckPeriod)
}

func TestPoolConfig_InvalidDSN(t *testing.T) {
	_, err := PoolConfig(&config.DatabaseConfig{Host: "localhost", Port: 5432, SSLMode: "bogus"})
	assert.ErrorContains(t, err, "unable to parse database config")
}
