package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDSN = "postgres://parcelrate@localhost:5432/parcelrate"

func TestPoolConfigAppliesOptions(t *testing.T) {
	cfg, err := poolConfig(testDSN, PoolOptions{
		MaxConns:         12,
		MaxConnLifetime:  time.Hour,
		MaxConnIdleTime:  2 * time.Minute,
		StatementTimeout: 1500 * time.Millisecond,
	})
	require.NoError(t, err)
	assert.Equal(t, int32(12), cfg.MaxConns)
	assert.Equal(t, time.Hour, cfg.MaxConnLifetime)
	assert.Equal(t, 2*time.Minute, cfg.MaxConnIdleTime)
	assert.Equal(t, "parcelrate-api", cfg.ConnConfig.RuntimeParams["application_name"])
	assert.Equal(t, "1500", cfg.ConnConfig.RuntimeParams["statement_timeout"])
	assert.Equal(t, "1500", cfg.ConnConfig.RuntimeParams["idle_in_transaction_session_timeout"])
}

func TestPoolConfigZeroOptionsKeepDefaults(t *testing.T) {
	def, err := poolConfig(testDSN, PoolOptions{})
	require.NoError(t, err)
	_, ok := def.ConnConfig.RuntimeParams["statement_timeout"]
	assert.False(t, ok)
	assert.Positive(t, def.MaxConns)
}

func TestPoolConfigRequiresURL(t *testing.T) {
	_, err := poolConfig("", PoolOptions{})
	assert.Error(t, err)
}
