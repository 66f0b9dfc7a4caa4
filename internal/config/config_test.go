package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address())
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, BackendSQLite, cfg.InventoryDB.Type)
	assert.Equal(t, 5, cfg.Aggregation.TopN)
	assert.Equal(t, 10, cfg.CustomID.MaxAttempts)
	assert.Equal(t, "memory", cfg.Cache.Type)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("INVENTORY_DB_TYPE", "postgres")
	t.Setenv("INVENTORY_DB_HOST", "db")
	t.Setenv("INVENTORY_DB_USER", "app")
	t.Setenv("INVENTORY_DB_PASS", "secret")
	t.Setenv("AGGREGATION_TOP_N", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://app:secret@db:5432/inventory?sslmode=disable", cfg.InventoryDB.PostgresDSN())
	assert.Equal(t, "app:secret@tcp(db:3306)/inventory?parseTime=true&multiStatements=true", cfg.InventoryDB.MySQLDSN())
	assert.Equal(t, 3, cfg.Aggregation.TopN)
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("backend", func(t *testing.T) {
		t.Setenv("INVENTORY_DB_TYPE", "oracle")
		_, err := Load()
		assert.ErrorContains(t, err, "INVENTORY_DB_TYPE")
	})
	t.Run("top n", func(t *testing.T) {
		t.Setenv("AGGREGATION_TOP_N", "0")
		_, err := Load()
		assert.ErrorContains(t, err, "AGGREGATION_TOP_N")
	})
	t.Run("cache", func(t *testing.T) {
		t.Setenv("CACHE_TYPE", "memcached")
		_, err := Load()
		assert.ErrorContains(t, err, "CACHE_TYPE")
	})
}

func TestInventoryDBConfig_ExplicitPort(t *testing.T) {
	c := InventoryDBConfig{User: "u", Password: "p", Host: "h", Port: 6000, Name: "n", SSLMode: "require"}
	assert.Equal(t, "postgres://u:p@h:6000/n?sslmode=require", c.PostgresDSN())
}
