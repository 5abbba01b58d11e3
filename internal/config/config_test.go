package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"target-shooting/internal/scoring"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_DRIVER", " SQLite ")
	t.Setenv("DATABASE_URL", "file:test.db")
	t.Setenv("UPDATE_RETRIES", "5")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")
	t.Setenv("ALLOW_STATE_OVERRIDE", "true")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("ACCESS_ADMINS", "boss,chief")
	t.Setenv("ACCESS_ROOMS", "fire:1, water:2")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.StorageDriver)
	assert.True(t, cfg.IsRelational())
	assert.Equal(t, 5, cfg.UpdateRetries)
	assert.Equal(t, Default().DBMaxOpenConns, cfg.DBMaxOpenConns)
	assert.True(t, cfg.AllowStateOverride)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, []string{"boss", "chief"}, cfg.Access.Admins)
	assert.Equal(t, map[string]int{"fire": 1, "water": 2}, cfg.Access.Rooms)
}

func TestDefaultAccessPolicy(t *testing.T) {
	policy, err := Default().Access.Policy()
	require.NoError(t, err)
	assert.True(t, policy.Resolve("user01").IsAdmin)
	assert.Equal(t, scoring.RoomAir, policy.Resolve("user04").Room)
}

func TestParseRoomsRejectsMalformed(t *testing.T) {
	_, err := ParseRooms("user02")
	assert.Error(t, err)
	_, err = ParseRooms("user02:x")
	assert.Error(t, err)
}

func TestAccessPolicyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
admins: [ranger]
rooms:
  ember: 1
  tide: 2
  gale: 3
password: s3cret
`), 0o644))

	access := DefaultAccess()
	access.PolicyPath = path
	resolved, err := access.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", resolved.Password)

	policy, err := resolved.Policy()
	require.NoError(t, err)
	assert.True(t, policy.Resolve("ranger").IsAdmin)
	assert.False(t, policy.Resolve("user01").Known())
	assert.Equal(t, scoring.RoomWater, policy.Resolve("tide").Room)
}

func TestAccessPolicyRejectsBadRoom(t *testing.T) {
	access := DefaultAccess()
	access.Rooms = map[string]int{"user02": 7}
	_, err := access.Policy()
	assert.ErrorIs(t, err, scoring.ErrInvalidInput)
}

func TestMalformedAccessRoomsFailsResolve(t *testing.T) {
	t.Setenv("ACCESS_ROOMS", "alice=1,bob=2,carol=3")

	cfg := Load()
	_, err := cfg.Access.Resolve()
	require.ErrorContains(t, err, "ACCESS_ROOMS")
}

func TestLoadTrustedProxies(t *testing.T) {
	assert.Empty(t, Default().TrustedProxies)

	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 127.0.0.1")
	assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, Load().TrustedProxies)
}
