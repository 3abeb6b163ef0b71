package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-engine/config"
	"github.com/warp/attendance-engine/engine"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ATTENDANCE_ADDR", "")
	t.Setenv("ATTENDANCE_DB", "")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "attendance.db", cfg.DatabasePath)
	assert.NoError(t, cfg.TimeConfig().Validate())
}

func TestLoad_MissingFileIsFine(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
}

func TestLoad_YAMLAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr: ":9090"
database_path: "from-yaml.db"
timezone: "America/Sao_Paulo"
time_settings:
  calc_rounding: true
  calc_roundingMins: 10
  calc_lunch: true
  calc_lunchMins: 45
`), 0o644))

	t.Setenv("ATTENDANCE_DB", "from-env.db")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "from-env.db", cfg.DatabasePath, "env wins over yaml")

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Sao_Paulo", loc.String())

	assert.Equal(t, engine.TimeConfig{
		RoundingEnabled: true,
		RoundingMinutes: 10,
		LunchEnabled:    true,
		LunchMinutes:    45,
	}, cfg.TimeConfig())
}

func TestLoad_InvalidTimeSettingsRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
time_settings:
  calc_roundingMins: 0
  calc_lunchMins: 60
`), 0o644))

	_, err := config.Load(path)
	assert.ErrorIs(t, err, engine.ErrInvalidTimeConfig)
}
