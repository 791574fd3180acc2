package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("mode: dev\n"))
	require.NoError(t, err)

	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, 150*time.Millisecond, cfg.Upstream.RequestDelay)
	assert.Equal(t, 7, cfg.Upstream.RecentWindowDays)
	assert.Equal(t, "08:20", cfg.Shift.Start)
	assert.Equal(t, 30*time.Minute, cfg.Shift.ExitOffset)
	assert.Equal(t, 30, cfg.Assistance.DefaultDays)
	assert.False(t, cfg.DB.Enabled())
}

func TestParseReadsDurationsAndTimezone(t *testing.T) {
	raw := `
mode: release
timezone: America/Santiago
upstream:
  base_url: http://api.local
  request_delay: 250ms
shift:
  start: "07:45"
  exit_offset: 20m
database:
  host: db
  port: 3306
`
	cfg, err := Parse([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.Upstream.RequestDelay)
	assert.Equal(t, 20*time.Minute, cfg.Shift.ExitOffset)
	assert.True(t, cfg.DB.Enabled())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Santiago", loc.String())
}

func TestParseRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"mode":     "mode: staging\n",
		"timezone": "mode: dev\ntimezone: Mars/Olympus\n",
		"shift":    "mode: dev\nshift:\n  start: \"8h20\"\n",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("08:20")
	require.NoError(t, err)
	assert.Equal(t, 8, h)
	assert.Equal(t, 20, m)
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("LINETRACK_DB_PASSWORD", "s3cr$t")
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := "mode: dev\ndatabase:\n  host: db\n  password: \"${LINETRACK_DB_PASSWORD}\"\n  user: \"${LINETRACK_UNSET_USER}\"\n"
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "s3cr$t", cfg.DB.Password)
	assert.Empty(t, cfg.DB.Username)
	assert.True(t, cfg.DB.Enabled())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
