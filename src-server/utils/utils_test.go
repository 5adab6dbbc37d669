package utils_test

import (
	"testing"
	"time"

	"eventdesk/src-server/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_PATH", "")
	t.Setenv("TIMEZONE", "Europe/Berlin")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("METRIC_COLLECTION_INTERVAL", "")

	cfg := utils.NewConfig()
	assert.Equal(t, "8080", cfg.GetPort())
	assert.Equal(t, "./sqlite.db", cfg.GetDatabasePath())
	assert.Equal(t, "Europe/Berlin", cfg.GetLocation().String())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.GetCorsAllowedOrigins())
	assert.Equal(t, 15*time.Second, cfg.GetMetricCollectionInterval())
}

func TestParseDate(t *testing.T) {
	t.Setenv("DATABASE_PATH", ":memory:")
	t.Setenv("TIMEZONE", "UTC")
	as, err := utils.NewAppState(utils.NewConfig())
	require.NoError(t, err)
	t.Cleanup(as.GracefulShutdown)

	// a Wednesday
	now := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

	for _, tc := range []struct {
		in   string
		want time.Time
	}{
		{in: "2026-11-20", want: time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC)},
		{in: "2026-11-20T18:30", want: time.Date(2026, 11, 20, 18, 30, 0, 0, time.UTC)},
		{in: "2026-11-20T18:30:00+01:00", want: time.Date(2026, 11, 20, 17, 30, 0, 0, time.UTC)},
	} {
		got, err := as.ParseDate(tc.in, now)
		require.NoError(t, err, tc.in)
		assert.True(t, tc.want.Equal(got), "%s: got %s", tc.in, got)
	}

	tomorrow, err := as.ParseDate("tomorrow", now)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-15", tomorrow.Format(time.DateOnly))

	_, err = as.ParseDate("qwertyuiop", now)
	assert.Error(t, err)
	_, err = as.ParseDate("  ", now)
	assert.Error(t, err)
}

func TestCleanupUsername(t *testing.T) {
	assert.Equal(t, "ivy", utils.CleanupUsername("  ｉｖｙ "))
	assert.Equal(t, "Ivy", utils.CleanupUsername("Ivy"))
}

func TestGracefulShutdownIsIdempotent(t *testing.T) {
	t.Setenv("DATABASE_PATH", ":memory:")
	t.Setenv("TIMEZONE", "UTC")
	as, err := utils.NewAppState(utils.NewConfig())
	require.NoError(t, err)

	ch := as.CreateGracefulShutdownChan()
	as.GracefulShutdown()
	as.GracefulShutdown()
	_, open := <-ch
	assert.False(t, open)

	_, open = <-as.CreateGracefulShutdownChan()
	assert.False(t, open)
}
