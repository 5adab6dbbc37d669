package metric_test

import (
	"testing"
	"time"

	"eventdesk/src-server/metric"
	"eventdesk/src-server/model"
	"eventdesk/src-server/utils"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gathered(t *testing.T, name string) *dto.MetricFamily {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Logf("gather: %v", err)
		return nil
	}
	for _, family := range families {
		if family.GetName() == name {
			return family
		}
	}
	return nil
}

func TestInit(t *testing.T) {
	t.Setenv("DATABASE_PATH", ":memory:")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("METRIC_COLLECTION_INTERVAL", "1s")
	as, err := utils.NewAppState(utils.NewConfig())
	require.NoError(t, err)
	require.NoError(t, model.CreateSchema(t.Context(), as.BunDB))

	metric.Init(as)
	as.MetricChans.DatabaseWrite <- 42

	assert.Eventually(t, func() bool {
		family := gathered(t, "eventdesk_database_write_microsec")
		return family != nil && family.GetMetric()[0].GetGauge().GetValue() == 42
	}, time.Second, 5*time.Millisecond)

	as.GracefulShutdown()
	assert.Eventually(t, func() bool {
		return gathered(t, "eventdesk_database_write_microsec") == nil
	}, time.Second, 5*time.Millisecond)
}

func TestObserveHTTPRequest(t *testing.T) {
	metric.ObserveHTTPRequest("GET", "GET /api/events/{$}", 200, 3*time.Millisecond)

	family := gathered(t, "eventdesk_http_requests_total")
	require.NotNil(t, family)
	assert.NotEmpty(t, family.GetMetric())
}
