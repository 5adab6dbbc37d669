package metric

import (
	"errors"
	"log/slog"
	"time"

	"eventdesk/src-server/utils"

	"github.com/prometheus/client_golang/prometheus"
)

// Registers the gauge, or hands back the one registered by an earlier Init.
func registerGauge(name, help string) prometheus.Gauge {
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: name,
		Help: help,
	})
	if err := prometheus.Register(gauge); err != nil {
		var alreadyRegistered prometheus.AlreadyRegisteredError
		if errors.As(err, &alreadyRegistered) {
			if existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge); ok {
				slog.Debug("metric already registered", "name", name)
				return existing
			}
		}
		slog.Error("can't register metric", "name", name, "error", err)
		return gauge
	}
	slog.Debug("metric registered", "name", name)
	return gauge
}

func databaseEmptyRead(as *utils.AppState, tickerInterval time.Duration) {
	databaseEmptyRead := registerGauge(
		"eventdesk_database_empty_read_microsec",
		"The latency of an empty database read in microseconds",
	)
	databaseEmptyRead.Set(0)

	gracefulShutdownCh := as.CreateGracefulShutdownChan()
	go func() {
		ticker := time.NewTicker(tickerInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gracefulShutdownCh:
				prometheus.Unregister(databaseEmptyRead)
				return
			case <-ticker.C:
				latency, err := database(as)
				if err != nil {
					slog.Error("can't get database latency", "error", err)
					continue
				}
				databaseEmptyRead.Set(float64(latency.Microseconds()))
			}
		}
	}()
}

// Mirrors the latest sample from the channel; drops back to 0 once
// no sample arrived for a full clear interval.
func latencyGauge(as *utils.AppState, name, help string, samples <-chan float64, clearTickerInterval time.Duration) {
	gauge := registerGauge(name, help)
	gauge.Set(0)

	gracefulShutdownCh := as.CreateGracefulShutdownChan()
	go func() {
		clearTicker := time.NewTicker(clearTickerInterval)
		defer clearTicker.Stop()
		for {
			select {
			case <-gracefulShutdownCh:
				if !prometheus.Unregister(gauge) {
					slog.Warn("metric not registered", "name", name)
				}
				return
			case latency := <-samples:
				gauge.Set(latency)
				clearTicker.Reset(clearTickerInterval)
			case <-clearTicker.C:
				gauge.Set(0)
			}
		}
	}()
}

// Starts the collectors. They stop on graceful shutdown.
func Init(as *utils.AppState) {
	tickerInterval := as.Config.GetMetricCollectionInterval()
	clearTickerInterval := tickerInterval * 2

	databaseEmptyRead(as, tickerInterval)
	latencyGauge(as,
		"eventdesk_database_read_microsec",
		"The latency of a database read in microseconds",
		as.MetricChans.DatabaseRead, clearTickerInterval)
	latencyGauge(as,
		"eventdesk_database_write_microsec",
		"The latency of a database write in microseconds",
		as.MetricChans.DatabaseWrite, clearTickerInterval)
}
