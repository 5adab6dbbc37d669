package utils

import "time"

// Latencies in microseconds, drained by the metric package.
type Metric struct {
	DatabaseRead  chan float64
	DatabaseWrite chan float64
}

func NewMetric() *Metric {
	return &Metric{
		DatabaseRead:  make(chan float64, 64),
		DatabaseWrite: make(chan float64, 64),
	}
}

// Drops the sample when nobody is collecting, so handlers never block on metrics.
func (m *Metric) ObserveRead(startTimer time.Time) {
	select {
	case m.DatabaseRead <- float64(time.Since(startTimer).Microseconds()):
	default:
	}
}

func (m *Metric) ObserveWrite(startTimer time.Time) {
	select {
	case m.DatabaseWrite <- float64(time.Since(startTimer).Microseconds()):
	default:
	}
}
