// Package observability exposes Prometheus metrics for the occupancy core.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	checkInsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gympulse",
		Subsystem: "checkin",
		Name:      "submissions_total",
		Help:      "Check-in submissions by outcome.",
	}, []string{"outcome"})

	refreshDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gympulse",
		Subsystem: "refresh",
		Name:      "fetch_duration_seconds",
		Help:      "Duration of sensor feed fetches.",
		Buckets:   prometheus.DefBuckets,
	})

	refreshFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gympulse",
		Subsystem: "refresh",
		Name:      "fetch_failures_total",
		Help:      "Sensor feed fetches that failed after retries.",
	})

	lastRefreshGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gympulse",
		Subsystem: "refresh",
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix timestamp of the most recent successful refresh sweep.",
	})

	occupancyGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "gympulse",
		Subsystem: "occupancy",
		Name:      "live_percentage",
		Help:      "Latest blended occupancy percentage per gym.",
	}, []string{"gym_id"})
)

func init() {
	prometheus.MustRegister(
		checkInsTotal,
		refreshDuration,
		refreshFailures,
		lastRefreshGauge,
		occupancyGauge,
	)
}

// RecordCheckIn counts a submission outcome: "accepted" or a rejection reason.
func RecordCheckIn(outcome string) {
	checkInsTotal.WithLabelValues(outcome).Inc()
}

// RecordFetch observes one sensor feed fetch.
func RecordFetch(d time.Duration, err error) {
	refreshDuration.Observe(d.Seconds())
	if err != nil {
		refreshFailures.Inc()
	}
}

// RecordRefreshSuccess moves the refresh watermark.
func RecordRefreshSuccess(ts time.Time) {
	if ts.IsZero() {
		return
	}
	lastRefreshGauge.Set(float64(ts.Unix()))
}

// RecordOccupancy publishes the latest blended percentage for a gym.
func RecordOccupancy(gymID string, percentage int) {
	occupancyGauge.WithLabelValues(gymID).Set(float64(percentage))
}
