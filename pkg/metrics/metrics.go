package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records staff authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "festivo_auth_attempts_total",
			Help: "Total number of staff authentication attempts",
		},
		[]string{"result"},
	)

	// RSVPSubmissions counts RSVP submissions by outcome status (confirmed|declined|rejected).
	RSVPSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "festivo_rsvp_submissions_total",
			Help: "Total number of RSVP submissions",
		},
		[]string{"status"},
	)

	// SongRequests counts song suggestion submissions by result (accepted|rejected).
	SongRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "festivo_song_requests_total",
			Help: "Total number of song request submissions",
		},
		[]string{"result"},
	)

	// SongVotes counts votes recorded against song requests.
	SongVotes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "festivo_song_votes_total",
			Help: "Total number of song request votes recorded",
		},
	)

	// OutboundSends counts invitations marked as sent by staff.
	OutboundSends = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "festivo_outbound_sends_total",
			Help: "Total number of invitations marked as sent",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "festivo_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
