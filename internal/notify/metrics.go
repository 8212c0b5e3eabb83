// ABOUTME: Prometheus counter for notifications shown to users.
// ABOUTME: Labelled by severity.

package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var notificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "console_notifications_total",
		Help: "Total number of notifications shown by severity.",
	},
	[]string{"severity"},
)
