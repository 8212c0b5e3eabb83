// ABOUTME: Prometheus counter for participant portal modification requests.
// ABOUTME: Labelled by result.

package portal

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var modificationRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "console_portal_modification_requests_total",
		Help: "Total number of participant portal modification requests by result.",
	},
	[]string{"result"},
)
