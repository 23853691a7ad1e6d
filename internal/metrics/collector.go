package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector tracks what the daemon is being asked to do and what came of it.
type Collector struct {
	requestsTotal     *prometheus.CounterVec
	connectsTotal     *prometheus.CounterVec
	disconnectsTotal  prometheus.Counter
	killswitchToggles *prometheus.CounterVec
	teardownRetries   prometheus.Counter
	connectionState   prometheus.Gauge
}

func NewCollector() *Collector {
	return &Collector{
		requestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tunneld_requests_total",
				Help: "Control socket requests by command",
			},
			[]string{"command"},
		),
		connectsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tunneld_connects_total",
				Help: "Connect attempts by outcome",
			},
			[]string{"outcome"},
		),
		disconnectsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "tunneld_disconnects_total",
				Help: "Completed disconnects",
			},
		),
		killswitchToggles: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tunneld_killswitch_toggles_total",
				Help: "Killswitch toggle requests by direction",
			},
			[]string{"enabled"},
		),
		teardownRetries: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "tunneld_teardown_retries_total",
				Help: "Teardown attempts that needed escalation",
			},
		),
		connectionState: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "tunneld_connection_state",
				Help: "1 while a tunnel is established, 0 otherwise",
			},
		),
	}
}

func (c *Collector) RecordRequest(command string) {
	c.requestsTotal.WithLabelValues(command).Inc()
}

func (c *Collector) RecordConnect(err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	c.connectsTotal.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordDisconnect() {
	c.disconnectsTotal.Inc()
}

func (c *Collector) RecordKillswitchToggle(enabled bool) {
	if enabled {
		c.killswitchToggles.WithLabelValues("true").Inc()
	} else {
		c.killswitchToggles.WithLabelValues("false").Inc()
	}
}

func (c *Collector) RecordTeardownRetry() {
	c.teardownRetries.Inc()
}

func (c *Collector) SetConnected(connected bool) {
	if connected {
		c.connectionState.Set(1)
	} else {
		c.connectionState.Set(0)
	}
}
