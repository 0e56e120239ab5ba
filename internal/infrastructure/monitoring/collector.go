package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector exposes the relay's Prometheus metrics.
type Collector struct {
	connectionsActive prometheus.Gauge
	connectionsTotal  prometheus.Counter

	participantsJoinedTotal *prometheus.CounterVec
	messagesReceivedTotal   *prometheus.CounterVec
	messagesRejectedTotal   *prometheus.CounterVec
}

func NewCollector() *Collector {
	return NewCollectorWith(prometheus.DefaultRegisterer)
}

// NewCollectorWith registers the metrics against reg instead of the default
// registry, which lets tests build isolated collectors.
func NewCollectorWith(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		connectionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "aircast_connections_active",
			Help: "Number of currently open signaling connections",
		}),

		connectionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "aircast_connections_total",
			Help: "Total number of signaling connections accepted",
		}),

		participantsJoinedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aircast_participants_joined_total",
			Help: "Total number of join events by participant role",
		}, []string{"role"}),

		messagesReceivedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aircast_messages_received_total",
			Help: "Total number of inbound signaling messages by event",
		}, []string{"event"}),

		messagesRejectedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aircast_messages_rejected_total",
			Help: "Total number of inbound messages dropped, by reason",
		}, []string{"reason"}),
	}
}

func (c *Collector) ConnectionOpened() {
	c.connectionsTotal.Inc()
	c.connectionsActive.Inc()
}

func (c *Collector) ConnectionClosed() {
	c.connectionsActive.Dec()
}

func (c *Collector) ParticipantJoined(role string) {
	c.participantsJoinedTotal.WithLabelValues(role).Inc()
}

func (c *Collector) MessageReceived(event string) {
	c.messagesReceivedTotal.WithLabelValues(event).Inc()
}

func (c *Collector) MessageRejected(reason string) {
	c.messagesRejectedTotal.WithLabelValues(reason).Inc()
}
