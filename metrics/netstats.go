package metrics

import (
	"math"
	"strconv"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// NetDirection is the traffic direction enumeration of NetStats.
type NetDirection int

const (
	NetIncoming NetDirection = iota
	NetOutgoing
)

func (d NetDirection) String() string {
	switch d {
	case NetIncoming:
		return "incoming"
	case NetOutgoing:
		return "outgoing"
	default:
		return "unknown"
	}
}

// NetStats is a per-message traffic collector backed by Prometheus gauges.
// Its method set is the detail stats shape the diagnostics bridge probes for:
// NewProfilerTick, SetStat, IncrementStat, ResetAll and NetworkDirections.
type NetStats struct {
	entries  *prometheus.GaugeVec
	ticks    prometheus.Counter
	lastTick atomic.Uint32
}

// NewNetStats creates a collector and registers it with reg. A nil reg uses Registry().
func NewNetStats(reg prometheus.Registerer) (*NetStats, error) {
	if reg == nil {
		reg = _registry
	}
	s := &NetStats{
		entries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "netstats",
			Name:      "message_entries",
			Help:      "Per message traffic counters reported through the diagnostics bridge.",
		}, []string{"direction", "msg_id", "name"}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "netstats",
			Name:      "profiler_ticks_total",
			Help:      "Profiler frame boundaries observed.",
		}),
	}
	if err := reg.Register(s.entries); err != nil {
		return nil, err
	}
	if err := reg.Register(s.ticks); err != nil {
		reg.Unregister(s.entries)
		return nil, err
	}
	return s, nil
}

// NetworkDirections lists the direction values, incoming first.
func (s *NetStats) NetworkDirections() []NetDirection {
	return []NetDirection{NetIncoming, NetOutgoing}
}

// NewProfilerTick marks a new profiling frame.
func (s *NetStats) NewProfilerTick(newTime float32) {
	s.lastTick.Store(math.Float32bits(newTime))
	s.ticks.Inc()
}

// LastTick returns the time passed to the latest NewProfilerTick.
func (s *NetStats) LastTick() float32 {
	return math.Float32frombits(s.lastTick.Load())
}

func (s *NetStats) gauge(direction NetDirection, msgID int16, entryName string) prometheus.Gauge {
	return s.entries.WithLabelValues(direction.String(), strconv.Itoa(int(msgID)), entryName)
}

// SetStat records an absolute value for the entry.
func (s *NetStats) SetStat(direction NetDirection, msgID int16, entryName string, amount int) {
	s.gauge(direction, msgID, entryName).Set(float64(amount))
}

// IncrementStat adds amount to the entry.
func (s *NetStats) IncrementStat(direction NetDirection, msgID int16, entryName string, amount int) {
	s.gauge(direction, msgID, entryName).Add(float64(amount))
}

// ResetAll drops every entry.
func (s *NetStats) ResetAll() {
	s.entries.Reset()
}
