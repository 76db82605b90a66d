package metrics

import (
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/lcx/mirror/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric exported by this package.
const Namespace = "mirror"

var (
	_registry = prometheus.NewRegistry()

	_vecLock  sync.Mutex
	_counters = make(map[string]*prometheus.CounterVec)
	_gauges   = make(map[string]*prometheus.GaugeVec)
)

func init() {
	_registry.MustRegister(prometheus.NewGoCollector())
	_registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
}

// Registry returns the registry all package metrics are registered with.
func Registry() *prometheus.Registry {
	return _registry
}

// Handler returns an http.Handler exposing Registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(_registry, promhttp.HandlerOpts{})
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}

func labelKeys(dim Dimension) []string {
	keys := make([]string, 0, len(dim))
	for k := range dim {
		keys = append(keys, sanitize(k))
	}
	sort.Strings(keys)
	return keys
}

func labels(dim Dimension) prometheus.Labels {
	l := make(prometheus.Labels, len(dim))
	for k, v := range dim {
		l[sanitize(k)] = v
	}
	return l
}

// counterVec returns the counter for group/name, creating it with the label
// keys of dim on first use. Later calls must use the same label keys. It
// returns nil when the registry refuses the metric.
func counterVec(group, name string, dim Dimension) *prometheus.CounterVec {
	key := group + "/" + name

	_vecLock.Lock()
	defer _vecLock.Unlock()
	if c, ok := _counters[key]; ok {
		return c
	}
	c := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: sanitize(group),
		Name:      sanitize(name),
		Help:      group + " " + name,
	}, labelKeys(dim))
	if err := _registry.Register(c); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			log.Warn().Str("metric", key).Err(err).Msg("register metric failed")
			return nil
		}
		existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			log.Warn().Str("metric", key).Msg("metric registered with another type")
			return nil
		}
		c = existing
	}
	_counters[key] = c
	return c
}

func gaugeVec(group, name string, dim Dimension) *prometheus.GaugeVec {
	key := group + "/" + name

	_vecLock.Lock()
	defer _vecLock.Unlock()
	if g, ok := _gauges[key]; ok {
		return g
	}
	g := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Subsystem: sanitize(group),
		Name:      sanitize(name),
		Help:      group + " " + name,
	}, labelKeys(dim))
	if err := _registry.Register(g); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			log.Warn().Str("metric", key).Err(err).Msg("register metric failed")
			return nil
		}
		existing, ok := are.ExistingCollector.(*prometheus.GaugeVec)
		if !ok {
			log.Warn().Str("metric", key).Msg("metric registered with another type")
			return nil
		}
		g = existing
	}
	_gauges[key] = g
	return g
}

// IncrCounterWithGroup adds v to the counter group/name.
func IncrCounterWithGroup(group, name string, v Value) {
	IncrCounterWithDimGroup(group, name, v, nil)
}

// IncrCounterWithDimGroup adds v to the counter group/name with the given dimensions.
// Negative values are ignored. A dimension set that does not match the first
// use of the counter is dropped.
func IncrCounterWithDimGroup(group, name string, v Value, dim Dimension) {
	if v < 0 {
		return
	}
	vec := counterVec(group, name, dim)
	if vec == nil {
		return
	}
	c, err := vec.GetMetricWith(labels(dim))
	if err != nil {
		return
	}
	c.Add(float64(v))
}

// UpdateGaugeWithGroup sets the gauge group/name to v.
func UpdateGaugeWithGroup(group, name string, v Value) {
	UpdateGaugeWithDimGroup(group, name, v, nil)
}

// UpdateGaugeWithDimGroup sets the gauge group/name with the given dimensions to v.
func UpdateGaugeWithDimGroup(group, name string, v Value, dim Dimension) {
	vec := gaugeVec(group, name, dim)
	if vec == nil {
		return
	}
	g, err := vec.GetMetricWith(labels(dim))
	if err != nil {
		return
	}
	g.Set(float64(v))
}
