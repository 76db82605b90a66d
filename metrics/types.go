// Package metrics exports process and traffic metrics through Prometheus.
package metrics

// Policy defines how repeated reports of the same metric are combined.
type Policy int

const (
	PolicyNone      Policy = iota // No specific policy specified
	PolicySet                     // Instantaneous value - last value wins
	PolicySum                     // Sum of all values
	PolicyAvg                     // Average of all values
	PolicyMax                     // Maximum value
	PolicyMin                     // Minimum value
	PolicyMid                     // Median value
	PolicyStopwatch               // Timer - measures duration
	PolicyHistogram               // Histogram statistics
)

var _policyNames = [...]string{"none", "set", "sum", "avg", "max", "min", "mid", "stopwatch", "histogram"}

func (p Policy) String() string {
	if p >= 0 && int(p) < len(_policyNames) {
		return _policyNames[p]
	}
	return "unknown"
}

// Value represents a metric value as a float64.
type Value float64

// Dimension represents metric dimensions as key-value pairs, exported as
// Prometheus labels.
type Dimension map[string]string

// Report records v for group/name according to p. PolicySum maps to a
// counter and PolicySet to a gauge; other policies are not exported.
func Report(group, name string, v Value, p Policy, dim Dimension) bool {
	switch p {
	case PolicySum:
		IncrCounterWithDimGroup(group, name, v, dim)
	case PolicySet:
		UpdateGaugeWithDimGroup(group, name, v, dim)
	default:
		return false
	}
	return true
}
