package metrics

import (
	"fmt"
	"strings"
)

// Cfg configures the metrics HTTP endpoint, loaded under the "metrics" name.
type Cfg struct {
	// Addr is the listen address of the metrics endpoint.
	Addr string `mapstructure:"addr"`
	// Path is the HTTP path serving the Prometheus exposition.
	Path string `mapstructure:"path"`
	// ConsulAddr enables registration of the endpoint as a Consul service when set.
	ConsulAddr string `mapstructure:"consulAddr"`
	// ServiceName is the Consul service name.
	ServiceName string `mapstructure:"serviceName"`
	// ServiceID overrides the generated Consul service id.
	ServiceID string `mapstructure:"serviceID"`
}

// DefaultCfg returns the configuration used when no "metrics" file exists.
func DefaultCfg() *Cfg {
	return &Cfg{
		Addr:        ":9464",
		Path:        "/metrics",
		ServiceName: "mirror-metrics",
	}
}

// GetName implements config.Config.
func (c *Cfg) GetName() string {
	return "metrics"
}

// Validate implements config.Config.
func (c *Cfg) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr cannot be empty")
	}
	if c.Path == "" {
		c.Path = "/metrics"
	}
	if !strings.HasPrefix(c.Path, "/") {
		return fmt.Errorf("path %q must start with /", c.Path)
	}
	if c.ConsulAddr != "" && c.ServiceName == "" {
		return fmt.Errorf("serviceName cannot be empty when consulAddr is set")
	}
	return nil
}
