package diagnostics

import (
	"fmt"

	"github.com/lcx/mirror/config"
	"github.com/lcx/mirror/log"
)

// Cfg is loaded under the "diagnostics" name.
type Cfg struct {
	Enabled bool `mapstructure:"enabled"`
	// CollectorPaths are probed in order; the first provided one is bound.
	CollectorPaths []string `mapstructure:"collectorPaths"`
	// StartTransport initializes the transport once a collector is bound.
	StartTransport bool `mapstructure:"startTransport"`
}

// DefaultCfg probes the current then the legacy collector path.
func DefaultCfg() *Cfg {
	return &Cfg{
		Enabled:        true,
		CollectorPaths: []string{CurrentCollectorPath, LegacyCollectorPath},
	}
}

// GetName implements config.Config.
func (c *Cfg) GetName() string {
	return "diagnostics"
}

// Validate implements config.Config.
func (c *Cfg) Validate() error {
	if len(c.CollectorPaths) == 0 {
		c.CollectorPaths = DefaultCfg().CollectorPaths
	}
	for i, p := range c.CollectorPaths {
		if p == "" {
			return fmt.Errorf("collectorPaths[%d] is empty", i)
		}
	}
	return nil
}

// LoadCfg loads the "diagnostics" config from cm, falling back to DefaultCfg.
func LoadCfg(cm config.ConfigManager) *Cfg {
	if cm == nil {
		return DefaultCfg()
	}
	cfg := DefaultCfg()
	if err := cm.LoadConfig(cfg.GetName(), cfg); err != nil {
		log.Info().Err(err).Msg("diagnostics config not loaded, using defaults")
		return DefaultCfg()
	}
	return cfg
}
