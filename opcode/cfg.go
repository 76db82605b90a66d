package opcode

// Cfg is loaded under the "opcode" name.
type Cfg struct {
	Scheme string `mapstructure:"scheme"`
}

// GetName implements config.Config.
func (c *Cfg) GetName() string {
	return "opcode"
}

// Validate implements config.Config.
func (c *Cfg) Validate() error {
	_, err := ParseScheme(c.Scheme)
	return err
}

// NewRegistryFromCfg builds a registry for cfg. A nil cfg gives the legacy scheme.
func NewRegistryFromCfg(cfg *Cfg) (*Registry, error) {
	if cfg == nil {
		return NewRegistry(SchemeLegacy), nil
	}
	scheme, err := ParseScheme(cfg.Scheme)
	if err != nil {
		return nil, err
	}
	return NewRegistry(scheme), nil
}
