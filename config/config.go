package config

// Config interface defines the basic configuration contract
type Config interface {
	GetName() string
	Validate() error
}

// ConfigChangeListener receives a notification after a watched configuration
// has been reloaded, validated and swapped in.
type ConfigChangeListener interface {
	OnConfigChanged(configName string, newConfig, oldConfig Config) error
}
