package log

import "fmt"

// LogCfg represents the logging configuration loaded under the "logger" name.
// It controls the minimum level, the output destinations and file rotation.
type LogCfg struct {
	// LogPath specifies the target log file path for file-based logging.
	LogPath string `mapstructure:"path"`

	// LogLevel defines the minimum log level (0=Trace ... 5=Fatal).
	// Supports hot-reload without service restart.
	LogLevel Level `mapstructure:"level"`

	// FileSplitMB determines the file rotation threshold in megabytes.
	// Zero disables size based rotation.
	FileSplitMB int `mapstructure:"splitmb"`

	// CallerSkip specifies the number of stack frames to skip for caller information.
	CallerSkip int `mapstructure:"callerSkip"`

	// FileAppender enables file-based logging output.
	FileAppender bool `mapstructure:"fileAppender"`

	// ConsoleAppender enables console (stdout) logging output.
	ConsoleAppender bool `mapstructure:"consoleAppender"`

	EnabledCallerInfo bool `mapstructure:"enabledCallerInfo"`
}

// GetName implements config.Config.
func (cfg *LogCfg) GetName() string {
	return "logger"
}

// Validate implements config.Config.
func (cfg *LogCfg) Validate() error {
	if cfg.LogLevel > FatalLevel {
		return fmt.Errorf("invalid log level %d", cfg.LogLevel)
	}
	if cfg.FileAppender && cfg.LogPath == "" {
		return fmt.Errorf("path cannot be empty when fileAppender is enabled")
	}
	if cfg.FileSplitMB < 0 {
		return fmt.Errorf("splitmb cannot be negative")
	}
	return nil
}

var _defaultCfg = &LogCfg{
	LogPath:         "./mirror.log",
	LogLevel:        DebugLevel,
	FileSplitMB:     50,
	CallerSkip:      1,
	FileAppender:    false,
	ConsoleAppender: true,
}

func getDefaultCfg() *LogCfg {
	return _defaultCfg
}
