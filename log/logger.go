package log

import (
	"sync/atomic"

	"github.com/lcx/mirror/config"
)

type Logger interface {
	Debug() *LogEvent
	Info() *LogEvent
	Warn() *LogEvent
	Error() *LogEvent
	Fatal() *LogEvent
	IgnoreCheckLevel() bool
	GetAppender() []LogAppender
	AddAppender(appender LogAppender)
	OnEventEnd(e *LogEvent)
}

var _defaultLogger atomic.Pointer[GameLogger]

func init() {
	_defaultLogger.Store(NewLogger(nil))
}

// AddAppender adds a new log appender to the default logger.
func AddAppender(appender LogAppender) {
	_defaultLogger.Load().AddAppender(appender)
}

// Refresh flushes the appenders of the default logger.
func Refresh() {
	_defaultLogger.Load().Refresh()
}

// SetDefaultLogger replaces the default logger used by the package-level functions.
func SetDefaultLogger(logger *GameLogger) {
	if logger == nil {
		return
	}
	_defaultLogger.Store(logger)
}

// DefaultLogger returns the logger used by the package-level functions.
func DefaultLogger() *GameLogger {
	return _defaultLogger.Load()
}

// InitializeWithConfigManager loads the "logger" configuration and installs a
// hot-reloadable default logger built from it.
func InitializeWithConfigManager(configManager config.ConfigManager) error {
	if configManager == nil {
		return nil
	}

	logCfg := &LogCfg{}
	if err := configManager.LoadConfig("logger", logCfg); err != nil {
		return err
	}

	SetDefaultLogger(NewLoggerWithConfigManager(logCfg, configManager))
	return nil
}

// Initialize initializes the default logger from the singleton ConfigManager.
func Initialize() error {
	return InitializeWithConfigManager(config.GetInstance())
}

// Debug creates a new debug-level log event using the default logger.
func Debug() *LogEvent {
	return _defaultLogger.Load().Debug()
}

// Info creates a new info-level log event using the default logger.
func Info() *LogEvent {
	return _defaultLogger.Load().Info()
}

// Warn creates a new warn-level log event using the default logger.
func Warn() *LogEvent {
	return _defaultLogger.Load().Warn()
}

// Error creates a new error-level log event using the default logger.
func Error() *LogEvent {
	return _defaultLogger.Load().Error()
}

// Fatal creates a new fatal-level log event using the default logger.
func Fatal() *LogEvent {
	return _defaultLogger.Load().Fatal()
}
