package log

import (
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lcx/mirror/config"
)

// GameLogger provides a thread-safe logging interface with configurable appenders.
// Events are pooled so the hot path does not allocate, and the minimum level
// can be changed at runtime through the config manager.
//
// Example usage:
//
//	logger := NewLogger(&LogCfg{LogLevel: InfoLevel, ConsoleAppender: true})
//	logger.Info().Str("stage", "current").Int("paths", 2).Msg("diagnostics bound")
type GameLogger struct {
	appenders         []LogAppender
	minLevel          atomic.Uint32
	callerSkip        int
	eventPool         *sync.Pool
	callerCache       sync.Map
	enabledCallerInfo atomic.Bool
	configMutex       sync.RWMutex
	currentConfig     *LogCfg
}

// NewLogger creates a new GameLogger instance with the provided configuration.
// If cfg is nil, it uses default configuration values.
func NewLogger(cfg *LogCfg) *GameLogger {
	if cfg == nil {
		cfg = getDefaultCfg()
	}

	logger := &GameLogger{
		callerSkip:    cfg.CallerSkip,
		currentConfig: cfg,
	}
	logger.minLevel.Store(uint32(cfg.LogLevel))
	logger.enabledCallerInfo.Store(cfg.EnabledCallerInfo)

	logger.eventPool = &sync.Pool{
		New: func() any {
			return newEvent(logger)
		},
	}

	if cfg.FileAppender {
		logger.AddAppender(NewFileAppender(cfg))
	}

	if cfg.ConsoleAppender {
		logger.AddAppender(NewConsoleAppender())
	}

	return logger
}

// NewLoggerWithConfigManager creates a GameLogger that follows hot reloads of
// the "logger" configuration.
func NewLoggerWithConfigManager(cfg *LogCfg, configManager config.ConfigManager) *GameLogger {
	logger := NewLogger(cfg)
	if configManager != nil {
		configManager.AddChangeListener(logger)
	}
	return logger
}

// OnConfigChanged implements config.ConfigChangeListener.
func (x *GameLogger) OnConfigChanged(configName string, newConfig, oldConfig config.Config) error {
	if configName != "logger" {
		return nil
	}

	newLogCfg, ok := newConfig.(*LogCfg)
	if !ok {
		return nil
	}

	x.updateConfig(newLogCfg)
	return nil
}

// updateConfig swaps level and caller settings. Appenders are kept.
func (x *GameLogger) updateConfig(newCfg *LogCfg) {
	x.configMutex.Lock()
	defer x.configMutex.Unlock()

	x.minLevel.Store(uint32(newCfg.LogLevel))
	x.enabledCallerInfo.Store(newCfg.EnabledCallerInfo)
	x.currentConfig = newCfg

	x.Refresh()
}

// GetCurrentConfig returns the current logger configuration.
func (x *GameLogger) GetCurrentConfig() *LogCfg {
	x.configMutex.RLock()
	defer x.configMutex.RUnlock()
	return x.currentConfig
}

// SetLevel changes the minimum level.
func (x *GameLogger) SetLevel(level Level) {
	x.minLevel.Store(uint32(level))
}

func (x *GameLogger) checkLevel(level Level) bool {
	return Level(x.minLevel.Load()) <= level
}

// AddAppender adds a new log appender to the logger.
func (x *GameLogger) AddAppender(appender LogAppender) {
	x.appenders = append(x.appenders, appender)
}

// GetAppender returns the appenders registered with the logger.
func (x *GameLogger) GetAppender() []LogAppender {
	return x.appenders
}

// Refresh flushes every appender.
func (x *GameLogger) Refresh() {
	for _, appender := range x.appenders {
		appender.Refresh()
	}
}

// IgnoreCheckLevel always returns false for GameLogger.
func (x *GameLogger) IgnoreCheckLevel() bool {
	return false
}

func (x *GameLogger) newEvent() *LogEvent {
	e := x.eventPool.Get().(*LogEvent)
	e.Reset()
	return e
}

// OnEventEnd writes the finished event to every appender and returns it to the pool.
// Fatal events panic after being written.
func (x *GameLogger) OnEventEnd(e *LogEvent) {
	for _, appender := range x.appenders {
		_, _ = appender.Write(e.buf.Bytes())
	}

	if e.level == FatalLevel {
		panic(e.buf.String())
	}

	x.eventPool.Put(e)
}

// Debug creates a new debug-level log event, or nil when filtered.
func (x *GameLogger) Debug() *LogEvent {
	return x.log(DebugLevel)
}

// Info creates a new info-level log event, or nil when filtered.
func (x *GameLogger) Info() *LogEvent {
	return x.log(InfoLevel)
}

// Warn creates a new warn-level log event, or nil when filtered.
func (x *GameLogger) Warn() *LogEvent {
	return x.log(WarnLevel)
}

// Error creates a new error-level log event, or nil when filtered.
func (x *GameLogger) Error() *LogEvent {
	return x.log(ErrorLevel)
}

// Fatal creates a new fatal-level log event. The logger panics once it is written.
func (x *GameLogger) Fatal() *LogEvent {
	return x.log(FatalLevel)
}

// getCallerInfo returns "dir/file.go:line" for the logging call site.
func (x *GameLogger) getCallerInfo() string {
	pc, file, line, ok := runtime.Caller(3 + x.callerSkip)
	if !ok {
		return "unknown"
	}

	if cached, found := x.callerCache.Load(pc); found {
		return cached.(string)
	}

	if lastSlash := strings.LastIndexByte(file, '/'); lastSlash > 0 {
		if secondLastSlash := strings.LastIndexByte(file[:lastSlash], '/'); secondLastSlash >= 0 {
			file = file[secondLastSlash+1:]
		}
	}

	c := file + ":" + strconv.Itoa(line)
	x.callerCache.Store(pc, c)
	return c
}

func (x *GameLogger) log(level Level) *LogEvent {
	if !x.IgnoreCheckLevel() && !x.checkLevel(level) {
		return nil
	}

	e := x.newEvent()
	e.level = level

	t := time.Now()
	e.Time("time", &t)
	e.Str("level", level.String())

	if x.enabledCallerInfo.Load() {
		e.Str("caller", x.getCallerInfo())
	}

	return e
}
