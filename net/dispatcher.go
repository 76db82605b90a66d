package net

import (
	"errors"
	"fmt"
	"sync"

	"github.com/lcx/mirror/config"
	"github.com/lcx/mirror/diagnostics"
	"github.com/lcx/mirror/log"
	"github.com/lcx/mirror/metrics"
	"github.com/lcx/mirror/opcode"
)

var (
	ErrNoHandler     = errors.New("no handler for message")
	ErrNoSender      = errors.New("delivery has no sender")
	ErrUnclassified  = errors.New("payload has no opcode")
	ErrHandlerExists = errors.New("handler already registered")
)

// DispatcherConfig is loaded under the "dispatcher" name.
type DispatcherConfig struct {
	// RecvRateLimit frames per second accepted by the token bucket.
	RecvRateLimit int `mapstructure:"recvRateLimit"`
	TokenBurst    int `mapstructure:"tokenBurst"`
	// FunnelLimit spaces frames evenly when positive.
	FunnelLimit int `mapstructure:"funnelLimit"`
	// MsgFilter opcodes dropped on receive.
	MsgFilter []int16 `mapstructure:"msgFilter"`
	// MaxChannel highest channel id accepted from the transport.
	MaxChannel int `mapstructure:"maxChannel"`
}

// DefaultDispatcherConfig is used when no "dispatcher" file exists.
func DefaultDispatcherConfig() *DispatcherConfig {
	return &DispatcherConfig{
		RecvRateLimit: 10000,
		TokenBurst:    1000,
		MaxChannel:    int(DefaultUnreliable),
	}
}

// GetName implements config.Config.
func (c *DispatcherConfig) GetName() string {
	return "dispatcher"
}

// Validate implements config.Config.
func (c *DispatcherConfig) Validate() error {
	if c.RecvRateLimit <= 0 {
		return fmt.Errorf("RecvRateLimit must be positive")
	}
	if c.TokenBurst <= 0 {
		return fmt.Errorf("TokenBurst must be positive")
	}
	if c.RecvRateLimit > 1000000 {
		return fmt.Errorf("RecvRateLimit cannot exceed 1,000,000 messages per second")
	}
	if c.TokenBurst > c.RecvRateLimit*10 {
		return fmt.Errorf("TokenBurst cannot exceed 10 times RecvRateLimit")
	}
	if c.FunnelLimit < 0 {
		return fmt.Errorf("FunnelLimit cannot be negative")
	}
	if c.MaxChannel < 0 || c.MaxChannel > int(MaxChannel) {
		return fmt.Errorf("MaxChannel must be in [0,%d]", MaxChannel)
	}
	return nil
}

type handlerEntry struct {
	name   string
	handle MessageHandlerFunc
}

// Dispatcher routes received frames to handlers by opcode and reports every
// message in both directions to the diagnostics bridge.
type Dispatcher struct {
	handlers     map[opcode.MsgType]handlerEntry
	recvLimiter  *DispatcherRecvLimiter
	funnel       *FunnelRecvLimiter
	filters      DispatcherFilterChain
	msgFilterMap map[opcode.MsgType]struct{}
	registry     *opcode.Registry
	bridge       *diagnostics.Bridge
	config       *DispatcherConfig
	lock         sync.RWMutex
}

// NewDispatcher creates a dispatcher. A nil registry or bridge uses the
// process-wide default.
func NewDispatcher(cfg *DispatcherConfig, registry *opcode.Registry, bridge *diagnostics.Bridge) (*Dispatcher, error) {
	if cfg == nil {
		return nil, errors.New("DispatcherConfig cannot be nil, use NewDispatcherWithConfigManager for dynamic configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dispatcher configuration: %w", err)
	}
	if registry == nil {
		registry = opcode.Default()
	}
	if bridge == nil {
		bridge = diagnostics.Default()
	}

	d := &Dispatcher{
		handlers:    make(map[opcode.MsgType]handlerEntry),
		recvLimiter: NewTokenRecvLimiter(cfg.RecvRateLimit, cfg.TokenBurst),
		funnel:      NewFunnelRecvLimiter(cfg.FunnelLimit),
		registry:    registry,
		bridge:      bridge,
		config:      cfg,
	}
	d.reloadMsgFilterCfg(cfg.MsgFilter)

	d.filters = append(d.filters, d.msgFilter)
	d.filters = append(d.filters, d.recvLimiter.recvLimiterFilter)
	d.filters = append(d.filters, d.funnel.funnelFilter)

	return d, nil
}

// NewDispatcherWithConfigManager loads the "dispatcher" config from
// configManager and follows its reloads.
func NewDispatcherWithConfigManager(configManager config.ConfigManager, registry *opcode.Registry, bridge *diagnostics.Bridge) (*Dispatcher, error) {
	if configManager == nil {
		return nil, errors.New("configManager cannot be nil")
	}

	cfg := DefaultDispatcherConfig()
	if err := configManager.LoadConfig(cfg.GetName(), cfg); err != nil {
		return nil, fmt.Errorf("failed to load dispatcher config: %w", err)
	}

	d, err := NewDispatcher(cfg, registry, bridge)
	if err != nil {
		return nil, err
	}
	configManager.AddChangeListener(d)
	return d, nil
}

// OnConfigChanged implements config.ConfigChangeListener.
func (d *Dispatcher) OnConfigChanged(configName string, newConfig, oldConfig config.Config) error {
	if configName != "dispatcher" {
		return nil
	}

	newCfg, ok := newConfig.(*DispatcherConfig)
	if !ok {
		return fmt.Errorf("invalid configuration type for Dispatcher")
	}

	if err := newCfg.Validate(); err != nil {
		return fmt.Errorf("invalid dispatcher configuration: %w", err)
	}

	d.lock.Lock()
	defer d.lock.Unlock()

	d.recvLimiter.Reload(newCfg.RecvRateLimit, newCfg.TokenBurst)
	d.funnel.Reload(newCfg.FunnelLimit)
	d.reloadMsgFilterCfg(newCfg.MsgFilter)
	d.config = newCfg

	log.Info().Str("configName", configName).Int("recvRateLimit", newCfg.RecvRateLimit).
		Msg("Dispatcher configuration updated successfully")
	return nil
}

// Config returns the active configuration.
func (d *Dispatcher) Config() *DispatcherConfig {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return d.config
}

// RegDispatcherFilter appends f to the filter chain. Not safe once frames flow.
func (d *Dispatcher) RegDispatcherFilter(f DispatcherFilter) {
	d.filters = append(d.filters, f)
}

// RegisterHandler routes messages with the opcode of payload to h. Public
// system messages may be registered again to replace their handler; every
// other opcode may be registered once.
func (d *Dispatcher) RegisterHandler(payload any, h MessageHandlerFunc) error {
	if h == nil {
		return errors.New("RegisterHandler handler is nil")
	}
	t := d.registry.Lookup(payload)
	if t == opcode.Unclassified {
		return fmt.Errorf("%w: %T", ErrUnclassified, payload)
	}

	d.lock.Lock()
	defer d.lock.Unlock()
	if _, ok := d.handlers[t]; ok && !t.IsPublic() {
		return fmt.Errorf("%w: %s", ErrHandlerExists, t)
	}
	d.handlers[t] = handlerEntry{name: d.registry.Name(payload), handle: h}
	return nil
}

// UnregisterHandler removes the handler for the opcode of payload.
func (d *Dispatcher) UnregisterHandler(payload any) {
	t := d.registry.Lookup(payload)
	d.lock.Lock()
	defer d.lock.Unlock()
	delete(d.handlers, t)
}

func (d *Dispatcher) handler(t opcode.MsgType) (handlerEntry, bool) {
	d.lock.RLock()
	defer d.lock.RUnlock()
	h, ok := d.handlers[t]
	return h, ok
}

func (d *Dispatcher) maxChannel() Channel {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return Channel(d.config.MaxChannel)
}

// OnRecv decodes a frame from the transport and dispatches it. from may be nil.
func (d *Dispatcher) OnRecv(frame []byte, from Sender) error {
	hdr, body, err := Unpack(frame)
	if err != nil {
		metrics.IncrCounterWithGroup("net", "recv_bad_frame_total", 1)
		return err
	}
	if err := hdr.Channel.Validate(d.maxChannel()); err != nil {
		metrics.IncrCounterWithGroup("net", "recv_bad_frame_total", 1)
		return err
	}
	return d.Dispatch(&Delivery{Header: hdr, Body: body, From: from})
}

// Dispatch runs a decoded delivery through the filters to its handler.
func (d *Dispatcher) Dispatch(dd *Delivery) error {
	return d.filters.Handle(dd, d.handleMsgImpl)
}

func (d *Dispatcher) handleMsgImpl(dd *Delivery) error {
	t := dd.Header.MsgType
	h, ok := d.handler(t)
	if !ok {
		metrics.IncrCounterWithGroup("net", "recv_unhandled_total", 1)
		return fmt.Errorf("%w: %s", ErrNoHandler, t)
	}

	d.bridge.IncrementStat(diagnostics.Incoming, int16(t), h.name, 1)
	metrics.IncrCounterWithDimGroup("net", "recv_total", 1, metrics.Dimension{"msg": h.name})
	dd.dispatcher = d
	return h.handle(dd)
}

// Send frames body with the opcode of payload and writes it to s on ch.
func (d *Dispatcher) Send(s Sender, ch Channel, payload any, body []byte) error {
	t := d.registry.Lookup(payload)
	if t == opcode.Unclassified {
		return fmt.Errorf("%w: %T", ErrUnclassified, payload)
	}
	frame, err := Pack(t, ch, body)
	if err != nil {
		return err
	}
	if err := s.Send(ch, frame); err != nil {
		return fmt.Errorf("send %s failed: %w", t, err)
	}

	name := d.registry.Name(payload)
	d.bridge.IncrementStat(diagnostics.Outgoing, int16(t), name, 1)
	metrics.IncrCounterWithDimGroup("net", "send_total", 1, metrics.Dimension{"msg": name})
	return nil
}
