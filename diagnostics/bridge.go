package diagnostics

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/lcx/mirror/log"
	"github.com/lcx/mirror/metrics"
)

// Lifecycle is the transport resource a collector reports through. The
// bridge may start it after binding and stops it in Stop.
type Lifecycle interface {
	IsStarted() bool
	Init() error
	Shutdown()
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithCfg sets the bridge configuration. Nil keeps the defaults.
func WithCfg(cfg *Cfg) Option {
	return func(b *Bridge) {
		if cfg != nil {
			b.cfg = cfg
		}
	}
}

// WithTransport sets the transport managed by the bridge.
func WithTransport(l Lifecycle) Option {
	return func(b *Bridge) {
		b.transport = l
	}
}

// WithOpcodeFunc sets how message ids are derived from payloads. Without it
// the bridge calls an integer MsgType() method on the payload when present.
func WithOpcodeFunc(f func(payload any) int16) Option {
	return func(b *Bridge) {
		if f != nil {
			b.opcodeOf = f
		}
	}
}

// WithNameFunc sets how entry names are derived from payloads.
func WithNameFunc(f func(payload any) string) Option {
	return func(b *Bridge) {
		if f != nil {
			b.nameOf = f
		}
	}
}

// Bridge forwards traffic statistics to a collector. The collector is
// negotiated on first use; methods are safe for concurrent use and never
// fail or panic.
type Bridge struct {
	cfg       *Cfg
	transport Lifecycle
	opcodeOf  func(any) int16
	nameOf    func(any) string

	once    sync.Once
	binding binding

	stopMu sync.Mutex
}

// New creates a bridge. Nothing is probed until the first call.
func New(opts ...Option) *Bridge {
	b := &Bridge{
		cfg:      DefaultCfg(),
		opcodeOf: messageType,
		nameOf:   typeName,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Bridge) bound() binding {
	b.once.Do(b.negotiate)
	return b.binding
}

// negotiate probes the configured paths in order and binds the first
// collector found. A collector that fails to bind disables the bridge.
func (b *Bridge) negotiate() {
	b.binding = b.probe()

	if u, ok := b.binding.(unbound); ok {
		log.Warn().Str("reason", u.reason).Msg("diagnostics bridge disabled")
		metrics.IncrCounterWithDimGroup("diagnostics", "negotiation_total", 1,
			metrics.Dimension{"stage": StageNone.String(), "result": "unbound"})
		return
	}

	log.Info().Str("path", b.binding.path()).Stringer("stage", b.binding.stage()).
		Msg("diagnostics bridge bound")
	metrics.IncrCounterWithDimGroup("diagnostics", "negotiation_total", 1,
		metrics.Dimension{"stage": b.binding.stage().String(), "result": "bound"})

	if b.cfg.StartTransport && b.transport != nil && !b.transport.IsStarted() {
		if err := b.transport.Init(); err != nil {
			log.Error().Err(err).Msg("diagnostics transport init failed")
		}
	}
}

func (b *Bridge) probe() (result binding) {
	if !b.cfg.Enabled {
		return unbound{reason: "disabled by config"}
	}
	defer func() {
		if r := recover(); r != nil {
			result = unbound{reason: fmt.Sprintf("collector panicked during binding: %v", r)}
		}
	}()

	for _, path := range b.cfg.CollectorPaths {
		collector, ok := lookupCollector(path)
		if !ok {
			continue
		}
		bnd, err := bind(path, stageFor(path), collector)
		if err != nil {
			return unbound{reason: fmt.Sprintf("%s: %v", path, err)}
		}
		return bnd
	}
	return unbound{reason: "collector not found"}
}

// Bound reports whether a collector was bound.
func (b *Bridge) Bound() bool {
	return b.bound().stage() != StageNone
}

// Stage returns the API generation of the bound collector.
func (b *Bridge) Stage() Stage {
	return b.bound().stage()
}

// Reason returns why the bridge is disabled, or "" when bound.
func (b *Bridge) Reason() string {
	if u, ok := b.bound().(unbound); ok {
		return u.reason
	}
	return ""
}

// NewTick marks a profiling frame boundary.
func (b *Bridge) NewTick(t float32) {
	bnd := b.bound()
	if bnd.stage() == StageNone {
		return
	}
	defer guard("NewTick")
	bnd.newTick(t)
}

// SetStat records an absolute value for the entry (direction, msgID, name).
func (b *Bridge) SetStat(d Direction, msgID int16, name string, amount int) {
	bnd := b.bound()
	if bnd.stage() == StageNone || !d.valid() {
		return
	}
	defer guard("SetStat")
	bnd.setStat(d, msgID, name, amount)
}

// IncrementStat adds amount to the entry (direction, msgID, name).
func (b *Bridge) IncrementStat(d Direction, msgID int16, name string, amount int) {
	bnd := b.bound()
	if bnd.stage() == StageNone || !d.valid() {
		return
	}
	defer guard("IncrementStat")
	bnd.incrementStat(d, msgID, name, amount)
}

// SetMessageStat is SetStat keyed by the opcode and type name of payload.
func (b *Bridge) SetMessageStat(d Direction, payload any, amount int) {
	if !b.Bound() {
		return
	}
	b.SetStat(d, b.opcodeOf(payload), b.nameOf(payload), amount)
}

// IncrementMessageStat is IncrementStat keyed by the opcode and type name of payload.
func (b *Bridge) IncrementMessageStat(d Direction, payload any, amount int) {
	if !b.Bound() {
		return
	}
	b.IncrementStat(d, b.opcodeOf(payload), b.nameOf(payload), amount)
}

// ResetAll clears every entry of the collector.
func (b *Bridge) ResetAll() {
	bnd := b.bound()
	if bnd.stage() == StageNone {
		return
	}
	defer guard("ResetAll")
	bnd.resetAll()
}

// Stop resets the collector and shuts the transport down if it is running.
// Stopping again is a no-op.
func (b *Bridge) Stop() {
	b.ResetAll()

	b.stopMu.Lock()
	defer b.stopMu.Unlock()
	if b.transport == nil || !b.transport.IsStarted() {
		return
	}
	b.transport.Shutdown()
	log.Info().Msg("diagnostics transport stopped")
}

// messageType asks payload for its id through an integer MsgType() method,
// the shape shared by all reserved payloads. Anything else answers 0.
func messageType(payload any) (id int16) {
	v := reflect.ValueOf(payload)
	if !v.IsValid() || (v.Kind() == reflect.Pointer && v.IsNil()) {
		return 0
	}
	m := v.MethodByName("MsgType")
	if !m.IsValid() {
		return 0
	}
	mt := m.Type()
	if mt.NumIn() != 0 || mt.NumOut() != 1 || !isInt(mt.Out(0)) {
		return 0
	}
	defer func() {
		if recover() != nil {
			id = 0
		}
	}()
	return int16(m.Call(nil)[0].Int())
}

func typeName(payload any) string {
	t := reflect.TypeOf(payload)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	return t.Name()
}
