package diagnostics

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/lcx/mirror/log"
)

// DetailStats is the typed collector API. Collectors implementing it are
// called directly; any other collector is bound by method name.
type DetailStats interface {
	NewProfilerTick(newTime float32)
	SetStat(direction Direction, msgID int16, entryName string, amount int)
	IncrementStat(direction Direction, msgID int16, entryName string, amount int)
	ResetAll()
}

// Entry points resolved on a collector.
const (
	methodNewProfilerTick   = "NewProfilerTick"
	methodSetStat           = "SetStat"
	methodIncrementStat     = "IncrementStat"
	methodResetAll          = "ResetAll"
	methodNetworkDirections = "NetworkDirections"
)

// binding is the result of negotiation: unbound, typedBinding or
// *reflectBinding. It never changes after the bridge has negotiated.
type binding interface {
	stage() Stage
	path() string
	newTick(t float32)
	setStat(d Direction, msgID int16, name string, amount int)
	incrementStat(d Direction, msgID int16, name string, amount int)
	resetAll()
}

type unbound struct {
	reason string
}

func (unbound) stage() Stage                                { return StageNone }
func (unbound) path() string                                { return "" }
func (unbound) newTick(float32)                             {}
func (unbound) setStat(Direction, int16, string, int)       {}
func (unbound) incrementStat(Direction, int16, string, int) {}
func (unbound) resetAll()                                   {}

type typedBinding struct {
	at    string
	st    Stage
	stats DetailStats
}

func (b typedBinding) stage() Stage      { return b.st }
func (b typedBinding) path() string      { return b.at }
func (b typedBinding) newTick(t float32) { b.stats.NewProfilerTick(t) }
func (b typedBinding) resetAll()         { b.stats.ResetAll() }

func (b typedBinding) setStat(d Direction, msgID int16, name string, amount int) {
	b.stats.SetStat(d, msgID, name, amount)
}

func (b typedBinding) incrementStat(d Direction, msgID int16, name string, amount int) {
	b.stats.IncrementStat(d, msgID, name, amount)
}

// reflectBinding calls collector methods through reflect. The argument values
// are allocated once and overwritten in place for every call.
type reflectBinding struct {
	at string
	st Stage

	directions [2]reflect.Value
	tick       reflect.Value
	set        reflect.Value
	incr       reflect.Value
	reset      reflect.Value

	mu       sync.Mutex
	args     [4]reflect.Value
	tickArgs [1]reflect.Value
}

func (b *reflectBinding) stage() Stage { return b.st }
func (b *reflectBinding) path() string { return b.at }

func (b *reflectBinding) newTick(t float32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tickArgs[0].SetFloat(float64(t))
	b.tick.Call(b.tickArgs[:])
}

func (b *reflectBinding) setStat(d Direction, msgID int16, name string, amount int) {
	b.callStat(b.set, d, msgID, name, amount)
}

func (b *reflectBinding) incrementStat(d Direction, msgID int16, name string, amount int) {
	b.callStat(b.incr, d, msgID, name, amount)
}

func (b *reflectBinding) callStat(fn reflect.Value, d Direction, msgID int16, name string, amount int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.args[0].Set(b.directions[d])
	b.args[1].SetInt(int64(msgID))
	b.args[2].SetString(name)
	b.args[3].SetInt(clampInt(b.args[3].Type(), int64(amount)))
	fn.Call(b.args[:])
}

func (b *reflectBinding) resetAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reset.Call(nil)
}

var errNilCollector = errors.New("collector is nil")

// bind resolves the entry points of collector for the API generation st.
func bind(path string, st Stage, collector any) (binding, error) {
	if collector == nil {
		return nil, errNilCollector
	}
	if stats, ok := collector.(DetailStats); ok {
		return typedBinding{at: path, st: st, stats: stats}, nil
	}

	v := reflect.ValueOf(collector)
	if v.Kind() == reflect.Pointer && v.IsNil() {
		return nil, errNilCollector
	}

	b := &reflectBinding{at: path, st: st}
	var err error
	if b.tick, err = method(v, methodNewProfilerTick, 1); err != nil {
		return nil, err
	}
	if !isFloat(b.tick.Type().In(0)) {
		return nil, fmt.Errorf("%s: time parameter is %s", methodNewProfilerTick, b.tick.Type().In(0))
	}
	if b.set, err = statMethod(v, methodSetStat); err != nil {
		return nil, err
	}
	if b.incr, err = statMethod(v, methodIncrementStat); err != nil {
		return nil, err
	}
	if b.reset, err = method(v, methodResetAll, 0); err != nil {
		return nil, err
	}

	dirType := b.set.Type().In(0)
	if b.incr.Type().In(0) != dirType {
		return nil, fmt.Errorf("%s and %s disagree on direction type", methodSetStat, methodIncrementStat)
	}

	switch st {
	case StageCurrent:
		err = b.resolveDirections(v, dirType)
	default:
		err = b.fixedDirections(dirType)
	}
	if err != nil {
		return nil, err
	}

	b.tickArgs[0] = reflect.New(b.tick.Type().In(0)).Elem()
	for i := range b.args {
		b.args[i] = reflect.New(b.set.Type().In(i)).Elem()
	}
	return b, nil
}

// resolveDirections reads the collector's own direction values: the first is
// incoming, the second outgoing.
func (b *reflectBinding) resolveDirections(v reflect.Value, dirType reflect.Type) error {
	m := v.MethodByName(methodNetworkDirections)
	if !m.IsValid() {
		return fmt.Errorf("%s not found", methodNetworkDirections)
	}
	mt := m.Type()
	if mt.NumIn() != 0 || mt.NumOut() != 1 {
		return fmt.Errorf("%s has signature %s", methodNetworkDirections, mt)
	}
	if k := mt.Out(0).Kind(); k != reflect.Slice && k != reflect.Array {
		return fmt.Errorf("%s returns %s", methodNetworkDirections, mt.Out(0))
	}

	values := m.Call(nil)[0]
	if values.Len() < 2 {
		return fmt.Errorf("%s returned %d values", methodNetworkDirections, values.Len())
	}
	for i := range b.directions {
		d := values.Index(i)
		if !d.Type().ConvertibleTo(dirType) {
			return fmt.Errorf("direction %s not convertible to %s", d.Type(), dirType)
		}
		b.directions[i] = d.Convert(dirType)
	}
	return nil
}

// fixedDirections uses 0 and 1, converted to the collector's direction type.
func (b *reflectBinding) fixedDirections(dirType reflect.Type) error {
	if !isInt(dirType) && !isUint(dirType) {
		return fmt.Errorf("direction parameter is %s", dirType)
	}
	for i := range b.directions {
		b.directions[i] = reflect.ValueOf(i).Convert(dirType)
	}
	return nil
}

func method(v reflect.Value, name string, numIn int) (reflect.Value, error) {
	m := v.MethodByName(name)
	if !m.IsValid() {
		return reflect.Value{}, fmt.Errorf("%s not found", name)
	}
	mt := m.Type()
	if mt.IsVariadic() || mt.NumIn() != numIn {
		return reflect.Value{}, fmt.Errorf("%s has signature %s", name, mt)
	}
	return m, nil
}

// statMethod resolves a (direction, msgID, entryName, amount) method.
func statMethod(v reflect.Value, name string) (reflect.Value, error) {
	m, err := method(v, name, 4)
	if err != nil {
		return m, err
	}
	mt := m.Type()
	if !isInt(mt.In(1)) || mt.In(1).Bits() < 16 || mt.In(2).Kind() != reflect.String || !isInt(mt.In(3)) {
		return reflect.Value{}, fmt.Errorf("%s has signature %s", name, mt)
	}
	return m, nil
}

func isInt(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUint(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

// clampInt saturates v to the range of the signed integer type t.
func clampInt(t reflect.Type, v int64) int64 {
	bits := t.Bits()
	if bits >= 64 {
		return v
	}
	hi := int64(1)<<(bits-1) - 1
	lo := -hi - 1
	switch {
	case v > hi:
		return hi
	case v < lo:
		return lo
	}
	return v
}

func isFloat(t reflect.Type) bool {
	k := t.Kind()
	return k == reflect.Float32 || k == reflect.Float64
}

// guard keeps a misbehaving collector from taking down the caller.
func guard(op string) {
	if r := recover(); r != nil {
		log.Error().Str("op", op).Any("panic", r).Msg("diagnostics collector panicked")
	}
}
