package opcode

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
)

// Scheme selects how payloads outside the fixed table are numbered.
type Scheme int

const (
	// SchemeLegacy uses the fixed table only; everything else is Unclassified.
	SchemeLegacy Scheme = iota
	// SchemeTypeHash derives ids from the payload type name.
	SchemeTypeHash
)

func (s Scheme) String() string {
	switch s {
	case SchemeLegacy:
		return "legacy"
	case SchemeTypeHash:
		return "typehash"
	default:
		return fmt.Sprintf("Scheme(%d)", int(s))
	}
}

// ParseScheme parses the names returned by Scheme.String. Empty means legacy.
func ParseScheme(s string) (Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "legacy":
		return SchemeLegacy, nil
	case "typehash", "type_hash", "hash":
		return SchemeTypeHash, nil
	default:
		return SchemeLegacy, fmt.Errorf("unknown opcode scheme %q", s)
	}
}

var (
	// ErrDuplicateType payload type already registered
	ErrDuplicateType = errors.New("opcode: type already registered")
	// ErrIDInUse id already assigned to another registered type
	ErrIDInUse = errors.New("opcode: id already in use")
	// ErrUnnamedType payload has no type identity
	ErrUnnamedType = errors.New("opcode: unnamed payload type")
)

// Registry resolves payloads to wire ids. Reserved payloads answer through
// Opcoder; registered application types through a type-keyed table; the
// rest through the active scheme. Safe for concurrent use.
type Registry struct {
	scheme Scheme

	mu    sync.RWMutex
	types map[reflect.Type]MsgType
	ids   map[MsgType]reflect.Type
}

// NewRegistry creates a registry using scheme.
func NewRegistry(scheme Scheme) *Registry {
	return &Registry{
		scheme: scheme,
		types:  make(map[reflect.Type]MsgType),
		ids:    make(map[MsgType]reflect.Type),
	}
}

// Scheme returns the active numbering scheme.
func (r *Registry) Scheme() Scheme {
	return r.scheme
}

// Register assigns id to the type of payload. Pointer and value forms of the
// same type share the registration.
func (r *Registry) Register(payload any, id MsgType) error {
	t := indirect(reflect.TypeOf(payload))
	if t == nil || t.Name() == "" {
		return ErrUnnamedType
	}
	if _, ok := reservedTypes[t]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateType, t)
	}
	if err := ValidateUserID(id); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.types[t]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateType, t)
	}
	if other, ok := r.ids[id]; ok {
		return fmt.Errorf("%w: %d by %s", ErrIDInUse, id, other)
	}
	r.types[t] = id
	r.ids[id] = t
	return nil
}

// Lookup returns the MsgType for payload, Unclassified when it has none.
func (r *Registry) Lookup(payload any) MsgType {
	if payload == nil {
		return Unclassified
	}
	if o, ok := payload.(Opcoder); ok && !isNilPointer(payload) {
		return o.MsgType()
	}

	t := indirect(reflect.TypeOf(payload))
	if id, ok := reservedTypes[t]; ok {
		return id
	}
	r.mu.RLock()
	id, ok := r.types[t]
	r.mu.RUnlock()
	if ok {
		return id
	}

	if r.scheme == SchemeTypeHash {
		return HashID(TypeName(payload))
	}
	return Unclassified
}

// For returns the wire opcode of payload. Unknown payloads return 0.
func (r *Registry) For(payload any) int16 {
	return int16(r.Lookup(payload))
}

// Name returns the counter name for payload: its type name without package.
func (r *Registry) Name(payload any) string {
	return shortName(payload)
}

func isNilPointer(payload any) bool {
	v := reflect.ValueOf(payload)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

var defaultRegistry atomic.Pointer[Registry]

func init() {
	defaultRegistry.Store(NewRegistry(SchemeLegacy))
}

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry.Load()
}

// SetDefault replaces the process-wide registry. Nil is ignored.
func SetDefault(r *Registry) {
	if r != nil {
		defaultRegistry.Store(r)
	}
}

// For resolves payload through the default registry.
func For(payload any) int16 {
	return Default().For(payload)
}

// Name resolves the counter name of payload through the default registry.
func Name(payload any) string {
	return Default().Name(payload)
}

// Register adds an application type to the default registry.
func Register(payload any, id MsgType) error {
	return Default().Register(payload, id)
}
