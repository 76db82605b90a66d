package opcode

import (
	"reflect"
	"unicode/utf16"

	"google.golang.org/protobuf/proto"
)

// StableHash hashes s over its UTF-16 code units with int32 wraparound, so
// ids derived from it match across processes and platforms.
func StableHash(s string) int32 {
	var hash int32 = 23
	for _, c := range utf16.Encode([]rune(s)) {
		hash = hash*31 + int32(c)
	}
	return hash
}

// HashID folds the stable hash of name into a wire id. Empty names map to
// Unclassified.
func HashID(name string) MsgType {
	if name == "" {
		return Unclassified
	}
	return MsgType(int16(uint16(StableHash(name))))
}

// TypeName returns the identity used for hashing: the protobuf full name for
// proto messages, the package-qualified Go type name otherwise. Pointer and
// value forms share a name; unnamed types return "".
func TypeName(payload any) string {
	if m, ok := payload.(proto.Message); ok {
		return string(m.ProtoReflect().Descriptor().FullName())
	}
	t := indirect(reflect.TypeOf(payload))
	if t == nil || t.Name() == "" {
		return ""
	}
	if t.PkgPath() == "" {
		return t.Name()
	}
	return t.PkgPath() + "." + t.Name()
}

// shortName is the display name used for diagnostics counters.
func shortName(payload any) string {
	if m, ok := payload.(proto.Message); ok {
		return string(m.ProtoReflect().Descriptor().Name())
	}
	t := indirect(reflect.TypeOf(payload))
	if t == nil {
		return ""
	}
	return t.Name()
}

func indirect(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
