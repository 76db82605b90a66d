package log

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
)

// LogEvent accumulates the fields of a single JSON log line.
// A nil *LogEvent is valid and discards everything, which is what the
// level-filtered constructors return.
type LogEvent struct {
	buf     *bytes.Buffer
	scratch []byte
	level   Level
	logger  Logger
}

func newEvent(logger Logger) *LogEvent {
	return &LogEvent{
		buf:     bytes.NewBuffer(make([]byte, 0, 512)),
		scratch: make([]byte, 0, 64),
		logger:  logger,
	}
}

// Reset clears the event so it can be reused from the pool.
func (e *LogEvent) Reset() {
	e.buf.Reset()
	e.buf.WriteByte('{')
	e.level = InfoLevel
}

func (e *LogEvent) key(k string) {
	if e.buf.Len() > 1 {
		e.buf.WriteByte(',')
	}
	e.scratch = strconv.AppendQuote(e.scratch[:0], k)
	e.buf.Write(e.scratch)
	e.buf.WriteByte(':')
}

// Str adds a string field.
func (e *LogEvent) Str(k, v string) *LogEvent {
	if e == nil {
		return nil
	}
	e.key(k)
	e.scratch = strconv.AppendQuote(e.scratch[:0], v)
	e.buf.Write(e.scratch)
	return e
}

// Stringer adds a fmt.Stringer field.
func (e *LogEvent) Stringer(k string, v fmt.Stringer) *LogEvent {
	if e == nil {
		return nil
	}
	if v == nil {
		return e.Str(k, "<nil>")
	}
	return e.Str(k, v.String())
}

// Int adds an int field.
func (e *LogEvent) Int(k string, v int) *LogEvent {
	return e.Int64(k, int64(v))
}

// Int64 adds an int64 field.
func (e *LogEvent) Int64(k string, v int64) *LogEvent {
	if e == nil {
		return nil
	}
	e.key(k)
	e.scratch = strconv.AppendInt(e.scratch[:0], v, 10)
	e.buf.Write(e.scratch)
	return e
}

// Uint64 adds a uint64 field.
func (e *LogEvent) Uint64(k string, v uint64) *LogEvent {
	if e == nil {
		return nil
	}
	e.key(k)
	e.scratch = strconv.AppendUint(e.scratch[:0], v, 10)
	e.buf.Write(e.scratch)
	return e
}

// Float64 adds a float64 field.
func (e *LogEvent) Float64(k string, v float64) *LogEvent {
	if e == nil {
		return nil
	}
	e.key(k)
	e.scratch = strconv.AppendFloat(e.scratch[:0], v, 'g', -1, 64)
	e.buf.Write(e.scratch)
	return e
}

// Bool adds a bool field.
func (e *LogEvent) Bool(k string, v bool) *LogEvent {
	if e == nil {
		return nil
	}
	e.key(k)
	e.scratch = strconv.AppendBool(e.scratch[:0], v)
	e.buf.Write(e.scratch)
	return e
}

// Time adds a timestamp field formatted as RFC3339 with milliseconds.
func (e *LogEvent) Time(k string, t *time.Time) *LogEvent {
	if e == nil || t == nil {
		return e
	}
	e.key(k)
	e.buf.WriteByte('"')
	e.scratch = t.AppendFormat(e.scratch[:0], "2006-01-02T15:04:05.000Z07:00")
	e.buf.Write(e.scratch)
	e.buf.WriteByte('"')
	return e
}

// Err adds the error under the "error" key. A nil error is skipped.
func (e *LogEvent) Err(err error) *LogEvent {
	if e == nil || err == nil {
		return e
	}
	return e.Str("error", err.Error())
}

// Any adds a field formatted with %v.
func (e *LogEvent) Any(k string, v any) *LogEvent {
	if e == nil {
		return nil
	}
	return e.Str(k, fmt.Sprintf("%v", v))
}

// Msg finishes the event and hands it to the owning logger.
func (e *LogEvent) Msg(msg string) {
	if e == nil {
		return
	}
	e.Str("msg", msg)
	e.buf.WriteString("}\n")
	e.logger.OnEventEnd(e)
}

// Msgf is Msg with fmt.Sprintf formatting.
func (e *LogEvent) Msgf(format string, args ...any) {
	if e == nil {
		return
	}
	e.Msg(fmt.Sprintf(format, args...))
}
