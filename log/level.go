package log

// Level is the severity of a log event. Configuration files carry the numeric value.
type Level uint32

const (
	TraceLevel Level = iota
	DebugLevel
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

var _levelNames = [...]string{
	TraceLevel: "TRACE",
	DebugLevel: "DEBUG",
	InfoLevel:  "INFO",
	WarnLevel:  "WARN",
	ErrorLevel: "ERROR",
	FatalLevel: "FATAL",
}

func (l Level) String() string {
	if int(l) < len(_levelNames) {
		return _levelNames[l]
	}
	return "UNKNOWN"
}
