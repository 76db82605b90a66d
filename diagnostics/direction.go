// Package diagnostics reports per-message traffic statistics to an optional
// detail stats collector. The collector is located and bound once; when it is
// missing or its API does not match, every operation becomes a no-op.
package diagnostics

import "fmt"

// Direction of a recorded message.
type Direction int

const (
	Incoming Direction = iota
	Outgoing
)

func (d Direction) String() string {
	switch d {
	case Incoming:
		return "incoming"
	case Outgoing:
		return "outgoing"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

func (d Direction) valid() bool {
	return d == Incoming || d == Outgoing
}

// Stage is the generation of the collector API a bridge is bound to.
type Stage int

const (
	// StageNone no collector bound.
	StageNone Stage = iota
	// StageLegacy collector direction values are fixed at 0 and 1.
	StageLegacy
	// StageCurrent collector lists its own direction values.
	StageCurrent
)

func (s Stage) String() string {
	switch s {
	case StageNone:
		return "none"
	case StageLegacy:
		return "legacy"
	case StageCurrent:
		return "current"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// Collector access paths probed by default, newest first.
const (
	CurrentCollectorPath = "netstats.NetworkDetailStats"
	LegacyCollectorPath  = "editor.NetworkDetailStats"
)

// stageFor returns the API generation expected at path.
func stageFor(path string) Stage {
	if path == LegacyCollectorPath {
		return StageLegacy
	}
	return StageCurrent
}
