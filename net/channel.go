// Package net holds the wire primitives shared by the transport and the
// message handlers: channel ids, the frame header, the spawn delegates and
// a dispatcher that routes frames to handlers by opcode.
package net

import (
	"errors"
	"fmt"
)

// Channel selects a delivery lane of the transport.
type Channel int32

const (
	// DefaultReliable reliable and ordered.
	DefaultReliable Channel = 0
	// DefaultUnreliable unreliable, unordered.
	DefaultUnreliable Channel = 1
)

// MaxChannel is the largest channel id a frame header can carry.
const MaxChannel Channel = 0xFFFF

var ErrInvalidChannel = errors.New("invalid channel")

// Validate checks that c is in [0, max]. The transport decides max.
func (c Channel) Validate(max Channel) error {
	if c < 0 || c > max || c > MaxChannel {
		return fmt.Errorf("%w: %d not in [0,%d]", ErrInvalidChannel, c, max)
	}
	return nil
}

func (c Channel) String() string {
	switch c {
	case DefaultReliable:
		return "reliable"
	case DefaultUnreliable:
		return "unreliable"
	default:
		return fmt.Sprintf("channel-%d", int32(c))
	}
}

// InvokeType distinguishes the remote call kinds carried in Command, Rpc and
// SyncEvent messages.
type InvokeType int

const (
	InvokeCommand InvokeType = iota
	InvokeClientRpc
	InvokeSyncEvent
)

func (t InvokeType) String() string {
	switch t {
	case InvokeCommand:
		return "Command"
	case InvokeClientRpc:
		return "ClientRpc"
	case InvokeSyncEvent:
		return "SyncEvent"
	default:
		return fmt.Sprintf("InvokeType(%d)", int(t))
	}
}

// Version is the protocol version.
type Version int

const VersionCurrent Version = 1
