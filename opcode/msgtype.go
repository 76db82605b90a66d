// Package opcode maps message payload types to the short integer ids used to
// tag them on the wire and in diagnostics counters.
package opcode

import (
	"errors"
	"fmt"
	"strconv"
)

// MsgType is the wire id of a message kind. It stays int16 to keep the packet
// header layout unchanged.
type MsgType int16

// Unclassified is returned for payloads that have no id in the active scheme.
const Unclassified MsgType = 0

// internal system messages, cannot be replaced by user code
const (
	ObjectDestroy        MsgType = 1
	Rpc                  MsgType = 2
	SpawnPrefab          MsgType = 3
	Owner                MsgType = 4
	Command              MsgType = 5
	SyncEvent            MsgType = 7
	UpdateVars           MsgType = 8
	SpawnSceneObject     MsgType = 10
	SpawnStarted         MsgType = 11
	SpawnFinished        MsgType = 12
	ObjectHide           MsgType = 13
	LocalClientAuthority MsgType = 15
)

// public system messages, handlers may be replaced by user code
const (
	Connect      MsgType = 32
	Disconnect   MsgType = 33
	Error        MsgType = 34
	Ready        MsgType = 35
	NotReady     MsgType = 36
	AddPlayer    MsgType = 37
	RemovePlayer MsgType = 38
	Scene        MsgType = 39

	// time synchronization
	Ping MsgType = 43
	Pong MsgType = 44

	Highest MsgType = 47
)

// User ids live in [UserRangeStart, UserRangeEnd] and must not collide with a
// reserved id.
const (
	UserRangeStart = Connect
	UserRangeEnd   = Highest
)

var (
	// ErrReservedID user id collides with a system message id
	ErrReservedID = errors.New("opcode: id is reserved")
	// ErrOutOfRange user id outside the user range
	ErrOutOfRange = errors.New("opcode: id out of user range")
)

var msgTypeNames = map[MsgType]string{
	ObjectDestroy:        "ObjectDestroy",
	Rpc:                  "Rpc",
	SpawnPrefab:          "SpawnPrefab",
	Owner:                "Owner",
	Command:              "Command",
	SyncEvent:            "SyncEvent",
	UpdateVars:           "UpdateVars",
	SpawnSceneObject:     "SpawnSceneObject",
	SpawnStarted:         "SpawnStarted",
	SpawnFinished:        "SpawnFinished",
	ObjectHide:           "ObjectHide",
	LocalClientAuthority: "LocalClientAuthority",
	Connect:              "Connect",
	Disconnect:           "Disconnect",
	Error:                "Error",
	Ready:                "Ready",
	NotReady:             "NotReady",
	AddPlayer:            "AddPlayer",
	RemovePlayer:         "RemovePlayer",
	Scene:                "Scene",
	Ping:                 "Ping",
	Pong:                 "Pong",
	Highest:              "Highest",
}

// String returns the kind name, or MsgType(n) for ids outside the table.
func (t MsgType) String() string {
	if name, ok := msgTypeNames[t]; ok {
		return name
	}
	return "MsgType(" + strconv.Itoa(int(t)) + ")"
}

// IsReserved reports whether t is one of the fixed system ids.
func (t MsgType) IsReserved() bool {
	_, ok := msgTypeNames[t]
	return ok
}

// IsInternal reports whether t is in the internal system range.
func (t MsgType) IsInternal() bool {
	return t > Unclassified && t < UserRangeStart
}

// IsPublic reports whether t is in the public system range.
func (t MsgType) IsPublic() bool {
	return t >= UserRangeStart && t <= UserRangeEnd
}

// ValidateUserID checks that t can be assigned to an application message.
func ValidateUserID(t MsgType) error {
	if t < UserRangeStart || t > UserRangeEnd {
		return fmt.Errorf("%w: %d not in [%d,%d]", ErrOutOfRange, t, UserRangeStart, UserRangeEnd)
	}
	if t.IsReserved() {
		return fmt.Errorf("%w: %d is %s", ErrReservedID, t, t)
	}
	return nil
}

// MsgTypes returns every reserved id in ascending order.
func MsgTypes() []MsgType {
	out := make([]MsgType, 0, len(msgTypeNames))
	for t := MsgType(1); t <= Highest; t++ {
		if t.IsReserved() {
			out = append(out, t)
		}
	}
	return out
}
