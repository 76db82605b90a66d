package opcode

import (
	"reflect"

	"github.com/google/uuid"
)

// Opcoder is implemented by payloads that know their own wire id. The
// registry answers these without reflection.
type Opcoder interface {
	MsgType() MsgType
}

// Vector3 is a position or scale in world space.
type Vector3 struct {
	X, Y, Z float32
}

// Quaternion is a rotation.
type Quaternion struct {
	X, Y, Z, W float32
}

// IdentityRotation is the zero rotation.
var IdentityRotation = Quaternion{W: 1}

type ObjectDestroyMessage struct {
	NetID uint32
}

func (ObjectDestroyMessage) MsgType() MsgType { return ObjectDestroy }

type RpcMessage struct {
	NetID          uint32
	ComponentIndex int32
	FunctionHash   int32
	Payload        []byte
}

func (RpcMessage) MsgType() MsgType { return Rpc }

type SpawnPrefabMessage struct {
	NetID    uint32
	Owner    bool
	AssetID  uuid.UUID
	Position Vector3
	Rotation Quaternion
	Scale    Vector3
	Payload  []byte
}

func (SpawnPrefabMessage) MsgType() MsgType { return SpawnPrefab }

type OwnerMessage struct {
	NetID uint32
}

func (OwnerMessage) MsgType() MsgType { return Owner }

type CommandMessage struct {
	NetID          uint32
	ComponentIndex int32
	FunctionHash   int32
	Payload        []byte
}

func (CommandMessage) MsgType() MsgType { return Command }

type SyncEventMessage struct {
	NetID          uint32
	ComponentIndex int32
	FunctionHash   int32
	Payload        []byte
}

func (SyncEventMessage) MsgType() MsgType { return SyncEvent }

type UpdateVarsMessage struct {
	NetID   uint32
	Payload []byte
}

func (UpdateVarsMessage) MsgType() MsgType { return UpdateVars }

type SpawnSceneObjectMessage struct {
	NetID    uint32
	Owner    bool
	SceneID  uint64
	Position Vector3
	Rotation Quaternion
	Scale    Vector3
	Payload  []byte
}

func (SpawnSceneObjectMessage) MsgType() MsgType { return SpawnSceneObject }

type ObjectSpawnStartedMessage struct{}

func (ObjectSpawnStartedMessage) MsgType() MsgType { return SpawnStarted }

type ObjectSpawnFinishedMessage struct{}

func (ObjectSpawnFinishedMessage) MsgType() MsgType { return SpawnFinished }

type ObjectHideMessage struct {
	NetID uint32
}

func (ObjectHideMessage) MsgType() MsgType { return ObjectHide }

type ClientAuthorityMessage struct {
	NetID     uint32
	Authority bool
}

func (ClientAuthorityMessage) MsgType() MsgType { return LocalClientAuthority }

type ConnectMessage struct{}

func (ConnectMessage) MsgType() MsgType { return Connect }

type DisconnectMessage struct{}

func (DisconnectMessage) MsgType() MsgType { return Disconnect }

type ErrorMessage struct {
	Value byte
}

func (ErrorMessage) MsgType() MsgType { return Error }

type ReadyMessage struct{}

func (ReadyMessage) MsgType() MsgType { return Ready }

type NotReadyMessage struct{}

func (NotReadyMessage) MsgType() MsgType { return NotReady }

type AddPlayerMessage struct {
	Value []byte
}

func (AddPlayerMessage) MsgType() MsgType { return AddPlayer }

type RemovePlayerMessage struct{}

func (RemovePlayerMessage) MsgType() MsgType { return RemovePlayer }

type SceneMessage struct {
	SceneName string
}

func (SceneMessage) MsgType() MsgType { return Scene }

// PingMessage carries the client send time in seconds.
type PingMessage struct {
	ClientTime float64
}

func (PingMessage) MsgType() MsgType { return Ping }

// PongMessage echoes ClientTime and adds the server time.
type PongMessage struct {
	ClientTime float64
	ServerTime float64
}

func (PongMessage) MsgType() MsgType { return Pong }

// reservedTypes backs lookups that cannot go through Opcoder, such as typed
// nil pointers.
var reservedTypes = func() map[reflect.Type]MsgType {
	payloads := []Opcoder{
		ObjectDestroyMessage{}, RpcMessage{}, SpawnPrefabMessage{}, OwnerMessage{},
		CommandMessage{}, SyncEventMessage{}, UpdateVarsMessage{}, SpawnSceneObjectMessage{},
		ObjectSpawnStartedMessage{}, ObjectSpawnFinishedMessage{}, ObjectHideMessage{},
		ClientAuthorityMessage{}, ConnectMessage{}, DisconnectMessage{}, ErrorMessage{},
		ReadyMessage{}, NotReadyMessage{}, AddPlayerMessage{}, RemovePlayerMessage{},
		SceneMessage{}, PingMessage{}, PongMessage{},
	}
	m := make(map[reflect.Type]MsgType, len(payloads))
	for _, p := range payloads {
		m[reflect.TypeOf(p)] = p.MsgType()
	}
	return m
}()
