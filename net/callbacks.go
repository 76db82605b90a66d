package net

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/lcx/mirror/opcode"
)

// SpawnFunc creates a live object for assetID at position on the client.
type SpawnFunc func(position opcode.Vector3, assetID uuid.UUID) (any, error)

// UnSpawnFunc removes an object created by a SpawnFunc.
type UnSpawnFunc func(spawned any)

// MessageHandlerFunc handles one received message.
type MessageHandlerFunc func(d *Delivery) error

// Sender writes a framed message to a channel of the transport.
type Sender interface {
	Send(ch Channel, frame []byte) error
}

// Delivery is a received frame on its way to a handler.
type Delivery struct {
	Header *MsgHeader
	Body   []byte
	// From replies to the peer that sent the frame. May be nil.
	From Sender

	dispatcher *Dispatcher
}

// Reply sends payload back on the channel of the delivery. Deliveries handed
// out by a Dispatcher reply through Dispatcher.Send and are counted as
// outgoing traffic.
func (d *Delivery) Reply(payload any, body []byte) error {
	if d.From == nil {
		return ErrNoSender
	}
	if d.dispatcher != nil {
		return d.dispatcher.Send(d.From, d.Header.Channel, payload, body)
	}

	t := opcode.Default().Lookup(payload)
	if t == opcode.Unclassified {
		return fmt.Errorf("%w: %T", ErrUnclassified, payload)
	}
	frame, err := Pack(t, d.Header.Channel, body)
	if err != nil {
		return err
	}
	return d.From.Send(d.Header.Channel, frame)
}
