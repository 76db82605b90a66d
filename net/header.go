package net

import (
	"errors"
	"fmt"

	"github.com/lcx/mirror/codec"
	"github.com/lcx/mirror/opcode"
)

// MSG_HEAD_SIZE is the encoded size of MsgHeader.
const MSG_HEAD_SIZE = 8

var ErrHeaderTooSmall = errors.New("buff too small")

// MsgHeader prefixes every frame: opcode, channel and body length, little endian.
type MsgHeader struct {
	MsgType  opcode.MsgType
	Channel  Channel
	BodySize uint32
}

// EncodeMsgHeader appends the encoded header to buf.
func EncodeMsgHeader(buf []byte, hdr *MsgHeader) ([]byte, error) {
	if err := hdr.Channel.Validate(MaxChannel); err != nil {
		return buf, err
	}
	buf = codec.AppendUint16(buf, uint16(hdr.MsgType))
	buf = codec.AppendUint16(buf, uint16(hdr.Channel))
	buf = codec.AppendUint32(buf, hdr.BodySize)
	return buf, nil
}

// DecodeMsgHeader reads the header at the start of buf.
func DecodeMsgHeader(buf []byte) (*MsgHeader, error) {
	if len(buf) < MSG_HEAD_SIZE {
		return &MsgHeader{}, fmt.Errorf("%w: %d bytes", ErrHeaderTooSmall, len(buf))
	}
	r := codec.NewReader(buf[:MSG_HEAD_SIZE])
	t, _ := r.ReadUint16()
	ch, _ := r.ReadUint16()
	size, _ := r.ReadUint32()
	return &MsgHeader{
		MsgType:  opcode.MsgType(int16(t)),
		Channel:  Channel(ch),
		BodySize: size,
	}, nil
}

// Pack frames body with a header for t on ch.
func Pack(t opcode.MsgType, ch Channel, body []byte) ([]byte, error) {
	frame := make([]byte, 0, MSG_HEAD_SIZE+len(body))
	frame, err := EncodeMsgHeader(frame, &MsgHeader{MsgType: t, Channel: ch, BodySize: uint32(len(body))})
	if err != nil {
		return nil, err
	}
	return append(frame, body...), nil
}

// Unpack splits a frame into its header and body. Trailing bytes are an error.
func Unpack(frame []byte) (*MsgHeader, []byte, error) {
	hdr, err := DecodeMsgHeader(frame)
	if err != nil {
		return nil, nil, err
	}
	body := frame[MSG_HEAD_SIZE:]
	if uint64(len(body)) != uint64(hdr.BodySize) {
		return nil, nil, fmt.Errorf("body size mismatch: header %d, got %d", hdr.BodySize, len(body))
	}
	return hdr, body, nil
}
