package kuma

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
)

// engine.io v4 packet types (first byte of every websocket text frame)
const (
	eioOpen    = '0'
	eioClose   = '1'
	eioPing    = '2'
	eioPong    = '3'
	eioMessage = '4'
)

// socket.io packet types, carried inside an engine.io message frame
const (
	sioConnect      = '0'
	sioDisconnect   = '1'
	sioEvent        = '2'
	sioAck          = '3'
	sioConnectError = '4'
)

// packet is a decoded socket.io packet on the default namespace.
type packet struct {
	typ   byte
	ackID int // -1 when the packet carries no ack id
	data  json.RawMessage
}

// encodeEvent frames a socket.io EVENT packet: "42<id>["event",args...]".
// Pass a negative ackID to emit without requesting an ack.
func encodeEvent(ackID int, event string, args ...interface{}) ([]byte, error) {
	payload := append([]interface{}{event}, args...)
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteByte(eioMessage)
	buf.WriteByte(sioEvent)
	if ackID >= 0 {
		buf.WriteString(strconv.Itoa(ackID))
	}
	buf.Write(body)
	return buf.Bytes(), nil
}

// decodePacket parses a socket.io frame. The engine.io message byte
// has already been consumed by the read loop.
func decodePacket(frame []byte) (packet, error) {
	if len(frame) == 0 {
		return packet{}, errors.New("empty socket.io frame")
	}

	p := packet{typ: frame[0], ackID: -1}
	rest := frame[1:]

	// Optional ack id: decimal digits between the type and the JSON body
	i := 0
	for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
		i++
	}
	if i > 0 {
		id, err := strconv.Atoi(string(rest[:i]))
		if err != nil {
			return packet{}, err
		}
		p.ackID = id
	}

	if i < len(rest) {
		p.data = json.RawMessage(rest[i:])
	}
	return p, nil
}
