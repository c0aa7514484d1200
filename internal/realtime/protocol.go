package realtime

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Engine.IO v4 packet types
const (
	eioOpen    byte = '0'
	eioClose   byte = '1'
	eioPing    byte = '2'
	eioPong    byte = '3'
	eioMessage byte = '4'
	eioNoop    byte = '6'
)

// Socket.IO v5 packet types, carried inside an Engine.IO message
const (
	sioConnect      byte = '0'
	sioDisconnect   byte = '1'
	sioEvent        byte = '2'
	sioAck          byte = '3'
	sioConnectError byte = '4'
)

const defaultSocketPath = "/socket.io/"

// ErrConnectRejected is returned when the server answers the namespace
// connect with a connect_error packet
var ErrConnectRejected = errors.New("realtime: connect rejected")

var errEmptyPacket = errors.New("empty packet")

// openPacket is the handshake the server sends first on every connection
type openPacket struct {
	SID          string `json:"sid"`
	PingInterval int    `json:"pingInterval"`
	PingTimeout  int    `json:"pingTimeout"`
}

// pingWait is how long the connection may stay silent before it is
// considered dead
func (o openPacket) pingWait(fallback time.Duration) time.Duration {
	if o.PingInterval <= 0 {
		return fallback
	}
	return time.Duration(o.PingInterval+o.PingTimeout) * time.Millisecond
}

// packet is one decoded websocket text message
type packet struct {
	eio  byte
	sio  byte
	nsp  string
	data []byte
}

func parsePacket(msg []byte) (packet, error) {
	if len(msg) == 0 {
		return packet{}, errEmptyPacket
	}
	p := packet{eio: msg[0], data: msg[1:]}
	if p.eio != eioMessage {
		return p, nil
	}
	if len(p.data) == 0 {
		return packet{}, fmt.Errorf("message without socket.io type")
	}
	p.sio = p.data[0]
	rest := p.data[1:]
	if len(rest) > 0 && rest[0] == '/' {
		if i := bytes.IndexByte(rest, ','); i >= 0 {
			p.nsp, rest = string(rest[:i]), rest[i+1:]
		} else {
			p.nsp, rest = string(rest), nil
		}
	}
	// ack id
	i := 0
	for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
		i++
	}
	p.data = rest[i:]
	return p, nil
}

// defaultNamespace reports whether p belongs to the main namespace
func (p packet) defaultNamespace() bool {
	return p.nsp == "" || p.nsp == "/"
}

// encodeConnect builds the namespace connect packet, carrying the token as
// the auth payload when there is one
func encodeConnect(token string) ([]byte, error) {
	out := []byte{eioMessage, sioConnect}
	if token == "" {
		return out, nil
	}
	auth, err := json.Marshal(map[string]string{"token": token})
	if err != nil {
		return nil, err
	}
	return append(out, auth...), nil
}

// encodeEvent builds 42["event",data]; a nil data sends the bare event
func encodeEvent(event string, data any) ([]byte, error) {
	args := []any{event}
	if data != nil {
		args = append(args, data)
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}
	return append([]byte{eioMessage, sioEvent}, raw...), nil
}

// decodeEvent reads the ["event",data,...] array of an event packet.
// Arguments after the first are dropped.
func decodeEvent(data []byte) (Frame, error) {
	var args []json.RawMessage
	if err := json.Unmarshal(data, &args); err != nil {
		return Frame{}, err
	}
	if len(args) == 0 {
		return Frame{}, fmt.Errorf("event without name")
	}
	var f Frame
	if err := json.Unmarshal(args[0], &f.Event); err != nil || f.Event == "" {
		return Frame{}, fmt.Errorf("event name is not a string")
	}
	if len(args) > 1 {
		f.Data = args[1]
	}
	return f, nil
}

// connectErrorMessage extracts the reason of a connect_error packet
func connectErrorMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Message != "" {
		return body.Message
	}
	return strings.TrimSpace(string(data))
}

// socketURL fills in the default socket.io path and the Engine.IO query
func socketURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse socket URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported socket URL scheme %q", u.Scheme)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = defaultSocketPath
	}
	q := u.Query()
	q.Set("EIO", "4")
	q.Set("transport", "websocket")
	u.RawQuery = q.Encode()
	return u.String(), nil
}
