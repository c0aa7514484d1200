// Package realtime keeps a Socket.IO subscription to the backend's push
// channel over a websocket and dispatches its events.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/aryan0dhankhar/rentdesk/internal/observability/metrics"
	"github.com/aryan0dhankhar/rentdesk/internal/reliability/retry"
)

// Events emitted by the client
const (
	EventJoinRoom  = "joinRoom"
	EventLeaveRoom = "leaveRoom"
)

// ErrNotConnected is returned by Emit while no connection is up.
// Join and Leave still record the room and apply it on the next connect.
var ErrNotConnected = errors.New("realtime: not connected")

// Frame is one decoded event: the name and its first argument
type Frame struct {
	Event string
	Data  json.RawMessage
}

// Handler processes the data of one received event
type Handler func(ctx context.Context, data json.RawMessage)

// Config holds client configuration. URL may be a bare host; the socket.io
// path and Engine.IO query are filled in. HeartbeatInterval bounds the
// handshake and stands in for the server's ping timing when the open packet
// carries none.
type Config struct {
	URL               string
	Token             func() string
	HeartbeatInterval time.Duration
	WriteTimeout      time.Duration
	Reconnect         *retry.Config
	Dialer            *websocket.Dialer
	Logger            *slog.Logger
}

// Client is a reconnecting websocket client. Handlers run one at a time on
// the read goroutine in arrival order.
type Client struct {
	cfg    Config
	logger *slog.Logger

	mu          sync.Mutex
	conn        *websocket.Conn
	connects    int
	rooms       map[string]struct{}
	handlers    map[string][]Handler
	onReconnect []func(ctx context.Context)

	writeMu sync.Mutex
}

// New creates a client; nothing is dialed until Run
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("socket URL is required")
	}
	u, err := socketURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	cfg.URL = u
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = 25 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	if cfg.Reconnect == nil {
		cfg.Reconnect = retry.DefaultConfig()
	}
	if cfg.Dialer == nil {
		cfg.Dialer = &websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "realtime")),
		rooms:    make(map[string]struct{}),
		handlers: make(map[string][]Handler),
	}, nil
}

// On registers h for event
func (c *Client) On(event string, h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[event] = append(c.handlers[event], h)
}

// OnReconnect registers fn to run after every connection but the first,
// once rooms are re-joined. It runs on its own goroutine.
func (c *Client) OnReconnect(fn func(ctx context.Context)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onReconnect = append(c.onReconnect, fn)
}

// Join subscribes to room now if connected and again after every reconnect
func (c *Client) Join(ctx context.Context, room string) error {
	c.mu.Lock()
	c.rooms[room] = struct{}{}
	c.mu.Unlock()
	return c.emitIfConnected(EventJoinRoom, room)
}

// Leave unsubscribes from room
func (c *Client) Leave(ctx context.Context, room string) error {
	c.mu.Lock()
	delete(c.rooms, room)
	c.mu.Unlock()
	return c.emitIfConnected(EventLeaveRoom, room)
}

// Rooms returns the joined rooms, sorted
func (c *Client) Rooms() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.rooms))
	for r := range c.rooms {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// Connected reports whether a connection is up
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

func (c *Client) emitIfConnected(event string, data any) error {
	err := c.Emit(event, data)
	if errors.Is(err, ErrNotConnected) {
		return nil
	}
	return err
}

// Emit sends one event on the current connection
func (c *Client) Emit(event string, data any) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}
	return c.write(conn, event, data)
}

func (c *Client) write(conn *websocket.Conn, event string, data any) error {
	msg, err := encodeEvent(event, data)
	if err != nil {
		return fmt.Errorf("encode %s: %w", event, err)
	}
	if err := c.writeRaw(conn, msg); err != nil {
		return fmt.Errorf("send %s: %w", event, err)
	}
	return nil
}

func (c *Client) writeRaw(conn *websocket.Conn, msg []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	return conn.WriteMessage(websocket.TextMessage, msg)
}

func (c *Client) token() string {
	if c.cfg.Token == nil {
		return ""
	}
	return c.cfg.Token()
}

// Run connects and keeps the connection up until ctx is cancelled,
// reconnecting with backoff after every drop.
func (c *Client) Run(ctx context.Context) error {
	drops := 0
	for {
		conn, err := retry.Do(ctx, c.cfg.Reconnect, c.logger, "socket dial", c.dial)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		started := time.Now()
		err = c.serve(ctx, conn)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, ErrConnectRejected) {
			c.logger.Error("socket connect rejected", slog.String("error", err.Error()))
			return err
		}
		c.logger.Warn("socket disconnected", slog.String("error", err.Error()))
		metrics.IncrementReconnects()

		// a connection that drops right away backs off like a failed dial
		if time.Since(started) > c.cfg.HeartbeatInterval {
			drops = 0
			continue
		}
		wait := retry.Backoff(drops, c.cfg.Reconnect)
		drops++
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	if tok := c.token(); tok != "" {
		header.Set("Authorization", "Bearer "+tok)
	}
	conn, resp, err := c.cfg.Dialer.DialContext(ctx, c.cfg.URL, header)
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			return nil, retry.Permanent(fmt.Errorf("websocket dial: %s: %w", resp.Status, err))
		}
		return nil, fmt.Errorf("websocket dial: %w", err)
	}
	return conn, nil
}

// serve owns conn until it fails or ctx is done
func (c *Client) serve(ctx context.Context, conn *websocket.Conn) error {
	done := make(chan struct{})
	defer func() {
		close(done)
		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
		metrics.SetSocketConnected(false)
		_ = conn.Close()
	}()
	go func() {
		select {
		case <-ctx.Done():
			_ = c.writeRaw(conn, []byte{eioMessage, sioDisconnect})
			c.writeMu.Lock()
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			c.writeMu.Unlock()
			_ = conn.Close()
		case <-done:
		}
	}()

	pingWait, err := c.handshake(conn)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.connects++
	reconnected := c.connects > 1
	hooks := append([]func(context.Context)(nil), c.onReconnect...)
	rooms := make([]string, 0, len(c.rooms))
	for r := range c.rooms {
		rooms = append(rooms, r)
	}
	c.mu.Unlock()
	sort.Strings(rooms)

	metrics.SetSocketConnected(true)
	c.logger.Info("socket connected", slog.String("url", c.cfg.URL), slog.Int("rooms", len(rooms)))

	for _, room := range rooms {
		if err := c.write(conn, EventJoinRoom, room); err != nil {
			return err
		}
	}
	if reconnected {
		for _, fn := range hooks {
			go fn(ctx)
		}
	}

	for {
		p, err := c.read(conn, pingWait)
		if err != nil {
			return err
		}
		switch {
		case p.eio == eioPing:
			if err := c.writeRaw(conn, []byte{eioPong}); err != nil {
				return fmt.Errorf("send pong: %w", err)
			}
		case p.eio == eioClose:
			return errors.New("server closed the session")
		case p.eio != eioMessage || !p.defaultNamespace():
		case p.sio == sioDisconnect:
			return errors.New("server disconnected the namespace")
		case p.sio == sioEvent:
			f, err := decodeEvent(p.data)
			if err != nil {
				c.logger.Debug("ignoring malformed event", slog.Int("bytes", len(p.data)), slog.String("error", err.Error()))
				continue
			}
			c.dispatch(ctx, f)
		}
	}
}

// handshake reads the Engine.IO open packet, connects the main namespace
// and waits for the server's ack. It returns the read deadline to keep.
func (c *Client) handshake(conn *websocket.Conn) (time.Duration, error) {
	wait := 2 * c.cfg.HeartbeatInterval
	p, err := c.read(conn, wait)
	if err != nil {
		return 0, fmt.Errorf("read open packet: %w", err)
	}
	if p.eio != eioOpen {
		return 0, fmt.Errorf("expected open packet, got type %q", p.eio)
	}
	var open openPacket
	if err := json.Unmarshal(p.data, &open); err != nil {
		return 0, fmt.Errorf("decode open packet: %w", err)
	}
	wait = open.pingWait(wait)

	connect, err := encodeConnect(c.token())
	if err != nil {
		return 0, fmt.Errorf("encode connect: %w", err)
	}
	if err := c.writeRaw(conn, connect); err != nil {
		return 0, fmt.Errorf("send connect: %w", err)
	}

	for {
		p, err := c.read(conn, wait)
		if err != nil {
			return 0, fmt.Errorf("await connect: %w", err)
		}
		switch {
		case p.eio == eioPing:
			if err := c.writeRaw(conn, []byte{eioPong}); err != nil {
				return 0, fmt.Errorf("send pong: %w", err)
			}
		case p.eio == eioClose:
			return 0, errors.New("server closed the session")
		case p.eio != eioMessage || !p.defaultNamespace():
		case p.sio == sioConnect:
			c.logger.Debug("socket session open", slog.String("sid", open.SID), slog.Duration("ping_wait", wait))
			return wait, nil
		case p.sio == sioConnectError:
			return 0, fmt.Errorf("%w: %s", ErrConnectRejected, connectErrorMessage(p.data))
		}
	}
}

// read returns the next packet, failing if nothing arrives within wait
func (c *Client) read(conn *websocket.Conn, wait time.Duration) (packet, error) {
	for {
		_ = conn.SetReadDeadline(time.Now().Add(wait))
		kind, msg, err := conn.ReadMessage()
		if err != nil {
			return packet{}, err
		}
		if kind != websocket.TextMessage {
			continue
		}
		p, err := parsePacket(msg)
		if err != nil {
			c.logger.Debug("ignoring malformed packet", slog.Int("bytes", len(msg)), slog.String("error", err.Error()))
			continue
		}
		return p, nil
	}
}

func (c *Client) dispatch(ctx context.Context, f Frame) {
	c.mu.Lock()
	hs := append([]Handler(nil), c.handlers[f.Event]...)
	c.mu.Unlock()
	if len(hs) == 0 {
		c.logger.Debug("no handler for event", slog.String("event", f.Event))
		return
	}
	for _, h := range hs {
		h(ctx, f.Data)
	}
}
