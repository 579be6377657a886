package kuma

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/time/rate"
	"nhooyr.io/websocket"

	"github.com/alteredgenome/kumareport/internal/models"
)

// maxFrameSize bounds a single websocket frame; beat batches for a
// long history can run to several megabytes.
const maxFrameSize = 32 << 20

var errConnClosed = errors.New("kuma: connection closed")

// Client is a connection to an Uptime Kuma server. Kuma exposes its
// API as socket.io events over a websocket; the client speaks the
// minimal engine.io v4 / socket.io subset the report needs: the
// handshake, server ping/pong, event emit with ack, and the pushed
// monitorList event.
type Client struct {
	conn    *websocket.Conn
	limiter *rate.Limiter

	mu      sync.Mutex
	nextAck int
	acks    map[int]chan json.RawMessage
	token   string

	monitors     []models.Monitor
	monitorsOnce sync.Once
	monitorsSet  chan struct{}

	closeOnce sync.Once
	closed    chan struct{}
	readErr   error
}

// Dial connects to an Uptime Kuma server given its base URL (http,
// https, ws or wss) and performs the engine.io handshake.
func Dial(ctx context.Context, rawURL string) (*Client, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL %q: %w", rawURL, err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/socket.io/"
	u.RawQuery = "EIO=4&transport=websocket"

	conn, _, err := websocket.Dial(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", rawURL, err)
	}
	conn.SetReadLimit(maxFrameSize)

	c := &Client{
		conn:        conn,
		limiter:     rate.NewLimiter(rate.Limit(4), 1),
		acks:        make(map[int]chan json.RawMessage),
		monitorsSet: make(chan struct{}),
		closed:      make(chan struct{}),
	}

	// The server opens with an engine.io OPEN packet
	_, frame, err := conn.Read(ctx)
	if err != nil {
		conn.Close(websocket.StatusProtocolError, "handshake failed")
		return nil, fmt.Errorf("engine.io handshake: %w", err)
	}
	if len(frame) == 0 || frame[0] != eioOpen {
		conn.Close(websocket.StatusProtocolError, "unexpected handshake packet")
		return nil, fmt.Errorf("engine.io handshake: unexpected packet %q", frame)
	}

	// Join the default socket.io namespace
	if err := conn.Write(ctx, websocket.MessageText, []byte{eioMessage, sioConnect}); err != nil {
		conn.Close(websocket.StatusProtocolError, "namespace join failed")
		return nil, fmt.Errorf("socket.io connect: %w", err)
	}

	go c.readLoop()
	return c, nil
}

// Close tears down the websocket connection.
func (c *Client) Close() error {
	err := c.conn.Close(websocket.StatusNormalClosure, "")
	c.shutdown(errConnClosed)
	return err
}

// shutdown records the terminal error and releases every waiter.
func (c *Client) shutdown(err error) {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.readErr = err
		for id, ch := range c.acks {
			delete(c.acks, id)
			close(ch)
		}
		c.mu.Unlock()
		close(c.closed)
	})
}

func (c *Client) readLoop() {
	ctx := context.Background()
	for {
		_, frame, err := c.conn.Read(ctx)
		if err != nil {
			c.shutdown(fmt.Errorf("kuma: read: %w", err))
			return
		}
		if len(frame) == 0 {
			continue
		}

		switch frame[0] {
		case eioPing:
			if err := c.conn.Write(ctx, websocket.MessageText, []byte{eioPong}); err != nil {
				c.shutdown(fmt.Errorf("kuma: pong: %w", err))
				return
			}
		case eioClose:
			c.shutdown(errConnClosed)
			return
		case eioMessage:
			c.handleMessage(frame[1:])
		}
	}
}

func (c *Client) handleMessage(frame []byte) {
	p, err := decodePacket(frame)
	if err != nil {
		log.Printf("kuma: dropping malformed packet: %v", err)
		return
	}

	switch p.typ {
	case sioAck:
		c.mu.Lock()
		ch, ok := c.acks[p.ackID]
		if ok {
			delete(c.acks, p.ackID)
		}
		c.mu.Unlock()
		if ok {
			ch <- p.data
		}
	case sioEvent:
		c.handleEvent(p.data)
	case sioConnectError:
		log.Printf("kuma: namespace connect error: %s", p.data)
	}
}

func (c *Client) handleEvent(data json.RawMessage) {
	var args []json.RawMessage
	if err := json.Unmarshal(data, &args); err != nil || len(args) == 0 {
		return
	}
	var name string
	if err := json.Unmarshal(args[0], &name); err != nil {
		return
	}

	switch name {
	case "monitorList":
		if len(args) < 2 {
			return
		}
		c.setMonitors(args[1])
	}
}

// setMonitors decodes the monitorList payload, a map keyed by monitor
// id, into a list sorted by id.
func (c *Client) setMonitors(payload json.RawMessage) {
	var byID map[string]models.Monitor
	if err := json.Unmarshal(payload, &byID); err != nil {
		log.Printf("kuma: malformed monitorList: %v", err)
		return
	}

	monitors := make([]models.Monitor, 0, len(byID))
	for _, m := range byID {
		monitors = append(monitors, m)
	}
	sort.Slice(monitors, func(i, j int) bool { return monitors[i].ID < monitors[j].ID })

	c.mu.Lock()
	c.monitors = monitors
	c.mu.Unlock()
	c.monitorsOnce.Do(func() { close(c.monitorsSet) })
}

// call emits an event with an ack id and waits for the server's ack.
func (c *Client) call(ctx context.Context, event string, args ...interface{}) (json.RawMessage, error) {
	c.mu.Lock()
	id := c.nextAck
	c.nextAck++
	ch := make(chan json.RawMessage, 1)
	c.acks[id] = ch
	c.mu.Unlock()

	drop := func() {
		c.mu.Lock()
		delete(c.acks, id)
		c.mu.Unlock()
	}

	frame, err := encodeEvent(id, event, args...)
	if err != nil {
		drop()
		return nil, err
	}
	if err := c.conn.Write(ctx, websocket.MessageText, frame); err != nil {
		drop()
		return nil, err
	}

	select {
	case data, ok := <-ch:
		if !ok {
			return nil, c.closeReason()
		}
		return data, nil
	case <-ctx.Done():
		drop()
		return nil, ctx.Err()
	case <-c.closed:
		drop()
		return nil, c.closeReason()
	}
}

func (c *Client) closeReason() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.readErr != nil {
		return c.readErr
	}
	return errConnClosed
}

// callResult runs call and decodes the first ack argument into out.
func (c *Client) callResult(ctx context.Context, event string, out interface{}, args ...interface{}) error {
	data, err := c.call(ctx, event, args...)
	if err != nil {
		return err
	}

	var results []json.RawMessage
	if err := json.Unmarshal(data, &results); err != nil {
		return fmt.Errorf("%s: malformed ack: %w", event, err)
	}
	if len(results) == 0 {
		return fmt.Errorf("%s: empty ack", event)
	}
	return json.Unmarshal(results[0], out)
}

type loginResponse struct {
	OK    bool   `json:"ok"`
	Msg   string `json:"msg"`
	Token string `json:"token"`
}

// Login authenticates with username and password and stores the
// session token issued by the server.
func (c *Client) Login(ctx context.Context, username, password string) error {
	var resp loginResponse
	err := c.callResult(ctx, "login", &resp, map[string]interface{}{
		"username": username,
		"password": password,
		"token":    "",
	})
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if !resp.OK {
		return fmt.Errorf("login rejected: %s", resp.Msg)
	}

	c.mu.Lock()
	c.token = resp.Token
	c.mu.Unlock()
	return nil
}

// Token returns the session token issued at login, empty before a
// successful Login.
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// TokenExpiry reports when the session token expires. ok is false
// before login and for tokens without an exp claim. The signature is
// not verified; the secret lives on the server and the expiry is only
// used to report session lifetime.
func (c *Client) TokenExpiry() (time.Time, bool) {
	token := c.Token()
	if token == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Monitors returns the monitor list the server pushes after login,
// sorted by id. It blocks until the list arrives.
func (c *Client) Monitors(ctx context.Context) ([]models.Monitor, error) {
	select {
	case <-c.monitorsSet:
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.monitors, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.closed:
		return nil, c.closeReason()
	}
}

type beatsResponse struct {
	OK   bool               `json:"ok"`
	Msg  string             `json:"msg"`
	Data []models.Heartbeat `json:"data"`
}

// GetMonitorBeats fetches up to period hours of heartbeat history for
// one monitor. Calls are rate limited so a report over many monitors
// does not hammer the server.
func (c *Client) GetMonitorBeats(ctx context.Context, monitorID, period int) ([]models.Heartbeat, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var resp beatsResponse
	if err := c.callResult(ctx, "getMonitorBeats", &resp, monitorID, period); err != nil {
		return nil, fmt.Errorf("getMonitorBeats %d: %w", monitorID, err)
	}
	if !resp.OK {
		return nil, fmt.Errorf("getMonitorBeats %d: %s", monitorID, resp.Msg)
	}
	return resp.Data, nil
}
