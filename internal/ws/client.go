package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 16 << 20 // file attachments arrive inline as data URLs
	sendBuffer     = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The browser client runs on a separate origin; the token cookie is
	// what gates the upgrade.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Event is an inbound message event from a client.
type Event struct {
	Recipient int     `json:"recepient"`
	Text      string  `json:"text"`
	File      *InFile `json:"file"`
}

// InFile is an attachment carried inline as a base64 data URL.
type InFile struct {
	Name string `json:"name"`
	Data string `json:"data"`
}

// Client is one live connection with a resolved identity. All transport
// writes happen on the write pump; the hub and the monitor only ever
// touch the send and ping channels.
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	userID   int
	username string

	send chan []byte
	ping chan struct{}

	// writeFailed marks a connection whose transport refused a write;
	// the monitor evicts it on its next cycle instead of probing it.
	writeFailed atomic.Bool

	// probe state machine: ALIVE (probing=false) -> PROBING
	// (probing=true) -> ALIVE on pong | DEAD on timer. Both the pong
	// path and the timer callback settle it under probeMu, so a reply
	// racing the timeout either cancels or is ignored, never both.
	probeMu    sync.Mutex
	probing    bool
	probeTimer *time.Timer
}

func newClient(hub *Hub, conn *websocket.Conn, userID int, username string) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		userID:   userID,
		username: username,
		send:     make(chan []byte, sendBuffer),
		ping:     make(chan struct{}, 1),
	}
}

// startProbe sends a liveness probe and arms the timeout. If the timer
// fires before pongReceived cancels it, onDead runs exactly once.
func (c *Client) startProbe(timeout time.Duration, onDead func()) {
	c.probeMu.Lock()
	if c.probing {
		// previous probe still outstanding; its timer decides
		c.probeMu.Unlock()
		return
	}
	c.probing = true
	c.probeTimer = time.AfterFunc(timeout, func() {
		c.probeMu.Lock()
		expired := c.probing
		c.probing = false
		c.probeMu.Unlock()
		if expired {
			onDead()
		}
	})
	c.probeMu.Unlock()

	select {
	case c.ping <- struct{}{}:
	default:
	}
}

// pongReceived cancels a pending probe timeout.
func (c *Client) pongReceived() {
	c.probeMu.Lock()
	defer c.probeMu.Unlock()
	if c.probing {
		c.probing = false
		c.probeTimer.Stop()
	}
}

// terminate forcibly closes the transport.
func (c *Client) terminate() {
	if c.conn != nil {
		c.conn.Close()
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetPongHandler(func(string) error {
		c.pongReceived()
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.WithError(err).WithField("user", c.userID).Debug("read pump closed")
			}
			return
		}

		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			logrus.WithError(err).WithField("user", c.userID).Warn("unparseable message event")
			continue
		}
		c.hub.inbound <- inboundEvent{from: c, event: ev}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.writeFailed.Store(true)
				return
			}
		case <-c.ping:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.writeFailed.Store(true)
				return
			}
		}
	}
}

// ServeWs upgrades the request and hands the connection, already bound
// to its resolved identity, over to the hub.
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request, userID int, username string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := newClient(hub, conn, userID, username)
	hub.register <- client

	go client.writePump()
	go client.readPump()
}
