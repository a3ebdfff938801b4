package ws

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"pigeon/internal/models"
	"pigeon/internal/store"
	"pigeon/internal/uploads"
)

// ErrInvalidMessage marks an event with no recipient or with neither
// text nor file. Such events are dropped without persistence or
// delivery and the sender is not notified.
var ErrInvalidMessage = errors.New("invalid message event")

type inboundEvent struct {
	from  *Client
	event Event
}

// presencePush is the full-state online list sent to every client.
type presencePush struct {
	Online []models.Presence `json:"online"`
}

// Hub routes message events and broadcasts presence. It owns the only
// goroutine that touches the store on the websocket path, so events
// from a single connection persist in the order they were read.
type Hub struct {
	registry *Registry
	store    store.Store
	saver    *uploads.Saver

	register   chan *Client
	unregister chan *Client
	evicted    chan *Client
	inbound    chan inboundEvent
}

func NewHub(st store.Store, saver *uploads.Saver) *Hub {
	return &Hub{
		registry:   NewRegistry(),
		store:      st,
		saver:      saver,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		evicted:    make(chan *Client),
		inbound:    make(chan inboundEvent),
	}
}

func (h *Hub) Registry() *Registry { return h.registry }

// Evict forcibly terminates a connection the monitor declared dead.
func (h *Hub) Evict(c *Client) {
	h.evicted <- c
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.registry.Add(client)
			logrus.WithFields(logrus.Fields{
				"user":     client.userID,
				"username": client.username,
			}).Info("connection registered")
			h.broadcastPresence()
		case client := <-h.unregister:
			if h.registry.Remove(client) {
				close(client.send)
				logrus.WithField("user", client.userID).Info("connection closed")
				h.broadcastPresence()
			}
		case client := <-h.evicted:
			client.terminate()
			if h.registry.Remove(client) {
				close(client.send)
				logrus.WithField("user", client.userID).Warn("connection evicted")
				h.broadcastPresence()
			}
		case in := <-h.inbound:
			if err := h.route(in.from, in.event); err != nil {
				logrus.WithError(err).WithField("sender", in.from.userID).Debug("event dropped")
			}
		}
	}
}

// route persists the event and fans it out to every connection of the
// recipient. Delivery to an individual connection is best-effort and
// never blocks routing for others.
func (h *Hub) route(from *Client, ev Event) error {
	if ev.Recipient == 0 || (ev.Text == "" && ev.File == nil) {
		return ErrInvalidMessage
	}

	var filename string
	if ev.File != nil {
		var err error
		filename, err = h.saver.Save(ev.File.Name, ev.File.Data)
		if err != nil {
			return err
		}
	}

	id, err := h.store.AppendMessage(from.userID, ev.Recipient, ev.Text, filename, time.Now())
	if err != nil {
		return err
	}

	msg := models.Message{
		ID:        id,
		Sender:    from.userID,
		Recipient: ev.Recipient,
		Text:      ev.Text,
		File:      filename,
	}
	payload, err := json.Marshal(outboundMessage(msg))
	if err != nil {
		return err
	}

	for _, c := range h.registry.ConnectionsFor(ev.Recipient) {
		h.trySend(c, payload)
	}
	return nil
}

// outboundMessage is the push shape delivered to recipient connections.
// File is explicit null (not omitted) when the message carries none, so
// clients can distinguish text-only pushes without refetching history.
func outboundMessage(m models.Message) map[string]interface{} {
	var file interface{}
	if m.File != "" {
		file = m.File
	}
	return map[string]interface{}{
		"_id":       m.ID,
		"sender":    m.Sender,
		"recepient": m.Recipient,
		"text":      m.Text,
		"file":      file,
	}
}

func (h *Hub) broadcastPresence() {
	payload, err := json.Marshal(presencePush{Online: h.registry.Snapshot()})
	if err != nil {
		logrus.WithError(err).Error("presence marshal")
		return
	}
	for _, c := range h.registry.All() {
		h.trySend(c, payload)
	}
}

// trySend never blocks the hub. A connection whose buffer is full is
// treated as gone: the write is dropped and the monitor evicts it on
// the next cycle.
func (h *Hub) trySend(c *Client, payload []byte) {
	select {
	case c.send <- payload:
	default:
		c.writeFailed.Store(true)
		logrus.WithField("user", c.userID).Warn("send buffer full, dropping write")
	}
}
