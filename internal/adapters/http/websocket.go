package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/pinmap/internal/adapters/nats"
	"github.com/samirrijal/pinmap/internal/pkg/metrics"
)

// wsMessage is sent from client to pause or resume the feed.
type wsMessage struct {
	Action string `json:"action"` // "subscribe" | "unsubscribe"
}

type wsSubscription interface {
	Unsubscribe() error
}

// wsFeed tracks one client's subscription to the pin event feed. subscribe
// is nil when no event bus is configured.
type wsFeed struct {
	subscribe func() (wsSubscription, error)
	write     func(v interface{}) error
	sub       wsSubscription
}

// start subscribes on connect. A missing event bus is reported to the client
// but keeps the connection open.
func (f *wsFeed) start() error {
	if f.subscribe == nil {
		return f.write(map[string]string{"error": "event feed not configured"})
	}
	s, err := f.subscribe()
	if err != nil {
		return err
	}
	f.sub = s
	return nil
}

// handle applies one client frame and writes the reply.
func (f *wsFeed) handle(raw []byte) {
	var m wsMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		_ = f.write(map[string]string{"error": "invalid JSON"})
		return
	}

	switch m.Action {
	case "subscribe":
		if f.sub != nil {
			_ = f.write(map[string]string{"status": "already subscribed"})
			return
		}
		if f.subscribe == nil {
			_ = f.write(map[string]string{"error": "event feed not configured"})
			return
		}
		s, err := f.subscribe()
		if err != nil {
			_ = f.write(map[string]string{"error": "subscribe failed: " + err.Error()})
			return
		}
		f.sub = s
		_ = f.write(map[string]string{"status": "subscribed", "subject": natsadapter.PinCreatedSubjects})

	case "unsubscribe":
		if f.sub == nil {
			_ = f.write(map[string]string{"error": "not subscribed"})
			return
		}
		_ = f.sub.Unsubscribe()
		f.sub = nil
		_ = f.write(map[string]string{"status": "unsubscribed", "subject": natsadapter.PinCreatedSubjects})

	default:
		_ = f.write(map[string]string{"error": "unknown action: " + m.Action})
	}
}

func (f *wsFeed) close() {
	if f.sub != nil {
		_ = f.sub.Unsubscribe()
		f.sub = nil
	}
}

// WebSocketHandler returns a handler that upgrades to WebSocket and relays
// pin creation events from NATS. Clients are subscribed on connect and may
// send {"action":"unsubscribe"} / {"action":"subscribe"} to pause the feed.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		remoteAddr := c.RemoteAddr().String()
		log := slog.Default().With("remote_addr", remoteAddr)
		log.Info("ws client connected")
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		var mu sync.Mutex
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		feed := &wsFeed{write: writeJSON}
		if nc != nil {
			relay := func(msg *nats.Msg) {
				_ = writeJSON(json.RawMessage(msg.Data))
			}
			feed.subscribe = func() (wsSubscription, error) {
				s, err := nc.Subscribe(natsadapter.PinCreatedSubjects, relay)
				if err != nil {
					return nil, err
				}
				return s, nil
			}
		}
		if err := feed.start(); err != nil {
			log.Error("ws subscribe failed", "error", err)
			return
		}
		defer feed.close()

		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}
			feed.handle(msg)
		}
		log.Info("ws client disconnected")
	}
}
