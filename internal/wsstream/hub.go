// Package wsstream broadcasts simulation snapshots to connected
// websocket clients and relays their control messages back to the
// host. The connection handling - one read pump, one write pump, and
// a liveness ping, each serialized against the underlying
// *websocket.Conn - is modeled on niceyeti-tabular's fastview client,
// adapted from that package's generic single-client publisher into a
// broadcast hub serving many simultaneous viewers.
package wsstream

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("module", "wsstream")

const (
	writeWait  = 5 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ControlMessage is a client-to-server frame (spec §6's external
// control surface): trigger an incident, or patch the live config.
type ControlMessage struct {
	Type        string `json:"type"`
	ConfigPatch *Patch `json:"config,omitempty"`
}

// Patch carries a subset of sim.Config fields to overwrite; zero
// fields are left untouched by the caller (checked against nil
// pointers, not zero values, so "set to zero" is expressible).
type Patch struct {
	InflowRate        *float64 `json:"inflow_rate,omitempty"`
	TimeScale         *float64 `json:"time_scale,omitempty"`
	TruckRatio        *float64 `json:"truck_ratio,omitempty"`
	IsPaused          *bool    `json:"is_paused,omitempty"`
	Politeness        *float64 `json:"politeness,omitempty"`
	SafeTimeGap       *float64 `json:"safe_time_gap,omitempty"`
	MaxAccel          *float64 `json:"max_accel,omitempty"`
	AccelerationNoise *float64 `json:"acceleration_noise,omitempty"`
}

// Hub manages the set of connected viewers and the host's handlers for
// inbound control messages.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}

	onTriggerAccident func()
	onConfigPatch     func(Patch)
}

// NewHub constructs an empty hub. onTriggerAccident and onConfigPatch
// may be nil, in which case the corresponding control message is
// ignored.
func NewHub(onTriggerAccident func(), onConfigPatch func(Patch)) *Hub {
	return &Hub{
		clients:           make(map[*client]struct{}),
		onTriggerAccident: onTriggerAccident,
		onConfigPatch:     onConfigPatch,
	}
}

// ServeHTTP upgrades the request to a websocket and registers the
// connection as a viewer until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("wsstream: upgrade failed: %v", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, 8)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	log.Infof("wsstream: client connected (%d total)", h.count())

	go h.writePump(c)
	h.readPump(c)

	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	close(c.send)
	log.Infof("wsstream: client disconnected (%d total)", h.count())
}

func (h *Hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast marshals snapshot to JSON and enqueues it to every
// connected client. A slow client whose send buffer is full misses
// this frame (it stays connected) rather than stalling the broadcaster (spec §9's
// general non-goal of synchronous, blocking I/O in the step loop).
func (h *Hub) Broadcast(snapshot any) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		log.Errorf("wsstream: marshal snapshot: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			log.Warnf("wsstream: dropping frame for slow client")
		}
	}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) readPump(c *client) {
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg ControlMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Warnf("wsstream: malformed control message: %v", err)
			continue
		}
		h.dispatch(msg)
	}
}

func (h *Hub) dispatch(msg ControlMessage) {
	switch msg.Type {
	case "trigger_accident":
		if h.onTriggerAccident != nil {
			h.onTriggerAccident()
		}
	case "config":
		if h.onConfigPatch != nil && msg.ConfigPatch != nil {
			h.onConfigPatch(*msg.ConfigPatch)
		}
	default:
		log.Warnf("wsstream: unknown control message type %q", msg.Type)
	}
}
