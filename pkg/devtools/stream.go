package devtools

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/sprout/internal/scenario"
	"github.com/vango-dev/sprout/pkg/host/memhost"
)

// MessageType labels stream messages.
type MessageType string

const (
	MessageOp    MessageType = "op"
	MessageStep  MessageType = "step"
	MessageReset MessageType = "reset"
)

// Message is one frame on the live stream.
type Message struct {
	Type MessageType         `json:"type"`
	Op   *memhost.Op         `json:"op,omitempty"`
	Step *scenario.StepTrace `json:"step,omitempty"`
}

const writeTimeout = 5 * time.Second

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Stream fans messages out to websocket clients. A client whose buffer
// fills up is dropped.
type Stream struct {
	upgrader websocket.Upgrader
	buffer   int
	logger   *slog.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// NewStream creates a stream with buffer queued frames per client.
func NewStream(buffer int, logger *slog.Logger) *Stream {
	if buffer <= 0 {
		buffer = 1
	}
	return &Stream{
		buffer:  buffer,
		logger:  logger,
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// ServeHTTP upgrades the request and keeps the client until it
// disconnects.
func (s *Stream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{conn: conn, send: make(chan []byte, s.buffer)}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	s.logger.Debug("stream client connected", "remote", r.RemoteAddr)

	go s.writePump(c)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	s.remove(c)
}

func (s *Stream) writePump(c *client) {
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			s.remove(c)
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (s *Stream) remove(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; !ok {
		return
	}
	delete(s.clients, c)
	close(c.send)
}

// Publish queues msg for every client without blocking.
func (s *Stream) Publish(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	var slow []*client
	s.mu.RLock()
	for c := range s.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	s.mu.RUnlock()

	for _, c := range slow {
		s.logger.Warn("stream client too slow, dropping", "remote", c.conn.RemoteAddr().String())
		s.remove(c)
	}
}

// PublishOp streams one host op.
func (s *Stream) PublishOp(op memhost.Op) {
	s.Publish(Message{Type: MessageOp, Op: &op})
}

// ClientCount returns the number of connected clients.
func (s *Stream) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Close disconnects every client.
func (s *Stream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		delete(s.clients, c)
		close(c.send)
	}
}
