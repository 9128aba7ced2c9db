package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"realty_notify/internal/domain"
)

const (
	// writeWait is the maximum time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// maxMessageSize is the maximum inbound control frame size in bytes.
	maxMessageSize = 1024
)

const (
	EventNotification = "notification"
	EventRegistered   = "registered"
	EventError        = "error"
)

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Session is one WebSocket connection. It is the presence handle for the
// broker it is bound to.
type Session struct {
	ID   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once

	mu     sync.Mutex
	broker string
}

func newSession(conn *websocket.Conn, buffer int) *Session {
	if buffer <= 0 {
		buffer = 32
	}
	return &Session{
		ID:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, buffer),
		done: make(chan struct{}),
	}
}

// Send queues a notification frame without blocking.
func (s *Session) Send(payload []byte) error {
	return s.enqueue(EventNotification, payload)
}

func (s *Session) enqueue(event string, data []byte) error {
	msg, err := json.Marshal(frame{Event: event, Data: data})
	if err != nil {
		return err
	}
	select {
	case <-s.done:
		return domain.ErrClosed
	default:
	}
	select {
	case s.send <- msg:
		return nil
	default:
		return domain.ErrSlowConsumer
	}
}

func (s *Session) Broker() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.broker
}

func (s *Session) bind(broker string) (previous string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	previous, s.broker = s.broker, broker
	return previous
}

func (s *Session) close() {
	s.once.Do(func() { close(s.done) })
}

// writePump drains the send queue to the socket and keeps the peer alive with
// pings. It owns all writes to conn.
func (s *Session) writePump(pingPeriod time.Duration) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case <-s.done:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case msg := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				s.close()
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.close()
				return
			}
		}
	}
}
