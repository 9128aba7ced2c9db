package sse

import (
	"fmt"
	"io"
	"sync"

	"realty_notify/internal/domain"
)

// Stream is one open event-stream response, registered as a broker's live
// handle while the request is in flight.
type Stream struct {
	Broker string
	ch     chan []byte
	done   chan struct{}
	once   sync.Once
}

func NewStream(broker string, buffer int) *Stream {
	if buffer <= 0 {
		buffer = 16
	}
	return &Stream{
		Broker: broker,
		ch:     make(chan []byte, buffer),
		done:   make(chan struct{}),
	}
}

func (s *Stream) Send(payload []byte) error {
	select {
	case <-s.done:
		return domain.ErrClosed
	default:
	}
	select {
	case s.ch <- payload:
		return nil
	default:
		// Drop if the client is too slow.
		return domain.ErrSlowConsumer
	}
}

func (s *Stream) Messages() <-chan []byte {
	return s.ch
}

func (s *Stream) Close() {
	s.once.Do(func() { close(s.done) })
}

// WriteEvent writes one SSE frame:
// - id: notification id
// - event: "notification" (JS uses addEventListener("notification", ...))
// - data: the notification view JSON
func WriteEvent(w io.Writer, id string, payload []byte) error {
	_, err := fmt.Fprintf(w, "id: %s\nevent: notification\ndata: %s\n\n", id, payload)
	return err
}

func WriteHeartbeat(w io.Writer) error {
	_, err := fmt.Fprint(w, ": ping\n\n")
	return err
}
