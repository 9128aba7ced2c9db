// Package presence tracks which brokers currently hold a live connection.
//
// The registry keeps at most one handle per broker. A reconnect replaces the
// previous handle without closing it; the stale connection's own disconnect
// then calls Unregister with its handle, which is ignored because the stored
// handle no longer matches.
package presence

import (
	"errors"
	"sort"
	"sync"

	"realty_notify/internal/model"
)

var (
	ErrEmptyIdentity = errors.New("presence: empty broker identity")
	ErrNilHandle     = errors.New("presence: nil handle")
)

// Handle is a live connection to one broker. Implementations must be
// comparable (pointer types) and Send must not block.
type Handle interface {
	Send(payload []byte) error
}

type Registry struct {
	mu      sync.RWMutex
	entries map[string]Handle
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Handle)}
}

func (r *Registry) Register(broker string, handle Handle) error {
	if broker == "" {
		return ErrEmptyIdentity
	}
	if handle == nil {
		return ErrNilHandle
	}
	r.mu.Lock()
	r.entries[broker] = handle
	r.mu.Unlock()
	return nil
}

// Unregister removes broker only while it is still bound to handle and
// reports whether an entry was removed.
func (r *Registry) Unregister(broker string, handle Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.entries[broker]
	if !ok || current != handle {
		return false
	}
	delete(r.entries, broker)
	return true
}

func (r *Registry) Lookup(broker string) (Handle, bool) {
	r.mu.RLock()
	handle, ok := r.entries[broker]
	r.mu.RUnlock()
	return handle, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Online returns the identities with a live handle, sorted.
func (r *Registry) Online() []string {
	r.mu.RLock()
	out := make([]string, 0, len(r.entries))
	for broker := range r.entries {
		out = append(out, broker)
	}
	r.mu.RUnlock()
	sort.Strings(out)
	return out
}

func SubscribedIdentities(brokers []model.Broker) []string {
	var out []string
	for _, b := range brokers {
		if b.Subscribed && b.Email != "" {
			out = append(out, b.Email)
		}
	}
	return out
}

func Identities(brokers []model.Broker) []string {
	out := make([]string, 0, len(brokers))
	for _, b := range brokers {
		if b.Email != "" {
			out = append(out, b.Email)
		}
	}
	return out
}
