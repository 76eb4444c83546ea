package reload

import (
	"sync"
	"time"
)

// Conn is the subset of *websocket.Conn the registry needs.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Registry holds at most one live client connection.
//
// Replace swaps in a new connection and drops the reference to the old one
// without closing it. Clear empties the slot only if the given connection is
// still the current one, so a stale connection finishing its read loop never
// evicts its successor.
type Registry struct {
	mu   sync.Mutex
	conn Conn
}

// Replace registers c as the live connection and returns the previous one.
func (r *Registry) Replace(c Conn) Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.conn
	r.conn = c
	return prev
}

// Clear empties the slot if c is the current connection.
func (r *Registry) Clear(c Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn != c || c == nil {
		return false
	}
	r.conn = nil
	return true
}

// Current returns the live connection, or nil.
func (r *Registry) Current() Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conn
}

// Send writes one frame to the live connection. It reports false without
// error when no connection is registered. A failed write clears the slot.
func (r *Registry) Send(messageType int, data []byte, timeout time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn == nil {
		return false, nil
	}
	if timeout > 0 {
		if err := r.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
			r.conn = nil
			return false, err
		}
	}
	if err := r.conn.WriteMessage(messageType, data); err != nil {
		r.conn = nil
		return false, err
	}
	return true, nil
}
