// internal/session/registry.go
package session

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/Sumit112234/sixteen-parchi/internal/models"
	"github.com/Sumit112234/sixteen-parchi/internal/room"
)

const outBuffer = 64

// Conn is one live websocket connection. The write pump drains Out;
// Send never blocks, so a wedged client cannot stall a room.
type Conn struct {
	ID     uuid.UUID
	Out    chan room.Event
	Cancel context.CancelFunc

	// Player is set when the connection announces its identity and is
	// only touched by the connection's own read loop.
	Player *models.Player

	// AccountID resolved from the auth cookie at upgrade time,
	// uuid.Nil for guests.
	AccountID uuid.UUID

	// Validated records private rooms this connection has presented
	// the correct password for. Touched only by the read loop.
	Validated map[uuid.UUID]bool
}

func NewConn(cancel context.CancelFunc) *Conn {
	return &Conn{
		ID:        uuid.New(),
		Out:       make(chan room.Event, outBuffer),
		Cancel:    cancel,
		Validated: make(map[uuid.UUID]bool),
	}
}

// Send queues ev for the write pump, dropping it if the client is too
// far behind.
func (c *Conn) Send(ev room.Event) bool {
	select {
	case c.Out <- ev:
		return true
	default:
		return false
	}
}

// Registry tracks every live connection, keyed by connection id.
type Registry struct {
	mu    sync.Mutex
	conns map[uuid.UUID]*Conn
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[uuid.UUID]*Conn)}
}

func (r *Registry) Add(c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[c.ID] = c
}

func (r *Registry) Get(id uuid.UUID) (*Conn, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[id]
	return c, ok
}

func (r *Registry) Remove(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, id)
}

func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// SendTo queues ev for one connection, if it is still around.
func (r *Registry) SendTo(id uuid.UUID, ev room.Event) {
	if c, ok := r.Get(id); ok {
		c.Send(ev)
	}
}

// SendToAll queues ev for the given connections.
func (r *Registry) SendToAll(ids []uuid.UUID, ev room.Event) {
	for _, id := range ids {
		r.SendTo(id, ev)
	}
}

// Broadcast queues ev for every live connection.
func (r *Registry) Broadcast(ev room.Event) {
	r.mu.Lock()
	conns := make([]*Conn, 0, len(r.conns))
	for _, c := range r.conns {
		conns = append(conns, c)
	}
	r.mu.Unlock()

	for _, c := range conns {
		c.Send(ev)
	}
}
