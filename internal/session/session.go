// Package session implements the session multiplexer: a registry of
// duplex client connections supporting targeted and group delivery, with
// a background janitor that evicts idle connections. The per-client
// buffered send channel plus a single writer goroutine per client is
// adapted from the teacher's gateway.wsSession (internal/gateway/ws_control_plane.go);
// the parallel/sequential group-delivery split is adapted from the
// teacher's gateway.BroadcastManager (internal/gateway/broadcast.go).
package session

import (
	"context"
	"sync"
	"time"

	"github.com/haasonsaas/jarvisgate/internal/model"
)

// sendBuffer is the per-client outbound queue depth. A client whose
// consumer can't keep up within this buffer is treated as lost rather
// than blocking the sender.
const sendBuffer = 64

// Conn abstracts the duplex transport a Client writes to, so the
// registry can be exercised without a real network connection.
type Conn interface {
	WriteMessage(payload []byte) error
	Ping() error
	Close() error
}

// DeliveryStrategy mirrors the workflow engine's complexity-free
// dichotomy for group sends: concurrent or one-at-a-time.
type DeliveryStrategy string

const (
	DeliveryParallel   DeliveryStrategy = "parallel"
	DeliverySequential DeliveryStrategy = "sequential"
)

// SendResult reports one client's outcome within a group or broadcast send.
type SendResult struct {
	ClientID string
	Err      error
}

// Client is one registered duplex connection and its delivery queue.
type Client struct {
	id   string
	conn Conn
	send chan []byte
	done chan struct{}

	mu      sync.Mutex
	session *model.Session
}

func newClient(id string, conn Conn, now time.Time) *Client {
	return &Client{
		id:      id,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		done:    make(chan struct{}),
		session: model.NewSession(id, now),
	}
}

// writePump drains send in order onto the connection; it is the only
// goroutine that ever calls conn.WriteMessage for this client, so
// delivery to one client is strictly ordered.
func (c *Client) writePump() {
	for payload := range c.send {
		if err := c.conn.WriteMessage(payload); err != nil {
			return
		}
	}
}

// Snapshot returns a copy of the client's session record.
func (c *Client) Snapshot() model.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return *c.session
}

func (c *Client) touch(now time.Time) {
	c.mu.Lock()
	c.session.LastActivity = now
	c.session.MessageCount++
	c.mu.Unlock()
}

// Registry is the session multiplexer: a live set of connected clients
// keyed by client id, plus named groups for fan-out delivery.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*Client
	groups  map[string]map[string]bool
	now     func() time.Time
}

// New builds an empty Registry. now defaults to time.Now.
func New(now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{
		clients: map[string]*Client{},
		groups:  map[string]map[string]bool{},
		now:     now,
	}
}

// Connect registers conn under clientID and starts its write pump. A
// second Connect for the same id replaces and disconnects the first,
// matching a client that reconnected without a clean close.
func (r *Registry) Connect(clientID string, conn Conn) *Client {
	r.mu.Lock()
	if old, ok := r.clients[clientID]; ok {
		close(old.send)
		_ = old.conn.Close()
	}
	client := newClient(clientID, conn, r.now())
	r.clients[clientID] = client
	r.mu.Unlock()

	go client.writePump()
	return client
}

// Disconnect removes clientID, closing its send queue and connection and
// dropping it from every group it had joined.
func (r *Registry) Disconnect(clientID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	client, ok := r.clients[clientID]
	if !ok {
		return
	}
	delete(r.clients, clientID)
	for group, members := range r.groups {
		delete(members, clientID)
		if len(members) == 0 {
			delete(r.groups, group)
		}
	}
	close(client.send)
	_ = client.conn.Close()
}

// Touch records inbound activity for clientID, resetting its idle timer.
func (r *Registry) Touch(clientID string) {
	r.mu.RLock()
	client, ok := r.clients[clientID]
	r.mu.RUnlock()
	if ok {
		client.touch(r.now())
	}
}

// Get returns the client registered under id, if connected.
func (r *Registry) Get(clientID string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.clients[clientID]
	return client, ok
}

// Count reports how many clients are currently connected.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// SendPersonal queues payload for exactly one client. It reports
// session_lost if the client isn't connected or its queue is full.
func (r *Registry) SendPersonal(clientID string, payload []byte) error {
	r.mu.RLock()
	client, ok := r.clients[clientID]
	r.mu.RUnlock()
	if !ok {
		return model.NewError(model.KindSessionLost, "session", "client not connected: "+clientID, nil)
	}
	select {
	case client.send <- payload:
		return nil
	default:
		return model.NewError(model.KindSessionLost, "session", "client send queue full: "+clientID, nil)
	}
}

// AddToGroup joins clientID to group. The client must already be
// connected.
func (r *Registry) AddToGroup(clientID, group string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[clientID]; !ok {
		return model.NewError(model.KindSessionLost, "session", "client not connected: "+clientID, nil)
	}
	members, ok := r.groups[group]
	if !ok {
		members = map[string]bool{}
		r.groups[group] = members
	}
	members[clientID] = true
	return nil
}

// RemoveFromGroup removes clientID from group, pruning the group if it
// becomes empty.
func (r *Registry) RemoveFromGroup(clientID, group string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	members, ok := r.groups[group]
	if !ok {
		return nil
	}
	delete(members, clientID)
	if len(members) == 0 {
		delete(r.groups, group)
	}
	return nil
}

// SendGroup delivers payload to every member of group, per strategy.
// Results are returned per member; a member that has since disconnected
// reports session_lost rather than failing the whole send.
func (r *Registry) SendGroup(group string, payload []byte, strategy DeliveryStrategy) []SendResult {
	r.mu.RLock()
	members := make([]string, 0, len(r.groups[group]))
	for id := range r.groups[group] {
		members = append(members, id)
	}
	r.mu.RUnlock()
	return r.deliver(members, payload, strategy)
}

// Broadcast delivers payload to every connected client, per strategy.
func (r *Registry) Broadcast(payload []byte, strategy DeliveryStrategy) []SendResult {
	r.mu.RLock()
	members := make([]string, 0, len(r.clients))
	for id := range r.clients {
		members = append(members, id)
	}
	r.mu.RUnlock()
	return r.deliver(members, payload, strategy)
}

func (r *Registry) deliver(members []string, payload []byte, strategy DeliveryStrategy) []SendResult {
	if strategy == DeliverySequential {
		results := make([]SendResult, 0, len(members))
		for _, id := range members {
			results = append(results, SendResult{ClientID: id, Err: r.SendPersonal(id, payload)})
		}
		return results
	}

	results := make([]SendResult, len(members))
	var wg sync.WaitGroup
	wg.Add(len(members))
	for i, id := range members {
		go func(idx int, clientID string) {
			defer wg.Done()
			results[idx] = SendResult{ClientID: clientID, Err: r.SendPersonal(clientID, payload)}
		}(i, id)
	}
	wg.Wait()
	return results
}

// PingAll pings every connected client, disconnecting any whose ping
// fails (a dead TCP connection the read loop hasn't noticed yet).
func (r *Registry) PingAll() {
	r.mu.RLock()
	clients := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		clients = append(clients, c)
	}
	r.mu.RUnlock()

	for _, c := range clients {
		if err := c.conn.Ping(); err != nil {
			r.Disconnect(c.id)
		}
	}
}

// RunJanitor sweeps for idle clients every model.JanitorInterval,
// disconnecting anyone idle past model.SessionIdleLimit. It runs until
// ctx is cancelled.
func (r *Registry) RunJanitor(ctx context.Context) {
	ticker := time.NewTicker(model.JanitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.evictIdle()
		}
	}
}

func (r *Registry) evictIdle() {
	now := r.now()
	r.mu.RLock()
	idle := make([]string, 0)
	for id, c := range r.clients {
		snap := c.Snapshot()
		if snap.IdleFor(now) >= model.SessionIdleLimit {
			idle = append(idle, id)
		}
	}
	r.mu.RUnlock()
	for _, id := range idle {
		r.Disconnect(id)
	}
}

// DisconnectAll closes every connected client. Used during graceful
// shutdown, after a shutdown notice has been broadcast.
func (r *Registry) DisconnectAll() {
	r.mu.RLock()
	ids := make([]string, 0, len(r.clients))
	for id := range r.clients {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	for _, id := range ids {
		r.Disconnect(id)
	}
}
