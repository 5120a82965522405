package server

import (
	"sort"
	"sync"
)

// registryEntry is the live-connection record for one user. The client
// handle is owned by the registry for the lifetime of the entry.
type registryEntry struct {
	client          *Client
	isViewingStatus bool
}

// ConnRegistry maps user ids to their live connection. All reads and writes,
// including the snapshot used for presence broadcasts, go through a single
// mutex so no caller can observe a torn intermediate state.
type ConnRegistry struct {
	mu      sync.Mutex
	entries map[int]*registryEntry
}

func NewConnRegistry() *ConnRegistry {
	return &ConnRegistry{
		entries: make(map[int]*registryEntry),
	}
}

// Connect inserts or replaces the entry for userId. A reconnect overwrites
// the previous entry, so the registry holds at most one entry per user and
// the newest connection wins. Connections without a user id are accepted at
// the transport level but never registered.
func (r *ConnRegistry) Connect(userId int, c *Client) {
	if userId == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[userId] = &registryEntry{client: c}
}

// Disconnect removes the entry for the client's user, but only while the
// registry still references this exact client. A late disconnect arriving
// after the user reconnected elsewhere is a no-op.
func (r *ConnRegistry) Disconnect(c *Client) {
	if c.userId == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[c.userId]; ok && e.client == c {
		delete(r.entries, c.userId)
	}
}

// SetViewingStatus toggles the viewing flag for a registered user. It
// reports false when the user has no live entry (the client raced a
// disconnect), which callers treat as a benign no-op.
func (r *ConnRegistry) SetViewingStatus(userId int, viewing bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[userId]
	if !ok {
		return false
	}

	e.isViewingStatus = viewing
	return true
}

func (r *ConnRegistry) IsViewingStatus(userId int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[userId]
	return ok && e.isViewingStatus
}

// OnlineUserIds returns a sorted point-in-time snapshot of the registered
// user ids. The slice is a copy; callers may fan it out without holding the
// registry lock.
func (r *ConnRegistry) OnlineUserIds() []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]int, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	return ids
}
