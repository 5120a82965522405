package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnRegistry_ConnectDisconnect(t *testing.T) {
	r := NewConnRegistry()

	c1 := &Client{userId: 1}
	c2 := &Client{userId: 2}

	r.Connect(c1.userId, c1)
	assert.Equal(t, []int{1}, r.OnlineUserIds(), "expected user 1 online after connect")

	r.Connect(c2.userId, c2)
	assert.Equal(t, []int{1, 2}, r.OnlineUserIds(), "expected both users online, sorted")

	r.Disconnect(c1)
	assert.Equal(t, []int{2}, r.OnlineUserIds(), "expected only user 2 after disconnect")

	r.Disconnect(c2)
	assert.Empty(t, r.OnlineUserIds(), "expected empty online set")
}

func TestConnRegistry_AnonymousConnectionIsInvisible(t *testing.T) {
	r := NewConnRegistry()

	anon := &Client{userId: 0}
	r.Connect(anon.userId, anon)
	assert.Empty(t, r.OnlineUserIds(), "expected anonymous connection to produce no entry")

	// disconnect of an unregistered connection is a no-op
	r.Disconnect(anon)
	assert.Empty(t, r.OnlineUserIds(), "expected no entries after anonymous disconnect")
}

func TestConnRegistry_LastConnectWins(t *testing.T) {
	r := NewConnRegistry()

	oldConn := &Client{userId: 1}
	newConn := &Client{userId: 1}

	r.Connect(oldConn.userId, oldConn)
	r.Connect(newConn.userId, newConn)

	assert.Equal(t, []int{1}, r.OnlineUserIds(), "expected exactly one entry after reconnect")
	assert.Same(t, newConn, r.entries[1].client, "expected entry to reference the newest connection")

	// a late disconnect from the replaced connection must not clobber the
	// newer entry
	r.Disconnect(oldConn)
	assert.Equal(t, []int{1}, r.OnlineUserIds(), "expected stale disconnect to be a no-op")
	assert.Same(t, newConn, r.entries[1].client, "expected entry to still reference the newest connection")

	r.Disconnect(newConn)
	assert.Empty(t, r.OnlineUserIds(), "expected empty online set after current handle disconnects")
}

func TestConnRegistry_SetViewingStatus(t *testing.T) {
	r := NewConnRegistry()
	c := &Client{userId: 1}

	assert.False(t, r.SetViewingStatus(1, true), "expected no-op for unregistered user")

	r.Connect(c.userId, c)
	assert.False(t, r.IsViewingStatus(1), "expected viewing flag to start false")

	assert.True(t, r.SetViewingStatus(1, true), "expected viewing flag to be set")
	assert.True(t, r.IsViewingStatus(1), "expected viewing flag true after start signal")

	assert.True(t, r.SetViewingStatus(1, false), "expected viewing flag to be cleared")
	assert.False(t, r.IsViewingStatus(1), "expected viewing flag false after end signal")

	// reconnect resets the flag
	r.SetViewingStatus(1, true)
	r.Connect(1, &Client{userId: 1})
	assert.False(t, r.IsViewingStatus(1), "expected viewing flag reset on reconnect")
}

func TestConnRegistry_OnlineUserIdsIsACopy(t *testing.T) {
	r := NewConnRegistry()
	r.Connect(2, &Client{userId: 2})
	r.Connect(1, &Client{userId: 1})

	ids := r.OnlineUserIds()
	assert.Equal(t, []int{1, 2}, ids, "expected sorted ids")

	ids[0] = 99
	assert.Equal(t, []int{1, 2}, r.OnlineUserIds(), "expected registry unaffected by mutating the snapshot")
}
