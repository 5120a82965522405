package server

import (
	"testing"

	"github.com/jtorres/go-chatline/internal/database"
	"github.com/jtorres/go-chatline/internal/media"
	"github.com/jtorres/go-chatline/internal/stats"
	"github.com/jtorres/go-chatline/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func Test_queueEvent(t *testing.T) {
	t.Run("successful queue", func(t *testing.T) {
		c := &Client{
			send: make(chan *ServerEvent, 1),
			log:  testutil.TestLogger(t),
		}

		res := c.queueEvent(&ServerEvent{})
		assert.True(t, res, "expected queueEvent to return true when channel is not full")

		select {
		case event := <-c.send:
			assert.NotNil(t, event, "expected an event to be queued for the client")
		default:
			t.Error("expected an event to be queued for the client, but none was")
		}
	})
	t.Run("channel full", func(t *testing.T) {
		c := &Client{
			send: make(chan *ServerEvent, 1),
			log:  testutil.TestLogger(t),
		}

		c.send <- &ServerEvent{} // pre-fill to simulate a stalled client
		res := c.queueEvent(&ServerEvent{})
		assert.False(t, res, "expected queueEvent to return false when channel is full")
	})
}

func Test_stopClient(t *testing.T) {
	c := &Client{
		stop: make(chan struct{}),
	}

	c.stopClient()

	select {
	case <-c.stop:
		// closed as expected
	default:
		t.Error("expected stop channel to be closed")
	}
}

func TestNewClient(t *testing.T) {
	gw := newTestGateway(t, &database.MockChatRepository{}, &media.MockUploader{}, &stats.MockStatsUpdater{})

	c := NewClient(7, nil, gw, testutil.TestLogger(t))
	assert.Equal(t, 7, c.userId, "expected user id to be set")
	assert.Equal(t, gw, c.gateway, "expected gateway reference to be set")
	assert.NotNil(t, c.send, "expected send channel to be initialized")
	assert.NotNil(t, c.stop, "expected stop channel to be initialized")
}
