package server

import (
	"time"

	"github.com/jtorres/go-chatline/internal/types"
)

// ServerEvent is the union of events pushed to connected clients. Exactly
// one of the payload fields is set.
type ServerEvent struct {
	Timestamp time.Time `json:"timestamp"`
	// Presence carries the full online-user set; sent to every connection
	// on each connect or disconnect.
	Presence *Presence `json:"presence,omitempty"`
	// NewMessage carries a persisted message record; sent to every
	// connection when ingestion completes.
	NewMessage *types.Message `json:"new_message,omitempty"`
}

type Presence struct {
	OnlineUserIds []int `json:"online_user_ids"`
}

// ClientEvent is the union of signals a client may send over its
// connection. The viewing signals carry no payload.
type ClientEvent struct {
	StatusViewingStarted *StatusViewingSignal `json:"status_viewing_started,omitempty"`
	StatusViewingEnded   *StatusViewingSignal `json:"status_viewing_ended,omitempty"`
}

type StatusViewingSignal struct{}

func newPresenceEvent(onlineUserIds []int) *ServerEvent {
	return &ServerEvent{
		Timestamp: Now(),
		Presence:  &Presence{OnlineUserIds: onlineUserIds},
	}
}

func newMessageEvent(msg types.Message) *ServerEvent {
	return &ServerEvent{
		Timestamp:  Now(),
		NewMessage: &msg,
	}
}

func Now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}
