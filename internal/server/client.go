package server

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 1024
)

// Client owns one websocket connection. A client with userId zero is
// anonymous: it receives broadcasts but never appears in the registry.
type Client struct {
	conn    *websocket.Conn
	gateway *Gateway
	log     *log.Logger
	userId  int
	send    chan *ServerEvent
	stop    chan struct{}
}

func NewClient(userId int, conn *websocket.Conn, gw *Gateway, l *log.Logger) *Client {
	return &Client{
		conn:    conn,
		gateway: gw,
		log:     l,
		userId:  userId,
		send:    make(chan *ServerEvent, 256),
		stop:    make(chan struct{}),
	}
}

func (c *Client) Write() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.log.Println("write exiting")
	}()

	for {
		select {
		case event, ok := <-c.send:
			if !ok {
				return
			}

			bytes, err := json.Marshal(event)
			if err != nil {
				c.log.Println("failed to serialize event:", err)
				continue
			}

			if !c.writeFrame(websocket.TextMessage, bytes) {
				return
			}
		case <-c.stop:
			return
		case <-ticker.C:
			if !c.writeFrame(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

func (c *Client) Read() {
	defer func() {
		c.conn.Close()
		c.cleanup()
		c.log.Println("read exiting")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(appData string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.log.Printf("ws: read: %v", err)
			}
			break
		}

		var event ClientEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			c.log.Println("error parsing client event:", err)
			continue
		}

		switch {
		case event.StatusViewingStarted != nil:
			c.gateway.setViewingStatus(c, true)
		case event.StatusViewingEnded != nil:
			c.gateway.setViewingStatus(c, false)
		}
	}
}

// queueEvent hands an event to the write pump without blocking. Events for
// a stalled client are dropped so one slow connection cannot hold up a
// broadcast.
func (c *Client) queueEvent(event *ServerEvent) bool {
	select {
	case c.send <- event:
	default:
		c.log.Println("dropping event, send queue full")
		return false
	}

	return true
}

func (c *Client) writeFrame(msgType int, msg []byte) bool {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := c.conn.WriteMessage(msgType, msg); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
			websocket.CloseNormalClosure) {
			c.log.Printf("write message: %s", err)
		}
		return false
	}

	return true
}

func (c *Client) stopClient() {
	close(c.stop)
}

func (c *Client) cleanup() {
	// skip deregistration when the gateway already stopped this client
	// during shutdown; its event loop is no longer draining the channel
	select {
	case c.gateway.deRegisterChan <- c:
		c.stopClient()
	case <-c.stop:
	}
}
