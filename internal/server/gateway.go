package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/jtorres/go-chatline/internal/database"
	"github.com/jtorres/go-chatline/internal/media"
	"github.com/jtorres/go-chatline/internal/stats"
	"github.com/jtorres/go-chatline/internal/types"
)

type stopReq struct {
	done chan struct{}
}

// Gateway is the real-time core: it owns the connection set, drives the
// connection registry, fans presence and message events out to every
// connection, and runs message ingestion.
type Gateway struct {
	log            *log.Logger
	db             database.ChatRepository
	uploader       media.Uploader
	registry       *ConnRegistry
	stats          stats.StatsProvider
	conns          map[*Client]struct{}
	connsLock      sync.Mutex
	RegisterChan   chan *Client
	deRegisterChan chan *Client
	stop           chan stopReq
}

func NewGateway(logger *log.Logger, db database.ChatRepository, uploader media.Uploader, su stats.StatsProvider) (*Gateway, error) {
	gw := &Gateway{
		log:            logger,
		db:             db,
		uploader:       uploader,
		registry:       NewConnRegistry(),
		stats:          su,
		conns:          make(map[*Client]struct{}),
		RegisterChan:   make(chan *Client),
		deRegisterChan: make(chan *Client),
		stop:           make(chan stopReq),
	}

	su.RegisterMetric("NumActiveConnections")
	su.RegisterMetric("NumPresenceBroadcasts")
	su.RegisterMetric("NumMessagesDelivered")
	su.RegisterMetric("NumEventsDropped")

	return gw, nil
}

// Run serializes connect and disconnect handling. Every registry mutation is
// followed by a presence broadcast so the published online set is always a
// function of current registry contents.
func (gw *Gateway) Run() {
	for {
		select {
		case c := <-gw.RegisterChan:
			gw.log.Printf("adding connection for user %d", c.userId)
			gw.addConn(c)
			gw.registry.Connect(c.userId, c)
			gw.broadcastPresence()
		case c := <-gw.deRegisterChan:
			gw.log.Printf("removing connection for user %d", c.userId)
			gw.removeConn(c)
			gw.registry.Disconnect(c)
			gw.broadcastPresence()
		case req := <-gw.stop:
			gw.log.Println("closing client connections")
			gw.connsLock.Lock()
			for c := range gw.conns {
				c.stopClient()
			}
			gw.conns = make(map[*Client]struct{})
			gw.connsLock.Unlock()

			close(req.done)
			return
		}
	}
}

// RegisterClient hands a freshly upgraded connection to the event loop.
func (gw *Gateway) RegisterClient(c *Client) {
	gw.RegisterChan <- c
}

func (gw *Gateway) Registry() *ConnRegistry {
	return gw.registry
}

func (gw *Gateway) addConn(c *Client) {
	gw.connsLock.Lock()
	defer gw.connsLock.Unlock()
	gw.conns[c] = struct{}{}
	gw.stats.Incr("NumActiveConnections")
}

func (gw *Gateway) removeConn(c *Client) {
	gw.connsLock.Lock()
	defer gw.connsLock.Unlock()
	if _, ok := gw.conns[c]; ok {
		delete(gw.conns, c)
		gw.stats.Decr("NumActiveConnections")
	}
}

// snapshotConns copies the connection set so fan-out happens outside any
// lock; a stalled client never delays registry mutations for others.
func (gw *Gateway) snapshotConns() []*Client {
	gw.connsLock.Lock()
	defer gw.connsLock.Unlock()

	conns := make([]*Client, 0, len(gw.conns))
	for c := range gw.conns {
		conns = append(conns, c)
	}
	return conns
}

// broadcastPresence publishes the full online-user set to every connection,
// registered or not. Fire-and-forget: a connection that is already gone
// silently drops the event.
func (gw *Gateway) broadcastPresence() {
	event := newPresenceEvent(gw.registry.OnlineUserIds())
	for _, c := range gw.snapshotConns() {
		if !c.queueEvent(event) {
			gw.stats.Incr("NumEventsDropped")
		}
	}

	gw.stats.Incr("NumPresenceBroadcasts")
}

// BroadcastMessage publishes a persisted message record to all connections.
// Delivery is global rather than scoped to the sender and receiver; a
// targeted policy would be a local change here.
func (gw *Gateway) BroadcastMessage(msg types.Message) {
	event := newMessageEvent(msg)
	for _, c := range gw.snapshotConns() {
		if c.queueEvent(event) {
			gw.stats.Incr("NumMessagesDelivered")
		} else {
			gw.stats.Incr("NumEventsDropped")
		}
	}
}

func (gw *Gateway) setViewingStatus(c *Client, viewing bool) {
	if c.userId == 0 {
		return
	}

	if !gw.registry.SetViewingStatus(c.userId, viewing) {
		// client raced its own disconnect
		gw.log.Printf("viewing signal for unregistered user %d ignored", c.userId)
	}
}

type SendMessageParams struct {
	SenderId      int
	ReceiverId    int
	Text          string
	Media         []byte
	MediaMimeType string
}

// SendMessage runs message ingestion: validate, upload media if present,
// persist, then broadcast exactly once. Each step's failure is fatal to the
// request and leaves no partial record behind.
func (gw *Gateway) SendMessage(ctx context.Context, params SendMessageParams) (types.Message, error) {
	if params.SenderId == 0 || params.ReceiverId == 0 {
		return types.Message{}, fmt.Errorf("%w: sender and receiver are required", ErrValidation)
	}
	if params.Text == "" && len(params.Media) == 0 {
		return types.Message{}, fmt.Errorf("%w: message needs text or media", ErrValidation)
	}

	if _, err := gw.db.GetAccountById(params.ReceiverId); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Message{}, fmt.Errorf("%w: receiver %d", ErrNotFound, params.ReceiverId)
		}
		return types.Message{}, fmt.Errorf("lookup receiver: %w", err)
	}

	var attachment *types.MediaAttachment
	if len(params.Media) > 0 {
		up, err := gw.uploader.Upload(ctx, params.Media, params.MediaMimeType)
		if err != nil {
			return types.Message{}, fmt.Errorf("%w: %v", ErrUpload, err)
		}

		attachment = &types.MediaAttachment{
			Url:  up.SecureUrl,
			Type: media.DetectMediaType(params.MediaMimeType),
		}
	}

	createParams := database.CreateMessageParams{
		SenderId:   params.SenderId,
		ReceiverId: params.ReceiverId,
		Text:       params.Text,
	}
	if attachment != nil {
		createParams.MediaUrl = attachment.Url
		createParams.MediaType = string(attachment.Type)
	}

	rec, err := gw.db.CreateMessage(createParams)
	if err != nil {
		return types.Message{}, fmt.Errorf("persist message: %w", err)
	}

	msg := types.Message{
		Id:         rec.Id,
		SenderId:   rec.SenderId,
		ReceiverId: rec.ReceiverId,
		Text:       rec.Text,
		Media:      attachment,
		CreatedAt:  rec.CreatedAt,
	}

	gw.BroadcastMessage(msg)

	return msg, nil
}

func (gw *Gateway) Shutdown(ctx context.Context) error {
	req := stopReq{done: make(chan struct{})}

	select {
	case gw.stop <- req:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-req.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
