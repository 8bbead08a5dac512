// Package activity provides real-time activity event capture and fan-out.
package activity

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/ironcrest/sigforge/internal/models"
	"github.com/rs/zerolog"
)

// Store defines the interface for activity event persistence operations.
type Store interface {
	InsertActivityEvent(ctx context.Context, event *models.ActivityEvent) error
	ListActivityEvents(ctx context.Context, filter models.ActivityEventFilter) ([]*models.ActivityEvent, error)
}

// Client represents a connected WebSocket client.
type Client struct {
	id     uuid.UUID
	userID uuid.UUID
	conn   *websocket.Conn
	send   chan *models.ActivityEvent
	feed   *Feed
	filter *ClientFilter
	mu     sync.Mutex
}

// ClientFilter holds the filter preferences for a connected client.
type ClientFilter struct {
	Categories   []models.ActivityEventCategory `json:"categories,omitempty"`
	Types        []models.ActivityEventType     `json:"types,omitempty"`
	SignatureIDs []uuid.UUID                    `json:"signature_ids,omitempty"`
}

// Matches checks if an event matches the client's filter.
func (f *ClientFilter) Matches(event *models.ActivityEvent) bool {
	if f == nil {
		return true
	}

	if len(f.Categories) > 0 {
		found := false
		for _, cat := range f.Categories {
			if cat == event.Category {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if len(f.Types) > 0 {
		found := false
		for _, t := range f.Types {
			if t == event.Type {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if len(f.SignatureIDs) > 0 && event.SignatureID != nil {
		found := false
		for _, id := range f.SignatureIDs {
			if id == *event.SignatureID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

// Config holds configuration for the Feed.
type Config struct {
	// PingInterval is how often to send ping messages to clients.
	PingInterval time.Duration
	// WriteTimeout is the timeout for writing to a client.
	WriteTimeout time.Duration
	// ReadTimeout is the timeout for reading from a client.
	ReadTimeout time.Duration
	// MaxMessageSize is the maximum size of a message from a client.
	MaxMessageSize int64
	// SendBufferSize is the size of the send buffer per client.
	SendBufferSize int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		PingInterval:   30 * time.Second,
		WriteTimeout:   10 * time.Second,
		ReadTimeout:    60 * time.Second,
		MaxMessageSize: 512,
		SendBufferSize: 256,
	}
}

// Feed manages activity event broadcasting to connected clients. Events
// are scoped per user: a client only receives events for its own user ID.
type Feed struct {
	config   Config
	store    Store
	logger   zerolog.Logger
	upgrader websocket.Upgrader

	clients     map[uuid.UUID]*Client
	clientsMu   sync.RWMutex
	userClients map[uuid.UUID]map[uuid.UUID]*Client // userID -> clientID -> client

	broadcast  chan *models.ActivityEvent
	register   chan *Client
	unregister chan *Client

	done chan struct{}
	wg   sync.WaitGroup
}

// NewFeed creates a new Feed with the given configuration.
func NewFeed(store Store, cfg Config, logger zerolog.Logger) *Feed {
	return &Feed{
		config: cfg,
		store:  store,
		logger: logger.With().Str("component", "activity_feed").Logger(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // CORS middleware gates the upgrade request
			},
		},
		clients:     make(map[uuid.UUID]*Client),
		userClients: make(map[uuid.UUID]map[uuid.UUID]*Client),
		broadcast:   make(chan *models.ActivityEvent, 256),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		done:        make(chan struct{}),
	}
}

// Start begins processing events and client management.
func (f *Feed) Start() {
	f.wg.Add(1)
	go f.run()
	f.logger.Info().Msg("activity feed started")
}

// Stop stops the feed and closes all client connections.
func (f *Feed) Stop() {
	close(f.done)
	f.wg.Wait()
	f.logger.Info().Msg("activity feed stopped")
}

func (f *Feed) run() {
	defer f.wg.Done()

	for {
		select {
		case <-f.done:
			f.closeAllClients()
			return

		case client := <-f.register:
			f.addClient(client)

		case client := <-f.unregister:
			f.removeClient(client)

		case event := <-f.broadcast:
			f.broadcastEvent(event)
		}
	}
}

func (f *Feed) addClient(client *Client) {
	f.clientsMu.Lock()
	defer f.clientsMu.Unlock()

	f.clients[client.id] = client

	if _, ok := f.userClients[client.userID]; !ok {
		f.userClients[client.userID] = make(map[uuid.UUID]*Client)
	}
	f.userClients[client.userID][client.id] = client

	f.logger.Debug().
		Str("client_id", client.id.String()).
		Str("user_id", client.userID.String()).
		Msg("client connected")
}

func (f *Feed) removeClient(client *Client) {
	f.clientsMu.Lock()
	defer f.clientsMu.Unlock()

	if _, ok := f.clients[client.id]; !ok {
		return
	}

	delete(f.clients, client.id)

	if userClients, ok := f.userClients[client.userID]; ok {
		delete(userClients, client.id)
		if len(userClients) == 0 {
			delete(f.userClients, client.userID)
		}
	}

	close(client.send)

	f.logger.Debug().
		Str("client_id", client.id.String()).
		Msg("client disconnected")
}

func (f *Feed) closeAllClients() {
	f.clientsMu.Lock()
	defer f.clientsMu.Unlock()

	for _, client := range f.clients {
		close(client.send)
	}
	f.clients = make(map[uuid.UUID]*Client)
	f.userClients = make(map[uuid.UUID]map[uuid.UUID]*Client)
}

// broadcastEvent sends an event to the owning user's clients. Events with
// no user ID go to everyone.
func (f *Feed) broadcastEvent(event *models.ActivityEvent) {
	f.clientsMu.RLock()
	var targets []*Client
	if event.UserID != nil {
		for _, client := range f.userClients[*event.UserID] {
			targets = append(targets, client)
		}
	} else {
		for _, client := range f.clients {
			targets = append(targets, client)
		}
	}
	f.clientsMu.RUnlock()

	for _, client := range targets {
		client.mu.Lock()
		matches := client.filter.Matches(event)
		client.mu.Unlock()
		if !matches {
			continue
		}
		select {
		case client.send <- event:
		default:
			f.logger.Warn().
				Str("client_id", client.id.String()).
				Msg("client send buffer full, dropping event")
		}
	}
}

// Publish persists an event and broadcasts it to connected clients.
func (f *Feed) Publish(ctx context.Context, event *models.ActivityEvent) error {
	if f.store != nil {
		if err := f.store.InsertActivityEvent(ctx, event); err != nil {
			f.logger.Error().Err(err).
				Str("event_type", string(event.Type)).
				Msg("failed to persist activity event")
			return err
		}
	}

	select {
	case f.broadcast <- event:
	default:
		f.logger.Warn().Msg("broadcast buffer full, dropping event")
	}

	return nil
}

// PublishSignatureCreated publishes a signature created event.
func (f *Feed) PublishSignatureCreated(ctx context.Context, userID, signatureID uuid.UUID, name, templateKey string) error {
	event := models.NewActivityEvent(models.ActivityEventSignatureCreated, "Signature Created", name)
	event.SetUser(userID)
	event.SetSignature(signatureID)
	event.SetMetadata(map[string]any{"template_key": templateKey})
	return f.Publish(ctx, event)
}

// PublishSignatureUpdated publishes a signature updated event.
func (f *Feed) PublishSignatureUpdated(ctx context.Context, userID, signatureID uuid.UUID, name string) error {
	event := models.NewActivityEvent(models.ActivityEventSignatureUpdated, "Signature Updated", name)
	event.SetUser(userID)
	event.SetSignature(signatureID)
	return f.Publish(ctx, event)
}

// PublishSignatureDeleted publishes a signature deleted event.
func (f *Feed) PublishSignatureDeleted(ctx context.Context, userID, signatureID uuid.UUID, name string) error {
	event := models.NewActivityEvent(models.ActivityEventSignatureDeleted, "Signature Deleted", name)
	event.SetUser(userID)
	event.SetSignature(signatureID)
	return f.Publish(ctx, event)
}

// PublishSignatureViewed publishes a pixel hit event.
func (f *Feed) PublishSignatureViewed(ctx context.Context, userID *uuid.UUID, signatureID uuid.UUID, deviceType, emailClient string) error {
	event := models.NewActivityEvent(models.ActivityEventSignatureViewed, "Signature Viewed", "A signature was opened")
	if userID != nil {
		event.SetUser(*userID)
	}
	event.SetSignature(signatureID)
	event.SetMetadata(map[string]any{
		"device_type":  deviceType,
		"email_client": emailClient,
	})
	return f.Publish(ctx, event)
}

// PublishLinkClicked publishes a tracking link click event.
func (f *Feed) PublishLinkClicked(ctx context.Context, userID, signatureID uuid.UUID, linkType string) error {
	event := models.NewActivityEvent(models.ActivityEventLinkClicked, "Link Clicked", "A "+linkType+" link was clicked")
	event.SetUser(userID)
	event.SetSignature(signatureID)
	event.SetMetadata(map[string]any{"link_type": linkType})
	return f.Publish(ctx, event)
}

// PublishLinksExpired publishes a maintenance expiry sweep event.
func (f *Feed) PublishLinksExpired(ctx context.Context, count int64) error {
	event := models.NewActivityEvent(models.ActivityEventLinksExpired, "Tracking Links Expired", "Expired tracking links were deactivated")
	event.SetMetadata(map[string]any{"count": count})
	return f.Publish(ctx, event)
}

// HandleWebSocket handles a WebSocket connection upgrade and client management.
func (f *Feed) HandleWebSocket(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Error().Err(err).Msg("failed to upgrade websocket connection")
		return
	}

	client := &Client{
		id:     uuid.New(),
		userID: userID,
		conn:   conn,
		send:   make(chan *models.ActivityEvent, f.config.SendBufferSize),
		feed:   f,
		filter: &ClientFilter{},
	}

	f.register <- client

	go client.writePump()
	go client.readPump()
}

// GetTotalClientCount returns the total number of connected clients.
func (f *Feed) GetTotalClientCount() int {
	f.clientsMu.RLock()
	defer f.clientsMu.RUnlock()
	return len(f.clients)
}

// readPump reads messages from the client.
func (c *Client) readPump() {
	defer func() {
		c.feed.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.feed.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.feed.config.ReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.feed.config.ReadTimeout))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.feed.logger.Debug().Err(err).Msg("websocket read error")
			}
			break
		}

		// Clients push filter updates as {"type":"filter","filter":{...}}.
		var filterUpdate struct {
			Type   string       `json:"type"`
			Filter ClientFilter `json:"filter"`
		}
		if err := json.Unmarshal(message, &filterUpdate); err == nil && filterUpdate.Type == "filter" {
			c.mu.Lock()
			c.filter = &filterUpdate.Filter
			c.mu.Unlock()
		}
	}
}

// writePump writes messages to the client.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.feed.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.feed.config.WriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}

			data, _ := json.Marshal(event)
			w.Write(data)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.feed.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
