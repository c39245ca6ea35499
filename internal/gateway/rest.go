package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RESTAdapter implements GatewayAdapter for HTTP-based message ingestion.
// It lets the bot be driven without WhatsApp, e.g. from cmd/chat.
type RESTAdapter struct {
	handler  MessageHandler
	channels map[string][]*OutboundMessage // channelID -> collected replies
	mu       sync.Mutex
	logger   *zap.Logger
}

// NewRESTAdapter creates a REST gateway adapter.
func NewRESTAdapter(logger *zap.Logger) *RESTAdapter {
	return &RESTAdapter{
		channels: make(map[string][]*OutboundMessage),
		logger:   logger,
	}
}

func (a *RESTAdapter) Platform() string { return "rest" }

func (a *RESTAdapter) Connect(_ context.Context) error { return nil }

func (a *RESTAdapter) OnMessage(h MessageHandler) { a.handler = h }

func (a *RESTAdapter) Close() error { return nil }

// Send records a reply for an in-flight REST request.
func (a *RESTAdapter) Send(_ context.Context, msg *OutboundMessage) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	replies, ok := a.channels[msg.ChannelID]
	if !ok {
		return fmt.Errorf("no active channel: %s", msg.ChannelID)
	}
	a.channels[msg.ChannelID] = append(replies, msg)
	return nil
}

// Routes returns a chi router with REST gateway endpoints.
func (a *RESTAdapter) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/message", a.handleMessage)
	return r
}

// RESTReply is the response body of POST /message.
type RESTReply struct {
	ChannelID string             `json:"channel_id"`
	Replies   []*OutboundMessage `json:"replies"`
}

// handleMessage runs an inbound message through the handler and returns
// every reply it produced.
func (a *RESTAdapter) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID   string `json:"user_id"`
		UserName string `json:"user_name"`
		Content  string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.Content == "" {
		http.Error(w, `{"error":"content is required"}`, http.StatusBadRequest)
		return
	}

	channelID := uuid.New().String()

	a.mu.Lock()
	a.channels[channelID] = nil
	a.mu.Unlock()

	if a.handler != nil {
		a.handler(r.Context(), &InboundMessage{
			Platform:  "rest",
			ChannelID: channelID,
			UserID:    req.UserID,
			UserName:  req.UserName,
			Type:      MessageText,
			Content:   req.Content,
			Timestamp: time.Now(),
		})
	}

	a.mu.Lock()
	replies := a.channels[channelID]
	delete(a.channels, channelID)
	a.mu.Unlock()

	if replies == nil {
		replies = []*OutboundMessage{}
	}
	a.logger.Debug("rest message handled",
		zap.String("channel", channelID),
		zap.String("user", req.UserID),
		zap.Int("replies", len(replies)))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(RESTReply{ChannelID: channelID, Replies: replies})
}
