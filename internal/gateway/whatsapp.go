package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrMalformedPayload is returned for webhook bodies without an entry array.
var ErrMalformedPayload = errors.New("malformed webhook payload")

// WhatsAppConfig holds the Cloud API credentials and endpoint.
type WhatsAppConfig struct {
	Token         string
	PhoneNumberID string
	VerifyToken   string
	APIURL        string // e.g. https://graph.facebook.com
	APIVersion    string // e.g. v17.0
	Timeout       time.Duration
}

// WhatsAppAdapter implements GatewayAdapter for the WhatsApp Cloud API.
// Inbound traffic arrives through the webhook; see Deliver.
type WhatsAppAdapter struct {
	cfg     WhatsAppConfig
	client  *http.Client
	handler MessageHandler
	logger  *zap.Logger
}

// NewWhatsAppAdapter creates a WhatsApp gateway adapter.
func NewWhatsAppAdapter(cfg WhatsAppConfig, logger *zap.Logger) *WhatsAppAdapter {
	if cfg.APIURL == "" {
		cfg.APIURL = "https://graph.facebook.com"
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = "v17.0"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &WhatsAppAdapter{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

func (a *WhatsAppAdapter) Platform() string { return "whatsapp" }

func (a *WhatsAppAdapter) OnMessage(h MessageHandler) { a.handler = h }

func (a *WhatsAppAdapter) Close() error { return nil }

// Connect has nothing to open; the platform pushes to our webhook.
func (a *WhatsAppAdapter) Connect(_ context.Context) error {
	if a.cfg.Token == "" || a.cfg.PhoneNumberID == "" {
		a.logger.Warn("whatsapp adapter has no credentials, outbound sends will fail")
	}
	return nil
}

// Status reports whether outbound credentials are configured.
func (a *WhatsAppAdapter) Status() AdapterStatus {
	st := AdapterStatus{Platform: a.Platform(), Connected: a.cfg.Token != "" && a.cfg.PhoneNumberID != ""}
	if !st.Connected {
		st.Details = "missing access token or phone number id"
	}
	return st
}

// Verify answers the webhook subscription handshake. It returns the challenge
// and true when mode is set and token matches the configured verify token.
func (a *WhatsAppAdapter) Verify(mode, token, challenge string) (string, bool) {
	if mode == "" || a.cfg.VerifyToken == "" || token != a.cfg.VerifyToken {
		return "", false
	}
	return challenge, true
}

// Deliver parses a webhook body and hands each message to the handler, one
// after another. It fails only when the body itself is unusable.
func (a *WhatsAppAdapter) Deliver(ctx context.Context, body []byte) (int, error) {
	msgs, err := ParseWebhook(body)
	if err != nil {
		return 0, err
	}
	for _, m := range msgs {
		if a.handler != nil {
			a.handler(ctx, m)
		}
	}
	return len(msgs), nil
}

// Meta webhook payload, reduced to the fields we read.
type webhookPayload struct {
	Object string         `json:"object"`
	Entry  []webhookEntry `json:"entry"`
}

type webhookEntry struct {
	ID      string          `json:"id"`
	Changes []webhookChange `json:"changes"`
}

type webhookChange struct {
	Field string `json:"field"`
	Value struct {
		Contacts []struct {
			Profile struct {
				Name string `json:"name"`
			} `json:"profile"`
			WaID string `json:"wa_id"`
		} `json:"contacts,omitempty"`
		Messages []webhookMessage `json:"messages,omitempty"`
	} `json:"value"`
}

type webhookMessage struct {
	From      string `json:"from"`
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Text      *struct {
		Body string `json:"body"`
	} `json:"text,omitempty"`
}

// ParseWebhook flattens entry[].changes[].value.messages[] into inbound
// messages, preserving delivery order. Messages without a sender are dropped.
func ParseWebhook(body []byte) ([]*InboundMessage, error) {
	var p webhookPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if p.Entry == nil {
		return nil, fmt.Errorf("%w: missing entry array", ErrMalformedPayload)
	}

	var out []*InboundMessage
	for _, e := range p.Entry {
		for _, c := range e.Changes {
			names := make(map[string]string, len(c.Value.Contacts))
			for _, ct := range c.Value.Contacts {
				names[ct.WaID] = ct.Profile.Name
			}
			for _, m := range c.Value.Messages {
				if m.From == "" {
					continue
				}
				msg := &InboundMessage{
					Platform:  "whatsapp",
					ChannelID: m.From,
					UserID:    m.From,
					UserName:  names[m.From],
					MessageID: m.ID,
					Type:      MessageType(m.Type),
					Timestamp: parseUnix(m.Timestamp),
				}
				if m.Type == string(MessageText) && m.Text != nil {
					msg.Content = m.Text.Body
				}
				out = append(out, msg)
			}
		}
	}
	return out, nil
}

func parseUnix(s string) time.Time {
	sec, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Now()
	}
	return time.Unix(sec, 0)
}

type sendRequest struct {
	MessagingProduct string        `json:"messaging_product"`
	RecipientType    string        `json:"recipient_type"`
	To               string        `json:"to"`
	Type             MessageType   `json:"type"`
	Text             *textContent  `json:"text,omitempty"`
	Audio            *audioContent `json:"audio,omitempty"`
}

type textContent struct {
	Body string `json:"body"`
}

type audioContent struct {
	Link string `json:"link"`
}

func (a *WhatsAppAdapter) messagesURL() string {
	return fmt.Sprintf("%s/%s/%s/messages",
		strings.TrimRight(a.cfg.APIURL, "/"), a.cfg.APIVersion, a.cfg.PhoneNumberID)
}

// Send posts a text or audio message to the Cloud API.
func (a *WhatsAppAdapter) Send(ctx context.Context, msg *OutboundMessage) error {
	req := sendRequest{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               msg.ChannelID,
		Type:             msg.Type,
	}
	switch msg.Type {
	case MessageAudio:
		req.Audio = &audioContent{Link: msg.AudioURL}
	case MessageText, "":
		req.Type = MessageText
		req.Text = &textContent{Body: msg.Content}
	default:
		return fmt.Errorf("unsupported outbound type: %s", msg.Type)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.messagesURL(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.cfg.Token)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("whatsapp send: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		a.logger.Error("whatsapp send failed",
			zap.String("to", msg.ChannelID),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", respBody))
		return fmt.Errorf("whatsapp API error %d: %s", resp.StatusCode, string(respBody))
	}

	a.logger.Debug("whatsapp message sent",
		zap.String("to", msg.ChannelID),
		zap.String("type", string(req.Type)),
		zap.ByteString("body", respBody))
	return nil
}
