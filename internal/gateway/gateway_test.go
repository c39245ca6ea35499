package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

type recordingAdapter struct {
	platform string
	sent     []*OutboundMessage
	handler  MessageHandler
}

func (r *recordingAdapter) Platform() string              { return r.platform }
func (r *recordingAdapter) Connect(context.Context) error { return nil }
func (r *recordingAdapter) OnMessage(h MessageHandler)    { r.handler = h }
func (r *recordingAdapter) Close() error                  { return nil }
func (r *recordingAdapter) Send(_ context.Context, m *OutboundMessage) error {
	r.sent = append(r.sent, m)
	return nil
}

func TestReplierRoutesByPlatform(t *testing.T) {
	gw := NewGateway(zap.NewNop())
	wa := &recordingAdapter{platform: "whatsapp"}
	other := &recordingAdapter{platform: "rest"}
	gw.Register(wa)
	gw.Register(other)

	rep := gw.ReplierFor("whatsapp")
	if err := rep.SendText(context.Background(), "62811", "hello"); err != nil {
		t.Fatalf("send text: %v", err)
	}
	if err := rep.SendAudio(context.Background(), "62811", "https://x/y.mp3"); err != nil {
		t.Fatalf("send audio: %v", err)
	}

	if len(other.sent) != 0 {
		t.Errorf("rest adapter received %d messages", len(other.sent))
	}
	if len(wa.sent) != 2 {
		t.Fatalf("got %d messages, want 2", len(wa.sent))
	}
	if wa.sent[0].Type != MessageText || wa.sent[0].Content != "hello" || wa.sent[0].ChannelID != "62811" {
		t.Errorf("text = %+v", wa.sent[0])
	}
	if wa.sent[1].Type != MessageAudio || wa.sent[1].AudioURL != "https://x/y.mp3" {
		t.Errorf("audio = %+v", wa.sent[1])
	}

	if err := gw.ReplierFor("telegram").SendText(context.Background(), "x", "y"); err == nil {
		t.Error("expected error for unknown platform")
	}
}

func TestGatewayHandlerWiring(t *testing.T) {
	gw := NewGateway(zap.NewNop())
	a := &recordingAdapter{platform: "whatsapp"}
	gw.Register(a)

	var got *InboundMessage
	gw.SetHandler(func(_ context.Context, m *InboundMessage) { got = m })
	a.handler(context.Background(), &InboundMessage{Content: "hi"})

	if got == nil || got.Content != "hi" {
		t.Fatalf("handler not invoked, got %+v", got)
	}
	if names := gw.Adapters(); len(names) != 1 || names[0] != "whatsapp" {
		t.Errorf("adapters = %v", names)
	}
}

func TestGatewayStatusAll(t *testing.T) {
	gw := NewGateway(zap.NewNop())
	gw.Register(NewWhatsAppAdapter(WhatsAppConfig{}, zap.NewNop()))
	gw.Register(NewRESTAdapter(zap.NewNop()))

	st := gw.StatusAll()
	if len(st) != 2 {
		t.Fatalf("got %d statuses, want 2", len(st))
	}
	if st[0].Platform != "rest" || !st[0].Connected {
		t.Errorf("rest status = %+v", st[0])
	}
	if st[1].Platform != "whatsapp" || st[1].Connected {
		t.Errorf("whatsapp without credentials should be disconnected: %+v", st[1])
	}
}

func TestRESTAdapterCollectsReplies(t *testing.T) {
	gw := NewGateway(zap.NewNop())
	rest := NewRESTAdapter(zap.NewNop())
	gw.Register(rest)
	gw.SetHandler(func(ctx context.Context, m *InboundMessage) {
		rep := gw.ReplierFor(m.Platform)
		rep.SendText(ctx, m.ChannelID, "one: "+m.Content)
		rep.SendText(ctx, m.ChannelID, "two")
	})

	ts := httptest.NewServer(rest.Routes())
	defer ts.Close()

	body, _ := json.Marshal(map[string]string{"user_id": "cli", "content": "hello"})
	resp, err := http.Post(ts.URL+"/message", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var out RESTReply
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Replies) != 2 || out.Replies[0].Content != "one: hello" || out.Replies[1].Content != "two" {
		t.Errorf("replies = %+v", out.Replies)
	}

	// The channel is closed once the request returns.
	if err := rest.Send(context.Background(), &OutboundMessage{ChannelID: out.ChannelID}); err == nil {
		t.Error("expected error sending to a finished channel")
	}
}

func TestRESTAdapterRejectsEmptyContent(t *testing.T) {
	rest := NewRESTAdapter(zap.NewNop())
	ts := httptest.NewServer(rest.Routes())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/message", "application/json", bytes.NewReader([]byte(`{"content":""}`)))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}
