package gateway

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Gateway manages all platform adapters and routes messages.
type Gateway struct {
	adapters map[string]GatewayAdapter
	handler  MessageHandler
	mu       sync.RWMutex
	logger   *zap.Logger
}

// NewGateway creates a gateway manager.
func NewGateway(logger *zap.Logger) *Gateway {
	return &Gateway{
		adapters: make(map[string]GatewayAdapter),
		logger:   logger,
	}
}

// SetHandler sets the callback for all inbound messages.
func (g *Gateway) SetHandler(h MessageHandler) {
	g.handler = h
}

// Register adds an adapter and wires its message handler.
func (g *Gateway) Register(adapter GatewayAdapter) {
	g.mu.Lock()
	defer g.mu.Unlock()

	platform := adapter.Platform()
	g.adapters[platform] = adapter
	adapter.OnMessage(func(ctx context.Context, msg *InboundMessage) {
		if g.handler != nil {
			g.handler(ctx, msg)
		}
	})
	g.logger.Info("registered gateway adapter", zap.String("platform", platform))
}

// ConnectAll starts all registered adapters.
func (g *Gateway) ConnectAll(ctx context.Context) error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for platform, adapter := range g.adapters {
		if err := adapter.Connect(ctx); err != nil {
			g.logger.Error("adapter connect failed",
				zap.String("platform", platform), zap.Error(err))
			return fmt.Errorf("connect %s: %w", platform, err)
		}
		g.logger.Info("adapter connected", zap.String("platform", platform))
	}
	return nil
}

// Send sends a message to a specific platform channel.
func (g *Gateway) Send(ctx context.Context, msg *OutboundMessage) error {
	g.mu.RLock()
	adapter, ok := g.adapters[msg.Platform]
	g.mu.RUnlock()

	if !ok {
		return fmt.Errorf("no adapter for platform: %s", msg.Platform)
	}
	return adapter.Send(ctx, msg)
}

// Close shuts down all adapters.
func (g *Gateway) Close() error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for platform, adapter := range g.adapters {
		if err := adapter.Close(); err != nil {
			g.logger.Error("adapter close failed",
				zap.String("platform", platform), zap.Error(err))
		}
	}
	return nil
}

// Adapters returns the registered platform names, sorted.
func (g *Gateway) Adapters() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	names := make([]string, 0, len(g.adapters))
	for p := range g.adapters {
		names = append(names, p)
	}
	sort.Strings(names)
	return names
}

// StatusAll reports every adapter's state, sorted by platform.
func (g *Gateway) StatusAll() []AdapterStatus {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]AdapterStatus, 0, len(g.adapters))
	for p, a := range g.adapters {
		if sr, ok := a.(StatusReporter); ok {
			out = append(out, sr.Status())
			continue
		}
		out = append(out, AdapterStatus{Platform: p, Connected: true})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Platform < out[j].Platform })
	return out
}

// Replier sends replies to one platform through the gateway.
// It satisfies command.Sender.
type Replier struct {
	gw       *Gateway
	platform string
}

// ReplierFor binds a Replier to platform.
func (g *Gateway) ReplierFor(platform string) *Replier {
	return &Replier{gw: g, platform: platform}
}

// SendText sends a text message to recipient to.
func (r *Replier) SendText(ctx context.Context, to, body string) error {
	return r.gw.Send(ctx, &OutboundMessage{
		Platform:  r.platform,
		ChannelID: to,
		Type:      MessageText,
		Content:   body,
	})
}

// SendAudio sends an audio-by-link message to recipient to.
func (r *Replier) SendAudio(ctx context.Context, to, link string) error {
	return r.gw.Send(ctx, &OutboundMessage{
		Platform:  r.platform,
		ChannelID: to,
		Type:      MessageAudio,
		AudioURL:  link,
	})
}
