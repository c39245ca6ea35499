package router

import (
	"context"
	"fmt"
	"strings"

	"github.com/nidhogg/wabot/internal/command"
	"github.com/nidhogg/wabot/internal/gateway"
	"go.uber.org/zap"
)

// UnsupportedNotice answers non-text and empty messages.
const UnsupportedNotice = "Sorry, I can only read text messages for now. Type /help to see what I can do."

// onboarding words route to /start with or without a prefix.
var onboarding = map[string]bool{
	"/start": true,
	"start":  true,
	"hi":     true,
	"hello":  true,
	"hey":    true,
}

// MessageRouter decides which command, if any, handles an inbound message.
type MessageRouter struct {
	gw         *gateway.Gateway
	dispatcher *command.Dispatcher
	profile    command.Profile
	logger     *zap.Logger
}

// New creates a new MessageRouter.
func New(gw *gateway.Gateway, dispatcher *command.Dispatcher,
	profile command.Profile, logger *zap.Logger) *MessageRouter {
	return &MessageRouter{
		gw:         gw,
		dispatcher: dispatcher,
		profile:    profile,
		logger:     logger,
	}
}

// Handle routes one inbound message and returns after all replies are sent.
// Signature matches gateway.MessageHandler.
func (mr *MessageRouter) Handle(ctx context.Context, msg *gateway.InboundMessage) {
	mr.logger.Info("routing message",
		zap.String("platform", msg.Platform),
		zap.String("from", msg.ChannelID),
		zap.String("type", string(msg.Type)),
	)

	cc := &command.CommandContext{
		Platform: msg.Platform,
		SenderID: msg.ChannelID,
		Text:     msg.Content,
		Out:      mr.gw.ReplierFor(msg.Platform),
	}

	tok := command.Tokenize(msg.Content)
	if msg.Type != gateway.MessageText || tok.Empty() {
		mr.reply(ctx, cc, UnsupportedNotice)
		return
	}
	cc.Args = tok.Args()

	first := strings.ToLower(tok.First)
	if onboarding[first] {
		mr.handleStart(ctx, cc)
		return
	}

	name := first
	if strings.HasPrefix(first, "/") || strings.HasPrefix(first, "!") {
		name = first[1:]
	}

	if name != "" && mr.dispatcher.Dispatch(ctx, name, cc) {
		return
	}

	mr.reply(ctx, cc, fallbackText(msg.Content))
}

// handleStart runs /start, or sends the built-in welcome when no start
// command is registered.
func (mr *MessageRouter) handleStart(ctx context.Context, cc *command.CommandContext) {
	if mr.dispatcher.Dispatch(ctx, "start", cc) {
		return
	}
	if err := cc.Reply(ctx, command.WelcomeText(mr.profile)); err != nil {
		mr.logger.Error("send welcome failed", zap.Error(err))
		return
	}
	mr.reply(ctx, cc, command.LinksText(mr.profile))
}

func fallbackText(text string) string {
	return fmt.Sprintf("You said: %s\n\nType /help to see what I can do.", strings.TrimSpace(text))
}

// reply sends a text and logs, rather than returns, a failure.
func (mr *MessageRouter) reply(ctx context.Context, cc *command.CommandContext, text string) {
	if err := cc.Reply(ctx, text); err != nil {
		mr.logger.Error("send reply failed",
			zap.String("to", cc.SenderID), zap.Error(err))
	}
}
