package command

import (
	"context"
	"strings"
)

// Command describes a chat command and the handler that runs it.
type Command struct {
	Name        string
	Description string
	Usage       string
	Aliases     []string
	Handler     CommandHandler
}

// CommandHandler is the function signature for command execution.
// Replies go out through cc.Out; a returned error is reported by the Dispatcher.
type CommandHandler func(ctx context.Context, cc *CommandContext) error

// Sender delivers outbound messages to a chat participant.
type Sender interface {
	SendText(ctx context.Context, to, body string) error
	SendAudio(ctx context.Context, to, link string) error
}

// CommandContext is built fresh for every inbound message and discarded after dispatch.
type CommandContext struct {
	Platform string
	SenderID string
	Text     string // raw inbound text
	Args     string // tokens after the command word, single-space joined
	Out      Sender
}

// Reply sends a text message back to the sender.
func (cc *CommandContext) Reply(ctx context.Context, body string) error {
	return cc.Out.SendText(ctx, cc.SenderID, body)
}

// ReplyAudio sends an audio-by-link message back to the sender.
func (cc *CommandContext) ReplyAudio(ctx context.Context, link string) error {
	return cc.Out.SendAudio(ctx, cc.SenderID, link)
}

// Registry maps command names and aliases to commands.
//
// A Registry is filled once at startup and only read afterwards, so lookups
// need no locking. Register must not be called once messages are being served.
type Registry struct {
	commands map[string]*Command
	order    []*Command
}

// NewRegistry creates an empty command registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]*Command)}
}

// Register adds a command under its name and every alias.
// A key that is already taken is overwritten; the last registration wins.
func (r *Registry) Register(cmd *Command) {
	name := normalize(cmd.Name)
	r.commands[name] = cmd
	for _, alias := range cmd.Aliases {
		r.commands[normalize(alias)] = cmd
	}

	for i, c := range r.order {
		if normalize(c.Name) == name {
			r.order[i] = cmd
			return
		}
	}
	r.order = append(r.order, cmd)
}

// Lookup returns the command registered under key, matched case-insensitively.
func (r *Registry) Lookup(key string) (*Command, bool) {
	cmd, ok := r.commands[normalize(key)]
	return cmd, ok
}

// ListUnique returns one entry per canonical name, in registration order.
func (r *Registry) ListUnique() []*Command {
	result := make([]*Command, len(r.order))
	copy(result, r.order)
	return result
}

func normalize(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
