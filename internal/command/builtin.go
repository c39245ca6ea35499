package command

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// ---------------------------------------------------------------------------
// Interfaces — kept here so builtin commands avoid importing concrete clients.
// ---------------------------------------------------------------------------

// Translator translates text into a target language.
// An empty result with a nil error means the service returned nothing.
type Translator interface {
	Translate(ctx context.Context, text, target string) (string, error)
}

// Synthesizer produces a URL for spoken audio of text in lang.
type Synthesizer interface {
	AudioURL(ctx context.Context, text, lang string) (string, error)
}

// Profile carries the bot identity used by /start.
type Profile struct {
	BotName    string
	Creator    string
	ChannelURL string
	GroupURL   string
}

// WelcomeText is the first /start message.
func WelcomeText(p Profile) string {
	return fmt.Sprintf("Hi! I'm %s, a WhatsApp helper bot.\nCreated by %s.\n\nType /help to see what I can do.",
		p.BotName, p.Creator)
}

// LinksText is the second /start message.
func LinksText(p Profile) string {
	return fmt.Sprintf("Stay in touch:\nChannel: %s\nGroup: %s", p.ChannelURL, p.GroupURL)
}

// Fixed replies shared with tests.
const (
	TranslateUsage  = "Usage: /translate <lang>|<text>\nExample: /translate id|Hello world"
	TranslateFailed = "Translation failed."
	TTSUsage        = "Usage: /tts <lang>|<text>\nExample: /tts en|Hello there"
	TTSFailed       = "TTS failed."
)

// ---------------------------------------------------------------------------
// RegisterBuiltins wires up the built-in commands.
// ---------------------------------------------------------------------------

// RegisterBuiltins registers /start, /ping, /help, /translate, /tts and /echo,
// in that order.
func RegisterBuiltins(reg *Registry, profile Profile, tr Translator, synth Synthesizer, logger *zap.Logger) {
	reg.Register(startCommand(profile))
	reg.Register(pingCommand())
	reg.Register(helpCommand(reg))
	reg.Register(translateCommand(tr, logger))
	reg.Register(ttsCommand(synth, logger))
	reg.Register(echoCommand())
}

// ---------------------------------------------------------------------------
// /start
// ---------------------------------------------------------------------------

func startCommand(p Profile) *Command {
	return &Command{
		Name:        "start",
		Description: "Show the welcome message",
		Usage:       "/start",
		Aliases:     []string{"welcome", "begin"},
		Handler: func(ctx context.Context, cc *CommandContext) error {
			if err := cc.Reply(ctx, WelcomeText(p)); err != nil {
				return err
			}
			return cc.Reply(ctx, LinksText(p))
		},
	}
}

// ---------------------------------------------------------------------------
// /ping
// ---------------------------------------------------------------------------

func pingCommand() *Command {
	return &Command{
		Name:        "ping",
		Description: "Check that the bot is alive",
		Usage:       "/ping",
		Aliases:     []string{"p"},
		Handler: func(ctx context.Context, cc *CommandContext) error {
			return cc.Reply(ctx, "pong")
		},
	}
}

// ---------------------------------------------------------------------------
// /help
// ---------------------------------------------------------------------------

func helpCommand(reg *Registry) *Command {
	return &Command{
		Name:        "help",
		Description: "List all available commands",
		Usage:       "/help",
		Aliases:     []string{"h"},
		Handler: func(ctx context.Context, cc *CommandContext) error {
			cmds := reg.ListUnique()
			lines := make([]string, 0, len(cmds))
			for _, c := range cmds {
				lines = append(lines, fmt.Sprintf("/%s — %s", c.Name, c.Description))
			}
			return cc.Reply(ctx, strings.Join(lines, "\n"))
		},
	}
}

// ---------------------------------------------------------------------------
// /translate
// ---------------------------------------------------------------------------

func translateCommand(tr Translator, logger *zap.Logger) *Command {
	return &Command{
		Name:        "translate",
		Description: "Translate text, e.g. /translate id|Hello world",
		Usage:       "/translate <lang>|<text>",
		Aliases:     []string{"tr"},
		Handler: func(ctx context.Context, cc *CommandContext) error {
			lang, text, ok := splitLangText(cc.Args)
			if !ok {
				return cc.Reply(ctx, TranslateUsage)
			}

			out, err := tr.Translate(ctx, text, lang)
			if err != nil {
				logger.Error("translation failed",
					zap.String("from", cc.SenderID), zap.String("target", lang), zap.Error(err))
				return cc.Reply(ctx, TranslateFailed)
			}
			if out == "" {
				logger.Warn("translation returned no text",
					zap.String("from", cc.SenderID), zap.String("target", lang))
				return cc.Reply(ctx, TranslateFailed)
			}
			return cc.Reply(ctx, fmt.Sprintf("Translated (%s): %s", lang, out))
		},
	}
}

// ---------------------------------------------------------------------------
// /tts
// ---------------------------------------------------------------------------

func ttsCommand(synth Synthesizer, logger *zap.Logger) *Command {
	return &Command{
		Name:        "tts",
		Description: "Turn text into a voice note, e.g. /tts en|Hello",
		Usage:       "/tts <lang>|<text>",
		Aliases:     []string{"voice"},
		Handler: func(ctx context.Context, cc *CommandContext) error {
			lang, text, ok := splitLangText(cc.Args)
			if !ok {
				return cc.Reply(ctx, TTSUsage)
			}

			link, err := synth.AudioURL(ctx, text, lang)
			if err != nil {
				logger.Error("tts failed",
					zap.String("from", cc.SenderID), zap.String("lang", lang), zap.Error(err))
				return cc.Reply(ctx, TTSFailed)
			}
			return cc.ReplyAudio(ctx, link)
		},
	}
}

// ---------------------------------------------------------------------------
// /echo
// ---------------------------------------------------------------------------

func echoCommand() *Command {
	return &Command{
		Name:        "echo",
		Description: "Repeat your message back",
		Usage:       "/echo <text>",
		Handler: func(ctx context.Context, cc *CommandContext) error {
			arg := cc.Args
			if arg == "" {
				arg = cc.Text
			}
			return cc.Reply(ctx, "Echo: "+arg)
		},
	}
}

// splitLangText parses "<lang>|<text>". Only a missing pipe or empty text
// is rejected; the language is left for the collaborator to judge.
func splitLangText(args string) (lang, text string, ok bool) {
	before, after, found := strings.Cut(args, "|")
	if !found {
		return "", "", false
	}
	text = strings.TrimSpace(after)
	if text == "" {
		return "", "", false
	}
	return normalizeLang(before), text, true
}

// normalizeLang canonicalizes BCP 47 tags ("pt-br" becomes "pt-BR") and
// passes service-specific codes such as "zt" through lower-cased.
func normalizeLang(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	return tag.String()
}
