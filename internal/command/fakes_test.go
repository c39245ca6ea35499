package command

import (
	"context"
	"errors"
)

type sentMessage struct {
	To   string
	Kind string // "text" or "audio"
	Body string
}

type fakeSender struct {
	sent    []sentMessage
	failAll bool
}

func (f *fakeSender) SendText(_ context.Context, to, body string) error {
	if f.failAll {
		return errors.New("send failed")
	}
	f.sent = append(f.sent, sentMessage{To: to, Kind: "text", Body: body})
	return nil
}

func (f *fakeSender) SendAudio(_ context.Context, to, link string) error {
	if f.failAll {
		return errors.New("send failed")
	}
	f.sent = append(f.sent, sentMessage{To: to, Kind: "audio", Body: link})
	return nil
}

type fakeTranslator struct {
	out   string
	err   error
	calls int
	text  string
	lang  string
}

func (f *fakeTranslator) Translate(_ context.Context, text, target string) (string, error) {
	f.calls++
	f.text, f.lang = text, target
	return f.out, f.err
}

type fakeSynth struct {
	url   string
	err   error
	calls int
}

func (f *fakeSynth) AudioURL(_ context.Context, text, lang string) (string, error) {
	f.calls++
	return f.url, f.err
}

func newContext(out Sender, text string) *CommandContext {
	tok := Tokenize(text)
	return &CommandContext{
		Platform: "test",
		SenderID: "628123",
		Text:     text,
		Args:     tok.Args(),
		Out:      out,
	}
}
