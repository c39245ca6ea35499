// Package tts builds links to synthesized speech.
package tts

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"unicode/utf8"
)

// MaxTextRunes is the longest text the speech endpoint accepts.
const MaxTextRunes = 200

var (
	ErrEmptyText   = errors.New("tts: empty text")
	ErrTextTooLong = errors.New("tts: text too long")
)

// GoogleTTS produces Google Translate text-to-speech URLs. It makes no
// network calls; the messaging platform fetches the audio itself.
type GoogleTTS struct {
	baseURL string
}

// NewGoogleTTS creates a URL builder rooted at baseURL.
func NewGoogleTTS(baseURL string) *GoogleTTS {
	if baseURL == "" {
		baseURL = "https://translate.google.com"
	}
	return &GoogleTTS{baseURL: strings.TrimRight(baseURL, "/")}
}

// AudioURL returns the MP3 URL for text spoken in lang.
func (g *GoogleTTS) AudioURL(_ context.Context, text, lang string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyText
	}
	if utf8.RuneCountInString(text) > MaxTextRunes {
		return "", ErrTextTooLong
	}
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", lang)
	q.Set("q", text)
	return g.baseURL + "/translate_tts?" + q.Encode(), nil
}
