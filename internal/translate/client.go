package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Translator translates text into a target language.
type Translator interface {
	Translate(ctx context.Context, text, target string) (string, error)
}

// Config configures a LibreTranslate-compatible endpoint.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client calls a LibreTranslate-compatible /translate endpoint.
type Client struct {
	config Config
	client *http.Client
	logger *zap.Logger
}

// NewClient creates a translation client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type translateRequest struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
}

// Translate sends text with source language auto-detection. A response
// without translatedText yields an empty string and a nil error.
func (c *Client) Translate(ctx context.Context, text, target string) (string, error) {
	body, err := json.Marshal(translateRequest{
		Text:   text,
		Source: "auto",
		Target: target,
		Format: "text",
		APIKey: c.config.APIKey,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.BaseURL+"/translate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("translate API error %d: %s", resp.StatusCode, string(respBody))
	}

	var out translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if out.TranslatedText == "" {
		c.logger.Warn("translation response had no text", zap.String("target", target))
	}
	return out.TranslatedText, nil
}
