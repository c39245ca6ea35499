package config

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the top-level configuration structure.
type Config struct {
	Server    ServerConfig    `json:"server"`
	WhatsApp  WhatsAppConfig  `json:"whatsapp"`
	Translate TranslateConfig `json:"translate"`
	TTS       TTSConfig       `json:"tts"`
	Bot       BotConfig       `json:"bot"`
	Redis     RedisConfig     `json:"redis"`
}

type ServerConfig struct {
	Port        int      `json:"port"         env:"PORT"`
	LogLevel    string   `json:"log_level"    env:"LOG_LEVEL"`
	Environment string   `json:"environment"  env:"WABOT_ENV"`
	HTTPTimeout Duration `json:"http_timeout" env:"HTTP_TIMEOUT"`
}

type WhatsAppConfig struct {
	Token         string `json:"token"           env:"WHATSAPP_TOKEN"`
	PhoneNumberID string `json:"phone_number_id" env:"WHATSAPP_PHONE_NUMBER_ID"`
	VerifyToken   string `json:"verify_token"    env:"WHATSAPP_VERIFY_TOKEN"`
	APIURL        string `json:"api_url"         env:"GRAPH_API_URL"`
	APIVersion    string `json:"api_version"     env:"GRAPH_API_VERSION"`
}

type TranslateConfig struct {
	BaseURL  string   `json:"base_url"  env:"TRANSLATE_API_URL"`
	APIKey   string   `json:"api_key"   env:"TRANSLATE_API_KEY"`
	CacheTTL Duration `json:"cache_ttl" env:"TRANSLATE_CACHE_TTL"`
}

type TTSConfig struct {
	BaseURL string `json:"base_url" env:"TTS_BASE_URL"`
}

type BotConfig struct {
	Name       string `json:"name"        env:"BOT_NAME"`
	Creator    string `json:"creator"     env:"BOT_CREATOR"`
	ChannelURL string `json:"channel_url" env:"CHANNEL_URL"`
	GroupURL   string `json:"group_url"   env:"GROUP_URL"`
}

type RedisConfig struct {
	URL string `json:"url" env:"REDIS_URL"`
}

// Duration is a time.Duration written as "15s" in JSON and env values.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", b, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			LogLevel:    "debug",
			Environment: "development",
			HTTPTimeout: Duration{15 * time.Second},
		},
		WhatsApp: WhatsAppConfig{
			APIURL:     "https://graph.facebook.com",
			APIVersion: "v17.0",
		},
		Translate: TranslateConfig{
			BaseURL:  "https://libretranslate.de",
			CacheTTL: Duration{24 * time.Hour},
		},
		TTS: TTSConfig{
			BaseURL: "https://translate.google.com",
		},
		Bot: BotConfig{
			Name:       "WaBot",
			Creator:    "the WaBot maintainers",
			ChannelURL: "https://whatsapp.com/channel/",
			GroupURL:   "https://chat.whatsapp.com/",
		},
	}
}

// envVarRe matches ${VAR} and ${VAR:default} patterns.
var envVarRe = regexp.MustCompile(`\$\{(\w+)(?::([^}]*))?\}`)

// Load builds the configuration from defaults, then the JSON file at path
// (skipped when path is empty), then environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	// Only variables that are set override; unset ones keep earlier values.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	// Substitute ${VAR} and ${VAR:default} with environment values.
	resolved := envVarRe.ReplaceAllStringFunc(string(data), func(match string) string {
		parts := envVarRe.FindStringSubmatch(match)
		name := parts[1]
		defaultVal := parts[2]
		if v := os.Getenv(name); v != "" {
			return v
		}
		return defaultVal
	})

	if err := json.Unmarshal([]byte(resolved), cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// MissingSecrets lists the env names of required secrets that are unset.
// The bot still starts without them; callers log a warning.
func (c *Config) MissingSecrets() []string {
	var missing []string
	if c.WhatsApp.Token == "" {
		missing = append(missing, "WHATSAPP_TOKEN")
	}
	if c.WhatsApp.PhoneNumberID == "" {
		missing = append(missing, "WHATSAPP_PHONE_NUMBER_ID")
	}
	if c.WhatsApp.VerifyToken == "" {
		missing = append(missing, "WHATSAPP_VERIFY_TOKEN")
	}
	return missing
}

// Production reports whether the bot runs with production logging.
func (c *Config) Production() bool {
	return c.Server.Environment == "production"
}
