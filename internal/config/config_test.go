package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Translate.BaseURL == "" || cfg.Bot.Name == "" || cfg.Bot.ChannelURL == "" {
		t.Errorf("defaults missing: %+v", cfg)
	}
	if cfg.Server.HTTPTimeout.Duration != 15*time.Second {
		t.Errorf("timeout = %v", cfg.Server.HTTPTimeout)
	}
}

func TestMissingSecrets(t *testing.T) {
	t.Setenv("WHATSAPP_TOKEN", "")
	t.Setenv("WHATSAPP_PHONE_NUMBER_ID", "")
	t.Setenv("WHATSAPP_VERIFY_TOKEN", "")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cfg.MissingSecrets(); len(got) != 3 {
		t.Errorf("missing = %v, want 3 entries", got)
	}

	cfg.WhatsApp.Token = "t"
	cfg.WhatsApp.PhoneNumberID = "p"
	cfg.WhatsApp.VerifyToken = "v"
	if got := cfg.MissingSecrets(); len(got) != 0 {
		t.Errorf("missing = %v, want none", got)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wabot.json")
	data := `{
		"server": {"port": 9000, "http_timeout": "5s"},
		"whatsapp": {"token": "${TEST_WA_TOKEN}", "verify_token": "${TEST_WA_VERIFY:fallback}"},
		"bot": {"name": "FileBot", "creator": "file"},
		"translate": {"cache_ttl": "1h"}
	}`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("TEST_WA_TOKEN", "from-env")
	t.Setenv("BOT_NAME", "EnvBot")
	t.Setenv("HTTP_TIMEOUT", "7s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.WhatsApp.Token != "from-env" {
		t.Errorf("token = %q", cfg.WhatsApp.Token)
	}
	if cfg.WhatsApp.VerifyToken != "fallback" {
		t.Errorf("verify token = %q", cfg.WhatsApp.VerifyToken)
	}
	if cfg.Bot.Name != "EnvBot" {
		t.Errorf("env should override file, name = %q", cfg.Bot.Name)
	}
	if cfg.Bot.Creator != "file" {
		t.Errorf("creator = %q", cfg.Bot.Creator)
	}
	if cfg.Server.HTTPTimeout.Duration != 7*time.Second {
		t.Errorf("timeout = %v", cfg.Server.HTTPTimeout)
	}
	if cfg.Translate.CacheTTL.Duration != time.Hour {
		t.Errorf("cache ttl = %v", cfg.Translate.CacheTTL)
	}
	if cfg.WhatsApp.APIVersion != "v17.0" {
		t.Errorf("api version default lost: %q", cfg.WhatsApp.APIVersion)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(path, []byte(`{"server": {"http_timeout": "soon"}}`), 0o600)
	if _, err := Load(path); err == nil {
		t.Error("expected error for bad duration")
	}

	t.Setenv("PORT", "eighty")
	if _, err := Load(""); err == nil {
		t.Error("expected error for non-numeric PORT")
	}
}
