package config

import (
	"testing"
	"time"
)

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	if _, err := Load(); err == nil {
		t.Fatal("Load should fail without BOT_TOKEN")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BOT_TOKEN", "tok")
	t.Setenv("ADMIN_CHAT_ID", "")
	t.Setenv("TIMEZONE", "")
	t.Setenv("SUGGESTION_COUNT", "")
	t.Setenv("SUGGESTION_DAY", "")
	t.Setenv("SUGGESTION_HOUR", "")
	t.Setenv("DATA_DIR", "")
	t.Setenv("AI_PROVIDER", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Telegram.AdminChatID != 0 {
		t.Errorf("AdminChatID = %d, want 0 (unrestricted)", cfg.Telegram.AdminChatID)
	}
	if cfg.Suggest.Day != time.Monday || cfg.Suggest.Hour != 9 || cfg.Suggest.Count != 5 {
		t.Errorf("suggest defaults = %+v", cfg.Suggest)
	}
	if cfg.Store.DataDir != "data" {
		t.Errorf("DataDir = %q", cfg.Store.DataDir)
	}
	if cfg.Location() != time.UTC {
		t.Errorf("Location = %v", cfg.Location())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BOT_TOKEN", "tok")
	t.Setenv("ADMIN_CHAT_ID", "12345")
	t.Setenv("SUGGESTION_COUNT", "3")
	t.Setenv("SUGGESTION_DAY", "Friday")
	t.Setenv("SUGGESTION_HOUR", "18")
	t.Setenv("TIMEZONE", "UTC")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Telegram.AdminChatID != 12345 {
		t.Errorf("AdminChatID = %d", cfg.Telegram.AdminChatID)
	}
	if cfg.Suggest.Count != 3 || cfg.Suggest.Day != time.Friday || cfg.Suggest.Hour != 18 {
		t.Errorf("suggest = %+v", cfg.Suggest)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct{ key, value string }{
		{"ADMIN_CHAT_ID", "not-a-number"},
		{"SUGGESTION_COUNT", "0"},
		{"SUGGESTION_DAY", "Someday"},
		{"SUGGESTION_HOUR", "24"},
		{"TIMEZONE", "Mars/Olympus"},
	}
	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			t.Setenv("BOT_TOKEN", "tok")
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load should reject %s=%q", tc.key, tc.value)
			}
		})
	}
}
