package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Store    StoreConfig    `json:"store"`
	Suggest  SuggestConfig  `json:"suggest"`
	AI       AIConfig       `json:"ai"`
}

type TelegramConfig struct {
	BotToken    string `json:"bot_token"`
	AdminChatID int64  `json:"admin_chat_id"` // 0 disables the restriction
}

type StoreConfig struct {
	DataDir string `json:"data_dir"`
}

type SuggestConfig struct {
	Count    int          `json:"count"`
	Day      time.Weekday `json:"day"`
	Hour     int          `json:"hour"`
	Timezone string       `json:"timezone"`
}

type AIConfig struct {
	Provider    string  `json:"provider"` // "openai", "gemini", "openrouter" or "" for off
	APIKey      string  `json:"api_key"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
}

// Load reads configuration from the environment, with a .env file as a
// convenience for local runs. Only the bot token is required.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Telegram: TelegramConfig{
			BotToken: os.Getenv("BOT_TOKEN"),
		},
		Store: StoreConfig{
			DataDir: getEnvOrDefault("DATA_DIR", "data"),
		},
		Suggest: SuggestConfig{
			Count:    5,
			Day:      time.Monday,
			Hour:     9,
			Timezone: getEnvOrDefault("TIMEZONE", "UTC"),
		},
		AI: AIConfig{
			Provider:    os.Getenv("AI_PROVIDER"),
			APIKey:      os.Getenv("AI_API_KEY"),
			Model:       getEnvOrDefault("AI_MODEL", "gpt-4.1"),
			Temperature: 0.2,
		},
	}

	if cfg.Telegram.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}

	if admin := os.Getenv("ADMIN_CHAT_ID"); admin != "" {
		id, err := strconv.ParseInt(admin, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_CHAT_ID %q: %w", admin, err)
		}
		cfg.Telegram.AdminChatID = id
	}

	if count := os.Getenv("SUGGESTION_COUNT"); count != "" {
		n, err := strconv.Atoi(count)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid SUGGESTION_COUNT %q", count)
		}
		cfg.Suggest.Count = n
	}

	if day := os.Getenv("SUGGESTION_DAY"); day != "" {
		parsed, err := parseWeekday(day)
		if err != nil {
			return nil, err
		}
		cfg.Suggest.Day = parsed
	}

	if hour := os.Getenv("SUGGESTION_HOUR"); hour != "" {
		h, err := strconv.Atoi(hour)
		if err != nil || h < 0 || h > 23 {
			return nil, fmt.Errorf("invalid SUGGESTION_HOUR %q", hour)
		}
		cfg.Suggest.Hour = h
	}

	if _, err := time.LoadLocation(cfg.Suggest.Timezone); err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Suggest.Timezone, err)
	}

	if temp := os.Getenv("AI_TEMPERATURE"); temp != "" {
		t, err := strconv.ParseFloat(temp, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid AI_TEMPERATURE %q: %w", temp, err)
		}
		cfg.AI.Temperature = t
	}

	return cfg, nil
}

func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Suggest.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func parseWeekday(s string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s == d.String() {
			return d, nil
		}
	}
	return 0, fmt.Errorf("invalid SUGGESTION_DAY %q (want e.g. %q)", s, time.Monday.String())
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
