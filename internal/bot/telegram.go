package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const telegramAPIBase = "https://api.telegram.org"

// Telegram is a minimal Bot API client covering what the bot needs:
// long polling plus plain and inline-keyboard messages.
type Telegram struct {
	token      string
	base       string
	httpClient *http.Client
}

type TelegramOption func(*Telegram)

// WithBaseURL points the client at a different API server, for tests.
func WithBaseURL(base string) TelegramOption {
	return func(t *Telegram) { t.base = strings.TrimSuffix(base, "/") }
}

func NewTelegram(token string, opts ...TelegramOption) *Telegram {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 1
	// long polling waits server-side; keep the client timeout above it
	rc.HTTPClient.Timeout = 90 * time.Second
	rc.Logger = nil

	t := &Telegram{
		token:      token,
		base:       telegramAPIBase,
		httpClient: rc.StandardClient(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

type Message struct {
	MessageID int64  `json:"message_id"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text,omitempty"`
}

type Chat struct {
	ID       int64  `json:"id"`
	Type     string `json:"type,omitempty"`
	Title    string `json:"title,omitempty"`
	Username string `json:"username,omitempty"`
}

type CallbackQuery struct {
	ID      string   `json:"id"`
	Data    string   `json:"data,omitempty"`
	Message *Message `json:"message,omitempty"`
}

type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

type InlineKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

type BotUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
}

func (t *Telegram) GetMe(ctx context.Context) (*BotUser, error) {
	var me BotUser
	if err := t.call(ctx, "getMe", nil, &me); err != nil {
		return nil, err
	}
	return &me, nil
}

// GetUpdates long-polls for up to timeout seconds.
func (t *Telegram) GetUpdates(ctx context.Context, offset int64, timeout int) ([]Update, error) {
	payload := map[string]any{
		"offset":          offset,
		"timeout":         timeout,
		"allowed_updates": []string{"message", "callback_query"},
	}
	var updates []Update
	if err := t.call(ctx, "getUpdates", payload, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

func (t *Telegram) SendMessage(ctx context.Context, chatID int64, text string) (*Message, error) {
	return t.send(ctx, map[string]any{"chat_id": chatID, "text": text})
}

func (t *Telegram) SendKeyboard(ctx context.Context, chatID int64, text string, markup InlineKeyboardMarkup) (*Message, error) {
	return t.send(ctx, map[string]any{"chat_id": chatID, "text": text, "reply_markup": markup})
}

func (t *Telegram) EditMessageText(ctx context.Context, chatID, messageID int64, text string, markup *InlineKeyboardMarkup) error {
	payload := map[string]any{"chat_id": chatID, "message_id": messageID, "text": text}
	if markup != nil {
		payload["reply_markup"] = markup
	}
	var edited json.RawMessage
	return t.call(ctx, "editMessageText", payload, &edited)
}

func (t *Telegram) AnswerCallback(ctx context.Context, callbackID, text string, showAlert bool) error {
	payload := map[string]any{"callback_query_id": callbackID}
	if text != "" {
		payload["text"] = text
	}
	if showAlert {
		payload["show_alert"] = true
	}
	var ok bool
	return t.call(ctx, "answerCallbackQuery", payload, &ok)
}

func (t *Telegram) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	var ok bool
	return t.call(ctx, "deleteMessage", map[string]any{"chat_id": chatID, "message_id": messageID}, &ok)
}

func (t *Telegram) send(ctx context.Context, payload map[string]any) (*Message, error) {
	var msg Message
	if err := t.call(ctx, "sendMessage", payload, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (t *Telegram) call(ctx context.Context, method string, payload, result any) error {
	body := []byte("{}")
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", method, err)
		}
	}

	url := fmt.Sprintf("%s/bot%s/%s", t.base, t.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram %s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	if !parsed.OK {
		return fmt.Errorf("telegram %s error: %s", method, parsed.Description)
	}
	if result != nil && len(parsed.Result) > 0 {
		if err := json.Unmarshal(parsed.Result, result); err != nil {
			return fmt.Errorf("failed to decode %s result: %w", method, err)
		}
	}
	return nil
}
