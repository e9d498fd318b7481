// Package bot glues the Telegram transport to the grocery-list
// operations. Each update is handled with its chat identifier threaded
// through explicitly; nothing here keeps per-chat state in memory.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"pantrybot/internal/ai"
	"pantrybot/internal/config"
	"pantrybot/internal/docstore"
	"pantrybot/internal/items"
	"pantrybot/internal/recipe"
	"pantrybot/internal/suggest"
)

const pollTimeoutSeconds = 50

type Bot struct {
	tg       *Telegram
	cfg      *config.Config
	docs     docstore.Store
	store    *items.Store
	engine   *suggest.Engine
	learner  *suggest.Learner
	importer *recipe.Importer
	llm      ai.Client
	username string
}

func New(cfg *config.Config, tg *Telegram, docs docstore.Store, store *items.Store, engine *suggest.Engine, learner *suggest.Learner, importer *recipe.Importer, llm ai.Client) *Bot {
	return &Bot{
		tg:       tg,
		cfg:      cfg,
		docs:     docs,
		store:    store,
		engine:   engine,
		learner:  learner,
		importer: importer,
		llm:      llm,
	}
}

// Run long-polls until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	me, err := b.tg.GetMe(ctx)
	if err != nil {
		return err
	}
	b.username = me.Username
	slog.InfoContext(ctx, "bot started", "username", me.Username)

	var offset int64
	for {
		updates, err := b.tg.GetUpdates(ctx, offset, pollTimeoutSeconds)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.ErrorContext(ctx, "failed to get updates", "error", err)
			select {
			case <-time.After(5 * time.Second):
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		for _, update := range updates {
			offset = update.UpdateID + 1
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update Update) {
	switch {
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

// authorized checks the admin gate. With no admin configured, everyone
// is welcome.
func (b *Bot) authorized(chatID int64) bool {
	return b.cfg.Telegram.AdminChatID == 0 || chatID == b.cfg.Telegram.AdminChatID
}

func (b *Bot) handleMessage(ctx context.Context, msg *Message) {
	command, args, ok := b.parseCommand(msg.Text)
	if !ok {
		return // plain chatter, nothing to do
	}

	chatID := msg.Chat.ID
	if command == "id" {
		// /id works even when restricted, so people can find their chat id
		b.reply(ctx, chatID, "This chat's id is %d.", chatID)
		return
	}
	if !b.authorized(chatID) {
		slog.WarnContext(ctx, "rejected command from unauthorized chat", "chat_id", chatID, "command", command)
		b.reply(ctx, chatID, "Sorry, this bot is restricted to the admin chat.")
		return
	}

	switch command {
	case "start":
		b.handleStart(ctx, msg)
	case "add":
		b.handleAdd(ctx, chatID, args)
	case "list":
		b.handleList(ctx, chatID)
	case "remove":
		b.handleRemove(ctx, chatID, args)
	case "removeall":
		b.handleRemoveAll(ctx, chatID, args)
	case "clear":
		b.handleClear(ctx, chatID)
	case "suggest":
		b.SendSuggestions(ctx, chatID)
	case "recipe":
		b.handleRecipe(ctx, chatID, args)
	case "help":
		b.handleHelp(ctx, chatID)
	default:
		b.reply(ctx, chatID, "Unknown command. Try /help to see available commands.")
	}
}

// parseCommand splits "/add milk, eggs" into ("add", "milk, eggs").
// Commands addressed to another bot ("/add@otherbot") are ignored.
func (b *Bot) parseCommand(text string) (command, args string, ok bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}
	command, args, _ = strings.Cut(text[1:], " ")
	if name, target, mentioned := strings.Cut(command, "@"); mentioned {
		if b.username != "" && target != b.username {
			return "", "", false
		}
		command = name
	}
	if command == "" {
		return "", "", false
	}
	return strings.ToLower(command), strings.TrimSpace(args), true
}

// Broadcast runs the weekly suggestion flow for every known chat. One
// chat's failure never stops the others.
func (b *Bot) Broadcast(ctx context.Context) {
	chats, err := b.store.Chats(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list chats for broadcast", "error", err)
		return
	}

	var g errgroup.Group
	g.SetLimit(4)
	for _, chatID := range chats {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					slog.ErrorContext(ctx, "panic during suggestion broadcast", "chat_id", chatID, "panic", r)
				}
			}()
			b.SendSuggestions(ctx, chatID)
			return nil
		})
	}
	_ = g.Wait()
}

// SendSuggestions emits one suggestion batch to a chat.
func (b *Bot) SendSuggestions(ctx context.Context, chatID int64) {
	candidates, err := b.engine.Suggest(ctx, chatID, b.cfg.Suggest.Count)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build suggestions", "chat_id", chatID, "error", err)
		b.reply(ctx, chatID, "Something went wrong building suggestions. Please try again.")
		return
	}
	if len(candidates) == 0 {
		b.reply(ctx, chatID, "No suggestions yet. Add items over time and I'll learn.")
		return
	}

	batch, err := suggest.SaveBatch(ctx, b.docs, chatID, candidates, time.Now())
	if err != nil {
		slog.ErrorContext(ctx, "failed to save suggestion batch", "chat_id", chatID, "error", err)
		b.reply(ctx, chatID, "Something went wrong building suggestions. Please try again.")
		return
	}

	if _, err := b.tg.SendKeyboard(ctx, chatID, "Weekly suggestions:", suggestionKeyboard(batch)); err != nil {
		slog.ErrorContext(ctx, "failed to send suggestions", "chat_id", chatID, "error", err)
	}
}

// reply sends a formatted text message and logs delivery failures
// instead of propagating them; a lost reply is not worth crashing over.
func (b *Bot) reply(ctx context.Context, chatID int64, format string, args ...any) {
	text := format
	if len(args) > 0 {
		text = fmt.Sprintf(format, args...)
	}
	if _, err := b.tg.SendMessage(ctx, chatID, text); err != nil {
		slog.ErrorContext(ctx, "failed to send message", "chat_id", chatID, "error", err)
	}
}

// replyError maps domain errors to user-facing text.
func (b *Bot) replyError(ctx context.Context, chatID int64, err error, usage string) {
	switch {
	case errors.Is(err, items.ErrEmptyName):
		b.reply(ctx, chatID, "%s", usage)
	case errors.Is(err, items.ErrItemNotFound):
		b.reply(ctx, chatID, "Item not found in your list.")
	default:
		slog.ErrorContext(ctx, "command failed", "chat_id", chatID, "error", err)
		b.reply(ctx, chatID, "Something went wrong. Please try again.")
	}
}
