package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"pantrybot/internal/items"
	"pantrybot/internal/recipe"
)

const helpText = `Here's what I can do:
/add <items> - add one or more items (comma separated)
/list - show the current list
/remove [item] - remove one item, or pick interactively
/removeall <item> - remove every matching entry
/clear - empty the list
/suggest - suggest items from your history
/recipe <url> - import ingredients from a recipe page
/id - show this chat's id
/help - this message`

func (b *Bot) handleStart(ctx context.Context, msg *Message) {
	chatID := msg.Chat.ID
	title := msg.Chat.Title
	if title == "" {
		title = msg.Chat.Username
	}
	if err := b.store.Touch(ctx, chatID, title); err != nil {
		b.replyError(ctx, chatID, err, "")
		return
	}
	b.reply(ctx, chatID, "Hi! I keep your grocery list and suggest items you usually buy.\n\n"+helpText)
}

func (b *Bot) handleAdd(ctx context.Context, chatID int64, args string) {
	names := items.SplitList(args)
	if len(names) == 0 {
		b.reply(ctx, chatID, "Usage: /add milk or /add milk, eggs, bread")
		return
	}

	if len(names) == 1 {
		created, err := b.store.Add(ctx, chatID, names[0])
		if err != nil {
			b.replyError(ctx, chatID, err, "Usage: /add milk or /add milk, eggs, bread")
			return
		}
		if created {
			b.reply(ctx, chatID, "Added %s.", names[0])
		} else {
			b.reply(ctx, chatID, "%s is already on the list.", names[0])
		}
		return
	}

	added, err := b.store.AddMany(ctx, chatID, names)
	if err != nil {
		b.replyError(ctx, chatID, err, "Usage: /add milk or /add milk, eggs, bread")
		return
	}
	b.reply(ctx, chatID, "Added %d of %d items (the rest were already on the list).", added, len(names))
}

func (b *Bot) handleList(ctx context.Context, chatID int64) {
	current, err := b.store.Items(ctx, chatID)
	if err != nil {
		b.replyError(ctx, chatID, err, "")
		return
	}
	if len(current) == 0 {
		b.reply(ctx, chatID, "Your list is empty. Add something with /add.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Your list:\n")
	for i, item := range current {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, item.DisplayName)
	}
	b.reply(ctx, chatID, "%s", strings.TrimRight(sb.String(), "\n"))
}

// handleRemove removes a named item, or with no argument opens the
// interactive picker over the current list.
func (b *Bot) handleRemove(ctx context.Context, chatID int64, args string) {
	if args != "" {
		if err := b.store.Remove(ctx, chatID, args); err != nil {
			b.replyError(ctx, chatID, err, "Usage: /remove milk, or just /remove to pick from the list")
			return
		}
		b.reply(ctx, chatID, "Removed %s.", args)
		return
	}

	current, err := b.store.Items(ctx, chatID)
	if err != nil {
		b.replyError(ctx, chatID, err, "")
		return
	}
	if len(current) == 0 {
		b.reply(ctx, chatID, "Your list is empty, nothing to remove.")
		return
	}

	session, err := newRemoveSession(ctx, b.docs, chatID, current)
	if err != nil {
		b.replyError(ctx, chatID, err, "")
		return
	}
	tp := removeKeyboard(session, 0)
	if _, err := b.tg.SendKeyboard(ctx, chatID, removeHeader(tp), tp.markup); err != nil {
		slog.ErrorContext(ctx, "failed to send remove picker", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) handleRemoveAll(ctx context.Context, chatID int64, args string) {
	removed, err := b.store.RemoveAll(ctx, chatID, args)
	if err != nil {
		b.replyError(ctx, chatID, err, "Usage: /removeall milk")
		return
	}
	if removed == 1 {
		b.reply(ctx, chatID, "Removed 1 entry of %s.", args)
	} else {
		b.reply(ctx, chatID, "Removed %d entries of %s.", removed, args)
	}
}

func (b *Bot) handleClear(ctx context.Context, chatID int64) {
	if err := b.store.Clear(ctx, chatID); err != nil {
		b.replyError(ctx, chatID, err, "")
		return
	}
	b.reply(ctx, chatID, "Cleared the list. Your history is kept for suggestions.")
}

func (b *Bot) handleRecipe(ctx context.Context, chatID int64, args string) {
	if args == "" {
		b.reply(ctx, chatID, "Usage: /recipe https://example.com/some-recipe")
		return
	}

	b.reply(ctx, chatID, "Fetching the recipe...")
	imported, err := b.importer.Import(ctx, args)
	if err != nil {
		b.replyImportError(ctx, chatID, err)
		return
	}

	lines := recipe.Normalize(ctx, b.llm, imported.Title, imported.Ingredients)
	if len(lines) == 0 {
		b.reply(ctx, chatID, "I found the recipe but couldn't make out any ingredients.")
		return
	}

	session, err := recipe.NewSession(ctx, b.docs, chatID, args, imported.Title, lines)
	if err != nil {
		b.replyError(ctx, chatID, err, "")
		return
	}
	tp := recipeKeyboard(session, 0)
	if _, err := b.tg.SendKeyboard(ctx, chatID, recipeHeader(session.Title, tp), tp.markup); err != nil {
		slog.ErrorContext(ctx, "failed to send recipe picker", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) replyImportError(ctx context.Context, chatID int64, err error) {
	var fetchErr *recipe.FetchError
	var parseErr *recipe.ParseError
	switch {
	case errors.Is(err, recipe.ErrInvalidURL):
		b.reply(ctx, chatID, "That doesn't look like a valid http(s) URL.")
	case errors.As(err, &fetchErr):
		slog.WarnContext(ctx, "recipe fetch failed", "chat_id", chatID, "error", err)
		b.reply(ctx, chatID, "I couldn't fetch that page. Check the URL and try again.")
	case errors.As(err, &parseErr):
		b.reply(ctx, chatID, "I fetched the page but couldn't find a recipe on it.")
	default:
		slog.ErrorContext(ctx, "recipe import failed", "chat_id", chatID, "error", err)
		b.reply(ctx, chatID, "Something went wrong importing that recipe. Please try again.")
	}
}

func (b *Bot) handleHelp(ctx context.Context, chatID int64) {
	b.reply(ctx, chatID, helpText)
}
