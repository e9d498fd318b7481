package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"pantrybot/internal/recipe"
	"pantrybot/internal/suggest"
)

func (b *Bot) handleCallback(ctx context.Context, cb *CallbackQuery) {
	if cb.Message == nil {
		b.answer(ctx, cb.ID, "")
		return
	}
	chatID := cb.Message.Chat.ID
	if !b.authorized(chatID) {
		slog.WarnContext(ctx, "rejected callback from unauthorized chat", "chat_id", chatID)
		b.answer(ctx, cb.ID, "This bot is restricted to the admin chat.")
		return
	}

	action, id, arg, ok := parseCallback(cb.Data)
	if !ok {
		b.answer(ctx, cb.ID, "")
		return
	}

	switch action {
	case actionAccept, actionSkip:
		b.handleSuggestionResponse(ctx, cb, chatID, id, arg, action == actionAccept)
	case actionRecipeToggle, actionRecipePage, actionRecipeAll, actionRecipeNone, actionRecipeSave:
		b.handleRecipeCallback(ctx, cb, chatID, action, id, arg)
	case actionRemoveToggle, actionRemovePage, actionRemoveAll, actionRemoveNone, actionRemoveSave:
		b.handleRemoveCallback(ctx, cb, chatID, action, id, arg)
	default:
		b.answer(ctx, cb.ID, "")
	}
}

func (b *Bot) handleSuggestionResponse(ctx context.Context, cb *CallbackQuery, chatID int64, batchID string, index int, accepted bool) {
	display, err := b.learner.RecordResponse(ctx, chatID, batchID, index, accepted)
	switch {
	case errors.Is(err, suggest.ErrAlreadyRecorded):
		b.answer(ctx, cb.ID, "Already noted.")
	case errors.Is(err, suggest.ErrBatchNotFound), errors.Is(err, suggest.ErrInvalidItem):
		b.answer(ctx, cb.ID, "That suggestion has expired.")
	case err != nil:
		slog.ErrorContext(ctx, "failed to record suggestion response", "chat_id", chatID, "batch_id", batchID, "error", err)
		b.answer(ctx, cb.ID, "Something went wrong, try again.")
	case accepted:
		b.answer(ctx, cb.ID, "Added "+display+".")
	default:
		b.answer(ctx, cb.ID, "Skipped "+display+".")
	}
}

func (b *Bot) handleRecipeCallback(ctx context.Context, cb *CallbackQuery, chatID int64, action, id string, arg int) {
	session, err := recipe.LoadSession(ctx, b.docs, id)
	if err != nil {
		if errors.Is(err, recipe.ErrSessionNotFound) {
			b.answer(ctx, cb.ID, "This import has expired. Send the /recipe again.")
			return
		}
		slog.ErrorContext(ctx, "failed to load recipe session", "chat_id", chatID, "error", err)
		b.answer(ctx, cb.ID, "Something went wrong, try again.")
		return
	}
	if session.ChatID != chatID {
		b.answer(ctx, cb.ID, "")
		return
	}

	switch action {
	case actionRecipeToggle:
		session.Toggle(arg)
	case actionRecipePage:
		session.Page = arg
	case actionRecipeAll:
		session.SelectAll()
	case actionRecipeNone:
		session.ClearSelection()
	case actionRecipeSave:
		b.saveRecipeSelection(ctx, cb, chatID, session)
		return
	}

	if err := session.Save(ctx, b.docs); err != nil {
		slog.ErrorContext(ctx, "failed to save recipe session", "chat_id", chatID, "error", err)
		b.answer(ctx, cb.ID, "Something went wrong, try again.")
		return
	}
	tp := recipeKeyboard(session, session.Page)
	b.redraw(ctx, cb, chatID, recipeHeader(session.Title, tp), tp.markup)
}

func (b *Bot) saveRecipeSelection(ctx context.Context, cb *CallbackQuery, chatID int64, session *recipe.Session) {
	selected := session.SelectedLines()
	if len(selected) == 0 {
		b.answer(ctx, cb.ID, "Nothing selected yet.")
		return
	}

	added, err := b.store.AddMany(ctx, chatID, selected)
	if err != nil {
		slog.ErrorContext(ctx, "failed to add recipe ingredients", "chat_id", chatID, "error", err)
		b.answer(ctx, cb.ID, "Something went wrong, try again.")
		return
	}
	if err := session.Delete(ctx, b.docs); err != nil {
		slog.WarnContext(ctx, "failed to delete recipe session", "chat_id", chatID, "error", err)
	}

	b.answer(ctx, cb.ID, "")
	summary := fmt.Sprintf("Added %d ingredients from %s (%d were already on the list).", added, session.Title, len(selected)-added)
	if err := b.tg.EditMessageText(ctx, chatID, cb.Message.MessageID, summary, nil); err != nil {
		slog.ErrorContext(ctx, "failed to edit recipe message", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) handleRemoveCallback(ctx context.Context, cb *CallbackQuery, chatID int64, action, id string, arg int) {
	session, err := loadRemoveSession(ctx, b.docs, id)
	if err != nil {
		if errors.Is(err, errRemoveSessionNotFound) {
			b.answer(ctx, cb.ID, "This picker has expired. Send /remove again.")
			return
		}
		slog.ErrorContext(ctx, "failed to load remove session", "chat_id", chatID, "error", err)
		b.answer(ctx, cb.ID, "Something went wrong, try again.")
		return
	}
	if session.ChatID != chatID {
		b.answer(ctx, cb.ID, "")
		return
	}

	switch action {
	case actionRemoveToggle:
		session.toggle(arg)
	case actionRemovePage:
		session.Page = arg
	case actionRemoveAll:
		session.selectAll()
	case actionRemoveNone:
		session.Selected = nil
	case actionRemoveSave:
		b.saveRemoveSelection(ctx, cb, chatID, session)
		return
	}

	if err := session.save(ctx, b.docs); err != nil {
		slog.ErrorContext(ctx, "failed to save remove session", "chat_id", chatID, "error", err)
		b.answer(ctx, cb.ID, "Something went wrong, try again.")
		return
	}
	tp := removeKeyboard(session, session.Page)
	b.redraw(ctx, cb, chatID, removeHeader(tp), tp.markup)
}

func (b *Bot) saveRemoveSelection(ctx context.Context, cb *CallbackQuery, chatID int64, session *removeSession) {
	names := session.selectedNames()
	if len(names) == 0 {
		b.answer(ctx, cb.ID, "Nothing selected yet.")
		return
	}

	removed, err := b.store.RemoveNames(ctx, chatID, names)
	if err != nil {
		slog.ErrorContext(ctx, "failed to remove selected items", "chat_id", chatID, "error", err)
		b.answer(ctx, cb.ID, "Something went wrong, try again.")
		return
	}
	if err := session.delete(ctx, b.docs); err != nil {
		slog.WarnContext(ctx, "failed to delete remove session", "chat_id", chatID, "error", err)
	}

	b.answer(ctx, cb.ID, "")
	summary := fmt.Sprintf("Removed %d items.", removed)
	if removed == 1 {
		summary = "Removed 1 item."
	}
	if err := b.tg.EditMessageText(ctx, chatID, cb.Message.MessageID, summary, nil); err != nil {
		slog.ErrorContext(ctx, "failed to edit remove message", "chat_id", chatID, "error", err)
	}
}

// redraw replaces the keyboard message in place after a toggle.
func (b *Bot) redraw(ctx context.Context, cb *CallbackQuery, chatID int64, header string, markup InlineKeyboardMarkup) {
	b.answer(ctx, cb.ID, "")
	if err := b.tg.EditMessageText(ctx, chatID, cb.Message.MessageID, header, &markup); err != nil {
		slog.WarnContext(ctx, "failed to redraw keyboard", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) answer(ctx context.Context, callbackID, text string) {
	if err := b.tg.AnswerCallback(ctx, callbackID, text, false); err != nil {
		slog.WarnContext(ctx, "failed to answer callback", "error", err)
	}
}
