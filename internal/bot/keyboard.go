package bot

import (
	"fmt"
	"strconv"
	"strings"

	"pantrybot/internal/recipe"
	"pantrybot/internal/suggest"
)

// Callback data actions. Telegram caps callback_data at 64 bytes, so the
// format is a terse "<action>:<id>[:<index>]".
const (
	actionAccept = "a"
	actionSkip   = "r"

	actionRecipeToggle = "ri"
	actionRecipePage   = "rp"
	actionRecipeAll    = "ra"
	actionRecipeNone   = "rc"
	actionRecipeSave   = "rs"

	actionRemoveToggle = "rmi"
	actionRemovePage   = "rmp"
	actionRemoveAll    = "rma"
	actionRemoveNone   = "rmc"
	actionRemoveSave   = "rms"
)

const pageSize = 8

func callbackData(action, id string, arg int) string {
	if arg < 0 {
		return action + ":" + id
	}
	return action + ":" + id + ":" + strconv.Itoa(arg)
}

// parseCallback splits callback data back into its parts. arg is -1 when
// the action carries none.
func parseCallback(data string) (action, id string, arg int, ok bool) {
	parts := strings.SplitN(data, ":", 3)
	if len(parts) < 2 {
		return "", "", 0, false
	}
	arg = -1
	if len(parts) == 3 {
		n, err := strconv.Atoi(parts[2])
		if err != nil {
			return "", "", 0, false
		}
		arg = n
	}
	return parts[0], parts[1], arg, true
}

// suggestionKeyboard puts one Add/Skip row per candidate.
func suggestionKeyboard(batch *suggest.Batch) InlineKeyboardMarkup {
	var rows [][]InlineKeyboardButton
	for idx, item := range batch.Items {
		rows = append(rows, []InlineKeyboardButton{
			{Text: "Add " + item.DisplayName, CallbackData: callbackData(actionAccept, batch.ID, idx)},
			{Text: "Skip", CallbackData: callbackData(actionSkip, batch.ID, idx)},
		})
	}
	return InlineKeyboardMarkup{InlineKeyboard: rows}
}

// togglePage describes one page of a toggle keyboard over labeled lines.
type togglePage struct {
	markup        InlineKeyboardMarkup
	page          int
	totalPages    int
	selectedCount int
}

// toggleActions names the callback actions a toggle keyboard emits.
type toggleActions struct {
	toggle, page, all, none, save string
	saveLabel                     string
}

var recipeActions = toggleActions{
	toggle: actionRecipeToggle, page: actionRecipePage,
	all: actionRecipeAll, none: actionRecipeNone, save: actionRecipeSave,
	saveLabel: "Save to list",
}

var removeActions = toggleActions{
	toggle: actionRemoveToggle, page: actionRemovePage,
	all: actionRemoveAll, none: actionRemoveNone, save: actionRemoveSave,
	saveLabel: "Remove selected",
}

// buildTogglePage renders one page of checkable lines with prev/next,
// select-all/clear-all, and a save row.
func buildTogglePage(id string, labels []string, selected map[int]bool, page int, actions toggleActions) togglePage {
	totalPages := (len(labels) + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 0 {
		page = 0
	}
	if page > totalPages-1 {
		page = totalPages - 1
	}

	start := page * pageSize
	end := start + pageSize
	if end > len(labels) {
		end = len(labels)
	}

	var rows [][]InlineKeyboardButton
	for idx := start; idx < end; idx++ {
		label := labels[idx]
		if selected[idx] {
			label = "✓ " + label
		}
		rows = append(rows, []InlineKeyboardButton{
			{Text: label, CallbackData: callbackData(actions.toggle, id, idx)},
		})
	}

	var nav []InlineKeyboardButton
	if page > 0 {
		nav = append(nav, InlineKeyboardButton{Text: "Prev", CallbackData: callbackData(actions.page, id, page-1)})
	}
	if page < totalPages-1 {
		nav = append(nav, InlineKeyboardButton{Text: "Next", CallbackData: callbackData(actions.page, id, page+1)})
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}

	rows = append(rows, []InlineKeyboardButton{
		{Text: "Select all", CallbackData: callbackData(actions.all, id, -1)},
		{Text: "Clear all", CallbackData: callbackData(actions.none, id, -1)},
	})
	rows = append(rows, []InlineKeyboardButton{
		{Text: actions.saveLabel, CallbackData: callbackData(actions.save, id, -1)},
	})

	return togglePage{
		markup:        InlineKeyboardMarkup{InlineKeyboard: rows},
		page:          page,
		totalPages:    totalPages,
		selectedCount: len(selected),
	}
}

func recipeKeyboard(session *recipe.Session, page int) togglePage {
	return buildTogglePage(session.ID, session.Lines, session.SelectedSet(), page, recipeActions)
}

func recipeHeader(title string, tp togglePage) string {
	return fmt.Sprintf("Ingredients for %s (page %d/%d, selected %d):", title, tp.page+1, tp.totalPages, tp.selectedCount)
}

func removeKeyboard(session *removeSession, page int) togglePage {
	labels := make([]string, len(session.Items))
	for i, item := range session.Items {
		labels[i] = item.DisplayName
	}
	return buildTogglePage(session.ID, labels, session.SelectedSet(), page, removeActions)
}

func removeHeader(tp togglePage) string {
	return fmt.Sprintf("Select items to remove (page %d/%d, selected %d):", tp.page+1, tp.totalPages, tp.selectedCount)
}
