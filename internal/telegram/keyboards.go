package telegram

import (
	"fmt"

	"github.com/marcotondi/lfg-bot/internal/models"
)

// TableKeyboard builds the Join/Unjoin + Show Players row under a table card.
func TableKeyboard(tableID uint, registered, full bool) *InlineKeyboardMarkup {
	var joinButton InlineKeyboardButton
	switch {
	case registered:
		joinButton = InlineKeyboardButton{Text: "❌ Unjoin", CallbackData: fmt.Sprintf("unjoin:%d", tableID)}
	case full:
		joinButton = InlineKeyboardButton{Text: "🚫 Table Full", CallbackData: fmt.Sprintf("full:%d", tableID)}
	default:
		joinButton = InlineKeyboardButton{Text: "✅ Join", CallbackData: fmt.Sprintf("join:%d", tableID)}
	}

	return &InlineKeyboardMarkup{
		InlineKeyboard: [][]InlineKeyboardButton{
			{
				joinButton,
				{Text: "👥 Show Players", CallbackData: fmt.Sprintf("show:%d", tableID)},
			},
		},
	}
}

// TablePickKeyboard lists tables one per row with a shared callback prefix
// (pause, continue, edit, cancel).
func TablePickKeyboard(prefix string, tables []models.Table) *InlineKeyboardMarkup {
	var rows [][]InlineKeyboardButton
	for _, t := range tables {
		rows = append(rows, []InlineKeyboardButton{
			{Text: fmt.Sprintf("%s — %s", t.Game, t.Name), CallbackData: fmt.Sprintf("%s:%d", prefix, t.ID)},
		})
	}
	return &InlineKeyboardMarkup{InlineKeyboard: rows}
}

func EditChoiceKeyboard(tableID uint) *InlineKeyboardMarkup {
	return &InlineKeyboardMarkup{
		InlineKeyboard: [][]InlineKeyboardButton{
			{{Text: "Description", CallbackData: fmt.Sprintf("editfield:%d:description", tableID)}},
			{{Text: "Max Players", CallbackData: fmt.Sprintf("editfield:%d:max_players", tableID)}},
		},
	}
}
