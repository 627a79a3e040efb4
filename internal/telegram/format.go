package telegram

import (
	"fmt"
	"log"
	"strings"

	"github.com/marcotondi/lfg-bot/internal/models"
	"github.com/marcotondi/lfg-bot/internal/services"
)

// FormatTableMessage renders a table card: game header, type line, name,
// description, seat progress bar and master credit.
func FormatTableMessage(table models.Table, masterName string, currentPlayers int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<b>%s</b>\n\n", strings.ToUpper(table.Game))

	if table.Type == models.TableTypeOneShot {
		b.WriteString("⚡ <b>One-shot</b>\n")
	} else {
		sessions := ""
		if table.NumSessions != nil {
			sessions = fmt.Sprintf(" (%d sessions)", *table.NumSessions)
		}
		fmt.Fprintf(&b, "📚 <b>Campaign</b>%s\n", sessions)
	}

	fmt.Fprintf(&b, "<i>%s</i>\n\n\n", table.Name)
	fmt.Fprintf(&b, "<i>%s</i>\n\n", table.Description)

	free := table.MaxPlayers - currentPlayers
	if free < 0 {
		free = 0
	}
	progressBar := strings.Repeat("🟦", currentPlayers) + strings.Repeat("⬜", free)

	fmt.Fprintf(&b, "👥 <b>Players:</b> %d/%d\n", currentPlayers, table.MaxPlayers)
	b.WriteString(progressBar + "\n\n")

	if masterName != "" {
		fmt.Fprintf(&b, "🎭 <b>Master:</b> %s\n", masterName)
	}

	return b.String()
}

// FormatRoster renders the Show Players view.
func FormatRoster(table models.Table, master *models.User, players []models.User) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🎮 <b>%s</b>\n", table.Game)
	b.WriteString("━━━━━━━━━━━━━━━━━━━━━\n\n")

	if master != nil {
		fmt.Fprintf(&b, "🎭 <b>Master:</b> %s\n\n", master.DisplayName())
	} else {
		b.WriteString("🎭 <b>Master:</b> Information not available\n\n")
	}

	fmt.Fprintf(&b, "👥 <b>Players (%d/%d):</b>\n", len(players), table.MaxPlayers)
	if len(players) == 0 {
		b.WriteString("   <i>No players registered yet</i>\n")
	} else {
		for i, p := range players {
			fmt.Fprintf(&b, "   %d. %s\n", i+1, p.DisplayName())
		}
	}

	remaining := table.MaxPlayers - len(players)
	if remaining > 0 {
		plural := "s"
		if remaining == 1 {
			plural = ""
		}
		fmt.Fprintf(&b, "\n🟢 <b>%d slot%s available</b>", remaining, plural)
	} else {
		b.WriteString("\n🔴 <b>Table is full</b>")
	}

	return b.String()
}

func (h *UpdateHandler) sendTables(chatID int64, from *User) {
	user, _, err := h.users.ResolveOrCreate(from.ID, from.Username, from.FirstName, from.LastName)
	if err != nil {
		h.client.SendMessage(chatID, "Something went wrong. Please try again later.", "", nil)
		return
	}

	tables, err := h.tables.ListActive(services.TableFilter{})
	if err != nil {
		h.client.SendMessage(chatID, "Something went wrong. Please try again later.", "", nil)
		return
	}
	if len(tables) == 0 {
		h.client.SendMessage(chatID, "No active tables for the next game day.", "", nil)
		return
	}

	for _, table := range tables {
		occupancy, _ := h.regs.Occupancy(table.ID)
		registered, _ := h.regs.IsRegistered(table.ID, user.ID)

		masterName := ""
		if master, err := h.users.GetByID(table.MasterID); err == nil {
			masterName = master.DisplayName()
		}

		text := FormatTableMessage(table, masterName, occupancy)
		kb := TableKeyboard(table.ID, registered, occupancy >= table.MaxPlayers)

		if table.Image != "" {
			if _, err := h.client.SendPhoto(chatID, table.Image, text, "HTML", kb); err == nil {
				continue
			}
			log.Printf("[bot] send photo for table %d failed, falling back to text", table.ID)
		}
		h.client.SendMessage(chatID, text, "HTML", kb)
	}
}

func (h *UpdateHandler) sendOwnedTables(chatID int64, tables []models.Table) {
	if len(tables) == 0 {
		h.client.SendMessage(chatID, "You have no tables.", "", nil)
		return
	}

	h.client.SendMessage(chatID, "Here are your tables:", "", nil)
	for _, table := range tables {
		status := "Active"
		if !table.Active {
			status = "Inactive"
		}
		kb := &InlineKeyboardMarkup{
			InlineKeyboard: [][]InlineKeyboardButton{
				{{Text: "Edit", CallbackData: fmt.Sprintf("edit:%d", table.ID)}},
			},
		}
		h.client.SendMessage(chatID,
			fmt.Sprintf("<b>%s</b> (%s)\n<b>%s</b>\n\n<i>%s</i>\n\nMax players: %d",
				table.Game, status, table.Name, table.Description, table.MaxPlayers),
			"HTML", kb)
	}
}

func (h *UpdateHandler) sendCampaignPick(chatID int64, from *User, action string) {
	user, err := h.users.Get(from.ID)
	if err != nil || !user.IsMaster {
		h.client.SendMessage(chatID, "You are not authorized to use this command.", "", nil)
		return
	}

	var campaigns []models.Table
	if action == "pause" {
		campaigns, err = h.tables.ActiveCampaignsByMaster(user.ID)
	} else {
		campaigns, err = h.tables.InactiveCampaignsByMaster(user.ID)
	}
	if err != nil {
		h.client.SendMessage(chatID, "Something went wrong. Please try again later.", "", nil)
		return
	}
	if len(campaigns) == 0 {
		if action == "pause" {
			h.client.SendMessage(chatID, "You have no active campaigns to pause.", "", nil)
		} else {
			h.client.SendMessage(chatID, "You have no paused campaigns to continue.", "", nil)
		}
		return
	}

	prompt := "Select a campaign to pause:"
	if action == "continue" {
		prompt = "Select a campaign to continue:"
	}
	h.client.SendMessage(chatID, prompt, "", TablePickKeyboard(action, campaigns))
}

func (h *UpdateHandler) showPlayers(cb *CallbackQuery, tableID uint) {
	table, err := h.tables.Get(tableID)
	if err != nil {
		h.client.AnswerCallbackQuery(cb.ID, "Table not found.", true)
		return
	}
	players, err := h.regs.Roster(tableID)
	if err != nil {
		h.client.AnswerCallbackQuery(cb.ID, "Something went wrong.", true)
		return
	}

	var master *models.User
	if m, err := h.users.GetByID(table.MasterID); err == nil {
		master = m
	}

	text := FormatRoster(*table, master, players)
	if cb.Message != nil {
		if err := h.client.EditMessageText(cb.Message.Chat.ID, cb.Message.MessageID, text, "HTML", nil); err != nil {
			// photo cards have no text to edit; answer with an alert instead
			h.client.AnswerCallbackQuery(cb.ID, "Could not update this message.", true)
			return
		}
	}
	h.client.AnswerCallbackQuery(cb.ID, "", false)
}

func (h *UpdateHandler) sendCommands(chatID int64, from *User) {
	user, err := h.users.Get(from.ID)

	var b strings.Builder
	b.WriteString("📋 <b>Available commands:</b>\n\n")

	b.WriteString("👤 <b>User commands:</b>\n")
	b.WriteString("• /start - Start the bot\n")
	b.WriteString("• /tables - Show active tables\n")
	b.WriteString("• /mute - Mute/unmute notifications\n")
	b.WriteString("• /commands - Show this message\n\n")

	if err == nil && user.IsMaster {
		b.WriteString("🎭 <b>Master commands:</b>\n")
		b.WriteString("• /addoneshot - Add a new one-shot table\n")
		b.WriteString("• /addcampaign - Add a new campaign table\n")
		b.WriteString("• /mytables - Show and edit your tables\n")
		b.WriteString("• /pausecampaign - Pause a campaign\n")
		b.WriteString("• /continuecampaign - Continue a campaign\n")
		b.WriteString("• /kick <table_id> <telegram_id> - Remove a player from your table\n\n")
	}

	if err == nil && user.IsAdmin {
		b.WriteString("⚙️ <b>Admin commands:</b>\n")
		b.WriteString("• /alltables - Review and edit all tables\n")
		b.WriteString("• /publishtables - Publish tables to users\n")
		b.WriteString("• /canceltable <table_id> - Cancel a table\n")
		b.WriteString("• /setmaster <telegram_id> - Set a user as master\n")
		b.WriteString("• /unsetmaster <telegram_id> - Unset a user as master\n")
		b.WriteString("• /setadmin <telegram_id> - Set a user as admin\n")
		b.WriteString("• /unsetadmin <telegram_id> - Unset a user as admin\n")
	}

	h.client.SendMessage(chatID, b.String(), "HTML", nil)
}
