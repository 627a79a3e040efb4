package telegram

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/marcotondi/lfg-bot/internal/models"
	"github.com/marcotondi/lfg-bot/internal/router"
	"github.com/marcotondi/lfg-bot/internal/services"
)

type UpdateHandler struct {
	client *Client
	state  *StateManager
	router *router.Router
	users  *services.UserService
	tables *services.TableService
	regs   *services.RegistrationService
}

func NewUpdateHandler(
	client *Client,
	state *StateManager,
	r *router.Router,
	users *services.UserService,
	tables *services.TableService,
	regs *services.RegistrationService,
) *UpdateHandler {
	return &UpdateHandler{
		client: client,
		state:  state,
		router: r,
		users:  users,
		tables: tables,
		regs:   regs,
	}
}

func (h *UpdateHandler) Handle(upd Update) {
	if upd.CallbackQuery != nil {
		h.handleCallback(upd.CallbackQuery)
		return
	}
	if upd.Message != nil {
		h.handleMessage(upd.Message)
	}
}

func (h *UpdateHandler) request(from *User) router.Request {
	return router.Request{
		TelegramID: from.ID,
		Username:   from.Username,
		FirstName:  from.FirstName,
		LastName:   from.LastName,
	}
}

func (h *UpdateHandler) handleMessage(msg *Message) {
	if msg.From == nil {
		return
	}
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	if strings.HasPrefix(text, "/") {
		h.handleCommand(msg, chatID, text)
		return
	}

	us := h.state.Get(msg.From.ID)
	if us.State != StateNone {
		h.handleConversation(msg, chatID, text, us)
		return
	}

	h.client.SendMessage(chatID, "Use /commands to see what I can do.", "", nil)
}

func (h *UpdateHandler) handleCommand(msg *Message, chatID int64, text string) {
	fields := strings.Fields(text)
	cmd := strings.ToLower(strings.SplitN(strings.TrimPrefix(fields[0], "/"), "@", 2)[0])
	args := fields[1:]
	from := msg.From

	switch cmd {
	case "start":
		h.state.Clear(from.ID)
		user, _, err := h.users.ResolveOrCreate(from.ID, from.Username, from.FirstName, from.LastName)
		if err != nil {
			h.client.SendMessage(chatID, "Something went wrong. Please try again later.", "", nil)
			return
		}
		h.client.SendMessage(chatID,
			fmt.Sprintf("Hi <b>%s</b>! Welcome to the Looking For Group bot.\nUse /tables to browse open tables.", user.FirstName),
			"HTML", nil)

	case "tables":
		h.sendTables(chatID, from)

	case "mute":
		res := h.dispatch(from, "mute", nil, 0, nil)
		if !res.Completed() {
			h.client.SendMessage(chatID, res.Detail, "", nil)
			return
		}
		user := res.Payload.(*models.User)
		if user.Mute {
			h.client.SendMessage(chatID, "🔇 You will no longer receive notifications.", "", nil)
		} else {
			h.client.SendMessage(chatID, "🔊 You will now receive notifications.", "", nil)
		}

	case "commands":
		h.sendCommands(chatID, from)

	case "addoneshot":
		h.startCreate(chatID, from, models.TableTypeOneShot)

	case "addcampaign":
		h.startCreate(chatID, from, models.TableTypeCampaign)

	case "mytables":
		res := h.dispatch(from, "mytables", nil, 0, nil)
		if !res.Completed() {
			h.client.SendMessage(chatID, res.Detail, "", nil)
			return
		}
		h.sendOwnedTables(chatID, res.Payload.([]models.Table))

	case "pausecampaign":
		h.sendCampaignPick(chatID, from, "pause")

	case "continuecampaign":
		h.sendCampaignPick(chatID, from, "continue")

	case "alltables":
		res := h.dispatch(from, "alltables", nil, 0, nil)
		if !res.Completed() {
			h.client.SendMessage(chatID, res.Detail, "", nil)
			return
		}
		h.sendOwnedTables(chatID, res.Payload.([]models.Table))

	case "publishtables":
		res := h.dispatch(from, "publishtables", nil, 0, nil)
		if !res.Completed() {
			if res.Kind == router.KindNotFound {
				h.client.SendMessage(chatID, "No active tables to publish.", "", nil)
			} else {
				h.client.SendMessage(chatID, res.Detail, "", nil)
			}
			return
		}
		h.client.SendMessage(chatID, "Tables published successfully!", "", nil)

	case "setmaster", "unsetmaster", "setadmin", "unsetadmin":
		if len(args) < 1 {
			h.client.SendMessage(chatID, fmt.Sprintf("Usage: /%s <telegram_id>", cmd), "", nil)
			return
		}
		res := h.dispatch(from, cmd, args, 0, nil)
		if !res.Completed() {
			h.client.SendMessage(chatID, res.Detail, "", nil)
			return
		}
		h.client.SendMessage(chatID, "Role updated.", "", nil)

	case "canceltable":
		if len(args) < 1 {
			h.client.SendMessage(chatID, "Usage: /canceltable <table_id>", "", nil)
			return
		}
		tableID, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			h.client.SendMessage(chatID, "Usage: /canceltable <table_id>", "", nil)
			return
		}
		res := h.dispatch(from, "canceltable", nil, uint(tableID), nil)
		if !res.Completed() {
			h.client.SendMessage(chatID, res.Detail, "", nil)
			return
		}
		h.client.SendMessage(chatID, "Table cancelled. Registered players have been notified.", "", nil)

	case "kick":
		if len(args) < 2 {
			h.client.SendMessage(chatID, "Usage: /kick <table_id> <telegram_id>", "", nil)
			return
		}
		tableID, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			h.client.SendMessage(chatID, "Usage: /kick <table_id> <telegram_id>", "", nil)
			return
		}
		res := h.dispatch(from, "kick", args[1:], uint(tableID), nil)
		if !res.Completed() {
			h.client.SendMessage(chatID, res.Detail, "", nil)
			return
		}
		h.client.SendMessage(chatID, "Player removed from the table.", "", nil)

	case "cancel":
		h.state.Clear(from.ID)
		h.client.SendMessage(chatID, "Operation cancelled.", "", nil)

	case "skip":
		us := h.state.Get(from.ID)
		if us.State == StateCreateImage {
			h.handleConversation(msg, chatID, "", us)
			return
		}
		h.client.SendMessage(chatID, "Nothing to skip.", "", nil)

	default:
		h.client.SendMessage(chatID, "Unknown command. Use /commands for help.", "", nil)
	}
}

func (h *UpdateHandler) dispatch(from *User, cmd string, args []string, tableID uint, input interface{}) router.Result {
	req := h.request(from)
	req.Command = cmd
	req.Args = args
	req.TableID = tableID
	req.Input = input
	return h.router.Dispatch(req)
}

func (h *UpdateHandler) startCreate(chatID int64, from *User, tableType string) {
	user, err := h.users.Get(from.ID)
	if err != nil || !user.IsMaster {
		h.client.SendMessage(chatID, "You are not authorized to use this command.", "", nil)
		return
	}

	h.state.Set(from.ID, &UserState{
		State: StateCreateGame,
		Draft: &Draft{Type: tableType},
	})

	kind := "one-shot"
	if tableType == models.TableTypeCampaign {
		kind = "campaign"
	}
	h.client.SendMessage(chatID,
		fmt.Sprintf("Let's add a new %s. What is the name of the game?", kind), "", nil)
}

func (h *UpdateHandler) handleConversation(msg *Message, chatID int64, text string, us *UserState) {
	from := msg.From

	switch us.State {
	case StateCreateGame:
		us.Draft.Game = text
		us.State = StateCreateName
		h.state.Set(from.ID, us)
		h.client.SendMessage(chatID, "What's the name of your table?", "", nil)

	case StateCreateName:
		us.Draft.Name = text
		us.State = StateCreateMax
		h.state.Set(from.ID, us)
		h.client.SendMessage(chatID, "How many players can join? (including the master)", "", nil)

	case StateCreateMax:
		n, err := strconv.Atoi(text)
		if err != nil || n < 1 {
			h.client.SendMessage(chatID, "Please send a valid number of players.", "", nil)
			return
		}
		us.Draft.MaxPlayers = n
		us.State = StateCreateDesc
		h.state.Set(from.ID, us)
		h.client.SendMessage(chatID, "Provide a brief description of the adventure.", "", nil)

	case StateCreateDesc:
		us.Draft.Description = text
		us.State = StateCreateImage
		h.state.Set(from.ID, us)
		h.client.SendMessage(chatID, "Do you want to add an image? (Send the image or /skip)", "", nil)

	case StateCreateImage:
		if len(msg.Photo) > 0 {
			us.Draft.Image = msg.Photo[len(msg.Photo)-1].FileID
		}
		if us.Draft.Type == models.TableTypeCampaign {
			us.State = StateCreateNum
			h.state.Set(from.ID, us)
			h.client.SendMessage(chatID, "How many sessions are planned?", "", nil)
			return
		}
		h.finishCreate(chatID, from, us.Draft)

	case StateCreateNum:
		n, err := strconv.Atoi(text)
		if err != nil || n < 1 {
			h.client.SendMessage(chatID, "Please send a valid number of sessions.", "", nil)
			return
		}
		us.Draft.NumSessions = &n
		h.finishCreate(chatID, from, us.Draft)

	case StateEditValue:
		h.finishEdit(chatID, from, us, text)
	}
}

func (h *UpdateHandler) finishCreate(chatID int64, from *User, draft *Draft) {
	res := h.dispatch(from, "createtable", nil, 0, services.CreateTableInput{
		Type:        draft.Type,
		Game:        draft.Game,
		Name:        draft.Name,
		MaxPlayers:  draft.MaxPlayers,
		Description: draft.Description,
		Image:       draft.Image,
		NumSessions: draft.NumSessions,
	})
	h.state.Clear(from.ID)

	if !res.Completed() {
		h.client.SendMessage(chatID, res.Detail, "", nil)
		return
	}
	h.client.SendMessage(chatID, "Table created successfully!", "", nil)
}

func (h *UpdateHandler) finishEdit(chatID int64, from *User, us *UserState, text string) {
	var patch services.TablePatch
	switch us.EditField {
	case "description":
		patch.Description = &text
	case "max_players":
		n, err := strconv.Atoi(text)
		if err != nil {
			h.client.SendMessage(chatID, "Invalid number. Please send a valid number for max players.", "", nil)
			return
		}
		patch.MaxPlayers = &n
	default:
		h.state.Clear(from.ID)
		return
	}

	res := h.dispatch(from, "edittable", nil, us.TableID, patch)
	if !res.Completed() {
		h.client.SendMessage(chatID, res.Detail, "", nil)
		if res.Kind == router.KindCapacityConflict || res.Kind == router.KindInvalidInput {
			return // keep the conversation open for a retry
		}
		h.state.Clear(from.ID)
		return
	}

	h.state.Clear(from.ID)
	h.client.SendMessage(chatID, "Table updated successfully!", "", nil)
}

func (h *UpdateHandler) handleCallback(cb *CallbackQuery) {
	parts := strings.SplitN(cb.Data, ":", 3)
	if len(parts) < 2 {
		h.client.AnswerCallbackQuery(cb.ID, "Invalid data", true)
		return
	}

	action := parts[0]
	tableID64, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		h.client.AnswerCallbackQuery(cb.ID, "Invalid data", true)
		return
	}
	tableID := uint(tableID64)
	from := &cb.From

	switch action {
	case "join":
		res := h.dispatch(from, "join", nil, tableID, nil)
		if !res.Completed() {
			h.client.AnswerCallbackQuery(cb.ID, res.Detail, false)
			return
		}
		h.client.AnswerCallbackQuery(cb.ID, "✅ You have successfully joined the table!", false)
		h.refreshTableKeyboard(cb, tableID, from)

	case "unjoin":
		res := h.dispatch(from, "leave", nil, tableID, nil)
		if !res.Completed() {
			h.client.AnswerCallbackQuery(cb.ID, res.Detail, false)
			return
		}
		h.client.AnswerCallbackQuery(cb.ID, "⚠️ You have successfully left the table.", false)
		h.refreshTableKeyboard(cb, tableID, from)

	case "full":
		h.client.AnswerCallbackQuery(cb.ID, "This table is full.", false)

	case "show":
		h.showPlayers(cb, tableID)

	case "pause":
		res := h.dispatch(from, "pausetable", nil, tableID, nil)
		if !res.Completed() {
			h.client.AnswerCallbackQuery(cb.ID, res.Detail, true)
			return
		}
		h.client.AnswerCallbackQuery(cb.ID, "Campaign paused.", false)
		if cb.Message != nil {
			h.client.EditMessageText(cb.Message.Chat.ID, cb.Message.MessageID, "Campaign has been paused.", "", nil)
		}

	case "continue":
		res := h.dispatch(from, "continuetable", nil, tableID, nil)
		if !res.Completed() {
			h.client.AnswerCallbackQuery(cb.ID, res.Detail, true)
			return
		}
		h.client.AnswerCallbackQuery(cb.ID, "Campaign continued.", false)
		if cb.Message != nil {
			h.client.EditMessageText(cb.Message.Chat.ID, cb.Message.MessageID, "Campaign has been continued.", "", nil)
		}

	case "edit":
		if !h.canEdit(from, tableID) {
			h.client.AnswerCallbackQuery(cb.ID, "You are not authorized to edit this table.", true)
			return
		}
		if cb.Message != nil {
			h.client.EditMessageText(cb.Message.Chat.ID, cb.Message.MessageID,
				"What do you want to edit?", "", EditChoiceKeyboard(tableID))
		}
		h.client.AnswerCallbackQuery(cb.ID, "", false)

	case "editfield":
		if len(parts) < 3 {
			h.client.AnswerCallbackQuery(cb.ID, "Invalid data", true)
			return
		}
		field := parts[2]
		h.state.Set(from.ID, &UserState{State: StateEditValue, TableID: tableID, EditField: field})
		if cb.Message != nil {
			h.client.EditMessageText(cb.Message.Chat.ID, cb.Message.MessageID,
				fmt.Sprintf("Please send the new %s.", strings.ReplaceAll(field, "_", " ")), "", nil)
		}
		h.client.AnswerCallbackQuery(cb.ID, "", false)

	default:
		h.client.AnswerCallbackQuery(cb.ID, "Invalid data", true)
	}
}

// canEdit mirrors the router's master-of-target-table predicate for the edit
// menu entry, which only shows a keyboard and has no side effects.
func (h *UpdateHandler) canEdit(from *User, tableID uint) bool {
	user, err := h.users.Get(from.ID)
	if err != nil {
		return false
	}
	table, err := h.tables.Get(tableID)
	if err != nil {
		return false
	}
	return table.MasterID == user.ID || user.IsAdmin
}

func (h *UpdateHandler) refreshTableKeyboard(cb *CallbackQuery, tableID uint, from *User) {
	if cb.Message == nil {
		return
	}
	user, err := h.users.Get(from.ID)
	if err != nil {
		return
	}
	registered, _ := h.regs.IsRegistered(tableID, user.ID)
	table, err := h.tables.Get(tableID)
	if err != nil {
		return
	}
	occupancy, _ := h.regs.Occupancy(tableID)

	h.client.EditMessageReplyMarkup(cb.Message.Chat.ID, cb.Message.MessageID,
		TableKeyboard(tableID, registered, occupancy >= table.MaxPlayers))
}
