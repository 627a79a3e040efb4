package telegram

import (
	"strings"
	"testing"

	"github.com/marcotondi/lfg-bot/internal/models"
)

func TestFormatTableMessageProgressBar(t *testing.T) {
	table := models.Table{
		Type:        models.TableTypeOneShot,
		Game:        "D&D 5e",
		Name:        "The Sunless Citadel",
		Description: "A classic dungeon crawl.",
		MaxPlayers:  5,
	}

	msg := FormatTableMessage(table, "Gandalf", 2)

	if !strings.Contains(msg, "🟦🟦⬜⬜⬜") {
		t.Fatalf("expected 2/5 progress bar, got:\n%s", msg)
	}
	if !strings.Contains(msg, "2/5") {
		t.Fatalf("expected player count, got:\n%s", msg)
	}
	if !strings.Contains(msg, "⚡ <b>One-shot</b>") {
		t.Fatalf("expected one-shot header, got:\n%s", msg)
	}
	if !strings.Contains(msg, "🎭 <b>Master:</b> Gandalf") {
		t.Fatalf("expected master credit, got:\n%s", msg)
	}
}

func TestFormatTableMessageCampaignSessions(t *testing.T) {
	sessions := 8
	table := models.Table{
		Type:        models.TableTypeCampaign,
		Game:        "Pathfinder 2e",
		Name:        "Abomination Vaults",
		MaxPlayers:  4,
		NumSessions: &sessions,
	}

	msg := FormatTableMessage(table, "", 4)

	if !strings.Contains(msg, "📚 <b>Campaign</b> (8 sessions)") {
		t.Fatalf("expected campaign header with sessions, got:\n%s", msg)
	}
	if !strings.Contains(msg, "🟦🟦🟦🟦") || strings.Contains(msg, "⬜") {
		t.Fatalf("expected a full bar with no empty seats, got:\n%s", msg)
	}
	if strings.Contains(msg, "Master:") {
		t.Fatalf("master line should be omitted when unknown, got:\n%s", msg)
	}
}

func TestFormatRoster(t *testing.T) {
	table := models.Table{Game: "Call of Cthulhu", MaxPlayers: 3}
	master := models.User{FirstName: "Keeper", Username: "keeper"}
	players := []models.User{
		{FirstName: "Alice", Username: "alice"},
		{FirstName: "Bob"},
	}

	msg := FormatRoster(table, &master, players)

	if !strings.Contains(msg, "1. Alice (@alice)") || !strings.Contains(msg, "2. Bob") {
		t.Fatalf("expected numbered roster, got:\n%s", msg)
	}
	if !strings.Contains(msg, "🟢 <b>1 slot available</b>") {
		t.Fatalf("expected singular slot line, got:\n%s", msg)
	}

	full := FormatRoster(table, &master, append(players, models.User{FirstName: "Carol"}))
	if !strings.Contains(full, "🔴 <b>Table is full</b>") {
		t.Fatalf("expected full marker, got:\n%s", full)
	}

	empty := FormatRoster(table, nil, nil)
	if !strings.Contains(empty, "No players registered yet") {
		t.Fatalf("expected empty roster hint, got:\n%s", empty)
	}
	if !strings.Contains(empty, "Information not available") {
		t.Fatalf("expected missing master fallback, got:\n%s", empty)
	}
}

func TestTableKeyboardStates(t *testing.T) {
	kb := TableKeyboard(7, false, false)
	if got := kb.InlineKeyboard[0][0].CallbackData; got != "join:7" {
		t.Fatalf("expected join callback, got %q", got)
	}
	if got := kb.InlineKeyboard[0][1].CallbackData; got != "show:7" {
		t.Fatalf("expected show callback, got %q", got)
	}

	kb = TableKeyboard(7, true, false)
	if got := kb.InlineKeyboard[0][0].CallbackData; got != "unjoin:7" {
		t.Fatalf("expected unjoin callback, got %q", got)
	}

	// registered wins over full: a seated player can still leave
	kb = TableKeyboard(7, true, true)
	if got := kb.InlineKeyboard[0][0].CallbackData; got != "unjoin:7" {
		t.Fatalf("expected unjoin callback on a full table, got %q", got)
	}

	kb = TableKeyboard(7, false, true)
	if got := kb.InlineKeyboard[0][0].CallbackData; got != "full:7" {
		t.Fatalf("expected full callback, got %q", got)
	}
}

func TestStateManagerCopies(t *testing.T) {
	m := NewStateManager()

	m.Set(1, &UserState{State: StateCreateGame, Draft: &Draft{Type: models.TableTypeOneShot}})

	got := m.Get(1)
	got.State = StateCreateName
	if m.Get(1).State != StateCreateGame {
		t.Fatal("Get must return a copy, not the stored state")
	}

	// conversation steps mutate a copy and store it back
	got.Draft.Game = "Mothership"
	m.Set(1, got)
	if m.Get(1).State != StateCreateName || m.Get(1).Draft.Game != "Mothership" {
		t.Fatal("Set should replace the stored state")
	}

	m.Clear(1)
	if m.Get(1).State != StateNone {
		t.Fatal("cleared user should come back empty")
	}
}
