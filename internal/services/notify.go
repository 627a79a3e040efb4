package services

import (
	"fmt"

	"github.com/marcotondi/lfg-bot/internal/models"
)

type EventType string

const (
	EventTableCancelled  EventType = "table_cancelled"
	EventTablePaused     EventType = "table_paused"
	EventPlayerKicked    EventType = "player_kicked"
	EventTablesPublished EventType = "tables_published"
	EventPlayerJoined    EventType = "player_joined"
	EventPlayerLeft      EventType = "player_left"
)

// eventPolicy decides which events reach muted users. Cancellations and
// kicks are critical: the affected player loses a seat and must hear about
// it regardless of their mute preference.
var eventPolicy = map[EventType]struct{ BypassMute bool }{
	EventTableCancelled:  {BypassMute: true},
	EventPlayerKicked:    {BypassMute: true},
	EventTablePaused:     {BypassMute: false},
	EventTablesPublished: {BypassMute: false},
	// Joined/left carry no direct recipients; they only feed the live ws feed.
	EventPlayerJoined: {BypassMute: false},
	EventPlayerLeft:   {BypassMute: false},
}

type Event struct {
	Type     EventType
	Table    *models.Table
	Affected []models.User
	// Text overrides the standard message, used by the publish announcement.
	Text string
}

type Notification struct {
	RecipientID int64 // telegram chat id
	Message     string
}

// PlanNotifications computes the (recipient, message) list for an event.
// Pure: no delivery happens here.
func PlanNotifications(evt Event) []Notification {
	policy := eventPolicy[evt.Type]

	var out []Notification
	for _, u := range evt.Affected {
		if u.Mute && !policy.BypassMute {
			continue
		}
		out = append(out, Notification{
			RecipientID: u.TelegramID,
			Message:     eventMessage(evt),
		})
	}
	return out
}

func eventMessage(evt Event) string {
	if evt.Text != "" {
		return evt.Text
	}
	switch evt.Type {
	case EventTableCancelled:
		return fmt.Sprintf("❌ The table <b>%s</b> (%s) has been cancelled.", evt.Table.Name, evt.Table.Game)
	case EventTablePaused:
		return fmt.Sprintf("⏸ The campaign <b>%s</b> (%s) has been paused. Your seat is released.", evt.Table.Name, evt.Table.Game)
	case EventPlayerKicked:
		return fmt.Sprintf("⚠️ You have been removed from the table <b>%s</b> (%s).", evt.Table.Name, evt.Table.Game)
	default:
		return ""
	}
}

// Notifier delivers a single message to a chat. Implementations are
// best-effort: failures are logged by the transport, never returned here.
type Notifier interface {
	Notify(chatID int64, message string)
}

// EventSink receives table events for live observers (the websocket feed).
type EventSink interface {
	BroadcastTable(tableID uint, event string, data interface{})
}

type NotifyService struct {
	notifier Notifier
	sink     EventSink
}

func NewNotifyService(notifier Notifier, sink EventSink) *NotifyService {
	return &NotifyService{notifier: notifier, sink: sink}
}

// Publish fans an event out to its recipients. Fire-and-forget: the caller's
// transaction is already committed and delivery failures must not affect it.
func (s *NotifyService) Publish(evt Event) {
	notifications := PlanNotifications(evt)

	go func() {
		for _, n := range notifications {
			s.notifier.Notify(n.RecipientID, n.Message)
		}
	}()

	if s.sink != nil && evt.Table != nil {
		s.sink.BroadcastTable(evt.Table.ID, string(evt.Type), evt.Table)
	}
}
