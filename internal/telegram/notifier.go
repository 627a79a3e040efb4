package telegram

import "log"

// BotNotifier adapts the client to the fan-out's Notifier interface.
// Best-effort: a failed send is logged and dropped, never propagated back to
// the command that triggered it.
type BotNotifier struct {
	client *Client
}

func NewBotNotifier(client *Client) *BotNotifier {
	return &BotNotifier{client: client}
}

func (n *BotNotifier) Notify(chatID int64, message string) {
	if _, err := n.client.SendMessage(chatID, message, "HTML", nil); err != nil {
		log.Printf("[notify] failed to send message to %d: %v", chatID, err)
	}
}
