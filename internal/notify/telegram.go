package notify

import (
	"fmt"

	"attendance-station/pkg/telegram"
)

// TelegramNotifier posts attendance events to an operator chat.
type TelegramNotifier struct {
	client *telegram.Client
	chatID int64
}

func NewTelegramNotifier(client *telegram.Client, chatID int64) *TelegramNotifier {
	return &TelegramNotifier{client: client, chatID: chatID}
}

func (n *TelegramNotifier) Name() string {
	return "telegram"
}

func (n *TelegramNotifier) NotifyAttendance(event Event) error {
	text := fmt.Sprintf("%s: %s on %s at %s", event.EmployeeName, event.Action, event.Date, event.Time)
	return n.client.SendMessage(n.chatID, text)
}
