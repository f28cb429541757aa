// Package notification delivers sent messages to sellers.
package notification

import (
	"context"
	"log/slog"
	"time"
)

// Outbound is a message the dealer chose to send.
type Outbound struct {
	MessageID uint      `json:"message_id"`
	LeadID    uint      `json:"lead_id"`
	DealerID  uint      `json:"dealer_id"`
	Channel   string    `json:"channel"`
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	SentAt    time.Time `json:"sent_at"`
}

type Sender interface {
	Send(ctx context.Context, msg Outbound) error
}

// LogSender only records the send.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) Send(_ context.Context, msg Outbound) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("message sent to seller",
		"lead_id", msg.LeadID,
		"message_id", msg.MessageID,
		"channel", msg.Channel,
		"to", msg.To,
	)
	return nil
}
