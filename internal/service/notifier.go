package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"carebook/internal/events"
	"carebook/internal/logging"

	"github.com/rs/zerolog"
)

const notifyQueueSize = 64

// AdminNotifier forwards booking and role events to the admins' Telegram chats.
// Event handlers only enqueue; Run delivers the messages.
type AdminNotifier struct {
	tg      *TelegramService
	chatIDs []int64
	queue   chan string
	logger  *zerolog.Logger
}

func NewAdminNotifier(tg *TelegramService, chatIDs []int64, logger *zerolog.Logger) *AdminNotifier {
	return &AdminNotifier{
		tg:      tg,
		chatIDs: chatIDs,
		queue:   make(chan string, notifyQueueSize),
		logger:  logger,
	}
}

// Subscribe registers the notifier on bus.
func (n *AdminNotifier) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.EventBookingCreated, n.handleBooking)
	bus.Subscribe(events.EventBookingStatusChanged, n.handleBooking)
	bus.Subscribe(events.EventRoleChanged, n.handleRole)
}

func (n *AdminNotifier) handleBooking(event *events.Event) error {
	var p events.BookingEventPayload
	if err := event.Decode(&p); err != nil {
		return fmt.Errorf("decode %s: %w", event.Type, err)
	}
	return n.enqueue(formatBooking(event.Type, p))
}

func (n *AdminNotifier) handleRole(event *events.Event) error {
	var p events.RoleEventPayload
	if err := event.Decode(&p); err != nil {
		return fmt.Errorf("decode %s: %w", event.Type, err)
	}
	text := fmt.Sprintf("👤 <b>Role changed</b>\n%s is now <b>%s</b>\nby %s",
		html.EscapeString(p.TargetEmail), html.EscapeString(p.Role), html.EscapeString(p.ChangedBy))
	return n.enqueue(text)
}

func (n *AdminNotifier) enqueue(text string) error {
	select {
	case n.queue <- text:
		return nil
	default:
		return ErrNotifyQueueFull
	}
}

// Run delivers queued messages until ctx is done. Messages still queued at
// shutdown are dropped.
func (n *AdminNotifier) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			if pending := len(n.queue); pending > 0 {
				n.logger.Warn().Int("pending", pending).Msg("notifier stopped with undelivered messages")
			}
			return
		case text := <-n.queue:
			if err := n.broadcast(text); err != nil {
				n.logger.Warn().Err(err).Msg("admin notification incomplete")
			}
		}
	}
}

func (n *AdminNotifier) broadcast(text string) error {
	var failed int
	for _, chatID := range n.chatIDs {
		if _, err := n.tg.SendHTML(chatID, text); err != nil {
			failed++
			n.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to notify admin")
		}
	}
	if failed > 0 {
		return fmt.Errorf("notify admins: %d of %d sends failed", failed, len(n.chatIDs))
	}
	return nil
}

func formatBooking(eventType string, p events.BookingEventPayload) string {
	var b strings.Builder
	switch eventType {
	case events.EventBookingCreated:
		b.WriteString("🆕 <b>New booking</b>\n")
	default:
		fmt.Fprintf(&b, "🔄 <b>Booking %s → %s</b>\n", html.EscapeString(p.PrevStatus), html.EscapeString(p.Status))
	}
	fmt.Fprintf(&b, "Service: %s\n", html.EscapeString(p.ServiceName))
	fmt.Fprintf(&b, "Customer: %s (%s)\n", html.EscapeString(p.UserName), html.EscapeString(logging.MaskEmail(p.UserEmail)))
	fmt.Fprintf(&b, "Duration: %s %s\n", p.Duration.String(), html.EscapeString(p.DurationType))
	if p.District != "" {
		fmt.Fprintf(&b, "District: %s\n", html.EscapeString(p.District))
	}
	fmt.Fprintf(&b, "Total: %s\n", p.TotalCost.StringFixed(2))
	fmt.Fprintf(&b, "ID: <code>%s</code>", html.EscapeString(p.BookingID))
	return b.String()
}
