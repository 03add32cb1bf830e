// Package notify pushes back-office events to a Telegram chat so the
// administration hears about room bookings without opening the app.
package notify

import (
	"encoding/json"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/Anedula/NioiAccess/internal/events"
	"github.com/Anedula/NioiAccess/internal/model"
)

// Sender is the part of the Telegram bot API the notifier uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier forwards reservation events to one chat.
type TelegramNotifier struct {
	bot    Sender
	chatID int64
	logger *zerolog.Logger
}

// NewTelegramNotifier connects the bot with the given token.
func NewTelegramNotifier(token string, chatID int64, logger *zerolog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	logger.Info().Str("bot", bot.Self.UserName).Msg("Telegram notifier connected")
	return &TelegramNotifier{bot: bot, chatID: chatID, logger: logger}, nil
}

// NewWithSender builds a notifier over an existing sender. Used in tests.
func NewWithSender(sender Sender, chatID int64, logger *zerolog.Logger) *TelegramNotifier {
	return &TelegramNotifier{bot: sender, chatID: chatID, logger: logger}
}

// SubscribeTo wires the notifier to the reservation events on the bus.
func (n *TelegramNotifier) SubscribeTo(bus *events.EventBus) {
	bus.Subscribe(events.TypeReservationCreated, n.handleReservationCreated)
	bus.Subscribe(events.TypeReservationDeleted, n.handleReservationDeleted)
}

func (n *TelegramNotifier) handleReservationCreated(event events.Event) error {
	var res model.Reservation
	if err := json.Unmarshal(event.Payload, &res); err != nil {
		return fmt.Errorf("decode reservation event: %w", err)
	}

	text := fmt.Sprintf("Sala reservada: %s de %s a %s por %s (%s)",
		res.Date, res.StartTime, res.EndTime, res.Responsible, res.Subject)
	return n.send(text)
}

func (n *TelegramNotifier) handleReservationDeleted(event events.Event) error {
	var res model.Reservation
	if err := json.Unmarshal(event.Payload, &res); err != nil {
		return fmt.Errorf("decode reservation event: %w", err)
	}

	text := fmt.Sprintf("Reserva eliminada: %s de %s a %s (%s)",
		res.Date, res.StartTime, res.EndTime, res.Responsible)
	return n.send(text)
}

// Notify sends a free-form message to the configured chat.
func (n *TelegramNotifier) Notify(text string) error {
	return n.send(text)
}

func (n *TelegramNotifier) send(text string) error {
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Error().Err(err).Msg("Failed to send telegram notification")
		return err
	}
	return nil
}
