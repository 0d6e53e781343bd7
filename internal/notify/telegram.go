package notify

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/AviatorPredictor/internal/calculate"
	"github.com/Alias1177/AviatorPredictor/models"
)

// Notifier delivers prediction alerts
type Notifier interface {
	Notify(ctx context.Context, result models.PredictionResult) error
}

// sender is the part of tgbotapi.BotAPI used for alerts
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram sends alerts to a single chat
type Telegram struct {
	bot    sender
	chatID int64
	logger zerolog.Logger
}

// NewTelegram creates a notifier authenticated with token
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("initializing telegram bot: %w", err)
	}

	t := newTelegram(bot, chatID)
	t.logger.Info().Str("bot", bot.Self.UserName).Msg("Telegram notifier ready")
	return t, nil
}

func newTelegram(bot sender, chatID int64) *Telegram {
	return &Telegram{
		bot:    bot,
		chatID: chatID,
		logger: log.With().Str("component", "telegram").Logger(),
	}
}

// Notify sends a formatted alert for result
func (t *Telegram) Notify(ctx context.Context, result models.PredictionResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(t.chatID, FormatAlert(result))
	msg.ParseMode = "Markdown"

	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("sending telegram alert: %w", err)
	}

	t.logger.Debug().Int64("chat_id", t.chatID).Float64("predicted", result.PredictedMultiplier).Msg("Alert sent")
	return nil
}

// FormatAlert renders a prediction as a Markdown message
func FormatAlert(result models.PredictionResult) string {
	var sb strings.Builder

	sb.WriteString("✈️ *Aviator prediction*\n\n")
	fmt.Fprintf(&sb, "Next multiplier: *%.2fx*\n", result.PredictedMultiplier)
	fmt.Fprintf(&sb, "Confidence: *%d%%* (%s)\n", result.Confidence, models.ConfidenceTier(result.Confidence))
	fmt.Fprintf(&sb, "Volatility: %.2f (%s)\n", result.Patterns.Volatility, calculate.VolatilityLevel(result.Patterns.Volatility))
	fmt.Fprintf(&sb, "Trend: %s\n", result.Patterns.Trend)

	if len(result.Patterns.Streaks) > 0 {
		sb.WriteString("\nStreaks:\n")
		for _, s := range result.Patterns.Streaks {
			fmt.Fprintf(&sb, "• %s\n", s)
		}
	}

	return sb.String()
}
