package notify

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/pagoa/brewops/internal/infra/metrics"
)

// Telegram pushes low-stock alerts to the admin chat. Delivery is best
// effort: a failed send is logged and dropped, never returned to the
// workflow that triggered it.
type Telegram struct {
	api    *tgbotapi.BotAPI
	chatID int64
	log    *slog.Logger
}

// NewTelegram returns nil when no token is configured; callers treat a
// nil notifier as "alerting disabled".
func NewTelegram(token string, chatID int64, log *slog.Logger) (*Telegram, error) {
	if token == "" || chatID == 0 {
		return nil, nil
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram init: %w", err)
	}
	return &Telegram{api: api, chatID: chatID, log: log}, nil
}

func (t *Telegram) LowStock(_ context.Context, name string, stock, reorderPoint float64, unit string) {
	text := fmt.Sprintf(
		"⚠️ Low stock: %s\nRemaining: %.2f %s (reorder point %.2f %s)",
		name, stock, unit, reorderPoint, unit,
	)
	if _, err := t.api.Send(tgbotapi.NewMessage(t.chatID, text)); err != nil {
		t.log.Warn("low-stock alert failed", "material", name, "err", err)
		return
	}
	metrics.LowStockAlertsTotal.Inc()
}
