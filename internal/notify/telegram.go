// Package notify announces jackpot wins to a Telegram chat.
package notify

import (
	"context"
	"fmt"

	"UD_loyalty_hook/internal/model"
	"UD_loyalty_hook/pkg/logger"
	"UD_loyalty_hook/pkg/units"
	"go.uber.org/zap"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const queueSize = 64

type Config struct {
	BotToken string `yaml:"botToken"`
	ChatID   int64  `yaml:"chatID"`
	Debug    bool   `yaml:"debug"`
}

// Sender is the part of the bot API the announcer uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type JackpotAnnouncer struct {
	bot    Sender
	chatID int64
	queue  chan *model.EventRecord
}

func NewTelegramAnnouncer(config Config) (*JackpotAnnouncer, error) {
	bot, err := tgbotapi.NewBotAPI(config.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize bot: %w", err)
	}

	bot.Debug = config.Debug

	return NewJackpotAnnouncer(bot, config.ChatID), nil
}

func NewJackpotAnnouncer(bot Sender, chatID int64) *JackpotAnnouncer {
	return &JackpotAnnouncer{
		bot:    bot,
		chatID: chatID,
		queue:  make(chan *model.EventRecord, queueSize),
	}
}

// Publish queues winning events. Other events are ignored, and a full queue
// drops the announcement rather than stall event processing.
func (a *JackpotAnnouncer) Publish(rec *model.EventRecord) {
	if !rec.Outcome.WonJackpot() {
		return
	}

	select {
	case a.queue <- rec:
	default:
		logger.Logger().Warn("jackpot announcement dropped", zap.String("event_id", rec.EventID.String()))
	}
}

func (a *JackpotAnnouncer) Run(ctx context.Context) {
	log := logger.Logger()

	for {
		select {
		case rec := <-a.queue:
			if err := a.announce(rec); err != nil {
				log.Error("failed to announce jackpot win", zap.Error(err))
			}

		case <-ctx.Done():
			return
		}
	}
}

func (a *JackpotAnnouncer) announce(rec *model.EventRecord) error {
	msg := tgbotapi.NewMessage(a.chatID, FormatWin(rec.Outcome))
	_, err := a.bot.Send(msg)
	return err
}

func FormatWin(o *model.Outcome) string {
	return fmt.Sprintf("Jackpot won at block %d!\n%s takes %s points on a %s %s.",
		o.Block,
		o.User.Hex(),
		units.FormatWei(o.JackpotWon),
		units.FormatWei(o.EthAmount),
		o.Kind,
	)
}
