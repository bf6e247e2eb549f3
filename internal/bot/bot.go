// Package bot is the Telegram side of the service: sync summaries and
// stock-exhausted alerts go to the admin chat, and the admin chat can ask
// for a sync or for the stock of an item.
package bot

import (
	"context"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/gwind/medicoes/internal/domain/materials"
	"github.com/gwind/medicoes/internal/syncer"
)

// API is the part of *tgbotapi.BotAPI the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
}

type Materials interface {
	GetByID(ctx context.Context, id int64) (*materials.Material, error)
	Search(ctx context.Context, term string, limit int) ([]materials.Material, error)
}

type Syncer interface {
	Run(ctx context.Context) (syncer.Result, error)
}

type Bot struct {
	api       API
	log       *slog.Logger
	adminChat int64
	materials Materials
	sync      Syncer
}

func New(api API, log *slog.Logger, adminChatID int64, materialsRepo Materials, sync Syncer) *Bot {
	return &Bot{
		api:       api,
		log:       log.With("component", "bot"),
		adminChat: adminChatID,
		materials: materialsRepo,
		sync:      sync,
	}
}

func (b *Bot) Run(ctx context.Context, timeoutSec int) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeoutSec
	updates := b.api.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			if upd.Message != nil {
				b.onMessage(ctx, upd.Message)
			}
		}
	}
}

func (b *Bot) send(chatID int64, text string) {
	if chatID == 0 {
		return
	}
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Error("send failed", "err", err)
	}
}

func (b *Bot) onMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat == nil || msg.Chat.ID != b.adminChat || !msg.IsCommand() {
		return
	}
	b.handleCommand(ctx, msg)
}
