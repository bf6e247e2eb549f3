package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/gwind/medicoes/internal/syncer"
)

const searchLimit = 10

const helpText = `Comandos:
/sync - sincroniza a planilha de medições agora
/estoque <código ou descrição> - saldo atual do material`

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	switch msg.Command() {
	case "start", "ajuda", "help":
		b.send(chatID, helpText)
	case "sync":
		b.cmdSync(ctx, chatID)
	case "estoque":
		b.cmdStock(ctx, chatID, msg.CommandArguments())
	default:
		b.send(chatID, "Comando desconhecido.\n\n"+helpText)
	}
}

func (b *Bot) cmdSync(ctx context.Context, chatID int64) {
	res, err := b.sync.Run(ctx)
	switch {
	case errors.Is(err, syncer.ErrBusy):
		b.send(chatID, "Sincronização já em andamento.")
	case errors.Is(err, syncer.ErrNotConfigured):
		b.send(chatID, "Smartsheet não configurado.")
	case err != nil:
		b.log.Error("manual sync failed", "err", err)
		b.send(chatID, "Falha na sincronização: "+err.Error())
	default:
		b.send(chatID, syncSummary(res))
	}
}

func (b *Bot) cmdStock(ctx context.Context, chatID int64, term string) {
	term = strings.TrimSpace(term)
	if term == "" {
		b.send(chatID, "Uso: /estoque <código ou descrição>")
		return
	}
	list, err := b.materials.Search(ctx, term, searchLimit)
	if err != nil {
		b.log.Error("stock search failed", "err", err, "term", term)
		b.send(chatID, "Erro ao consultar o estoque.")
		return
	}
	if len(list) == 0 {
		b.send(chatID, fmt.Sprintf("Nenhum material encontrado para %q.", term))
		return
	}

	var sb strings.Builder
	for _, m := range list {
		fmt.Fprintf(&sb, "%s - %s: %s %s", m.CodeItem, m.Description, formatQty(m.CurrentStock), m.Unit)
		if m.Project != nil {
			fmt.Fprintf(&sb, " (projeto %s)", *m.Project)
		}
		sb.WriteByte('\n')
	}
	b.send(chatID, strings.TrimSpace(sb.String()))
}
