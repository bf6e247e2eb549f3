package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gwind/medicoes/internal/domain/inventory"
	"github.com/gwind/medicoes/internal/syncer"
)

// maxErrorLines caps the error details repeated in a sync summary.
const maxErrorLines = 5

// NotifySync reports a finished cycle to the admin chat. Cycles that created
// nothing and had no errors are not reported.
func (b *Bot) NotifySync(_ context.Context, r syncer.Result) {
	if r.EventsCreated == 0 && r.Errors == 0 {
		return
	}
	b.send(b.adminChat, syncSummary(r))
}

// NotifyDepleted alerts the admin chat that a debit left a material without stock.
func (b *Bot) NotifyDepleted(ctx context.Context, mv inventory.Movement) {
	m, err := b.materials.GetByID(ctx, mv.MaterialID)
	if err != nil {
		b.log.Error("load depleted material", "err", err, "material_id", mv.MaterialID)
		return
	}
	text := fmt.Sprintf("Estoque esgotado: %s - %s.", m.CodeItem, m.Description)
	if mv.Applied < mv.Requested {
		text += fmt.Sprintf("\nSolicitado %s %s, debitado %s %s.",
			formatQty(mv.Requested), m.Unit, formatQty(mv.Applied), m.Unit)
	}
	b.send(b.adminChat, text)
}

func syncSummary(r syncer.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Sincronização Smartsheet\nLinhas: %d\nMedições criadas: %d\nDuplicadas: %d\nMateriais atualizados: %d",
		r.RowsProcessed, r.EventsCreated, r.Duplicates, r.MaterialsUpdated)
	if r.Errors > 0 {
		fmt.Fprintf(&sb, "\nErros: %d", r.Errors)
		for i, d := range r.ErrorDetails {
			if i == maxErrorLines {
				fmt.Fprintf(&sb, "\n… e mais %d", len(r.ErrorDetails)-maxErrorLines)
				break
			}
			sb.WriteString("\n- " + d)
		}
	}
	return sb.String()
}

func formatQty(v float64) string {
	return strings.Replace(strconv.FormatFloat(v, 'f', -1, 64), ".", ",", 1)
}
