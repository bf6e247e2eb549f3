package inventory

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gwind/medicoes/internal/domain/consumption"
)

// Store runs fn inside one storage transaction. Any error returned by fn, or
// by the commit, leaves storage untouched.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

type Tx interface {
	// LockStock locks the material row until the end of the transaction and
	// returns its current stock. materials.ErrNotFound when it does not exist.
	LockStock(ctx context.Context, materialID int64) (float64, error)
	SyncEventExists(ctx context.Context, key consumption.SyncKey) (bool, error)
	InsertEvent(ctx context.Context, ev *consumption.Event) error
	SetStock(ctx context.Context, materialID int64, stock float64) error
	InsertMovement(ctx context.Context, mv *Movement) error
}

// Outcome of a ledger call. Movement is nil when nothing was debited.
type Outcome struct {
	Event    *consumption.Event
	Created  bool
	Movement *Movement
}

// Ledger creates consumption events and debits stock in the same transaction.
type Ledger struct {
	store    Store
	log      *slog.Logger
	depleted func(ctx context.Context, mv Movement)
}

func NewLedger(store Store, log *slog.Logger) *Ledger {
	return &Ledger{store: store, log: log.With("component", "ledger")}
}

// OnDepleted registers fn to be called after a committed debit leaves a
// material at or below zero.
func (l *Ledger) OnDepleted(fn func(ctx context.Context, mv Movement)) {
	l.depleted = fn
}

// Apply stores ev and debits its material. ev.ID and ev.CreatedAt are filled in.
func (l *Ledger) Apply(ctx context.Context, ev *consumption.Event) (Outcome, error) {
	return l.apply(ctx, ev, false)
}

// ApplyOnce is Apply for synchronized events: when an event with the same
// sync key already exists nothing is written and Created is false.
func (l *Ledger) ApplyOnce(ctx context.Context, ev *consumption.Event) (Outcome, error) {
	return l.apply(ctx, ev, true)
}

func (l *Ledger) apply(ctx context.Context, ev *consumption.Event, once bool) (Outcome, error) {
	const op = "inventory.Ledger.Apply"

	out := Outcome{Event: ev}
	err := l.store.InTx(ctx, func(tx Tx) error {
		var stock float64
		if ev.MaterialID != nil {
			s, err := tx.LockStock(ctx, *ev.MaterialID)
			if err != nil {
				return err
			}
			stock = s
		}

		// Checked after the lock so two concurrent runs cannot both miss.
		if once {
			exists, err := tx.SyncEventExists(ctx, ev.SyncKey())
			if err != nil {
				return err
			}
			if exists {
				return nil
			}
		}

		if err := tx.InsertEvent(ctx, ev); err != nil {
			return err
		}
		out.Created = true

		if ev.MaterialID == nil || ev.Quantity <= 0 {
			return nil
		}
		applied, next := Debit(stock, ev.Quantity)
		if err := tx.SetStock(ctx, *ev.MaterialID, next); err != nil {
			return err
		}
		mv := &Movement{
			MaterialID:  *ev.MaterialID,
			EventID:     ev.ID,
			Requested:   ev.Quantity,
			Applied:     applied,
			StockBefore: stock,
			StockAfter:  next,
		}
		if err := tx.InsertMovement(ctx, mv); err != nil {
			return err
		}
		out.Movement = mv
		return nil
	})
	if err != nil {
		// the insert was rolled back with everything else
		ev.ID = 0
		return Outcome{}, fmt.Errorf("%s: %w", op, err)
	}

	if mv := out.Movement; mv != nil {
		if mv.Applied < mv.Requested {
			l.log.Warn("debit floored at zero",
				"material_id", mv.MaterialID,
				"event_id", mv.EventID,
				"requested", mv.Requested,
				"applied", mv.Applied,
			)
		}
		if mv.Depleted() && l.depleted != nil {
			l.depleted(ctx, *mv)
		}
	}
	return out, nil
}
