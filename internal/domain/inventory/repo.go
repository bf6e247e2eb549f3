package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gwind/medicoes/internal/domain/consumption"
	"github.com/gwind/medicoes/internal/domain/materials"
)

// Repo is the Postgres Store of the ledger.
type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) InTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(pgTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Movements returns the audit trail of a material, oldest first.
func (r *Repo) Movements(ctx context.Context, materialID int64) ([]Movement, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, material_id, event_id, requested, applied, stock_before, stock_after, created_at
		FROM stock_movements
		WHERE material_id = $1
		ORDER BY id
	`, materialID)
	if err != nil {
		return nil, fmt.Errorf("inventory.Repo.Movements: %w", err)
	}
	defer rows.Close()

	var out []Movement
	for rows.Next() {
		var m Movement
		if err := rows.Scan(&m.ID, &m.MaterialID, &m.EventID, &m.Requested, &m.Applied, &m.StockBefore, &m.StockAfter, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

type pgTx struct{ tx pgx.Tx }

func (t pgTx) LockStock(ctx context.Context, materialID int64) (float64, error) {
	var stock float64
	err := t.tx.QueryRow(ctx, `
		SELECT current_stock FROM materials WHERE id = $1 FOR UPDATE
	`, materialID).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, materials.ErrNotFound
	}
	return stock, err
}

func (t pgTx) SyncEventExists(ctx context.Context, key consumption.SyncKey) (bool, error) {
	return consumption.SyncEventExists(ctx, t.tx, key)
}

func (t pgTx) InsertEvent(ctx context.Context, ev *consumption.Event) error {
	return consumption.Insert(ctx, t.tx, ev)
}

func (t pgTx) SetStock(ctx context.Context, materialID int64, stock float64) error {
	ct, err := t.tx.Exec(ctx, `
		UPDATE materials SET current_stock = $2, updated_at = now() WHERE id = $1
	`, materialID, stock)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return materials.ErrNotFound
	}
	return nil
}

func (t pgTx) InsertMovement(ctx context.Context, mv *Movement) error {
	return t.tx.QueryRow(ctx, `
		INSERT INTO stock_movements (material_id, event_id, requested, applied, stock_before, stock_after)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, created_at
	`, mv.MaterialID, mv.EventID, mv.Requested, mv.Applied, mv.StockBefore, mv.StockAfter).
		Scan(&mv.ID, &mv.CreatedAt)
}
