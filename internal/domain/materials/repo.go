package materials

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

// ImportSummary counts the outcome of a bulk upsert.
type ImportSummary struct {
	Created int `json:"criados"`
	Updated int `json:"atualizados"`
	Skipped int `json:"ignorados"`
}

const materialColumns = `id, code_item, project, description, unit, initial_stock, current_stock,
	COALESCE(stock_code,''), COALESCE(stock_description,''), COALESCE(project_description,''),
	COALESCE(cost_center,''), unit_price, created_at, updated_at`

func scanMaterial(row pgx.Row) (*Material, error) {
	var m Material
	if err := row.Scan(
		&m.ID,
		&m.CodeItem,
		&m.Project,
		&m.Description,
		&m.Unit,
		&m.InitialStock,
		&m.CurrentStock,
		&m.StockCode,
		&m.StockDescription,
		&m.ProjectDescription,
		&m.CostCenter,
		&m.UnitPrice,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &m, nil
}

// upsertSQL inserts by natural key. On conflict the initial stock is replaced
// and the current stock recomputed from the movements already applied, so
// current = max(initial - applied, 0) keeps holding.
const upsertSQL = `
	INSERT INTO materials (code_item, project, description, unit, initial_stock, current_stock,
		stock_code, stock_description, project_description, cost_center, unit_price)
	VALUES ($1,$2,$3,$4,$5,GREATEST($5,0),$6,$7,$8,$9,$10)
	ON CONFLICT ON CONSTRAINT materials_natural_key DO UPDATE SET
		description         = EXCLUDED.description,
		unit                = EXCLUDED.unit,
		initial_stock       = EXCLUDED.initial_stock,
		current_stock       = GREATEST(EXCLUDED.initial_stock - COALESCE(
			(SELECT SUM(sm.applied) FROM stock_movements sm WHERE sm.material_id = materials.id), 0), 0),
		stock_code          = EXCLUDED.stock_code,
		stock_description   = EXCLUDED.stock_description,
		project_description = EXCLUDED.project_description,
		cost_center         = EXCLUDED.cost_center,
		unit_price          = EXCLUDED.unit_price,
		updated_at          = now()
	RETURNING ` + materialColumns + `, (xmax = 0)`

func upsertArgs(it Item) []any {
	return []any{
		strings.TrimSpace(it.CodeItem),
		nullable(it.Project),
		strings.TrimSpace(it.Description),
		strings.TrimSpace(it.Unit),
		it.InitialStock,
		nullable(it.StockCode),
		nullable(it.StockDescription),
		nullable(it.ProjectDescription),
		nullable(it.CostCenter),
		it.UnitPrice,
	}
}

// Upsert creates or updates one material by (code, project).
func (r *Repo) Upsert(ctx context.Context, it Item) (*Material, error) {
	if !it.Valid() {
		return nil, fmt.Errorf("materials.Repo.Upsert: %w", ErrInvalid)
	}
	m, _, err := upsertOne(ctx, r.pool, it)
	if err != nil {
		return nil, fmt.Errorf("materials.Repo.Upsert: %w", err)
	}
	return m, nil
}

// UpsertMany upserts all valid items in one transaction; invalid ones are skipped.
func (r *Repo) UpsertMany(ctx context.Context, items []Item) (ImportSummary, error) {
	const op = "materials.Repo.UpsertMany"

	var sum ImportSummary
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return sum, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, it := range items {
		if !it.Valid() {
			sum.Skipped++
			continue
		}
		_, created, err := upsertOne(ctx, tx, it)
		if err != nil {
			return ImportSummary{}, fmt.Errorf("%s: %q: %w", op, it.CodeItem, err)
		}
		if created {
			sum.Created++
		} else {
			sum.Updated++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return ImportSummary{}, fmt.Errorf("%s: %w", op, err)
	}
	return sum, nil
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func upsertOne(ctx context.Context, q queryRower, it Item) (*Material, bool, error) {
	var (
		m       Material
		created bool
	)
	err := q.QueryRow(ctx, upsertSQL, upsertArgs(it)...).Scan(
		&m.ID, &m.CodeItem, &m.Project, &m.Description, &m.Unit, &m.InitialStock, &m.CurrentStock,
		&m.StockCode, &m.StockDescription, &m.ProjectDescription, &m.CostCenter, &m.UnitPrice,
		&m.CreatedAt, &m.UpdatedAt, &created,
	)
	if err != nil {
		return nil, false, err
	}
	return &m, created, nil
}

func (r *Repo) List(ctx context.Context) ([]Material, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+materialColumns+`
		FROM materials
		ORDER BY description, code_item
	`)
	if err != nil {
		return nil, fmt.Errorf("materials.Repo.List: %w", err)
	}
	defer rows.Close()

	out := []Material{}
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Material, error) {
	m, err := scanMaterial(r.pool.QueryRow(ctx, `
		SELECT `+materialColumns+` FROM materials WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return m, err
}

// FindByCode looks a material up by code, preferring the one of project, then
// one without project, then any other. ErrNotFound when none has the code.
func (r *Repo) FindByCode(ctx context.Context, code, project string) (*Material, error) {
	m, err := scanMaterial(r.pool.QueryRow(ctx, `
		SELECT `+materialColumns+`
		FROM materials
		WHERE upper(code_item) = upper($1)
		ORDER BY (project IS NOT DISTINCT FROM $2) DESC, (project IS NULL) DESC, id
		LIMIT 1
	`, strings.TrimSpace(code), nullable(project)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return m, err
}

// Search returns materials whose code or description contains term.
func (r *Repo) Search(ctx context.Context, term string, limit int) ([]Material, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+materialColumns+`
		FROM materials
		WHERE code_item ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%'
		ORDER BY (upper(code_item) = upper($1)) DESC, code_item
		LIMIT $2
	`, strings.TrimSpace(term), limit)
	if err != nil {
		return nil, fmt.Errorf("materials.Repo.Search: %w", err)
	}
	defer rows.Close()

	var out []Material
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// Delete removes a material and, by cascade, its events and movements.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM materials WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("materials.Repo.Delete: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll wipes every event first (including those without material),
// then every material.
func (r *Repo) DeleteAll(ctx context.Context) (events, mats int64, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ct, err := tx.Exec(ctx, `DELETE FROM consumption_events`)
	if err != nil {
		return 0, 0, fmt.Errorf("materials.Repo.DeleteAll: events: %w", err)
	}
	events = ct.RowsAffected()

	ct, err = tx.Exec(ctx, `DELETE FROM materials`)
	if err != nil {
		return 0, 0, fmt.Errorf("materials.Repo.DeleteAll: materials: %w", err)
	}
	mats = ct.RowsAffected()

	return events, mats, tx.Commit(ctx)
}

// Projects returns the distinct non-empty projects of the catalog.
func (r *Repo) Projects(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT project FROM materials WHERE project IS NOT NULL AND project <> '' ORDER BY 1
	`)
	if err != nil {
		return nil, fmt.Errorf("materials.Repo.Projects: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func nullable(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
