package consumption

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const DefaultLimit = 500

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// DB is satisfied by *pgxpool.Pool and pgx.Tx, so event writes can join a
// ledger transaction.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Insert stores ev and fills its ID and CreatedAt.
func Insert(ctx context.Context, db DB, ev *Event) error {
	const op = "consumption.Insert"

	q := psql.
		Insert("consumption_events").
		SetMap(eventRecord(ev)).
		Suffix("RETURNING id, created_at")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := db.QueryRow(ctx, sqlStr, args...).Scan(&ev.ID, &ev.CreatedAt); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SyncEventExists reports whether a synchronized event with key is stored.
// Empty key parts match NULL columns.
func SyncEventExists(ctx context.Context, db DB, key SyncKey) (bool, error) {
	const op = "consumption.SyncEventExists"

	q := psql.
		Select("1").
		From("consumption_events").
		Where(sq.Eq{
			"origin":      OriginSync,
			"material_id": key.MaterialID,
			"day":         nullable(key.Day),
			"start_time":  nullable(key.StartTime),
			"end_time":    nullable(key.EndTime),
			"project":     key.Project,
			"team":        nullable(key.Team),
		}).
		Limit(1)

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	var one int
	err = db.QueryRow(ctx, sqlStr, args...).Scan(&one)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, pgx.ErrNoRows):
		return false, nil
	default:
		return false, fmt.Errorf("%s: %w", op, err)
	}
}

type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

// List returns events newest first, joined with their material.
func (r *Repo) List(ctx context.Context, f Filter) ([]Listed, error) {
	const op = "consumption.Repo.List"

	if f.Limit == 0 {
		f.Limit = DefaultLimit
	}

	cols := append([]string{
		"COALESCE(m.code_item,'')",
		"COALESCE(m.description,'')",
		"COALESCE(m.unit,'')",
	}, eventColumns...)

	q := psql.
		Select(cols...).
		From("consumption_events e").
		LeftJoin("materials m ON m.id = e.material_id").
		OrderBy("e.created_at DESC", "e.id DESC").
		Limit(f.Limit).
		Offset(f.Offset)
	if f.Project != "" {
		q = q.Where(sq.Eq{"e.project": f.Project})
	}
	if f.MaterialID != 0 {
		q = q.Where(sq.Eq{"e.material_id": f.MaterialID})
	}

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []Listed
	for rows.Next() {
		var l Listed
		dest := append([]any{&l.MaterialCode, &l.MaterialDescription, &l.MaterialUnit}, l.Event.dest()...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// Projects returns the distinct project names seen in events.
func (r *Repo) Projects(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "project")
}

// Clients returns the distinct client names seen in events.
func (r *Repo) Clients(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "client")
}

func (r *Repo) distinct(ctx context.Context, column string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT `+column+`
		FROM consumption_events
		WHERE `+column+` IS NOT NULL AND `+column+` <> ''
		ORDER BY 1
	`)
	if err != nil {
		return nil, fmt.Errorf("consumption.Repo.distinct %s: %w", column, err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

var eventColumns = []string{
	"e.id", "e.material_id", "e.quantity", "e.project", "e.origin", "COALESCE(e.user_id,'')", "e.created_at",
	"COALESCE(e.day,'')", "COALESCE(e.week,'')", "COALESCE(e.start_time,'')", "COALESCE(e.end_time,'')",
	"COALESCE(e.client,'')", "COALESCE(e.shift,'')", "COALESCE(e.team,'')", "COALESCE(e.supervisor,'')",
	"COALESCE(e.lead_technician,'')", "e.technicians_count", "COALESCE(e.technician_names,'')",
	"COALESCE(e.interval_type,'')", "COALESCE(e.access_type,'')", "COALESCE(e.blade,'')",
	"COALESCE(e.tower,'')", "COALESCE(e.platform,'')", "COALESCE(e.hour_type,'')", "e.events_count",
	"COALESCE(e.damage_type,'')", "COALESCE(e.damage_code,'')", "e.damage_width_mm", "e.damage_length_mm",
	"COALESCE(e.process_step,'')", "COALESCE(e.sanding_step,'')",
	"COALESCE(e.resin_type,'')", "e.resin_quantity", "COALESCE(e.resin_catalyst,'')", "COALESCE(e.resin_batch,'')", "COALESCE(e.resin_expiry,'')",
	"COALESCE(e.mass_type,'')", "e.mass_quantity", "COALESCE(e.mass_catalyst,'')", "COALESCE(e.mass_batch,'')", "COALESCE(e.mass_expiry,'')",
	"COALESCE(e.core_type,'')", "e.core_thickness_mm", "e.core_quantity",
	"COALESCE(e.pu_type,'')", "e.pu_weight", "e.pu_catalyst_weight", "COALESCE(e.pu_batch,'')", "COALESCE(e.pu_expiry,'')",
	"COALESCE(e.gel_type,'')", "e.gel_weight", "e.gel_catalyst_weight", "COALESCE(e.gel_batch,'')", "COALESCE(e.gel_expiry,'')",
	"e.rework",
}

// dest must stay aligned with eventColumns.
func (e *Event) dest() []any {
	a := &e.Attributes
	return []any{
		&e.ID, &e.MaterialID, &e.Quantity, &e.Project, &e.Origin, &e.UserID, &e.CreatedAt,
		&a.Day, &a.Week, &a.StartTime, &a.EndTime,
		&a.Client, &a.Shift, &a.Team, &a.Supervisor,
		&a.LeadTechnician, &a.TechniciansCount, &a.TechnicianNames,
		&a.IntervalType, &a.AccessType, &a.Blade,
		&a.Tower, &a.Platform, &a.HourType, &a.EventsCount,
		&a.DamageType, &a.DamageCode, &a.DamageWidthMM, &a.DamageLengthMM,
		&a.ProcessStep, &a.SandingStep,
		&a.Resin.Type, &a.Resin.Quantity, &a.Resin.Catalyst, &a.Resin.Batch, &a.Resin.Expiry,
		&a.Mass.Type, &a.Mass.Quantity, &a.Mass.Catalyst, &a.Mass.Batch, &a.Mass.Expiry,
		&a.Core.Type, &a.Core.ThicknessMM, &a.Core.Quantity,
		&a.PU.Type, &a.PU.Quantity, &a.PU.CatalystWeight, &a.PU.Batch, &a.PU.Expiry,
		&a.Gel.Type, &a.Gel.Quantity, &a.Gel.CatalystWeight, &a.Gel.Batch, &a.Gel.Expiry,
		&a.Rework,
	}
}

func eventRecord(e *Event) map[string]any {
	a := e.Attributes
	return map[string]any{
		"material_id": e.MaterialID,
		"quantity":    e.Quantity,
		"project":     e.Project,
		"origin":      string(e.Origin),
		"user_id":     nullable(e.UserID),

		"day":        nullable(a.Day),
		"week":       nullable(a.Week),
		"start_time": nullable(a.StartTime),
		"end_time":   nullable(a.EndTime),

		"client":            nullable(a.Client),
		"shift":             nullable(a.Shift),
		"team":              nullable(a.Team),
		"supervisor":        nullable(a.Supervisor),
		"lead_technician":   nullable(a.LeadTechnician),
		"technicians_count": a.TechniciansCount,
		"technician_names":  nullable(a.TechnicianNames),
		"interval_type":     nullable(a.IntervalType),
		"access_type":       nullable(a.AccessType),
		"blade":             nullable(a.Blade),
		"tower":             nullable(a.Tower),
		"platform":          nullable(a.Platform),
		"hour_type":         nullable(a.HourType),
		"events_count":      a.EventsCount,

		"damage_type":      nullable(a.DamageType),
		"damage_code":      nullable(a.DamageCode),
		"damage_width_mm":  a.DamageWidthMM,
		"damage_length_mm": a.DamageLengthMM,
		"process_step":     nullable(a.ProcessStep),
		"sanding_step":     nullable(a.SandingStep),

		"resin_type":     nullable(a.Resin.Type),
		"resin_quantity": a.Resin.Quantity,
		"resin_catalyst": nullable(a.Resin.Catalyst),
		"resin_batch":    nullable(a.Resin.Batch),
		"resin_expiry":   nullable(a.Resin.Expiry),

		"mass_type":     nullable(a.Mass.Type),
		"mass_quantity": a.Mass.Quantity,
		"mass_catalyst": nullable(a.Mass.Catalyst),
		"mass_batch":    nullable(a.Mass.Batch),
		"mass_expiry":   nullable(a.Mass.Expiry),

		"core_type":         nullable(a.Core.Type),
		"core_thickness_mm": a.Core.ThicknessMM,
		"core_quantity":     a.Core.Quantity,

		"pu_type":            nullable(a.PU.Type),
		"pu_weight":          a.PU.Quantity,
		"pu_catalyst_weight": a.PU.CatalystWeight,
		"pu_batch":           nullable(a.PU.Batch),
		"pu_expiry":          nullable(a.PU.Expiry),

		"gel_type":            nullable(a.Gel.Type),
		"gel_weight":          a.Gel.Quantity,
		"gel_catalyst_weight": a.Gel.CatalystWeight,
		"gel_batch":           nullable(a.Gel.Batch),
		"gel_expiry":          nullable(a.Gel.Expiry),

		"rework": a.Rework,
	}
}

func nullable(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
