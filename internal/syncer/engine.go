// Package syncer ingests rows of the measurements sheet as consumption events.
// At most one cycle runs at a time; a trigger that arrives while a cycle is in
// flight is dropped, not queued.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gwind/medicoes/internal/domain/consumption"
	"github.com/gwind/medicoes/internal/domain/inventory"
	"github.com/gwind/medicoes/internal/domain/materials"
	"github.com/gwind/medicoes/internal/infra/metrics"
	"github.com/gwind/medicoes/internal/measurement"
	"github.com/gwind/medicoes/internal/sheet"
)

var (
	ErrBusy          = errors.New("synchronization already in progress")
	ErrNotConfigured = errors.New("smartsheet token or measurements sheet id not configured")
)

type SheetReader interface {
	Configured() bool
	GetSheet(ctx context.Context, sheetID string) (*sheet.Sheet, error)
}

type Catalog interface {
	List(ctx context.Context) ([]materials.Material, error)
}

type Ledger interface {
	ApplyOnce(ctx context.Context, ev *consumption.Event) (inventory.Outcome, error)
}

type State int32

const (
	Idle State = iota
	Fetching
	Mapping
	Resolving
	Ingesting
)

func (s State) String() string {
	switch s {
	case Fetching:
		return "fetching"
	case Mapping:
		return "mapping"
	case Resolving:
		return "resolving_materials"
	case Ingesting:
		return "ingesting"
	default:
		return "idle"
	}
}

// Result of one cycle.
type Result struct {
	RowsProcessed    int       `json:"linhasProcessadas"`
	MaterialsUpdated int       `json:"materiaisAtualizados"`
	EventsCreated    int       `json:"medicoesCriadas"`
	Duplicates       int       `json:"duplicadas"`
	Errors           int       `json:"erros"`
	ErrorDetails     []string  `json:"detalhesErros"`
	StartedAt        time.Time `json:"inicio"`
	FinishedAt       time.Time `json:"fim"`
}

func (r *Result) softError(format string, args ...any) {
	r.Errors++
	r.ErrorDetails = append(r.ErrorDetails, fmt.Sprintf(format, args...))
	metrics.SyncErrors.Inc()
}

// Status is a snapshot for the status endpoint.
type Status struct {
	State     string  `json:"estado"`
	Running   bool    `json:"emExecucao"`
	Last      *Result `json:"ultimoResultado,omitempty"`
	LastError string  `json:"ultimoErro,omitempty"`
}

type Engine struct {
	reader  SheetReader
	catalog Catalog
	ledger  Ledger
	sheetID string
	log     *slog.Logger

	running atomic.Bool
	state   atomic.Int32

	mu       sync.Mutex
	last     *Result
	lastErr  error
	onResult func(ctx context.Context, r Result)
}

func NewEngine(reader SheetReader, catalog Catalog, ledger Ledger, sheetID string, log *slog.Logger) *Engine {
	return &Engine{
		reader:  reader,
		catalog: catalog,
		ledger:  ledger,
		sheetID: sheetID,
		log:     log.With("component", "syncer"),
	}
}

// OnResult registers fn to receive the result of every finished cycle.
func (e *Engine) OnResult(fn func(ctx context.Context, r Result)) {
	e.onResult = fn
}

func (e *Engine) State() State { return State(e.state.Load()) }

func (e *Engine) setState(s State) { e.state.Store(int32(s)) }

func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := Status{State: e.State().String(), Running: e.running.Load()}
	if e.last != nil {
		r := *e.last
		st.Last = &r
	}
	if e.lastErr != nil {
		st.LastError = e.lastErr.Error()
	}
	return st
}

// Run executes one cycle. It returns ErrBusy without doing anything when
// another cycle is in flight, and ErrNotConfigured without calling the API
// when credentials are missing. A failed fetch aborts the cycle; unmatched
// materials and failed inserts are soft errors listed in the result.
func (e *Engine) Run(ctx context.Context) (Result, error) {
	if !e.running.CompareAndSwap(false, true) {
		metrics.SyncSkipped.Inc()
		return Result{}, ErrBusy
	}
	defer func() {
		e.setState(Idle)
		e.running.Store(false)
	}()

	res := Result{StartedAt: time.Now()}
	err := e.run(ctx, &res)
	res.FinishedAt = time.Now()
	metrics.SyncDuration.Observe(res.FinishedAt.Sub(res.StartedAt).Seconds())

	e.mu.Lock()
	e.lastErr = err
	if err == nil {
		e.last = &res
	}
	e.mu.Unlock()

	switch {
	case errors.Is(err, ErrNotConfigured):
		metrics.SyncRuns.WithLabelValues("not_configured").Inc()
		e.log.Info("sync skipped: smartsheet not configured")
		return res, err
	case err != nil:
		metrics.SyncRuns.WithLabelValues("failed").Inc()
		e.log.Error("sync failed", "err", err)
		return res, err
	case res.Errors > 0:
		metrics.SyncRuns.WithLabelValues("partial").Inc()
	default:
		metrics.SyncRuns.WithLabelValues("ok").Inc()
	}

	e.log.Info("sync finished",
		"rows", res.RowsProcessed,
		"created", res.EventsCreated,
		"duplicates", res.Duplicates,
		"materials", res.MaterialsUpdated,
		"errors", res.Errors,
		"took", res.FinishedAt.Sub(res.StartedAt),
	)
	if e.onResult != nil {
		e.onResult(ctx, res)
	}
	return res, nil
}

type pending struct {
	record *measurement.Record
	usage  measurement.Usage
	mat    materials.Material
}

func (e *Engine) run(ctx context.Context, res *Result) error {
	if e.sheetID == "" || !e.reader.Configured() {
		return ErrNotConfigured
	}

	e.setState(Fetching)
	sh, err := e.reader.GetSheet(ctx, e.sheetID)
	if err != nil {
		return fmt.Errorf("fetch sheet: %w", err)
	}

	e.setState(Mapping)
	records := mapRows(sh)
	res.RowsProcessed = len(records)

	e.setState(Resolving)
	list, err := e.catalog.List(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	ix := materials.NewIndex(list)

	var work []pending
	for _, rec := range records {
		for _, u := range rec.Usages {
			m, stage, ok := ix.Find(u.Material, rec.Project)
			if !ok {
				e.log.Warn("material not found", "row_id", rec.RowID, "category", u.Category, "material", u.Material)
				res.softError("linha %d: material %q (%s) não encontrado", rec.RowID, u.Material, u.Category)
				continue
			}
			if stage != materials.ByCode {
				e.log.Debug("material matched by fallback", "material", u.Material, "code_item", m.CodeItem, "stage", stage)
			}
			work = append(work, pending{record: rec, usage: u, mat: *m})
		}
	}

	e.setState(Ingesting)
	touched := make(map[int64]struct{})
	for _, w := range work {
		if err := ctx.Err(); err != nil {
			return err
		}
		out, err := e.ledger.ApplyOnce(ctx, w.record.Event(w.usage, w.mat.ID))
		if err != nil {
			e.log.Warn("ingest failed", "row_id", w.record.RowID, "code_item", w.mat.CodeItem, "err", err)
			res.softError("linha %d: %s: %v", w.record.RowID, w.mat.CodeItem, err)
			continue
		}
		if !out.Created {
			res.Duplicates++
			continue
		}
		res.EventsCreated++
		metrics.SyncEventsIngested.Inc()
		if out.Movement != nil && out.Movement.Applied > 0 {
			touched[w.mat.ID] = struct{}{}
		}
	}
	res.MaterialsUpdated = len(touched)
	return nil
}

func mapRows(sh *sheet.Sheet) []*measurement.Record {
	res := sheet.Resolve(sh.Columns, measurement.Rules)
	var out []*measurement.Record
	for _, row := range sh.Rows {
		if rec, ok := measurement.MapRow(row, res); ok {
			out = append(out, rec)
		}
	}
	return out
}

// Preview fetches and maps the sheet without writing anything.
func (e *Engine) Preview(ctx context.Context) ([]*measurement.Record, error) {
	if e.sheetID == "" || !e.reader.Configured() {
		return nil, ErrNotConfigured
	}
	sh, err := e.reader.GetSheet(ctx, e.sheetID)
	if err != nil {
		return nil, fmt.Errorf("syncer.Preview: %w", err)
	}
	return mapRows(sh), nil
}

// ColumnReport describes how the resolver sees the measurements sheet.
type ColumnReport struct {
	Columns  []sheet.Column          `json:"colunas"`
	Resolved map[sheet.Field]Resolved `json:"mapeamento"`
}

type Resolved struct {
	ColumnID int64  `json:"columnId"`
	Title    string `json:"titulo"`
	Stage    string `json:"criterio"`
}

func (e *Engine) Columns(ctx context.Context) (*ColumnReport, error) {
	if e.sheetID == "" || !e.reader.Configured() {
		return nil, ErrNotConfigured
	}
	sh, err := e.reader.GetSheet(ctx, e.sheetID)
	if err != nil {
		return nil, fmt.Errorf("syncer.Columns: %w", err)
	}
	rep := &ColumnReport{Columns: sh.Columns, Resolved: make(map[sheet.Field]Resolved)}
	for f, m := range sheet.Resolve(sh.Columns, measurement.Rules) {
		rep.Resolved[f] = Resolved{ColumnID: m.Column.ID, Title: m.Column.Title, Stage: m.Stage}
	}
	return rep, nil
}
