package syncer

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwind/medicoes/internal/domain/consumption"
	"github.com/gwind/medicoes/internal/domain/inventory"
	"github.com/gwind/medicoes/internal/domain/materials"
	"github.com/gwind/medicoes/internal/infra/logger"
	"github.com/gwind/medicoes/internal/measurement"
	"github.com/gwind/medicoes/internal/sheet"
)

type fakeReader struct {
	mu         sync.Mutex
	configured bool
	sheet      *sheet.Sheet
	err        error
	calls      atomic.Int32
	block      chan struct{}
	entered    chan struct{}
}

func (f *fakeReader) Configured() bool { return f.configured }

func (f *fakeReader) GetSheet(ctx context.Context, _ string) (*sheet.Sheet, error) {
	f.calls.Add(1)
	if f.block != nil {
		f.entered <- struct{}{}
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sheet, f.err
}

func (f *fakeReader) setRows(rows ...sheet.Row) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sheet = &sheet.Sheet{ID: 1, Columns: columns, Rows: rows}
}

type fakeCatalog struct{ items []materials.Material }

func (f fakeCatalog) List(context.Context) ([]materials.Material, error) { return f.items, nil }

var columns = []sheet.Column{
	{ID: 1, Index: 0, Title: "Dia", Type: sheet.TypeDate},
	{ID: 2, Index: 1, Title: "Hora de entrada"},
	{ID: 3, Index: 2, Title: "Hora de saída"},
	{ID: 4, Index: 3, Title: "Projeto"},
	{ID: 5, Index: 4, Title: "Equipe"},
	{ID: 6, Index: 5, Title: "Resina Tipo"},
	{ID: 7, Index: 6, Title: "Resina Qtd"},
	{ID: 8, Index: 7, Title: "Massa Tipo"},
	{ID: 9, Index: 8, Title: "Massa Qtd"},
}

func measurementRow(id int64, resin string, qty float64) sheet.Row {
	return sheet.Row{ID: id, Cells: []sheet.Cell{
		{ColumnID: 1, Value: sheet.StringVal("13/10/25")},
		{ColumnID: 2, Value: sheet.StringVal("07:00")},
		{ColumnID: 3, Value: sheet.StringVal("16:00")},
		{ColumnID: 4, Value: sheet.StringVal("P1")},
		{ColumnID: 5, Value: sheet.StringVal("Equipe A")},
		{ColumnID: 6, Value: sheet.StringVal(resin)},
		{ColumnID: 7, Value: sheet.NumberVal(qty)},
	}}
}

func strp(s string) *string { return &s }

func ptr[T any](v T) *T { return &v }

type env struct {
	engine *Engine
	reader *fakeReader
	store  *inventory.MemStore
}

func newEnv(t *testing.T) env {
	t.Helper()

	store := inventory.NewMemStore()
	store.SetMaterial(1, 100)
	store.SetMaterial(2, 50)
	catalog := fakeCatalog{items: []materials.Material{
		{ID: 1, CodeItem: "RES01", Project: strp("P1"), Description: "Resina epóxi", CurrentStock: 100},
		{ID: 2, CodeItem: "MAS-02", Description: "Massa de reparo", CurrentStock: 50},
	}}
	reader := &fakeReader{configured: true}
	ledger := inventory.NewLedger(store, logger.Discard())
	return env{
		engine: NewEngine(reader, catalog, ledger, "42", logger.Discard()),
		reader: reader,
		store:  store,
	}
}

func TestRunIngestsRows(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	row := measurementRow(10, "RES01", 30)
	row.Cells = append(row.Cells,
		sheet.Cell{ColumnID: 8, Value: sheet.StringVal("mas02")},
		sheet.Cell{ColumnID: 9, Value: sheet.StringVal("900g")},
	)
	e.reader.setRows(row, sheet.Row{ID: 11})

	res, err := e.engine.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, res.RowsProcessed, "blank row is discarded")
	assert.Equal(t, 2, res.EventsCreated)
	assert.Equal(t, 2, res.MaterialsUpdated)
	assert.Zero(t, res.Errors)
	assert.Equal(t, 70.0, e.store.Stock(1))
	assert.InDelta(t, 49.1, e.store.Stock(2), 1e-9)

	evs := e.store.Events()
	require.Len(t, evs, 2)
	assert.Equal(t, "2025-10-13", evs[0].Day)
	assert.Equal(t, "Equipe A", evs[0].Team)
}

func TestRunTwiceIsIdempotent(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.reader.setRows(measurementRow(10, "RES01", 30))

	first, err := e.engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.EventsCreated)

	second, err := e.engine.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, second.EventsCreated)
	assert.Equal(t, 1, second.Duplicates)
	assert.Zero(t, second.MaterialsUpdated)

	assert.Len(t, e.store.Events(), 1)
	assert.Len(t, e.store.Movements(), 1)
	assert.Equal(t, 70.0, e.store.Stock(1))
}

func TestRowsWithSameKeyCollapseAcrossRuns(t *testing.T) {
	t.Parallel()

	e := newEnv(t)

	e.reader.setRows(measurementRow(10, "RES01", 5))
	_, err := e.engine.Run(context.Background())
	require.NoError(t, err)

	// A different sheet row with the same day, times, project, team and resin.
	e.reader.setRows(measurementRow(10, "RES01", 5), measurementRow(11, "RES01", 5))
	res, err := e.engine.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.EventsCreated)
	assert.Equal(t, 2, res.Duplicates)

	assert.Len(t, e.store.Events(), 1)
	assert.Equal(t, 95.0, e.store.Stock(1))
}

func TestRunSkipsMirroredManualRows(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ledger := inventory.NewLedger(e.store, logger.Discard())

	ev := &consumption.Event{
		MaterialID: ptr(int64(1)),
		Quantity:   30,
		Project:    "P1",
		Origin:     consumption.OriginManual,
		Attributes: consumption.Attributes{Day: "2025-10-13", StartTime: "07:00", Team: "Equipe A"},
	}
	_, err := ledger.Apply(context.Background(), ev)
	require.NoError(t, err)
	require.Equal(t, 70.0, e.store.Stock(1))

	cols := append(append([]sheet.Column{}, columns...),
		sheet.Column{ID: 10, Index: 9, Title: "Código Item"},
		sheet.Column{ID: 11, Index: 10, Title: "Qtd Consumida"},
	)
	mat := &materials.Material{ID: 1, CodeItem: "RES01", Description: "Resina epóxi", Unit: "kg"}
	cells, err := measurement.NewBuilder(logger.Discard()).Build(ev, mat, sheet.Resolve(cols, measurement.Rules))
	require.NoError(t, err)

	mirrored := sheet.Row{ID: 20}
	for _, c := range cells {
		mirrored.Cells = append(mirrored.Cells, sheet.Cell{ColumnID: c.ColumnID, Value: c.Value})
	}
	e.reader.sheet = &sheet.Sheet{ID: 1, Columns: cols, Rows: []sheet.Row{mirrored}}

	res, err := e.engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.RowsProcessed)
	assert.Zero(t, res.EventsCreated)
	assert.Zero(t, res.Errors)
	assert.Equal(t, 70.0, e.store.Stock(1))
	assert.Len(t, e.store.Events(), 1)
	assert.Len(t, e.store.Movements(), 1)
}

func TestRunRowWithoutProject(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	row := measurementRow(10, "MAS-02", 5)
	row.Cells = slices.DeleteFunc(row.Cells, func(c sheet.Cell) bool { return c.ColumnID == 4 })
	e.reader.setRows(row)

	res, err := e.engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.EventsCreated)

	evs := e.store.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, measurement.NoProject, evs[0].Project)

	again, err := e.engine.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, again.EventsCreated)
	assert.Equal(t, 1, again.Duplicates)
	assert.Equal(t, 45.0, e.store.Stock(2))
}

func TestRunUnmatchedMaterialIsSoftError(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.reader.setRows(measurementRow(10, "XYZ999", 3), measurementRow(11, "RES01", 3))

	res, err := e.engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Errors)
	require.Len(t, res.ErrorDetails, 1)
	assert.Contains(t, res.ErrorDetails[0], "XYZ999")
	assert.Equal(t, 1, res.EventsCreated)
	assert.Equal(t, 97.0, e.store.Stock(1))

	st := e.engine.Status()
	require.NotNil(t, st.Last)
	assert.Equal(t, 1, st.Last.Errors)
	assert.Equal(t, "idle", st.State)
}

func TestRunNotConfigured(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.reader.configured = false

	_, err := e.engine.Run(context.Background())
	require.ErrorIs(t, err, ErrNotConfigured)
	assert.Zero(t, e.reader.calls.Load())
	assert.NotEmpty(t, e.engine.Status().LastError)
}

func TestRunFetchFailureAborts(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.reader.err = errors.New("timeout")

	_, err := e.engine.Run(context.Background())
	require.Error(t, err)
	assert.Empty(t, e.store.Events())
	assert.Equal(t, Idle, e.engine.State())
}

func TestRunIsNotReentrant(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.reader.setRows(measurementRow(10, "RES01", 1))
	e.reader.block = make(chan struct{})
	e.reader.entered = make(chan struct{}, 1)

	done := make(chan error, 1)
	go func() {
		_, err := e.engine.Run(context.Background())
		done <- err
	}()
	<-e.reader.entered
	assert.Equal(t, Fetching, e.engine.State())
	assert.True(t, e.engine.Status().Running)

	_, err := e.engine.Run(context.Background())
	require.ErrorIs(t, err, ErrBusy)

	close(e.reader.block)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), e.reader.calls.Load())
	assert.Len(t, e.store.Events(), 1)
}

func TestOnResult(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.reader.setRows(measurementRow(10, "RES01", 1))

	var got []Result
	e.engine.OnResult(func(_ context.Context, r Result) { got = append(got, r) })

	_, err := e.engine.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].EventsCreated)
}

func TestPreviewAndColumns(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.reader.setRows(measurementRow(10, "RES01", 1))

	recs, err := e.engine.Preview(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "P1", recs[0].Project)

	rep, err := e.engine.Columns(context.Background())
	require.NoError(t, err)
	assert.Len(t, rep.Columns, len(columns))
	assert.Equal(t, int64(1), rep.Resolved["day"].ColumnID)
	assert.Equal(t, "exact", rep.Resolved["day"].Stage)

	assert.Empty(t, e.store.Events())
}

func TestStartRunsOnSchedule(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.reader.setRows(measurementRow(10, "RES01", 1))

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		e.engine.Start(ctx, 5*time.Millisecond, 10*time.Millisecond)
		close(stopped)
	}()

	assert.Eventually(t, func() bool { return e.reader.calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.Len(t, e.store.Events(), 1)
}
