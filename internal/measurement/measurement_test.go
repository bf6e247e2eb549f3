package measurement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwind/medicoes/internal/domain/consumption"
	"github.com/gwind/medicoes/internal/domain/materials"
	"github.com/gwind/medicoes/internal/infra/logger"
	"github.com/gwind/medicoes/internal/sheet"
)

func TestRulesResolveMeasurementSheet(t *testing.T) {
	t.Parallel()

	res := sheet.Resolve(measurementColumns, Rules)

	want := map[sheet.Field]int64{
		Day:              101,
		Week:             102,
		StartTime:        103,
		EndTime:          104,
		Client:           105,
		Project:          106,
		Team:             107,
		ResinType:        108,
		ResinQuantity:    109,
		MassType:         110,
		MassQuantity:     111,
		PUType:           112,
		PUWeight:         113,
		PUCatalystWeight: 114,
		Blade:            115,
		DamageCode:       116,
		ItemCode:         117,
		ConsumedQty:      118,
		Rework:           119,
		Supervisor:       120,
	}
	for field, id := range want {
		col, ok := res.Column(field)
		if assert.Truef(t, ok, "field %s not resolved", field) {
			assert.Equalf(t, id, col.ID, "field %s", field)
		}
	}

	for _, f := range []sheet.Field{GelType, CoreType, Unit, TechniciansCount, DamageType} {
		_, ok := res.Column(f)
		assert.Falsef(t, ok, "field %s should be absent", f)
	}
	assert.True(t, DayFirst(res))
}

func TestDayFirstOnlyForDiaColumn(t *testing.T) {
	t.Parallel()

	res := sheet.Resolve([]sheet.Column{{ID: 1, Title: "Data"}, {ID: 2, Title: "Projeto"}}, Rules)
	col, ok := res.Column(Day)
	require.True(t, ok)
	assert.Equal(t, int64(1), col.ID)
	assert.False(t, DayFirst(res))
}

func TestMapRow(t *testing.T) {
	t.Parallel()

	res := sheet.Resolve(measurementColumns, Rules)

	rec, ok := MapRow(row(7, map[int64]sheet.Value{
		101: sheet.StringVal("05/06/25"),
		102: sheet.StringVal("23"),
		103: sheet.StringVal("7h00"),
		104: sheet.StringVal("16:30"),
		105: sheet.StringVal("Vestas"),
		106: sheet.StringVal("P1"),
		107: sheet.MultiSelectVal{"Equipe A"},
		108: sheet.StringVal("RES01"),
		109: sheet.StringVal("1,5"),
		110: sheet.StringVal("MAS02"),
		112: sheet.StringVal("PU9"),
		113: sheet.StringVal("900g"),
		114: sheet.NumberVal(0.1),
		115: sheet.StringVal("B"),
		119: sheet.BoolVal(true),
	}), res)
	require.True(t, ok)

	assert.Equal(t, int64(7), rec.RowID)
	assert.Equal(t, "P1", rec.Project)
	assert.Equal(t, "2025-06-05", rec.Day)
	assert.True(t, rec.DayParsed)
	assert.Equal(t, "07:00", rec.StartTime)
	assert.Equal(t, "16:30", rec.EndTime)
	assert.Equal(t, "23", rec.Week)
	assert.Equal(t, "Equipe A", rec.Team)
	assert.Equal(t, "B", rec.Blade)
	require.NotNil(t, rec.Rework)
	assert.True(t, *rec.Rework)
	require.NotNil(t, rec.PU.CatalystWeight)
	assert.InDelta(t, 0.1, *rec.PU.CatalystWeight, 1e-9)
	assert.Equal(t, "MAS02", rec.Mass.Type)
	assert.Nil(t, rec.Mass.Quantity)

	// Mass has a type but no quantity and is skipped.
	require.Len(t, rec.Usages, 2)
	assert.Equal(t, Usage{Category: CategoryResin, Material: "RES01", Quantity: 1.5}, rec.Usages[0])
	assert.Equal(t, CategoryPU, rec.Usages[1].Category)
	assert.InDelta(t, 0.9, rec.Usages[1].Quantity, 1e-9)

	ev := rec.Event(rec.Usages[0], 42)
	require.NotNil(t, ev.MaterialID)
	assert.Equal(t, int64(42), *ev.MaterialID)
	assert.Equal(t, consumption.OriginSync, ev.Origin)
	assert.Equal(t, consumption.SyncKey{MaterialID: 42, Day: "2025-06-05", StartTime: "07:00", EndTime: "16:30", Project: "P1", Team: "Equipe A"}, ev.SyncKey())
}

func TestMapRowDiscards(t *testing.T) {
	t.Parallel()

	res := sheet.Resolve(measurementColumns, Rules)

	tests := []struct {
		name  string
		cells map[int64]sheet.Value
	}{
		{name: "blank row", cells: nil},
		{name: "no project, day or start", cells: map[int64]sheet.Value{105: sheet.StringVal("Vestas"), 108: sheet.StringVal("RES01")}},
		{name: "project without temporal anchor", cells: map[int64]sheet.Value{106: sheet.StringVal("P1"), 104: sheet.StringVal("12:00")}},
		{name: "whitespace only", cells: map[int64]sheet.Value{106: sheet.StringVal("  "), 101: sheet.StringVal("")}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rec, ok := MapRow(row(1, tc.cells), res)
			assert.False(t, ok)
			assert.Nil(t, rec)
		})
	}
}

func TestMapRowWithoutProject(t *testing.T) {
	t.Parallel()

	res := sheet.Resolve(measurementColumns, Rules)
	rec, ok := MapRow(row(3, map[int64]sheet.Value{
		101: sheet.StringVal("05/06/25"),
		103: sheet.StringVal("07:00"),
		108: sheet.StringVal("RES01"),
		109: sheet.NumberVal(2),
	}), res)
	require.True(t, ok)
	assert.Empty(t, rec.Project)

	ev := rec.Event(rec.Usages[0], 1)
	assert.Equal(t, NoProject, ev.Project)
	assert.Equal(t, NoProject, ev.SyncKey().Project)
}

func TestMapRowIgnoresMirroredItemColumns(t *testing.T) {
	t.Parallel()

	res := sheet.Resolve(measurementColumns, Rules)
	rec, ok := MapRow(row(4, map[int64]sheet.Value{
		101: sheet.StringVal("2025-10-13"),
		103: sheet.StringVal("07:00"),
		106: sheet.StringVal("P1"),
		117: sheet.StringVal("RES01"),
		118: sheet.NumberVal(30),
	}), res)
	require.True(t, ok)
	assert.Empty(t, rec.Usages)
}

func TestMapRowKeepsUnparseableDay(t *testing.T) {
	t.Parallel()

	res := sheet.Resolve(measurementColumns, Rules)
	rec, ok := MapRow(row(1, map[int64]sheet.Value{
		101: sheet.StringVal("ontem"),
		106: sheet.StringVal("P1"),
		108: sheet.StringVal("RES01"),
		109: sheet.StringVal("0"),
	}), res)
	require.True(t, ok)
	assert.Equal(t, "ontem", rec.Day)
	assert.False(t, rec.DayParsed)
	assert.Empty(t, rec.Usages)
}

func TestBuild(t *testing.T) {
	t.Parallel()

	res := sheet.Resolve(measurementColumns, Rules)
	b := NewBuilder(logger.Discard())

	rework := true
	ev := &consumption.Event{
		Quantity: 30,
		Project:  "P1",
		Origin:   consumption.OriginManual,
		Attributes: consumption.Attributes{
			Day:        "2025-10-13",
			StartTime:  "07:00",
			Client:     "vestas",
			Team:       "Equipe C",
			Supervisor: "Ana",
			Rework:     &rework,
		},
	}
	mat := &materials.Material{CodeItem: "RES01", Description: "Resina epóxi", Unit: "kg"}

	cells, err := b.Build(ev, mat, res)
	require.NoError(t, err)

	got := make(map[int64]sheet.Value, len(cells))
	for _, c := range cells {
		got[c.ColumnID] = c.Value
	}
	assert.Equal(t, sheet.StringVal("2025-10-13"), got[101])
	assert.Equal(t, sheet.StringVal("07:00"), got[103])
	assert.Equal(t, sheet.StringVal("Vestas"), got[105], "case-insensitive option match")
	assert.NotContains(t, got, int64(107), "unknown option dropped")
	assert.Equal(t, sheet.MultiSelectVal{"Ana"}, got[120], "unconstrained multi-select passes through")
	assert.Equal(t, sheet.StringVal("P1"), got[106])
	assert.Equal(t, sheet.BoolVal(true), got[119])
	assert.Equal(t, sheet.StringVal("RES01"), got[117])
	assert.Equal(t, sheet.NumberVal(30), got[118])
	assert.Len(t, cells, 8)
}

func TestBuildIntegrityGuards(t *testing.T) {
	t.Parallel()

	b := NewBuilder(logger.Discard())
	ev := &consumption.Event{Project: "P1", Attributes: consumption.Attributes{Day: "2025-10-13", Client: "GE"}}

	t.Run("too few columns", func(t *testing.T) {
		t.Parallel()

		res := sheet.Resolve([]sheet.Column{{ID: 1, Title: "Projeto"}}, Rules)
		cells, err := b.Build(ev, nil, res)
		require.ErrorIs(t, err, sheet.ErrTooFewColumns)
		assert.Empty(t, cells)
	})

	t.Run("fields collapsed onto one column", func(t *testing.T) {
		t.Parallel()

		col := sheet.Column{ID: 5, Title: "Projeto / Cliente"}
		res := sheet.Resolution{
			Project: {Column: col, Stage: "contains"},
			Client:  {Column: col, Stage: "contains"},
			Day:     {Column: sheet.Column{ID: 6, Title: "Dia"}, Stage: "exact"},
		}
		cells, err := b.Build(ev, nil, res)
		require.ErrorIs(t, err, sheet.ErrDuplicateColumn)
		assert.Empty(t, cells)
	})
}
