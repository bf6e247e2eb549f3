package measurement

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/gwind/medicoes/internal/domain/consumption"
	"github.com/gwind/medicoes/internal/domain/materials"
	"github.com/gwind/medicoes/internal/sheet"
)

// Builder turns local consumption events into rows for the measurements sheet.
type Builder struct {
	log *slog.Logger
}

func NewBuilder(log *slog.Logger) *Builder {
	return &Builder{log: log.With("component", "outbound")}
}

type fieldValue struct {
	field sheet.Field
	value sheet.Value
}

// Build resolves target cells for ev. mat may be nil for events without a
// material. An error means the row must not be sent: ErrDuplicateColumn when
// two fields land on one column, ErrTooFewColumns when less than two columns
// would be written.
func (b *Builder) Build(ev *consumption.Event, mat *materials.Material, res sheet.Resolution) ([]sheet.CellWrite, error) {
	const op = "measurement.Build"

	var cells []sheet.CellWrite
	seen := make(map[int64]sheet.Field)

	for _, fv := range eventValues(ev, mat) {
		if sheet.IsEmpty(fv.value) {
			continue
		}
		col, ok := res.Column(fv.field)
		if !ok {
			continue
		}
		if prev, dup := seen[col.ID]; dup {
			return nil, fmt.Errorf("%s: %q and %q -> column %d %q: %w", op, prev, fv.field, col.ID, col.Title, sheet.ErrDuplicateColumn)
		}

		value, ok := b.fit(col, fv.value)
		if !ok {
			continue
		}
		seen[col.ID] = fv.field
		cells = append(cells, sheet.CellWrite{ColumnID: col.ID, Value: value})
	}

	if len(seen) < 2 {
		return nil, fmt.Errorf("%s: %d column(s): %w", op, len(seen), sheet.ErrTooFewColumns)
	}
	return cells, nil
}

// fit adapts v to the column. Pick-list columns with options only accept
// known options (exact, then case-insensitive); anything else is dropped.
func (b *Builder) fit(col sheet.Column, v sheet.Value) (sheet.Value, bool) {
	if !col.IsPicklist() {
		return v, true
	}

	var wanted []string
	if ms, ok := v.(sheet.MultiSelectVal); ok {
		wanted = ms
	} else {
		wanted = []string{sheet.Text(v)}
	}

	if !col.Constrained() {
		if col.Type == sheet.TypeMultiPicklist {
			return sheet.MultiSelectVal(wanted), true
		}
		return v, true
	}

	var picked []string
	for _, w := range wanted {
		opt, ok := matchOption(col.Options, w)
		if !ok {
			b.log.Warn("value not in pick-list, dropped", "column", col.Title, "value", w)
			continue
		}
		picked = append(picked, opt)
	}
	if len(picked) == 0 {
		return nil, false
	}
	if col.Type == sheet.TypeMultiPicklist {
		return sheet.MultiSelectVal(picked), true
	}
	return sheet.StringVal(picked[0]), true
}

func matchOption(options []string, v string) (string, bool) {
	v = strings.TrimSpace(v)
	for _, o := range options {
		if o == v {
			return o, true
		}
	}
	for _, o := range options {
		if strings.EqualFold(strings.TrimSpace(o), v) {
			return o, true
		}
	}
	return "", false
}

func eventValues(ev *consumption.Event, mat *materials.Material) []fieldValue {
	a := ev.Attributes
	out := []fieldValue{
		{Day, str(a.Day)},
		{Week, str(a.Week)},
		{StartTime, str(a.StartTime)},
		{EndTime, str(a.EndTime)},
		{Client, str(a.Client)},
		{Project, str(ev.Project)},
		{Shift, str(a.Shift)},
		{LeadTechnician, str(a.LeadTechnician)},
		{TechniciansCount, num(a.TechniciansCount)},
		{TechnicianNames, str(a.TechnicianNames)},
		{Supervisor, str(a.Supervisor)},
		{IntervalType, str(a.IntervalType)},
		{AccessType, str(a.AccessType)},
		{Blade, str(a.Blade)},
		{Tower, str(a.Tower)},
		{Platform, str(a.Platform)},
		{Team, str(a.Team)},
		{HourType, str(a.HourType)},
		{EventsCount, num(a.EventsCount)},
		{DamageType, str(a.DamageType)},
		{DamageCode, str(a.DamageCode)},
		{DamageWidth, num(a.DamageWidthMM)},
		{DamageLength, num(a.DamageLengthMM)},
		{ProcessStep, str(a.ProcessStep)},
		{SandingStep, str(a.SandingStep)},

		{ResinType, str(a.Resin.Type)},
		{ResinQuantity, num(a.Resin.Quantity)},
		{ResinCatalyst, str(a.Resin.Catalyst)},
		{ResinBatch, str(a.Resin.Batch)},
		{ResinExpiry, str(a.Resin.Expiry)},

		{MassType, str(a.Mass.Type)},
		{MassQuantity, num(a.Mass.Quantity)},
		{MassCatalyst, str(a.Mass.Catalyst)},
		{MassBatch, str(a.Mass.Batch)},
		{MassExpiry, str(a.Mass.Expiry)},

		{CoreType, str(a.Core.Type)},
		{CoreThickness, num(a.Core.ThicknessMM)},
		{CoreQuantity, num(a.Core.Quantity)},

		{PUType, str(a.PU.Type)},
		{PUWeight, num(a.PU.Quantity)},
		{PUCatalystWeight, num(a.PU.CatalystWeight)},
		{PUBatch, str(a.PU.Batch)},
		{PUExpiry, str(a.PU.Expiry)},

		{GelType, str(a.Gel.Type)},
		{GelWeight, num(a.Gel.Quantity)},
		{GelCatalystWeight, num(a.Gel.CatalystWeight)},
		{GelBatch, str(a.Gel.Batch)},
		{GelExpiry, str(a.Gel.Expiry)},
	}
	if a.Rework != nil {
		out = append(out, fieldValue{Rework, sheet.BoolVal(*a.Rework)})
	}
	if mat != nil {
		q := ev.Quantity
		out = append(out,
			fieldValue{ItemCode, str(mat.CodeItem)},
			fieldValue{ItemDescription, str(mat.Description)},
			fieldValue{ConsumedQty, num(&q)},
			fieldValue{Unit, str(mat.Unit)},
		)
	}
	return out
}

func str(s string) sheet.Value {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return sheet.StringVal(s)
}

func num(f *float64) sheet.Value {
	if f == nil {
		return nil
	}
	return sheet.NumberVal(*f)
}
