package measurement

import (
	"strings"

	"github.com/gwind/medicoes/internal/domain/consumption"
	"github.com/gwind/medicoes/internal/normalize"
	"github.com/gwind/medicoes/internal/sheet"
)

// Category is one of the material families a measurement row can report.
type Category string

const (
	CategoryResin Category = "resin"
	CategoryMass  Category = "mass"
	CategoryCore  Category = "core"
	CategoryPU    Category = "pu"
	CategoryGel   Category = "gel"
)

// Usage is one consumed material derived from a row. Material holds what the
// technician typed (a code or a description); Quantity is always positive.
type Usage struct {
	Category Category
	Material string
	Quantity float64
}

// Record is a measurement row after column resolution and normalization.
type Record struct {
	RowID   int64
	Project string
	consumption.Attributes

	DayParsed bool
	Usages    []Usage
}

// NoProject stands in for rows that were filled without a project.
const NoProject = "N/A"

// Event builds the local consumption event for one usage of the record.
func (r *Record) Event(u Usage, materialID int64) *consumption.Event {
	id := materialID
	project := r.Project
	if project == "" {
		project = NoProject
	}
	return &consumption.Event{
		MaterialID: &id,
		Quantity:   u.Quantity,
		Project:    project,
		Origin:     consumption.OriginSync,
		Attributes: r.Attributes,
	}
}

type usageSpec struct {
	category Category
	material sheet.Field
	quantity sheet.Field
	parse    func(sheet.Value) (float64, bool)
}

var usageSpecs = []usageSpec{
	{CategoryResin, ResinType, ResinQuantity, normalize.Quantity},
	{CategoryMass, MassType, MassQuantity, normalize.Quantity},
	{CategoryCore, CoreType, CoreQuantity, normalize.Number},
	{CategoryPU, PUType, PUWeight, normalize.Quantity},
	{CategoryGel, GelType, GelWeight, normalize.Quantity},
}

// MapRow converts one sheet row. It returns false for rows without a project,
// day or start time (grouping rows, blank lines) and for rows with no temporal
// anchor at all.
func MapRow(row sheet.Row, res sheet.Resolution) (*Record, bool) {
	m := rowMapper{row: row, res: res}

	if m.empty(Project) && m.empty(StartTime) && m.empty(Day) {
		return nil, false
	}

	rec := &Record{RowID: row.ID, Project: m.text(Project)}
	rec.Day, rec.DayParsed = normalize.Date(m.value(Day), DayFirst(res))
	rec.StartTime, _ = normalize.Time(m.value(StartTime))
	rec.EndTime, _ = normalize.Time(m.value(EndTime))
	if rec.Day == "" && rec.StartTime == "" {
		return nil, false
	}

	a := &rec.Attributes
	a.Week = m.text(Week)
	a.Client = m.text(Client)
	a.Shift = m.text(Shift)
	a.Team = m.text(Team)
	a.Supervisor = m.text(Supervisor)
	a.LeadTechnician = m.text(LeadTechnician)
	a.TechniciansCount = m.number(TechniciansCount)
	a.TechnicianNames = m.text(TechnicianNames)
	a.IntervalType = m.text(IntervalType)
	a.AccessType = m.text(AccessType)
	a.Blade = m.text(Blade)
	a.Tower = m.text(Tower)
	a.Platform = m.text(Platform)
	a.HourType = m.text(HourType)
	a.EventsCount = m.number(EventsCount)
	a.DamageType = m.text(DamageType)
	a.DamageCode = m.text(DamageCode)
	a.DamageWidthMM = m.number(DamageWidth)
	a.DamageLengthMM = m.number(DamageLength)
	a.ProcessStep = m.text(ProcessStep)
	a.SandingStep = m.text(SandingStep)
	a.Rework = m.flag(Rework)

	a.Resin = consumption.Compound{
		Type:     m.text(ResinType),
		Quantity: m.quantity(ResinQuantity),
		Catalyst: m.text(ResinCatalyst),
		Batch:    m.text(ResinBatch),
		Expiry:   m.date(ResinExpiry),
	}
	a.Mass = consumption.Compound{
		Type:     m.text(MassType),
		Quantity: m.quantity(MassQuantity),
		Catalyst: m.text(MassCatalyst),
		Batch:    m.text(MassBatch),
		Expiry:   m.date(MassExpiry),
	}
	a.Core = consumption.Core{
		Type:        m.text(CoreType),
		ThicknessMM: m.number(CoreThickness),
		Quantity:    m.number(CoreQuantity),
	}
	a.PU = consumption.Compound{
		Type:           m.text(PUType),
		Quantity:       m.quantity(PUWeight),
		CatalystWeight: m.quantity(PUCatalystWeight),
		Batch:          m.text(PUBatch),
		Expiry:         m.date(PUExpiry),
	}
	a.Gel = consumption.Compound{
		Type:           m.text(GelType),
		Quantity:       m.quantity(GelWeight),
		CatalystWeight: m.quantity(GelCatalystWeight),
		Batch:          m.text(GelBatch),
		Expiry:         m.date(GelExpiry),
	}

	for _, spec := range usageSpecs {
		name := m.text(spec.material)
		if name == "" {
			continue
		}
		// A type without a usable quantity is a normal entry, not an error.
		qty, ok := spec.parse(m.value(spec.quantity))
		if !ok || qty <= 0 {
			continue
		}
		rec.Usages = append(rec.Usages, Usage{Category: spec.category, Material: name, Quantity: qty})
	}
	return rec, true
}

type rowMapper struct {
	row sheet.Row
	res sheet.Resolution
}

func (m rowMapper) value(f sheet.Field) sheet.Value {
	col, ok := m.res.Column(f)
	if !ok {
		return nil
	}
	return m.row.Get(col.ID)
}

func (m rowMapper) empty(f sheet.Field) bool {
	return sheet.IsEmpty(m.value(f))
}

func (m rowMapper) text(f sheet.Field) string {
	return sheet.Text(m.value(f))
}

func (m rowMapper) number(f sheet.Field) *float64 {
	n, ok := normalize.Number(m.value(f))
	if !ok {
		return nil
	}
	return &n
}

func (m rowMapper) quantity(f sheet.Field) *float64 {
	n, ok := normalize.Quantity(m.value(f))
	if !ok {
		return nil
	}
	return &n
}

func (m rowMapper) date(f sheet.Field) string {
	d, _ := normalize.Date(m.value(f), true)
	return d
}

func (m rowMapper) flag(f sheet.Field) *bool {
	switch v := m.value(f).(type) {
	case nil:
		return nil
	case sheet.BoolVal:
		b := bool(v)
		return &b
	default:
		var b bool
		switch strings.ToLower(sheet.Text(v)) {
		case "":
			return nil
		case "sim", "s", "yes", "true", "x", "1":
			b = true
		}
		return &b
	}
}
