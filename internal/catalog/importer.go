package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/gwind/medicoes/internal/domain/materials"
	"github.com/gwind/medicoes/internal/normalize"
	"github.com/gwind/medicoes/internal/sheet"
)

var (
	ErrColumnsNotFound = errors.New("code and description columns not found")
	ErrEmptyWorkbook   = errors.New("workbook has no data rows")
	ErrNotConfigured   = errors.New("materials sheet not configured")
)

type Store interface {
	UpsertMany(ctx context.Context, items []materials.Item) (materials.ImportSummary, error)
	List(ctx context.Context) ([]materials.Material, error)
}

type SheetReader interface {
	Configured() bool
	GetSheet(ctx context.Context, sheetID string) (*sheet.Sheet, error)
}

// Report is the outcome of an import. Problems lists rows that were skipped.
type Report struct {
	materials.ImportSummary
	Problems []string `json:"erros,omitempty"`
}

type Importer struct {
	store   Store
	reader  SheetReader
	sheetID string
	log     *slog.Logger
}

func NewImporter(store Store, reader SheetReader, materialsSheetID string, log *slog.Logger) *Importer {
	return &Importer{store: store, reader: reader, sheetID: materialsSheetID, log: log.With("component", "catalog")}
}

// ImportItems upserts items received as JSON.
func (im *Importer) ImportItems(ctx context.Context, items []materials.Item) (Report, error) {
	sum, err := im.store.UpsertMany(ctx, items)
	if err != nil {
		return Report{}, err
	}
	im.log.Info("catalog imported", "source", "json", "created", sum.Created, "updated", sum.Updated, "skipped", sum.Skipped)
	return Report{ImportSummary: sum}, nil
}

// ImportSmartsheet reads the materials sheet and upserts its rows.
func (im *Importer) ImportSmartsheet(ctx context.Context) (Report, error) {
	const op = "catalog.ImportSmartsheet"

	if im.sheetID == "" || !im.reader.Configured() {
		return Report{}, ErrNotConfigured
	}
	sh, err := im.reader.GetSheet(ctx, im.sheetID)
	if err != nil {
		return Report{}, fmt.Errorf("%s: %w", op, err)
	}
	items, problems, err := ItemsFromSheet(sh.Columns, sh.Rows)
	if err != nil {
		return Report{}, fmt.Errorf("%s: %w", op, err)
	}
	return im.save(ctx, "smartsheet", items, problems)
}

// ImportExcel parses the active sheet of an .xlsx workbook and upserts its rows.
func (im *Importer) ImportExcel(ctx context.Context, r io.Reader) (Report, error) {
	const op = "catalog.ImportExcel"

	cols, rows, err := readWorkbook(r)
	if err != nil {
		return Report{}, fmt.Errorf("%s: %w", op, err)
	}
	items, problems, err := ItemsFromSheet(cols, rows)
	if err != nil {
		return Report{}, fmt.Errorf("%s: %w", op, err)
	}
	return im.save(ctx, "excel", items, problems)
}

func (im *Importer) save(ctx context.Context, source string, items []materials.Item, problems []string) (Report, error) {
	sum, err := im.store.UpsertMany(ctx, items)
	if err != nil {
		return Report{}, err
	}
	sum.Skipped += len(problems)
	im.log.Info("catalog imported", "source", source, "created", sum.Created, "updated", sum.Updated, "skipped", sum.Skipped)
	return Report{ImportSummary: sum, Problems: problems}, nil
}

// ItemsFromSheet resolves catalog columns by title and converts every row.
// Rows without code or description are reported, not imported.
func ItemsFromSheet(cols []sheet.Column, rows []sheet.Row) ([]materials.Item, []string, error) {
	res := sheet.Resolve(cols, Rules)
	if _, ok := res[Code]; !ok {
		return nil, nil, ErrColumnsNotFound
	}
	if _, ok := res[Description]; !ok {
		return nil, nil, ErrColumnsNotFound
	}

	get := func(row sheet.Row, f sheet.Field) sheet.Value {
		col, ok := res.Column(f)
		if !ok {
			return nil
		}
		return row.Get(col.ID)
	}
	text := func(row sheet.Row, f sheet.Field) string { return sheet.Text(get(row, f)) }

	var (
		items    []materials.Item
		problems []string
	)
	for i, row := range rows {
		code, desc := text(row, Code), text(row, Description)
		if code == "" && desc == "" {
			continue
		}
		if code == "" || desc == "" {
			problems = append(problems, fmt.Sprintf("linha %d: código ou descrição vazios", i+2))
			continue
		}

		it := materials.Item{
			CodeItem:           code,
			Description:        desc,
			Unit:               text(row, Unit),
			Project:            text(row, Project),
			StockCode:          text(row, StockCode),
			StockDescription:   text(row, StockDescription),
			ProjectDescription: text(row, ProjectDescription),
			CostCenter:         text(row, CostCenter),
		}
		if it.Unit == "" {
			it.Unit = DefaultUnit
		}
		if n, ok := normalize.Number(get(row, Stock)); ok && n > 0 {
			it.InitialStock = n
		}
		if p, ok := normalize.Number(get(row, UnitPrice)); ok {
			it.UnitPrice = &p
		}
		items = append(items, it)
	}
	return items, problems, nil
}

// readWorkbook turns the active sheet into columns (first row) and rows.
func readWorkbook(r io.Reader) ([]sheet.Column, []sheet.Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = f.Close() }()

	name := f.GetSheetName(f.GetActiveSheetIndex())
	data, err := f.GetRows(name)
	if err != nil {
		return nil, nil, err
	}
	if len(data) < 2 {
		return nil, nil, ErrEmptyWorkbook
	}

	cols := make([]sheet.Column, 0, len(data[0]))
	for i, title := range data[0] {
		cols = append(cols, sheet.Column{ID: int64(i + 1), Index: i, Title: strings.TrimSpace(title)})
	}

	rows := make([]sheet.Row, 0, len(data)-1)
	for i, line := range data[1:] {
		row := sheet.Row{ID: int64(i + 2)}
		for j, v := range line {
			if strings.TrimSpace(v) == "" {
				continue
			}
			row.Cells = append(row.Cells, sheet.Cell{ColumnID: int64(j + 1), Value: sheet.StringVal(v)})
		}
		rows = append(rows, row)
	}
	return cols, rows, nil
}
