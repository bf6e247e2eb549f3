package catalog

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/gwind/medicoes/internal/domain/materials"
)

var exportHeader = []any{
	"Nº do item",
	"Descrição do item",
	"Unidade de medida",
	"Cód. projeto",
	"Estoque inicial",
	"Em estoque",
	"Consumido",
}

// ExportExcel writes the whole catalog with its current stock as .xlsx.
func (im *Importer) ExportExcel(ctx context.Context, w io.Writer) (int, error) {
	list, err := im.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("catalog.ExportExcel: %w", err)
	}
	if err := writeWorkbook(w, list); err != nil {
		return 0, fmt.Errorf("catalog.ExportExcel: %w", err)
	}
	return len(list), nil
}

func writeWorkbook(w io.Writer, list []materials.Material) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	name := "Estoque"
	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), name); err != nil {
		return err
	}

	if err := f.SetSheetRow(name, "A1", &exportHeader); err != nil {
		return err
	}

	for i, m := range list {
		project := ""
		if m.Project != nil {
			project = *m.Project
		}
		row := []any{
			m.CodeItem,
			m.Description,
			m.Unit,
			project,
			m.InitialStock,
			m.CurrentStock,
			m.InitialStock - m.CurrentStock,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return err
		}
	}

	_, err := f.WriteTo(w)
	return err
}
