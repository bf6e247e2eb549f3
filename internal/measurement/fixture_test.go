package measurement

import "github.com/gwind/medicoes/internal/sheet"

// measurementColumns mirrors the column set of the production measurements sheet.
var measurementColumns = []sheet.Column{
	{ID: 100, Index: 0, Title: "Data", Type: sheet.TypeDateTime},
	{ID: 101, Index: 1, Title: "Dia", Type: sheet.TypeDate},
	{ID: 102, Index: 2, Title: "Semana"},
	{ID: 103, Index: 3, Title: "Hora de entrada"},
	{ID: 104, Index: 4, Title: "Hora de saída"},
	{ID: 105, Index: 5, Title: "Cliente", Type: sheet.TypePicklist, Options: []string{"Vestas", "GE"}},
	{ID: 106, Index: 6, Title: "Projeto"},
	{ID: 107, Index: 7, Title: "Equipe", Type: sheet.TypeMultiPicklist, Options: []string{"Equipe A", "Equipe B"}},
	{ID: 108, Index: 8, Title: "Resina Tipo"},
	{ID: 109, Index: 9, Title: "Resina Qtd"},
	{ID: 110, Index: 10, Title: "Massa Tipo"},
	{ID: 111, Index: 11, Title: "Massa Qtd"},
	{ID: 112, Index: 12, Title: "PU Tipo"},
	{ID: 113, Index: 13, Title: "PU Massa Peso"},
	{ID: 114, Index: 14, Title: "PU Catalisador Peso"},
	{ID: 115, Index: 15, Title: "Pá"},
	{ID: 116, Index: 16, Title: "Dano Código"},
	{ID: 117, Index: 17, Title: "Código Item"},
	{ID: 118, Index: 18, Title: "Qtd Consumida"},
	{ID: 119, Index: 19, Title: "Retrabalho", Type: sheet.TypeCheckbox},
	{ID: 120, Index: 20, Title: "Supervisor", Type: sheet.TypeMultiPicklist},
}

func row(id int64, cells map[int64]sheet.Value) sheet.Row {
	r := sheet.Row{ID: id}
	for col, v := range cells {
		r.Cells = append(r.Cells, sheet.Cell{ColumnID: col, Value: v})
	}
	return r
}
