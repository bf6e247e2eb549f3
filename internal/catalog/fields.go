// Package catalog imports the material catalog from JSON, from the materials
// sheet and from Excel workbooks, and exports current stock as Excel.
package catalog

import "github.com/gwind/medicoes/internal/sheet"

const (
	Code               sheet.Field = "code_item"
	Description        sheet.Field = "description"
	Unit               sheet.Field = "unit"
	Stock              sheet.Field = "stock"
	StockCode          sheet.Field = "stock_code"
	StockDescription   sheet.Field = "stock_description"
	UnitPrice          sheet.Field = "unit_price"
	Project            sheet.Field = "project"
	ProjectDescription sheet.Field = "project_description"
	CostCenter         sheet.Field = "cost_center"
)

// DefaultUnit is used when a workbook has no unit column or leaves it blank.
const DefaultUnit = "KG"

// Rules tries each keyword in turn; the first keyword found in any header wins.
var Rules = []sheet.Rule{
	{Field: StockCode, Matchers: each("código do estoque", "código estoque")},
	{Field: StockDescription, Matchers: each("descrição do e", "descrição estoque")},
	{Field: Code, Matchers: each("nº do item", "n° do item", "n do item", "numero do item", "nº item", "numero item", "codigo", "item")},
	{Field: Description, Matchers: each("descrição do item", "descrição item", "descrição", "desc")},
	{Field: Unit, Matchers: append(each("unidade de medida", "unidade medida", "unidade", "medida"), sheet.Exact("um", "u.m.", "un"))},
	{Field: Stock, Matchers: each("em estoque", "estoque", "disponível", "quantidade")},
	{Field: UnitPrice, Matchers: each("preço do item", "preço item", "preço", "valor")},
	{Field: Project, Matchers: each("cód. projeto", "codigo projeto", "projeto")},
	{Field: ProjectDescription, Matchers: each("desc. projeto", "desc projeto", "descrição projeto")},
	{Field: CostCenter, Matchers: each("centro de custos", "centro custos", "dimensão 1")},
}

func each(words ...string) []sheet.Matcher {
	out := make([]sheet.Matcher, len(words))
	for i, w := range words {
		out[i] = sheet.Contains(w)
	}
	return out
}
