// Package sheet holds the boundary types of the external spreadsheet
// (columns, rows, typed cell values) and the heuristic column resolver.
package sheet

import (
	"strconv"
	"strings"
)

// Column types reported by the external API.
const (
	TypeText          = "TEXT_NUMBER"
	TypeDate          = "DATE"
	TypeDateTime      = "DATETIME"
	TypeAbstractDate  = "ABSTRACT_DATETIME"
	TypePicklist      = "PICKLIST"
	TypeMultiPicklist = "MULTI_PICKLIST"
	TypeCheckbox      = "CHECKBOX"
	TypeContactList   = "CONTACT_LIST"
)

type Sheet struct {
	ID      int64
	Name    string
	Columns []Column
	Rows    []Row
}

type Column struct {
	ID      int64
	Index   int
	Title   string
	Type    string
	Options []string
}

// Constrained reports whether writes to the column must use one of its options.
func (c Column) Constrained() bool {
	return len(c.Options) > 0
}

func (c Column) IsPicklist() bool {
	return c.Type == TypePicklist || c.Type == TypeMultiPicklist
}

type Row struct {
	ID    int64
	Cells []Cell
}

type Cell struct {
	ColumnID int64
	Value    Value
}

// Get returns the value stored under columnID or nil when the row has no such cell.
func (r Row) Get(columnID int64) Value {
	for _, c := range r.Cells {
		if c.ColumnID == columnID {
			return c.Value
		}
	}
	return nil
}

// CellWrite is one outbound cell of an appended row.
type CellWrite struct {
	ColumnID int64
	Value    Value
}

// Value is a cell value resolved at the API boundary. Exactly one of
// StringVal, NumberVal, BoolVal or MultiSelectVal; nil means empty.
type Value interface {
	isValue()
}

type StringVal string

type NumberVal float64

type BoolVal bool

type MultiSelectVal []string

func (StringVal) isValue()      {}
func (NumberVal) isValue()      {}
func (BoolVal) isValue()        {}
func (MultiSelectVal) isValue() {}

// Text renders a value as the trimmed string a user would see in the sheet.
func Text(v Value) string {
	switch x := v.(type) {
	case StringVal:
		return strings.TrimSpace(string(x))
	case NumberVal:
		return strconv.FormatFloat(float64(x), 'f', -1, 64)
	case BoolVal:
		if x {
			return "true"
		}
		return "false"
	case MultiSelectVal:
		return strings.Join(x, ", ")
	default:
		return ""
	}
}

// IsEmpty reports whether v carries no user-visible content.
func IsEmpty(v Value) bool {
	return Text(v) == ""
}
