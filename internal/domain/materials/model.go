package materials

import (
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("material not found")
	ErrInvalid  = errors.New("material needs code, description and unit")
)

// Material is a stock item. (CodeItem, Project) is unique; Project is nil for
// items that do not belong to a project. CurrentStock is only written by the
// stock ledger and by catalog re-baselining.
type Material struct {
	ID           int64
	CodeItem     string
	Project      *string
	Description  string
	Unit         string
	InitialStock float64
	CurrentStock float64

	StockCode          string
	StockDescription   string
	ProjectDescription string
	CostCenter         string
	UnitPrice          *float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Item is a catalog entry as received from an import.
type Item struct {
	CodeItem     string
	Project      string
	Description  string
	Unit         string
	InitialStock float64

	StockCode          string
	StockDescription   string
	ProjectDescription string
	CostCenter         string
	UnitPrice          *float64
}

// Valid reports whether the item carries the fields an upsert needs.
func (it Item) Valid() bool {
	return it.CodeItem != "" && it.Description != "" && it.Unit != ""
}
