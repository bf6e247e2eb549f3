package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/gwind/medicoes/internal/catalog"
	"github.com/gwind/medicoes/internal/domain/consumption"
	"github.com/gwind/medicoes/internal/domain/inventory"
	"github.com/gwind/medicoes/internal/domain/materials"
	"github.com/gwind/medicoes/internal/measurement"
	service "github.com/gwind/medicoes/internal/service/consumption"
	"github.com/gwind/medicoes/internal/syncer"
)

type MaterialStore interface {
	List(ctx context.Context) ([]materials.Material, error)
	Upsert(ctx context.Context, it materials.Item) (*materials.Material, error)
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) (events, mats int64, err error)
	Projects(ctx context.Context) ([]string, error)
}

type MovementStore interface {
	Movements(ctx context.Context, materialID int64) ([]inventory.Movement, error)
}

type Catalog interface {
	ImportItems(ctx context.Context, items []materials.Item) (catalog.Report, error)
	ImportSmartsheet(ctx context.Context) (catalog.Report, error)
	ImportExcel(ctx context.Context, r io.Reader) (catalog.Report, error)
	ExportExcel(ctx context.Context, w io.Writer) (int, error)
}

type ConsumptionService interface {
	Submit(ctx context.Context, sub service.Submission) (*service.Result, error)
}

type EventStore interface {
	List(ctx context.Context, f consumption.Filter) ([]consumption.Listed, error)
	Projects(ctx context.Context) ([]string, error)
	Clients(ctx context.Context) ([]string, error)
}

type Syncer interface {
	Run(ctx context.Context) (syncer.Result, error)
	Preview(ctx context.Context) ([]*measurement.Record, error)
	Columns(ctx context.Context) (*syncer.ColumnReport, error)
	Status() syncer.Status
}

// TokenChecker validates the Smartsheet token against the API.
type TokenChecker interface {
	Configured() bool
	Me(ctx context.Context) (string, error)
}

// SheetsConfig is what the status endpoint reports about configuration.
type SheetsConfig struct {
	MaterialsSheetID    string
	MeasurementsSheetID string
}

type Deps struct {
	Materials   MaterialStore
	Movements   MovementStore
	Catalog     Catalog
	Consumption ConsumptionService
	Events      EventStore
	Sync        Syncer
	Token       TokenChecker
	Sheets      SheetsConfig
	Log         *slog.Logger
}

// API holds the JSON handlers of the service.
type API struct {
	Deps
	log *slog.Logger
}

func NewAPI(d Deps) *API {
	return &API{Deps: d, log: d.Log.With("component", "http")}
}

func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /materiais", a.listMaterials)
	mux.HandleFunc("POST /materiais", a.upsertMaterial)
	mux.HandleFunc("POST /materiais/import", a.importMaterials)
	mux.HandleFunc("POST /materiais/import-smartsheet", a.importSmartsheet)
	mux.HandleFunc("POST /materiais/import-excel", a.importExcel)
	mux.HandleFunc("GET /materiais/export", a.exportMaterials)
	mux.HandleFunc("DELETE /materiais/limpar-tudo", a.deleteAll)
	mux.HandleFunc("DELETE /materiais/{id}", a.deleteMaterial)
	mux.HandleFunc("GET /materiais/{id}/movimentos", a.listMovements)

	mux.HandleFunc("GET /medicoes", a.listEvents)
	mux.HandleFunc("POST /medicoes", a.submitEvent)
	mux.HandleFunc("POST /medicoes/sincronizar-smartsheet", a.runSync)
	mux.HandleFunc("GET /medicoes/smartsheet", a.previewSheet)

	mux.HandleFunc("GET /smartsheet/status", a.sheetStatus)
	mux.HandleFunc("GET /smartsheet/debug/colunas", a.sheetColumns)

	mux.HandleFunc("GET /projetos-clientes", a.projectsAndClients)
}
