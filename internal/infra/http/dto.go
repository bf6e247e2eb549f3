package http

import (
	"time"

	"github.com/gwind/medicoes/internal/domain/consumption"
	"github.com/gwind/medicoes/internal/domain/inventory"
	"github.com/gwind/medicoes/internal/domain/materials"
	"github.com/gwind/medicoes/internal/measurement"
)

type materialJSON struct {
	ID                 int64     `json:"id"`
	CodeItem           string    `json:"codigoItem"`
	Description        string    `json:"descricao"`
	Unit               string    `json:"unidade"`
	Project            *string   `json:"codigoProjeto"`
	InitialStock       float64   `json:"estoqueInicial"`
	CurrentStock       float64   `json:"estoqueAtual"`
	StockCode          string    `json:"codigoEstoque,omitempty"`
	StockDescription   string    `json:"descricaoEstoque,omitempty"`
	ProjectDescription string    `json:"descricaoProjeto,omitempty"`
	CostCenter         string    `json:"centroCustos,omitempty"`
	UnitPrice          *float64  `json:"precoItem,omitempty"`
	CreatedAt          time.Time `json:"criadoEm"`
	UpdatedAt          time.Time `json:"atualizadoEm"`
}

func toMaterialJSON(m materials.Material) materialJSON {
	return materialJSON{
		ID:                 m.ID,
		CodeItem:           m.CodeItem,
		Description:        m.Description,
		Unit:               m.Unit,
		Project:            m.Project,
		InitialStock:       m.InitialStock,
		CurrentStock:       m.CurrentStock,
		StockCode:          m.StockCode,
		StockDescription:   m.StockDescription,
		ProjectDescription: m.ProjectDescription,
		CostCenter:         m.CostCenter,
		UnitPrice:          m.UnitPrice,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

type materialRequest struct {
	CodeItem           string   `json:"codigoItem"`
	Description        string   `json:"descricao"`
	Unit               string   `json:"unidade"`
	InitialStock       float64  `json:"estoqueInicial"`
	Project            string   `json:"codigoProjeto"`
	StockCode          string   `json:"codigoEstoque"`
	StockDescription   string   `json:"descricaoEstoque"`
	ProjectDescription string   `json:"descricaoProjeto"`
	CostCenter         string   `json:"centroCustos"`
	UnitPrice          *float64 `json:"precoItem"`
}

func (r materialRequest) item() materials.Item {
	return materials.Item{
		CodeItem:           r.CodeItem,
		Project:            r.Project,
		Description:        r.Description,
		Unit:               r.Unit,
		InitialStock:       r.InitialStock,
		StockCode:          r.StockCode,
		StockDescription:   r.StockDescription,
		ProjectDescription: r.ProjectDescription,
		CostCenter:         r.CostCenter,
		UnitPrice:          r.UnitPrice,
	}
}

// attributesJSON is the wire form of the descriptive fields of a measurement,
// shared by the submission body, the event listing and the sheet preview.
type attributesJSON struct {
	Day              string   `json:"dia,omitempty"`
	Week             string   `json:"semana,omitempty"`
	StartTime        string   `json:"horaInicio,omitempty"`
	EndTime          string   `json:"horaFim,omitempty"`
	Client           string   `json:"cliente,omitempty"`
	Shift            string   `json:"escala,omitempty"`
	Team             string   `json:"equipe,omitempty"`
	Supervisor       string   `json:"supervisor,omitempty"`
	LeadTechnician   string   `json:"tecnicoLider,omitempty"`
	TechniciansCount *float64 `json:"quantidadeTecnicos,omitempty"`
	TechnicianNames  string   `json:"nomesTecnicos,omitempty"`
	IntervalType     string   `json:"tipoIntervalo,omitempty"`
	AccessType       string   `json:"tipoAcesso,omitempty"`
	Blade            string   `json:"pa,omitempty"`
	Tower            string   `json:"torre,omitempty"`
	Platform         string   `json:"plataforma,omitempty"`
	HourType         string   `json:"tipoHora,omitempty"`
	EventsCount      *float64 `json:"quantidadeEventos,omitempty"`

	DamageType     string   `json:"tipoDano,omitempty"`
	DamageCode     string   `json:"danoCodigo,omitempty"`
	DamageWidthMM  *float64 `json:"larguraDanoMm,omitempty"`
	DamageLengthMM *float64 `json:"comprimentoDanoMm,omitempty"`
	ProcessStep    string   `json:"etapaProcesso,omitempty"`
	SandingStep    string   `json:"etapaLixamento,omitempty"`

	ResinType     string   `json:"resinaTipo,omitempty"`
	ResinQuantity *float64 `json:"resinaQuantidade,omitempty"`
	ResinCatalyst string   `json:"resinaCatalisador,omitempty"`
	ResinBatch    string   `json:"resinaLote,omitempty"`
	ResinExpiry   string   `json:"resinaValidade,omitempty"`

	MassType     string   `json:"massaTipo,omitempty"`
	MassQuantity *float64 `json:"massaQuantidade,omitempty"`
	MassCatalyst string   `json:"massaCatalisador,omitempty"`
	MassBatch    string   `json:"massaLote,omitempty"`
	MassExpiry   string   `json:"massaValidade,omitempty"`

	CoreType      string   `json:"nucleoTipo,omitempty"`
	CoreThickness *float64 `json:"nucleoEspessuraMm,omitempty"`
	CoreQuantity  *float64 `json:"nucleoQuantidade,omitempty"`

	PUType           string   `json:"puTipo,omitempty"`
	PUWeight         *float64 `json:"puMassaPeso,omitempty"`
	PUCatalystWeight *float64 `json:"puCatalisadorPeso,omitempty"`
	PUBatch          string   `json:"puLote,omitempty"`
	PUExpiry         string   `json:"puValidade,omitempty"`

	GelType           string   `json:"gelTipo,omitempty"`
	GelWeight         *float64 `json:"gelPeso,omitempty"`
	GelCatalystWeight *float64 `json:"gelCatalisadorPeso,omitempty"`
	GelBatch          string   `json:"gelLote,omitempty"`
	GelExpiry         string   `json:"gelValidade,omitempty"`

	Rework *bool `json:"retrabalho,omitempty"`
}

func (a attributesJSON) attributes() consumption.Attributes {
	return consumption.Attributes{
		Day:              a.Day,
		Week:             a.Week,
		StartTime:        a.StartTime,
		EndTime:          a.EndTime,
		Client:           a.Client,
		Shift:            a.Shift,
		Team:             a.Team,
		Supervisor:       a.Supervisor,
		LeadTechnician:   a.LeadTechnician,
		TechniciansCount: a.TechniciansCount,
		TechnicianNames:  a.TechnicianNames,
		IntervalType:     a.IntervalType,
		AccessType:       a.AccessType,
		Blade:            a.Blade,
		Tower:            a.Tower,
		Platform:         a.Platform,
		HourType:         a.HourType,
		EventsCount:      a.EventsCount,
		DamageType:       a.DamageType,
		DamageCode:       a.DamageCode,
		DamageWidthMM:    a.DamageWidthMM,
		DamageLengthMM:   a.DamageLengthMM,
		ProcessStep:      a.ProcessStep,
		SandingStep:      a.SandingStep,
		Resin: consumption.Compound{
			Type: a.ResinType, Quantity: a.ResinQuantity, Catalyst: a.ResinCatalyst,
			Batch: a.ResinBatch, Expiry: a.ResinExpiry,
		},
		Mass: consumption.Compound{
			Type: a.MassType, Quantity: a.MassQuantity, Catalyst: a.MassCatalyst,
			Batch: a.MassBatch, Expiry: a.MassExpiry,
		},
		Core: consumption.Core{Type: a.CoreType, ThicknessMM: a.CoreThickness, Quantity: a.CoreQuantity},
		PU: consumption.Compound{
			Type: a.PUType, Quantity: a.PUWeight, CatalystWeight: a.PUCatalystWeight,
			Batch: a.PUBatch, Expiry: a.PUExpiry,
		},
		Gel: consumption.Compound{
			Type: a.GelType, Quantity: a.GelWeight, CatalystWeight: a.GelCatalystWeight,
			Batch: a.GelBatch, Expiry: a.GelExpiry,
		},
		Rework: a.Rework,
	}
}

func toAttributesJSON(a consumption.Attributes) attributesJSON {
	return attributesJSON{
		Day:               a.Day,
		Week:              a.Week,
		StartTime:         a.StartTime,
		EndTime:           a.EndTime,
		Client:            a.Client,
		Shift:             a.Shift,
		Team:              a.Team,
		Supervisor:        a.Supervisor,
		LeadTechnician:    a.LeadTechnician,
		TechniciansCount:  a.TechniciansCount,
		TechnicianNames:   a.TechnicianNames,
		IntervalType:      a.IntervalType,
		AccessType:        a.AccessType,
		Blade:             a.Blade,
		Tower:             a.Tower,
		Platform:          a.Platform,
		HourType:          a.HourType,
		EventsCount:       a.EventsCount,
		DamageType:        a.DamageType,
		DamageCode:        a.DamageCode,
		DamageWidthMM:     a.DamageWidthMM,
		DamageLengthMM:    a.DamageLengthMM,
		ProcessStep:       a.ProcessStep,
		SandingStep:       a.SandingStep,
		ResinType:         a.Resin.Type,
		ResinQuantity:     a.Resin.Quantity,
		ResinCatalyst:     a.Resin.Catalyst,
		ResinBatch:        a.Resin.Batch,
		ResinExpiry:       a.Resin.Expiry,
		MassType:          a.Mass.Type,
		MassQuantity:      a.Mass.Quantity,
		MassCatalyst:      a.Mass.Catalyst,
		MassBatch:         a.Mass.Batch,
		MassExpiry:        a.Mass.Expiry,
		CoreType:          a.Core.Type,
		CoreThickness:     a.Core.ThicknessMM,
		CoreQuantity:      a.Core.Quantity,
		PUType:            a.PU.Type,
		PUWeight:          a.PU.Quantity,
		PUCatalystWeight:  a.PU.CatalystWeight,
		PUBatch:           a.PU.Batch,
		PUExpiry:          a.PU.Expiry,
		GelType:           a.Gel.Type,
		GelWeight:         a.Gel.Quantity,
		GelCatalystWeight: a.Gel.CatalystWeight,
		GelBatch:          a.Gel.Batch,
		GelExpiry:         a.Gel.Expiry,
		Rework:            a.Rework,
	}
}

type medicaoRequest struct {
	CodeItem string  `json:"codigoItem"`
	Quantity float64 `json:"quantidadeConsumida"`
	Project  string  `json:"projeto"`
	UserID   string  `json:"usuarioId"`
	attributesJSON
}

type eventJSON struct {
	ID         int64     `json:"id"`
	MaterialID *int64    `json:"materialId"`
	Quantity   float64   `json:"quantidadeConsumida"`
	Project    string    `json:"projeto"`
	Origin     string    `json:"origem"`
	UserID     string    `json:"usuarioId,omitempty"`
	CreatedAt  time.Time `json:"criadoEm"`
	attributesJSON
}

func toEventJSON(ev consumption.Event) eventJSON {
	return eventJSON{
		ID:             ev.ID,
		MaterialID:     ev.MaterialID,
		Quantity:       ev.Quantity,
		Project:        ev.Project,
		Origin:         string(ev.Origin),
		UserID:         ev.UserID,
		CreatedAt:      ev.CreatedAt,
		attributesJSON: toAttributesJSON(ev.Attributes),
	}
}

type eventMaterialJSON struct {
	Code        string `json:"codigoItem"`
	Description string `json:"descricao"`
	Unit        string `json:"unidade"`
}

type listedJSON struct {
	eventJSON
	Material *eventMaterialJSON `json:"material"`
}

func toListedJSON(l consumption.Listed) listedJSON {
	out := listedJSON{eventJSON: toEventJSON(l.Event)}
	if l.MaterialCode != "" {
		out.Material = &eventMaterialJSON{Code: l.MaterialCode, Description: l.MaterialDescription, Unit: l.MaterialUnit}
	}
	return out
}

type usageJSON struct {
	Category string  `json:"categoria"`
	Material string  `json:"material"`
	Quantity float64 `json:"quantidade"`
}

type recordJSON struct {
	RowID     int64       `json:"linhaId"`
	Project   string      `json:"projeto"`
	DayParsed bool        `json:"diaReconhecido"`
	Usages    []usageJSON `json:"materiais"`
	attributesJSON
}

func toRecordJSON(r *measurement.Record) recordJSON {
	out := recordJSON{
		RowID:          r.RowID,
		Project:        r.Project,
		DayParsed:      r.DayParsed,
		Usages:         make([]usageJSON, 0, len(r.Usages)),
		attributesJSON: toAttributesJSON(r.Attributes),
	}
	for _, u := range r.Usages {
		out.Usages = append(out.Usages, usageJSON{Category: string(u.Category), Material: u.Material, Quantity: u.Quantity})
	}
	return out
}

type nameJSON struct {
	ID   int    `json:"id"`
	Name string `json:"nome"`
}

type movementJSON struct {
	ID          int64     `json:"id"`
	MaterialID  int64     `json:"materialId"`
	EventID     int64     `json:"medicaoId"`
	Requested   float64   `json:"solicitado"`
	Applied     float64   `json:"debitado"`
	StockBefore float64   `json:"estoqueAntes"`
	StockAfter  float64   `json:"estoqueDepois"`
	CreatedAt   time.Time `json:"criadoEm"`
}

func toMovementJSON(m inventory.Movement) movementJSON {
	return movementJSON{
		ID:          m.ID,
		MaterialID:  m.MaterialID,
		EventID:     m.EventID,
		Requested:   m.Requested,
		Applied:     m.Applied,
		StockBefore: m.StockBefore,
		StockAfter:  m.StockAfter,
		CreatedAt:   m.CreatedAt,
	}
}
