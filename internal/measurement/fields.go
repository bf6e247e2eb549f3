// Package measurement maps rows of the "Medição e Controle de Materiais" sheet
// to consumption records and builds outbound rows from local events.
package measurement

import (
	"strings"
	"unicode"

	"github.com/gwind/medicoes/internal/sheet"
)

const (
	Day              sheet.Field = "day"
	Week             sheet.Field = "week"
	StartTime        sheet.Field = "start_time"
	EndTime          sheet.Field = "end_time"
	Client           sheet.Field = "client"
	Project          sheet.Field = "project"
	Shift            sheet.Field = "shift"
	LeadTechnician   sheet.Field = "lead_technician"
	TechniciansCount sheet.Field = "technicians_count"
	TechnicianNames  sheet.Field = "technician_names"
	Supervisor       sheet.Field = "supervisor"
	IntervalType     sheet.Field = "interval_type"
	AccessType       sheet.Field = "access_type"
	Blade            sheet.Field = "blade"
	Tower            sheet.Field = "tower"
	Platform         sheet.Field = "platform"
	Team             sheet.Field = "team"
	HourType         sheet.Field = "hour_type"
	EventsCount      sheet.Field = "events_count"
	DamageType       sheet.Field = "damage_type"
	DamageCode       sheet.Field = "damage_code"
	DamageWidth      sheet.Field = "damage_width_mm"
	DamageLength     sheet.Field = "damage_length_mm"
	ProcessStep      sheet.Field = "process_step"
	SandingStep      sheet.Field = "sanding_step"

	ResinType     sheet.Field = "resin_type"
	ResinQuantity sheet.Field = "resin_quantity"
	ResinCatalyst sheet.Field = "resin_catalyst"
	ResinBatch    sheet.Field = "resin_batch"
	ResinExpiry   sheet.Field = "resin_expiry"

	MassType     sheet.Field = "mass_type"
	MassQuantity sheet.Field = "mass_quantity"
	MassCatalyst sheet.Field = "mass_catalyst"
	MassBatch    sheet.Field = "mass_batch"
	MassExpiry   sheet.Field = "mass_expiry"

	CoreType      sheet.Field = "core_type"
	CoreThickness sheet.Field = "core_thickness_mm"
	CoreQuantity  sheet.Field = "core_quantity"

	PUType           sheet.Field = "pu_type"
	PUWeight         sheet.Field = "pu_weight"
	PUCatalystWeight sheet.Field = "pu_catalyst_weight"
	PUBatch          sheet.Field = "pu_batch"
	PUExpiry         sheet.Field = "pu_expiry"

	GelType           sheet.Field = "gel_type"
	GelWeight         sheet.Field = "gel_weight"
	GelCatalystWeight sheet.Field = "gel_catalyst_weight"
	GelBatch          sheet.Field = "gel_batch"
	GelExpiry         sheet.Field = "gel_expiry"

	Rework          sheet.Field = "rework"
	ItemCode        sheet.Field = "item_code"
	ItemDescription sheet.Field = "item_description"
	ConsumedQty     sheet.Field = "consumed_quantity"
	Unit            sheet.Field = "unit"
)

// Rules resolves every field of the measurements sheet. Matchers are listed
// from the most to the least specific.
var Rules = []sheet.Rule{
	// "Dia" beats "Data": the sheet's own date column is "Dia", while a
	// column called "Data" may be an unrelated modification stamp.
	{Field: Day, Matchers: []sheet.Matcher{
		sheet.Exact("dia", "day"),
		sheet.Pred("short", func(t string) bool {
			return (strings.HasPrefix(t, "dia") && len(t) <= 5) || (strings.HasPrefix(t, "dia ") && len(t) <= 10)
		}),
		sheet.Exact("data", "date"),
		sheet.HasType(sheet.TypeDate, sheet.TypeDateTime),
		sheet.Pred("broad", func(t string) bool {
			return anyOf(t, "data", "dia", "date") && !anyOf(t, "hora", "time", "validade")
		}),
	}},
	{Field: Week, Matchers: []sheet.Matcher{
		sheet.Pred("prefix", func(t string) bool { return strings.HasPrefix(t, "sema") }),
		sheet.Contains("semana", "week"),
	}},
	{Field: StartTime, Matchers: []sheet.Matcher{
		sheet.Contains("hora de entr", "hora entrada", "hora inicio", "hora de inicio"),
		sheet.Contains("inicio", "start"),
	}},
	{Field: EndTime, Matchers: []sheet.Matcher{
		sheet.Contains("hora de sa", "hora saida", "hora fim", "hora de termino"),
		sheet.Contains("termino", "fim", "end"),
	}},
	{Field: Client, Matchers: []sheet.Matcher{sheet.Exact("cliente"), sheet.Contains("cliente")}},
	{Field: Project, Matchers: []sheet.Matcher{sheet.Exact("projeto"), sheet.Contains("projeto")}},
	{Field: Shift, Matchers: []sheet.Matcher{sheet.Exact("escala"), sheet.Contains("escala")}},
	{Field: LeadTechnician, Matchers: []sheet.Matcher{
		sheet.Contains("tecnico lider"),
		sheet.Contains("lider"),
	}},
	{Field: TechniciansCount, Matchers: []sheet.Matcher{
		sheet.Pred("keywords", func(t string) bool { return anyOf(t, "qt", "quant") && strings.Contains(t, "tec") }),
	}},
	{Field: TechnicianNames, Matchers: []sheet.Matcher{
		sheet.Contains("nome dos tecnicos", "nomes tecnicos", "nomes dos tecnicos"),
		sheet.Pred("contains", func(t string) bool { return strings.Contains(t, "tecnicos") && !anyOf(t, "qt", "quant") }),
	}},
	{Field: Supervisor, Matchers: []sheet.Matcher{sheet.Contains("supervisor")}},
	{Field: IntervalType, Matchers: []sheet.Matcher{
		sheet.Contains("tipo de intervalo", "tipo intervalo"),
		sheet.Contains("intervalo"),
	}},
	{Field: AccessType, Matchers: []sheet.Matcher{
		sheet.Contains("tipo de acesso", "tipo acesso"),
		sheet.Contains("acesso"),
	}},
	{Field: Blade, Matchers: []sheet.Matcher{sheet.Exact("pa", "pá", "blade")}},
	{Field: Tower, Matchers: []sheet.Matcher{sheet.Exact("torre"), sheet.Contains("torre")}},
	{Field: Platform, Matchers: []sheet.Matcher{sheet.Exact("plataforma"), sheet.Contains("plataforma")}},
	{Field: Team, Matchers: []sheet.Matcher{sheet.Exact("equipe"), sheet.Contains("equipe")}},
	{Field: HourType, Matchers: []sheet.Matcher{sheet.Contains("tipo hora", "tipo de hora")}},
	{Field: EventsCount, Matchers: []sheet.Matcher{
		sheet.Pred("keywords", func(t string) bool { return anyOf(t, "qt", "quant") && strings.Contains(t, "evento") }),
	}},
	{Field: DamageType, Matchers: []sheet.Matcher{sheet.Contains("tipo dano", "tipo de dano")}},
	{Field: DamageCode, Matchers: []sheet.Matcher{sheet.Contains("dano codigo", "codigo dano", "codigo do dano")}},
	{Field: DamageWidth, Matchers: []sheet.Matcher{
		sheet.Contains("largura dano", "largura do dano"),
		sheet.ContainsAll("largura", "mm"),
	}},
	{Field: DamageLength, Matchers: []sheet.Matcher{
		sheet.Contains("comprimento dano", "comprimento do dano", "comp. dano"),
		sheet.ContainsAll("comprimento", "mm"),
	}},
	{Field: ProcessStep, Matchers: []sheet.Matcher{sheet.Contains("etapa processo", "etapa do processo")}},
	{Field: SandingStep, Matchers: []sheet.Matcher{sheet.Contains("etapa lixamento", "etapa de lixamento"), sheet.Contains("lixamento")}},

	{Field: ResinType, Matchers: []sheet.Matcher{sheet.ContainsAll("resina", "tipo")}},
	{Field: ResinQuantity, Matchers: []sheet.Matcher{
		sheet.Pred("keywords", func(t string) bool { return strings.Contains(t, "resina") && anyOf(t, "qtd", "quantidade", "qt") }),
	}},
	{Field: ResinCatalyst, Matchers: []sheet.Matcher{sheet.ContainsAll("resina", "catalisador")}},
	{Field: ResinBatch, Matchers: []sheet.Matcher{sheet.ContainsAll("resina", "lote")}},
	{Field: ResinExpiry, Matchers: []sheet.Matcher{sheet.ContainsAll("resina", "validade")}},

	{Field: MassType, Matchers: []sheet.Matcher{compound("massa", "tipo")}},
	{Field: MassQuantity, Matchers: []sheet.Matcher{
		sheet.Pred("keywords", func(t string) bool {
			return strings.Contains(t, "massa") && !hasWord(t, "pu") && anyOf(t, "qtd", "quantidade", "qt")
		}),
	}},
	{Field: MassCatalyst, Matchers: []sheet.Matcher{compound("massa", "catalisador")}},
	{Field: MassBatch, Matchers: []sheet.Matcher{compound("massa", "lote")}},
	{Field: MassExpiry, Matchers: []sheet.Matcher{compound("massa", "validade")}},

	{Field: CoreType, Matchers: []sheet.Matcher{
		sheet.Contains("nucleo tipo", "tipo nucleo", "tipo de nucleo"),
		sheet.Pred("contains", func(t string) bool {
			return strings.Contains(t, "nucleo") && !anyOf(t, "esp", "qtd", "quantidade")
		}),
	}},
	{Field: CoreThickness, Matchers: []sheet.Matcher{
		sheet.Pred("keywords", func(t string) bool { return strings.Contains(t, "nucleo") && strings.Contains(t, "esp") }),
	}},
	{Field: CoreQuantity, Matchers: []sheet.Matcher{
		sheet.Pred("keywords", func(t string) bool { return strings.Contains(t, "nucleo") && anyOf(t, "qtd", "quantidade") }),
	}},

	{Field: PUType, Matchers: []sheet.Matcher{wordAnd("pu", "tipo")}},
	{Field: PUWeight, Matchers: []sheet.Matcher{
		sheet.Pred("keywords", func(t string) bool {
			return hasWord(t, "pu") && strings.Contains(t, "peso") && !strings.Contains(t, "catalisador")
		}),
	}},
	{Field: PUCatalystWeight, Matchers: []sheet.Matcher{wordAnd("pu", "catalisador")}},
	{Field: PUBatch, Matchers: []sheet.Matcher{wordAnd("pu", "lote")}},
	{Field: PUExpiry, Matchers: []sheet.Matcher{wordAnd("pu", "validade")}},

	{Field: GelType, Matchers: []sheet.Matcher{wordAnd("gel", "tipo")}},
	{Field: GelWeight, Matchers: []sheet.Matcher{
		sheet.Pred("keywords", func(t string) bool {
			return hasWord(t, "gel") && strings.Contains(t, "peso") && !strings.Contains(t, "catalisador")
		}),
	}},
	{Field: GelCatalystWeight, Matchers: []sheet.Matcher{wordAnd("gel", "catalisador")}},
	{Field: GelBatch, Matchers: []sheet.Matcher{wordAnd("gel", "lote")}},
	{Field: GelExpiry, Matchers: []sheet.Matcher{wordAnd("gel", "validade")}},

	{Field: Rework, Matchers: []sheet.Matcher{sheet.Contains("retrabalho")}},
	{Field: ItemCode, Matchers: []sheet.Matcher{
		sheet.Pred("keywords", func(t string) bool {
			return hasWord(t, "item") && anyOf(t, "codigo", "nº", "n°", "numero")
		}),
		sheet.Exact("codigo", "codigo do material"),
	}},
	{Field: ItemDescription, Matchers: []sheet.Matcher{
		sheet.Pred("keywords", func(t string) bool { return hasWord(t, "item") && strings.Contains(t, "descricao") }),
		sheet.Exact("descricao do material", "material"),
	}},
	{Field: ConsumedQty, Matchers: []sheet.Matcher{
		sheet.Pred("keywords", func(t string) bool {
			return anyOf(t, "qtd", "quantidade") && anyOf(t, "consumida", "consumido")
		}),
	}},
	{Field: Unit, Matchers: []sheet.Matcher{
		sheet.Exact("unidade", "unid", "unid.", "un"),
		sheet.Contains("unidade"),
	}},
}

// DayFirst reports whether the resolved day column is literally named "Dia"
// (or "Day"); ambiguous NN/NN/YY dates are then read day-first.
func DayFirst(res sheet.Resolution) bool {
	col, ok := res.Column(Day)
	if !ok {
		return false
	}
	t := sheet.Fold(col.Title)
	return t == "dia" || t == "day"
}

func compound(name, attr string) sheet.Matcher {
	return sheet.Pred("keywords", func(t string) bool {
		return strings.Contains(t, name) && strings.Contains(t, attr) && !hasWord(t, "pu")
	})
}

func wordAnd(w, attr string) sheet.Matcher {
	return sheet.Pred("keywords", func(t string) bool {
		return hasWord(t, w) && strings.Contains(t, attr)
	})
}

func anyOf(t string, subs ...string) bool {
	for _, s := range subs {
		if strings.Contains(t, s) {
			return true
		}
	}
	return false
}

func hasWord(t, w string) bool {
	for _, f := range strings.FieldsFunc(t, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) }) {
		if f == w {
			return true
		}
	}
	return false
}
