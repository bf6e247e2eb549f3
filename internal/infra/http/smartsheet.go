package http

import (
	"context"
	"net/http"
	"time"
)

// tokenCheckTimeout bounds the users/me probe of the status endpoint.
const tokenCheckTimeout = 5 * time.Second

func (a *API) runSync(w http.ResponseWriter, r *http.Request) {
	res, err := a.Sync.Run(r.Context())
	if err != nil {
		a.fail(w, r, "Erro ao sincronizar apontamentos do Smartsheet.", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) previewSheet(w http.ResponseWriter, r *http.Request) {
	records, err := a.Sync.Preview(r.Context())
	if err != nil {
		a.fail(w, r, "Erro ao buscar medições do Smartsheet.", err)
		return
	}
	out := make([]recordJSON, 0, len(records))
	for _, rec := range records {
		out = append(out, toRecordJSON(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) sheetStatus(w http.ResponseWriter, r *http.Request) {
	out := struct {
		TokenSet        bool   `json:"tokenConfigurado"`
		TokenValid      *bool  `json:"tokenValido,omitempty"`
		Account         string `json:"conta,omitempty"`
		MeasurementsSet bool   `json:"sheetMedicoesConfigurado"`
		MaterialsSet    bool   `json:"sheetMateriaisConfigurado"`
		Sync            any    `json:"sincronizacao"`
	}{
		TokenSet:        a.Token.Configured(),
		MeasurementsSet: a.Sheets.MeasurementsSheetID != "",
		MaterialsSet:    a.Sheets.MaterialsSheetID != "",
		Sync:            a.Sync.Status(),
	}

	if out.TokenSet {
		ctx, cancel := context.WithTimeout(r.Context(), tokenCheckTimeout)
		email, err := a.Token.Me(ctx)
		cancel()
		valid := err == nil
		out.TokenValid = &valid
		out.Account = email
		if err != nil {
			a.log.Warn("smartsheet token check failed", "err", err)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) sheetColumns(w http.ResponseWriter, r *http.Request) {
	rep, err := a.Sync.Columns(r.Context())
	if err != nil {
		a.fail(w, r, "Erro ao ler colunas do Smartsheet.", err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
