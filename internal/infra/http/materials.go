package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gwind/medicoes/internal/domain/materials"
)

// maxUpload bounds multipart workbook uploads.
const maxUpload = 20 << 20

func (a *API) listMaterials(w http.ResponseWriter, r *http.Request) {
	list, err := a.Materials.List(r.Context())
	if err != nil {
		a.fail(w, r, "Erro ao listar materiais.", err)
		return
	}
	out := make([]materialJSON, 0, len(list))
	for _, m := range list {
		out = append(out, toMaterialJSON(m))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) upsertMaterial(w http.ResponseWriter, r *http.Request) {
	var req materialRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, r, "Corpo inválido.", err)
		return
	}
	m, err := a.Materials.Upsert(r.Context(), req.item())
	if err != nil {
		a.fail(w, r, "Dados do material incompletos.", err)
		return
	}
	writeJSON(w, http.StatusOK, toMaterialJSON(*m))
}

func (a *API) importMaterials(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items []materialRequest `json:"itens"`
	}
	if err := decode(r, &req); err != nil {
		a.fail(w, r, "Corpo inválido.", err)
		return
	}
	if len(req.Items) == 0 {
		a.fail(w, r, "Envie um array 'itens' com pelo menos um material.", errBadRequest)
		return
	}
	items := make([]materials.Item, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, it.item())
	}
	rep, err := a.Catalog.ImportItems(r.Context(), items)
	if err != nil {
		a.fail(w, r, "Erro ao importar materiais.", err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (a *API) importSmartsheet(w http.ResponseWriter, r *http.Request) {
	rep, err := a.Catalog.ImportSmartsheet(r.Context())
	if err != nil {
		a.fail(w, r, "Erro ao importar materiais do Smartsheet.", err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (a *API) importExcel(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	file, _, err := r.FormFile("arquivo")
	if err != nil {
		a.fail(w, r, "Nenhum arquivo enviado.", errors.Join(errBadRequest, err))
		return
	}
	defer func() { _ = file.Close() }()

	rep, err := a.Catalog.ImportExcel(r.Context(), file)
	if err != nil {
		a.fail(w, r, "Erro ao importar planilha.", err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (a *API) exportMaterials(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	n, err := a.Catalog.ExportExcel(r.Context(), &buf)
	if err != nil {
		a.fail(w, r, "Erro ao exportar estoque.", err)
		return
	}
	name := fmt.Sprintf("estoque_%s.xlsx", time.Now().Format("20060102_1504"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("X-Total-Materiais", strconv.Itoa(n))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (a *API) deleteMaterial(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		a.fail(w, r, "ID inválido.", errors.Join(errBadRequest, err))
		return
	}
	if err := a.Materials.Delete(r.Context(), id); err != nil {
		a.fail(w, r, "Erro ao remover material.", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) listMovements(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		a.fail(w, r, "ID inválido.", errors.Join(errBadRequest, err))
		return
	}
	list, err := a.Movements.Movements(r.Context(), id)
	if err != nil {
		a.fail(w, r, "Erro ao listar movimentos.", err)
		return
	}
	out := make([]movementJSON, 0, len(list))
	for _, m := range list {
		out = append(out, toMovementJSON(m))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) deleteAll(w http.ResponseWriter, r *http.Request) {
	events, mats, err := a.Materials.DeleteAll(r.Context())
	if err != nil {
		a.fail(w, r, "Erro ao apagar dados.", err)
		return
	}
	a.log.Warn("all data deleted", "events", events, "materials", mats)
	writeJSON(w, http.StatusOK, map[string]any{
		"mensagem":           "Todos os dados foram apagados com sucesso.",
		"medicoesDeletadas":  events,
		"materiaisDeletados": mats,
	})
}
