package http

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"

	"github.com/gwind/medicoes/internal/domain/consumption"
	service "github.com/gwind/medicoes/internal/service/consumption"
)

func (a *API) submitEvent(w http.ResponseWriter, r *http.Request) {
	var req medicaoRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, r, "Corpo inválido.", err)
		return
	}
	res, err := a.Consumption.Submit(r.Context(), service.Submission{
		CodeItem:   req.CodeItem,
		Quantity:   req.Quantity,
		Project:    req.Project,
		UserID:     req.UserID,
		Attributes: req.attributes(),
	})
	if err != nil {
		a.fail(w, r, "Não foi possível registrar a medição.", err)
		return
	}

	out := struct {
		eventJSON
		Material *materialJSON `json:"material"`
	}{eventJSON: toEventJSON(res.Event)}
	if res.Material != nil {
		m := toMaterialJSON(*res.Material)
		out.Material = &m
	}
	writeJSON(w, http.StatusCreated, out)
}

func (a *API) listEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := consumption.Filter{Project: q.Get("projeto")}

	var err error
	if f.MaterialID, err = queryInt(q.Get("materialId")); err != nil {
		a.fail(w, r, "materialId inválido.", err)
		return
	}
	var n int64
	if n, err = queryInt(q.Get("limit")); err != nil {
		a.fail(w, r, "limit inválido.", err)
		return
	}
	f.Limit = uint64(n)
	if n, err = queryInt(q.Get("offset")); err != nil {
		a.fail(w, r, "offset inválido.", err)
		return
	}
	f.Offset = uint64(n)

	list, err := a.Events.List(r.Context(), f)
	if err != nil {
		a.fail(w, r, "Erro ao listar medições.", err)
		return
	}
	out := make([]listedJSON, 0, len(list))
	for _, l := range list {
		out = append(out, toListedJSON(l))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) projectsAndClients(w http.ResponseWriter, r *http.Request) {
	var (
		names []string
		err   error
	)
	switch tipo := r.URL.Query().Get("tipo"); tipo {
	case "projeto":
		names, err = a.projects(r)
	case "cliente":
		names, err = a.Events.Clients(r.Context())
	default:
		a.fail(w, r, "Parâmetro 'tipo' deve ser 'projeto' ou 'cliente'.", fmt.Errorf("%w: tipo=%q", errBadRequest, tipo))
		return
	}
	if err != nil {
		a.fail(w, r, "Erro ao buscar projetos/clientes.", err)
		return
	}
	out := make([]nameJSON, 0, len(names))
	for i, n := range names {
		out = append(out, nameJSON{ID: i + 1, Name: n})
	}
	writeJSON(w, http.StatusOK, out)
}

// projects merges the projects seen in events with those of the catalog.
func (a *API) projects(r *http.Request) ([]string, error) {
	fromEvents, err := a.Events.Projects(r.Context())
	if err != nil {
		return nil, err
	}
	fromCatalog, err := a.Materials.Projects(r.Context())
	if err != nil {
		return nil, err
	}
	names := append(fromEvents, fromCatalog...)
	slices.Sort(names)
	return slices.Compact(names), nil
}

// queryInt parses an optional non-negative query parameter; empty means 0.
func queryInt(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errors.Join(errBadRequest, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: negative value %d", errBadRequest, n)
	}
	return n, nil
}
