package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/fibradoc/fibradoc/internal/events"
	"github.com/fibradoc/fibradoc/internal/httputil"
	"github.com/fibradoc/fibradoc/internal/store"
	"github.com/fibradoc/fibradoc/pkg/types"
)

// resource serves the five CRUD endpoints of one collection. M is the
// persistence model, W the wire type, C and P the create and patch bodies.
type resource[M, W, C, P any] struct {
	s       *Server
	entity  types.Entity
	repo    store.Repository[M]
	filters []string

	toWire   func(M) W
	idOf     func(M) string
	build    func(C) M
	patch    func(*M, P)
	validate func(*M) []types.ValidationError
	// checkCreate validates a new record against the rows it references.
	// It runs only when validate passes.
	checkCreate func(context.Context, *M) ([]types.ValidationError, error)

	// createDisabled answers POST with 405 and this detail when set.
	createDisabled string
	// beforeDelete may veto a delete after the record has been loaded.
	beforeDelete func(M) error
}

func (res *resource[M, W, C, P]) mount(r chi.Router, extra ...func(chi.Router)) {
	r.Route("/"+res.entity.Path, func(r chi.Router) {
		r.Get("/", res.handleList)
		r.Post("/", res.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", res.handleGet)
			r.Patch("/", res.handlePatch)
			r.Delete("/", res.handleDelete)
			for _, fn := range extra {
				fn(r)
			}
		})
	})
}

func (res *resource[M, W, C, P]) handleList(w http.ResponseWriter, r *http.Request) {
	page, limit, err := res.s.parsePagination(r)
	if err != nil {
		httputil.RespondProblem(w, r, http.StatusBadRequest, err.Error())
		return
	}

	query := r.URL.Query()
	opts := store.ListOptions{
		Limit:   limit,
		Offset:  (page - 1) * limit,
		Search:  strings.TrimSpace(query.Get("busca")),
		Filters: make(map[string]string, len(res.filters)),
	}
	for _, key := range res.filters {
		if v := strings.TrimSpace(query.Get(key)); v != "" {
			opts.Filters[key] = v
		}
	}

	items, total, err := res.repo.List(r.Context(), opts)
	if err != nil {
		res.respondStoreError(w, r, err, "listar")
		return
	}

	wires := make([]W, 0, len(items))
	for _, item := range items {
		wires = append(wires, res.toWire(item))
	}

	httputil.RespondJSON(w, http.StatusOK,
		types.EncodeList(res.entity.Path, wires, types.NewPagination(total, page, limit)))
}

func (res *resource[M, W, C, P]) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	item, err := res.repo.Get(r.Context(), id)
	if err != nil {
		res.respondStoreError(w, r, err, "buscar")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, res.toWire(item))
}

func (res *resource[M, W, C, P]) handleCreate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if res.createDisabled != "" {
		httputil.RespondProblem(w, r, http.StatusMethodNotAllowed, res.createDisabled)
		return
	}

	var req C
	fields, err := decodeBody(r, &req)
	if err != nil {
		httputil.RespondProblemf(w, r, http.StatusBadRequest, "Corpo da requisição inválido: %v", err)
		return
	}

	m := res.build(req)
	errs, err := res.checkNew(r.Context(), &m)
	if err != nil {
		status := res.respondStoreError(w, r, err, "criar")
		res.s.auditWrite(r, res.entity.Path, events.ActionCreated, "", fields, status, start, err)
		return
	}
	if len(errs) > 0 {
		httputil.RespondValidationProblem(w, r, res.entity.Noun.Failed("criar"), errs)
		res.s.auditWrite(r, res.entity.Path, events.ActionCreated, "", fields, http.StatusUnprocessableEntity, start, nil)
		return
	}

	created, err := res.repo.Create(r.Context(), m)
	if err != nil {
		status := res.respondStoreError(w, r, err, "criar")
		res.s.auditWrite(r, res.entity.Path, events.ActionCreated, "", fields, status, start, err)
		return
	}

	wire := res.toWire(created)
	id := res.idOf(created)
	w.Header().Set("Location", "/api/"+res.entity.Path+"/"+id)
	httputil.RespondJSON(w, http.StatusCreated,
		types.EncodeMutation(res.entity.Noun.Created(), res.entity.Key, &wire))

	res.s.publish(r, res.entity.Path, events.ActionCreated, id, wire)
	res.s.auditWrite(r, res.entity.Path, events.ActionCreated, id, fields, http.StatusCreated, start, nil)
}

func (res *resource[M, W, C, P]) handlePatch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")

	var req P
	fields, err := decodeBody(r, &req)
	if err != nil {
		httputil.RespondProblemf(w, r, http.StatusBadRequest, "Corpo da requisição inválido: %v", err)
		return
	}

	current, err := res.repo.Get(r.Context(), id)
	if err != nil {
		status := res.respondStoreError(w, r, err, "atualizar")
		res.s.auditWrite(r, res.entity.Path, events.ActionUpdated, id, fields, status, start, err)
		return
	}

	res.patch(&current, req)
	if errs := res.validate(&current); len(errs) > 0 {
		httputil.RespondValidationProblem(w, r, res.entity.Noun.Failed("atualizar"), errs)
		res.s.auditWrite(r, res.entity.Path, events.ActionUpdated, id, fields, http.StatusUnprocessableEntity, start, nil)
		return
	}

	updated, err := res.repo.Update(r.Context(), id, current)
	if err != nil {
		status := res.respondStoreError(w, r, err, "atualizar")
		res.s.auditWrite(r, res.entity.Path, events.ActionUpdated, id, fields, status, start, err)
		return
	}

	wire := res.toWire(updated)
	httputil.RespondJSON(w, http.StatusOK,
		types.EncodeMutation(res.entity.Noun.Updated(), res.entity.Key, &wire))

	res.s.publish(r, res.entity.Path, events.ActionUpdated, id, wire)
	res.s.auditWrite(r, res.entity.Path, events.ActionUpdated, id, fields, http.StatusOK, start, nil)
}

func (res *resource[M, W, C, P]) handleDelete(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")

	if res.beforeDelete != nil {
		current, err := res.repo.Get(r.Context(), id)
		if err == nil {
			err = res.beforeDelete(current)
		}
		if err != nil {
			status := res.respondStoreError(w, r, err, "excluir")
			res.s.auditWrite(r, res.entity.Path, events.ActionDeleted, id, nil, status, start, err)
			return
		}
	}

	if err := res.repo.Delete(r.Context(), id); err != nil {
		status := res.respondStoreError(w, r, err, "excluir")
		res.s.auditWrite(r, res.entity.Path, events.ActionDeleted, id, nil, status, start, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, types.EncodeMutation[W](res.entity.Noun.Deleted(), "", nil))

	res.s.publish(r, res.entity.Path, events.ActionDeleted, id, nil)
	res.s.auditWrite(r, res.entity.Path, events.ActionDeleted, id, nil, http.StatusOK, start, nil)
}

func (res *resource[M, W, C, P]) checkNew(ctx context.Context, m *M) ([]types.ValidationError, error) {
	if errs := res.validate(m); len(errs) > 0 {
		return errs, nil
	}
	if res.checkCreate == nil {
		return nil, nil
	}
	return res.checkCreate(ctx, m)
}

// respondStoreError maps store sentinels onto problem responses and returns
// the status written.
func (res *resource[M, W, C, P]) respondStoreError(w http.ResponseWriter, r *http.Request, err error, verb string) int {
	return respondStoreError(w, r, err, res.entity.Noun, verb)
}

func respondStoreError(w http.ResponseWriter, r *http.Request, err error, noun types.Noun, verb string) int {
	var status int
	var detail string
	switch {
	case errors.Is(err, store.ErrNotFound):
		status, detail = http.StatusNotFound, noun.NotFound()
	case errors.Is(err, store.ErrHasDependents):
		status, detail = http.StatusConflict, noun.InUse()
	case errors.Is(err, store.ErrConflict):
		status, detail = http.StatusConflict, noun.Failed(verb)+": registro duplicado"
	case errors.Is(err, store.ErrLinkConflict):
		status, detail = http.StatusConflict, noun.Failed(verb)+": porta ou cliente já vinculado"
	case errors.Is(err, store.ErrCapacityExceeded):
		status, detail = http.StatusConflict, noun.Failed(verb)+": capacidade esgotada"
	case errors.Is(err, store.ErrInvalidReference):
		status, detail = http.StatusUnprocessableEntity, noun.Failed(verb)+": referência inválida"
	case errors.Is(err, store.ErrInvalidFilter):
		status, detail = http.StatusBadRequest, err.Error()
	default:
		log.Ctx(r.Context()).Error().Err(err).Str("handler", verb+" "+noun.Name).Msg("store operation failed")
		status, detail = http.StatusInternalServerError, noun.Failed(verb)
	}
	httputil.RespondProblem(w, r, status, detail)
	return status
}

// parsePagination reads the 1-based pagina and limite query parameters.
// Pages beyond the last one are accepted and echoed back.
func (s *Server) parsePagination(r *http.Request) (int, int, error) {
	page := 1
	limit := s.cfg.DefaultPageSize

	query := r.URL.Query()
	if value := strings.TrimSpace(query.Get("pagina")); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed < 1 {
			return 0, 0, errors.New("parâmetro pagina inválido: " + value)
		}
		page = parsed
	}
	if value := strings.TrimSpace(query.Get("limite")); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed < 1 {
			return 0, 0, errors.New("parâmetro limite inválido: " + value)
		}
		limit = min(parsed, s.cfg.MaxPageSize)
	}
	return page, limit, nil
}

// decodeBody strictly decodes the request into v and also returns the raw
// top-level fields for the audit log.
func decodeBody(r *http.Request, v any) (map[string]any, error) {
	if r.Body == nil {
		return nil, errors.New("request body is empty")
	}
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err := httputil.DecodeJSON(r, v); err != nil {
		return nil, err
	}

	var fields map[string]any
	_ = json.Unmarshal(raw, &fields)
	return fields, nil
}
