package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fibradoc/fibradoc/internal/events"
	"github.com/fibradoc/fibradoc/internal/httputil"
	"github.com/fibradoc/fibradoc/internal/model"
	"github.com/fibradoc/fibradoc/internal/store"
	"github.com/fibradoc/fibradoc/pkg/fiber"
	"github.com/fibradoc/fibradoc/pkg/types"
)

const portsUpdatedMessage = "Portas atualizadas com sucesso"

// handleReplaceBoxPorts handles PUT /api/caixas/{id}/portas.
func (s *Server) handleReplaceBoxPorts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	boxID := chi.URLParam(r, "id")
	noun := types.EntityPort.Noun

	var req types.ReplacePortsRequest
	fields, err := decodeBody(r, &req)
	if err != nil {
		httputil.RespondProblemf(w, r, http.StatusBadRequest, "Corpo da requisição inválido: %v", err)
		return
	}

	box, err := s.store.Boxes().Get(r.Context(), boxID)
	if err != nil {
		status := respondStoreError(w, r, err, types.EntityBox.Noun, "buscar")
		s.auditWrite(r, types.EntityPort.Path, events.ActionUpdated, boxID, fields, status, start, err)
		return
	}
	if box.Type != types.BoxTypeCTO {
		httputil.RespondProblem(w, r, http.StatusUnprocessableEntity, msgPortsOnCTO)
		s.auditWrite(r, types.EntityPort.Path, events.ActionUpdated, boxID, fields, http.StatusUnprocessableEntity, start, nil)
		return
	}

	var errs fieldErrors
	seen := make(map[int]struct{}, len(req.Ports))
	ports := make([]model.Port, 0, len(req.Ports))
	for i, in := range req.Ports {
		validatePortInput(&errs, i, in, box.Capacity)
		if _, dup := seen[in.Number]; dup {
			errs.add("portas", "número de porta repetido")
		}
		seen[in.Number] = struct{}{}
		ports = append(ports, portFromInput(box.ID, in))
	}
	if len(errs) > 0 {
		httputil.RespondValidationProblem(w, r, noun.Failed("atualizar"), errs)
		s.auditWrite(r, types.EntityPort.Path, events.ActionUpdated, boxID, fields, http.StatusUnprocessableEntity, start, nil)
		return
	}

	stored, err := s.store.Ports().ReplaceForBox(r.Context(), box.ID, ports)
	if err != nil {
		status := respondStoreError(w, r, err, noun, "atualizar")
		s.auditWrite(r, types.EntityPort.Path, events.ActionUpdated, boxID, fields, status, start, err)
		return
	}

	wires := make([]types.Port, 0, len(stored))
	for _, p := range stored {
		wires = append(wires, toPort(p))
	}
	httputil.RespondJSON(w, http.StatusOK, types.ReplacePortsResponse{Message: portsUpdatedMessage, Ports: wires})

	s.publish(r, types.EntityPort.Path, events.ActionUpdated, box.ID, wires)
	s.auditWrite(r, types.EntityPort.Path, events.ActionUpdated, box.ID, fields, http.StatusOK, start, nil)
}

// handleBoxOccupancy handles GET /api/caixas/{id}/ocupacao.
func (s *Server) handleBoxOccupancy(w http.ResponseWriter, r *http.Request) {
	box, err := s.store.Boxes().Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, r, err, types.EntityBox.Noun, "buscar")
		return
	}

	var wirePorts []types.Port
	if box.Type == types.BoxTypeCTO {
		ports, _, err := s.store.Ports().List(r.Context(), store.ListOptions{
			Filters: map[string]string{"caixaId": box.ID},
		})
		if err != nil {
			respondStoreError(w, r, err, types.EntityPort.Noun, "listar")
			return
		}
		wirePorts = make([]types.Port, 0, len(ports))
		for _, p := range ports {
			wirePorts = append(wirePorts, toPort(p))
		}
	}

	httputil.RespondJSON(w, http.StatusOK, fiber.BoxOccupancy(toBox(box), wirePorts))
}
