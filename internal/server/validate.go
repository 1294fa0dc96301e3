package server

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fibradoc/fibradoc/internal/model"
	"github.com/fibradoc/fibradoc/internal/store"
	"github.com/fibradoc/fibradoc/pkg/geo"
	"github.com/fibradoc/fibradoc/pkg/types"
)

const (
	msgRequired    = "campo obrigatório"
	msgPositive    = "deve ser maior que zero"
	msgPortsOnCTO  = "Apenas caixas CTO possuem portas"
	msgBoxNotFound = "caixa não encontrada"
)

// fieldErrors collects validation failures in field order.
type fieldErrors []types.ValidationError

func (e *fieldErrors) add(field, message string) {
	*e = append(*e, types.ValidationError{Field: field, Message: message})
}

func (e *fieldErrors) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		e.add(field, msgRequired)
	}
}

func (e *fieldErrors) positive(field string, value int) {
	if value <= 0 {
		e.add(field, msgPositive)
	}
}

func (e *fieldErrors) point(field string, p geo.Point) {
	if !p.Valid() {
		e.add(field, "coordenadas inválidas")
	}
}

func validateCity(m *model.City) []types.ValidationError {
	var errs fieldErrors
	errs.required("nome", m.Name)
	errs.required("estado", m.State)
	errs.point("coordenadas", geo.Point{Lat: m.Lat, Lng: m.Lng})
	return errs
}

func validateBox(m *model.Box) []types.ValidationError {
	var errs fieldErrors
	errs.required("nome", m.Name)
	if !m.Type.Valid() {
		errs.add("tipo", "tipo deve ser CTO ou CEO")
	}
	errs.positive("capacidade", m.Capacity)
	errs.point("coordenadas", geo.Point{Lat: m.Lat, Lng: m.Lng})
	errs.required("cidadeId", m.CityID)
	return errs
}

func validatePort(m *model.Port) []types.ValidationError {
	var errs fieldErrors
	errs.positive("numero", m.Number)
	if !m.Status.Valid() {
		errs.add("status", "status inválido")
	}
	errs.required("caixaId", m.BoxID)
	return errs
}

// checkPortBox checks a single port against its box: the box must exist,
// be a CTO and have room for the port number.
func (s *Server) checkPortBox(ctx context.Context, m *model.Port) ([]types.ValidationError, error) {
	box, err := s.store.Boxes().Get(ctx, m.BoxID)
	if errors.Is(err, store.ErrNotFound) {
		return []types.ValidationError{{Field: "caixaId", Message: msgBoxNotFound}}, nil
	}
	if err != nil {
		return nil, err
	}

	var errs fieldErrors
	if box.Type != types.BoxTypeCTO {
		errs.add("caixaId", msgPortsOnCTO)
	} else if m.Number > box.Capacity {
		errs.add("numero", fmt.Sprintf("deve estar entre 1 e %d", box.Capacity))
	}
	return errs, nil
}

// validatePortInput checks one entry of a batch upsert against the box
// capacity. Fields are prefixed with the entry index.
func validatePortInput(errs *fieldErrors, i int, in types.PortInput, capacity int) {
	prefix := fmt.Sprintf("portas[%d].", i)
	if in.Number < 1 || in.Number > capacity {
		errs.add(prefix+"numero", fmt.Sprintf("deve estar entre 1 e %d", capacity))
	}
	if !in.Status.Valid() {
		errs.add(prefix+"status", "status inválido")
	}
}

func validateTray(m *model.Tray) []types.ValidationError {
	var errs fieldErrors
	errs.positive("numero", m.Number)
	return errs
}

func validateSplitter(m *model.Splitter) []types.ValidationError {
	var errs fieldErrors
	errs.required("nome", m.Name)
	if m.Type.Outputs() == 0 {
		errs.add("tipo", "tipo deve ser 1/2, 1/8 ou 1/16")
	}
	errs.required("caixaId", m.BoxID)
	return errs
}

func validateCapillary(m *model.Capillary) []types.ValidationError {
	var errs fieldErrors
	errs.positive("numero", m.Number)
	if m.Length < 0 {
		errs.add("comprimento", "não pode ser negativo")
	}
	return errs
}

func validateRoute(m *model.Route) []types.ValidationError {
	var errs fieldErrors
	errs.required("nome", m.Name)
	if !types.ValidCableType(m.CableType) {
		errs.add("tipoCabo", "tipo de cabo deve ser 6, 12, 24, 48 ou 96")
	}
	if !m.CrossingType.Valid() {
		errs.add("tipoPassagem", "tipo de passagem inválido")
	}
	errs.required("cidadeId", m.CityID)
	for i, p := range m.Path {
		errs.point(fmt.Sprintf("coordenadas[%d]", i), p)
	}
	return errs
}

func validateTube(m *model.Tube) []types.ValidationError {
	var errs fieldErrors
	errs.positive("numero", m.Number)
	errs.positive("tamanho", m.Size)
	errs.required("rotaId", m.RouteID)
	return errs
}

func validateFusion(m *model.Fusion) []types.ValidationError {
	var errs fieldErrors
	errs.required("caixaId", m.BoxID)

	if m.Position != nil {
		if *m.Position < 1 || *m.Position > types.TrayCapacity {
			errs.add("posicao", fmt.Sprintf("deve estar entre 1 e %d", types.TrayCapacity))
		}
		if m.TrayID == nil {
			errs.add("bandejaId", "obrigatório quando a posição é informada")
		}
	}

	switch m.Type {
	case types.FusionCapillaryCapillary:
		requiredRef(&errs, "capilarOrigemId", m.SourceCapillaryID)
		requiredRef(&errs, "capilarDestinoId", m.TargetCapillaryID)
	case types.FusionCapillarySplitter:
		requiredRef(&errs, "capilarOrigemId", m.SourceCapillaryID)
		requiredRef(&errs, "spliterId", m.SplitterID)
	case types.FusionSplitterClient:
		requiredRef(&errs, "spliterId", m.SplitterID)
		requiredRef(&errs, "clienteId", m.ClientID)
	default:
		errs.add("tipo", "tipo de fusão inválido")
	}
	return errs
}

func requiredRef(errs *fieldErrors, field string, ref *string) {
	if ref == nil {
		errs.add(field, msgRequired)
	}
}

func validateClient(m *model.Client) []types.ValidationError {
	var errs fieldErrors
	errs.required("nome", m.Name)
	if m.Email != "" && !strings.Contains(m.Email, "@") {
		errs.add("email", "e-mail inválido")
	}
	return errs
}
