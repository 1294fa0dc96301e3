package server

import (
	"github.com/fibradoc/fibradoc/internal/model"
	"github.com/fibradoc/fibradoc/internal/store"
	"github.com/fibradoc/fibradoc/pkg/fiber"
	"github.com/fibradoc/fibradoc/pkg/types"
)

func (s *Server) cityResource() *resource[model.City, types.City, types.CreateCityRequest, types.PatchCityRequest] {
	return &resource[model.City, types.City, types.CreateCityRequest, types.PatchCityRequest]{
		s:        s,
		entity:   types.EntityCity,
		repo:     s.store.Cities(),
		filters:  []string{"estado"},
		toWire:   toCity,
		idOf:     func(m model.City) string { return m.ID },
		build:    buildCity,
		patch:    patchCity,
		validate: validateCity,
	}
}

func (s *Server) boxResource() *resource[model.Box, types.Box, types.CreateBoxRequest, types.PatchBoxRequest] {
	return &resource[model.Box, types.Box, types.CreateBoxRequest, types.PatchBoxRequest]{
		s:        s,
		entity:   types.EntityBox,
		repo:     s.store.Boxes(),
		filters:  []string{"cidadeId", "rotaId", "tipo"},
		toWire:   toBox,
		idOf:     func(m model.Box) string { return m.ID },
		build:    buildBox,
		patch:    patchBox,
		validate: validateBox,
		beforeDelete: func(m model.Box) error {
			if !fiber.BoxDeletable(toBox(m)) {
				return store.ErrHasDependents
			}
			return nil
		},
	}
}

func (s *Server) portResource() *resource[model.Port, types.Port, types.CreatePortRequest, types.PatchPortRequest] {
	return &resource[model.Port, types.Port, types.CreatePortRequest, types.PatchPortRequest]{
		s:           s,
		entity:      types.EntityPort,
		repo:        s.store.Ports(),
		filters:     []string{"caixaId", "status", "clienteId"},
		toWire:      toPort,
		idOf:        func(m model.Port) string { return m.ID },
		build:       buildPort,
		patch:       patchPort,
		validate:    validatePort,
		checkCreate: s.checkPortBox,
	}
}

func (s *Server) trayResource() *resource[model.Tray, types.Tray, types.CreateTrayRequest, types.PatchTrayRequest] {
	return &resource[model.Tray, types.Tray, types.CreateTrayRequest, types.PatchTrayRequest]{
		s:              s,
		entity:         types.EntityTray,
		repo:           s.store.Trays(),
		filters:        []string{"caixaId"},
		toWire:         toTray,
		idOf:           func(m model.Tray) string { return m.ID },
		build:          buildTray,
		patch:          patchTray,
		validate:       validateTray,
		createDisabled: "Bandejas são criadas junto com a caixa CEO",
	}
}

func (s *Server) splitterResource() *resource[model.Splitter, types.Splitter, types.CreateSplitterRequest, types.PatchSplitterRequest] {
	return &resource[model.Splitter, types.Splitter, types.CreateSplitterRequest, types.PatchSplitterRequest]{
		s:        s,
		entity:   types.EntitySplitter,
		repo:     s.store.Splitters(),
		filters:  []string{"caixaId", "tipo"},
		toWire:   toSplitter,
		idOf:     func(m model.Splitter) string { return m.ID },
		build:    buildSplitter,
		patch:    patchSplitter,
		validate: validateSplitter,
	}
}

func (s *Server) capillaryResource() *resource[model.Capillary, types.Capillary, types.CreateCapillaryRequest, types.PatchCapillaryRequest] {
	return &resource[model.Capillary, types.Capillary, types.CreateCapillaryRequest, types.PatchCapillaryRequest]{
		s:        s,
		entity:   types.EntityCapillary,
		repo:     s.store.Capillaries(),
		filters:  []string{"rotaId", "tuboId", "status", "tipo"},
		toWire:   toCapillary,
		idOf:     func(m model.Capillary) string { return m.ID },
		build:    buildCapillary,
		patch:    patchCapillary,
		validate: validateCapillary,
		beforeDelete: func(m model.Capillary) error {
			if !fiber.CapillaryDeletable(toCapillary(m)) {
				return store.ErrHasDependents
			}
			return nil
		},
	}
}

func (s *Server) routeResource() *resource[model.Route, types.Route, types.CreateRouteRequest, types.PatchRouteRequest] {
	return &resource[model.Route, types.Route, types.CreateRouteRequest, types.PatchRouteRequest]{
		s:        s,
		entity:   types.EntityRoute,
		repo:     s.store.Routes(),
		filters:  []string{"cidadeId", "tipoCabo", "status", "tipoPassagem"},
		toWire:   toRoute,
		idOf:     func(m model.Route) string { return m.ID },
		build:    buildRoute,
		patch:    patchRoute,
		validate: validateRoute,
	}
}

func (s *Server) tubeResource() *resource[model.Tube, types.Tube, types.CreateTubeRequest, types.PatchTubeRequest] {
	return &resource[model.Tube, types.Tube, types.CreateTubeRequest, types.PatchTubeRequest]{
		s:        s,
		entity:   types.EntityTube,
		repo:     s.store.Tubes(),
		filters:  []string{"rotaId"},
		toWire:   toTube,
		idOf:     func(m model.Tube) string { return m.ID },
		build:    buildTube,
		patch:    patchTube,
		validate: validateTube,
	}
}

func (s *Server) fusionResource() *resource[model.Fusion, types.Fusion, types.CreateFusionRequest, types.PatchFusionRequest] {
	return &resource[model.Fusion, types.Fusion, types.CreateFusionRequest, types.PatchFusionRequest]{
		s:        s,
		entity:   types.EntityFusion,
		repo:     s.store.Fusions(),
		filters:  []string{"caixaId", "bandejaId", "tipo", "status"},
		toWire:   toFusion,
		idOf:     func(m model.Fusion) string { return m.ID },
		build:    buildFusion,
		patch:    patchFusion,
		validate: validateFusion,
	}
}

func (s *Server) clientResource() *resource[model.Client, types.Customer, types.CreateClientRequest, types.PatchClientRequest] {
	return &resource[model.Client, types.Customer, types.CreateClientRequest, types.PatchClientRequest]{
		s:        s,
		entity:   types.EntityClient,
		repo:     s.store.Clients(),
		filters:  []string{"portaId", "neutraId", "semPorta"},
		toWire:   toClient,
		idOf:     func(m model.Client) string { return m.ID },
		build:    buildClient,
		patch:    patchClient,
		validate: validateClient,
	}
}
