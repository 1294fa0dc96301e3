package server

import (
	"strings"

	"github.com/fibradoc/fibradoc/internal/model"
	"github.com/fibradoc/fibradoc/pkg/fiber"
	"github.com/fibradoc/fibradoc/pkg/geo"
	"github.com/fibradoc/fibradoc/pkg/types"
)

// setRef applies a patch to an optional reference: nil leaves it alone and
// an empty string clears it.
func setRef(dst **string, patch *string) {
	if patch == nil {
		return
	}
	if v := strings.TrimSpace(*patch); v != "" {
		*dst = &v
		return
	}
	*dst = nil
}

func set[T any](dst *T, patch *T) {
	if patch != nil {
		*dst = *patch
	}
}

func trimRef(ref *string) *string {
	if ref == nil {
		return nil
	}
	v := strings.TrimSpace(*ref)
	if v == "" {
		return nil
	}
	return &v
}

// ---------------------------------------------------------------------------
// Cities
// ---------------------------------------------------------------------------

func toCity(m model.City) types.City {
	counts := m.Counts
	return types.City{
		ID:          m.ID,
		Name:        m.Name,
		State:       m.State,
		Coordinates: geo.Point{Lat: m.Lat, Lng: m.Lng},
		Count:       &counts,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func buildCity(req types.CreateCityRequest) model.City {
	return model.City{
		Name:  strings.TrimSpace(req.Name),
		State: strings.ToUpper(strings.TrimSpace(req.State)),
		Lat:   req.Coordinates.Lat,
		Lng:   req.Coordinates.Lng,
	}
}

func patchCity(m *model.City, req types.PatchCityRequest) {
	set(&m.Name, req.Name)
	if req.State != nil {
		m.State = strings.ToUpper(strings.TrimSpace(*req.State))
	}
	if req.Coordinates != nil {
		m.Lat, m.Lng = req.Coordinates.Lat, req.Coordinates.Lng
	}
}

// ---------------------------------------------------------------------------
// Boxes
// ---------------------------------------------------------------------------

func toBox(m model.Box) types.Box {
	counts := m.Counts
	routeIDs := m.RouteIDs
	if routeIDs == nil {
		routeIDs = []string{}
	}
	return types.Box{
		ID:          m.ID,
		Name:        m.Name,
		Type:        m.Type,
		Model:       m.Model,
		Capacity:    m.Capacity,
		Coordinates: geo.Point{Lat: m.Lat, Lng: m.Lng},
		Notes:       m.Notes,
		CityID:      m.CityID,
		RouteIDs:    routeIDs,
		Count:       &counts,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func buildBox(req types.CreateBoxRequest) model.Box {
	return model.Box{
		Name:     strings.TrimSpace(req.Name),
		Type:     types.BoxType(strings.ToUpper(strings.TrimSpace(string(req.Type)))),
		Model:    strings.TrimSpace(req.Model),
		Capacity: req.Capacity,
		Lat:      req.Coordinates.Lat,
		Lng:      req.Coordinates.Lng,
		Notes:    req.Notes,
		CityID:   strings.TrimSpace(req.CityID),
		RouteIDs: uniqueIDs(req.RouteIDs),
	}
}

func patchBox(m *model.Box, req types.PatchBoxRequest) {
	set(&m.Name, req.Name)
	set(&m.Model, req.Model)
	set(&m.Notes, req.Notes)
	set(&m.CityID, req.CityID)
	if req.Coordinates != nil {
		m.Lat, m.Lng = req.Coordinates.Lat, req.Coordinates.Lng
	}
	if req.RouteIDs != nil {
		m.RouteIDs = uniqueIDs(*req.RouteIDs)
	}
}

func uniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// ---------------------------------------------------------------------------
// Ports
// ---------------------------------------------------------------------------

func toPort(m model.Port) types.Port {
	return types.Port{
		ID:         m.ID,
		Number:     m.Number,
		Status:     m.Status,
		ClientID:   m.ClientID,
		SplitterID: m.SplitterID,
		BoxID:      m.BoxID,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func buildPort(req types.CreatePortRequest) model.Port {
	p := model.Port{
		Number:     req.Number,
		Status:     req.Status,
		ClientID:   trimRef(req.ClientID),
		SplitterID: trimRef(req.SplitterID),
		BoxID:      strings.TrimSpace(req.BoxID),
	}
	if p.Status == "" {
		p.Status = types.PortAvailable
	}
	p.Normalize()
	return p
}

func patchPort(m *model.Port, req types.PatchPortRequest) {
	set(&m.Status, req.Status)
	setRef(&m.ClientID, req.ClientID)
	setRef(&m.SplitterID, req.SplitterID)
	m.Normalize()
}

func portFromInput(boxID string, in types.PortInput) model.Port {
	p := model.Port{
		Number:     in.Number,
		Status:     in.Status,
		ClientID:   trimRef(in.ClientID),
		SplitterID: trimRef(in.SplitterID),
		BoxID:      boxID,
	}
	p.Normalize()
	return p
}

// ---------------------------------------------------------------------------
// Trays
// ---------------------------------------------------------------------------

func toTray(m model.Tray) types.Tray {
	counts := m.Counts
	return types.Tray{
		ID:        m.ID,
		Number:    m.Number,
		Capacity:  m.Capacity,
		BoxID:     m.BoxID,
		Count:     &counts,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func buildTray(req types.CreateTrayRequest) model.Tray {
	return model.Tray{Number: req.Number, Capacity: types.TrayCapacity, BoxID: req.BoxID}
}

func patchTray(m *model.Tray, req types.PatchTrayRequest) {
	set(&m.Number, req.Number)
}

// ---------------------------------------------------------------------------
// Splitters
// ---------------------------------------------------------------------------

func toSplitter(m model.Splitter) types.Splitter {
	return types.Splitter{
		ID:                m.ID,
		Name:              m.Name,
		Type:              m.Type,
		Serving:           m.Serving,
		BoxID:             m.BoxID,
		InputCapillaryID:  m.InputCapillaryID,
		OutputCapillaryID: m.OutputCapillaryID,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func buildSplitter(req types.CreateSplitterRequest) model.Splitter {
	return model.Splitter{
		Name:              strings.TrimSpace(req.Name),
		Type:              req.Type,
		Serving:           req.Serving,
		BoxID:             strings.TrimSpace(req.BoxID),
		InputCapillaryID:  trimRef(req.InputCapillaryID),
		OutputCapillaryID: trimRef(req.OutputCapillaryID),
	}
}

func patchSplitter(m *model.Splitter, req types.PatchSplitterRequest) {
	set(&m.Name, req.Name)
	set(&m.Type, req.Type)
	set(&m.Serving, req.Serving)
	setRef(&m.InputCapillaryID, req.InputCapillaryID)
	setRef(&m.OutputCapillaryID, req.OutputCapillaryID)
}

// ---------------------------------------------------------------------------
// Capillaries
// ---------------------------------------------------------------------------

func toCapillary(m model.Capillary) types.Capillary {
	counts := m.Counts
	return types.Capillary{
		ID:        m.ID,
		Number:    m.Number,
		Type:      m.Type,
		Length:    m.Length,
		Status:    m.Status,
		Power:     m.Power,
		RouteID:   m.RouteID,
		TubeID:    m.TubeID,
		Count:     &counts,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func buildCapillary(req types.CreateCapillaryRequest) model.Capillary {
	return model.Capillary{
		Number:  req.Number,
		Type:    strings.TrimSpace(req.Type),
		Length:  req.Length,
		Status:  strings.TrimSpace(req.Status),
		Power:   req.Power,
		RouteID: trimRef(req.RouteID),
		TubeID:  trimRef(req.TubeID),
	}
}

func patchCapillary(m *model.Capillary, req types.PatchCapillaryRequest) {
	set(&m.Number, req.Number)
	set(&m.Type, req.Type)
	set(&m.Length, req.Length)
	set(&m.Status, req.Status)
	set(&m.Power, req.Power)
	setRef(&m.RouteID, req.RouteID)
	setRef(&m.TubeID, req.TubeID)
}

// ---------------------------------------------------------------------------
// Routes
// ---------------------------------------------------------------------------

func toRoute(m model.Route) types.Route {
	counts := m.Counts
	path := m.Path
	if path == nil {
		path = []geo.Point{}
	}
	return types.Route{
		ID:           m.ID,
		Name:         m.Name,
		CableType:    m.CableType,
		Manufacturer: m.Manufacturer,
		Status:       m.Status,
		Distance:     m.Distance,
		CrossingType: m.CrossingType,
		Coordinates:  path,
		Color:        m.Color,
		Notes:        m.Notes,
		CityID:       m.CityID,
		Count:        &counts,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// buildRoute fills the distance from the path and defaults the colour from
// the cable palette.
func buildRoute(req types.CreateRouteRequest) model.Route {
	m := model.Route{
		Name:         strings.TrimSpace(req.Name),
		CableType:    req.CableType,
		Manufacturer: strings.TrimSpace(req.Manufacturer),
		Status:       strings.TrimSpace(req.Status),
		CrossingType: req.CrossingType,
		Path:         req.Coordinates,
		Color:        strings.TrimSpace(req.Color),
		Notes:        req.Notes,
		CityID:       strings.TrimSpace(req.CityID),
	}
	m.Distance = geo.PathLength(m.Path)
	if m.Color == "" {
		m.Color = fiber.CableColor(m.CableType)
	}
	return m
}

func patchRoute(m *model.Route, req types.PatchRouteRequest) {
	set(&m.Name, req.Name)
	set(&m.CableType, req.CableType)
	set(&m.Manufacturer, req.Manufacturer)
	set(&m.Status, req.Status)
	set(&m.CrossingType, req.CrossingType)
	set(&m.Color, req.Color)
	set(&m.Notes, req.Notes)
	set(&m.CityID, req.CityID)
	if req.Coordinates != nil {
		m.Path = *req.Coordinates
		m.Distance = geo.PathLength(m.Path)
	}
}

// ---------------------------------------------------------------------------
// Tubes
// ---------------------------------------------------------------------------

func toTube(m model.Tube) types.Tube {
	counts := m.Counts
	return types.Tube{
		ID:        m.ID,
		Number:    m.Number,
		Size:      m.Size,
		Color:     m.Color,
		RouteID:   m.RouteID,
		Count:     &counts,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func buildTube(req types.CreateTubeRequest) model.Tube {
	return model.Tube{
		Number:  req.Number,
		Size:    req.Size,
		Color:   strings.TrimSpace(req.Color),
		RouteID: strings.TrimSpace(req.RouteID),
	}
}

func patchTube(m *model.Tube, req types.PatchTubeRequest) {
	set(&m.Number, req.Number)
	set(&m.Size, req.Size)
	set(&m.Color, req.Color)
}

// ---------------------------------------------------------------------------
// Fusions
// ---------------------------------------------------------------------------

func toFusion(m model.Fusion) types.Fusion {
	return types.Fusion{
		ID:                m.ID,
		Type:              m.Type,
		SourceCapillaryID: m.SourceCapillaryID,
		TargetCapillaryID: m.TargetCapillaryID,
		SplitterID:        m.SplitterID,
		SplitterPort:      m.SplitterPort,
		ClientID:          m.ClientID,
		Status:            m.Status,
		Loss:              m.Loss,
		Power:             m.Power,
		Position:          m.Position,
		BoxID:             m.BoxID,
		TrayID:            m.TrayID,
		Notes:             m.Notes,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func buildFusion(req types.CreateFusionRequest) model.Fusion {
	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = "ativa"
	}
	return model.Fusion{
		Type:              req.Type,
		SourceCapillaryID: trimRef(req.SourceCapillaryID),
		TargetCapillaryID: trimRef(req.TargetCapillaryID),
		SplitterID:        trimRef(req.SplitterID),
		SplitterPort:      req.SplitterPort,
		ClientID:          trimRef(req.ClientID),
		Status:            status,
		Loss:              req.Loss,
		Power:             req.Power,
		Position:          req.Position,
		BoxID:             strings.TrimSpace(req.BoxID),
		TrayID:            trimRef(req.TrayID),
		Notes:             req.Notes,
	}
}

func patchFusion(m *model.Fusion, req types.PatchFusionRequest) {
	set(&m.Status, req.Status)
	if req.Loss != nil {
		m.Loss = req.Loss
	}
	if req.Power != nil {
		m.Power = req.Power
	}
	if req.Position != nil {
		m.Position = req.Position
	}
	setRef(&m.TrayID, req.TrayID)
	set(&m.Notes, req.Notes)
}

// ---------------------------------------------------------------------------
// Clients
// ---------------------------------------------------------------------------

func toClient(m model.Client) types.Customer {
	return types.Customer{
		ID:       m.ID,
		Name:     m.Name,
		Email:    m.Email,
		Phone:    m.Phone,
		Document: m.Document,
		Address: types.Address{
			Street:       m.Street,
			Number:       m.StreetNumber,
			Neighborhood: m.Neighborhood,
			City:         m.City,
			PostalCode:   m.PostalCode,
		},
		Power:        m.Power,
		WifiSSID:     m.WifiSSID,
		WifiPassword: m.WifiPassword,
		NeutraID:     m.NeutraID,
		PortID:       m.PortID,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func buildClient(req types.CreateClientRequest) model.Client {
	m := model.Client{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.TrimSpace(req.Email),
		Phone:        strings.TrimSpace(req.Phone),
		Document:     strings.TrimSpace(req.Document),
		Power:        req.Power,
		WifiSSID:     req.WifiSSID,
		WifiPassword: req.WifiPassword,
		NeutraID:     trimRef(req.NeutraID),
		PortID:       trimRef(req.PortID),
	}
	applyAddress(&m, req.Address)
	return m
}

func patchClient(m *model.Client, req types.PatchClientRequest) {
	set(&m.Name, req.Name)
	set(&m.Email, req.Email)
	set(&m.Phone, req.Phone)
	set(&m.Document, req.Document)
	if req.Address != nil {
		applyAddress(m, *req.Address)
	}
	if req.Power != nil {
		m.Power = req.Power
	}
	set(&m.WifiSSID, req.WifiSSID)
	set(&m.WifiPassword, req.WifiPassword)
	setRef(&m.NeutraID, req.NeutraID)
	setRef(&m.PortID, req.PortID)
}

func applyAddress(m *model.Client, a types.Address) {
	m.Street = strings.TrimSpace(a.Street)
	m.StreetNumber = strings.TrimSpace(a.Number)
	m.Neighborhood = strings.TrimSpace(a.Neighborhood)
	m.City = strings.TrimSpace(a.City)
	m.PostalCode = strings.TrimSpace(a.PostalCode)
}
