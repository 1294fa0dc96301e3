// Package mapview holds the in-memory state behind the network map: the
// drawn routes, boxes and fusion points, layer visibility, active filters
// and the cable type selected for drawing.
package mapview

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/fibradoc/fibradoc/pkg/fiber"
	"github.com/fibradoc/fibradoc/pkg/geo"
	"github.com/fibradoc/fibradoc/pkg/types"
)

// DefaultCableType is the fiber count selected for new routes.
const DefaultCableType = 12

// LocalIDPrefix marks identifiers that exist only in map state.
const LocalIDPrefix = "local-"

// FusionPoint is a splice location drawn on the map.
type FusionPoint struct {
	ID          string    `json:"id"`
	Name        string    `json:"nome"`
	Coordinates geo.Point `json:"coordenadas"`
	BoxID       string    `json:"caixaId,omitempty"`
	Notes       string    `json:"observacoes,omitempty"`
}

// Layers holds the visibility of each map layer.
type Layers struct {
	Boxes   bool `json:"caixas"`
	Routes  bool `json:"rotas"`
	Fusions bool `json:"fusoes"`
}

// LayerPatch is a partial Layers update; nil fields are left unchanged.
type LayerPatch struct {
	Boxes   *bool
	Routes  *bool
	Fusions *bool
}

// Filters restricts what Visible returns. Zero values do not filter.
type Filters struct {
	BoxType   types.BoxType `json:"tipoCaixa,omitempty"`
	CableType int           `json:"tipoCabo,omitempty"`
	CityID    string        `json:"cidadeId,omitempty"`
}

// FilterPatch is a partial Filters update; nil fields are left unchanged.
type FilterPatch struct {
	BoxType   *types.BoxType
	CableType *int
	CityID    *string
}

// SearchResult holds the routes and boxes matching a map search.
type SearchResult struct {
	Routes []types.Route
	Boxes  []types.Box
}

// View is the filtered content of the visible layers.
type View struct {
	Routes  []types.Route
	Boxes   []types.Box
	Fusions []FusionPoint
}

// Option configures a State.
type Option func(*State)

// WithIDGenerator replaces the local identifier generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *State) { s.newID = gen }
}

// State is the map aggregator. It is safe for concurrent use.
type State struct {
	mu        sync.RWMutex
	routes    []types.Route
	boxes     []types.Box
	fusions   []FusionPoint
	layers    Layers
	filters   Filters
	cableType int
	newID     func() string
}

// New returns an empty map state with every layer visible.
func New(opts ...Option) *State {
	s := &State{
		layers:    Layers{Boxes: true, Routes: true, Fusions: true},
		cableType: DefaultCableType,
		newID:     func() string { return LocalIDPrefix + uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ComputeRouteDistance returns the haversine length of path in whole meters.
func ComputeRouteDistance(path []geo.Point) float64 {
	return geo.PathLength(path)
}

// AddRoute appends r under a new local ID. Distance is computed from the
// path when unset, and Color defaults to the cable colour.
func (s *State) AddRoute(r types.Route) types.Route {
	if r.Distance == 0 {
		r.Distance = ComputeRouteDistance(r.Coordinates)
	}
	if r.Color == "" {
		r.Color = fiber.CableColor(r.CableType)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.newID()
	s.routes = append(s.routes, r)
	return r
}

// AddBox appends b under a new local ID.
func (s *State) AddBox(b types.Box) types.Box {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = s.newID()
	s.boxes = append(s.boxes, b)
	return b
}

// AddFusionPoint appends p under a new local ID.
func (s *State) AddFusionPoint(p FusionPoint) FusionPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.newID()
	s.fusions = append(s.fusions, p)
	return p
}

// Routes returns a copy of the route collection.
func (s *State) Routes() []types.Route {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.Route{}, s.routes...)
}

// Boxes returns a copy of the box collection.
func (s *State) Boxes() []types.Box {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.Box{}, s.boxes...)
}

// FusionPoints returns a copy of the fusion point collection.
func (s *State) FusionPoints() []FusionPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]FusionPoint{}, s.fusions...)
}

// Layers returns the layer visibility.
func (s *State) Layers() Layers {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.layers
}

// UpdateVisibleLayers merges p into the layer visibility.
func (s *State) UpdateVisibleLayers(p LayerPatch) Layers {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.Boxes != nil {
		s.layers.Boxes = *p.Boxes
	}
	if p.Routes != nil {
		s.layers.Routes = *p.Routes
	}
	if p.Fusions != nil {
		s.layers.Fusions = *p.Fusions
	}
	return s.layers
}

// Filters returns the active filters.
func (s *State) Filters() Filters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filters
}

// UpdateFilters merges p into the active filters.
func (s *State) UpdateFilters(p FilterPatch) Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.BoxType != nil {
		s.filters.BoxType = *p.BoxType
	}
	if p.CableType != nil {
		s.filters.CableType = *p.CableType
	}
	if p.CityID != nil {
		s.filters.CityID = *p.CityID
	}
	return s.filters
}

// SelectedCableType returns the fiber count used for new routes.
func (s *State) SelectedCableType() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cableType
}

// SelectCableType sets the fiber count used for new routes.
func (s *State) SelectCableType(fibers int) error {
	if !types.ValidCableType(fibers) {
		return fmt.Errorf("invalid cable type %d", fibers)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cableType = fibers
	return nil
}

// SearchOnMap matches text case-insensitively against route name and notes
// and box name and model. A blank query matches nothing.
func (s *State) SearchOnMap(text string) SearchResult {
	out := SearchResult{Routes: []types.Route{}, Boxes: []types.Box{}}
	q := strings.ToLower(strings.TrimSpace(text))
	if q == "" {
		return out
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.routes {
		if containsFold(r.Name, q) || containsFold(r.Notes, q) {
			out.Routes = append(out.Routes, r)
		}
	}
	for _, b := range s.boxes {
		if containsFold(b.Name, q) || containsFold(b.Model, q) {
			out.Boxes = append(out.Boxes, b)
		}
	}
	return out
}

// Visible returns the content of the visible layers after filtering.
func (s *State) Visible() View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v := View{Routes: []types.Route{}, Boxes: []types.Box{}, Fusions: []FusionPoint{}}
	f := s.filters
	if s.layers.Routes {
		for _, r := range s.routes {
			if f.CableType != 0 && r.CableType != f.CableType {
				continue
			}
			if f.CityID != "" && r.CityID != f.CityID {
				continue
			}
			v.Routes = append(v.Routes, r)
		}
	}
	if s.layers.Boxes {
		for _, b := range s.boxes {
			if f.BoxType != "" && b.Type != f.BoxType {
				continue
			}
			if f.CityID != "" && b.CityID != f.CityID {
				continue
			}
			v.Boxes = append(v.Boxes, b)
		}
	}
	if s.layers.Fusions {
		v.Fusions = append(v.Fusions, s.fusions...)
	}
	return v
}

func (s *State) replace(routes []types.Route, boxes []types.Box) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes = routes
	s.boxes = boxes
}

// containsFold reports whether lower-cased q occurs in s, ignoring case.
func containsFold(s, q string) bool {
	return s != "" && strings.Contains(strings.ToLower(s), q)
}
