package hook

import (
	"context"
	"strconv"

	"github.com/fibradoc/fibradoc/pkg/client"
	"github.com/fibradoc/fibradoc/pkg/types"
)

// withFilter returns a copy of opts with key=value added.
func withFilter(opts client.ListOptions, key, value string) client.ListOptions {
	filters := make(map[string]string, len(opts.Filters)+1)
	for k, v := range opts.Filters {
		filters[k] = v
	}
	filters[key] = value
	opts.Filters = filters
	return opts
}

// Cities is the city hook.
type Cities struct {
	*Hook[types.City, types.CreateCityRequest, types.PatchCityRequest]
}

// NewCities creates the city hook.
func NewCities(c *client.Client, opts ...Option) *Cities {
	return &Cities{New[types.City, types.CreateCityRequest, types.PatchCityRequest](c.Cities(), opts...)}
}

// ListByState lists cities of one state (UF).
func (h *Cities) ListByState(ctx context.Context, state string, opts client.ListOptions) ListResult[types.City] {
	return h.List(ctx, withFilter(opts, "estado", state))
}

// Boxes is the box hook.
type Boxes struct {
	*Hook[types.Box, types.CreateBoxRequest, types.PatchBoxRequest]
	c *client.Client
}

// NewBoxes creates the box hook.
func NewBoxes(c *client.Client, opts ...Option) *Boxes {
	return &Boxes{Hook: New[types.Box, types.CreateBoxRequest, types.PatchBoxRequest](c.Boxes(), opts...), c: c}
}

// ListByCity lists boxes in one city.
func (h *Boxes) ListByCity(ctx context.Context, cityID string, opts client.ListOptions) ListResult[types.Box] {
	return h.List(ctx, withFilter(opts, "cidadeId", cityID))
}

// ListByRoute lists boxes along one route.
func (h *Boxes) ListByRoute(ctx context.Context, routeID string, opts client.ListOptions) ListResult[types.Box] {
	return h.List(ctx, withFilter(opts, "rotaId", routeID))
}

// ListByType lists boxes of one type (CEO or CTO).
func (h *Boxes) ListByType(ctx context.Context, boxType types.BoxType, opts client.ListOptions) ListResult[types.Box] {
	return h.List(ctx, withFilter(opts, "tipo", string(boxType)))
}

// ReplacePorts upserts the ports of a CTO by number and returns the full
// port list.
func (h *Boxes) ReplacePorts(ctx context.Context, boxID string, ports []types.PortInput) ListResult[types.Port] {
	var out types.ReplacePortsResponse
	res := h.write(ctx, OpUpdate, boxID+"/portas", func(ctx context.Context) (types.Mutation[types.Box], error) {
		var err error
		out, err = h.c.ReplaceBoxPorts(ctx, boxID, types.ReplacePortsRequest{Ports: ports})
		return types.Mutation[types.Box]{Message: out.Message}, err
	})
	if res.Failure != nil {
		return ListResult[types.Port]{Items: []types.Port{}, Failure: res.Failure}
	}
	return ListResult[types.Port]{
		Items:      out.Ports,
		Pagination: types.NewPagination(len(out.Ports), 1, len(out.Ports)),
	}
}

// Occupancy fetches the derived occupancy of a box.
func (h *Boxes) Occupancy(ctx context.Context, boxID string) Result[types.Occupancy] {
	defer h.begin()()

	occ, err := h.c.BoxOccupancy(ctx, boxID)
	if err != nil {
		return Result[types.Occupancy]{Failure: h.fail(OpGet, err)}
	}
	h.record(nil)
	return Result[types.Occupancy]{Data: &occ}
}

// Ports is the port hook.
type Ports struct {
	*Hook[types.Port, types.CreatePortRequest, types.PatchPortRequest]
}

// NewPorts creates the port hook.
func NewPorts(c *client.Client, opts ...Option) *Ports {
	return &Ports{New[types.Port, types.CreatePortRequest, types.PatchPortRequest](c.Ports(), opts...)}
}

// ListByBox lists the ports of one CTO.
func (h *Ports) ListByBox(ctx context.Context, boxID string, opts client.ListOptions) ListResult[types.Port] {
	return h.List(ctx, withFilter(opts, "caixaId", boxID))
}

// ListByStatus lists ports in one status.
func (h *Ports) ListByStatus(ctx context.Context, status types.PortStatus, opts client.ListOptions) ListResult[types.Port] {
	return h.List(ctx, withFilter(opts, "status", string(status)))
}

// UpdateStatus sets the status of a port and, when clientID is non-nil, the
// client it serves.
func (h *Ports) UpdateStatus(ctx context.Context, id string, status types.PortStatus, clientID *string) Result[types.Port] {
	return h.Update(ctx, id, types.PatchPortRequest{Status: &status, ClientID: clientID})
}

// Trays is the tray hook. Trays are created with their CEO box.
type Trays struct {
	*Hook[types.Tray, types.CreateTrayRequest, types.PatchTrayRequest]
}

// NewTrays creates the tray hook.
func NewTrays(c *client.Client, opts ...Option) *Trays {
	return &Trays{New[types.Tray, types.CreateTrayRequest, types.PatchTrayRequest](c.Trays(), opts...)}
}

// ListByBox lists the trays of one box.
func (h *Trays) ListByBox(ctx context.Context, boxID string, opts client.ListOptions) ListResult[types.Tray] {
	return h.List(ctx, withFilter(opts, "caixaId", boxID))
}

// Splitters is the splitter hook.
type Splitters struct {
	*Hook[types.Splitter, types.CreateSplitterRequest, types.PatchSplitterRequest]
}

// NewSplitters creates the splitter hook.
func NewSplitters(c *client.Client, opts ...Option) *Splitters {
	return &Splitters{New[types.Splitter, types.CreateSplitterRequest, types.PatchSplitterRequest](c.Splitters(), opts...)}
}

// ListByBox lists the splitters of one box.
func (h *Splitters) ListByBox(ctx context.Context, boxID string, opts client.ListOptions) ListResult[types.Splitter] {
	return h.List(ctx, withFilter(opts, "caixaId", boxID))
}

// ListByType lists splitters of one type.
func (h *Splitters) ListByType(ctx context.Context, t types.SplitterType, opts client.ListOptions) ListResult[types.Splitter] {
	return h.List(ctx, withFilter(opts, "tipo", string(t)))
}

// Capillaries is the capillary hook.
type Capillaries struct {
	*Hook[types.Capillary, types.CreateCapillaryRequest, types.PatchCapillaryRequest]
}

// NewCapillaries creates the capillary hook.
func NewCapillaries(c *client.Client, opts ...Option) *Capillaries {
	return &Capillaries{New[types.Capillary, types.CreateCapillaryRequest, types.PatchCapillaryRequest](c.Capillaries(), opts...)}
}

// ListByRoute lists the capillaries of one route.
func (h *Capillaries) ListByRoute(ctx context.Context, routeID string, opts client.ListOptions) ListResult[types.Capillary] {
	return h.List(ctx, withFilter(opts, "rotaId", routeID))
}

// ListByTube lists the capillaries of one tube.
func (h *Capillaries) ListByTube(ctx context.Context, tubeID string, opts client.ListOptions) ListResult[types.Capillary] {
	return h.List(ctx, withFilter(opts, "tuboId", tubeID))
}

// ListByStatus lists capillaries in one status.
func (h *Capillaries) ListByStatus(ctx context.Context, status string, opts client.ListOptions) ListResult[types.Capillary] {
	return h.List(ctx, withFilter(opts, "status", status))
}

// Routes is the route hook.
type Routes struct {
	*Hook[types.Route, types.CreateRouteRequest, types.PatchRouteRequest]
}

// NewRoutes creates the route hook.
func NewRoutes(c *client.Client, opts ...Option) *Routes {
	return &Routes{New[types.Route, types.CreateRouteRequest, types.PatchRouteRequest](c.Routes(), opts...)}
}

// ListByCity lists routes in one city.
func (h *Routes) ListByCity(ctx context.Context, cityID string, opts client.ListOptions) ListResult[types.Route] {
	return h.List(ctx, withFilter(opts, "cidadeId", cityID))
}

// ListByCableType lists routes whose cable has the given fiber count.
func (h *Routes) ListByCableType(ctx context.Context, fibers int, opts client.ListOptions) ListResult[types.Route] {
	return h.List(ctx, withFilter(opts, "tipoCabo", strconv.Itoa(fibers)))
}

// ListByStatus lists routes in one status.
func (h *Routes) ListByStatus(ctx context.Context, status string, opts client.ListOptions) ListResult[types.Route] {
	return h.List(ctx, withFilter(opts, "status", status))
}

// Tubes is the tube hook.
type Tubes struct {
	*Hook[types.Tube, types.CreateTubeRequest, types.PatchTubeRequest]
}

// NewTubes creates the tube hook.
func NewTubes(c *client.Client, opts ...Option) *Tubes {
	return &Tubes{New[types.Tube, types.CreateTubeRequest, types.PatchTubeRequest](c.Tubes(), opts...)}
}

// ListByRoute lists the tubes of one route.
func (h *Tubes) ListByRoute(ctx context.Context, routeID string, opts client.ListOptions) ListResult[types.Tube] {
	return h.List(ctx, withFilter(opts, "rotaId", routeID))
}

// Fusions is the fusion hook.
type Fusions struct {
	*Hook[types.Fusion, types.CreateFusionRequest, types.PatchFusionRequest]
}

// NewFusions creates the fusion hook.
func NewFusions(c *client.Client, opts ...Option) *Fusions {
	return &Fusions{New[types.Fusion, types.CreateFusionRequest, types.PatchFusionRequest](c.Fusions(), opts...)}
}

// ListByBox lists fusions made in one box.
func (h *Fusions) ListByBox(ctx context.Context, boxID string, opts client.ListOptions) ListResult[types.Fusion] {
	return h.List(ctx, withFilter(opts, "caixaId", boxID))
}

// ListByTray lists fusions on one tray.
func (h *Fusions) ListByTray(ctx context.Context, trayID string, opts client.ListOptions) ListResult[types.Fusion] {
	return h.List(ctx, withFilter(opts, "bandejaId", trayID))
}

// Clients is the subscriber hook.
type Clients struct {
	*Hook[types.Customer, types.CreateClientRequest, types.PatchClientRequest]
}

// NewClients creates the subscriber hook.
func NewClients(c *client.Client, opts ...Option) *Clients {
	return &Clients{New[types.Customer, types.CreateClientRequest, types.PatchClientRequest](c.Clients(), opts...)}
}

// ListByNeutra lists clients by their Neutra id.
func (h *Clients) ListByNeutra(ctx context.Context, neutraID string, opts client.ListOptions) ListResult[types.Customer] {
	return h.List(ctx, withFilter(opts, "neutraId", neutraID))
}

// ListByPort lists the client attached to one port.
func (h *Clients) ListByPort(ctx context.Context, portID string, opts client.ListOptions) ListResult[types.Customer] {
	return h.List(ctx, withFilter(opts, "portaId", portID))
}

// ListUnassigned lists clients not yet bound to a port.
func (h *Clients) ListUnassigned(ctx context.Context, opts client.ListOptions) ListResult[types.Customer] {
	return h.List(ctx, withFilter(opts, "semPorta", "true"))
}
