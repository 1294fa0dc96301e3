package types

import "github.com/fibradoc/fibradoc/pkg/geo"

// Patch requests use pointer fields: nil means "leave unchanged". For
// optional references (*ID fields) an empty string clears the reference.

// CreateCityRequest is the body of POST /api/cidades.
type CreateCityRequest struct {
	Name        string    `json:"nome"`
	State       string    `json:"estado"`
	Coordinates geo.Point `json:"coordenadas"`
}

// PatchCityRequest is the body of PATCH /api/cidades/{id}.
type PatchCityRequest struct {
	Name        *string    `json:"nome,omitempty"`
	State       *string    `json:"estado,omitempty"`
	Coordinates *geo.Point `json:"coordenadas,omitempty"`
}

// CreateBoxRequest is the body of POST /api/caixas.
type CreateBoxRequest struct {
	Name        string    `json:"nome"`
	Type        BoxType   `json:"tipo"`
	Model       string    `json:"modelo"`
	Capacity    int       `json:"capacidade"`
	Coordinates geo.Point `json:"coordenadas"`
	Notes       string    `json:"observacoes,omitempty"`
	CityID      string    `json:"cidadeId"`
	RouteIDs    []string  `json:"rotaIds,omitempty"`
}

// PatchBoxRequest is the body of PATCH /api/caixas/{id}. Type and capacity
// are fixed at creation because ports and trays are provisioned from them.
type PatchBoxRequest struct {
	Name        *string    `json:"nome,omitempty"`
	Model       *string    `json:"modelo,omitempty"`
	Coordinates *geo.Point `json:"coordenadas,omitempty"`
	Notes       *string    `json:"observacoes,omitempty"`
	CityID      *string    `json:"cidadeId,omitempty"`
	RouteIDs    *[]string  `json:"rotaIds,omitempty"`
}

// CreatePortRequest is the body of POST /api/portas.
type CreatePortRequest struct {
	Number     int        `json:"numero"`
	Status     PortStatus `json:"status"`
	ClientID   *string    `json:"clienteId,omitempty"`
	SplitterID *string    `json:"spliterId,omitempty"`
	BoxID      string     `json:"caixaId"`
}

// PatchPortRequest is the body of PATCH /api/portas/{id}.
type PatchPortRequest struct {
	Status     *PortStatus `json:"status,omitempty"`
	ClientID   *string     `json:"clienteId,omitempty"`
	SplitterID *string     `json:"spliterId,omitempty"`
}

// PortInput is one entry of a batch port upsert.
type PortInput struct {
	Number     int        `json:"numero"`
	Status     PortStatus `json:"status"`
	ClientID   *string    `json:"clienteId,omitempty"`
	SplitterID *string    `json:"spliterId,omitempty"`
}

// ReplacePortsRequest is the body of PUT /api/caixas/{id}/portas.
type ReplacePortsRequest struct {
	Ports []PortInput `json:"portas"`
}

// ReplacePortsResponse is the response of PUT /api/caixas/{id}/portas.
type ReplacePortsResponse struct {
	Message string `json:"mensagem"`
	Ports   []Port `json:"portas"`
}

// CreateTrayRequest is accepted by the client SDK for symmetry; trays are
// provisioned with CEO boxes and the server rejects direct creation.
type CreateTrayRequest struct {
	Number   int    `json:"numero"`
	Capacity int    `json:"capacidade,omitempty"`
	BoxID    string `json:"caixaId"`
}

// PatchTrayRequest is the body of PATCH /api/bandejas/{id}.
type PatchTrayRequest struct {
	Number *int `json:"numero,omitempty"`
}

// CreateSplitterRequest is the body of POST /api/spliters.
type CreateSplitterRequest struct {
	Name              string       `json:"nome"`
	Type              SplitterType `json:"tipo"`
	Serving           bool         `json:"atendimento"`
	BoxID             string       `json:"caixaId"`
	InputCapillaryID  *string      `json:"capilarEntradaId,omitempty"`
	OutputCapillaryID *string      `json:"capilarSaidaId,omitempty"`
}

// PatchSplitterRequest is the body of PATCH /api/spliters/{id}.
type PatchSplitterRequest struct {
	Name              *string       `json:"nome,omitempty"`
	Type              *SplitterType `json:"tipo,omitempty"`
	Serving           *bool         `json:"atendimento,omitempty"`
	InputCapillaryID  *string       `json:"capilarEntradaId,omitempty"`
	OutputCapillaryID *string       `json:"capilarSaidaId,omitempty"`
}

// CreateCapillaryRequest is the body of POST /api/capilares.
type CreateCapillaryRequest struct {
	Number  int     `json:"numero"`
	Type    string  `json:"tipo"`
	Length  float64 `json:"comprimento"`
	Status  string  `json:"status"`
	Power   float64 `json:"potencia"`
	RouteID *string `json:"rotaId,omitempty"`
	TubeID  *string `json:"tuboId,omitempty"`
}

// PatchCapillaryRequest is the body of PATCH /api/capilares/{id}.
type PatchCapillaryRequest struct {
	Number  *int     `json:"numero,omitempty"`
	Type    *string  `json:"tipo,omitempty"`
	Length  *float64 `json:"comprimento,omitempty"`
	Status  *string  `json:"status,omitempty"`
	Power   *float64 `json:"potencia,omitempty"`
	RouteID *string  `json:"rotaId,omitempty"`
	TubeID  *string  `json:"tuboId,omitempty"`
}

// CreateRouteRequest is the body of POST /api/rotas. The distance is
// computed by the server from Coordinates.
type CreateRouteRequest struct {
	Name         string       `json:"nome"`
	CableType    int          `json:"tipoCabo"`
	Manufacturer string       `json:"fabricante"`
	Status       string       `json:"status"`
	CrossingType CrossingType `json:"tipoPassagem"`
	Coordinates  []geo.Point  `json:"coordenadas"`
	Color        string       `json:"cor,omitempty"`
	Notes        string       `json:"observacoes,omitempty"`
	CityID       string       `json:"cidadeId"`
}

// PatchRouteRequest is the body of PATCH /api/rotas/{id}.
type PatchRouteRequest struct {
	Name         *string       `json:"nome,omitempty"`
	CableType    *int          `json:"tipoCabo,omitempty"`
	Manufacturer *string       `json:"fabricante,omitempty"`
	Status       *string       `json:"status,omitempty"`
	CrossingType *CrossingType `json:"tipoPassagem,omitempty"`
	Coordinates  *[]geo.Point  `json:"coordenadas,omitempty"`
	Color        *string       `json:"cor,omitempty"`
	Notes        *string       `json:"observacoes,omitempty"`
	CityID       *string       `json:"cidadeId,omitempty"`
}

// CreateTubeRequest is the body of POST /api/tubos.
type CreateTubeRequest struct {
	Number  int    `json:"numero"`
	Size    int    `json:"tamanho"`
	Color   string `json:"cor"`
	RouteID string `json:"rotaId"`
}

// PatchTubeRequest is the body of PATCH /api/tubos/{id}.
type PatchTubeRequest struct {
	Number *int    `json:"numero,omitempty"`
	Size   *int    `json:"tamanho,omitempty"`
	Color  *string `json:"cor,omitempty"`
}

// CreateFusionRequest is the body of POST /api/fusoes.
type CreateFusionRequest struct {
	Type              FusionType `json:"tipo"`
	SourceCapillaryID *string    `json:"capilarOrigemId,omitempty"`
	TargetCapillaryID *string    `json:"capilarDestinoId,omitempty"`
	SplitterID        *string    `json:"spliterId,omitempty"`
	SplitterPort      *int       `json:"portaSpliter,omitempty"`
	ClientID          *string    `json:"clienteId,omitempty"`
	Status            string     `json:"status,omitempty"`
	Loss              *float64   `json:"perda,omitempty"`
	Power             *float64   `json:"potencia,omitempty"`
	Position          *int       `json:"posicao,omitempty"`
	BoxID             string     `json:"caixaId"`
	TrayID            *string    `json:"bandejaId,omitempty"`
	Notes             string     `json:"observacoes,omitempty"`
}

// PatchFusionRequest is the body of PATCH /api/fusoes/{id}.
type PatchFusionRequest struct {
	Status   *string  `json:"status,omitempty"`
	Loss     *float64 `json:"perda,omitempty"`
	Power    *float64 `json:"potencia,omitempty"`
	Position *int     `json:"posicao,omitempty"`
	TrayID   *string  `json:"bandejaId,omitempty"`
	Notes    *string  `json:"observacoes,omitempty"`
}

// CreateClientRequest is the body of POST /api/clientes.
type CreateClientRequest struct {
	Name         string   `json:"nome"`
	Email        string   `json:"email"`
	Phone        string   `json:"telefone"`
	Document     string   `json:"documento"`
	Address      Address  `json:"endereco"`
	Power        *float64 `json:"potencia,omitempty"`
	WifiSSID     string   `json:"wifiSsid,omitempty"`
	WifiPassword string   `json:"wifiSenha,omitempty"`
	NeutraID     *string  `json:"neutraId,omitempty"`
	PortID       *string  `json:"portaId,omitempty"`
}

// PatchClientRequest is the body of PATCH /api/clientes/{id}.
type PatchClientRequest struct {
	Name         *string  `json:"nome,omitempty"`
	Email        *string  `json:"email,omitempty"`
	Phone        *string  `json:"telefone,omitempty"`
	Document     *string  `json:"documento,omitempty"`
	Address      *Address `json:"endereco,omitempty"`
	Power        *float64 `json:"potencia,omitempty"`
	WifiSSID     *string  `json:"wifiSsid,omitempty"`
	WifiPassword *string  `json:"wifiSenha,omitempty"`
	NeutraID     *string  `json:"neutraId,omitempty"`
	PortID       *string  `json:"portaId,omitempty"`
}
