package types

import (
	"time"

	"github.com/fibradoc/fibradoc/pkg/geo"
)

// BoxType distinguishes termination boxes from splice boxes.
type BoxType string

const (
	// BoxTypeCTO is a termination box with numbered customer ports.
	BoxTypeCTO BoxType = "CTO"
	// BoxTypeCEO is a splice box with numbered fusion trays.
	BoxTypeCEO BoxType = "CEO"
)

// Valid reports whether t is a known box type.
func (t BoxType) Valid() bool {
	return t == BoxTypeCTO || t == BoxTypeCEO
}

// PortStatus is the occupancy state of a CTO port.
type PortStatus string

const (
	PortAvailable PortStatus = "disponivel"
	PortInUse     PortStatus = "em_uso"
	PortReserved  PortStatus = "reservada"
	PortDefect    PortStatus = "defeito"
)

// PortStatuses lists every port status in display order.
var PortStatuses = []PortStatus{PortAvailable, PortInUse, PortReserved, PortDefect}

// Valid reports whether s is a known port status.
func (s PortStatus) Valid() bool {
	switch s {
	case PortAvailable, PortInUse, PortReserved, PortDefect:
		return true
	default:
		return false
	}
}

// RequiresClient reports whether a port in status s is bound to a client.
func (s PortStatus) RequiresClient() bool {
	return s == PortInUse || s == PortReserved
}

// SplitterType is the fan-out ratio of a splitter.
type SplitterType string

const (
	Splitter1x2  SplitterType = "1/2"
	Splitter1x8  SplitterType = "1/8"
	Splitter1x16 SplitterType = "1/16"
)

// Outputs returns the number of output legs, or zero for unknown ratios.
func (t SplitterType) Outputs() int {
	switch t {
	case Splitter1x2:
		return 2
	case Splitter1x8:
		return 8
	case Splitter1x16:
		return 16
	default:
		return 0
	}
}

// FusionType identifies what a fusion joins.
type FusionType string

const (
	FusionCapillaryCapillary FusionType = "capilar_capilar"
	FusionCapillarySplitter  FusionType = "capilar_spliter"
	FusionSplitterClient     FusionType = "spliter_cliente"
)

// Valid reports whether t is a known fusion type.
func (t FusionType) Valid() bool {
	switch t {
	case FusionCapillaryCapillary, FusionCapillarySplitter, FusionSplitterClient:
		return true
	default:
		return false
	}
}

// CrossingType is how a route crosses the terrain.
type CrossingType string

const (
	CrossingAerial      CrossingType = "aereo"
	CrossingUnderground CrossingType = "subterraneo"
	CrossingPosted      CrossingType = "poste"
)

// Valid reports whether t is a known crossing type.
func (t CrossingType) Valid() bool {
	switch t {
	case CrossingAerial, CrossingUnderground, CrossingPosted:
		return true
	default:
		return false
	}
}

// CableTypes lists the supported cable fiber counts.
var CableTypes = []int{6, 12, 24, 48, 96}

// ValidCableType reports whether fibers is a supported cable fiber count.
func ValidCableType(fibers int) bool {
	for _, n := range CableTypes {
		if n == fibers {
			return true
		}
	}
	return false
}

// TrayCapacity is the fixed number of fusion slots in a tray.
const TrayCapacity = 12

// City is the public representation of a city.
type City struct {
	ID          string     `json:"id"`
	Name        string     `json:"nome"`
	State       string     `json:"estado"`
	Coordinates geo.Point  `json:"coordenadas"`
	Count       *CityCount `json:"_count,omitempty"`
	CreatedAt   time.Time  `json:"criadoEm"`
	UpdatedAt   time.Time  `json:"atualizadoEm"`
}

// CityCount carries aggregate counts of city dependents.
type CityCount struct {
	Users  int `json:"usuarios"`
	Routes int `json:"rotas"`
	Boxes  int `json:"caixas"`
}

// Box is the public representation of a CTO/CEO box.
type Box struct {
	ID          string    `json:"id"`
	Name        string    `json:"nome"`
	Type        BoxType   `json:"tipo"`
	Model       string    `json:"modelo"`
	Capacity    int       `json:"capacidade"`
	Coordinates geo.Point `json:"coordenadas"`
	Notes       string    `json:"observacoes,omitempty"`
	CityID      string    `json:"cidadeId"`
	RouteIDs    []string  `json:"rotaIds"`
	Count       *BoxCount `json:"_count,omitempty"`
	CreatedAt   time.Time `json:"criadoEm"`
	UpdatedAt   time.Time `json:"atualizadoEm"`
}

// BoxCount carries aggregate counts of box dependents.
type BoxCount struct {
	Ports       int `json:"portas"`
	Trays       int `json:"bandejas"`
	Fusions     int `json:"fusoes"`
	Splitters   int `json:"spliters"`
	Comments    int `json:"comentarios"`
	Files       int `json:"arquivos"`
	Maintenance int `json:"manutencoes"`
}

// Port is a numbered CTO port.
type Port struct {
	ID         string     `json:"id"`
	Number     int        `json:"numero"`
	Status     PortStatus `json:"status"`
	ClientID   *string    `json:"clienteId"`
	SplitterID *string    `json:"spliterId"`
	BoxID      string     `json:"caixaId"`
	CreatedAt  time.Time  `json:"criadoEm"`
	UpdatedAt  time.Time  `json:"atualizadoEm"`
}

// Tray is a numbered CEO fusion tray.
type Tray struct {
	ID        string     `json:"id"`
	Number    int        `json:"numero"`
	Capacity  int        `json:"capacidade"`
	BoxID     string     `json:"caixaId"`
	Count     *TrayCount `json:"_count,omitempty"`
	CreatedAt time.Time  `json:"criadoEm"`
	UpdatedAt time.Time  `json:"atualizadoEm"`
}

// TrayCount carries the fusion count of a tray.
type TrayCount struct {
	Fusions int `json:"fusoes"`
}

// Splitter is an optical splitter installed in a box.
type Splitter struct {
	ID                string       `json:"id"`
	Name              string       `json:"nome"`
	Type              SplitterType `json:"tipo"`
	Serving           bool         `json:"atendimento"`
	BoxID             string       `json:"caixaId"`
	InputCapillaryID  *string      `json:"capilarEntradaId"`
	OutputCapillaryID *string      `json:"capilarSaidaId"`
	CreatedAt         time.Time    `json:"criadoEm"`
	UpdatedAt         time.Time    `json:"atualizadoEm"`
}

// Capillary is a single fiber inside a cable.
type Capillary struct {
	ID        string          `json:"id"`
	Number    int             `json:"numero"`
	Type      string          `json:"tipo"`
	Length    float64         `json:"comprimento"`
	Status    string          `json:"status"`
	Power     float64         `json:"potencia"`
	RouteID   *string         `json:"rotaId"`
	TubeID    *string         `json:"tuboId"`
	Count     *CapillaryCount `json:"_count,omitempty"`
	CreatedAt time.Time       `json:"criadoEm"`
	UpdatedAt time.Time       `json:"atualizadoEm"`
}

// CapillaryCount carries the fusion and splitter links of a capillary.
type CapillaryCount struct {
	OutgoingFusions int `json:"fusoesOrigem"`
	IncomingFusions int `json:"fusoesDestino"`
	SplitterInputs  int `json:"spliterEntrada"`
	SplitterOutputs int `json:"spliterSaida"`
}

// Route is a cable path drawn on the map.
type Route struct {
	ID           string       `json:"id"`
	Name         string       `json:"nome"`
	CableType    int          `json:"tipoCabo"`
	Manufacturer string       `json:"fabricante"`
	Status       string       `json:"status"`
	Distance     float64      `json:"distancia"`
	CrossingType CrossingType `json:"tipoPassagem"`
	Coordinates  []geo.Point  `json:"coordenadas"`
	Color        string       `json:"cor"`
	Notes        string       `json:"observacoes,omitempty"`
	CityID       string       `json:"cidadeId"`
	Count        *RouteCount  `json:"_count,omitempty"`
	CreatedAt    time.Time    `json:"criadoEm"`
	UpdatedAt    time.Time    `json:"atualizadoEm"`
}

// RouteCount carries aggregate counts of route dependents.
type RouteCount struct {
	Capillaries int `json:"capilares"`
	Tubes       int `json:"tubos"`
	Boxes       int `json:"caixas"`
}

// Tube is a loose tube inside a route cable.
type Tube struct {
	ID        string     `json:"id"`
	Number    int        `json:"numero"`
	Size      int        `json:"tamanho"`
	Color     string     `json:"cor"`
	RouteID   string     `json:"rotaId"`
	Count     *TubeCount `json:"_count,omitempty"`
	CreatedAt time.Time  `json:"criadoEm"`
	UpdatedAt time.Time  `json:"atualizadoEm"`
}

// TubeCount carries the capillary count of a tube.
type TubeCount struct {
	Capillaries int `json:"capilares"`
}

// Fusion joins two fibers (or a splitter leg and a client drop) in a box.
type Fusion struct {
	ID                string     `json:"id"`
	Type              FusionType `json:"tipo"`
	SourceCapillaryID *string    `json:"capilarOrigemId"`
	TargetCapillaryID *string    `json:"capilarDestinoId"`
	SplitterID        *string    `json:"spliterId"`
	SplitterPort      *int       `json:"portaSpliter"`
	ClientID          *string    `json:"clienteId"`
	Status            string     `json:"status"`
	Loss              *float64   `json:"perda"`
	Power             *float64   `json:"potencia"`
	Position          *int       `json:"posicao"`
	BoxID             string     `json:"caixaId"`
	TrayID            *string    `json:"bandejaId"`
	Notes             string     `json:"observacoes,omitempty"`
	CreatedAt         time.Time  `json:"criadoEm"`
	UpdatedAt         time.Time  `json:"atualizadoEm"`
}

// Address is a postal address.
type Address struct {
	Street       string `json:"logradouro"`
	Number       string `json:"numero"`
	Neighborhood string `json:"bairro"`
	City         string `json:"cidade"`
	PostalCode   string `json:"cep"`
}

// Customer is a subscriber ("cliente") served from a CTO port.
type Customer struct {
	ID           string    `json:"id"`
	Name         string    `json:"nome"`
	Email        string    `json:"email"`
	Phone        string    `json:"telefone"`
	Document     string    `json:"documento"`
	Address      Address   `json:"endereco"`
	Power        *float64  `json:"potencia"`
	WifiSSID     string    `json:"wifiSsid"`
	WifiPassword string    `json:"wifiSenha"`
	NeutraID     *string   `json:"neutraId"`
	PortID       *string   `json:"portaId"`
	CreatedAt    time.Time `json:"criadoEm"`
	UpdatedAt    time.Time `json:"atualizadoEm"`
}

// Occupancy is the derived usage of a box.
type Occupancy struct {
	Occupied   int     `json:"ocupadas"`
	Capacity   int     `json:"capacidade"`
	Percentage float64 `json:"percentual"`
}
