// Package model contains the internal persistence models of the FibraDoc
// service. Handlers translate these into pkg/types for the wire.
package model

import (
	"time"

	"github.com/fibradoc/fibradoc/pkg/geo"
	"github.com/fibradoc/fibradoc/pkg/types"
)

// City is a municipality that owns routes and boxes.
type City struct {
	ID        string
	Name      string
	State     string
	Lat       float64
	Lng       float64
	Counts    types.CityCount
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Box is a CTO or CEO installed on the plant.
type Box struct {
	ID        string
	Name      string
	Type      types.BoxType
	Model     string
	Capacity  int
	Lat       float64
	Lng       float64
	Notes     string
	CityID    string
	RouteIDs  []string
	Counts    types.BoxCount
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Port is a numbered CTO port.
type Port struct {
	ID         string
	Number     int
	Status     types.PortStatus
	ClientID   *string
	SplitterID *string
	BoxID      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Normalize drops the client reference for statuses that cannot carry one.
func (p *Port) Normalize() {
	if !p.Status.RequiresClient() {
		p.ClientID = nil
	}
}

// Tray is a numbered CEO fusion tray.
type Tray struct {
	ID        string
	Number    int
	Capacity  int
	BoxID     string
	Counts    types.TrayCount
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Splitter is an optical splitter installed in a box.
type Splitter struct {
	ID                string
	Name              string
	Type              types.SplitterType
	Serving           bool
	BoxID             string
	InputCapillaryID  *string
	OutputCapillaryID *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Capillary is a single fiber.
type Capillary struct {
	ID        string
	Number    int
	Type      string
	Length    float64
	Status    string
	Power     float64
	RouteID   *string
	TubeID    *string
	Counts    types.CapillaryCount
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Route is a cable path.
type Route struct {
	ID           string
	Name         string
	CableType    int
	Manufacturer string
	Status       string
	Distance     float64
	CrossingType types.CrossingType
	Path         []geo.Point
	Color        string
	Notes        string
	CityID       string
	Counts       types.RouteCount
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Tube is a loose tube inside a route cable.
type Tube struct {
	ID        string
	Number    int
	Size      int
	Color     string
	RouteID   string
	Counts    types.TubeCount
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Fusion is a splice recorded in a box, optionally placed on a tray slot.
type Fusion struct {
	ID                string
	Type              types.FusionType
	SourceCapillaryID *string
	TargetCapillaryID *string
	SplitterID        *string
	SplitterPort      *int
	ClientID          *string
	Status            string
	Loss              *float64
	Power             *float64
	Position          *int
	BoxID             string
	TrayID            *string
	Notes             string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Client is a subscriber.
type Client struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	Document     string
	Street       string
	StreetNumber string
	Neighborhood string
	City         string
	PostalCode   string
	Power        *float64
	WifiSSID     string
	WifiPassword string
	NeutraID     *string
	PortID       *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
