// Package portstatus implements the two-step "change port status" workflow:
// pick a status, and for statuses that bind a subscriber, pick or register
// the client before the port is updated.
package portstatus

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/rs/zerolog"

	"github.com/fibradoc/fibradoc/pkg/types"
)

// ClientFetchLimit is the number of clients fetched for selection.
const ClientFetchLimit = 100

var (
	// ErrInvalidTransition is returned when an action is not allowed in the
	// current state.
	ErrInvalidTransition = errors.New("action not allowed in current state")
	// ErrInvalidStatus is returned for an unknown port status.
	ErrInvalidStatus = errors.New("invalid port status")
	// ErrNoClientSelected is returned by Confirm while no client is chosen.
	ErrNoClientSelected = errors.New("no client selected")
	// ErrUnknownClient is returned when selecting a client that is not
	// offered.
	ErrUnknownClient = errors.New("client not offered for selection")
)

// PortUpdater applies a status (and optional client) to a port.
type PortUpdater interface {
	UpdatePortStatus(ctx context.Context, portID string, status types.PortStatus, clientID *string) error
}

// ClientLister returns up to limit clients.
type ClientLister interface {
	ListClients(ctx context.Context, limit int) ([]types.Customer, error)
}

// State is one of StatusSelection, ClientSelection or Closed.
type State interface {
	state()
}

// StatusSelection offers the four port statuses.
type StatusSelection struct{}

// ClientSelection offers the clients without a port for Status.
type ClientSelection struct {
	Status   types.PortStatus
	Clients  []types.Customer
	Selected string
}

// Closed is terminal. Applied is true when the port was updated.
type Closed struct {
	Applied bool
}

func (StatusSelection) state() {}
func (ClientSelection) state() {}
func (Closed) state()          {}

// Intent asks the caller to open client registration for a port with a
// pending status.
type Intent struct {
	PortID string
	Status types.PortStatus
}

// Query encodes the intent as navigation parameters.
func (i Intent) Query() url.Values {
	return url.Values{
		"portaId": []string{i.PortID},
		"status":  []string{string(i.Status)},
	}
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithLogger sets the workflow logger.
func WithLogger(l zerolog.Logger) Option {
	return func(w *Workflow) { w.logger = l }
}

// Workflow drives the status change of one port. It is safe for concurrent
// use; actions that race with a state change fail with ErrInvalidTransition.
type Workflow struct {
	portID  string
	ports   PortUpdater
	clients ClientLister
	logger  zerolog.Logger

	mu    sync.Mutex
	state State
}

// New creates a closed workflow for portID. Call Open to start it.
func New(portID string, ports PortUpdater, clients ClientLister, opts ...Option) *Workflow {
	w := &Workflow{
		portID:  portID,
		ports:   ports,
		clients: clients,
		logger:  zerolog.Nop(),
		state:   Closed{},
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With().Str("component", "portstatus").Str("port_id", portID).Logger()
	return w
}

// State returns the current state.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Open (re)starts the workflow in StatusSelection.
func (w *Workflow) Open() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = StatusSelection{}
	return w.state
}

// ChooseStatus applies disponivel and defeito immediately and closes the
// workflow on success. em_uso and reservada move to ClientSelection and load
// the clients that have no port.
func (w *Workflow) ChooseStatus(ctx context.Context, status types.PortStatus) (State, error) {
	if !status.Valid() {
		return w.State(), fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	w.mu.Lock()
	if _, ok := w.state.(StatusSelection); !ok {
		st := w.state
		w.mu.Unlock()
		return st, ErrInvalidTransition
	}

	if !status.RequiresClient() {
		w.mu.Unlock()
		if err := w.ports.UpdatePortStatus(ctx, w.portID, status, nil); err != nil {
			w.logger.Debug().Err(err).Str("status", string(status)).Msg("port status update failed")
			return w.State(), err
		}
		return w.close(StatusSelection{}), nil
	}

	w.state = ClientSelection{Status: status}
	w.mu.Unlock()

	clients, err := w.clients.ListClients(ctx, ClientFetchLimit)
	if err != nil {
		w.logger.Debug().Err(err).Msg("loading clients failed")
		return w.State(), err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	sel, ok := w.state.(ClientSelection)
	if !ok || sel.Status != status {
		return w.state, ErrInvalidTransition
	}
	sel.Clients = withoutPort(clients)
	w.state = sel
	return w.state, nil
}

// SelectClient picks one of the offered clients.
func (w *Workflow) SelectClient(clientID string) (State, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	sel, ok := w.state.(ClientSelection)
	if !ok {
		return w.state, ErrInvalidTransition
	}
	for _, c := range sel.Clients {
		if c.ID == clientID {
			sel.Selected = clientID
			w.state = sel
			return w.state, nil
		}
	}
	return w.state, fmt.Errorf("%w: %q", ErrUnknownClient, clientID)
}

// CanConfirm reports whether Confirm is enabled.
func (w *Workflow) CanConfirm() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	sel, ok := w.state.(ClientSelection)
	return ok && sel.Selected != ""
}

// Confirm applies the pending status together with the selected client and
// closes the workflow on success.
func (w *Workflow) Confirm(ctx context.Context) (State, error) {
	w.mu.Lock()
	sel, ok := w.state.(ClientSelection)
	w.mu.Unlock()
	if !ok {
		return w.State(), ErrInvalidTransition
	}
	if sel.Selected == "" {
		return sel, ErrNoClientSelected
	}

	clientID := sel.Selected
	if err := w.ports.UpdatePortStatus(ctx, w.portID, sel.Status, &clientID); err != nil {
		w.logger.Debug().Err(err).Str("status", string(sel.Status)).Str("client_id", clientID).Msg("port status update failed")
		return w.State(), err
	}
	return w.close(sel), nil
}

// RegisterNewClient closes the workflow and returns the navigation intent for
// registering a client bound to this port.
func (w *Workflow) RegisterNewClient() (Intent, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	sel, ok := w.state.(ClientSelection)
	if !ok {
		return Intent{}, ErrInvalidTransition
	}
	w.state = Closed{}
	return Intent{PortID: w.portID, Status: sel.Status}, nil
}

// Back returns from ClientSelection to StatusSelection.
func (w *Workflow) Back() (State, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.state.(ClientSelection); !ok {
		return w.state, ErrInvalidTransition
	}
	w.state = StatusSelection{}
	return w.state, nil
}

// Cancel closes the workflow from any state without applying anything.
func (w *Workflow) Cancel() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = Closed{}
	return w.state
}

// close moves to Closed{Applied: true} unless the state changed since from.
func (w *Workflow) close(from State) State {
	w.mu.Lock()
	defer w.mu.Unlock()
	if sameKind(w.state, from) {
		w.state = Closed{Applied: true}
	}
	return w.state
}

func sameKind(a, b State) bool {
	switch a.(type) {
	case StatusSelection:
		_, ok := b.(StatusSelection)
		return ok
	case ClientSelection:
		_, ok := b.(ClientSelection)
		return ok
	default:
		return false
	}
}

func withoutPort(clients []types.Customer) []types.Customer {
	out := make([]types.Customer, 0, len(clients))
	for _, c := range clients {
		if c.PortID == nil || *c.PortID == "" {
			out = append(out, c)
		}
	}
	return out
}
