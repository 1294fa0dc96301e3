package portstatus

import (
	"context"

	"github.com/fibradoc/fibradoc/pkg/client"
	"github.com/fibradoc/fibradoc/pkg/hook"
	"github.com/fibradoc/fibradoc/pkg/types"
)

// HookSource backs a Workflow with the port and client hooks, so updates
// share their loading state, notices and in-flight guard.
type HookSource struct {
	Ports   *hook.Ports
	Clients *hook.Clients
}

// UpdatePortStatus implements PortUpdater.
func (s HookSource) UpdatePortStatus(ctx context.Context, portID string, status types.PortStatus, clientID *string) error {
	res := s.Ports.UpdateStatus(ctx, portID, status, clientID)
	if res.Failure != nil {
		return res.Failure
	}
	return nil
}

// ListClients implements ClientLister.
func (s HookSource) ListClients(ctx context.Context, limit int) ([]types.Customer, error) {
	res := s.Clients.List(ctx, client.ListOptions{PageSize: limit})
	if res.Failure != nil {
		return nil, res.Failure
	}
	return res.Items, nil
}

// NewFromHooks creates a workflow for portID over the given hooks.
func NewFromHooks(portID string, ports *hook.Ports, clients *hook.Clients, opts ...Option) *Workflow {
	src := HookSource{Ports: ports, Clients: clients}
	return New(portID, src, src, opts...)
}
