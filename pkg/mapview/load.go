package mapview

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/fibradoc/fibradoc/pkg/client"
	"github.com/fibradoc/fibradoc/pkg/hook"
	"github.com/fibradoc/fibradoc/pkg/types"
)

// loadPageSize is the largest page the server returns.
const loadPageSize = 100

// Source supplies persisted routes and boxes. An empty cityID means all
// cities.
type Source interface {
	ListRoutes(ctx context.Context, cityID string) ([]types.Route, error)
	ListBoxes(ctx context.Context, cityID string) ([]types.Box, error)
}

// Load fetches routes and boxes of the filtered city concurrently and
// replaces both collections. On error the state is left unchanged.
func (s *State) Load(ctx context.Context, src Source) error {
	cityID := s.Filters().CityID

	var routes []types.Route
	var boxes []types.Box

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		routes, err = src.ListRoutes(gctx, cityID)
		if err != nil {
			return fmt.Errorf("loading routes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		boxes, err = src.ListBoxes(gctx, cityID)
		if err != nil {
			return fmt.Errorf("loading boxes: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if routes == nil {
		routes = []types.Route{}
	}
	if boxes == nil {
		boxes = []types.Box{}
	}
	s.replace(routes, boxes)
	return nil
}

// HookSource reads every page of routes and boxes through the hooks.
type HookSource struct {
	Routes *hook.Routes
	Boxes  *hook.Boxes
}

// ListRoutes implements Source.
func (h HookSource) ListRoutes(ctx context.Context, cityID string) ([]types.Route, error) {
	return collect(ctx, cityID, h.Routes.List)
}

// ListBoxes implements Source.
func (h HookSource) ListBoxes(ctx context.Context, cityID string) ([]types.Box, error) {
	return collect(ctx, cityID, h.Boxes.List)
}

func collect[T any](
	ctx context.Context,
	cityID string,
	list func(context.Context, client.ListOptions) hook.ListResult[T],
) ([]T, error) {
	opts := client.ListOptions{PageSize: loadPageSize}
	if cityID != "" {
		opts.Filters = map[string]string{"cidadeId": cityID}
	}

	var out []T
	for page := 1; ; page++ {
		opts.Page = page
		res := list(ctx, opts)
		if res.Failure != nil {
			return nil, res.Failure
		}
		out = append(out, res.Items...)
		if page >= res.Pagination.TotalPages || len(res.Items) == 0 {
			return out, nil
		}
	}
}
