package mapview

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fibradoc/fibradoc/pkg/client"
	"github.com/fibradoc/fibradoc/pkg/hook"
	"github.com/fibradoc/fibradoc/pkg/types"
)

type mockSource struct {
	routesFn func(ctx context.Context, cityID string) ([]types.Route, error)
	boxesFn  func(ctx context.Context, cityID string) ([]types.Box, error)
}

func (m *mockSource) ListRoutes(ctx context.Context, cityID string) ([]types.Route, error) {
	return m.routesFn(ctx, cityID)
}

func (m *mockSource) ListBoxes(ctx context.Context, cityID string) ([]types.Box, error) {
	return m.boxesFn(ctx, cityID)
}

func TestLoad_ReplacesCollections(t *testing.T) {
	t.Parallel()

	s := New()
	s.AddRoute(types.Route{Name: "local"})
	city := "city-1"
	s.UpdateFilters(FilterPatch{CityID: &city})

	src := &mockSource{
		routesFn: func(_ context.Context, cityID string) ([]types.Route, error) {
			assert.Equal(t, "city-1", cityID)
			return []types.Route{{ID: "r1", Name: "Tronco"}}, nil
		},
		boxesFn: func(_ context.Context, cityID string) ([]types.Box, error) {
			assert.Equal(t, "city-1", cityID)
			return nil, nil
		},
	}

	require.NoError(t, s.Load(context.Background(), src))
	routes := s.Routes()
	require.Len(t, routes, 1)
	assert.Equal(t, "r1", routes[0].ID)
	assert.NotNil(t, s.Boxes())
	assert.Empty(t, s.Boxes())
}

func TestLoad_ErrorKeepsState(t *testing.T) {
	t.Parallel()

	s := New()
	s.AddBox(types.Box{Name: "CTO-01"})
	boom := errors.New("boom")

	src := &mockSource{
		routesFn: func(context.Context, string) ([]types.Route, error) {
			return []types.Route{{ID: "r1"}}, nil
		},
		boxesFn: func(context.Context, string) ([]types.Box, error) {
			return nil, boom
		},
	}

	err := s.Load(context.Background(), src)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "loading boxes")
	assert.Len(t, s.Boxes(), 1)
	assert.Empty(t, s.Routes())
}

func TestHookSource_ReadsAllPages(t *testing.T) {
	t.Parallel()

	const base = "http://fibradoc.test"
	mt := httpmock.NewMockTransport()
	c, err := client.New(client.Config{BaseURL: base, HTTPClient: &http.Client{Transport: mt}})
	require.NoError(t, err)

	mt.RegisterResponder(http.MethodGet, base+"/api/rotas", func(req *http.Request) (*http.Response, error) {
		q := req.URL.Query()
		assert.Equal(t, "100", q.Get("limite"))
		assert.Equal(t, "city-1", q.Get("cidadeId"))
		page, _ := strconv.Atoi(q.Get("pagina"))
		items := []types.Route{{ID: "r" + strconv.Itoa(page)}}
		return httpmock.NewJsonResponse(http.StatusOK, types.EncodeList("rotas", items, types.NewPagination(150, page, 100)))
	})
	mt.RegisterResponder(http.MethodGet, base+"/api/caixas", func(req *http.Request) (*http.Response, error) {
		return httpmock.NewJsonResponse(http.StatusOK, types.EncodeList("caixas", []types.Box{{ID: "b1"}}, types.NewPagination(1, 1, 100)))
	})

	s := New()
	city := "city-1"
	s.UpdateFilters(FilterPatch{CityID: &city})
	src := HookSource{Routes: hook.NewRoutes(c), Boxes: hook.NewBoxes(c)}

	require.NoError(t, s.Load(context.Background(), src))

	routes := s.Routes()
	require.Len(t, routes, 2)
	assert.Equal(t, "r1", routes[0].ID)
	assert.Equal(t, "r2", routes[1].ID)
	assert.Len(t, s.Boxes(), 1)
	assert.Equal(t, 3, mt.GetTotalCallCount())
}

func TestHookSource_Failure(t *testing.T) {
	t.Parallel()

	const base = "http://fibradoc.test"
	mt := httpmock.NewMockTransport()
	c, err := client.New(client.Config{BaseURL: base, HTTPClient: &http.Client{Transport: mt}})
	require.NoError(t, err)

	mt.RegisterResponder(http.MethodGet, base+"/api/rotas",
		httpmock.NewJsonResponderOrPanic(http.StatusInternalServerError, types.ProblemDetail{Status: 500}))
	mt.RegisterResponder(http.MethodGet, base+"/api/caixas",
		httpmock.NewJsonResponderOrPanic(http.StatusOK, types.EncodeList[types.Box]("caixas", nil, types.NewPagination(0, 1, 100))))

	s := New()
	err = s.Load(context.Background(), HookSource{Routes: hook.NewRoutes(c), Boxes: hook.NewBoxes(c)})

	var f *hook.Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, hook.KindServer, f.Kind)
	assert.Equal(t, types.GenericErrorMessage, f.Message)
}
