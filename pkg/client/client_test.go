package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fibradoc/fibradoc/pkg/geo"
	"github.com/fibradoc/fibradoc/pkg/types"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func problemJSON(w http.ResponseWriter, status int, detail string, fields ...types.ValidationError) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ProblemDetail{
		Type:   "about:blank",
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
		Errors: fields,
	})
}

func newTestClient(t *testing.T, cfg Config) *Client {
	t.Helper()
	c, err := New(cfg)
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("requires base url", func(t *testing.T) {
		t.Parallel()
		c, err := New(Config{})
		require.Error(t, err)
		assert.Nil(t, c)
		assert.Contains(t, err.Error(), "BaseURL is required")
	})

	t.Run("applies defaults", func(t *testing.T) {
		t.Parallel()
		c := newTestClient(t, Config{BaseURL: " http://example.invalid/ "})
		assert.Equal(t, "http://example.invalid", c.baseURL)
		assert.Equal(t, defaultTimeout, c.cfg.Timeout)
		assert.Equal(t, defaultTimeout, c.http.Timeout)
	})

	t.Run("keeps custom http client", func(t *testing.T) {
		t.Parallel()
		custom := &http.Client{Timeout: 2 * time.Second}
		c := newTestClient(t, Config{BaseURL: "http://example.invalid", Timeout: 5 * time.Second, HTTPClient: custom})
		assert.Same(t, custom, c.http)
		assert.Equal(t, 5*time.Second, c.cfg.Timeout)
	})

	t.Run("copies http client without timeout", func(t *testing.T) {
		t.Parallel()
		custom := &http.Client{}
		c := newTestClient(t, Config{BaseURL: "http://example.invalid", HTTPClient: custom})
		assert.NotSame(t, custom, c.http)
		assert.Equal(t, defaultTimeout, c.http.Timeout)
		assert.Zero(t, custom.Timeout)
	})
}

func TestResource_List(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/caixas", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "2", q.Get("pagina"))
		assert.Equal(t, "20", q.Get("limite"))
		assert.Equal(t, "cto", q.Get("busca"))
		assert.Equal(t, "city-1", q.Get("cidadeId"))
		assert.False(t, q.Has("rotaId"))

		respondJSON(w, http.StatusOK, types.EncodeList("caixas", []types.Box{
			{ID: "box-1", Name: "CTO-01", Type: types.BoxTypeCTO, Capacity: 8},
		}, types.NewPagination(21, 2, 20)))
	}))
	defer ts.Close()

	c := newTestClient(t, Config{BaseURL: ts.URL})
	page, err := c.Boxes().List(context.Background(), ListOptions{
		Page:     2,
		PageSize: 20,
		Search:   " cto ",
		Filters:  map[string]string{"cidadeId": "city-1", "rotaId": " "},
	})

	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "CTO-01", page.Items[0].Name)
	assert.Equal(t, 21, page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.TotalPages)
}

func TestResource_ListWithoutOptions(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/cidades", r.URL.Path)
		assert.Empty(t, r.URL.RawQuery)
		respondJSON(w, http.StatusOK, types.EncodeList[types.City]("cidades", nil, types.NewPagination(0, 1, 10)))
	}))
	defer ts.Close()

	c := newTestClient(t, Config{BaseURL: ts.URL})
	page, err := c.Cities().List(context.Background(), ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)
}

func TestResource_Get(t *testing.T) {
	t.Parallel()

	t.Run("requires id", func(t *testing.T) {
		t.Parallel()
		c := newTestClient(t, Config{BaseURL: "http://example.invalid"})
		_, err := c.Routes().Get(context.Background(), "  ")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rota id is required")
	})

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/rotas/route-1", r.URL.Path)
			respondJSON(w, http.StatusOK, types.Route{
				ID:          "route-1",
				Name:        "Tronco",
				CableType:   12,
				Coordinates: []geo.Point{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 1}},
			})
		}))
		defer ts.Close()

		c := newTestClient(t, Config{BaseURL: ts.URL})
		route, err := c.Routes().Get(context.Background(), "route-1")
		require.NoError(t, err)
		assert.Equal(t, "Tronco", route.Name)
		assert.Len(t, route.Coordinates, 2)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			problemJSON(w, http.StatusNotFound, "Rota não encontrada")
		}))
		defer ts.Close()

		c := newTestClient(t, Config{BaseURL: ts.URL})
		_, err := c.Routes().Get(context.Background(), "missing")
		require.Error(t, err)

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
		assert.Equal(t, "Rota não encontrada", apiErr.Problem.Detail)
	})
}

func TestResource_Create(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/cidades", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req types.CreateCityRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Campinas", req.Name)

		city := types.City{ID: "city-1", Name: req.Name, State: req.State}
		respondJSON(w, http.StatusCreated, types.EncodeMutation("Cidade criada com sucesso", "cidade", &city))
	}))
	defer ts.Close()

	c := newTestClient(t, Config{BaseURL: ts.URL})
	m, err := c.Cities().Create(context.Background(), types.CreateCityRequest{Name: "Campinas", State: "SP"})

	require.NoError(t, err)
	assert.Equal(t, "Cidade criada com sucesso", m.Message)
	require.NotNil(t, m.Item)
	assert.Equal(t, "city-1", m.Item.ID)
}

func TestResource_CreateIsNotRetried(t *testing.T) {
	t.Parallel()

	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		problemJSON(w, http.StatusServiceUnavailable, "")
	}))
	defer ts.Close()

	c := newTestClient(t, Config{BaseURL: ts.URL})
	_, err := c.Fusions().Create(context.Background(), types.CreateFusionRequest{Type: types.FusionCapillaryCapillary})

	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	assert.Contains(t, err.Error(), "creating fusao")
}

func TestResource_CreateValidationError(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		problemJSON(w, http.StatusUnprocessableEntity, "Erro ao criar caixa",
			types.ValidationError{Field: "nome", Message: "campo obrigatório"})
	}))
	defer ts.Close()

	c := newTestClient(t, Config{BaseURL: ts.URL})
	_, err := c.Boxes().Create(context.Background(), types.CreateBoxRequest{})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	require.Len(t, apiErr.Problem.Errors, 1)
	assert.Equal(t, "nome", apiErr.Problem.Errors[0].Field)
}

func TestResource_Update(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/portas/port-1", r.URL.Path)

		var raw map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		assert.Equal(t, map[string]any{"status": "defeito"}, raw)

		port := types.Port{ID: "port-1", Number: 3, Status: types.PortDefect}
		respondJSON(w, http.StatusOK, types.EncodeMutation("Porta atualizada com sucesso", "porta", &port))
	}))
	defer ts.Close()

	status := types.PortDefect
	c := newTestClient(t, Config{BaseURL: ts.URL})
	m, err := c.Ports().Update(context.Background(), "port-1", types.PatchPortRequest{Status: &status})

	require.NoError(t, err)
	require.NotNil(t, m.Item)
	assert.Equal(t, types.PortDefect, m.Item.Status)
	assert.Nil(t, m.Item.ClientID)
}

func TestResource_Delete(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			assert.Equal(t, "/api/clientes/client-1", r.URL.Path)
			respondJSON(w, http.StatusOK, types.EncodeMutation[types.Customer]("Cliente excluído com sucesso", "", nil))
		}))
		defer ts.Close()

		c := newTestClient(t, Config{BaseURL: ts.URL})
		msg, err := c.Clients().Delete(context.Background(), "client-1")
		require.NoError(t, err)
		assert.Equal(t, "Cliente excluído com sucesso", msg)
	})

	t.Run("dependents", func(t *testing.T) {
		t.Parallel()
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			problemJSON(w, http.StatusConflict, "Caixa possui registros vinculados e não pode ser excluída")
		}))
		defer ts.Close()

		c := newTestClient(t, Config{BaseURL: ts.URL})
		_, err := c.Boxes().Delete(context.Background(), "box-1")

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
		assert.Contains(t, err.Error(), "não pode ser excluída")
	})
}

func TestReplaceBoxPorts(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/caixas/box-1/portas", r.URL.Path)

		var req types.ReplacePortsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Ports, 1)
		assert.Equal(t, 2, req.Ports[0].Number)

		respondJSON(w, http.StatusOK, types.ReplacePortsResponse{
			Message: "Portas atualizadas com sucesso",
			Ports: []types.Port{
				{ID: "p1", Number: 1, Status: types.PortAvailable},
				{ID: "p2", Number: 2, Status: types.PortReserved},
			},
		})
	}))
	defer ts.Close()

	c := newTestClient(t, Config{BaseURL: ts.URL})
	resp, err := c.ReplaceBoxPorts(context.Background(), "box-1", types.ReplacePortsRequest{
		Ports: []types.PortInput{{Number: 2, Status: types.PortReserved}},
	})

	require.NoError(t, err)
	assert.Equal(t, "Portas atualizadas com sucesso", resp.Message)
	require.Len(t, resp.Ports, 2)
	assert.Equal(t, types.PortReserved, resp.Ports[1].Status)

	_, err = c.ReplaceBoxPorts(context.Background(), "", types.ReplacePortsRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "caixa id is required")
}

func TestBoxOccupancy(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/caixas/box-1/ocupacao", r.URL.Path)
		respondJSON(w, http.StatusOK, types.Occupancy{Occupied: 2, Capacity: 4, Percentage: 50})
	}))
	defer ts.Close()

	c := newTestClient(t, Config{BaseURL: ts.URL})
	occ, err := c.BoxOccupancy(context.Background(), "box-1")

	require.NoError(t, err)
	assert.Equal(t, types.Occupancy{Occupied: 2, Capacity: 4, Percentage: 50}, occ)
}

func TestAPIError_FallbacksForEmptyBody(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	c := newTestClient(t, Config{BaseURL: ts.URL})
	_, err := c.Tubes().Get(context.Background(), "tube-1")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Problem.Status)
	assert.Equal(t, "Bad Gateway", apiErr.Problem.Title)
	assert.Empty(t, apiErr.Problem.Detail)
	assert.Contains(t, apiErr.Error(), "api error 502: Bad Gateway")
}
