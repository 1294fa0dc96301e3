// Run against a live service with: go test -tags smoke ./pkg/client/...

//go:build smoke

package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fibradoc/fibradoc/pkg/geo"
	"github.com/fibradoc/fibradoc/pkg/types"
)

const (
	defaultSmokeURL      = "http://127.0.0.1:8080"
	defaultHealthTimeout = 10 * time.Second
)

func smokeURL() string {
	if value := strings.TrimSpace(os.Getenv("FIBRADOC_TEST_URL")); value != "" {
		return value
	}
	return defaultSmokeURL
}

func waitForHealthy(t *testing.T, baseURL string, timeout time.Duration) {
	t.Helper()

	hc := &http.Client{Timeout: 1 * time.Second}
	deadline := time.Now().Add(timeout)
	healthURL := strings.TrimRight(baseURL, "/") + "/health"
	lastError := ""

	for time.Now().Before(deadline) {
		resp, err := hc.Get(healthURL)
		if err != nil {
			lastError = err.Error()
			time.Sleep(250 * time.Millisecond)
			continue
		}
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			return
		}
		lastError = fmt.Sprintf("status=%d body=%q", resp.StatusCode, strings.TrimSpace(string(body)))
		time.Sleep(250 * time.Millisecond)
	}

	t.Fatalf("fibradoc not healthy within %s: %s", timeout, lastError)
}

func uniqueName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

func TestSmoke_CRUDHappyPath(t *testing.T) {
	baseURL := smokeURL()
	waitForHealthy(t, baseURL, defaultHealthTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	c, err := New(Config{BaseURL: baseURL})
	require.NoError(t, err)

	city, err := c.Cities().Create(ctx, types.CreateCityRequest{
		Name:        uniqueName("smoke"),
		State:       "sp",
		Coordinates: geo.Point{Lat: -22.9, Lng: -47.06},
	})
	require.NoError(t, err)
	require.NotNil(t, city.Item)
	assert.Equal(t, "SP", city.Item.State)
	cityID := city.Item.ID

	route, err := c.Routes().Create(ctx, types.CreateRouteRequest{
		Name:         uniqueName("tronco"),
		CableType:    12,
		CrossingType: types.CrossingAerial,
		Coordinates:  []geo.Point{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 1}},
		CityID:       cityID,
	})
	require.NoError(t, err)
	require.NotNil(t, route.Item)
	assert.InDelta(t, 111195, route.Item.Distance, 10)

	box, err := c.Boxes().Create(ctx, types.CreateBoxRequest{
		Name:        uniqueName("cto"),
		Type:        types.BoxTypeCTO,
		Capacity:    4,
		Coordinates: geo.Point{Lat: -22.9, Lng: -47.06},
		CityID:      cityID,
		RouteIDs:    []string{route.Item.ID},
	})
	require.NoError(t, err)
	require.NotNil(t, box.Item)
	boxID := box.Item.ID

	ports, err := c.ReplaceBoxPorts(ctx, boxID, types.ReplacePortsRequest{
		Ports: []types.PortInput{{Number: 1, Status: types.PortDefect}},
	})
	require.NoError(t, err)
	assert.Len(t, ports.Ports, 4)

	occ, err := c.BoxOccupancy(ctx, boxID)
	require.NoError(t, err)
	assert.Equal(t, types.Occupancy{Occupied: 1, Capacity: 4, Percentage: 25}, occ)

	page, err := c.Ports().List(ctx, ListOptions{Page: 1, PageSize: 2, Filters: map[string]string{"caixaId": boxID}})
	require.NoError(t, err)
	assert.Equal(t, 4, page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.TotalPages)

	_, err = c.Boxes().Delete(ctx, boxID)
	require.NoError(t, err)

	_, err = c.Boxes().Delete(ctx, boxID)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)

	_, err = c.Routes().Delete(ctx, route.Item.ID)
	require.NoError(t, err)
	_, err = c.Cities().Delete(ctx, cityID)
	require.NoError(t, err)
}
