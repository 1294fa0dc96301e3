// Package client provides a typed HTTP client SDK for the FibraDoc API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fibradoc/fibradoc/pkg/types"
)

const (
	defaultTimeout = 30 * time.Second
	apiPrefix      = "/api"
	maxErrorBody   = 1 << 16
)

// Config holds client configuration.
type Config struct {
	// BaseURL is the root URL of the API (for example: http://localhost:8080).
	BaseURL string
	// Timeout is the per-request timeout. Defaults to 30s.
	Timeout time.Duration
	// HTTPClient overrides the transport. Timeout is applied to a copy when
	// the given client has none.
	HTTPClient *http.Client
}

// Client is the typed HTTP SDK for the FibraDoc API. Writes are never
// retried.
type Client struct {
	http    *http.Client
	baseURL string
	cfg     Config
}

// APIError is returned for every non-2xx response.
type APIError struct {
	StatusCode int
	Problem    types.ProblemDetail
}

func (e *APIError) Error() string {
	if detail := strings.TrimSpace(e.Problem.Detail); detail != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, detail)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// New creates a new client.
func New(cfg Config) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("client: BaseURL is required")
	}
	cfg.BaseURL = strings.TrimRight(baseURL, "/")

	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	} else if httpClient.Timeout == 0 {
		copied := *httpClient
		copied.Timeout = cfg.Timeout
		httpClient = &copied
	}

	return &Client{
		http:    httpClient,
		baseURL: cfg.BaseURL,
		cfg:     cfg,
	}, nil
}

// Cities returns the /api/cidades resource.
func (c *Client) Cities() *Resource[types.City, types.CreateCityRequest, types.PatchCityRequest] {
	return newResource[types.City, types.CreateCityRequest, types.PatchCityRequest](c, types.EntityCity)
}

// Boxes returns the /api/caixas resource.
func (c *Client) Boxes() *Resource[types.Box, types.CreateBoxRequest, types.PatchBoxRequest] {
	return newResource[types.Box, types.CreateBoxRequest, types.PatchBoxRequest](c, types.EntityBox)
}

// Ports returns the /api/portas resource.
func (c *Client) Ports() *Resource[types.Port, types.CreatePortRequest, types.PatchPortRequest] {
	return newResource[types.Port, types.CreatePortRequest, types.PatchPortRequest](c, types.EntityPort)
}

// Trays returns the /api/bandejas resource. The server rejects Create.
func (c *Client) Trays() *Resource[types.Tray, types.CreateTrayRequest, types.PatchTrayRequest] {
	return newResource[types.Tray, types.CreateTrayRequest, types.PatchTrayRequest](c, types.EntityTray)
}

// Splitters returns the /api/spliters resource.
func (c *Client) Splitters() *Resource[types.Splitter, types.CreateSplitterRequest, types.PatchSplitterRequest] {
	return newResource[types.Splitter, types.CreateSplitterRequest, types.PatchSplitterRequest](c, types.EntitySplitter)
}

// Capillaries returns the /api/capilares resource.
func (c *Client) Capillaries() *Resource[types.Capillary, types.CreateCapillaryRequest, types.PatchCapillaryRequest] {
	return newResource[types.Capillary, types.CreateCapillaryRequest, types.PatchCapillaryRequest](c, types.EntityCapillary)
}

// Routes returns the /api/rotas resource.
func (c *Client) Routes() *Resource[types.Route, types.CreateRouteRequest, types.PatchRouteRequest] {
	return newResource[types.Route, types.CreateRouteRequest, types.PatchRouteRequest](c, types.EntityRoute)
}

// Tubes returns the /api/tubos resource.
func (c *Client) Tubes() *Resource[types.Tube, types.CreateTubeRequest, types.PatchTubeRequest] {
	return newResource[types.Tube, types.CreateTubeRequest, types.PatchTubeRequest](c, types.EntityTube)
}

// Fusions returns the /api/fusoes resource.
func (c *Client) Fusions() *Resource[types.Fusion, types.CreateFusionRequest, types.PatchFusionRequest] {
	return newResource[types.Fusion, types.CreateFusionRequest, types.PatchFusionRequest](c, types.EntityFusion)
}

// Clients returns the /api/clientes resource.
func (c *Client) Clients() *Resource[types.Customer, types.CreateClientRequest, types.PatchClientRequest] {
	return newResource[types.Customer, types.CreateClientRequest, types.PatchClientRequest](c, types.EntityClient)
}

// ReplaceBoxPorts upserts ports of a CTO by number.
func (c *Client) ReplaceBoxPorts(
	ctx context.Context,
	boxID string,
	req types.ReplacePortsRequest,
) (types.ReplacePortsResponse, error) {
	var out types.ReplacePortsResponse
	path, err := itemPath(types.EntityBox, boxID)
	if err != nil {
		return out, err
	}
	data, err := c.do(ctx, http.MethodPut, path+"/portas", req)
	if err != nil {
		return out, fmt.Errorf("replacing ports of box %q: %w", boxID, err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decoding ports: %w", err)
	}
	return out, nil
}

// BoxOccupancy returns the derived occupancy of a box.
func (c *Client) BoxOccupancy(ctx context.Context, boxID string) (types.Occupancy, error) {
	var out types.Occupancy
	path, err := itemPath(types.EntityBox, boxID)
	if err != nil {
		return out, err
	}
	data, err := c.do(ctx, http.MethodGet, path+"/ocupacao", nil)
	if err != nil {
		return out, fmt.Errorf("getting occupancy of box %q: %w", boxID, err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decoding occupancy: %w", err)
	}
	return out, nil
}

// do sends one request and returns the response body of a 2xx answer.
// Any other status becomes an *APIError.
func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeAPIError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return data, nil
}

func decodeAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Problem: types.ProblemDetail{
			Type:   "about:blank",
			Title:  http.StatusText(resp.StatusCode),
			Status: resp.StatusCode,
		},
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(bytes.TrimSpace(data)) == 0 {
		return apiErr
	}

	var problem types.ProblemDetail
	if json.Unmarshal(data, &problem) == nil {
		if problem.Status == 0 {
			problem.Status = resp.StatusCode
		}
		apiErr.Problem = problem
	}
	return apiErr
}
