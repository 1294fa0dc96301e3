package portstatus

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fibradoc/fibradoc/pkg/client"
	"github.com/fibradoc/fibradoc/pkg/hook"
	"github.com/fibradoc/fibradoc/pkg/types"
)

const baseURL = "http://fibradoc.test"

func newHookWorkflow(t *testing.T) (*Workflow, *httpmock.MockTransport, *[]map[string]any) {
	t.Helper()

	mt := httpmock.NewMockTransport()
	c, err := client.New(client.Config{BaseURL: baseURL, HTTPClient: &http.Client{Transport: mt}})
	require.NoError(t, err)

	var patches []map[string]any
	mt.RegisterResponder(http.MethodPatch, baseURL+"/api/portas/port-1", func(req *http.Request) (*http.Response, error) {
		var body map[string]any
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			return nil, err
		}
		patches = append(patches, body)
		port := types.Port{ID: "port-1", Number: 1}
		return httpmock.NewJsonResponse(http.StatusOK, types.EncodeMutation("Porta atualizada com sucesso", "porta", &port))
	})
	mt.RegisterResponder(http.MethodGet, baseURL+"/api/clientes", func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "100", req.URL.Query().Get("limite"))
		return httpmock.NewJsonResponse(http.StatusOK, types.EncodeList("clientes", []types.Customer{
			{ID: "c1", Name: "Ana"},
			{ID: "c2", Name: "Bruno", PortID: strPtr("port-2")},
		}, types.NewPagination(2, 1, 100)))
	})

	w := NewFromHooks("port-1", hook.NewPorts(c), hook.NewClients(c))
	w.Open()
	return w, mt, &patches
}

func TestHookSource_AvailableIssuesOneUpdateWithoutClient(t *testing.T) {
	w, mt, patches := newHookWorkflow(t)

	st, err := w.ChooseStatus(context.Background(), types.PortAvailable)
	require.NoError(t, err)
	assert.Equal(t, Closed{Applied: true}, st)

	assert.Equal(t, 1, mt.GetTotalCallCount())
	require.Len(t, *patches, 1)
	assert.Equal(t, map[string]any{"status": "disponivel"}, (*patches)[0])
}

func TestHookSource_InUseUpdatesOnlyOnConfirm(t *testing.T) {
	w, _, patches := newHookWorkflow(t)
	ctx := context.Background()

	st, err := w.ChooseStatus(ctx, types.PortInUse)
	require.NoError(t, err)
	sel := st.(ClientSelection)
	require.Len(t, sel.Clients, 1)
	assert.Empty(t, *patches)

	_, err = w.SelectClient("c1")
	require.NoError(t, err)
	assert.Empty(t, *patches)

	_, err = w.Confirm(ctx)
	require.NoError(t, err)
	require.Len(t, *patches, 1)
	assert.Equal(t, map[string]any{"status": "em_uso", "clienteId": "c1"}, (*patches)[0])
}

func TestHookSource_FailureIsReturned(t *testing.T) {
	mt := httpmock.NewMockTransport()
	c, err := client.New(client.Config{BaseURL: baseURL, HTTPClient: &http.Client{Transport: mt}})
	require.NoError(t, err)
	mt.RegisterResponder(http.MethodPatch, baseURL+"/api/portas/port-1",
		httpmock.NewJsonResponderOrPanic(http.StatusNotFound, types.ProblemDetail{Status: 404, Detail: "Porta não encontrada"}))

	w := NewFromHooks("port-1", hook.NewPorts(c), hook.NewClients(c))
	w.Open()

	_, err = w.ChooseStatus(context.Background(), types.PortDefect)
	var f *hook.Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, hook.KindNotFound, f.Kind)
	assert.Equal(t, "Porta não encontrada", f.Message)
	assert.Equal(t, StatusSelection{}, w.State())
}
