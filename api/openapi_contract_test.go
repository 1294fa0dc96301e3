package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/fibradoc/fibradoc/pkg/types"
)

func TestOpenAPIContract_ParsesAndHasRequiredPaths(t *testing.T) {
	doc := decodeOpenAPI(t)
	assert.Equal(t, "3.0.3", asString(doc["openapi"]))

	paths := mapAt(t, doc, "paths")
	for _, path := range []string{
		"/health",
		"/readiness",
		"/version",
		"/metrics",
		"/api/openapi.yaml",
		"/api/caixas/{id}/portas",
		"/api/caixas/{id}/ocupacao",
	} {
		assert.Containsf(t, paths, path, "missing path %s", path)
	}

	for _, entity := range []types.Entity{
		types.EntityCity, types.EntityBox, types.EntityPort, types.EntityTray, types.EntitySplitter,
		types.EntityCapillary, types.EntityRoute, types.EntityTube, types.EntityFusion, types.EntityClient,
	} {
		collection := "/api/" + entity.Path
		item := collection + "/{id}"
		for _, method := range []string{"get", "post"} {
			operationAt(t, paths, collection, method)
		}
		for _, method := range []string{"get", "patch", "delete"} {
			operationAt(t, paths, item, method)
		}
	}
}

func TestOpenAPIContract_EnumsMatchDomainTypes(t *testing.T) {
	doc := decodeOpenAPI(t)
	schemas := mapAt(t, mapAt(t, doc, "components"), "schemas")

	portStatuses := make([]string, 0, len(types.PortStatuses))
	for _, s := range types.PortStatuses {
		portStatuses = append(portStatuses, string(s))
	}
	assert.ElementsMatch(t, portStatuses, stringSliceAt(t, mapAt(t, schemas, "StatusPorta"), "enum"))

	assert.ElementsMatch(t,
		[]string{string(types.BoxTypeCTO), string(types.BoxTypeCEO)},
		stringSliceAt(t, mapAt(t, schemas, "TipoCaixa"), "enum"))

	assert.ElementsMatch(t,
		[]string{string(types.Splitter1x2), string(types.Splitter1x8), string(types.Splitter1x16)},
		stringSliceAt(t, mapAt(t, schemas, "TipoSpliter"), "enum"))

	assert.ElementsMatch(t,
		[]string{string(types.FusionCapillaryCapillary), string(types.FusionCapillarySplitter), string(types.FusionSplitterClient)},
		stringSliceAt(t, mapAt(t, schemas, "TipoFusao"), "enum"))

	assert.ElementsMatch(t,
		[]string{string(types.CrossingAerial), string(types.CrossingUnderground), string(types.CrossingPosted)},
		stringSliceAt(t, mapAt(t, schemas, "TipoPassagem"), "enum"))

	rawCables, ok := mapAt(t, schemas, "TipoCabo")["enum"].([]any)
	require.True(t, ok)
	cables := make([]int, 0, len(rawCables))
	for _, v := range rawCables {
		n, ok := v.(int)
		require.True(t, ok)
		cables = append(cables, n)
	}
	assert.Equal(t, types.CableTypes, cables)
}

func TestOpenAPIContract_TrayCreationIsDisabled(t *testing.T) {
	doc := decodeOpenAPI(t)
	op := operationAt(t, mapAt(t, doc, "paths"), "/api/bandejas", "post")

	responses := mapAt(t, op, "responses")
	assert.Contains(t, responses, "405")
	assert.NotContains(t, responses, "201")
}

func decodeOpenAPI(t *testing.T) map[string]any {
	t.Helper()

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(OpenAPISpec, &doc))
	require.NotEmpty(t, doc)
	return doc
}

func operationAt(t *testing.T, paths map[string]any, path, method string) map[string]any {
	t.Helper()
	pathItem := mapValue(t, paths[path], "paths["+path+"]")
	op, ok := pathItem[method]
	require.Truef(t, ok, "missing method %s on path %s", method, path)
	return mapValue(t, op, "paths["+path+"]["+method+"]")
}

func mapAt(t *testing.T, parent map[string]any, key string) map[string]any {
	t.Helper()
	value, ok := parent[key]
	require.Truef(t, ok, "missing key %q", key)
	return mapValue(t, value, key)
}

func mapValue(t *testing.T, value any, name string) map[string]any {
	t.Helper()
	out, ok := value.(map[string]any)
	require.Truef(t, ok, "%s must be an object", name)
	return out
}

func stringSliceAt(t *testing.T, parent map[string]any, key string) []string {
	t.Helper()
	value, ok := parent[key]
	require.Truef(t, ok, "missing key %q", key)
	raw, ok := value.([]any)
	require.True(t, ok, "value must be an array")
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		out = append(out, asString(item))
	}
	return out
}

func asString(value any) string {
	if text, ok := value.(string); ok {
		return text
	}
	return ""
}
