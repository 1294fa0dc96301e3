package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPagination(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		total int
		page  int
		size  int
		pages int
	}{
		{name: "empty", total: 0, page: 1, size: 10, pages: 0},
		{name: "exact", total: 20, page: 1, size: 10, pages: 2},
		{name: "partial", total: 21, page: 3, size: 10, pages: 3},
		{name: "zero size", total: 5, page: 1, size: 0, pages: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := NewPagination(tt.total, tt.page, tt.size)
			assert.Equal(t, tt.pages, p.TotalPages)
			assert.Equal(t, tt.page, p.Page)
		})
	}
}

func TestEncodeDecodeList(t *testing.T) {
	t.Parallel()

	body := EncodeList("caixas", []Box{{ID: "b1", Name: "CTO-01", Type: BoxTypeCTO}}, NewPagination(11, 2, 10))
	data, err := json.Marshal(body)
	require.NoError(t, err)

	page, err := DecodeList[Box](data, "caixas")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "CTO-01", page.Items[0].Name)
	assert.Equal(t, 2, page.Pagination.Page)
	assert.Equal(t, 2, page.Pagination.TotalPages)
}

func TestEncodeList_NilItemsIsEmptyArray(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(EncodeList[Port]("portas", nil, NewPagination(0, 1, 10)))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"portas":[]`)
}

func TestDecodeList_MissingKey(t *testing.T) {
	t.Parallel()

	page, err := DecodeList[Box]([]byte(`{"paginacao":{"total":0,"pagina":1,"limite":10,"totalPaginas":0}}`), "caixas")
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)
}

func TestDecodeMutation(t *testing.T) {
	t.Parallel()

	data := []byte(`{"mensagem":"Rota criada com sucesso","rota":{"id":"r1","nome":"Backbone"}}`)
	m, err := DecodeMutation[Route](data, "rota")
	require.NoError(t, err)
	assert.Equal(t, "Rota criada com sucesso", m.Message)
	require.NotNil(t, m.Item)
	assert.Equal(t, "Backbone", m.Item.Name)

	m, err = DecodeMutation[Route]([]byte(`{"mensagem":"Rota excluída com sucesso"}`), "rota")
	require.NoError(t, err)
	assert.Nil(t, m.Item)
}

func TestDecodeMutation_InvalidJSON(t *testing.T) {
	t.Parallel()

	_, err := DecodeMutation[Route]([]byte(`not json`), "rota")
	require.Error(t, err)
}

func TestNounMessages(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Caixa criada com sucesso", EntityBox.Noun.Created())
	assert.Equal(t, "Cliente atualizado com sucesso", EntityClient.Noun.Updated())
	assert.Equal(t, "Fusão excluída com sucesso", EntityFusion.Noun.Deleted())
	assert.Equal(t, "Tubo não encontrado", EntityTube.Noun.NotFound())
	assert.Equal(t, "Erro ao excluir caixa", EntityBox.Noun.Failed("excluir"))
	assert.Equal(t, "Capilar possui registros vinculados e não pode ser excluído", EntityCapillary.Noun.InUse())
}

func TestPortStatus(t *testing.T) {
	t.Parallel()

	for _, s := range PortStatuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, PortStatus("quebrada").Valid())
	assert.True(t, PortInUse.RequiresClient())
	assert.True(t, PortReserved.RequiresClient())
	assert.False(t, PortAvailable.RequiresClient())
	assert.False(t, PortDefect.RequiresClient())
}

func TestEnumsValid(t *testing.T) {
	t.Parallel()

	assert.True(t, BoxTypeCEO.Valid())
	assert.False(t, BoxType("XYZ").Valid())
	assert.True(t, FusionSplitterClient.Valid())
	assert.False(t, FusionType("outro").Valid())
	assert.True(t, CrossingPosted.Valid())
	assert.False(t, CrossingType("aquatico").Valid())
	assert.True(t, ValidCableType(48))
	assert.False(t, ValidCableType(7))
	assert.Equal(t, 16, Splitter1x16.Outputs())
	assert.Equal(t, 0, SplitterType("1/3").Outputs())
}
