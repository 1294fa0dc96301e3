package hook

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fibradoc/fibradoc/pkg/client"
	"github.com/fibradoc/fibradoc/pkg/types"
)

func TestGuard_AcquireRelease(t *testing.T) {
	t.Parallel()

	g := NewGuard(time.Minute)

	release, ok := g.Acquire("portas", OpUpdate, "port-1")
	require.True(t, ok)
	assert.Equal(t, 1, g.InFlight())

	_, ok = g.Acquire("portas", OpUpdate, "port-1")
	assert.False(t, ok)

	other, ok := g.Acquire("portas", OpUpdate, "port-2")
	require.True(t, ok)
	other()

	_, ok = g.Acquire("portas", OpDelete, "port-1")
	assert.True(t, ok)

	release()
	again, ok := g.Acquire("portas", OpUpdate, "port-1")
	require.True(t, ok)
	again()
}

func TestGuard_KeysExpire(t *testing.T) {
	t.Parallel()

	g := NewGuard(20 * time.Millisecond)
	_, ok := g.Acquire("caixas", OpDelete, "box-1")
	require.True(t, ok)

	require.Eventually(t, func() bool {
		release, ok := g.Acquire("caixas", OpDelete, "box-1")
		if ok {
			release()
		}
		return ok
	}, time.Second, 10*time.Millisecond)
}

func TestGuard_LateReleaseKeepsNewClaim(t *testing.T) {
	t.Parallel()

	g := NewGuard(20 * time.Millisecond)
	stale, ok := g.Acquire("portas", OpUpdate, "port-1")
	require.True(t, ok)

	var current func()
	require.Eventually(t, func() bool {
		current, ok = g.Acquire("portas", OpUpdate, "port-1")
		return ok
	}, time.Second, 5*time.Millisecond)

	stale()
	_, ok = g.Acquire("portas", OpUpdate, "port-1")
	assert.False(t, ok)

	current()
	release, ok := g.Acquire("portas", OpUpdate, "port-1")
	require.True(t, ok)
	release()
}

func TestNewGuard_DefaultTTL(t *testing.T) {
	t.Parallel()

	g := NewGuard(0)
	_, ok := g.Acquire("cidades", OpCreate, "x")
	assert.True(t, ok)
}

func TestPayloadID(t *testing.T) {
	t.Parallel()

	a := payloadID(types.CreateCityRequest{Name: "Campinas", State: "SP"})
	b := payloadID(types.CreateCityRequest{Name: "Campinas", State: "SP"})
	c := payloadID(types.CreateCityRequest{Name: "Sumaré", State: "SP"})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 16)
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		kind   Kind
	}{
		{http.StatusBadRequest, KindValidation},
		{http.StatusUnprocessableEntity, KindValidation},
		{http.StatusNotFound, KindNotFound},
		{http.StatusConflict, KindConflict},
		{http.StatusMethodNotAllowed, KindServer},
		{http.StatusServiceUnavailable, KindServer},
	}
	for _, tt := range tests {
		f := classify(&client.APIError{StatusCode: tt.status})
		assert.Equal(t, tt.kind, f.Kind, "status %d", tt.status)
		assert.Equal(t, types.GenericErrorMessage, f.Message)
		assert.False(t, f.FromServer())
	}

	dup := &Failure{Kind: KindDuplicate, Message: DuplicateMessage}
	assert.Same(t, dup, classify(dup))

	transport := classify(errors.New("dial tcp: connection refused"))
	assert.Equal(t, KindTransport, transport.Kind)
	assert.Zero(t, transport.Status)
}
