package platform

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAdapter struct{ p Platform }

func (f *fakeAdapter) Platform() Platform { return f.p }

func (f *fakeAdapter) Post(context.Context, PostRequest) (string, error) { return "", nil }

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	require.NoError(t, r.Register(&fakeAdapter{p: Twitter}))

	got, err := r.Get(Twitter)
	require.NoError(t, err)
	assert.Equal(t, Twitter, got.Platform())

	_, err = r.Get(LinkedIn)
	assert.Error(t, err)
}

func TestRegistryRejectsDuplicateAndUnknown(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	require.NoError(t, r.Register(&fakeAdapter{p: Twitter}))

	assert.Error(t, r.Register(&fakeAdapter{p: Twitter}))
	assert.Error(t, r.Register(&fakeAdapter{p: Platform("myspace")}))
}

func TestRegistryAvailableStableOrder(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	assert.Empty(t, r.Available())

	// Registration order does not matter; Available follows All()
	require.NoError(t, r.Register(&fakeAdapter{p: Instagram}))
	require.NoError(t, r.Register(&fakeAdapter{p: Twitter}))

	assert.Equal(t, []Platform{Twitter, Instagram}, r.Available())
}
