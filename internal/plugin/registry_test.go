package plugin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/plughost/internal/vst3/vst3mock"
)

func TestRegistryAddRemove(t *testing.T) {
	mock := vst3mock.New(vst3mock.Options{})
	defer mock.Close()

	r := NewRegistry()
	assert.Zero(t, r.Len())

	a, err := LoadFromFactory(mock.Factory(), Config{})
	require.NoError(t, err)
	b, err := LoadFromFactory(mock.Factory(), Config{})
	require.NoError(t, err)

	r.Add(a)
	r.Add(b)
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []*Instance{a, b}, r.Snapshot())

	assert.True(t, r.Remove(a))
	assert.False(t, r.Remove(a))
	assert.Equal(t, 1, r.Len())
	a.Drop()

	r.DrainAndDrop()
	assert.Zero(t, r.Len())
}

func TestRegistryTryRead(t *testing.T) {
	r := NewRegistry()

	items, ok := r.TryRead()
	require.True(t, ok)
	assert.Empty(t, items)
	r.ReadDone()

	// While a writer holds the lock, the audio path must not block.
	r.mu.Lock()
	_, ok = r.TryRead()
	assert.False(t, ok)
	r.mu.Unlock()

	_, ok = r.TryRead()
	require.True(t, ok)
	r.ReadDone()
}

func TestRegistryOrderPreserved(t *testing.T) {
	mock := vst3mock.New(vst3mock.Options{})
	defer mock.Close()

	r := NewRegistry()
	var loaded []*Instance
	for i := 0; i < 5; i++ {
		inst, err := LoadFromFactory(mock.Factory(), Config{})
		require.NoError(t, err)
		loaded = append(loaded, inst)
		r.Add(inst)
	}
	assert.Equal(t, loaded, r.Snapshot())
	r.DrainAndDrop()
}
