package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderBasics(t *testing.T) {
	base := stderrors.New("device vanished")
	err := New(base).
		Component("audiocore").
		Category(CategoryAudioDevice).
		Context("device", "hw:0").
		Build()

	assert.Equal(t, "device vanished", err.Error())
	assert.Equal(t, "audiocore", err.GetComponent())
	assert.Equal(t, string(CategoryAudioDevice), err.GetCategory())
	assert.Equal(t, "hw:0", err.GetContext()["device"])
	assert.True(t, stderrors.Is(err, base))
}

func TestNewfAndNilError(t *testing.T) {
	err := Newf("bus %d missing", 3).Build()
	assert.Equal(t, "bus 3 missing", err.Error())

	nilWrapped := New(nil).Build()
	assert.NotEmpty(t, nilWrapped.Error())
}

func TestCategoryMatching(t *testing.T) {
	a := New(stderrors.New("x")).Category(CategoryPluginLoad).Build()
	b := New(stderrors.New("y")).Category(CategoryPluginLoad).Build()
	c := New(stderrors.New("z")).Category(CategoryProtocol).Build()

	assert.True(t, stderrors.Is(a, b), "same category matches")
	assert.False(t, stderrors.Is(a, c), "different category does not")
}

func TestUnwrapAndAs(t *testing.T) {
	base := stderrors.New("inner")
	err := New(base).Build()
	assert.Equal(t, base, Unwrap(err))

	var ee *EnhancedError
	require.True(t, As(err, &ee))
	assert.Equal(t, err, ee)
}

func TestCategorizedErrorInterface(t *testing.T) {
	err := New(stderrors.New("x")).Category(CategoryRealtime).Build()
	var ce CategorizedError = err
	assert.Equal(t, CategoryRealtime, ce.ErrorCategory())
}

func TestComponentDetectionFallsBack(t *testing.T) {
	// Called from the errors package's own tests there is no internal
	// component frame to find.
	err := New(stderrors.New("x")).Build()
	assert.Equal(t, ComponentUnknown, err.GetComponent())
}
