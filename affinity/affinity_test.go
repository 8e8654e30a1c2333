package affinity

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-mpt/api"
)

func TestPinUnpin(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("thread affinity is linux only")
	}
	p := New()
	base := p.Base()
	require.NotEmpty(t, base)

	require.NoError(t, p.Pin(base[0]))
	got, err := p.Get()
	require.NoError(t, err)
	assert.Equal(t, []int{base[0]}, got)

	require.NoError(t, p.Unpin())
	got, err = p.Get()
	require.NoError(t, err)
	assert.Equal(t, base, got)
}

func TestPinRejectsInvalidCPU(t *testing.T) {
	p := New()
	err := p.Pin(-1)
	require.ErrorIs(t, err, api.ErrInvalidArgument)
	require.NoError(t, p.Unpin())
}

func TestUnsupportedPlatform(t *testing.T) {
	if runtime.GOOS == "linux" {
		t.Skip("affinity is supported here")
	}
	p := New()
	require.ErrorIs(t, p.Pin(0), ErrUnsupported)
	require.NoError(t, p.Unpin())
}
