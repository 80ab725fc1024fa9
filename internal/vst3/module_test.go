package vst3

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenModuleMissingFile(t *testing.T) {
	_, err := OpenModule(filepath.Join(t.TempDir(), "does-not-exist.vst3"))
	assert.Error(t, err)
}

func TestOpenModuleNotALibrary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.so")
	require.NoError(t, os.WriteFile(path, []byte("not a shared object"), 0o644))
	_, err := OpenModule(path)
	assert.Error(t, err)
}

func TestResolveBundlePathPassthrough(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.so")
	require.NoError(t, os.WriteFile(path, []byte{}, 0o644))
	got, err := resolveBundlePath(path)
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestResolveBundlePathLinuxLayout(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("bundle layout under test is the Linux one")
	}
	arch := "x86_64"
	if runtime.GOARCH == "arm64" {
		arch = "aarch64"
	}
	bundle := filepath.Join(t.TempDir(), "Chorus.vst3")
	binDir := filepath.Join(bundle, "Contents", arch+"-linux")
	require.NoError(t, os.MkdirAll(binDir, 0o755))
	binPath := filepath.Join(binDir, "Chorus.so")
	require.NoError(t, os.WriteFile(binPath, []byte{}, 0o644))

	got, err := resolveBundlePath(bundle)
	require.NoError(t, err)
	assert.Equal(t, binPath, got)
}

func TestResolveBundlePathMissingBinary(t *testing.T) {
	bundle := filepath.Join(t.TempDir(), "Empty.vst3")
	require.NoError(t, os.MkdirAll(bundle, 0o755))
	_, err := resolveBundlePath(bundle)
	assert.Error(t, err)
}
