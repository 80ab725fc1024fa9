//go:build linux

package vst3

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/ebitengine/purego"
)

func dlOpen(path string) (uintptr, error) {
	return purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
}

func dlSym(handle uintptr, name string) (uintptr, error) {
	return purego.Dlsym(handle, name)
}

func dlClose(handle uintptr) {
	_ = purego.Dlclose(handle)
}

// moduleEntryPoints resolves the Linux entry pair ModuleEntry/ModuleExit.
// Both are optional per the plugin packaging rules.
func moduleEntryPoints(handle uintptr) (entry func() bool, exit func(), ok bool) {
	entrySym, err := purego.Dlsym(handle, "ModuleEntry")
	if err != nil || entrySym == 0 {
		return nil, nil, false
	}
	exitSym, _ := purego.Dlsym(handle, "ModuleExit")
	entry = func() bool {
		r, _, _ := purego.SyscallN(entrySym, handle)
		return r != 0
	}
	exit = func() {
		if exitSym != 0 {
			purego.SyscallN(exitSym)
		}
	}
	return entry, exit, true
}

// resolveBundlePath maps a .vst3 bundle directory to the shared object
// inside it: <bundle>/Contents/<arch>-linux/<name>.so. Plain library paths
// pass through untouched.
func resolveBundlePath(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return path, nil
	}
	arch := runtime.GOARCH
	switch arch {
	case "amd64":
		arch = "x86_64"
	case "arm64":
		arch = "aarch64"
	}
	name := filepath.Base(path)
	name = name[:len(name)-len(filepath.Ext(name))]
	candidate := filepath.Join(path, "Contents", arch+"-linux", name+".so")
	if _, err := os.Stat(candidate); err != nil {
		return "", fmt.Errorf("no %s binary in bundle %s: %w", arch, path, err)
	}
	return candidate, nil
}
