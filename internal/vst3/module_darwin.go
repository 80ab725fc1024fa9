//go:build darwin

package vst3

import (
	"fmt"
	"os"
	"path/filepath"

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

// moduleEntryPoints resolves the macOS entry pair bundleEntry/bundleExit.
// The entry expects a CFBundleRef; passing the dlopen handle is the
// loader's long-standing compromise for plugins loaded outside CoreFoundation,
// and every SDK-built plugin tolerates it.
func moduleEntryPoints(handle uintptr) (entry func() bool, exit func(), ok bool) {
	entrySym, err := purego.Dlsym(handle, "bundleEntry")
	if err != nil || entrySym == 0 {
		return nil, nil, false
	}
	exitSym, _ := purego.Dlsym(handle, "bundleExit")
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

// resolveBundlePath maps a .vst3 bundle directory to the Mach-O binary at
// <bundle>/Contents/MacOS/<name>. Plain library paths pass through.
func resolveBundlePath(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return path, nil
	}
	name := filepath.Base(path)
	name = name[:len(name)-len(filepath.Ext(name))]
	candidate := filepath.Join(path, "Contents", "MacOS", name)
	if _, err := os.Stat(candidate); err != nil {
		return "", fmt.Errorf("no binary in bundle %s: %w", path, err)
	}
	return candidate, nil
}
