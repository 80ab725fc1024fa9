//go:build windows

package vst3

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/ebitengine/purego"
	"golang.org/x/sys/windows"
)

func dlOpen(path string) (uintptr, error) {
	h, err := windows.LoadLibrary(path)
	return uintptr(h), err
}

func dlSym(handle uintptr, name string) (uintptr, error) {
	return windows.GetProcAddress(windows.Handle(handle), name)
}

func dlClose(handle uintptr) {
	_ = windows.FreeLibrary(windows.Handle(handle))
}

// moduleEntryPoints resolves the Windows entry pair InitDll/ExitDll. Both
// are optional.
func moduleEntryPoints(handle uintptr) (entry func() bool, exit func(), ok bool) {
	entrySym, err := windows.GetProcAddress(windows.Handle(handle), "InitDll")
	if err != nil || entrySym == 0 {
		return nil, nil, false
	}
	exitSym, _ := windows.GetProcAddress(windows.Handle(handle), "ExitDll")
	entry = func() bool {
		r, _, _ := purego.SyscallN(entrySym)
		return r != 0
	}
	exit = func() {
		if exitSym != 0 {
			purego.SyscallN(exitSym)
		}
	}
	return entry, exit, true
}

// resolveBundlePath maps a .vst3 bundle directory to the DLL at
// <bundle>/Contents/<arch>-win/<name>.vst3. Plain file paths pass through;
// on Windows a bare .vst3 file is itself the DLL.
func resolveBundlePath(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return path, nil
	}
	arch := "x86_64-win"
	if runtime.GOARCH == "arm64" {
		arch = "arm64-win"
	}
	name := filepath.Base(path)
	candidate := filepath.Join(path, "Contents", arch, name)
	if _, err := os.Stat(candidate); err != nil {
		return "", fmt.Errorf("no %s binary in bundle %s: %w", arch, path, err)
	}
	return candidate, nil
}
