// Package vst3 implements the host side of the VST3 binary plugin protocol:
// the COM-style interface runtime (reference-counted objects behind C vtables),
// typed client wrappers over the plugin's interfaces, the host-implemented
// callback objects a plugin requires, and the dynamic module loader.
//
// The plugin ABI is not negotiable, so this package is the only place in the
// host that deals in raw vtables and unmanaged memory. Everything above it
// works with ordinary Go values.
//
// Calls into plugin code go through purego.SyscallN; callbacks out of plugin
// code arrive through purego.NewCallback trampolines. Both sides use the
// platform C calling convention, which is the C++ member-function convention
// on every 64-bit target this package supports.
package vst3
