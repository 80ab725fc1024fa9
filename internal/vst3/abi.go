//go:build amd64 || arm64

package vst3

// The vtable dispatch in this package assumes the 64-bit C ABI, where the
// C++ member-function convention collapses to a plain C call with the object
// pointer as first argument. 32-bit Windows would require thiscall and is
// not supported.
