package vst3

import (
	"bytes"
	"unsafe"

	"golang.org/x/text/encoding/unicode"
)

// The ABI carries three string shapes: NUL-terminated ASCII (category and
// platform-type strings), NUL-terminated UTF-16 (String128 names), and the
// fixed char arrays inside the factory info structs. All conversions go
// through here.

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// DecodeString128 converts a NUL-terminated UTF-16 buffer into a Go string.
func DecodeString128(s *String128) string {
	n := 0
	for n < len(s) && s[n] != 0 {
		n++
	}
	raw := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*2)
	decoded, err := utf16le.NewDecoder().Bytes(raw)
	if err != nil {
		return ""
	}
	return string(decoded)
}

// EncodeString128 writes a Go string into a String128, truncating to fit and
// always NUL-terminating.
func EncodeString128(dst *String128, s string) {
	encoded, err := utf16le.NewEncoder().Bytes([]byte(s))
	if err != nil {
		encoded = nil
	}
	units := len(encoded) / 2
	if units > len(dst)-1 {
		units = len(dst) - 1
	}
	for i := 0; i < units; i++ {
		dst[i] = uint16(encoded[2*i]) | uint16(encoded[2*i+1])<<8
	}
	dst[units] = 0
}

// CFieldString decodes a fixed NUL-padded char array field.
func CFieldString(field []byte) string {
	return cFieldToString(field)
}

// cFieldToString decodes a fixed NUL-padded char array field.
func cFieldToString(field []byte) string {
	if i := bytes.IndexByte(field, 0); i >= 0 {
		field = field[:i]
	}
	return string(field)
}

// goStringFromCStr reads a NUL-terminated C string at p. Returns "" for nil.
func goStringFromCStr(p unsafe.Pointer) string {
	if p == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(p, n)) != 0 {
		n++
	}
	return string(unsafe.Slice((*byte)(p), n))
}

// cString returns a NUL-terminated byte slice for passing to the plugin.
// The slice is heap-allocated Go memory; the caller must keep it alive for
// the duration of the call.
func cString(s string) []byte {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return b
}
