package vst3

import (
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
)

// IMessage and IAttributeList host objects. Plugins use these to shuttle
// data between their component and controller through the host's
// create_instance; the host only stores, it never interprets.

var (
	messageVtblOnce sync.Once
	messageVtbl     unsafe.Pointer
	attrListVtbl    unsafe.Pointer
)

type messageImpl struct {
	mu    sync.Mutex
	id    []byte // NUL-terminated, address handed to the plugin
	attrs *HostObject
}

// NewHostMessage constructs an IMessage object owning a fresh attribute
// list. The single initial reference is meant to be handed to the plugin.
func NewHostMessage() *HostObject {
	initMessageVtbls()
	impl := &messageImpl{attrs: newAttributeList()}
	msg := NewHostObject(messageVtbl, impl, IIDIMessage)
	msg.state.onDestroy = impl.attrs.Release
	return msg
}

// NewAttributeList constructs a standalone IAttributeList object.
func NewAttributeList() *HostObject {
	initMessageVtbls()
	return newAttributeList()
}

func initMessageVtbls() {
	messageVtblOnce.Do(func() {
		messageVtbl = NewVtable(
			purego.NewCallback(messageGetID),
			purego.NewCallback(messageSetID),
			purego.NewCallback(messageGetAttributes),
		)
		attrListVtbl = NewVtable(
			purego.NewCallback(attrSetInt),
			purego.NewCallback(attrGetInt),
			purego.NewCallback(attrSetFloat),
			purego.NewCallback(attrGetFloat),
			purego.NewCallback(attrSetString),
			purego.NewCallback(attrGetString),
			purego.NewCallback(attrSetBinary),
			purego.NewCallback(attrGetBinary),
		)
	})
}

func newAttributeList() *HostObject {
	impl := &attributeListImpl{values: make(map[string]attrValue)}
	return NewHostObject(attrListVtbl, impl, IIDIAttributeList)
}

func messageGetID(this uintptr) uintptr {
	impl, ok := ImplOf(this).(*messageImpl)
	if !ok {
		return 0
	}
	impl.mu.Lock()
	defer impl.mu.Unlock()
	if len(impl.id) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&impl.id[0]))
}

func messageSetID(this, id uintptr) uintptr {
	impl, ok := ImplOf(this).(*messageImpl)
	if !ok {
		return 0
	}
	impl.mu.Lock()
	impl.id = cString(goStringFromCStr(unsafe.Pointer(id)))
	impl.mu.Unlock()
	return 0
}

// get_attributes lends the backing list without transferring ownership;
// the list lives and dies with its message.
func messageGetAttributes(this uintptr) uintptr {
	impl, ok := ImplOf(this).(*messageImpl)
	if !ok {
		return 0
	}
	return uintptr(impl.attrs.Ptr())
}

type attrKind uint8

const (
	attrInt attrKind = iota
	attrFloat
	attrString
	attrBinary
)

type attrValue struct {
	kind    attrKind
	i       int64
	f       float64
	s       []uint16 // NUL-terminated UTF-16 copy
	bin     unsafe.Pointer
	binSize uint32
}

type attributeListImpl struct {
	mu     sync.Mutex
	values map[string]attrValue
}

func attrImpl(this uintptr) *attributeListImpl {
	impl, _ := ImplOf(this).(*attributeListImpl)
	return impl
}

func attrSetInt(this, id uintptr, value int64) uintptr {
	impl := attrImpl(this)
	if impl == nil || id == 0 {
		return resultArg(ResultInvalidArgument)
	}
	impl.mu.Lock()
	impl.values[goStringFromCStr(unsafe.Pointer(id))] = attrValue{kind: attrInt, i: value}
	impl.mu.Unlock()
	return resultArg(ResultOK)
}

// Lookups for unknown keys answer ok and leave the out-parameter untouched;
// plugins in the wild probe keys this way and treat a hard error as fatal.
func attrGetInt(this, id, value uintptr) uintptr {
	impl := attrImpl(this)
	if impl == nil || id == 0 || value == 0 {
		return resultArg(ResultInvalidArgument)
	}
	impl.mu.Lock()
	v, ok := impl.values[goStringFromCStr(unsafe.Pointer(id))]
	impl.mu.Unlock()
	if ok && v.kind == attrInt {
		*(*int64)(unsafe.Pointer(value)) = v.i
	}
	return resultArg(ResultOK)
}

func attrSetFloat(this, id uintptr, value float64) uintptr {
	impl := attrImpl(this)
	if impl == nil || id == 0 {
		return resultArg(ResultInvalidArgument)
	}
	impl.mu.Lock()
	impl.values[goStringFromCStr(unsafe.Pointer(id))] = attrValue{kind: attrFloat, f: value}
	impl.mu.Unlock()
	return resultArg(ResultOK)
}

func attrGetFloat(this, id, value uintptr) uintptr {
	impl := attrImpl(this)
	if impl == nil || id == 0 || value == 0 {
		return resultArg(ResultInvalidArgument)
	}
	impl.mu.Lock()
	v, ok := impl.values[goStringFromCStr(unsafe.Pointer(id))]
	impl.mu.Unlock()
	if ok && v.kind == attrFloat {
		*(*float64)(unsafe.Pointer(value)) = v.f
	}
	return resultArg(ResultOK)
}

func attrSetString(this, id, str uintptr) uintptr {
	impl := attrImpl(this)
	if impl == nil || id == 0 || str == 0 {
		return resultArg(ResultInvalidArgument)
	}
	// Copy up to and including the terminator; the plugin's buffer is only
	// valid for this call.
	var units []uint16
	for i := 0; ; i++ {
		u := *(*uint16)(unsafe.Add(unsafe.Pointer(str), i*2))
		units = append(units, u)
		if u == 0 {
			break
		}
	}
	impl.mu.Lock()
	impl.values[goStringFromCStr(unsafe.Pointer(id))] = attrValue{kind: attrString, s: units}
	impl.mu.Unlock()
	return resultArg(ResultOK)
}

func attrGetString(this, id, str uintptr, sizeInBytes uint32) uintptr {
	impl := attrImpl(this)
	if impl == nil || id == 0 || str == 0 || sizeInBytes < 2 {
		return resultArg(ResultInvalidArgument)
	}
	impl.mu.Lock()
	v, ok := impl.values[goStringFromCStr(unsafe.Pointer(id))]
	impl.mu.Unlock()
	if !ok || v.kind != attrString {
		return resultArg(ResultOK)
	}
	max := int(sizeInBytes / 2)
	n := len(v.s)
	if n > max {
		n = max
	}
	dst := unsafe.Slice((*uint16)(unsafe.Pointer(str)), n)
	copy(dst, v.s[:n])
	dst[n-1] = 0
	return resultArg(ResultOK)
}

// Binary values are stored as the borrowed pointer and length the plugin
// supplied; no copy is taken.
func attrSetBinary(this, id, data uintptr, sizeInBytes uint32) uintptr {
	impl := attrImpl(this)
	if impl == nil || id == 0 {
		return resultArg(ResultInvalidArgument)
	}
	impl.mu.Lock()
	impl.values[goStringFromCStr(unsafe.Pointer(id))] = attrValue{
		kind:    attrBinary,
		bin:     unsafe.Pointer(data),
		binSize: sizeInBytes,
	}
	impl.mu.Unlock()
	return resultArg(ResultOK)
}

func attrGetBinary(this, id, data, sizeInBytes uintptr) uintptr {
	impl := attrImpl(this)
	if impl == nil || id == 0 || data == 0 || sizeInBytes == 0 {
		return resultArg(ResultInvalidArgument)
	}
	impl.mu.Lock()
	v, ok := impl.values[goStringFromCStr(unsafe.Pointer(id))]
	impl.mu.Unlock()
	if ok && v.kind == attrBinary {
		*(*unsafe.Pointer)(unsafe.Pointer(data)) = v.bin
		*(*uint32)(unsafe.Pointer(sizeInBytes)) = v.binSize
	}
	return resultArg(ResultOK)
}
