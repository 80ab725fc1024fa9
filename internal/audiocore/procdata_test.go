package audiocore

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/plughost/internal/vst3"
)

// The process-data contract: the record, the bus descriptors and the
// channel-pointer arrays live at byte-identical addresses on every block.
func TestProcessBlockAddressStability(t *testing.T) {
	b := newProcessBlock(2)
	defer b.release()

	dataAddr := uintptr(unsafe.Pointer(&b.data))
	inputsAddr := uintptr(unsafe.Pointer(b.data.Inputs))
	outputsAddr := uintptr(unsafe.Pointer(b.data.Outputs))
	inChans := b.inBus.ChannelBuffers
	outChans := b.outBus.ChannelBuffers
	inCh0 := b.inPtrs[0]
	outCh1 := b.outPtrs[1]

	for block := 0; block < 50; block++ {
		b.prepare(480, vst3.ProcessModeRealtime)
		b.chain(480)

		assert.Equal(t, dataAddr, uintptr(unsafe.Pointer(&b.data)))
		assert.Equal(t, inputsAddr, uintptr(unsafe.Pointer(b.data.Inputs)))
		assert.Equal(t, outputsAddr, uintptr(unsafe.Pointer(b.data.Outputs)))
		assert.Equal(t, inChans, b.inBus.ChannelBuffers)
		assert.Equal(t, outChans, b.outBus.ChannelBuffers)
		assert.Equal(t, inCh0, b.inPtrs[0])
		assert.Equal(t, outCh1, b.outPtrs[1])
	}
}

func TestProcessBlockPrepareClearsOutput(t *testing.T) {
	b := newProcessBlock(2)
	defer b.release()

	for c := range b.out {
		for i := range b.out[c] {
			b.out[c][i] = 1
		}
	}
	b.prepare(480, vst3.ProcessModeRealtime)
	assert.Equal(t, int32(480), b.data.NumSamples)
	for c := range b.out {
		for i := 0; i < 480; i++ {
			require.Zero(t, b.out[c][i])
		}
	}
}

func TestProcessBlockChainCopiesOutToIn(t *testing.T) {
	b := newProcessBlock(2)
	defer b.release()

	for c := range b.out {
		for i := 0; i < 8; i++ {
			b.out[c][i] = float32(c*100 + i)
		}
	}
	b.chain(8)
	for c := range b.in {
		for i := 0; i < 8; i++ {
			assert.Equal(t, float32(c*100+i), b.in[c][i])
		}
	}
}

func TestProcessBlockLayout(t *testing.T) {
	b := newProcessBlock(2)
	defer b.release()

	assert.Equal(t, int32(1), b.data.NumInputs)
	assert.Equal(t, int32(1), b.data.NumOutputs)
	assert.Equal(t, int32(2), b.inBus.NumChannels)
	assert.NotNil(t, b.data.InputParameterChanges)
	assert.Nil(t, b.data.OutputParameterChanges)
	assert.Nil(t, b.data.ProcessContext)

	// The ABI structs must keep their C sizes.
	assert.Equal(t, uintptr(24), unsafe.Sizeof(vst3.ProcessSetup{}))
	assert.Equal(t, uintptr(24), unsafe.Sizeof(vst3.AudioBusBuffers{}))
	assert.Equal(t, uintptr(80), unsafe.Sizeof(vst3.ProcessData{}))
	assert.Equal(t, uintptr(116), unsafe.Sizeof(vst3.PClassInfo{}))
	assert.Equal(t, uintptr(452), unsafe.Sizeof(vst3.PFactoryInfo{}))
	assert.Equal(t, uintptr(276), unsafe.Sizeof(vst3.BusInfo{}))
	assert.Equal(t, uintptr(16), unsafe.Sizeof(vst3.ViewRect{}))
}
