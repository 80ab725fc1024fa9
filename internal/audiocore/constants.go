package audiocore

// Audio path constants. MaxBlockSize bounds the frames-per-callback the
// preallocated scratch buffers can absorb; a configured block size above it
// is rejected when the engine is built, and capture callbacks delivering
// more frames are dropped and counted.
const (
	MaxBlockSize      = 2048
	MaxChannels       = 2
	DefaultSampleRate = 48000
	DefaultBlockSize  = 480
	DefaultChannels   = 2

	// BytesPerSample is the wire format of both devices: signed 16-bit.
	BytesPerSample = 2
)
