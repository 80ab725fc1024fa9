package audiocore

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/smallnest/ringbuffer"

	"github.com/tphakala/plughost/internal/errors"
)

// captureTap records the raw interleaved capture stream to a WAV file. The
// capture callback drops bytes into a byte ring without ever blocking; a
// drain goroutine moves them to disk outside the real-time path.
type captureTap struct {
	mu sync.Mutex
	rb *ringbuffer.RingBuffer

	dropped atomic.Uint64

	sampleRate int
	channels   int

	file    *os.File
	enc     *wav.Encoder
	readBuf []byte
	intBuf  *audio.IntBuffer

	done chan struct{}
	wg   sync.WaitGroup
}

const tapDrainInterval = 200 * time.Millisecond

func newCaptureTap(dir string, sampleRate, channels int) (*captureTap, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.New(err).
			Component("audiocore").
			Category(errors.CategoryFileIO).
			Context("path", dir).
			Build()
	}
	name := fmt.Sprintf("capture-%s.wav", time.Now().Format("20060102-150405"))
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, errors.New(err).
			Component("audiocore").
			Category(errors.CategoryFileIO).
			Context("path", filepath.Join(dir, name)).
			Build()
	}

	t := &captureTap{
		// One second of audio absorbs any plausible drain-goroutine stall.
		rb:         ringbuffer.New(sampleRate * channels * BytesPerSample),
		sampleRate: sampleRate,
		channels:   channels,
		file:       f,
		enc:        wav.NewEncoder(f, sampleRate, 16, channels, 1),
		readBuf:    make([]byte, sampleRate*channels*BytesPerSample),
		done:       make(chan struct{}),
	}
	t.intBuf = &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           make([]int, sampleRate*channels),
		SourceBitDepth: 16,
	}

	t.wg.Add(1)
	go t.drainLoop()
	return t, nil
}

// write feeds raw interleaved s16le bytes from the capture callback. Never
// blocks: a contended lock or a full ring drops the block.
func (t *captureTap) write(b []byte) {
	if !t.mu.TryLock() {
		t.dropped.Add(uint64(len(b)))
		return
	}
	n, _ := t.rb.TryWrite(b)
	t.mu.Unlock()
	if n < len(b) {
		t.dropped.Add(uint64(len(b) - n))
	}
}

func (t *captureTap) drainLoop() {
	defer t.wg.Done()
	ticker := time.NewTicker(tapDrainInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			t.drain()
		case <-t.done:
			t.drain()
			return
		}
	}
}

func (t *captureTap) drain() {
	t.mu.Lock()
	n, _ := t.rb.TryRead(t.readBuf)
	t.mu.Unlock()
	if n < BytesPerSample {
		return
	}
	samples := n / BytesPerSample
	data := t.intBuf.Data[:samples]
	for i := 0; i < samples; i++ {
		data[i] = int(int16(uint16(t.readBuf[2*i]) | uint16(t.readBuf[2*i+1])<<8))
	}
	t.intBuf.Data = data
	_ = t.enc.Write(t.intBuf)
}

// close stops the drain loop and finalizes the WAV file.
func (t *captureTap) close() error {
	close(t.done)
	t.wg.Wait()
	err := t.enc.Close()
	if cerr := t.file.Close(); err == nil {
		err = cerr
	}
	return err
}
