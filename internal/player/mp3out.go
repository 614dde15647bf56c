package player

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/go-mp3"
)

// Playback states of the current load. Stored in an atomic so the streaming
// goroutine can poll them between chunks.
const (
	outIdle int32 = iota
	outPlaying
	outPaused
	outStopped
)

const chunkBytes = 4096

// pauseTick is how often a paused stream re-checks its state.
const pauseTick = 10 * time.Millisecond

// MP3Output plays MP3 files by decoding them with go-mp3 and pacing the
// raw PCM into a sink at real-time speed. The sink is typically an OS audio
// pipe; io.Discard gives a silent player with correct timing, which is all
// the sequencer needs.
//
// Like the sequencer, MP3Output expects its methods to be called from one
// control goroutine.
type MP3Output struct {
	sink io.Writer

	file  *os.File
	dec   *mp3.Decoder
	done  chan struct{}
	state *atomic.Int32
}

// NewMP3Output creates an output writing decoded PCM to sink. A nil sink
// defaults to io.Discard.
func NewMP3Output(sink io.Writer) *MP3Output {
	if sink == nil {
		sink = io.Discard
	}
	return &MP3Output{sink: sink}
}

// Load opens and prepares an MP3 file, replacing any previous load.
func (o *MP3Output) Load(path string) error {
	o.Stop()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open audio file %s: %w", path, err)
	}
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}

	o.file = f
	o.dec = dec
	o.done = make(chan struct{})
	state := &atomic.Int32{}
	state.Store(outIdle)
	o.state = state
	return nil
}

// Play starts streaming the loaded file.
func (o *MP3Output) Play() error {
	if o.dec == nil {
		return fmt.Errorf("no audio file loaded")
	}
	o.state.Store(outPlaying)
	go o.stream(o.file, o.dec, o.done, o.state)
	return nil
}

// Pause suspends the stream.
func (o *MP3Output) Pause() {
	if o.state != nil {
		o.state.CompareAndSwap(outPlaying, outPaused)
	}
}

// Resume continues a paused stream.
func (o *MP3Output) Resume() {
	if o.state != nil {
		o.state.CompareAndSwap(outPaused, outPlaying)
	}
}

// Stop halts the stream and discards the loaded file. The done channel of
// a stopped load never fires.
func (o *MP3Output) Stop() {
	if o.state != nil {
		o.state.Store(outStopped)
	}
	o.file = nil
	o.dec = nil
	o.done = nil
	o.state = nil
}

// Done reports natural completion of the loaded file.
func (o *MP3Output) Done() <-chan struct{} {
	return o.done
}

// stream pushes decoded PCM to the sink in real time. It owns the file
// handle: the control side drops its references on Stop and the stream
// closes the file when it winds down.
func (o *MP3Output) stream(f *os.File, dec *mp3.Decoder, done chan struct{}, state *atomic.Int32) {
	defer f.Close()

	// go-mp3 always emits 16-bit stereo samples.
	bytesPerSec := dec.SampleRate() * 4
	chunkDur := time.Duration(float64(chunkBytes) / float64(bytesPerSec) * float64(time.Second))

	buf := make([]byte, chunkBytes)
	for {
		switch state.Load() {
		case outStopped:
			return
		case outPaused:
			time.Sleep(pauseTick)
			continue
		}

		n, err := dec.Read(buf)
		if n > 0 {
			if _, werr := o.sink.Write(buf[:n]); werr != nil {
				// A broken sink ends the track; the sequencer treats the
				// missing completion as a stop.
				return
			}
			time.Sleep(chunkDur)
		}
		if err == io.EOF {
			// If a pause lands right at the end of the file, hold the
			// completion until the stream is resumed or stopped.
			for {
				if state.CompareAndSwap(outPlaying, outStopped) {
					close(done)
					return
				}
				if state.Load() == outStopped {
					return
				}
				time.Sleep(pauseTick)
			}
		}
		if err != nil {
			return
		}
	}
}
