package engine

import (
	"bufio"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/faiface/beep"
)

// liveBuffer is how much decoded audio a live stream keeps ahead of the speaker.
const liveBuffer = 2 * time.Second

// bodyReader reads through a bufio.Reader that has already peeked at the body
// and closes the body itself.
type bodyReader struct {
	*bufio.Reader
	body io.Closer
}

func (r bodyReader) Close() error { return r.body.Close() }

// liveStream decodes an unbounded body on its own goroutine and feeds the
// speaker from a channel. An empty channel yields silence so a slow network
// never blocks the speaker lock.
type liveStream struct {
	dec     beep.StreamSeekCloser
	cancel  context.CancelFunc
	samples chan [2]float64
	done    chan struct{}
	once    sync.Once

	// guarded by the speaker lock
	pos   int
	ended bool

	mu  sync.Mutex
	err error
}

func newLiveStream(dec beep.StreamSeekCloser, format beep.Format, cancel context.CancelFunc) *liveStream {
	ls := &liveStream{
		dec:     dec,
		cancel:  cancel,
		samples: make(chan [2]float64, format.SampleRate.N(liveBuffer)),
		done:    make(chan struct{}),
	}
	go ls.decode()
	return ls
}

func (ls *liveStream) decode() {
	defer close(ls.samples)
	defer ls.dec.Close()

	buf := make([][2]float64, 512)
	for {
		n, ok := ls.dec.Stream(buf)
		for i := 0; i < n; i++ {
			select {
			case ls.samples <- buf[i]:
			case <-ls.done:
				return
			}
		}
		if !ok {
			if err := ls.dec.Err(); err != nil && !errors.Is(err, io.EOF) {
				ls.mu.Lock()
				ls.err = err
				ls.mu.Unlock()
			}
			return
		}
	}
}

func (ls *liveStream) Stream(samples [][2]float64) (int, bool) {
	if ls.ended {
		return 0, false
	}
	for i := range samples {
		select {
		case v, ok := <-ls.samples:
			if !ok {
				ls.ended = true
				ls.pos += i
				return i, i > 0
			}
			samples[i] = v
		default:
			// Underrun: pad with silence until the decoder catches up.
			for j := i; j < len(samples); j++ {
				samples[j] = [2]float64{}
			}
			ls.pos += i
			return len(samples), true
		}
	}
	ls.pos += len(samples)
	return len(samples), true
}

func (ls *liveStream) Err() error {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.err
}

// Len is zero: the end of a live stream is unknown.
func (ls *liveStream) Len() int { return 0 }

// Position counts decoded frames handed to the speaker, excluding silence.
func (ls *liveStream) Position() int { return ls.pos }

func (ls *liveStream) Seek(int) error { return ErrNotSeekable }

// Close stops the decoder and drops the connection.
func (ls *liveStream) Close() error {
	ls.once.Do(func() {
		close(ls.done)
		ls.cancel()
	})
	return nil
}
