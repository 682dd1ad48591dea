package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/rs/zerolog"

	"linkplayer/internal/probe"
)

var (
	speakerOnce sync.Once
	speakerErr  error
	// Use a fixed speaker sample rate and resample inputs to avoid reinitializing the audio device.
	speakerSR = beep.SampleRate(44100)
)

func ensureSpeaker() error {
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(speakerSR, speakerSR.N(time.Second/10))
	})
	return speakerErr
}

// BeepOptions configures the pure-Go backend.
type BeepOptions struct {
	Client         *http.Client
	PrepareTimeout time.Duration
	MaxBufferBytes int64
	Logger         zerolog.Logger
}

// Beep plays links through the beep speaker. Bodies of known size up to
// MaxBufferBytes are downloaded into memory and are seekable; anything else is
// decoded progressively as a live stream.
type Beep struct {
	opts BeepOptions
}

func NewBeep(opts BeepOptions) *Beep {
	if opts.Client == nil {
		opts.Client = &http.Client{}
	}
	if opts.PrepareTimeout <= 0 {
		opts.PrepareTimeout = 15 * time.Second
	}
	if opts.MaxBufferBytes <= 0 {
		opts.MaxBufferBytes = 64 << 20
	}
	return &Beep{opts: opts}
}

func (e *Beep) NewSession(link string, l Listener) (Session, error) {
	return &beepSession{
		engine: e,
		link:   link,
		l:      l,
		log:    e.opts.Logger.With().Str("link", link).Logger(),
	}, nil
}

// Close drops whatever is still queued on the speaker.
func (e *Beep) Close() {
	speaker.Clear()
}

// media is a decoded link ready for the speaker.
type media struct {
	stream beep.StreamSeekCloser
	format beep.Format
	title  string
	live   bool
}

// load probes, fetches and decodes link. Only the setup is bounded by
// PrepareTimeout; a live stream keeps its connection until the stream is
// closed or ctx is cancelled.
func (e *Beep) load(ctx context.Context, link string, log zerolog.Logger) (*media, error) {
	u, err := probe.Parse(link)
	if err != nil {
		return nil, err
	}

	reqCtx, cancel := context.WithCancel(ctx)
	timer := time.AfterFunc(e.opts.PrepareTimeout, cancel)
	m, err := e.open(reqCtx, u, log, cancel)
	if !timer.Stop() {
		if m != nil {
			_ = m.stream.Close()
		}
		cancel()
		return nil, fmt.Errorf("prepare %s: %w", u.Redacted(), context.DeadlineExceeded)
	}
	if err != nil || !m.live {
		cancel()
	}
	return m, err
}

func (e *Beep) open(ctx context.Context, u *url.URL, log zerolog.Logger, cancel context.CancelFunc) (*media, error) {
	info, err := probe.Probe(ctx, e.opts.Client, u.String())
	if err != nil {
		// Some servers refuse HEAD outright; the GET below is authoritative.
		log.Debug().Err(err).Msg("probe failed")
		info = probe.Info{}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := e.opts.Client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: %s", u.Redacted(), resp.Status)
	}

	ct := info.ContentType
	if ct == "" {
		ct = mediaType(resp.Header.Get("Content-Type"))
	}
	title := info.Name
	if title == "" {
		title = resp.Header.Get("icy-name")
	}

	if isLive(resp, e.opts.MaxBufferBytes) {
		br := bufio.NewReader(resp.Body)
		head, _ := br.Peek(16)
		f := DetectFormat(ct, probe.Ext(u), head)
		log.Debug().Str("format", string(f)).Int64("length", resp.ContentLength).Msg("streaming live")

		st, format, err := decodeFrom(f, bodyReader{Reader: br, body: resp.Body})
		if err != nil {
			resp.Body.Close()
			return nil, err
		}
		return &media{stream: newLiveStream(st, format, cancel), format: format, title: title, live: true}, nil
	}

	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, e.opts.MaxBufferBytes))
	if err != nil {
		return nil, err
	}
	f := DetectFormat(ct, probe.Ext(u), data)
	log.Debug().Str("format", string(f)).Int("bytes", len(data)).Msg("downloaded")

	st, format, err := decode(f, data)
	if err != nil {
		return nil, err
	}
	return &media{stream: st, format: format, title: title}, nil
}

// isLive reports whether the body must be decoded progressively: shoutcast
// and icecast servers, bodies of unknown length and bodies over the buffer
// limit.
func isLive(resp *http.Response, maxBytes int64) bool {
	if resp.Header.Get("icy-br") != "" || resp.Header.Get("icy-metaint") != "" {
		return true
	}
	return resp.ContentLength < 0 || resp.ContentLength > maxBytes
}

// msAt converts frames to milliseconds, rounding to the nearest ms.
func msAt(sr beep.SampleRate, frames int) int {
	return int((int64(frames)*1000 + int64(sr)/2) / int64(sr))
}

// framesAt converts milliseconds to frames, rounding to the nearest frame.
func framesAt(sr beep.SampleRate, ms int) int {
	return int((int64(ms)*int64(sr) + 500) / 1000)
}

func mediaType(ct string) string {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ""
	}
	return strings.ToLower(mt)
}

type beepSession struct {
	engine *Beep
	link   string
	l      Listener
	log    zerolog.Logger

	mu       sync.Mutex
	cancel   context.CancelFunc
	stream   beep.StreamSeekCloser // decoder stream; a *liveStream when live
	sr       beep.SampleRate       // original stream's sample rate
	ctrl     *beep.Ctrl
	title    string
	chainGen int // bumps whenever ctrl gets a new chain; stale end callbacks compare against it

	preparing bool
	prepared  bool
	started   bool // ctrl is queued on the speaker
	playing   bool
	rewind    bool // reached the end; next Start begins at zero
	live      bool
	released  bool
}

func (s *beepSession) PrepareAsync() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return ErrReleased
	}
	if s.preparing || s.prepared {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.preparing = true
	go s.prepare(ctx)
	return nil
}

func (s *beepSession) prepare(ctx context.Context) {
	m, err := s.engine.load(ctx, s.link, s.log)

	s.mu.Lock()
	s.preparing = false
	if s.released {
		s.mu.Unlock()
		if m != nil {
			_ = m.stream.Close()
		}
		return
	}
	if err != nil {
		s.mu.Unlock()
		s.l.failed(err)
		return
	}
	s.stream = m.stream
	s.sr = m.format.SampleRate
	s.title = m.title
	s.live = m.live
	s.prepared = true
	s.mu.Unlock()

	s.l.prepared()
}

// chain builds the resampled playback stream followed by the end marker.
// Callers hold s.mu.
func (s *beepSession) chain() beep.Streamer {
	s.chainGen++
	gen := s.chainGen
	return beep.Seq(
		beep.Resample(4, s.sr, speakerSR, s.stream),
		beep.Callback(func() {
			// Runs on the speaker goroutine with the speaker locked.
			go s.finish(gen)
		}),
	)
}

func (s *beepSession) finish(gen int) {
	s.mu.Lock()
	if s.released || gen != s.chainGen || !s.started {
		s.mu.Unlock()
		return
	}
	s.ctrl = nil
	s.started = false
	s.playing = false
	s.rewind = true
	err := s.stream.Err()
	s.mu.Unlock()

	if err != nil && !errors.Is(err, io.EOF) {
		s.l.failed(err)
		return
	}
	s.l.completed()
}

func (s *beepSession) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return ErrReleased
	}
	if !s.prepared {
		return ErrNotPrepared
	}
	if s.playing {
		return nil
	}
	if err := ensureSpeaker(); err != nil {
		return err
	}

	if s.started {
		speaker.Lock()
		s.ctrl.Paused = false
		speaker.Unlock()
		s.playing = true
		return nil
	}

	if s.rewind {
		if s.live {
			return fmt.Errorf("restart: %w", ErrNotSeekable)
		}
		speaker.Lock()
		err := s.stream.Seek(0)
		speaker.Unlock()
		if err != nil {
			return err
		}
		s.rewind = false
	}
	s.ctrl = &beep.Ctrl{Streamer: s.chain()}
	s.started = true
	s.playing = true
	speaker.Play(s.ctrl)
	return nil
}

func (s *beepSession) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return ErrReleased
	}
	if s.ctrl != nil {
		speaker.Lock()
		s.ctrl.Paused = true
		speaker.Unlock()
	}
	s.playing = false
	return nil
}

// Stop halts playback and rewinds; the next Start queues a fresh chain.
func (s *beepSession) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return ErrReleased
	}
	s.detach()
	s.playing = false
	s.rewind = true
	return nil
}

// detach removes the current chain from the speaker mixer. Callers hold s.mu.
func (s *beepSession) detach() {
	if s.ctrl == nil {
		return
	}
	speaker.Lock()
	// A Ctrl without a streamer reports exhaustion and the mixer drops it.
	s.ctrl.Streamer = nil
	speaker.Unlock()
	s.ctrl = nil
	s.started = false
	s.chainGen++
}

func (s *beepSession) SeekTo(ms int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return ErrReleased
	}
	if !s.prepared {
		return ErrNotPrepared
	}
	if s.live {
		return ErrNotSeekable
	}
	l := s.stream.Len()
	target := framesAt(s.sr, ms)
	// Some decoders (e.g., mp3) panic if seeking to exactly l; clamp to [0, l-1]
	if target >= l {
		target = l - 1
	}
	if target < 0 {
		target = 0
	}

	speaker.Lock()
	defer speaker.Unlock()
	if err := s.stream.Seek(target); err != nil {
		return err
	}
	s.rewind = false
	if s.ctrl != nil {
		// Reset resampler state after seek
		s.ctrl.Streamer = s.chain()
	}
	return nil
}

func (s *beepSession) Duration() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.prepared || s.released {
		return 0
	}
	if s.live {
		return 0
	}
	return msAt(s.sr, s.stream.Len())
}

func (s *beepSession) CurrentPosition() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.prepared || s.released {
		return 0
	}
	speaker.Lock()
	pos := s.stream.Position()
	speaker.Unlock()
	return msAt(s.sr, pos)
}

func (s *beepSession) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

func (s *beepSession) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title
}

func (s *beepSession) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return
	}
	s.released = true
	if s.cancel != nil {
		s.cancel()
	}
	s.detach()
	s.playing = false
	if s.stream != nil {
		_ = s.stream.Close()
		s.stream = nil
	}
}
