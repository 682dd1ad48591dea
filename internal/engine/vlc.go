//go:build vlc && !android && !ios

package engine

import (
	"sync"

	vlc "github.com/adrg/libvlc-go/v3"
	"github.com/rs/zerolog"
)

var (
	vlcOnce sync.Once
	vlcErr  error
)

// VLC streams links through libVLC, which handles network protocols,
// buffering and codecs itself.
type VLC struct {
	log          zerolog.Logger
	parseTimeout int // ms, passed to libVLC's network parse
	closeOnce    sync.Once
}

func NewVLC(log zerolog.Logger, parseTimeoutMs int) (*VLC, error) {
	vlcOnce.Do(func() {
		// Audio only: no video output window
		vlcErr = vlc.Init("--no-video", "--quiet")
	})
	if vlcErr != nil {
		return nil, vlcErr
	}
	return &VLC{log: log, parseTimeout: parseTimeoutMs}, nil
}

func (e *VLC) NewSession(link string, l Listener) (Session, error) {
	p, err := vlc.NewPlayer()
	if err != nil {
		return nil, err
	}
	m, err := vlc.NewMediaFromURL(link)
	if err != nil {
		_ = p.Release()
		return nil, err
	}
	if err := p.SetMedia(m); err != nil {
		_ = m.Release()
		_ = p.Release()
		return nil, err
	}

	s := &vlcSession{
		engine: e,
		p:      p,
		m:      m,
		l:      l,
		log:    e.log.With().Str("link", link).Logger(),
	}
	if err := s.attach(); err != nil {
		s.Release()
		return nil, err
	}
	return s, nil
}

func (e *VLC) Close() {
	e.closeOnce.Do(func() {
		_ = vlc.Release()
	})
}

type vlcSession struct {
	engine *VLC
	p      *vlc.Player
	m      *vlc.Media
	l      Listener
	log    zerolog.Logger

	playerEvents []vlc.EventID
	mediaEvents  []vlc.EventID

	mu          sync.Mutex
	preparing   bool
	prepared    bool
	started     bool // Play was issued since the last stop
	playing     bool
	ended       bool
	pendingSeek int // ms to apply once libVLC reports playing; -1 if none
	released    bool
}

// attach registers the libVLC callbacks. libVLC must not be called back from
// inside its own event thread, so every handler hands off to a goroutine.
func (s *vlcSession) attach() error {
	s.pendingSeek = -1

	pem, err := s.p.EventManager()
	if err != nil {
		return err
	}
	handlers := []struct {
		event vlc.Event
		fn    func()
	}{
		{vlc.MediaPlayerEndReached, s.handleEnd},
		{vlc.MediaPlayerEncounteredError, s.handleError},
		{vlc.MediaPlayerPlaying, s.handlePlaying},
	}
	for _, h := range handlers {
		fn := h.fn
		id, err := pem.Attach(h.event, func(vlc.Event, interface{}) { go fn() }, nil)
		if err != nil {
			return err
		}
		s.playerEvents = append(s.playerEvents, id)
	}

	mem, err := s.m.EventManager()
	if err != nil {
		return err
	}
	id, err := mem.Attach(vlc.MediaParsedChanged, func(vlc.Event, interface{}) {
		go s.handleParsed()
	}, nil)
	if err != nil {
		return err
	}
	s.mediaEvents = append(s.mediaEvents, id)
	return nil
}

func (s *vlcSession) PrepareAsync() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return ErrReleased
	}
	if s.preparing || s.prepared {
		return nil
	}
	s.preparing = true
	return s.m.ParseWithOptions(s.engine.parseTimeout, vlc.MediaParseNetwork)
}

func (s *vlcSession) handleParsed() {
	s.mu.Lock()
	if s.released || s.prepared {
		s.mu.Unlock()
		return
	}
	status, err := s.m.ParseStatus()
	s.preparing = false
	if err != nil || status != vlc.MediaParseDone {
		s.mu.Unlock()
		if err == nil {
			err = ErrUnsupportedFormat
		}
		s.l.failed(err)
		return
	}
	s.prepared = true
	s.mu.Unlock()

	s.l.prepared()
}

func (s *vlcSession) handleEnd() {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return
	}
	s.playing = false
	s.ended = true
	s.mu.Unlock()

	s.l.completed()
}

func (s *vlcSession) handleError() {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return
	}
	s.playing = false
	s.mu.Unlock()

	s.log.Warn().Msg("libvlc reported a playback error")
	s.l.failed(ErrUnsupportedFormat)
}

func (s *vlcSession) handlePlaying() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released || s.pendingSeek < 0 {
		return
	}
	if err := s.p.SetMediaTime(s.pendingSeek); err != nil {
		s.log.Debug().Err(err).Msg("deferred seek failed")
	}
	s.pendingSeek = -1
}

func (s *vlcSession) Start() error {
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
	if s.ended {
		// An ended player only restarts from a stopped state.
		if err := s.p.Stop(); err != nil {
			return err
		}
		s.ended = false
		s.started = false
	}
	var err error
	if s.started {
		err = s.p.SetPause(false)
	} else {
		err = s.p.Play()
	}
	if err != nil {
		return err
	}
	s.started = true
	s.playing = true
	return nil
}

func (s *vlcSession) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return ErrReleased
	}
	if !s.playing {
		return nil
	}
	if err := s.p.SetPause(true); err != nil {
		return err
	}
	s.playing = false
	return nil
}

func (s *vlcSession) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return ErrReleased
	}
	s.playing = false
	s.started = false
	return s.p.Stop()
}

func (s *vlcSession) SeekTo(ms int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return ErrReleased
	}
	if !s.prepared {
		return ErrNotPrepared
	}
	if s.ended || !s.started {
		// libVLC ignores time changes on a player that is not running.
		s.pendingSeek = ms
		return nil
	}
	return s.p.SetMediaTime(ms)
}

func (s *vlcSession) Duration() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.prepared || s.released {
		return 0
	}
	if d, err := s.m.Duration(); err == nil && d > 0 {
		return int(d.Milliseconds())
	}
	ms, err := s.p.MediaLength()
	if err != nil {
		return 0
	}
	return ms
}

func (s *vlcSession) CurrentPosition() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return 0
	}
	if s.pendingSeek >= 0 {
		return s.pendingSeek
	}
	if s.ended || !s.started {
		return 0
	}
	ms, err := s.p.MediaTime()
	if err != nil || ms < 0 {
		return 0
	}
	return ms
}

// IsPlaying reports the requested state rather than libVLC's, which lags
// behind Play while the stream buffers.
func (s *vlcSession) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

func (s *vlcSession) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return ""
	}
	title, err := s.m.Meta(vlc.MediaTitle)
	if err != nil {
		return ""
	}
	return title
}

func (s *vlcSession) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return
	}
	s.released = true
	s.playing = false

	if pem, err := s.p.EventManager(); err == nil {
		pem.Detach(s.playerEvents...)
	}
	if mem, err := s.m.EventManager(); err == nil {
		mem.Detach(s.mediaEvents...)
	}
	_ = s.p.Stop()
	_ = s.m.Release()
	_ = s.p.Release()
}
