package engine

// Mock is a test double for Engine. Sessions are driven by hand: nothing is
// prepared or completed until the test fires the matching event.
type Mock struct {
	NewErr error // returned by NewSession when set

	sessions []*MockSession
	history  []string
	closed   bool
}

// NewMock creates a new mock engine for testing.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) NewSession(url string, l Listener) (Session, error) {
	if m.NewErr != nil {
		return nil, m.NewErr
	}
	s := &MockSession{URL: url, l: l, engine: m}
	m.sessions = append(m.sessions, s)
	m.history = append(m.history, "new "+url)
	return s, nil
}

func (m *Mock) Close() { m.closed = true }

func (m *Mock) Closed() bool { return m.closed }

// Sessions returns every session created so far, oldest first.
func (m *Mock) Sessions() []*MockSession { return m.sessions }

// Last returns the most recent session, or nil.
func (m *Mock) Last() *MockSession {
	if len(m.sessions) == 0 {
		return nil
	}
	return m.sessions[len(m.sessions)-1]
}

// History lists "new <url>" and "release <url>" entries in call order.
func (m *Mock) History() []string { return m.history }

// Live counts sessions that have not been released.
func (m *Mock) Live() int {
	n := 0
	for _, s := range m.sessions {
		if !s.released {
			n++
		}
	}
	return n
}

// MockSession is a scriptable Session.
type MockSession struct {
	URL string

	PrepareErr error
	StartErr   error
	SeekErr    error

	engine   *Mock
	l        Listener
	duration int
	position int
	title    string
	seeks    []int

	preparing bool
	prepared  bool
	playing   bool
	stopped   bool
	released  bool
}

func (s *MockSession) PrepareAsync() error {
	if s.released {
		return ErrReleased
	}
	if s.PrepareErr != nil {
		return s.PrepareErr
	}
	s.preparing = true
	return nil
}

func (s *MockSession) Start() error {
	if s.released {
		return ErrReleased
	}
	if !s.prepared {
		return ErrNotPrepared
	}
	if s.StartErr != nil {
		return s.StartErr
	}
	s.playing = true
	s.stopped = false
	return nil
}

func (s *MockSession) Pause() error {
	if s.released {
		return ErrReleased
	}
	s.playing = false
	return nil
}

func (s *MockSession) Stop() error {
	if s.released {
		return ErrReleased
	}
	s.playing = false
	s.stopped = true
	return nil
}

func (s *MockSession) SeekTo(ms int) error {
	if s.released {
		return ErrReleased
	}
	if !s.prepared {
		return ErrNotPrepared
	}
	if s.SeekErr != nil {
		return s.SeekErr
	}
	s.seeks = append(s.seeks, ms)
	s.position = ms
	return nil
}

func (s *MockSession) Duration() int { return s.duration }

func (s *MockSession) CurrentPosition() int { return s.position }

func (s *MockSession) IsPlaying() bool { return s.playing }

func (s *MockSession) Title() string { return s.title }

func (s *MockSession) Release() {
	if s.released {
		return
	}
	s.released = true
	s.playing = false
	s.engine.history = append(s.engine.history, "release "+s.URL)
}

// FirePrepared marks the session prepared with the given duration and invokes
// the listener synchronously.
func (s *MockSession) FirePrepared(durationMs int) {
	s.preparing = false
	s.prepared = true
	s.duration = durationMs
	s.l.prepared()
}

// FireCompletion simulates reaching the end of the stream.
func (s *MockSession) FireCompletion() {
	s.playing = false
	s.position = s.duration
	s.l.completed()
}

// FireError simulates an asynchronous backend failure.
func (s *MockSession) FireError(err error) {
	s.preparing = false
	s.playing = false
	s.l.failed(err)
}

// SetPosition moves the playhead as if playback advanced.
func (s *MockSession) SetPosition(ms int) { s.position = ms }

// SetPlaying overrides the playing flag, e.g. to simulate the backend
// stopping on its own.
func (s *MockSession) SetPlaying(playing bool) { s.playing = playing }

func (s *MockSession) SetTitle(title string) { s.title = title }

func (s *MockSession) Seeks() []int { return s.seeks }

func (s *MockSession) Preparing() bool { return s.preparing }

func (s *MockSession) Stopped() bool { return s.stopped }

func (s *MockSession) Released() bool { return s.released }

// Verify implementations at compile time.
var (
	_ Engine  = (*Mock)(nil)
	_ Session = (*MockSession)(nil)
	_ Titled  = (*MockSession)(nil)
	_ Engine  = (*Beep)(nil)
	_ Engine  = (*VLC)(nil)
)
