// Package engine wraps the media backends that stream and decode a link.
//
// A Session follows the lifecycle of a platform media player: it is created
// for one URL, prepared asynchronously, started, paused and seeked, and finally
// released. Listener callbacks may arrive on any goroutine; callers are
// responsible for moving them onto their own thread.
package engine

import "errors"

var (
	ErrUnsupportedFormat  = errors.New("unsupported audio format")
	ErrNotSeekable        = errors.New("live stream cannot seek")
	ErrNotPrepared        = errors.New("session not prepared")
	ErrBackendUnavailable = errors.New("backend not available in this build")
	ErrReleased           = errors.New("session released")
)

// Listener receives asynchronous session events. Nil fields are skipped.
type Listener struct {
	OnPrepared   func()
	OnCompletion func()
	OnError      func(error)
}

func (l Listener) prepared() {
	if l.OnPrepared != nil {
		l.OnPrepared()
	}
}

func (l Listener) completed() {
	if l.OnCompletion != nil {
		l.OnCompletion()
	}
}

func (l Listener) failed(err error) {
	if l.OnError != nil {
		l.OnError(err)
	}
}

// Session is one backend player bound to one URL. Positions and durations are
// in milliseconds. Live streams of unknown length report a zero Duration and
// refuse SeekTo with ErrNotSeekable.
type Session interface {
	PrepareAsync() error
	Start() error
	Pause() error
	Stop() error
	SeekTo(ms int) error
	Duration() int
	CurrentPosition() int
	IsPlaying() bool
	Release()
}

// Titled is implemented by sessions that learn a display name for the stream.
type Titled interface {
	Title() string
}

// Engine creates sessions.
type Engine interface {
	NewSession(url string, l Listener) (Session, error)
	Close()
}
