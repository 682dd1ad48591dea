// Package playback binds one backend session at a time to the player screen.
//
// The Controller owns the session, its lifecycle state and the progress poll
// task. Every method must be called on the UI goroutine; backend callbacks are
// routed there through the Dispatcher and checked against the session id they
// were registered for, so events from a replaced session are dropped.
package playback

import (
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"linkplayer/internal/engine"
)

// ErrClosed is returned by Submit after Destroy.
var ErrClosed = errors.New("player closed")

const defaultPollInterval = 500 * time.Millisecond

// Options configures a Controller. Presence is optional.
type Options struct {
	Engine       engine.Engine
	View         View
	Scheduler    Scheduler
	Dispatch     Dispatcher
	Logger       zerolog.Logger
	PollInterval time.Duration
	Presence     Presence
}

// Controller drives one player screen from the current backend session.
type Controller struct {
	engine       engine.Engine
	view         View
	sched        Scheduler
	dispatch     Dispatcher
	log          zerolog.Logger
	pollInterval time.Duration
	presence     Presence

	state     State
	session   engine.Session
	sessionID uint64
	url       string
	title     string
	duration  int
	poll      Task
	dragging  bool
	closed    bool
}

// New returns an idle controller. Missing Dispatch runs callbacks inline and
// a missing Scheduler defaults to a TimerScheduler on that dispatcher.
func New(opts Options) *Controller {
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.Dispatch == nil {
		opts.Dispatch = func(fn func()) { fn() }
	}
	if opts.Scheduler == nil {
		opts.Scheduler = NewTimerScheduler(opts.Dispatch)
	}
	return &Controller{
		engine:       opts.Engine,
		view:         opts.View,
		sched:        opts.Scheduler,
		dispatch:     opts.Dispatch,
		log:          opts.Logger,
		pollInterval: opts.PollInterval,
		presence:     opts.Presence,
		state:        StateIdle,
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State { return c.state }

// URL returns the link of the current session, if any.
func (c *Controller) URL() string { return c.url }

// Duration is the prepared session's length in ms, 0 before preparation.
func (c *Controller) Duration() int { return c.duration }

// Polling reports whether a progress poll task is scheduled.
func (c *Controller) Polling() bool { return c.poll != nil }

// Submit replaces the current session with one for link and starts
// preparing it. Empty input is rejected with ErrEmptyURL and leaves the
// current session untouched. Backend failures are reported to the view.
func (c *Controller) Submit(link string) error {
	link = strings.TrimSpace(link)
	if link == "" {
		return ErrEmptyURL
	}
	if c.closed {
		return ErrClosed
	}

	c.releaseSession()

	c.sessionID++
	id := c.sessionID
	c.url = link
	c.title = ""
	c.duration = 0
	c.resetView()
	c.view.SetStatus("Preparing…")
	c.setState(StatePreparing)
	c.log.Info().Uint64("session", id).Str("link", link).Msg("opening link")

	s, err := c.engine.NewSession(link, c.listener(id))
	if err != nil {
		c.fail(KindPrepare, "open", err)
		return nil
	}
	c.session = s
	if err := s.PrepareAsync(); err != nil {
		c.fail(KindPrepare, "prepare", err)
	}
	return nil
}

// TogglePlayPause pauses a playing session or starts a prepared, paused or
// completed one. It does nothing without a session or while preparing.
func (c *Controller) TogglePlayPause() {
	if c.session == nil || !c.state.CanToggle() {
		c.log.Debug().Stringer("state", c.state).Msg("toggle ignored")
		return
	}

	if c.state == StatePlaying {
		if err := c.session.Pause(); err != nil {
			c.report(KindPlayback, "pause", err)
			return
		}
		c.cancelPoll()
		c.view.SetPlayLabel(LabelPlay)
		c.setState(StatePaused)
		c.updatePresence(true)
		return
	}

	if err := c.session.Start(); err != nil {
		c.report(KindPlayback, "start", err)
		return
	}
	c.view.SetPlayLabel(LabelPause)
	c.setState(StatePlaying)
	c.updatePresence(false)
	c.schedulePoll(0)
}

// DragStart suspends position polling while the user holds the seek bar.
func (c *Controller) DragStart() {
	c.dragging = true
	c.cancelPoll()
}

// DragProgress previews a user-driven position in the elapsed label without
// seeking.
func (c *Controller) DragProgress(ms int, fromUser bool) {
	if !fromUser || c.session == nil {
		return
	}
	c.view.SetCurrentTime(FormatTime(ms))
}

// DragEnd commits the seek and resumes polling if the session is playing.
func (c *Controller) DragEnd(ms int) {
	c.dragging = false
	if c.session == nil || !c.state.CanSeek() {
		return
	}

	if err := c.session.SeekTo(ms); err != nil {
		c.report(KindSeek, "seek", err)
		pos := c.session.CurrentPosition()
		c.view.SetSeekPosition(pos)
		c.view.SetCurrentTime(FormatTime(pos))
	} else {
		c.view.SetSeekPosition(ms)
		c.view.SetCurrentTime(FormatTime(ms))
	}

	switch c.state {
	case StatePlaying:
		if c.session.IsPlaying() {
			c.schedulePoll(0)
		}
	case StatePrepared, StateCompleted:
		c.setState(StatePaused)
	}
}

// Destroy cancels polling and releases the session. The controller ignores
// all later calls.
func (c *Controller) Destroy() {
	if c.closed {
		return
	}
	c.closed = true
	c.releaseSession()
	c.setState(StateReleased)
	if c.presence != nil {
		c.presence.Clear()
	}
	c.log.Debug().Msg("controller destroyed")
}

func (c *Controller) listener(id uint64) engine.Listener {
	return engine.Listener{
		OnPrepared: func() {
			c.dispatch(func() { c.handlePrepared(id) })
		},
		OnCompletion: func() {
			c.dispatch(func() { c.handleCompletion(id) })
		},
		OnError: func(err error) {
			c.dispatch(func() { c.handleError(id, err) })
		},
	}
}

func (c *Controller) current(id uint64) bool {
	return !c.closed && id == c.sessionID && c.session != nil
}

func (c *Controller) handlePrepared(id uint64) {
	if !c.current(id) || c.state != StatePreparing {
		c.log.Debug().Uint64("session", id).Msg("dropping stale prepared event")
		return
	}

	c.duration = c.session.Duration()
	if t, ok := c.session.(engine.Titled); ok {
		c.title = t.Title()
	}
	c.view.SetSeekMax(c.duration)
	c.view.SetSeekPosition(0)
	c.view.SetCurrentTime(FormatTime(0))
	c.view.SetDuration(FormatTime(c.duration))
	if c.title != "" {
		c.view.SetStatus(c.title)
	} else {
		c.view.SetStatus("Ready")
	}
	c.setState(StatePrepared)
	c.log.Info().Uint64("session", id).Int("duration_ms", c.duration).Msg("prepared")
}

func (c *Controller) handleCompletion(id uint64) {
	if !c.current(id) || !c.state.CanSeek() {
		c.log.Debug().Uint64("session", id).Msg("dropping stale completion event")
		return
	}

	c.cancelPoll()
	c.view.SetSeekPosition(0)
	c.view.SetCurrentTime(FormatTime(0))
	c.view.SetPlayLabel(LabelPlay)
	c.setState(StateCompleted)
	c.updatePresence(true)
	c.log.Info().Uint64("session", id).Msg("completed")
}

func (c *Controller) handleError(id uint64, err error) {
	if !c.current(id) || !c.state.HasSession() {
		c.log.Debug().Uint64("session", id).Err(err).Msg("dropping stale error event")
		return
	}
	if c.state == StatePreparing {
		c.fail(KindPrepare, "prepare", err)
		return
	}
	c.fail(KindPlayback, "play", err)
}

// fail releases the session and moves to Failed.
func (c *Controller) fail(kind Kind, op string, err error) {
	c.cancelPoll()
	if c.session != nil {
		c.session.Release()
		c.session = nil
	}
	c.view.SetPlayLabel(LabelPlay)
	c.setState(StateFailed)
	c.report(kind, op, err)
}

// report surfaces err without changing state.
func (c *Controller) report(kind Kind, op string, err error) {
	pe := &Error{Kind: kind, Op: op, URL: c.url, Err: err}
	c.log.Error().Err(err).Str("op", op).Stringer("kind", kind).Str("link", c.url).Msg("playback error")
	c.view.SetStatus(Message(pe))
	c.view.ShowError(pe)
}

// releaseSession cancels polling before stopping and releasing, so the poll
// task never reads from a released session.
func (c *Controller) releaseSession() {
	c.cancelPoll()
	if c.session == nil {
		return
	}
	if c.session.IsPlaying() {
		if err := c.session.Stop(); err != nil {
			c.log.Warn().Err(err).Msg("stop before release")
		}
	}
	c.session.Release()
	c.session = nil
	c.setState(StateReleased)
}

func (c *Controller) resetView() {
	c.view.SetSeekMax(0)
	c.view.SetSeekPosition(0)
	c.view.SetCurrentTime(FormatTime(0))
	c.view.SetDuration(FormatTime(0))
	c.view.SetPlayLabel(LabelPlay)
}

func (c *Controller) schedulePoll(delay time.Duration) {
	c.cancelPoll()
	id := c.sessionID
	c.poll = c.sched.AfterFunc(delay, func() { c.tick(id) })
}

func (c *Controller) cancelPoll() {
	if c.poll != nil {
		c.poll.Cancel()
		c.poll = nil
	}
}

// tick samples the position and reschedules itself while the session plays.
func (c *Controller) tick(id uint64) {
	c.poll = nil
	if !c.current(id) || c.state != StatePlaying || c.dragging {
		return
	}
	if !c.session.IsPlaying() {
		return
	}
	pos := c.session.CurrentPosition()
	c.view.SetSeekPosition(pos)
	c.view.SetCurrentTime(FormatTime(pos))
	c.poll = c.sched.AfterFunc(c.pollInterval, func() { c.tick(id) })
}

func (c *Controller) setState(next State) {
	if c.state == next {
		return
	}
	if !c.state.CanTransition(next) {
		c.log.Warn().Stringer("from", c.state).Stringer("to", next).Msg("unexpected state transition")
	}
	c.log.Debug().Stringer("from", c.state).Stringer("to", next).Msg("state")
	c.state = next
}

func (c *Controller) updatePresence(paused bool) {
	if c.presence == nil {
		return
	}
	c.presence.Update(c.url, c.title, paused)
}
