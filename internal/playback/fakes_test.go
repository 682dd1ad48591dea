package playback

import (
	"sort"
	"time"
)

// fakeView records what the controller pushes to the screen.
type fakeView struct {
	seekMax    int
	seekPos    int
	current    string
	duration   string
	playLabel  string
	status     string
	errors     []error
	seekWrites []int
}

func newFakeView() *fakeView {
	return &fakeView{current: "00:00", duration: "00:00", playLabel: LabelPlay}
}

func (v *fakeView) SetSeekMax(ms int) { v.seekMax = ms }

func (v *fakeView) SetSeekPosition(ms int) {
	v.seekPos = ms
	v.seekWrites = append(v.seekWrites, ms)
}

func (v *fakeView) SetCurrentTime(text string) { v.current = text }
func (v *fakeView) SetDuration(text string)    { v.duration = text }
func (v *fakeView) SetPlayLabel(label string)  { v.playLabel = label }
func (v *fakeView) SetStatus(text string)      { v.status = text }
func (v *fakeView) ShowError(err error)        { v.errors = append(v.errors, err) }

// manualScheduler runs tasks only when the test advances its clock.
type manualScheduler struct {
	now   time.Duration
	tasks []*manualTask
}

type manualTask struct {
	at        time.Duration
	fn        func()
	cancelled bool
	done      bool
}

func (t *manualTask) Cancel() { t.cancelled = true }

func (s *manualScheduler) AfterFunc(d time.Duration, fn func()) Task {
	t := &manualTask{at: s.now + d, fn: fn}
	s.tasks = append(s.tasks, t)
	return t
}

// Advance moves the clock forward by d and runs due tasks in order,
// including tasks scheduled by those tasks.
func (s *manualScheduler) Advance(d time.Duration) {
	target := s.now + d
	for {
		due := s.due(target)
		if due == nil {
			break
		}
		s.now = due.at
		due.done = true
		due.fn()
	}
	s.now = target
}

func (s *manualScheduler) due(target time.Duration) *manualTask {
	var pending []*manualTask
	for _, t := range s.tasks {
		if !t.done && !t.cancelled && t.at <= target {
			pending = append(pending, t)
		}
	}
	if len(pending) == 0 {
		return nil
	}
	sort.SliceStable(pending, func(i, j int) bool { return pending[i].at < pending[j].at })
	return pending[0]
}

// Pending counts tasks that are neither run nor cancelled.
func (s *manualScheduler) Pending() int {
	n := 0
	for _, t := range s.tasks {
		if !t.done && !t.cancelled {
			n++
		}
	}
	return n
}

type presenceCall struct {
	link, title string
	paused      bool
	clear       bool
}

type fakePresence struct {
	calls []presenceCall
}

func (p *fakePresence) Update(link, title string, paused bool) {
	p.calls = append(p.calls, presenceCall{link: link, title: title, paused: paused})
}

func (p *fakePresence) Clear() {
	p.calls = append(p.calls, presenceCall{clear: true})
}

func (p *fakePresence) last() presenceCall {
	if len(p.calls) == 0 {
		return presenceCall{}
	}
	return p.calls[len(p.calls)-1]
}
