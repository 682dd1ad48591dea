package playback

import (
	"sync/atomic"
	"time"
)

// Dispatcher runs fn on the UI goroutine. In the app this is fyne.Do.
type Dispatcher func(fn func())

// Task is a scheduled callback that can be withdrawn.
type Task interface {
	// Cancel guarantees the callback does not run afterwards, even when the
	// timer already fired and the callback is waiting on the UI goroutine.
	Cancel()
}

// Scheduler runs callbacks on the UI goroutine after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Task
}

// TimerScheduler backs tasks with time.AfterFunc and hands expired callbacks
// to a Dispatcher.
type TimerScheduler struct {
	dispatch Dispatcher
}

func NewTimerScheduler(dispatch Dispatcher) *TimerScheduler {
	return &TimerScheduler{dispatch: dispatch}
}

func (s *TimerScheduler) AfterFunc(d time.Duration, fn func()) Task {
	task := &timerTask{}
	task.t = time.AfterFunc(d, func() {
		s.dispatch(func() {
			if task.cancelled.Load() {
				return
			}
			fn()
		})
	})
	return task
}

type timerTask struct {
	t         *time.Timer
	cancelled atomic.Bool
}

func (t *timerTask) Cancel() {
	t.cancelled.Store(true)
	t.t.Stop()
}
