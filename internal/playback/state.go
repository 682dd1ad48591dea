package playback

// State is the lifecycle of the current session as seen by the controller.
//
// Valid transitions:
//   - Idle      → Preparing (submit), Released (teardown)
//   - Preparing → Prepared (prepared event), Failed, Released
//   - Prepared  → Playing (toggle), Paused (seek), Failed, Released
//   - Playing   → Paused (toggle), Completed (end of stream), Failed, Released
//   - Paused    → Playing (toggle), Failed, Released
//   - Completed → Playing (toggle, restarts), Paused (seek), Failed, Released
//   - Failed    → Preparing (submit), Released
//   - Released  → Preparing (submit)
//
// Submitting a link while a session is alive goes through Released first.
type State int

const (
	StateIdle State = iota
	StatePreparing
	StatePrepared
	StatePlaying
	StatePaused
	StateCompleted
	StateFailed
	StateReleased
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StatePreparing:
		return "Preparing"
	case StatePrepared:
		return "Prepared"
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	case StateCompleted:
		return "Completed"
	case StateFailed:
		return "Failed"
	case StateReleased:
		return "Released"
	default:
		return "Unknown"
	}
}

var transitions = map[State][]State{
	StateIdle:      {StatePreparing, StateReleased},
	StatePreparing: {StatePrepared, StateFailed, StateReleased},
	StatePrepared:  {StatePlaying, StatePaused, StateFailed, StateReleased},
	StatePlaying:   {StatePaused, StateCompleted, StateFailed, StateReleased},
	StatePaused:    {StatePlaying, StateFailed, StateReleased},
	StateCompleted: {StatePlaying, StatePaused, StateFailed, StateReleased},
	StateFailed:    {StatePreparing, StateReleased},
	StateReleased:  {StatePreparing},
}

// CanTransition reports whether s may move to next.
func (s State) CanTransition(next State) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// CanToggle returns true if play/pause has an effect in this state.
func (s State) CanToggle() bool {
	switch s {
	case StatePrepared, StatePlaying, StatePaused, StateCompleted:
		return true
	}
	return false
}

// CanSeek returns true if the session accepts seek commands in this state.
func (s State) CanSeek() bool {
	return s.CanToggle()
}

// HasSession returns true if a backend session is alive in this state.
func (s State) HasSession() bool {
	switch s {
	case StatePreparing, StatePrepared, StatePlaying, StatePaused, StateCompleted:
		return true
	}
	return false
}
