package playback

// Button labels for the play/pause control.
const (
	LabelPlay  = "Play"
	LabelPause = "Pause"
)

// View is the screen the controller drives. All methods are called on the UI
// goroutine. Positions are in milliseconds.
type View interface {
	SetSeekMax(ms int)
	SetSeekPosition(ms int)
	SetCurrentTime(text string)
	SetDuration(text string)
	SetPlayLabel(label string)
	SetStatus(text string)
	ShowError(err error)
}

// Presence mirrors playback to an external status surface such as Discord.
type Presence interface {
	Update(link, title string, paused bool)
	Clear()
}
