package playback

import (
	"errors"
	"fmt"
)

// ErrEmptyURL is returned by Submit for empty or whitespace-only input.
var ErrEmptyURL = errors.New("link is empty")

// Kind classifies controller failures for the user.
type Kind int

const (
	// KindPrepare covers session construction and preparation: bad link,
	// unreachable host, unsupported format.
	KindPrepare Kind = iota
	// KindPlayback covers start/pause/stop failures and backend errors
	// after preparation.
	KindPlayback
	// KindSeek covers rejected seek commands.
	KindSeek
)

func (k Kind) String() string {
	switch k {
	case KindPrepare:
		return "prepare"
	case KindPlayback:
		return "playback"
	case KindSeek:
		return "seek"
	default:
		return "unknown"
	}
}

// Error is a failure reported to the view.
type Error struct {
	Kind Kind
	Op   string // e.g. "open", "start"
	URL  string
	Err  error
}

func (e *Error) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message returns the short text shown in the status line.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var pe *Error
	if !errors.As(err, &pe) {
		return err.Error()
	}
	switch pe.Kind {
	case KindPrepare:
		return fmt.Sprintf("Could not open link: %v", pe.Err)
	case KindSeek:
		return fmt.Sprintf("Seek failed: %v", pe.Err)
	default:
		return fmt.Sprintf("Playback failed: %v", pe.Err)
	}
}
