// Package ui is the single player screen: a status line, a seek bar between
// the elapsed and total time labels, the play/pause button and a button that
// asks for a link.
package ui

import (
	"errors"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"linkplayer/internal/playback"
)

// Controls receives user input from the screen.
type Controls interface {
	Submit(link string) error
	TogglePlayPause()
	DragStart()
	DragProgress(ms int, fromUser bool)
	DragEnd(ms int)
}

var errNoLink = errors.New("enter a link")

// Screen is the player window content. It implements playback.View.
type Screen struct {
	win      fyne.Window
	controls Controls

	status   *widget.Label
	current  *widget.Label
	duration *widget.Label
	seek     *widget.Slider
	play     *widget.Button
	open     *widget.Button
	content  fyne.CanvasObject

	// guard to avoid feedback when we update the slider programmatically
	updating bool
	dragging bool
	// latest programmatic position that arrived during a drag
	pending    int
	hasPending bool
}

// NewScreen builds the widgets; call Bind before showing w.
func NewScreen(w fyne.Window) *Screen {
	s := &Screen{win: w}

	s.status = widget.NewLabel("Enter a link to start")
	s.status.Wrapping = fyne.TextTruncate
	s.current = widget.NewLabel(playback.FormatTime(0))
	s.duration = widget.NewLabel(playback.FormatTime(0))

	s.seek = widget.NewSlider(0, 0)
	s.seek.Step = 1
	s.seek.OnChanged = s.onSeekChanged
	s.seek.OnChangeEnded = s.onSeekEnded
	s.seek.Disable()

	s.play = widget.NewButtonWithIcon(playback.LabelPlay, theme.MediaPlayIcon(), func() {
		if s.controls != nil {
			s.controls.TogglePlayPause()
		}
	})
	s.open = widget.NewButtonWithIcon("Enter link", theme.ContentAddIcon(), s.ShowLinkDialog)

	seekRow := container.NewBorder(nil, nil, s.current, s.duration, s.seek)
	buttons := container.NewCenter(container.NewHBox(s.play, s.open))
	s.content = container.NewVBox(s.status, seekRow, buttons)
	return s
}

// Bind routes user input to c.
func (s *Screen) Bind(c Controls) {
	s.controls = c
}

func (s *Screen) Content() fyne.CanvasObject {
	return s.content
}

// ShowLinkDialog asks for a link. The form only confirms non-blank input.
func (s *Screen) ShowLinkDialog() {
	entry := widget.NewEntry()
	entry.SetPlaceHolder("https://example.com/stream.mp3")
	entry.Validator = validateLink

	d := dialog.NewForm("Open link", "Play", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Link", entry)}, func(ok bool) {
			if !ok {
				return
			}
			s.submit(entry.Text)
		}, s.win)
	d.Resize(fyne.NewSize(360, d.MinSize().Height))
	d.Show()
	s.win.Canvas().Focus(entry)
}

func validateLink(text string) error {
	if strings.TrimSpace(text) == "" {
		return errNoLink
	}
	return nil
}

func (s *Screen) submit(text string) {
	if s.controls == nil {
		return
	}
	if err := s.controls.Submit(text); err != nil {
		s.ShowError(err)
	}
}

func (s *Screen) onSeekChanged(v float64) {
	if s.updating || s.controls == nil {
		return
	}
	if !s.dragging {
		s.dragging = true
		s.controls.DragStart()
	}
	s.controls.DragProgress(int(v), true)
}

// onSeekEnded restores any position held back during the drag before
// committing; a successful seek then moves the bar to the sought position.
func (s *Screen) onSeekEnded(v float64) {
	if s.updating || s.controls == nil {
		return
	}
	s.dragging = false
	if s.hasPending {
		s.hasPending = false
		s.SetSeekPosition(s.pending)
	}
	s.controls.DragEnd(int(v))
}

func (s *Screen) SetSeekMax(ms int) {
	s.updating = true
	defer func() { s.updating = false }()

	s.seek.Max = float64(ms)
	if s.seek.Value > s.seek.Max {
		s.seek.SetValue(s.seek.Max)
	}
	if ms > 0 {
		s.seek.Enable()
	} else {
		s.seek.Disable()
	}
	s.seek.Refresh()
}

func (s *Screen) SetSeekPosition(ms int) {
	if s.dragging {
		s.pending, s.hasPending = ms, true
		return
	}
	s.updating = true
	s.seek.SetValue(float64(ms))
	s.updating = false
}

func (s *Screen) SetCurrentTime(text string) { s.current.SetText(text) }

func (s *Screen) SetDuration(text string) { s.duration.SetText(text) }

func (s *Screen) SetPlayLabel(label string) {
	s.play.SetText(label)
	if label == playback.LabelPause {
		s.play.SetIcon(theme.MediaPauseIcon())
	} else {
		s.play.SetIcon(theme.MediaPlayIcon())
	}
}

func (s *Screen) SetStatus(text string) { s.status.SetText(text) }

func (s *Screen) ShowError(err error) {
	dialog.ShowError(err, s.win)
}

var _ playback.View = (*Screen)(nil)
