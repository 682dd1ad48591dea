package ui

import (
	"errors"
	"fmt"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkplayer/internal/playback"
)

type recorder struct {
	calls     []string
	submitErr error
	onDragEnd func(ms int)
}

func (r *recorder) Submit(link string) error {
	r.calls = append(r.calls, "submit "+link)
	return r.submitErr
}

func (r *recorder) TogglePlayPause() { r.calls = append(r.calls, "toggle") }
func (r *recorder) DragStart()       { r.calls = append(r.calls, "drag start") }

func (r *recorder) DragProgress(ms int, fromUser bool) {
	r.calls = append(r.calls, fmt.Sprintf("drag %d %t", ms, fromUser))
}

func (r *recorder) DragEnd(ms int) {
	r.calls = append(r.calls, fmt.Sprintf("drag end %d", ms))
	if r.onDragEnd != nil {
		r.onDragEnd(ms)
	}
}

func newTestScreen(t *testing.T) (*Screen, *recorder) {
	t.Helper()
	test.NewApp()
	w := test.NewWindow(nil)
	t.Cleanup(w.Close)

	s := NewScreen(w)
	w.SetContent(s.Content())
	w.Resize(fyne.NewSize(400, 200))
	r := &recorder{}
	s.Bind(r)
	return s, r
}

func TestScreen_InitialState(t *testing.T) {
	s, _ := newTestScreen(t)

	assert.Equal(t, "00:00", s.current.Text)
	assert.Equal(t, "00:00", s.duration.Text)
	assert.Equal(t, playback.LabelPlay, s.play.Text)
	assert.True(t, s.seek.Disabled())
}

func TestScreen_PlayButtonToggles(t *testing.T) {
	s, r := newTestScreen(t)

	test.Tap(s.play)

	assert.Equal(t, []string{"toggle"}, r.calls)
}

func TestScreen_ViewSetters(t *testing.T) {
	s, _ := newTestScreen(t)

	s.SetSeekMax(65000)
	s.SetDuration("01:05")
	s.SetCurrentTime("00:12")
	s.SetStatus("Morning Show")
	s.SetPlayLabel(playback.LabelPause)

	assert.False(t, s.seek.Disabled())
	assert.Equal(t, 65000.0, s.seek.Max)
	assert.Equal(t, "01:05", s.duration.Text)
	assert.Equal(t, "00:12", s.current.Text)
	assert.Equal(t, "Morning Show", s.status.Text)
	assert.Equal(t, playback.LabelPause, s.play.Text)

	s.SetSeekMax(0)
	assert.True(t, s.seek.Disabled())
}

func TestScreen_ProgrammaticPositionNotReported(t *testing.T) {
	s, r := newTestScreen(t)
	s.SetSeekMax(10000)

	s.SetSeekPosition(2500)

	assert.Equal(t, 2500.0, s.seek.Value)
	assert.Empty(t, r.calls)
}

// dragTo builds a drag event at x along the seek bar.
func dragTo(x float32) *fyne.DragEvent {
	return &fyne.DragEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, 5)},
		Dragged:    fyne.NewDelta(10, 0),
	}
}

func TestScreen_UserDrag(t *testing.T) {
	s, r := newTestScreen(t)
	s.SetSeekMax(10000)

	s.seek.Dragged(dragTo(s.seek.Size().Width + 50))
	assert.Equal(t, 10000.0, s.seek.Value)

	// polling writes are held back while the user holds the bar
	s.SetSeekPosition(100)
	assert.Equal(t, 10000.0, s.seek.Value)

	s.seek.DragEnd()

	assert.Equal(t, []string{
		"drag start",
		"drag 10000 true",
		"drag end 10000",
	}, r.calls)
	assert.False(t, s.dragging)

	// nothing sought, so the held-back position wins
	assert.Equal(t, 100.0, s.seek.Value)

	s.SetSeekPosition(6000)
	assert.Equal(t, 6000.0, s.seek.Value)
	assert.Len(t, r.calls, 3)
}

func TestScreen_DragEndSeekMovesBar(t *testing.T) {
	s, r := newTestScreen(t)
	r.onDragEnd = func(ms int) { s.SetSeekPosition(ms) }
	s.SetSeekMax(10000)

	s.seek.Dragged(dragTo(s.seek.Size().Width + 50))
	s.SetSeekPosition(0)
	s.seek.DragEnd()

	assert.Equal(t, 10000.0, s.seek.Value)
}

func TestScreen_KeyboardNudge(t *testing.T) {
	s, r := newTestScreen(t)
	s.SetSeekMax(10000)
	s.SetSeekPosition(2000)

	s.seek.TypedKey(&fyne.KeyEvent{Name: fyne.KeyRight})

	require.NotEmpty(t, r.calls)
	assert.Equal(t, "drag start", r.calls[0])
	assert.Greater(t, s.seek.Value, 2000.0)
	assert.Equal(t, fmt.Sprintf("drag end %d", int(s.seek.Value)), r.calls[len(r.calls)-1])
	assert.False(t, s.dragging)
}

func TestScreen_Submit(t *testing.T) {
	s, r := newTestScreen(t)

	s.submit(" https://example.com/a.mp3 ")
	require.Equal(t, []string{"submit  https://example.com/a.mp3 "}, r.calls)

	r.submitErr = playback.ErrEmptyURL
	s.submit("x")
	assert.Len(t, r.calls, 2)
}

func TestValidateLink(t *testing.T) {
	assert.True(t, errors.Is(validateLink("   "), errNoLink))
	assert.ErrorIs(t, validateLink(""), errNoLink)
	assert.NoError(t, validateLink("https://example.com/a.mp3"))
}

func TestScreen_Unbound(t *testing.T) {
	test.NewApp()
	w := test.NewWindow(nil)
	defer w.Close()
	s := NewScreen(w)

	test.Tap(s.play)
	s.SetSeekMax(1000)
	s.seek.SetValue(500)
	s.submit("https://example.com/a.mp3")
}
