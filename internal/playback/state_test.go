package playback

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState_String(t *testing.T) {
	assert.Equal(t, "Idle", StateIdle.String())
	assert.Equal(t, "Completed", StateCompleted.String())
	assert.Equal(t, "Unknown", State(42).String())
}

func TestState_Transitions(t *testing.T) {
	tests := []struct {
		from, to State
		want     bool
	}{
		{StateIdle, StatePreparing, true},
		{StateIdle, StatePlaying, false},
		{StatePreparing, StatePrepared, true},
		{StatePreparing, StatePlaying, false},
		{StatePrepared, StatePlaying, true},
		{StatePlaying, StateCompleted, true},
		{StatePaused, StateCompleted, false},
		{StateCompleted, StatePlaying, true},
		{StateFailed, StatePreparing, true},
		{StateFailed, StatePlaying, false},
		{StateReleased, StatePreparing, true},
		{StateReleased, StatePlaying, false},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestState_EveryLiveStateCanBeReleased(t *testing.T) {
	for s := StateIdle; s < StateReleased; s++ {
		assert.True(t, s.CanTransition(StateReleased), s.String())
	}
}

func TestState_Capabilities(t *testing.T) {
	assert.False(t, StateIdle.CanToggle())
	assert.False(t, StatePreparing.CanToggle())
	assert.True(t, StatePrepared.CanToggle())
	assert.True(t, StateCompleted.CanSeek())
	assert.False(t, StateFailed.CanSeek())

	assert.True(t, StatePreparing.HasSession())
	assert.False(t, StateFailed.HasSession())
	assert.False(t, StateReleased.HasSession())
}
