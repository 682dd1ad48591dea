package playback

import "fmt"

// FormatTime renders milliseconds as zero-padded MM:SS. Minutes are not
// wrapped into hours; negative input renders as 00:00.
func FormatTime(ms int) string {
	if ms < 0 {
		return "00:00"
	}
	s := ms / 1000
	return fmt.Sprintf("%02d:%02d", s/60, s%60)
}
