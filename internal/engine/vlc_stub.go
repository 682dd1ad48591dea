//go:build !vlc || android || ios

package engine

import "github.com/rs/zerolog"

// VLC is unavailable unless built with -tags vlc on a desktop target.
type VLC struct{}

func NewVLC(log zerolog.Logger, parseTimeoutMs int) (*VLC, error) {
	return nil, ErrBackendUnavailable
}

func (e *VLC) NewSession(link string, l Listener) (Session, error) {
	return nil, ErrBackendUnavailable
}

func (e *VLC) Close() {}
