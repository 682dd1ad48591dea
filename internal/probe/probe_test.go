package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbe_ReadsHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.Header().Set("Content-Type", "Audio/MPEG; charset=binary")
		w.Header().Set("icy-name", " Night Radio ")
		w.Header().Set("Content-Length", "1234")
	}))
	defer srv.Close()

	info, err := Probe(context.Background(), srv.Client(), srv.URL+"/stream/live.mp3")
	require.NoError(t, err)

	assert.Equal(t, "audio/mpeg", info.ContentType)
	assert.Equal(t, "Night Radio", info.Name)
	assert.Equal(t, int64(1234), info.Length)
}

func TestProbe_NameFallsBackToPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/ogg")
	}))
	defer srv.Close()

	info, err := Probe(context.Background(), srv.Client(), srv.URL+"/music/My%20Song.ogg")
	require.NoError(t, err)
	assert.Equal(t, "My Song.ogg", info.Name)
}

func TestProbe_HeadNotAllowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	}))
	defer srv.Close()

	info, err := Probe(context.Background(), srv.Client(), srv.URL+"/a.flac")
	require.NoError(t, err)
	assert.Equal(t, "", info.ContentType)
	assert.Equal(t, "a.flac", info.Name)
	assert.Equal(t, int64(-1), info.Length)
}

func TestProbe_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := Probe(context.Background(), srv.Client(), srv.URL+"/missing.mp3")
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	tests := []struct {
		link    string
		wantErr bool
	}{
		{"http://example.com/a.mp3", false},
		{"  HTTPS://example.com/a.mp3  ", false},
		{"ftp://example.com/a.mp3", true},
		{"not a url", true},
		{"http:///nohost.mp3", true},
	}
	for _, tt := range tests {
		_, err := Parse(tt.link)
		if tt.wantErr {
			assert.Error(t, err, tt.link)
		} else {
			assert.NoError(t, err, tt.link)
		}
	}
}

func TestParse_SchemeError(t *testing.T) {
	_, err := Parse("rtsp://example.com/live")
	assert.ErrorIs(t, err, ErrUnsupportedScheme)
}

func TestExt(t *testing.T) {
	u, err := Parse("http://example.com/path/Track.MP3?x=1")
	require.NoError(t, err)
	assert.Equal(t, ".mp3", Ext(u))
}
