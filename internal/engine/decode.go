package engine

import (
	"bytes"
	"fmt"
	"io"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
)

// Format is a container/codec the beep backend can decode.
type Format string

const (
	FormatUnknown Format = ""
	FormatMP3     Format = "mp3"
	FormatWAV     Format = "wav"
	FormatFLAC    Format = "flac"
	FormatOgg     Format = "ogg"
)

var contentTypes = map[string]Format{
	"audio/mpeg":      FormatMP3,
	"audio/mp3":       FormatMP3,
	"audio/mpeg3":     FormatMP3,
	"audio/wav":       FormatWAV,
	"audio/wave":      FormatWAV,
	"audio/x-wav":     FormatWAV,
	"audio/vnd.wave":  FormatWAV,
	"audio/flac":      FormatFLAC,
	"audio/x-flac":    FormatFLAC,
	"audio/ogg":       FormatOgg,
	"audio/vorbis":    FormatOgg,
	"application/ogg": FormatOgg,
}

var extensions = map[string]Format{
	".mp3":  FormatMP3,
	".wav":  FormatWAV,
	".flac": FormatFLAC,
	".ogg":  FormatOgg,
	".oga":  FormatOgg,
}

// DetectFormat picks a decoder from the content type, then the path
// extension, then the leading bytes of the data.
func DetectFormat(contentType, ext string, head []byte) Format {
	if f, ok := contentTypes[contentType]; ok {
		return f
	}
	if f, ok := extensions[ext]; ok {
		return f
	}
	return sniff(head)
}

func sniff(b []byte) Format {
	switch {
	case bytes.HasPrefix(b, []byte("ID3")):
		return FormatMP3
	case len(b) >= 2 && b[0] == 0xFF && b[1]&0xE0 == 0xE0:
		return FormatMP3
	case bytes.HasPrefix(b, []byte("RIFF")):
		return FormatWAV
	case bytes.HasPrefix(b, []byte("fLaC")):
		return FormatFLAC
	case bytes.HasPrefix(b, []byte("OggS")):
		return FormatOgg
	}
	return FormatUnknown
}

// memFile is an in-memory body that decoders can seek in.
type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }

func decode(f Format, data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	return decodeFrom(f, memFile{bytes.NewReader(data)})
}

// decodeFrom opens a decoder over r. Readers that also implement io.Seeker
// give seekable streams with a known length.
func decodeFrom(f Format, r io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
	switch f {
	case FormatMP3:
		return mp3.Decode(r)
	case FormatWAV:
		return wav.Decode(r)
	case FormatFLAC:
		return flac.Decode(r)
	case FormatOgg:
		return vorbis.Decode(r)
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(f))
	}
}
