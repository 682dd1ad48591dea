package probe

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
)

// ErrUnsupportedScheme is returned for links that are not http or https.
var ErrUnsupportedScheme = errors.New("unsupported link scheme")

// Info holds what a HEAD request tells us about a link.
type Info struct {
	ContentType string // media type without parameters, lower case
	Name        string // icy-name header, else the last path segment
	Length      int64  // -1 when unknown
}

// Probe issues a HEAD request for link. Servers that reject HEAD with 405
// yield an Info derived from the URL alone.
func Probe(ctx context.Context, client *http.Client, link string) (Info, error) {
	u, err := Parse(link)
	if err != nil {
		return Info{}, err
	}
	info := Info{Name: nameFromPath(u), Length: -1}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, u.String(), nil)
	if err != nil {
		return Info{}, err
	}
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Info{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusMethodNotAllowed {
		return info, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Info{}, fmt.Errorf("probe %s: %s", u.Redacted(), resp.Status)
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if mt, _, err := mime.ParseMediaType(ct); err == nil {
			info.ContentType = strings.ToLower(mt)
		}
	}
	if name := strings.TrimSpace(resp.Header.Get("icy-name")); name != "" {
		info.Name = name
	}
	info.Length = resp.ContentLength
	return info, nil
}

// Parse accepts absolute http and https links only.
func Parse(link string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("link %q has no host", link)
	}
	return u, nil
}

// Ext returns the lower-case extension of the link's path, e.g. ".mp3".
func Ext(u *url.URL) string {
	return strings.ToLower(path.Ext(u.Path))
}

func nameFromPath(u *url.URL) string {
	base := path.Base(u.Path)
	if base == "." || base == "/" {
		return u.Host
	}
	if s, err := url.PathUnescape(base); err == nil {
		return s
	}
	return base
}
