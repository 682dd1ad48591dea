// Package presence mirrors the current stream to Discord Rich Presence.
package presence

import (
	"net/url"
	"path"
	"strings"
)

// describe returns the details and state lines for a stream: the stream
// name (or the file name from the link) and the host serving it.
func describe(link, title string) (details, state string) {
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		if title == "" {
			title = link
		}
		return title, "LinkPlayer"
	}

	details = title
	if details == "" {
		base := path.Base(u.Path)
		details = strings.TrimSuffix(base, path.Ext(base))
		if details == "" || details == "." || details == "/" {
			details = u.Hostname()
		}
	}
	return details, u.Hostname()
}

// brokenPipe reports whether err means Discord went away and the IPC
// connection must be re-established.
func brokenPipe(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	for _, m := range []string{"broken pipe", "use of closed network connection", "connection reset", "eof"} {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
