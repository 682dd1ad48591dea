//go:build !android && !ios

package presence

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/hugolgst/rich-go/client"
	"github.com/rs/zerolog"
)

const reconnectCooldown = 2 * time.Second

// Client reports playback to Discord. Failures are logged and never reach
// the caller; a missing Discord client only disables the feature.
type Client struct {
	clientID string
	log      zerolog.Logger

	mu                 sync.Mutex
	connected          bool
	lastLink           string
	startTime          time.Time
	lastConnectAttempt time.Time
}

func New(clientID string, log zerolog.Logger) *Client {
	return &Client{clientID: clientID, log: log}
}

// Connect logs in to the local Discord IPC socket.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return nil
	}
	c.lastConnectAttempt = time.Now()
	if err := client.Login(c.clientID); err != nil {
		return fmt.Errorf("discord login: %w", err)
	}
	c.connected = true
	return nil
}

// Update shows link as the current stream. The elapsed timer restarts when
// the link changes.
func (c *Client) Update(link, title string, paused bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected && !c.reconnect() {
		return
	}

	if c.lastLink != link {
		c.startTime = time.Now()
		c.lastLink = link
	}

	details, state := describe(link, title)
	activity := client.Activity{
		Details:    details,
		State:      state,
		LargeImage: "linkplayer",
		LargeText:  "LinkPlayer",
		Timestamps: &client.Timestamps{Start: &c.startTime},
	}
	if paused {
		activity.SmallImage = "pause"
		activity.SmallText = "Paused"
	} else {
		activity.SmallImage = "play"
		activity.SmallText = "Playing"
	}

	err := client.SetActivity(activity)
	if brokenPipe(err) {
		client.Logout()
		c.connected = false
		if c.reconnect() {
			err = client.SetActivity(activity)
		} else {
			err = nil
		}
	}
	if err != nil {
		c.log.Warn().Err(err).Msg("discord presence update failed")
	}
}

// Clear removes the activity.
func (c *Client) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastLink = ""
	if !c.connected {
		return
	}
	if err := client.SetActivity(client.Activity{}); err != nil {
		if brokenPipe(err) {
			client.Logout()
			c.connected = false
			return
		}
		c.log.Warn().Err(err).Msg("discord presence clear failed")
	}
}

// Disconnect closes the Discord RPC connection.
func (c *Client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		client.Logout()
		c.connected = false
	}
}

// reconnect tries one login, at most once per cooldown. Callers hold mu.
func (c *Client) reconnect() bool {
	if time.Since(c.lastConnectAttempt) < reconnectCooldown || !ipcAvailable() {
		return false
	}
	c.lastConnectAttempt = time.Now()
	if err := client.Login(c.clientID); err != nil {
		c.log.Debug().Err(err).Msg("discord reconnect failed")
		return false
	}
	c.connected = true
	return true
}

// ipcAvailable checks for a live Discord IPC socket on this OS.
func ipcAvailable() bool {
	var pattern string
	switch runtime.GOOS {
	case "linux":
		pattern = filepath.Join(fmt.Sprintf("/run/user/%d", os.Getuid()), "discord-ipc-*")
	case "darwin":
		pattern = filepath.Join(os.TempDir(), "discord-ipc-*")
	default:
		return true
	}

	matches, _ := filepath.Glob(pattern)
	for _, m := range matches {
		if conn, err := net.DialTimeout("unix", m, 200*time.Millisecond); err == nil {
			_ = conn.Close()
			return true
		}
	}
	return false
}
