//go:build android || ios

package presence

import "github.com/rs/zerolog"

// Client is a no-op on mobile: there is no Discord IPC socket.
type Client struct{}

func New(string, zerolog.Logger) *Client { return &Client{} }

func (c *Client) Connect() error { return nil }

func (c *Client) Update(link, title string, paused bool) {}

func (c *Client) Clear() {}

func (c *Client) Disconnect() {}
