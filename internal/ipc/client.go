package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"proctrack/internal/config"
	"proctrack/internal/process"
)

const dialTimeout = 2 * time.Second

// Client sends requests to the daemon. It holds no connection; each request
// dials its own.
type Client struct {
	path string
}

// Dial verifies the daemon is accepting connections at path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, dialTimeout)
	if err != nil {
		return nil, err
	}
	_ = conn.Close()
	return &Client{path: path}, nil
}

// NewClient returns a client without probing the socket.
func NewClient(path string) *Client {
	return &Client{path: path}
}

// Send writes req, half-closes the connection and decodes the envelope.
// A daemon-side failure is returned as *RemoteError.
func (c *Client) Send(ctx context.Context, req Request) (string, error) {
	var dialer net.Dialer
	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	conn, err := dialer.DialContext(dialCtx, "unix", c.path)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	data, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	if _, err := conn.Write(data); err != nil {
		return "", fmt.Errorf("write request: %w", err)
	}
	if uc, ok := conn.(*net.UnixConn); ok {
		if err := uc.CloseWrite(); err != nil {
			return "", fmt.Errorf("close write: %w", err)
		}
	}

	body, err := io.ReadAll(conn)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if len(body) == 0 {
		return "", errors.New("daemon closed the connection without a response")
	}
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return env.Result()
}

// Do encodes payload under kind and sends it.
func (c *Client) Do(ctx context.Context, kind Kind, payload any) (string, error) {
	req, err := NewRequest(kind, payload)
	if err != nil {
		return "", err
	}
	return c.Send(ctx, req)
}

// Show returns the selected entries. ids may be empty.
func (c *Client) Show(ctx context.Context, ids string) ([]process.Entry, error) {
	return c.entries(ctx, KindShow, ids)
}

// Export returns the selected entries for writing to a file.
func (c *Client) Export(ctx context.Context, ids string) ([]process.Entry, error) {
	return c.entries(ctx, KindExport, ids)
}

func (c *Client) entries(ctx context.Context, kind Kind, ids string) ([]process.Entry, error) {
	msg, err := c.Do(ctx, kind, SelectPayload{IDs: ids})
	if err != nil {
		return nil, err
	}
	var out []process.Entry
	if err := json.Unmarshal([]byte(msg), &out); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", kind, err)
	}
	return out, nil
}

// Settings returns the daemon's current intervals.
func (c *Client) Settings(ctx context.Context) (config.Intervals, error) {
	msg, err := c.Do(ctx, KindSettings, nil)
	if err != nil {
		return config.Intervals{}, err
	}
	var out config.Intervals
	if err := json.Unmarshal([]byte(msg), &out); err != nil {
		return config.Intervals{}, fmt.Errorf("decode settings response: %w", err)
	}
	return out, nil
}

// Quit asks the daemon to save and exit.
func (c *Client) Quit(ctx context.Context) (string, error) {
	return c.Do(ctx, KindQuit, nil)
}
