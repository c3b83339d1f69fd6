// Package unreal is the remote-call client for a running unreal
// editor with the remote execution plugin enabled. Calls are JSON
// objects over a plain TCP socket, one request and one response per
// line, issued strictly one at a time.
package unreal

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	// DefaultAddr is where the editor-side listener binds.
	DefaultAddr = "127.0.0.1:9998"

	dialTimeout = 2 * time.Second
	callTimeout = 30 * time.Second

	// Bootstrap retry cadence while the editor spins up its listener.
	bootstrapInterval = 100 * time.Millisecond
	bootstrapAttempts = 50
)

type request struct {
	ID      string                 `json:"id"`
	Command string                 `json:"command"`
	Params  map[string]interface{} `json:"params,omitempty"`
}

type response struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

// Client talks to one editor instance. The zero value is not usable;
// use NewClient.
type Client struct {
	addr string

	mu   sync.Mutex
	conn net.Conn
	rw   *bufio.ReadWriter
}

func NewClient(addr string) *Client {
	if addr == "" {
		addr = DefaultAddr
	}
	return &Client{addr: addr}
}

// Connect dials the editor if there is no live connection yet.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectLocked(ctx)
}

func (c *Client) connectLocked(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}
	d := net.Dialer{Timeout: dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return errors.Wrapf(err, "Failed to connect to unreal editor at %v", c.addr)
	}
	c.conn = conn
	c.rw = bufio.NewReadWriter(bufio.NewReader(conn), bufio.NewWriter(conn))
	return nil
}

// Bootstrap polls the editor until it accepts a connection: the
// listener comes up asynchronously with editor startup, so the first
// attempts are expected to fail.
func (c *Client) Bootstrap(ctx context.Context) error {
	var err error
	for attempt := 0; attempt < bootstrapAttempts; attempt++ {
		if err = c.Connect(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(bootstrapInterval):
		}
	}
	return errors.Wrapf(err, "Gave up connecting to unreal editor at %v", c.addr)
}

// Close drops the connection. The next call reconnects.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Client) closeLocked() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
		c.rw = nil
	}
}

func (c *Client) call(ctx context.Context, command string, params map[string]interface{}, out interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.connectLocked(ctx); err != nil {
		return err
	}

	deadline := time.Now().Add(callTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	c.conn.SetDeadline(deadline)

	req := &request{
		ID:      uuid.NewString(),
		Command: command,
		Params:  params,
	}
	data, err := json.Marshal(req)
	if err != nil {
		return errors.Wrapf(err, "Failed to marshal %v request", command)
	}
	data = append(data, '\n')
	if _, err := c.rw.Write(data); err != nil {
		c.closeLocked()
		return errors.Wrapf(err, "Failed to send %v request", command)
	}
	if err := c.rw.Flush(); err != nil {
		c.closeLocked()
		return errors.Wrapf(err, "Failed to send %v request", command)
	}

	line, err := c.rw.ReadBytes('\n')
	if err != nil {
		c.closeLocked()
		return errors.Wrapf(err, "Failed to read %v response", command)
	}
	var resp response
	if err := json.Unmarshal(line, &resp); err != nil {
		return errors.Wrapf(err, "Failed to unmarshal %v response", command)
	}
	if resp.ID != req.ID {
		c.closeLocked()
		return errors.Errorf("Response id %q does not match request id %q", resp.ID, req.ID)
	}
	if resp.Error != "" {
		return errors.Errorf("Editor rejected %v: %v", command, resp.Error)
	}
	if out != nil && resp.Result != nil {
		if err := json.Unmarshal(resp.Result, out); err != nil {
			return errors.Wrapf(err, "Failed to unmarshal %v result", command)
		}
	}
	return nil
}

// ProjectSettings fetches the settings the validation pipeline checks
// against preset constraints.
func (c *Client) ProjectSettings(ctx context.Context) (map[string]string, error) {
	var settings map[string]string
	if err := c.call(ctx, "get_project_settings", nil, &settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// ImportOptions configures an asset import on the editor side.
type ImportOptions struct {
	GamePath         string `json:"game_path"`
	AssetName        string `json:"asset_name"`
	SkeletonPath     string `json:"skeleton_path,omitempty"`
	PhysicsAssetPath string `json:"physics_asset_path,omitempty"`
	LodSettingsPath  string `json:"lod_settings_path,omitempty"`
	ImportMesh       bool   `json:"import_mesh"`
	ImportAnimations bool   `json:"import_animations"`
	LodIndex         int    `json:"lod_index"`
}

// ImportAsset imports a file from disk into the project.
func (c *Client) ImportAsset(ctx context.Context, filePath string, options ImportOptions) error {
	return c.call(ctx, "import_asset", map[string]interface{}{
		"file_path": filePath,
		"options":   options,
	}, nil)
}

// AssetExists checks for an asset at the given content path.
func (c *Client) AssetExists(ctx context.Context, assetPath string) (bool, error) {
	var exists bool
	if err := c.call(ctx, "asset_exists", map[string]interface{}{
		"asset_path": assetPath,
	}, &exists); err != nil {
		return false, err
	}
	return exists, nil
}

// DeleteAsset removes an asset from the project.
func (c *Client) DeleteAsset(ctx context.Context, assetPath string) error {
	return c.call(ctx, "delete_asset", map[string]interface{}{
		"asset_path": assetPath,
	}, nil)
}
