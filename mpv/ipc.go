package mpv

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
)

// ErrClosed is returned for commands issued after the connection went away
var ErrClosed = errors.New("mpv connection closed")

// CommandError is a reply whose error field is not "success"
type CommandError struct {
	Command string
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("mpv %s: %s", e.Command, e.Message)
}

// Event is an asynchronous message from mpv
type Event struct {
	Name     string          `json:"event"`
	ID       int64           `json:"id"`
	Property string          `json:"name"`
	Data     json.RawMessage `json:"data"`
	Reason   string          `json:"reason"`
	FileErr  string          `json:"file_error"`
}

type request struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

type reply struct {
	RequestID *int64          `json:"request_id"`
	Error     string          `json:"error"`
	Data      json.RawMessage `json:"data"`
	Event     string          `json:"event"`
}

// Client speaks mpv's line-delimited JSON IPC protocol over conn
type Client struct {
	conn   io.ReadWriteCloser
	nextID atomic.Int64

	writeMu sync.Mutex
	enc     *json.Encoder

	mu      sync.Mutex
	pending map[int64]chan reply
	closed  bool

	events chan Event
	done   chan struct{}
}

// NewClient starts reading from conn. Events are delivered on Events until
// the connection ends.
func NewClient(conn io.ReadWriteCloser) *Client {
	c := &Client{
		conn:    conn,
		enc:     json.NewEncoder(conn),
		pending: make(map[int64]chan reply),
		events:  make(chan Event, 64),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c
}

// Events returns the event stream. It is closed when the connection ends.
func (c *Client) Events() <-chan Event {
	return c.events
}

// Done is closed once the connection has ended
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Command sends a command and waits for its reply data
func (c *Client) Command(ctx context.Context, args ...any) (json.RawMessage, error) {
	if len(args) == 0 {
		return nil, errors.New("empty mpv command")
	}
	id := c.nextID.Add(1)
	ch := make(chan reply, 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	c.pending[id] = ch
	c.mu.Unlock()

	c.writeMu.Lock()
	err := c.enc.Encode(request{Command: args, RequestID: id})
	c.writeMu.Unlock()
	if err != nil {
		c.forget(id)
		return nil, fmt.Errorf("failed to send mpv command: %w", err)
	}

	select {
	case r, ok := <-ch:
		if !ok {
			return nil, ErrClosed
		}
		if r.Error != "success" {
			return nil, &CommandError{Command: fmt.Sprint(args[0]), Message: r.Error}
		}
		return r.Data, nil
	case <-ctx.Done():
		c.forget(id)
		return nil, ctx.Err()
	}
}

// SetProperty sets an mpv property
func (c *Client) SetProperty(ctx context.Context, name string, value any) error {
	_, err := c.Command(ctx, "set_property", name, value)
	return err
}

// ObserveProperty subscribes to property-change events for name
func (c *Client) ObserveProperty(ctx context.Context, id int64, name string) error {
	_, err := c.Command(ctx, "observe_property", id, name)
	return err
}

// Close closes the connection
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) forget(id int64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *Client) readLoop() {
	defer c.shutdown()

	scanner := bufio.NewScanner(c.conn)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var r reply
		if err := json.Unmarshal(line, &r); err != nil {
			continue
		}

		if r.Event != "" {
			var ev Event
			if err := json.Unmarshal(line, &ev); err != nil {
				continue
			}
			c.events <- ev
			continue
		}

		if r.RequestID == nil {
			continue
		}
		c.mu.Lock()
		ch, ok := c.pending[*r.RequestID]
		delete(c.pending, *r.RequestID)
		c.mu.Unlock()
		if ok {
			ch <- r
		}
	}
}

func (c *Client) shutdown() {
	c.mu.Lock()
	c.closed = true
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
	c.mu.Unlock()
	close(c.events)
	close(c.done)
}
