package mpv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"sbs-player/player"
)

const eofObserverID = 1

// Options configures one mpv side
type Options struct {
	Name            string
	Title           string
	Geometry        string
	CaptionFont     string
	CaptionSize     int
	StartupTimeout  time.Duration
	ShutdownTimeout time.Duration
	Logger          *slog.Logger
}

// Player is one mpv process controlled over IPC. It implements
// player.MediaPlayer.
type Player struct {
	name            string
	cmd             *exec.Cmd
	client          *Client
	socket          string
	shutdownTimeout time.Duration
	logger          *slog.Logger
	notify          func()
	exited          chan struct{}

	mu     sync.Mutex
	status player.Status
}

// args builds the mpv command line for a side
func (o Options) args(socket string) []string {
	args := []string{
		"--idle=yes",
		"--keep-open=yes",
		"--force-window=yes",
		"--no-terminal",
		"--input-ipc-server=" + socket,
		"--osd-level=1",
		"--osd-bold=yes",
		"--osd-align-x=center",
		"--osd-align-y=bottom",
	}
	if o.Title != "" {
		args = append(args, "--title="+o.Title)
	}
	if o.Geometry != "" {
		args = append(args, "--geometry="+o.Geometry)
	}
	if o.CaptionFont != "" {
		args = append(args, "--osd-font="+o.CaptionFont)
	}
	if o.CaptionSize > 0 {
		args = append(args, "--osd-font-size="+strconv.Itoa(o.CaptionSize))
	}
	return args
}

// Start launches an mpv process for one side and connects to it. notify is
// called after every status change, from a background goroutine.
func (m *MPV) Start(ctx context.Context, opts Options, notify func()) (*Player, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.StartupTimeout <= 0 {
		opts.StartupTimeout = 5 * time.Second
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 2 * time.Second
	}
	if notify == nil {
		notify = func() {}
	}

	socket := socketPath(opts.Name)
	cmd := exec.Command(m.path, opts.args(socket)...)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("error launching mpv: %w", err)
	}

	p := &Player{
		name:            opts.Name,
		cmd:             cmd,
		socket:          socket,
		shutdownTimeout: opts.ShutdownTimeout,
		logger:          opts.Logger.With("side", opts.Name),
		notify:          notify,
		exited:          make(chan struct{}),
		status:          player.StatusNoMedia,
	}
	go func() {
		err := cmd.Wait()
		p.logger.Debug("mpv exited", "err", err)
		close(p.exited)
	}()

	startCtx, cancel := context.WithTimeout(ctx, opts.StartupTimeout)
	defer cancel()

	conn, err := p.dial(startCtx)
	if err != nil {
		p.kill()
		return nil, err
	}
	p.client = NewClient(conn)
	go p.watch()

	if err := p.client.ObserveProperty(startCtx, eofObserverID, "eof-reached"); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to observe eof-reached: %w", err)
	}

	p.logger.Info("mpv started", "pid", cmd.Process.Pid, "socket", socket)
	return p, nil
}

// dial retries until mpv has created its IPC socket
func (p *Player) dial(ctx context.Context) (io.ReadWriteCloser, error) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		conn, err := dialSocket(ctx, p.socket)
		if err == nil {
			return conn, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("mpv ipc socket %s not ready: %w", p.socket, err)
		case <-p.exited:
			return nil, fmt.Errorf("mpv exited before its ipc socket was ready")
		case <-ticker.C:
		}
	}
}

// watch turns mpv events into status changes
func (p *Player) watch() {
	for ev := range p.client.Events() {
		if next, ok := statusFromEvent(ev); ok {
			p.setStatus(next)
		}
	}
}

// statusFromEvent maps an mpv event onto a media status
func statusFromEvent(ev Event) (player.Status, bool) {
	switch ev.Name {
	case "start-file":
		return player.StatusLoading, true
	case "file-loaded":
		return player.StatusPlaying, true
	case "end-file":
		if ev.Reason == "error" {
			return player.StatusInvalidMedia, true
		}
	case "property-change":
		if ev.ID != eofObserverID || ev.Property != "eof-reached" {
			return 0, false
		}
		var eof bool
		if err := json.Unmarshal(ev.Data, &eof); err != nil {
			return 0, false
		}
		// null (no file loaded) decodes as false
		if eof {
			return player.StatusEndOfMedia, true
		}
	}
	return 0, false
}

func (p *Player) setStatus(s player.Status) {
	p.mu.Lock()
	changed := p.status != s
	p.status = s
	p.mu.Unlock()

	if changed {
		p.logger.Debug("status changed", "status", s)
		p.notify()
	}
}

// Status returns the last status derived from mpv events
func (p *Player) Status() player.Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// SetCaption shows text as the persistent OSD message
func (p *Player) SetCaption(ctx context.Context, text string) error {
	return p.client.SetProperty(ctx, "osd-msg1", text)
}

// SetMuted mutes or unmutes the side
func (p *Player) SetMuted(ctx context.Context, muted bool) error {
	return p.client.SetProperty(ctx, "mute", muted)
}

// Load replaces the current file. The status moves to loading before the
// command is sent so a finished clip is never reported as finished twice.
func (p *Player) Load(ctx context.Context, path string) error {
	p.setStatus(player.StatusLoading)
	if _, err := p.client.Command(ctx, "loadfile", path, "replace"); err != nil {
		return err
	}
	return nil
}

// Play unpauses playback
func (p *Player) Play(ctx context.Context) error {
	return p.client.SetProperty(ctx, "pause", false)
}

// Close asks mpv to quit and kills it if it does not exit in time
func (p *Player) Close() error {
	if p.client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), p.shutdownTimeout)
		_, err := p.client.Command(ctx, "quit")
		cancel()
		if err != nil && !errors.Is(err, ErrClosed) {
			p.logger.Debug("quit command failed", "err", err)
		}
	}

	select {
	case <-p.exited:
	case <-time.After(p.shutdownTimeout):
		p.kill()
	}

	if p.client != nil {
		p.client.Close()
	}
	removeSocket(p.socket)
	p.logger.Info("mpv stopped")
	return nil
}

func (p *Player) kill() {
	if p.cmd.Process != nil {
		p.cmd.Process.Kill()
	}
	<-p.exited
	removeSocket(p.socket)
}

func removeSocket(path string) {
	if isFileSocket {
		os.Remove(path)
	}
}
