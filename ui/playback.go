package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"sbs-player/mpv"
	"sbs-player/player"
)

// session is a running pair of mpv sides plus the controller looping them
type session struct {
	left, right *mpv.Player
	cancel      context.CancelFunc
	done        chan struct{}

	// started is false when a folder had no clips and nothing is playing
	started   bool
	closeOnce sync.Once
}

// startSession launches both sides, plays the first pair and starts the
// controller loop. Nothing is scanned or launched before this is called.
func (a *App) startSession(ctx context.Context, sel player.Selection, onCycle func(left, right string)) (*session, error) {
	ctx, cancel := context.WithCancel(ctx)

	var ctrl atomic.Pointer[player.Controller]
	notify := func() {
		if c := ctrl.Load(); c != nil {
			c.StatusChanged()
		}
	}

	opts := func(name, geometry string) mpv.Options {
		return mpv.Options{
			Name:            name,
			Title:           fmt.Sprintf("%s (%s)", a.cfg.WindowTitle, name),
			Geometry:        geometry,
			CaptionFont:     a.cfg.CaptionFont,
			CaptionSize:     a.cfg.CaptionSize,
			StartupTimeout:  a.cfg.StartupTimeout,
			ShutdownTimeout: a.cfg.ShutdownTimeout,
			Logger:          a.logger,
		}
	}

	left, err := a.mpv.Start(ctx, opts("left", "50%x100%+0+0"), notify)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("left player: %w", err)
	}
	right, err := a.mpv.Start(ctx, opts("right", "50%x100%-0+0"), notify)
	if err != nil {
		cancel()
		left.Close()
		return nil, fmt.Errorf("right player: %w", err)
	}

	s := &session{left: left, right: right, cancel: cancel, done: make(chan struct{})}

	c := player.NewController(left, right,
		player.WithLogger(a.logger),
		player.WithExtensions(a.cfg.Extensions),
	)
	c.OnCycle(onCycle)
	ctrl.Store(c)

	started, err := c.PlayVideos(ctx, sel)
	if err != nil {
		close(s.done)
		s.Close()
		return nil, err
	}
	s.started = started

	go func() {
		defer close(s.done)
		c.Run(ctx)
	}()
	return s, nil
}

// Close stops the controller loop and both mpv processes
func (s *session) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		<-s.done
		s.left.Close()
		s.right.Close()
	})
}

// statusView replaces the dialog once playback starts. Captions are shown
// as they were entered and never change.
type statusView struct {
	content fyne.CanvasObject
	status  *widget.Label
	left    *widget.Label
	right   *widget.Label
}

func newStatusView(sel player.Selection, captionSize int) *statusView {
	v := &statusView{
		status: widget.NewLabel("Starting players..."),
		left:   widget.NewLabel("-"),
		right:  widget.NewLabel("-"),
	}
	v.left.Alignment = fyne.TextAlignCenter
	v.right.Alignment = fyne.TextAlignCenter

	caption := func(text string) *canvas.Text {
		c := canvas.NewText(text, theme.Color(theme.ColorNameForeground))
		c.TextSize = float32(captionSize)
		c.TextStyle = fyne.TextStyle{Bold: true}
		c.Alignment = fyne.TextAlignCenter
		return c
	}

	v.content = container.NewBorder(
		nil,
		v.status,
		nil,
		nil,
		container.NewGridWithColumns(2,
			container.NewVBox(caption(sel.LeftCaption), v.left),
			container.NewVBox(caption(sel.RightCaption), v.right),
		),
	)
	return v
}

func (v *statusView) setCurrent(left, right string) {
	v.left.SetText(filepath.Base(left))
	v.right.SetText(filepath.Base(right))
}

func (v *statusView) setStatus(text string) {
	v.status.SetText(text)
}
