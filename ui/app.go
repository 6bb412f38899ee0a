package ui

import (
	"context"
	"log/slog"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"sbs-player/config"
	"sbs-player/mpv"
	"sbs-player/player"
)

// App represents the main application
type App struct {
	fyneApp fyne.App
	window  fyne.Window
	mpv     *mpv.MPV
	cfg     *config.Config
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	// starting tracks the goroutine launching a session
	starting sync.WaitGroup

	mu       sync.Mutex
	session  *session
	closed   bool
	exitCode int
}

// NewApp creates a new application instance
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	m, err := mpv.New(cfg.MpvPath)
	if err != nil {
		return nil, err
	}
	logger.Debug("using mpv", "path", m.Path())

	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		mpv:    m,
		cfg:    cfg,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Run shows the selection dialog and, once confirmed, plays until the user
// closes the window. It returns the process exit code.
func (a *App) Run() int {
	if a.cfg.Dialog == config.DialogTerminal {
		return a.runTerminal()
	}
	return a.runGUI()
}

func (a *App) runGUI() int {
	a.fyneApp = app.NewWithID("com.sbs-player")
	a.window = a.fyneApp.NewWindow("Select Video Folders")

	form := newSelectionForm(a.window, func(r Result) {
		dispatch(r, a.startPlayback, a.fyneApp.Quit)
	})

	a.window.SetContent(form.content)
	a.window.Resize(fyne.NewSize(600, 0))
	a.window.SetOnClosed(a.stop)

	a.window.ShowAndRun()

	a.shutdown()
	return a.code()
}

// shutdown stops playback and waits for an in-flight start to finish, so no
// mpv process outlives the app
func (a *App) shutdown() {
	a.stop()
	a.starting.Wait()
}

// adopt records a started session. It reports false when the app is already
// shutting down, in which case the caller owns s and must close it.
func (a *App) adopt(s *session) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return false
	}
	a.session = s
	return true
}

// stop cancels startup and closes the running session, if any
func (a *App) stop() {
	a.cancel()

	a.mu.Lock()
	s := a.session
	a.session = nil
	a.closed = true
	a.mu.Unlock()

	if s != nil {
		s.Close()
	}
}

func (a *App) fail() {
	a.mu.Lock()
	a.exitCode = 1
	a.mu.Unlock()
}

func (a *App) code() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.exitCode
}

// startPlayback swaps the dialog for the status view and starts both sides
// in the background
func (a *App) startPlayback(sel player.Selection) {
	view := newStatusView(sel, a.cfg.CaptionSize)
	a.window.SetTitle(a.cfg.WindowTitle)
	a.window.SetContent(view.content)
	a.window.Resize(fyne.NewSize(800, 200))

	a.launch(sel, func(left, right string) {
		fyne.Do(func() {
			view.setCurrent(left, right)
		})
	}, func(started bool, err error) {
		if a.ctx.Err() != nil {
			return
		}
		fyne.Do(func() {
			switch {
			case err != nil:
				view.setStatus("Playback failed")
				a.showError("Playback failed", err.Error())
			case !started:
				view.setStatus("No clips found in one of the folders")
			default:
				view.setStatus("Playing")
			}
		})
	})
}

// launch starts a session on a background goroutine tracked by a.starting.
// done is called once the session is running or has failed to start; it is
// not called when the app shut down in the meantime.
func (a *App) launch(sel player.Selection, onCycle func(left, right string), done func(started bool, err error)) {
	a.starting.Add(1)
	go func() {
		defer a.starting.Done()

		s, err := a.startSession(a.ctx, sel, onCycle)
		if err != nil {
			if a.ctx.Err() != nil {
				a.logger.Debug("playback start abandoned", "err", err)
				return
			}
			a.logger.Error("failed to start playback", "err", err)
			a.fail()
			done(false, err)
			return
		}
		if !a.adopt(s) {
			s.Close()
			return
		}
		if !s.started {
			a.logger.Warn("nothing to play, a folder has no clips")
		}
		done(s.started, nil)
	}()
}

// showError displays an error dialog
func (a *App) showError(title, message string) {
	label := widget.NewLabel(message)
	label.Wrapping = fyne.TextWrapWord
	popup := a.fyneApp.NewWindow(title)
	popup.SetContent(container.NewVBox(
		label,
		widget.NewButton("OK", func() {
			popup.Close()
		}),
	))
	popup.Resize(fyne.NewSize(400, 150))
	popup.Show()
}
