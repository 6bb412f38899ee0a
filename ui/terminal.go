package ui

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"sbs-player/player"
)

type field int

const (
	fieldLeftFolder field = iota
	fieldRightFolder
	fieldLeftCaption
	fieldRightCaption
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Left Folder:",
	"Right Folder:",
	"Left Caption:",
	"Right Caption:",
}

func (f field) isFolder() bool {
	return f == fieldLeftFolder || f == fieldRightFolder
}

type formKeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Browse key.Binding
	Submit key.Binding
	Cancel key.Binding
}

var formKeys = formKeyMap{
	Next: key.NewBinding(
		key.WithKeys("tab", "down"),
		key.WithHelp("tab", "next field"),
	),
	Prev: key.NewBinding(
		key.WithKeys("shift+tab", "up"),
		key.WithHelp("shift+tab", "previous field"),
	),
	Browse: key.NewBinding(
		key.WithKeys("ctrl+o"),
		key.WithHelp("ctrl+o", "browse folder"),
	),
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "next / submit"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc", "ctrl+c"),
		key.WithHelp("esc", "cancel"),
	),
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	labelStyle   = lipgloss.NewStyle().Width(15)
	focusedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Width(15)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1)
)

// formModel is the terminal version of the selection dialog
type formModel struct {
	inputs  [fieldCount]textinput.Model
	focus   field
	picking bool
	picker  filepicker.Model
	width   int
	height  int
	result  Result
}

func newFormModel() formModel {
	var m formModel
	for i := range m.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Width = 50
		m.inputs[i] = ti
	}
	m.inputs[fieldLeftFolder].Focus()
	return m
}

func (m formModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m formModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = size.Width, size.Height
	}

	if m.picking {
		return m.updatePicker(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, formKeys.Cancel):
			m.result = Cancelled{}
			return m, tea.Quit
		case key.Matches(msg, formKeys.Submit):
			if m.focus == fieldCount-1 {
				m.result = Confirmed{Selection: m.selection()}
				return m, tea.Quit
			}
			return m, m.setFocus(m.focus + 1)
		case key.Matches(msg, formKeys.Next):
			return m, m.setFocus((m.focus + 1) % fieldCount)
		case key.Matches(msg, formKeys.Prev):
			return m, m.setFocus((m.focus + fieldCount - 1) % fieldCount)
		case key.Matches(msg, formKeys.Browse):
			if m.focus.isFolder() {
				return m, m.openPicker()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *formModel) setFocus(f field) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = f
	return m.inputs[m.focus].Focus()
}

// openPicker starts a directory-only picker at the typed folder, or the
// home directory when that is not a folder
func (m *formModel) openPicker() tea.Cmd {
	fp := filepicker.New()
	fp.DirAllowed = true
	fp.FileAllowed = false
	fp.CurrentDirectory = pickerStart(m.inputs[m.focus].Value())

	m.picker = fp
	m.picking = true

	width, height := m.width, m.height
	resize := func() tea.Msg {
		return tea.WindowSizeMsg{Width: width, Height: height}
	}
	if height == 0 {
		return m.picker.Init()
	}
	return tea.Batch(m.picker.Init(), resize)
}

func pickerStart(typed string) string {
	if typed != "" {
		if fi, err := os.Stat(typed); err == nil && fi.IsDir() {
			return typed
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

func (m formModel) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		m.picking = false
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	// The picker records a selected directory in Path.
	if m.picker.Path != "" {
		m.inputs[m.focus].SetValue(m.picker.Path)
		m.inputs[m.focus].CursorEnd()
		m.picking = false
		return m, nil
	}
	return m, cmd
}

func (m formModel) selection() player.Selection {
	return player.Selection{
		LeftFolder:   m.inputs[fieldLeftFolder].Value(),
		RightFolder:  m.inputs[fieldRightFolder].Value(),
		LeftCaption:  m.inputs[fieldLeftCaption].Value(),
		RightCaption: m.inputs[fieldRightCaption].Value(),
	}
}

func (m formModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Select Video Folders"))
	b.WriteString("\n")

	if m.picking {
		fmt.Fprintf(&b, "Choose %s in %s\n\n", strings.ToLower(strings.TrimSuffix(fieldLabels[m.focus], ":")), m.picker.CurrentDirectory)
		b.WriteString(m.picker.View())
		b.WriteString(helpStyle.Render("enter select folder • h/← up • esc close"))
		return b.String()
	}

	for i := range m.inputs {
		label := labelStyle.Render(fieldLabels[i])
		if field(i) == m.focus {
			label = focusedStyle.Render(fieldLabels[i])
		}
		b.WriteString(label + m.inputs[i].View() + "\n")
	}

	var help []string
	for _, k := range []key.Binding{formKeys.Next, formKeys.Submit, formKeys.Browse, formKeys.Cancel} {
		h := k.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	b.WriteString(helpStyle.Render(strings.Join(help, " • ")))
	return b.String()
}

// runTerminalDialog shows the terminal form and returns its result
func runTerminalDialog() (Result, error) {
	final, err := tea.NewProgram(newFormModel()).Run()
	if err != nil {
		return nil, err
	}
	if m, ok := final.(formModel); ok && m.result != nil {
		return m.result, nil
	}
	return Cancelled{}, nil
}

// runTerminal is Run for the terminal frontend. Playback lasts until SIGINT
// or SIGTERM.
func (a *App) runTerminal() int {
	r, err := runTerminalDialog()
	if err != nil {
		a.logger.Error("selection dialog failed", "err", err)
		return 1
	}

	dispatch(r, a.playUntilSignal, func() {
		a.logger.Debug("selection cancelled")
	})
	return a.code()
}

func (a *App) playUntilSignal(sel player.Selection) {
	ctx, stop := signal.NotifyContext(a.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := a.startSession(ctx, sel, func(left, right string) {
		a.logger.Debug("now playing", "left", filepath.Base(left), "right", filepath.Base(right))
	})
	if err != nil {
		a.logger.Error("failed to start playback", "err", err)
		a.fail()
		return
	}
	if !a.adopt(s) {
		s.Close()
		return
	}

	if s.started {
		a.logger.Info("playing, press ctrl+c to stop")
	} else {
		a.logger.Warn("nothing to play, a folder has no clips; press ctrl+c to quit")
	}
	<-ctx.Done()
	a.stop()
}
