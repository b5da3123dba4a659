// Package display provides the terminal UI using Bubble Tea.
//
// The [UI] type renders the language list, the dictation field, the
// current notice and a status bar. It implements the screen's text field
// and notifier: other goroutines push updates through Program.Send, so
// concurrent writes never garble the display.
package display

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/springbreak/internal/domain"
)

// Compile-time interface checks.
var (
	_ domain.TextField = (*UI)(nil)
	_ domain.Notifier  = (*UI)(nil)
)

// NoticeDuration is how long a notice stays on screen.
const NoticeDuration = 3500 * time.Millisecond

// ── Styles ───────────────────────────────────────────────────────

var (
	barBg = lipgloss.NewStyle().
		Background(lipgloss.Color("#27272a")).
		Foreground(lipgloss.Color("#a1a1aa"))

	barOnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0"))

	barOffStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a")).
			Italic(true)

	sepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#52525b"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	// ── Output styles (soft palette) ──

	// BannerStyle is muted slate for the startup banner.
	BannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bae6fd"))

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fde68a"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0")).
			Bold(true)

	primaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8"))

	secondaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bae6fd"))

	urgentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5"))
)

// ── UI ───────────────────────────────────────────────────────────

// Hooks are the screen actions the UI triggers. Each runs on a Bubble Tea
// command goroutine, never inside Update; nil hooks are skipped.
type Hooks struct {
	Tap        func(index int)
	Shake      func() // simulated shake; nil hides the key
	Foreground func()
	Background func()
}

// UI manages the terminal through Bubble Tea.
//
// Call [NewUI] then [UI.Run] (blocking). Other goroutines may call
// [UI.SetText], [UI.Notify], [UI.SetStatus] and [UI.Printf] once
// [UI.WaitReady] returns.
type UI struct {
	options []string
	hooks   Hooks
	program *tea.Program
	readyCh chan struct{}
	quitCh  chan struct{}
	done    atomic.Bool
}

// NewUI creates the display for the given list labels. Call Run() to start.
func NewUI(options []string, hooks Hooks) *UI {
	return &UI{
		options: options,
		hooks:   hooks,
		readyCh: make(chan struct{}),
		quitCh:  make(chan struct{}),
	}
}

// SetText replaces the dictation field's content.
func (u *UI) SetText(text string) { u.send(textMsg(text)) }

// Notify shows a notice under the field.
func (u *UI) Notify(ctx context.Context, message string) error {
	u.send(noticeMsg{text: message})
	return nil
}

// NotifyUrgent shows a notice in the alert colour.
func (u *UI) NotifyUrgent(ctx context.Context, message string) error {
	u.send(noticeMsg{text: message, urgent: true})
	return nil
}

// SetStatus updates the status bar.
func (u *UI) SetStatus(st domain.ScreenStatus) { u.send(statusMsg(st)) }

// Printf prints formatted text above the screen. Thread-safe.
// If the program hasn't started yet, falls back to fmt.Printf.
func (u *UI) Printf(format string, a ...any) {
	if u.program != nil && !u.done.Load() {
		u.program.Printf(format, a...)
	} else {
		fmt.Printf(format, a...)
	}
}

// WaitReady blocks until the Bubble Tea event loop is running.
func (u *UI) WaitReady() { <-u.readyCh }

// Quit tells Bubble Tea to exit. Called before the program is ready, it
// waits for it; called after Run has returned, it does nothing.
func (u *UI) Quit() {
	select {
	case <-u.readyCh:
		u.program.Quit()
	case <-u.quitCh:
	}
}

// QuitChan is closed when Run returns.
func (u *UI) QuitChan() <-chan struct{} { return u.quitCh }

// Run starts the Bubble Tea event loop. Blocks until quit.
func (u *UI) Run() error {
	u.program = tea.NewProgram(newModel(u.options, u.hooks, u.readyCh), tea.WithReportFocus())
	_, err := u.program.Run()
	u.done.Store(true)
	close(u.quitCh)
	return err
}

func (u *UI) send(msg tea.Msg) {
	if u.program == nil || u.done.Load() {
		return
	}
	u.program.Send(msg)
}

// ── Bubble Tea model ─────────────────────────────────────────────

type (
	textMsg   string
	statusMsg domain.ScreenStatus
	noticeMsg struct {
		text   string
		urgent bool
	}
	clearNoticeMsg int
)

type model struct {
	options []string
	hooks   Hooks
	readyCh chan struct{}

	cursor  int
	input   textinput.Model
	editing bool

	notice    string
	urgent    bool
	noticeSeq int

	status domain.ScreenStatus
	width  int
}

func newModel(options []string, hooks Hooks, readyCh chan struct{}) model {
	ti := textinput.New()
	// Plain-text prompt keeps textinput's width math correct.
	ti.Prompt = "text> "
	ti.PromptStyle = promptStyle
	ti.TextStyle = primaryStyle
	ti.Placeholder = "pick a language to dictate"
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8"))
	ti.CharLimit = 500
	ti.Width = 60 // updated on first WindowSizeMsg

	return model{
		options: options,
		hooks:   hooks,
		readyCh: readyCh,
		input:   ti,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("Spring Break"),
		signalReady(m.readyCh),
	)
}

func signalReady(ch chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if ch != nil {
			close(ch)
		}
		return nil
	}
}

// run wraps a hook so it executes outside Update.
func run(fn func()) tea.Cmd {
	if fn == nil {
		return nil
	}
	return func() tea.Msg {
		fn()
		return nil
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.updateList(msg)

	case tea.FocusMsg:
		return m, run(m.hooks.Foreground)

	case tea.BlurMsg:
		return m, run(m.hooks.Background)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		const promptLen = 6 // "text> "
		if msg.Width > promptLen+2 {
			m.input.Width = msg.Width - promptLen - 2
		}
		return m, nil

	case textMsg:
		m.input.SetValue(string(msg))
		m.input.CursorEnd()
		return m, nil

	case noticeMsg:
		m.noticeSeq++
		m.notice, m.urgent = msg.text, msg.urgent
		seq := m.noticeSeq
		return m, tea.Tick(NoticeDuration, func(time.Time) tea.Msg {
			return clearNoticeMsg(seq)
		})

	case clearNoticeMsg:
		if int(msg) == m.noticeSeq {
			m.notice, m.urgent = "", false
		}
		return m, nil

	case statusMsg:
		m.status = domain.ScreenStatus(msg)
		return m, tea.SetWindowTitle(m.titleStr())
	}

	if m.editing {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.options) == 0 || m.hooks.Tap == nil {
			return m, nil
		}
		idx, tap := m.cursor, m.hooks.Tap
		return m, run(func() { tap(idx) })
	case "tab", "e":
		m.editing = true
		cmd := m.input.Focus()
		return m, cmd
	case "s":
		return m, run(m.hooks.Shake)
	case "p":
		if m.status.Stage == domain.StageResumed {
			return m, run(m.hooks.Background)
		}
		return m, run(m.hooks.Foreground)
	}
	return m, nil
}

func (m model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyTab, tea.KeyEsc, tea.KeyEnter:
		m.editing = false
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) titleStr() string {
	if d := m.status.Destination; d != nil {
		return "Spring Break · " + d.String()
	}
	return "Spring Break"
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("  Pick a language, then shake to travel"))
	b.WriteString("\n\n")

	for i, opt := range m.options {
		pointer := "   "
		if i == m.cursor && !m.editing {
			pointer = cursorStyle.Render(" › ")
		}
		label := primaryStyle.Render(opt)
		if opt == m.status.Selected {
			label = selectedStyle.Render(opt + " ✓")
		}
		b.WriteString(pointer + label + "\n")
	}

	b.WriteByte('\n')
	b.WriteString("  " + m.input.View())
	b.WriteString("\n\n")

	switch {
	case m.notice == "":
		b.WriteString("\n")
	case m.urgent:
		b.WriteString(urgentStyle.Render("  "+m.notice) + "\n")
	default:
		b.WriteString(noticeStyle.Render("  "+m.notice) + "\n")
	}

	b.WriteByte('\n')
	b.WriteString(m.renderBar())
	b.WriteByte('\n')
	b.WriteString(secondaryStyle.Render("  " + m.helpStr()))
	return b.String()
}

func (m model) renderBar() string {
	st := m.status
	parts := []string{st.Stage.String()}

	if st.Selected != "" {
		parts = append(parts, barOnStyle.Render(st.Selected))
	} else {
		parts = append(parts, barOffStyle.Render("no language"))
	}
	if st.Subscribed {
		parts = append(parts, barOnStyle.Render("sensor on"))
	} else {
		parts = append(parts, barOffStyle.Render("sensor off"))
	}
	if st.Listening {
		parts = append(parts, barOnStyle.Render("listening"))
	}
	if st.Destination != nil {
		parts = append(parts, "last trip "+st.Destination.String())
	}

	content := " " + strings.Join(parts, sepStyle.Render("  │  ")) + " "

	w := m.width
	if w <= 0 {
		w = 80
	}
	return barBg.Width(w).Render(content)
}

func (m model) helpStr() string {
	if m.editing {
		return "type to edit · tab/esc/enter done · ctrl+c quit"
	}
	keys := []string{"↑/↓ move", "enter select", "tab edit"}
	if m.hooks.Shake != nil {
		keys = append(keys, "s shake")
	}
	keys = append(keys, "p pause", "q quit")
	return strings.Join(keys, " · ")
}
