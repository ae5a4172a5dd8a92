package bubbletea

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docchat"
	"docchat/markdown"
	"docchat/voice"
)

var _ tea.Model = Model{}

const (
	sidebarWidth  = 26
	minSplitWidth = 70 // below this the sidebar is hidden

	voiceCaptureTimeout = 30 * time.Second
)

const (
	inputPlaceholder  = "Ask about your document..."
	uploadPlaceholder = "Path to a PDF (globs ok)..."
)

// Config wires the model's collaborators.
type Config struct {
	Orchestrator *docchat.Orchestrator
	Events       <-chan docchat.Event
	Voice        *voice.Adapter
	Exporter     docchat.TranscriptRenderer
	ExportPath   string // defaults to chat.pdf in the working directory
	Theme        docchat.Theme
}

// Model is the Bubble Tea model for the docchat TUI.
type Model struct {
	// Input is the text input component. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable transcript area. Exported for test access.
	Viewport viewport.Model

	orch       *docchat.Orchestrator
	events     <-chan docchat.Event
	voice      *voice.Adapter
	exporter   docchat.TranscriptRenderer
	exportPath string
	styles     Styles
	md         *markdown.Renderer
	spinner    spinner.Model

	// Snapshots refreshed from the orchestrator on every event.
	session  docchat.Session
	archive  []docchat.Session
	reopened int // orchestrator's active archive index, -1 when fresh

	selected   int // sidebar cursor into archive
	busy       bool
	uploading  bool
	listening  bool
	uploadMode bool
	statusNote string
	err        error
	ready      bool
}

// New creates the TUI model. The orchestrator must have been constructed
// with the event handler from [NewEventChannel] feeding cfg.Events.
func New(cfg Config) Model {
	ti := textinput.New()
	ti.Placeholder = inputPlaceholder
	ti.Prompt = ""
	ti.Focus()
	ti.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	exportPath := cfg.ExportPath
	if exportPath == "" {
		exportPath = "chat.pdf"
	}

	m := Model{
		Input:      ti,
		orch:       cfg.Orchestrator,
		events:     cfg.Events,
		voice:      cfg.Voice,
		exporter:   cfg.Exporter,
		exportPath: exportPath,
		styles:     NewStyles(cfg.Theme),
		md:         markdown.New(cfg.Theme),
		spinner:    sp,
		reopened:   -1,
	}
	return m.refresh()
}

// Busy returns whether a remote answer is outstanding. Exported for tests.
func (m Model) Busy() bool { return m.busy }

// Err returns the last local error, if any. Exported for tests.
func (m Model) Err() error { return m.err }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, listenForEvent(m.events))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case EventMsg:
		m = m.handleEvent(msg.Event)
		return m, listenForEvent(m.events)

	case submitDoneMsg:
		return m, nil

	case uploadDoneMsg:
		m.uploading = false
		m.err = msg.Err
		m = m.refresh()
		return m, nil

	case voiceResultMsg:
		m.listening = false
		if msg.Text == "" {
			return m, nil
		}
		return m, m.submitCmd(msg.Text)

	case exportDoneMsg:
		m.err = msg.Err
		if msg.Err == nil {
			m.statusNote = "Transcript exported to " + msg.Path
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m.updateComponents(msg)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	main := strings.Join([]string{
		m.header(),
		m.Viewport.View(),
		m.statusLine(),
		m.Input.View(),
	}, "\n")

	if m.Viewport.Width+sidebarWidth < minSplitWidth {
		return main
	}
	sidebar := m.renderSidebar(lipgloss.Height(main))
	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, main)
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	mainWidth := msg.Width
	if msg.Width >= minSplitWidth {
		mainWidth = msg.Width - sidebarWidth
	}

	headerH, statusH, inputH := 1, 1, 1
	vpHeight := msg.Height - headerH - statusH - inputH - 2
	if vpHeight < 1 {
		vpHeight = 1
	}

	if !m.ready {
		m.Viewport = viewport.New(mainWidth, vpHeight)
		m.ready = true
	} else {
		m.Viewport.Width = mainWidth
		m.Viewport.Height = vpHeight
	}
	m.Input.Width = mainWidth

	m.Viewport.SetContent(m.renderTranscript())
	m.Viewport.GotoBottom()
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit

	case tea.KeyEsc:
		if m.uploadMode {
			m = m.exitUploadMode()
		}
		return m, nil

	case tea.KeyEnter:
		if m.uploadMode {
			path := strings.TrimSpace(m.Input.Value())
			m = m.exitUploadMode()
			if path == "" {
				return m, nil
			}
			m.uploading = true
			m.statusNote = ""
			return m, m.uploadCmd(path)
		}
		if m.busy || m.uploading {
			return m, nil
		}
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		m.Input.SetValue("")
		m.statusNote = ""
		m.err = nil
		return m, m.submitCmd(text)

	case tea.KeyCtrlN:
		m.orch.NewSession()
		return m, nil

	case tea.KeyCtrlU:
		if !m.uploadMode && !m.uploading {
			m.uploadMode = true
			m.Input.SetValue("")
			m.Input.Placeholder = uploadPlaceholder
		}
		return m, nil

	case tea.KeyCtrlE:
		if m.exporter != nil {
			return m, m.exportCmd()
		}
		return m, nil

	case tea.KeyCtrlV:
		if m.voice != nil && m.voice.Available() && !m.listening && !m.busy {
			m.listening = true
			return m, m.voiceCmd()
		}
		return m, nil

	case tea.KeyCtrlJ:
		if m.selected < len(m.archive)-1 {
			m.selected++
		}
		return m, nil

	case tea.KeyCtrlK:
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case tea.KeyCtrlO:
		if len(m.archive) > 0 {
			if err := m.orch.SwitchSession(m.selected); err != nil {
				m.err = err
			}
		}
		return m, nil
	}

	return m.updateComponents(msg)
}

// updateComponents forwards messages to the viewport and, when idle, the
// input. Character keys never reach the viewport so typing does not scroll.
func (m Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	if key, isKey := msg.(tea.KeyMsg); !isKey || key.Type != tea.KeyRunes {
		m.Viewport, cmd = m.Viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.Input, cmd = m.Input.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleEvent refreshes snapshots after an orchestrator state change.
func (m Model) handleEvent(e docchat.Event) Model {
	if busy, ok := e.(docchat.EventBusy); ok {
		m.busy = busy.Busy
		return m
	}
	m = m.refresh()
	if _, ok := e.(docchat.EventSessionChanged); ok {
		m.statusNote = ""
		m.err = nil
	}
	if !m.ready {
		return m
	}
	m.Viewport.SetContent(m.renderTranscript())
	m.Viewport.GotoBottom()
	return m
}

// refresh re-snapshots orchestrator state and clamps the sidebar cursor.
func (m Model) refresh() Model {
	m.session = m.orch.Active()
	m.archive = m.orch.Sessions()
	m.reopened = m.orch.ActiveIndex()
	if m.selected >= len(m.archive) {
		m.selected = len(m.archive) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
	return m
}

func (m Model) exitUploadMode() Model {
	m.uploadMode = false
	m.Input.SetValue("")
	m.Input.Placeholder = inputPlaceholder
	return m
}

func (m Model) submitCmd(text string) tea.Cmd {
	orch := m.orch
	return func() tea.Msg {
		orch.Submit(context.Background(), text)
		return submitDoneMsg{}
	}
}

func (m Model) uploadCmd(pattern string) tea.Cmd {
	orch := m.orch
	return func() tea.Msg {
		up, err := loadUpload(pattern)
		if err != nil {
			return uploadDoneMsg{Err: err}
		}
		// Validation and ingestion outcomes surface in the transcript.
		_, _ = orch.SubmitDocument(context.Background(), up)
		return uploadDoneMsg{}
	}
}

func (m Model) voiceCmd() tea.Cmd {
	v := m.voice
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), voiceCaptureTimeout)
		defer cancel()
		return voiceResultMsg{Text: v.Capture(ctx)}
	}
}

func (m Model) exportCmd() tea.Cmd {
	orch, exporter, path := m.orch, m.exporter, m.exportPath
	return func() tea.Msg {
		data, err := orch.Export(exporter)
		if err != nil {
			return exportDoneMsg{Err: err}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return exportDoneMsg{Err: err}
		}
		return exportDoneMsg{Path: path}
	}
}

func (m Model) header() string {
	doc := "No document bound"
	if m.session.Bound() {
		doc = m.session.DocumentLabel
	}
	return m.styles.Accent.Render("docchat") + " " + m.styles.Muted.Render(doc)
}

func (m Model) statusLine() string {
	switch {
	case m.err != nil:
		return m.styles.Error.Render(fmt.Sprintf("Error: %v", m.err))
	case m.uploading:
		return m.spinner.View() + " " + m.styles.Muted.Render("Uploading PDF...")
	case m.busy:
		return m.spinner.View() + " " + m.styles.Muted.Render("Thinking...")
	case m.listening:
		return m.styles.Accent.Render("Listening...")
	case m.uploadMode:
		return m.styles.Muted.Render("Enter to upload, Esc to cancel")
	case m.statusNote != "":
		return m.styles.Success.Render(m.statusNote)
	default:
		return m.styles.Muted.Render(m.helpText())
	}
}

func (m Model) helpText() string {
	help := "Enter send · ^U upload · ^N new chat · ^E export · ^C quit"
	if m.voice != nil && m.voice.Available() {
		help += " · ^V voice"
	}
	return help
}
