// Package bubbletea provides the Bubble Tea TUI for docchat: a session
// sidebar, a scrollable transcript, and a single-line input that doubles as
// the upload path prompt.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"docchat"
)

// Run creates and runs the Bubble Tea program. It blocks until the program
// exits. The context is used for graceful shutdown — when cancelled, the
// program quits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// NewEventChannel returns a buffered event channel and the handler to pass
// to docchat.WithEventHandler. The handler never blocks; if the UI falls
// behind, events are dropped and the next snapshot refresh catches up.
func NewEventChannel() (chan docchat.Event, func(docchat.Event)) {
	ch := make(chan docchat.Event, 256)
	return ch, func(e docchat.Event) {
		select {
		case ch <- e:
		default:
		}
	}
}

// EventMsg wraps an orchestrator event for delivery to the model.
type EventMsg struct {
	Event docchat.Event
}

// submitDoneMsg signals that a Submit call has returned.
type submitDoneMsg struct{}

// uploadDoneMsg signals that an upload attempt finished. Err carries only
// local failures (path resolution, file read); validation and ingestion
// outcomes surface as transcript messages instead.
type uploadDoneMsg struct {
	Err error
}

// voiceResultMsg carries a captured utterance; empty means nothing was
// recognized or recognition failed silently.
type voiceResultMsg struct {
	Text string
}

// exportDoneMsg signals transcript export completion.
type exportDoneMsg struct {
	Path string
	Err  error
}

// listenForEvent waits for the next orchestrator event.
func listenForEvent(ch <-chan docchat.Event) tea.Cmd {
	return func() tea.Msg {
		return EventMsg{Event: <-ch}
	}
}
