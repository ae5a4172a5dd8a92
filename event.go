package docchat

// Event is a sealed interface representing an orchestrator state change.
// Events are purely notificational: handlers read fresh state through the
// orchestrator's accessors. The unexported marker method prevents external
// implementations.
type Event interface {
	event()
}

// EventMessage signals that a message was appended to the active session.
type EventMessage struct {
	Message Message
}

func (EventMessage) event() {}

// EventBusy signals a change of the busy flag: true while a remote answer
// is outstanding for the active session.
type EventBusy struct {
	Busy bool
}

func (EventBusy) event() {}

// EventDocumentBound signals that an upload bound a document to the active
// session.
type EventDocumentBound struct {
	Binding Binding
}

func (EventDocumentBound) event() {}

// EventSessionChanged signals that the active session was replaced wholesale
// (new session, switch, or history load).
type EventSessionChanged struct{}

func (EventSessionChanged) event() {}

// Interface compliance checks.
var (
	_ Event = EventMessage{}
	_ Event = EventBusy{}
	_ Event = EventDocumentBound{}
	_ Event = EventSessionChanged{}
)
