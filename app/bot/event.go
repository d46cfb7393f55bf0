package bot

import "bitwise74/codedrop/internal/conversation"

type EventKind int

const (
	EventCommand EventKind = iota
	EventFile
	EventText
	EventButton
	EventInline
)

func (k EventKind) String() string {
	switch k {
	case EventCommand:
		return "command"
	case EventFile:
		return "file"
	case EventText:
		return "text"
	case EventButton:
		return "button"
	case EventInline:
		return "inline"
	}

	return "unknown"
}

type User struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

// Event is an inbound update already classified by the transport. Only the
// fields of its kind are set.
type Event struct {
	Kind EventKind
	// Chat the event belongs to. For inline queries it's the user id
	SessionID int64
	From      User
	MessageID int

	// EventCommand, without the slash
	Command string
	Args    string

	// EventText and EventCommand (raw text)
	Text string

	// EventFile
	File    *conversation.File
	Caption string

	ForwardFromID int64

	// EventButton
	CallbackID string
	ActionID   string

	// EventInline
	InlineQueryID string
	Query         string
}

func (e Event) input() conversation.Input {
	in := conversation.Input{
		UserID:        e.From.ID,
		MessageID:     e.MessageID,
		Text:          e.Text,
		Caption:       e.Caption,
		File:          e.File,
		ForwardFromID: e.ForwardFromID,
	}

	if e.Kind == EventButton {
		in.Text = ""
		in.Action = e.ActionID
	}

	return in
}
