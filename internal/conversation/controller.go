// Package conversation implements multi-step chats: a session can have one
// pending continuation that consumes the next message it sends.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"bitwise74/codedrop/internal/model"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

var (
	ErrNotAwaiting     = errors.New("session is not awaiting input")
	ErrUnexpectedInput = errors.New("input kind doesn't match what the session awaits")
)

// InputKind is a bit set so a continuation can accept more than one kind
type InputKind uint8

const (
	InputText InputKind = 1 << iota
	InputFile
	// A button press routed back to the session
	InputAction

	InputAny InputKind = 0
)

func (k InputKind) String() string {
	if k == InputAny {
		return "any"
	}

	var parts []string
	if k&InputText != 0 {
		parts = append(parts, "text")
	}
	if k&InputFile != 0 {
		parts = append(parts, "file")
	}
	if k&InputAction != 0 {
		parts = append(parts, "action")
	}

	return strings.Join(parts, "|")
}

type File struct {
	ID       string
	Kind     model.MediaKind
	Name     string
	MimeType string
}

type Input struct {
	UserID    int64
	MessageID int
	Text      string
	Caption   string
	File      *File
	// Button action id, set instead of Text for button presses
	Action string
	// Set when the message was forwarded from a user who allows it
	ForwardFromID int64
}

func (in Input) Kind() InputKind {
	if in.File != nil {
		return InputFile
	}

	if in.Action != "" {
		return InputAction
	}

	return InputText
}

type Handler func(ctx context.Context, in Input) error

type Continuation struct {
	// Name shows up in logs only
	Name   string
	Expect InputKind
	Handle Handler
}

// Controller holds at most one continuation per session. Entries expire after
// ttl and the least recently armed ones are evicted past size, so abandoned
// wizards don't pile up.
type Controller struct {
	mu      sync.Mutex
	pending *expirable.LRU[int64, Continuation]
}

func New(size int, ttl time.Duration) *Controller {
	return &Controller{
		pending: expirable.NewLRU[int64, Continuation](size, nil, ttl),
	}
}

// Await arms c for the session, silently replacing whatever was there
func (c *Controller) Await(sessionID int64, cont Continuation) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending.Add(sessionID, cont)
}

// Dispatch hands in to the pending continuation of the session. The
// continuation is gone once its handler runs, even if it fails, but a handler
// may arm a new one. An input of the wrong kind leaves it armed.
func (c *Controller) Dispatch(ctx context.Context, sessionID int64, in Input) error {
	c.mu.Lock()

	cont, ok := c.pending.Peek(sessionID)
	if !ok {
		c.mu.Unlock()
		return ErrNotAwaiting
	}

	if cont.Expect != InputAny && cont.Expect&in.Kind() == 0 {
		c.mu.Unlock()
		return fmt.Errorf("%w, want %s got %s", ErrUnexpectedInput, cont.Expect, in.Kind())
	}

	c.pending.Remove(sessionID)
	c.mu.Unlock()

	if cont.Handle == nil {
		return nil
	}

	if err := cont.Handle(ctx, in); err != nil {
		return fmt.Errorf("continuation %s failed, %w", cont.Name, err)
	}

	return nil
}

// Cancel drops the pending continuation and reports whether there was one
func (c *Controller) Cancel(sessionID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.pending.Remove(sessionID)
}

// Pending returns the name of the armed continuation, if any
func (c *Controller) Pending(sessionID int64) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cont, ok := c.pending.Peek(sessionID)
	return cont.Name, ok
}

func (c *Controller) Len() int {
	return c.pending.Len()
}
