// Package bot turns classified platform events into registry, directory and
// admin operations
package bot

import (
	"context"
	"errors"
	"time"

	"bitwise74/codedrop/internal"
	"bitwise74/codedrop/internal/conversation"
	"bitwise74/codedrop/internal/metrics"
	"bitwise74/codedrop/internal/model"
	"bitwise74/codedrop/pkg/util"
	"bitwise74/codedrop/pkg/validators"

	"go.uber.org/zap"
)

type Config struct {
	// Public link shown on the subscribe button, may be empty
	ChannelLink string
	CodeLength  int
	CodeRules   validators.CodeRules
	ListLimit   int
	Retention   time.Duration
}

type Handler struct {
	cfg    Config
	d      *internal.Deps
	sender Sender
	gen    func() string
}

func New(cfg Config, d *internal.Deps, sender Sender) *Handler {
	if cfg.CodeLength <= 0 {
		cfg.CodeLength = 6
	}

	if cfg.CodeRules.Length > 0 {
		cfg.CodeLength = cfg.CodeRules.Length
	}

	if cfg.ListLimit <= 0 {
		cfg.ListLimit = 20
	}

	h := &Handler{cfg: cfg, d: d, sender: sender}
	h.gen = func() string {
		if h.cfg.CodeRules.DigitsOnly {
			return util.RandDigits(h.cfg.CodeLength)
		}
		return util.RandCode(h.cfg.CodeLength)
	}

	return h
}

// WithGenerator replaces the code generator
func (h *Handler) WithGenerator(gen func() string) *Handler {
	h.gen = gen
	return h
}

// Handle runs exactly one handler for ev. Errors never escape, they are
// logged and the user gets a generic reply.
func (h *Handler) Handle(ctx context.Context, ev Event) {
	metrics.UpdatesTotal.WithLabelValues(ev.Kind.String()).Inc()

	if ev.From.ID != 0 {
		h.touchUser(ctx, ev.From)
	}

	switch ev.Kind {
	case EventCommand:
		h.onCommand(ctx, ev)
	case EventFile:
		h.onFile(ctx, ev)
	case EventText:
		h.onText(ctx, ev)
	case EventButton:
		h.onButton(ctx, ev)
	case EventInline:
		h.onInline(ctx, ev)
	default:
		zap.L().Debug("Ignoring event", zap.Stringer("kind", ev.Kind))
	}
}

func (h *Handler) touchUser(ctx context.Context, u User) {
	err := h.d.Users.Upsert(ctx, model.User{
		UserID:    u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	})
	if err != nil {
		zap.L().Error("Failed to upsert user", zap.Int64("user_id", u.ID), zap.Error(err))
	}
}

// Commands never feed a pending step, they drop it instead
func (h *Handler) onCommand(ctx context.Context, ev Event) {
	switch ev.Command {
	case "cancel":
		h.cancel(ctx, ev)
		return
	case "auto":
		h.autoCommand(ctx, ev)
		return
	}

	h.d.Conversations.Cancel(ev.SessionID)

	switch ev.Command {
	case "start":
		h.start(ctx, ev)
	case "help":
		h.reply(ctx, ev.SessionID, msgHelp)
	case "admin":
		h.adminPanel(ctx, ev)
	case "delete", "del":
		h.deleteCommand(ctx, ev)
	case "list":
		h.listCommand(ctx, ev)
	case "top":
		h.topCommand(ctx, ev)
	case "addadmin":
		h.addAdminCommand(ctx, ev)
	default:
		h.reply(ctx, ev.SessionID, msgUnknownCmd)
	}
}

func (h *Handler) cancel(ctx context.Context, ev Event) {
	if h.d.Conversations.Cancel(ev.SessionID) {
		h.reply(ctx, ev.SessionID, msgCancelled)
		return
	}

	h.reply(ctx, ev.SessionID, msgNothingToStop)
}

// autoCommand is the typed form of the generate button
func (h *Handler) autoCommand(ctx context.Context, ev Event) {
	in := ev.input()
	in.Text = ""
	in.Action = actionGenerate

	err := h.d.Conversations.Dispatch(ctx, ev.SessionID, in)
	switch {
	case err == nil:
	case errors.Is(err, conversation.ErrNotAwaiting):
		h.reply(ctx, ev.SessionID, msgNoUpload)
	case errors.Is(err, conversation.ErrUnexpectedInput):
		h.reply(ctx, ev.SessionID, msgTextExpected)
	default:
		h.fail(ctx, ev.SessionID, "Step failed", err)
	}
}

func (h *Handler) onFile(ctx context.Context, ev Event) {
	err := h.d.Conversations.Dispatch(ctx, ev.SessionID, ev.input())
	switch {
	case err == nil:
	case errors.Is(err, conversation.ErrNotAwaiting):
		h.startUpload(ctx, ev)
	case errors.Is(err, conversation.ErrUnexpectedInput):
		h.reply(ctx, ev.SessionID, msgTextExpected)
	default:
		h.fail(ctx, ev.SessionID, "Step failed", err)
	}
}

func (h *Handler) onText(ctx context.Context, ev Event) {
	err := h.d.Conversations.Dispatch(ctx, ev.SessionID, ev.input())
	switch {
	case err == nil:
	case errors.Is(err, conversation.ErrNotAwaiting):
		h.retrieve(ctx, ev)
	case errors.Is(err, conversation.ErrUnexpectedInput):
		h.reply(ctx, ev.SessionID, msgTextExpected)
	default:
		h.fail(ctx, ev.SessionID, "Step failed", err)
	}
}

func (h *Handler) isAdmin(ctx context.Context, userID int64) bool {
	return h.d.Admins.IsAdmin(ctx, userID)
}

func (h *Handler) reply(ctx context.Context, chatID int64, text string, opts ...SendOption) {
	if err := h.sender.SendText(ctx, chatID, text, opts...); err != nil {
		zap.L().Error("Failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (h *Handler) fail(ctx context.Context, chatID int64, msg string, err error) {
	zap.L().Error(msg, zap.Int64("chat_id", chatID), zap.Error(err))
	h.reply(ctx, chatID, msgTryLater)
}
