package bot

import (
	"context"
	"errors"
	"strings"

	"bitwise74/codedrop/internal/conversation"

	"go.uber.org/zap"
)

// onButton answers every callback exactly once, the client keeps a spinner
// on the button until then
func (h *Handler) onButton(ctx context.Context, ev Event) {
	switch {
	case ev.ActionID == actionSubCheck:
		h.checkSubscription(ctx, ev)
	case strings.HasPrefix(ev.ActionID, "wizard:"):
		h.wizardButton(ctx, ev)
	case strings.HasPrefix(ev.ActionID, "admin:"), strings.HasPrefix(ev.ActionID, actionDeleteMedia):
		if !h.isAdmin(ctx, ev.From.ID) {
			h.answer(ctx, ev.CallbackID, msgNoPermAlert, true)
			return
		}
		h.adminButton(ctx, ev)
	default:
		zap.L().Debug("Unknown button", zap.String("action", ev.ActionID))
		h.answer(ctx, ev.CallbackID, "", false)
	}
}

func (h *Handler) wizardButton(ctx context.Context, ev Event) {
	err := h.d.Conversations.Dispatch(ctx, ev.SessionID, ev.input())
	switch {
	case err == nil:
		h.answer(ctx, ev.CallbackID, "", false)
	case errors.Is(err, conversation.ErrNotAwaiting), errors.Is(err, conversation.ErrUnexpectedInput):
		h.answer(ctx, ev.CallbackID, msgExpired, false)
	default:
		h.answer(ctx, ev.CallbackID, "", false)
		h.fail(ctx, ev.SessionID, "Step failed", err)
	}
}

func (h *Handler) adminButton(ctx context.Context, ev Event) {
	if code, ok := strings.CutPrefix(ev.ActionID, actionDeleteMedia); ok {
		msg := ""
		if h.deleteMedia(ctx, ev.SessionID, ev.From.ID, code) {
			msg = msgDeleteAlert
		}
		h.answer(ctx, ev.CallbackID, msg, false)
		return
	}

	if ev.ActionID == actionAdminStop {
		h.stopBroadcast(ctx, ev)
		return
	}

	h.answer(ctx, ev.CallbackID, "", false)

	// A new panel action replaces whatever step was pending
	h.d.Conversations.Cancel(ev.SessionID)

	switch ev.ActionID {
	case actionAdminStats:
		h.stats(ctx, ev)
	case actionAdminTop:
		h.sendList(ctx, ev.SessionID, true)
	case actionAdminList:
		h.sendList(ctx, ev.SessionID, false)
	case actionAdminBroadcast:
		h.askBroadcast(ctx, ev)
	case actionAdminAdd:
		h.askAdmin(ctx, ev)
	case actionAdminDelete:
		h.askDelete(ctx, ev)
	default:
		zap.L().Debug("Unknown admin button", zap.String("action", ev.ActionID))
	}
}

func (h *Handler) answer(ctx context.Context, callbackID, text string, alert bool) {
	if callbackID == "" {
		return
	}

	if err := h.sender.AnswerCallback(ctx, callbackID, text, alert); err != nil {
		zap.L().Warn("Failed to answer callback", zap.String("callback_id", callbackID), zap.Error(err))
	}
}
