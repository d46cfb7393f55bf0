package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bitwise74/codedrop/internal/conversation"
	"bitwise74/codedrop/internal/service"

	"go.uber.org/zap"
)

func (h *Handler) askBroadcast(ctx context.Context, ev Event) {
	if h.d.Broadcaster.Running() {
		h.reply(ctx, ev.SessionID, msgBroadcastRunning, WithButtons(stopBroadcastRow()))
		return
	}

	h.d.Conversations.Await(ev.SessionID, conversation.Continuation{
		Name:   "broadcast_text",
		Expect: conversation.InputText,
		Handle: func(ctx context.Context, in conversation.Input) error {
			return h.broadcast(ctx, ev.SessionID, in.Text)
		},
	})

	h.reply(ctx, ev.SessionID, msgAskBroadcast)
}

// broadcast starts sending in the background and reports back to chatID once
// done. ctx must outlive the update, cancelling it stops the broadcast.
func (h *Handler) broadcast(ctx context.Context, chatID int64, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		h.reply(ctx, chatID, msgBroadcastEmpty)
		return nil
	}

	ids, err := h.d.Users.AllUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to load recipients, %w", err)
	}

	err = h.d.Broadcaster.Start(ctx, ids, text, func(res service.BroadcastResult) {
		msg := msgBroadcastDone
		if res.Cancelled {
			msg = msgBroadcastStopped
		}

		// ctx may be gone by now
		h.reply(context.WithoutCancel(ctx), chatID, fmt.Sprintf(msg, res.Sent, res.Failed))
	})
	if err != nil {
		if errors.Is(err, service.ErrBroadcastRunning) {
			h.reply(ctx, chatID, msgBroadcastRunning)
			return nil
		}

		return err
	}

	zap.L().Info("Broadcast started", zap.Int("recipients", len(ids)), zap.Int64("chat_id", chatID))
	h.reply(ctx, chatID, fmt.Sprintf(msgBroadcastStarted, len(ids)), WithButtons(stopBroadcastRow()))
	return nil
}

func (h *Handler) stopBroadcast(ctx context.Context, ev Event) {
	if !h.d.Broadcaster.Cancel() {
		h.answer(ctx, ev.CallbackID, msgNoBroadcast, false)
		return
	}

	h.answer(ctx, ev.CallbackID, msgBroadcastCancel, false)
}

func stopBroadcastRow() []Button {
	return []Button{{Text: "⏹ Stop", Action: actionAdminStop}}
}
