package bot

import (
	"context"

	"go.uber.org/zap"
)

func (h *Handler) start(ctx context.Context, ev Event) {
	if !h.d.Gate.IsMember(ctx, ev.From.ID) {
		h.askToSubscribe(ctx, ev.SessionID)
		return
	}

	h.reply(ctx, ev.SessionID, msgWelcome)
}

func (h *Handler) askToSubscribe(ctx context.Context, chatID int64) {
	var rows [][]Button
	if h.cfg.ChannelLink != "" {
		rows = append(rows, []Button{{Text: "📢 Join channel", URL: h.cfg.ChannelLink}})
	}
	rows = append(rows, []Button{{Text: "✅ I've joined", Action: actionSubCheck}})

	if err := h.sender.SendButtons(ctx, chatID, msgSubscribe, rows); err != nil {
		zap.L().Error("Failed to send subscribe prompt", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (h *Handler) checkSubscription(ctx context.Context, ev Event) {
	h.d.Gate.Forget(ev.From.ID)

	if !h.d.Gate.IsMember(ctx, ev.From.ID) {
		h.answer(ctx, ev.CallbackID, msgSubscribeStill, true)
		return
	}

	h.answer(ctx, ev.CallbackID, "", false)
	h.reply(ctx, ev.SessionID, msgSubscribeOK)
}
