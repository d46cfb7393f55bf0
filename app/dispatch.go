package app

import (
	"context"

	"bitwise74/codedrop/app/bot"
	"bitwise74/codedrop/internal/service"
	"bitwise74/codedrop/telegram"

	"go.uber.org/zap"
)

// Dispatcher queues every event for h on q, keyed by chat so one chat's
// updates are handled in order
func Dispatcher(q *service.UpdateQueue, h *bot.Handler) telegram.Sink {
	return func(ctx context.Context, ev bot.Event) {
		err := q.Enqueue(ctx, service.Job{
			SessionID: ev.SessionID,
			Run:       func(ctx context.Context) { h.Handle(ctx, ev) },
		})
		if err != nil {
			zap.L().Warn("Dropping update", zap.Int64("session_id", ev.SessionID), zap.Stringer("kind", ev.Kind), zap.Error(err))
		}
	}
}
