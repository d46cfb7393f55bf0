package bot

import (
	"context"
	"fmt"

	"bitwise74/codedrop/internal/conversation"
	"bitwise74/codedrop/pkg/validators"

	"go.uber.org/zap"
)

func (h *Handler) deleteCommand(ctx context.Context, ev Event) {
	if !h.isAdmin(ctx, ev.From.ID) {
		h.reply(ctx, ev.SessionID, msgNoPerm)
		return
	}

	if validators.NormalizeCode(ev.Args) == "" {
		h.reply(ctx, ev.SessionID, msgDeleteUsage)
		return
	}

	h.deleteMedia(ctx, ev.SessionID, ev.From.ID, ev.Args)
}

func (h *Handler) askDelete(ctx context.Context, ev Event) {
	h.d.Conversations.Await(ev.SessionID, conversation.Continuation{
		Name:   "delete_code",
		Expect: conversation.InputText,
		Handle: func(ctx context.Context, in conversation.Input) error {
			h.deleteMedia(ctx, ev.SessionID, in.UserID, in.Text)
			return nil
		},
	})

	h.reply(ctx, ev.SessionID, msgAskDelete)
}

// deleteMedia reports whether a record was removed
func (h *Handler) deleteMedia(ctx context.Context, chatID, adminID int64, raw string) bool {
	code := validators.NormalizeCode(raw)
	if err := validators.CodeValidator(code, validators.CodeRules{}); err != nil {
		h.reply(ctx, chatID, h.codeHint(err))
		return false
	}

	n, err := h.d.Registry.Delete(ctx, code)
	if err != nil {
		h.fail(ctx, chatID, "Failed to delete media", err)
		return false
	}

	if n == 0 {
		h.reply(ctx, chatID, fmt.Sprintf(msgNotFoundCode, code), WithMarkdown())
		return false
	}

	zap.L().Info("Media deleted", zap.String("code", code), zap.Int64("admin_id", adminID))
	h.reply(ctx, chatID, fmt.Sprintf(msgDeleted, code), WithMarkdown())
	return true
}
