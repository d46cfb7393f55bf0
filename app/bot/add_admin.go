package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"bitwise74/codedrop/internal/admins"
	"bitwise74/codedrop/internal/conversation"

	"go.uber.org/zap"
)

func (h *Handler) addAdminCommand(ctx context.Context, ev Event) {
	if !h.isAdmin(ctx, ev.From.ID) {
		h.reply(ctx, ev.SessionID, msgNoPerm)
		return
	}

	if strings.TrimSpace(ev.Args) == "" {
		h.reply(ctx, ev.SessionID, msgAddAdminUsage)
		return
	}

	h.addAdmin(ctx, ev.SessionID, ev.From.ID, conversation.Input{Text: ev.Args})
}

func (h *Handler) askAdmin(ctx context.Context, ev Event) {
	h.d.Conversations.Await(ev.SessionID, conversation.Continuation{
		Name:   "add_admin",
		Expect: conversation.InputText,
		Handle: func(ctx context.Context, in conversation.Input) error {
			h.addAdmin(ctx, ev.SessionID, in.UserID, in)
			return nil
		},
	})

	h.reply(ctx, ev.SessionID, msgAskAdmin)
}

// addAdmin takes the id from a forwarded message first, then from the text
func (h *Handler) addAdmin(ctx context.Context, chatID, addedBy int64, in conversation.Input) {
	id := in.ForwardFromID
	if id == 0 {
		parsed, err := strconv.ParseInt(strings.TrimSpace(in.Text), 10, 64)
		if err != nil {
			h.reply(ctx, chatID, msgBadUserID)
			return
		}
		id = parsed
	}

	if err := h.d.Admins.Add(ctx, id, addedBy); err != nil {
		if errors.Is(err, admins.ErrInvalidID) {
			h.reply(ctx, chatID, msgBadUserID)
			return
		}

		h.fail(ctx, chatID, "Failed to add admin", err)
		return
	}

	zap.L().Info("Admin added", zap.Int64("user_id", id), zap.Int64("added_by", addedBy))
	h.reply(ctx, chatID, fmt.Sprintf(msgAdminAdded, id))
}
