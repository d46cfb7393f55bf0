package bot

import (
	"context"
	"fmt"
	"strings"

	"bitwise74/codedrop/internal/model"
)

type counts struct {
	files  int64
	users  int64
	admins int
}

func (h *Handler) counts(ctx context.Context) (counts, error) {
	var c counts
	var err error

	if c.files, err = h.d.Registry.Count(ctx); err != nil {
		return c, err
	}

	if c.users, err = h.d.Users.Count(ctx); err != nil {
		return c, err
	}

	ids, err := h.d.Admins.List(ctx)
	if err != nil {
		return c, err
	}
	c.admins = len(ids)

	return c, nil
}

func (h *Handler) adminPanel(ctx context.Context, ev Event) {
	if !h.isAdmin(ctx, ev.From.ID) {
		h.reply(ctx, ev.SessionID, msgNoPerm)
		return
	}

	c, err := h.counts(ctx)
	if err != nil {
		h.fail(ctx, ev.SessionID, "Failed to load admin panel", err)
		return
	}

	text := fmt.Sprintf(msgAdminPanel, c.files, c.users, c.admins)
	rows := [][]Button{
		{{Text: "📊 Stats", Action: actionAdminStats}, {Text: "🔥 Top", Action: actionAdminTop}},
		{{Text: "🗂 Recent files", Action: actionAdminList}, {Text: "📣 Broadcast", Action: actionAdminBroadcast}},
		{{Text: "👮 Add admin", Action: actionAdminAdd}, {Text: "🗑 Delete file", Action: actionAdminDelete}},
	}

	if err := h.sender.SendButtons(ctx, ev.SessionID, text, rows); err != nil {
		h.fail(ctx, ev.SessionID, "Failed to send admin panel", err)
	}
}

func (h *Handler) stats(ctx context.Context, ev Event) {
	c, err := h.counts(ctx)
	if err != nil {
		h.fail(ctx, ev.SessionID, "Failed to load stats", err)
		return
	}

	retention := "off"
	if h.cfg.Retention > 0 {
		retention = h.cfg.Retention.String()
	}

	text := fmt.Sprintf(msgStats, c.files, c.users, c.admins, retention)
	if ev.MessageID != 0 {
		if err := h.sender.EditText(ctx, ev.SessionID, ev.MessageID, text); err == nil {
			return
		}
	}

	h.reply(ctx, ev.SessionID, text)
}

func (h *Handler) listCommand(ctx context.Context, ev Event) {
	if !h.isAdmin(ctx, ev.From.ID) {
		h.reply(ctx, ev.SessionID, msgNoPerm)
		return
	}

	h.sendList(ctx, ev.SessionID, false)
}

func (h *Handler) topCommand(ctx context.Context, ev Event) {
	if !h.isAdmin(ctx, ev.From.ID) {
		h.reply(ctx, ev.SessionID, msgNoPerm)
		return
	}

	h.sendList(ctx, ev.SessionID, true)
}

func (h *Handler) sendList(ctx context.Context, chatID int64, top bool) {
	var (
		items  []model.Media
		err    error
		header = msgListHeader
	)

	if top {
		header = msgTopHeader
		items, err = h.d.Registry.TopByViews(ctx, h.cfg.ListLimit)
	} else {
		items, err = h.d.Registry.ListRecent(ctx, h.cfg.ListLimit)
	}
	if err != nil {
		h.fail(ctx, chatID, "Failed to list media", err)
		return
	}

	if len(items) == 0 {
		h.reply(ctx, chatID, msgEmptyList)
		return
	}

	h.reply(ctx, chatID, header+formatList(items))
}

func formatList(items []model.Media) string {
	var b strings.Builder

	for i, m := range items {
		name := m.FileName
		if name == "" {
			name = string(m.FileType)
		}

		fmt.Fprintf(&b, "%d. %s | %s | 👁 %d\n", i+1, m.Code, name, m.Views)
	}

	return strings.TrimSuffix(b.String(), "\n")
}
