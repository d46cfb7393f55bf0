package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bitwise74/codedrop/internal/metrics"
	"bitwise74/codedrop/internal/model"
	"bitwise74/codedrop/internal/registry"
	"bitwise74/codedrop/pkg/validators"

	"go.uber.org/zap"
)

// retrieve treats ev.Text as a code. The view counter only moves after the
// file was actually delivered.
func (h *Handler) retrieve(ctx context.Context, ev Event) {
	code := validators.NormalizeCode(ev.Text)
	if err := validators.CodeValidator(code, validators.CodeRules{}); err != nil {
		metrics.RetrievalsTotal.WithLabelValues("invalid").Inc()
		h.reply(ctx, ev.SessionID, msgNotFound)
		return
	}

	if !h.d.Limiter.Allow(ev.From.ID) {
		metrics.RetrievalsTotal.WithLabelValues("rate_limited").Inc()
		h.reply(ctx, ev.SessionID, msgRateLimited)
		return
	}

	if !h.d.Gate.IsMember(ctx, ev.From.ID) {
		metrics.RetrievalsTotal.WithLabelValues("gated").Inc()
		h.askToSubscribe(ctx, ev.SessionID)
		return
	}

	m, err := h.d.Registry.Lookup(ctx, code)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			metrics.RetrievalsTotal.WithLabelValues("not_found").Inc()
			h.reply(ctx, ev.SessionID, msgNotFound)
			return
		}

		metrics.RetrievalsTotal.WithLabelValues("error").Inc()
		h.fail(ctx, ev.SessionID, "Failed to look up media", err)
		return
	}

	var opts []SendOption
	if h.isAdmin(ctx, ev.From.ID) {
		opts = append(opts, WithButtons([]Button{{Text: "🗑 Delete", Action: actionDeleteMedia + m.Code}}))
	}

	err = h.sender.SendFile(ctx, ev.SessionID, m.FileID, m.FileType, formatCaption(m, m.Views+1), opts...)
	if err != nil {
		metrics.RetrievalsTotal.WithLabelValues("error").Inc()
		h.fail(ctx, ev.SessionID, "Failed to send media", err)
		return
	}

	metrics.RetrievalsTotal.WithLabelValues("delivered").Inc()

	// The record may have been deleted in between, the user got the file anyway
	if err := h.d.Registry.IncrementView(ctx, m.Code); err != nil && !errors.Is(err, registry.ErrNotFound) {
		zap.L().Error("Failed to count view", zap.String("code", m.Code), zap.Error(err))
	}
}

func formatCaption(m *model.Media, views int64) string {
	var b strings.Builder

	if m.Caption != "" {
		b.WriteString(m.Caption)
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "🔑 %s\n👁 %d", m.Code, views)
	return b.String()
}
