package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bitwise74/codedrop/internal/registry"
	"bitwise74/codedrop/pkg/validators"

	"go.uber.org/zap"
)

// onInline previews a code without delivering the file, so views stay as
// they are
func (h *Handler) onInline(ctx context.Context, ev Event) {
	results := h.inlineResults(ctx, ev)

	if err := h.sender.AnswerInline(ctx, ev.InlineQueryID, results); err != nil {
		zap.L().Warn("Failed to answer inline query", zap.String("query_id", ev.InlineQueryID), zap.Error(err))
	}
}

func (h *Handler) inlineResults(ctx context.Context, ev Event) []InlineResult {
	code := validators.NormalizeCode(ev.Query)
	if len(code) != h.cfg.CodeLength || validators.CodeValidator(code, h.cfg.CodeRules) != nil {
		return nil
	}

	if !h.d.Limiter.Allow(ev.From.ID) || !h.d.Gate.IsMember(ctx, ev.From.ID) {
		return nil
	}

	m, err := h.d.Registry.Lookup(ctx, code)
	if err != nil {
		if !errors.Is(err, registry.ErrNotFound) {
			zap.L().Error("Failed to look up media", zap.String("code", code), zap.Error(err))
		}
		return nil
	}

	var text strings.Builder
	fmt.Fprintf(&text, "🔑 Code: %s\n👁 Views: %d", m.Code, m.Views)
	if m.Caption != "" {
		text.WriteString("\n\n")
		text.WriteString(m.Caption)
	}

	desc := m.Caption
	if desc == "" {
		desc = fmt.Sprintf("%s, %d views", m.FileType, m.Views)
	}

	return []InlineResult{{
		ID:          m.Code,
		Title:       fmt.Sprintf("📁 %s", m.Code),
		Description: desc,
		Text:        text.String(),
	}}
}
