package bot

import (
	"context"
	"errors"
	"fmt"

	"bitwise74/codedrop/internal/conversation"
	"bitwise74/codedrop/internal/metrics"
	"bitwise74/codedrop/internal/model"
	"bitwise74/codedrop/internal/registry"
	"bitwise74/codedrop/pkg/validators"

	"go.uber.org/zap"
)

const maxGenerateAttempts = 5

// pendingUpload is everything captured from the uploaded message while the
// admin picks a code
type pendingUpload struct {
	ownerID  int64
	fileID   string
	kind     model.MediaKind
	format   string
	fileName string
	caption  string
}

func (p pendingUpload) input(code string) registry.MediaInput {
	return registry.MediaInput{
		Code:     code,
		OwnerID:  p.ownerID,
		FileID:   p.fileID,
		FileType: p.kind,
		Format:   p.format,
		FileName: p.fileName,
		Caption:  p.caption,
	}
}

func (h *Handler) startUpload(ctx context.Context, ev Event) {
	if ev.File == nil {
		return
	}

	if !h.isAdmin(ctx, ev.From.ID) {
		h.reply(ctx, ev.SessionID, msgUploadAdmins)
		return
	}

	kind := ev.File.Kind
	if !kind.Valid() {
		zap.L().Warn("Unsupported upload kind", zap.String("kind", string(kind)))
		return
	}

	p := pendingUpload{
		ownerID:  ev.From.ID,
		fileID:   ev.File.ID,
		kind:     kind,
		format:   model.DeriveFormat(kind, ev.File.MimeType, ev.File.Name),
		fileName: ev.File.Name,
		caption:  ev.Caption,
	}

	h.promptCode(ctx, ev.SessionID, p, msgAskCode)
}

// promptCode (re-)arms the second wizard step
func (h *Handler) promptCode(ctx context.Context, chatID int64, p pendingUpload, text string) {
	h.d.Conversations.Await(chatID, conversation.Continuation{
		Name:   "upload_code",
		Expect: conversation.InputText | conversation.InputAction,
		Handle: func(ctx context.Context, in conversation.Input) error {
			return h.finishUpload(ctx, chatID, p, in)
		},
	})

	err := h.sender.SendButtons(ctx, chatID, text, [][]Button{{
		{Text: "🎲 Generate", Action: actionGenerate},
		{Text: "✖️ Cancel", Action: actionWizardCancel},
	}})
	if err != nil {
		zap.L().Error("Failed to send code prompt", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (h *Handler) finishUpload(ctx context.Context, chatID int64, p pendingUpload, in conversation.Input) error {
	switch in.Action {
	case actionWizardCancel:
		h.reply(ctx, chatID, msgCancelled)
		return nil
	case actionGenerate:
		return h.registerGenerated(ctx, chatID, p)
	case "":
	default:
		h.promptCode(ctx, chatID, p, msgAskCode)
		return nil
	}

	code := validators.NormalizeCode(in.Text)
	if err := validators.CodeValidator(code, h.cfg.CodeRules); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		h.promptCode(ctx, chatID, p, h.codeHint(err))
		return nil
	}

	m, err := h.d.Registry.Register(ctx, p.input(code))
	if err != nil {
		if errors.Is(err, registry.ErrCodeCollision) {
			metrics.RegistrationsTotal.WithLabelValues("collision").Inc()
			h.promptCode(ctx, chatID, p, msgCodeTaken)
			return nil
		}

		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return err
	}

	h.saved(ctx, chatID, m)
	return nil
}

func (h *Handler) registerGenerated(ctx context.Context, chatID int64, p pendingUpload) error {
	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		m, err := h.d.Registry.Register(ctx, p.input(h.gen()))
		if err == nil {
			h.saved(ctx, chatID, m)
			return nil
		}

		if !errors.Is(err, registry.ErrCodeCollision) {
			metrics.RegistrationsTotal.WithLabelValues("error").Inc()
			return err
		}

		metrics.RegistrationsTotal.WithLabelValues("collision").Inc()
	}

	h.promptCode(ctx, chatID, p, msgAutoFailed)
	return nil
}

func (h *Handler) saved(ctx context.Context, chatID int64, m *model.Media) {
	metrics.RegistrationsTotal.WithLabelValues("ok").Inc()
	zap.L().Info("Media registered",
		zap.String("code", m.Code),
		zap.String("type", string(m.FileType)),
		zap.Int64("owner_id", m.OwnerID),
	)

	h.reply(ctx, chatID, fmt.Sprintf(msgSaved, m.Code), WithMarkdown())
}

func (h *Handler) codeHint(err error) string {
	switch {
	case errors.Is(err, validators.ErrCodeEmpty):
		return msgCodeEmpty
	case errors.Is(err, validators.ErrCodeTooLong):
		return msgCodeTooLong
	case errors.Is(err, validators.ErrCodeDigits):
		return msgCodeDigits
	case errors.Is(err, validators.ErrCodeLength):
		return fmt.Sprintf(msgCodeLength, h.cfg.CodeRules.Length)
	}

	return msgCodeInvalid
}
