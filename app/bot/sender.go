package bot

import (
	"context"

	"bitwise74/codedrop/internal/model"
)

// Button is either a callback button (Action) or a link (URL)
type Button struct {
	Text   string
	Action string
	URL    string
}

type SendOptions struct {
	Markdown bool
	ReplyTo  int
	Buttons  [][]Button
}

type SendOption func(*SendOptions)

func WithMarkdown() SendOption {
	return func(o *SendOptions) { o.Markdown = true }
}

func WithReplyTo(messageID int) SendOption {
	return func(o *SendOptions) { o.ReplyTo = messageID }
}

func WithButtons(rows ...[]Button) SendOption {
	return func(o *SendOptions) { o.Buttons = append(o.Buttons, rows...) }
}

// ApplyOptions folds opts into a SendOptions, for Sender implementations
func ApplyOptions(opts []SendOption) SendOptions {
	var o SendOptions
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

type InlineResult struct {
	ID          string
	Title       string
	Description string
	Text        string
}

// Sender is everything the bot says back to the platform
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string, opts ...SendOption) error
	SendFile(ctx context.Context, chatID int64, fileID string, kind model.MediaKind, caption string, opts ...SendOption) error
	SendButtons(ctx context.Context, chatID int64, text string, rows [][]Button) error
	EditText(ctx context.Context, chatID int64, messageID int, text string, opts ...SendOption) error
	AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error
	AnswerInline(ctx context.Context, queryID string, results []InlineResult) error
}
