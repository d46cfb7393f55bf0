package telegram

import (
	"bitwise74/codedrop/app/bot"
	"bitwise74/codedrop/internal/conversation"
	"bitwise74/codedrop/internal/model"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Classify turns an update into a bot event. Updates the bot doesn't care
// about (edits, channel posts, stickers...) report false.
func Classify(u tgbotapi.Update) (bot.Event, bool) {
	switch {
	case u.CallbackQuery != nil:
		return classifyCallback(u.CallbackQuery)
	case u.InlineQuery != nil:
		return classifyInline(u.InlineQuery)
	case u.Message != nil:
		return classifyMessage(u.Message)
	}

	return bot.Event{}, false
}

func classifyMessage(m *tgbotapi.Message) (bot.Event, bool) {
	if m.From == nil || m.Chat == nil {
		return bot.Event{}, false
	}

	ev := bot.Event{
		SessionID: m.Chat.ID,
		From:      user(m.From),
		MessageID: m.MessageID,
		Text:      m.Text,
		Caption:   m.Caption,
	}

	if m.ForwardFrom != nil {
		ev.ForwardFromID = m.ForwardFrom.ID
	}

	if m.IsCommand() {
		ev.Kind = bot.EventCommand
		ev.Command = m.Command()
		ev.Args = m.CommandArguments()
		return ev, true
	}

	if f := file(m); f != nil {
		ev.Kind = bot.EventFile
		ev.File = f
		return ev, true
	}

	if m.Text != "" {
		ev.Kind = bot.EventText
		return ev, true
	}

	return bot.Event{}, false
}

func file(m *tgbotapi.Message) *conversation.File {
	switch {
	case m.Document != nil:
		return &conversation.File{
			ID:       m.Document.FileID,
			Kind:     model.KindDocument,
			Name:     m.Document.FileName,
			MimeType: m.Document.MimeType,
		}
	case m.Video != nil:
		return &conversation.File{
			ID:       m.Video.FileID,
			Kind:     model.KindVideo,
			Name:     m.Video.FileName,
			MimeType: m.Video.MimeType,
		}
	case m.Audio != nil:
		return &conversation.File{
			ID:       m.Audio.FileID,
			Kind:     model.KindAudio,
			Name:     m.Audio.FileName,
			MimeType: m.Audio.MimeType,
		}
	case len(m.Photo) > 0:
		// Sizes come smallest first
		largest := m.Photo[len(m.Photo)-1]
		return &conversation.File{
			ID:       largest.FileID,
			Kind:     model.KindPhoto,
			MimeType: "image/jpeg",
		}
	}

	return nil
}

func classifyCallback(q *tgbotapi.CallbackQuery) (bot.Event, bool) {
	if q.From == nil {
		return bot.Event{}, false
	}

	ev := bot.Event{
		Kind:       bot.EventButton,
		SessionID:  q.From.ID,
		From:       user(q.From),
		CallbackID: q.ID,
		ActionID:   q.Data,
	}

	if q.Message != nil && q.Message.Chat != nil {
		ev.SessionID = q.Message.Chat.ID
		ev.MessageID = q.Message.MessageID
	}

	return ev, true
}

func classifyInline(q *tgbotapi.InlineQuery) (bot.Event, bool) {
	if q.From == nil {
		return bot.Event{}, false
	}

	return bot.Event{
		Kind:          bot.EventInline,
		SessionID:     q.From.ID,
		From:          user(q.From),
		InlineQueryID: q.ID,
		Query:         q.Query,
	}, true
}

func user(u *tgbotapi.User) bot.User {
	return bot.User{
		ID:        u.ID,
		Username:  u.UserName,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}
