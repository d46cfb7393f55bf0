// Package telegram adapts the Bot API client to the bot's Sender and the
// subscription gate's membership oracle
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"bitwise74/codedrop/app/bot"
	"bitwise74/codedrop/internal/gate"
	"bitwise74/codedrop/internal/model"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type Client struct {
	API *tgbotapi.BotAPI
}

func NewClient(token string, debug bool) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to authorize bot, %w", err)
	}
	api.Debug = debug

	zap.L().Info("Authorized on Telegram", zap.String("username", api.Self.UserName))
	return &Client{API: api}, nil
}

// The Bot API client has no context support, so calls are only skipped
// when ctx is already done
func (c *Client) send(ctx context.Context, msg tgbotapi.Chattable) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := c.API.Send(msg); err != nil {
		return fmt.Errorf("telegram send failed, %w", err)
	}

	return nil
}

func (c *Client) request(ctx context.Context, req tgbotapi.Chattable) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := c.API.Request(req); err != nil {
		return fmt.Errorf("telegram request failed, %w", err)
	}

	return nil
}

func (c *Client) SendText(ctx context.Context, chatID int64, text string, opts ...bot.SendOption) error {
	o := bot.ApplyOptions(opts)

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = o.ReplyTo
	if o.Markdown {
		msg.ParseMode = tgbotapi.ModeMarkdown
	}
	if kb := keyboard(o.Buttons); kb != nil {
		msg.ReplyMarkup = *kb
	}

	return c.send(ctx, msg)
}

func (c *Client) SendButtons(ctx context.Context, chatID int64, text string, rows [][]bot.Button) error {
	return c.SendText(ctx, chatID, text, bot.WithButtons(rows...))
}

func (c *Client) SendFile(ctx context.Context, chatID int64, fileID string, kind model.MediaKind, caption string, opts ...bot.SendOption) error {
	o := bot.ApplyOptions(opts)
	file := tgbotapi.FileID(fileID)

	var markup any
	if kb := keyboard(o.Buttons); kb != nil {
		markup = *kb
	}

	var msg tgbotapi.Chattable
	switch kind {
	case model.KindVideo:
		m := tgbotapi.NewVideo(chatID, file)
		m.Caption = caption
		m.ReplyMarkup = markup
		m.ReplyToMessageID = o.ReplyTo
		msg = m
	case model.KindAudio:
		m := tgbotapi.NewAudio(chatID, file)
		m.Caption = caption
		m.ReplyMarkup = markup
		m.ReplyToMessageID = o.ReplyTo
		msg = m
	case model.KindPhoto:
		m := tgbotapi.NewPhoto(chatID, file)
		m.Caption = caption
		m.ReplyMarkup = markup
		m.ReplyToMessageID = o.ReplyTo
		msg = m
	default:
		m := tgbotapi.NewDocument(chatID, file)
		m.Caption = caption
		m.ReplyMarkup = markup
		m.ReplyToMessageID = o.ReplyTo
		msg = m
	}

	return c.send(ctx, msg)
}

func (c *Client) EditText(ctx context.Context, chatID int64, messageID int, text string, opts ...bot.SendOption) error {
	o := bot.ApplyOptions(opts)

	msg := tgbotapi.NewEditMessageText(chatID, messageID, text)
	if o.Markdown {
		msg.ParseMode = tgbotapi.ModeMarkdown
	}
	msg.ReplyMarkup = keyboard(o.Buttons)

	return c.send(ctx, msg)
}

func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error {
	cb := tgbotapi.NewCallback(callbackID, text)
	cb.ShowAlert = alert

	return c.request(ctx, cb)
}

func (c *Client) AnswerInline(ctx context.Context, queryID string, results []bot.InlineResult) error {
	items := make([]any, 0, len(results))
	for _, r := range results {
		article := tgbotapi.NewInlineQueryResultArticle(r.ID, r.Title, r.Text)
		article.Description = r.Description
		items = append(items, article)
	}

	return c.request(ctx, tgbotapi.InlineConfig{
		InlineQueryID: queryID,
		Results:       items,
		CacheTime:     0,
		IsPersonal:    true,
	})
}

// Membership asks Telegram about userID in channel, which is either a
// numeric chat id or an @username
func (c *Client) Membership(ctx context.Context, channel string, userID int64) (gate.Membership, error) {
	cfg := tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{UserID: userID},
	}

	if strings.HasPrefix(channel, "@") {
		cfg.SuperGroupUsername = channel
	} else {
		id, err := strconv.ParseInt(channel, 10, 64)
		if err != nil {
			return gate.Membership{}, fmt.Errorf("invalid channel %q, %w", channel, err)
		}
		cfg.ChatID = id
	}

	type result struct {
		member tgbotapi.ChatMember
		err    error
	}

	// Run the call aside so the gate's timeout is honored
	ch := make(chan result, 1)
	go func() {
		m, err := c.API.GetChatMember(cfg)
		ch <- result{m, err}
	}()

	select {
	case <-ctx.Done():
		return gate.Membership{}, ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return gate.Membership{}, fmt.Errorf("failed to get chat member, %w", r.err)
		}

		return gate.Membership{
			Status:   gate.MembershipStatus(r.member.Status),
			IsMember: r.member.IsMember,
		}, nil
	}
}

func keyboard(rows [][]bot.Button) *tgbotapi.InlineKeyboardMarkup {
	if len(rows) == 0 {
		return nil
	}

	out := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			if b.URL != "" {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(b.Text, b.URL))
				continue
			}
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Action))
		}
		out = append(out, buttons)
	}

	kb := tgbotapi.NewInlineKeyboardMarkup(out...)
	return &kb
}
