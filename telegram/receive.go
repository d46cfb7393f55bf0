package telegram

import (
	"context"
	"fmt"
	"net/http"

	"bitwise74/codedrop/app/bot"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Sink takes classified events, usually by queueing them
type Sink func(ctx context.Context, ev bot.Event)

// Poll long-polls for updates until ctx is done
func (c *Client) Poll(ctx context.Context, sink Sink) {
	// A leftover webhook makes getUpdates fail
	if err := c.request(ctx, tgbotapi.DeleteWebhookConfig{}); err != nil {
		zap.L().Warn("Failed to delete webhook", zap.Error(err))
	}

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 60
	updates := c.API.GetUpdatesChan(cfg)

	zap.L().Info("Polling for updates")

	for {
		select {
		case <-ctx.Done():
			c.API.StopReceivingUpdates()
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			c.deliver(ctx, u, sink)
		}
	}
}

// SetWebhook registers url with Telegram
func (c *Client) SetWebhook(url string) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("invalid webhook url, %w", err)
	}

	if _, err := c.API.Request(wh); err != nil {
		return fmt.Errorf("failed to set webhook, %w", err)
	}

	zap.L().Info("Webhook registered", zap.String("url", url))
	return nil
}

// HandleWebhook parses one update from r and hands it to sink
func (c *Client) HandleWebhook(ctx context.Context, r *http.Request, sink Sink) error {
	u, err := c.API.HandleUpdate(r)
	if err != nil {
		return err
	}

	c.deliver(ctx, *u, sink)
	return nil
}

func (c *Client) deliver(ctx context.Context, u tgbotapi.Update, sink Sink) {
	ev, ok := Classify(u)
	if !ok {
		zap.L().Debug("Skipping update", zap.Int("update_id", u.UpdateID))
		return
	}

	sink(ctx, ev)
}
