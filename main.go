package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"bitwise74/codedrop/app"
	"bitwise74/codedrop/app/bot"
	"bitwise74/codedrop/app/webhook"
	"bitwise74/codedrop/config"
	"bitwise74/codedrop/db"
	"bitwise74/codedrop/internal"
	"bitwise74/codedrop/internal/admins"
	"bitwise74/codedrop/internal/conversation"
	"bitwise74/codedrop/internal/gate"
	"bitwise74/codedrop/internal/registry"
	"bitwise74/codedrop/internal/service"
	"bitwise74/codedrop/internal/users"
	"bitwise74/codedrop/pkg/ratelimit"
	"bitwise74/codedrop/pkg/validators"
	"bitwise74/codedrop/telegram"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	err := config.Setup()
	if err != nil {
		panic(err)
	}

	if err := app.MakeLogger(); err != nil {
		panic(err)
	}
	defer zap.L().Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := telegram.NewClient(viper.GetString("bot.token"), viper.GetBool("bot.debug"))
	if err != nil {
		panic(err)
	}

	d, err := newDeps(client)
	if err != nil {
		panic(err)
	}

	h := bot.New(bot.Config{
		ChannelLink: viper.GetString("channel.link"),
		CodeLength:  viper.GetInt("codes.length"),
		CodeRules:   codeRules(),
		ListLimit:   viper.GetInt("media.list_limit"),
		Retention:   viper.GetDuration("media.retention"),
	}, d, client)

	d.Queue.StartWorkerPool(ctx)
	sink := app.Dispatcher(d.Queue, h)

	retention := viper.GetDuration("media.retention")
	if retention > 0 {
		c, err := service.MediaCleanup(viper.GetString("media.cleanup_schedule"), retention, d.Registry)
		if err != nil {
			panic(err)
		}
		defer c.Stop()
	}

	webhookMode := viper.GetString("bot.mode") == "webhook"

	var router *gin.Engine
	if webhookMode {
		router, err = app.NewRouter(d, client, sink)
	} else {
		router, err = app.NewRouter(d, nil, nil)
	}
	if err != nil {
		panic(err)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", viper.GetInt("host.port")),
		Handler: router,
	}

	go func() {
		zap.L().Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("Server failed", zap.Error(err))
		}
	}()

	if webhookMode {
		url := viper.GetString("bot.webhook_url") + "/webhook/" + webhook.Secret(viper.GetString("bot.token"))
		if err := client.SetWebhook(url); err != nil {
			panic(err)
		}
		<-ctx.Done()
	} else {
		client.Poll(ctx, sink)
	}

	zap.L().Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("Failed to shut down server", zap.Error(err))
	}

	d.Queue.Stop()
	d.Broadcaster.Wait()
}

func newDeps(client *telegram.Client) (*internal.Deps, error) {
	conn, err := db.New(viper.GetString("database.driver"), viper.GetString("database.dsn"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}

	adminIDs, err := config.AdminIDs()
	if err != nil {
		return nil, err
	}

	return &internal.Deps{
		DB:       conn,
		Registry: registry.New(conn),
		Users:    users.New(conn),
		Admins:   admins.New(conn, adminIDs),
		Conversations: conversation.New(
			viper.GetInt("conversation.max_sessions"),
			viper.GetDuration("conversation.ttl"),
		),
		Gate: gate.New(client, gate.Config{
			Channel:  viper.GetString("channel.id"),
			Timeout:  viper.GetDuration("channel.check_timeout"),
			CacheTTL: viper.GetDuration("channel.cache_ttl"),
		}),
		Limiter: ratelimit.New[int64](ratelimit.Config{
			Requests: viper.GetInt("limits.requests"),
			Period:   viper.GetDuration("limits.period"),
			MaxKeys:  viper.GetInt("limits.max_keys"),
		}),
		Broadcaster: service.NewBroadcaster(
			func(ctx context.Context, chatID int64, text string) error {
				return client.SendText(ctx, chatID, text)
			},
			service.BroadcastConfig{
				BatchSize: viper.GetInt("broadcast.batch_size"),
				Pause:     viper.GetDuration("broadcast.pause"),
			},
		),
		Queue: service.NewUpdateQueue(viper.GetInt("bot.workers"), 64),
	}, nil
}

func codeRules() validators.CodeRules {
	if !viper.GetBool("codes.digits_only") {
		return validators.CodeRules{}
	}

	return validators.CodeRules{DigitsOnly: true, Length: viper.GetInt("codes.length")}
}
