package app

import (
	"context"
	"fmt"
	"time"

	"bitwise74/codedrop/app/root"
	"bitwise74/codedrop/app/webhook"
	"bitwise74/codedrop/internal"
	"bitwise74/codedrop/pkg/middleware"
	"bitwise74/codedrop/pkg/ratelimit"
	"bitwise74/codedrop/telegram"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	"github.com/go-redis/redis/v8"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewRouter builds the HTTP side of the bot. client and sink are only
// used in webhook mode and may be nil otherwise.
func NewRouter(d *internal.Deps, client *telegram.Client, sink telegram.Sink) (*gin.Engine, error) {
	router := gin.New()

	store, err := newStore()
	if err != nil {
		return nil, err
	}

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:  viper.GetStringSlice("host.cors"),
			AllowMethods:  []string{"GET", "POST", "HEAD", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders: []string{"Content-Length"},
			MaxAge:        12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD" || c.FullPath() == "/metrics"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true

	rateLimiter := middleware.RateLimiterMiddleware(ratelimit.Config{
		Requests: 60,
		Period:   time.Minute,
		MaxKeys:  viper.GetInt("limits.max_keys"),
	})

	// GET /metrics			-> Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	m := router.Group("/api", rateLimiter)
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		m.HEAD("/heartbeat", root.Heartbeat)

		// GET /api/stats		-> File, user and admin counts
		if token := viper.GetString("api.stats_token"); token != "" {
			m.GET("/stats",
				middleware.NewStaticTokenMiddleware(token),
				cache.CacheByRequestURI(store, 30*time.Second),
				func(c *gin.Context) { root.Stats(c, d) },
			)
		}
	}

	if client != nil && sink != nil {
		secret := webhook.Secret(viper.GetString("bot.token"))

		// POST /webhook/:token		-> Telegram pushes updates here
		router.POST("/webhook/:token", middleware.BodySizeLimiter(1<<20), func(c *gin.Context) { webhook.Receive(c, client, sink, secret) })
	}

	return router, nil
}

// newStore picks Redis for the response cache when an address is
// configured, memory otherwise. The client must be go-redis v8, that's
// what gin-cache's persist store is built on.
func newStore() (persist.CacheStore, error) {
	addr := viper.GetString("cache.redis_addr")
	if addr == "" {
		return persist.NewMemoryStore(time.Minute), nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: viper.GetString("cache.redis_password"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis, %w", err)
	}

	zap.L().Info("Using redis response cache", zap.String("addr", addr))
	return persist.NewRedisStore(rdb), nil
}
