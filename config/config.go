// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	configDir = pflag.String("config-dir", ".", "Directory to look for config.toml in")
	envFile   = pflag.String("env-file", ".env", "Optional dotenv file loaded before the environment is read")

	validLogLevels = []string{"debug", "info", "warn", "error", "fatal"}
	validDrivers   = []string{"sqlite", "postgres"}
	validModes     = []string{"polling", "webhook"}
)

var keys = []string{
	"app.log_level",
	"app.log_file",

	"bot.token",
	"bot.mode",
	"bot.webhook_url",
	"bot.workers",
	"bot.debug",

	"admins.ids",

	"channel.id",
	"channel.link",
	"channel.check_timeout",
	"channel.cache_ttl",

	"database.driver",
	"database.dsn",

	"codes.length",
	"codes.digits_only",

	"media.retention",
	"media.cleanup_schedule",
	"media.list_limit",

	"broadcast.batch_size",
	"broadcast.pause",

	"limits.requests",
	"limits.period",
	"limits.max_keys",

	"conversation.ttl",
	"conversation.max_sessions",

	"host.port",
	"host.cors",

	"cache.redis_addr",
	"cache.redis_password",

	"api.stats_token",
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	if !pflag.Parsed() {
		pflag.Parse()
	}
	v.BindPFlags(pflag.CommandLine)

	// Real environment variables win over the dotenv file
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load %s, %w", *envFile, err)
	}

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(*configDir)

	v.AutomaticEnv()

	//
	// ENVS
	//
	for _, key := range keys {
		v.BindEnv(key, strings.ToUpper(strings.ReplaceAll(key, ".", "_")))
	}

	SetDefaults()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file, %w", err)
		}
	}

	return Validate()
}

func SetDefaults() {
	v.SetDefault("app.log_level", "info")

	v.SetDefault("bot.mode", "polling")
	v.SetDefault("bot.workers", 8)
	v.SetDefault("bot.debug", false)

	v.SetDefault("channel.check_timeout", 5*time.Second)
	v.SetDefault("channel.cache_ttl", time.Minute)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "codedrop.db")

	v.SetDefault("codes.length", 6)
	v.SetDefault("codes.digits_only", false)

	v.SetDefault("media.retention", 24*time.Hour)
	v.SetDefault("media.cleanup_schedule", "@every 1h")
	v.SetDefault("media.list_limit", 20)

	v.SetDefault("broadcast.batch_size", 30)
	v.SetDefault("broadcast.pause", time.Second)

	v.SetDefault("limits.requests", 5)
	v.SetDefault("limits.period", time.Minute)
	v.SetDefault("limits.max_keys", 10_000)

	v.SetDefault("conversation.ttl", 30*time.Minute)
	v.SetDefault("conversation.max_sessions", 10_000)

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.cors", []string{"*"})
}

// Validate checks the values currently loaded into viper
func Validate() error {
	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetString("bot.token") == "" {
		return errors.New("no bot token provided, set BOT_TOKEN")
	}

	switch v.GetString("bot.mode") {
	case "webhook":
		if v.GetString("bot.webhook_url") == "" {
			return errors.New("webhook mode needs bot.webhook_url")
		}
	case "polling":
	default:
		return fmt.Errorf("invalid bot mode, expected one of %v", validModes)
	}

	if v.GetInt("bot.workers") <= 0 {
		return errors.New("bot.workers must be bigger than 0")
	}

	if _, err := AdminIDs(); err != nil {
		return err
	}

	if !slices.Contains(validDrivers, v.GetString("database.driver")) {
		return errors.New("invalid database driver provided")
	}

	if v.GetString("database.dsn") == "" {
		return errors.New("database.dsn can't be empty")
	}

	if l := v.GetInt("codes.length"); l <= 0 || l > 32 {
		return errors.New("codes.length must be between 1 and 32")
	}

	if v.GetDuration("media.retention") > 0 {
		if _, err := cron.ParseStandard(v.GetString("media.cleanup_schedule")); err != nil {
			return fmt.Errorf("invalid media.cleanup_schedule, %w", err)
		}
	}

	if v.GetInt("broadcast.batch_size") <= 0 {
		return errors.New("broadcast.batch_size must be bigger than 0")
	}

	if v.GetInt("limits.requests") <= 0 || v.GetDuration("limits.period") <= 0 {
		return errors.New("limits.requests and limits.period must be bigger than 0")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if v.GetString("channel.id") == "" {
		fmt.Println("[WARNING]: No channel.id set, the subscription check is disabled")
	}

	if v.GetString("api.stats_token") == "" {
		zap.L().Warn("No api.stats_token set, /api/stats is disabled")
	}

	return nil
}

// AdminIDs parses admins.ids, which may be a TOML array or a comma
// separated string from the environment
func AdminIDs() ([]int64, error) {
	var ids []int64

	for _, raw := range v.GetStringSlice("admins.ids") {
		fields := strings.FieldsFunc(raw, func(r rune) bool {
			return r == ',' || r == ' ' || r == ';'
		})

		for _, f := range fields {
			id, err := strconv.ParseInt(f, 10, 64)
			if err != nil || id <= 0 {
				return nil, fmt.Errorf("invalid admin id %q", f)
			}

			if !slices.Contains(ids, id) {
				ids = append(ids, id)
			}
		}
	}

	return ids, nil
}
