package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/tusing/reddit-ffn-bot/internal/api"
	"github.com/tusing/reddit-ffn-bot/internal/bot"
	"github.com/tusing/reddit-ffn-bot/internal/commentparser"
	"github.com/tusing/reddit-ffn-bot/internal/config"
	"github.com/tusing/reddit-ffn-bot/internal/dedupe"
	"github.com/tusing/reddit-ffn-bot/internal/observability/otelx"
	"github.com/tusing/reddit-ffn-bot/internal/reply"
	"github.com/tusing/reddit-ffn-bot/internal/rules"
	"github.com/tusing/reddit-ffn-bot/internal/runner"
	"github.com/tusing/reddit-ffn-bot/internal/sources/reddit"
	"github.com/tusing/reddit-ffn-bot/internal/subreddit"
)

func main() {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newApp().RunContext(ctx, os.Args)
	stop()

	code := runner.ExitCode(err)
	if code != 0 {
		slog.Error("exiting", slog.String("error", err.Error()))
	}
	os.Exit(code)
}

func newApp() *cli.App {
	app := &cli.App{
		Name:   "ffnbot",
		Usage:  "reply to fanfiction link requests on reddit",
		Action: runBot,
	}
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "user",
			Aliases: []string{"u"},
			Usage:   "reddit username",
			EnvVars: []string{"REDDIT_USERNAME"},
		},
		&cli.StringFlag{
			Name:    "password",
			Aliases: []string{"p"},
			Usage:   "reddit password",
			EnvVars: []string{"REDDIT_PASSWORD"},
		},
		&cli.StringFlag{
			Name:    "client-id",
			Usage:   "reddit script app client id",
			EnvVars: []string{"REDDIT_CLIENT_ID"},
		},
		&cli.StringFlag{
			Name:    "client-secret",
			Usage:   "reddit script app client secret",
			EnvVars: []string{"REDDIT_CLIENT_SECRET"},
		},
		&cli.StringFlag{
			Name:    "subreddits",
			Aliases: []string{"s"},
			Usage:   "comma separated subreddits to monitor",
			EnvVars: []string{"FFNBOT_SUBREDDITS"},
		},
		&cli.BoolFlag{
			Name:    "default",
			Aliases: []string{"d"},
			Usage:   "also monitor the default subreddits",
			EnvVars: []string{"FFNBOT_DEFAULT_SUBREDDITS"},
		},
		&cli.StringFlag{
			Name:    "comments",
			Aliases: []string{"c"},
			Usage:   "path of the checked items file (or sqlite database)",
			Value:   config.DefaultBot().CheckedPath,
			EnvVars: []string{"FFNBOT_CHECKED_PATH"},
		},
		&cli.StringFlag{
			Name:    "dedup-backend",
			Usage:   "checked items backend: file, sqlite or badger",
			Value:   dedupe.BackendFile,
			EnvVars: []string{"FFNBOT_DEDUP_BACKEND"},
		},
		&cli.BoolFlag{
			Name:    "dry",
			Aliases: []string{"l"},
			Usage:   "log replies instead of posting them and never persist checked items",
			EnvVars: []string{"FFNBOT_DRY_RUN"},
		},
		&cli.BoolFlag{
			Name:    "getcomments",
			Usage:   "use the experimental new-items strategy",
			EnvVars: []string{"FFNBOT_EXPERIMENTAL"},
		},
		&cli.StringFlag{
			Name:    "config",
			Usage:   "optional YAML document with bot settings",
			EnvVars: []string{"FFNBOT_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "debug, info, warn or error",
			Value:   "info",
			EnvVars: []string{"FFNBOT_LOG_LEVEL"},
		},
		&cli.StringFlag{
			Name:    "log-format",
			Usage:   "text or json",
			Value:   "text",
			EnvVars: []string{"FFNBOT_LOG_FORMAT"},
		},
		&cli.StringFlag{
			Name:    "metrics-listen",
			Usage:   "address for the /healthz, /status and /metrics endpoints, empty to disable",
			EnvVars: []string{"FFNBOT_METRICS_LISTEN"},
		},
	}
	return app
}

func runBot(cctx *cli.Context) error {
	logger, err := newLogger(cctx.String("log-level"), cctx.String("log-format"))
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	cfg, err := resolveConfig(cctx)
	if err != nil {
		return err
	}
	env := config.LoadEnv()
	ctx := cctx.Context

	shutdownTracing, err := otelx.Init(ctx, logger, env.OTel)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	if shutdownTracing != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(shutdownCtx); err != nil {
				logger.Error("failed to shutdown trace exporter", slog.String("error", err.Error()))
			}
		}()
	}

	client, err := reddit.NewClient(logger, reddit.Options{
		Timeout:       env.Reddit.HTTPTimeout,
		UserAgent:     env.Reddit.UserAgent,
		ClientID:      cfg.ClientID,
		ClientSecret:  cfg.ClientSecret,
		Username:      cfg.Username,
		Password:      cfg.Password,
		FetchAttempts: env.Reddit.FetchAttempts,
		ListingURL:    env.Reddit.ListingURL,
		ExpandMore:    cfg.ExpandMoreComments,
	})
	if err != nil {
		return err
	}
	username, err := client.Login(ctx)
	switch {
	case errors.Is(err, reddit.ErrNoCredentials) && cfg.DryRun:
		logger.Warn("No reddit credentials, continuing read-only because this is a dry run")
	case err != nil:
		return fmt.Errorf("authenticate: %w", err)
	default:
		logger.Info("Logged in", slog.String("username", username))
	}

	defaults := cfg.DefaultSubreddits
	if len(defaults) == 0 {
		defaults = subreddit.Defaults
	}
	registry := subreddit.Resolve(defaults, cfg.UseDefaults, cfg.Subreddits)
	logger.Info("Monitoring subreddits", slog.String("subreddits", registry.String()))

	store, err := dedupe.Open(ctx, cfg.DedupBackend, cfg.CheckedPath, cfg.DryRun, logger)
	if err != nil {
		return fmt.Errorf("open checked items: %w", err)
	}
	defer store.Close()

	filter, err := rules.NewFilter(cfg.SkipRule)
	if err != nil {
		return err
	}

	footer := reply.DefaultFooter
	if cfg.Footer != nil {
		footer = *cfg.Footer
	}
	session, err := bot.NewSession(bot.Options{
		Client:          client,
		Store:           store,
		Registry:        registry,
		Formulator:      commentparser.Formatter{},
		Parser:          commentparser.Formatter{},
		Filter:          filter,
		Experimental:    cfg.Experimental,
		HotLimit:        cfg.HotLimit,
		NewLimit:        cfg.NewLimit,
		CommentLimit:    cfg.CommentLimit,
		PassDelay:       cfg.PassDelay,
		ReplyCooldown:   cfg.ReplyCooldown,
		MinReplyLength:  cfg.MinReplyLength,
		Footer:          footer,
		DryRun:          cfg.DryRun,
		MarkFailedItems: cfg.MarkFailedItems,
		Logger:          logger,
	})
	if err != nil {
		return err
	}
	logger.Info("Session ready",
		slog.String("strategy", session.Engine.Strategy().Name()),
		slog.Bool("dry_run", session.DryRun),
		slog.Int("checked_items", store.Len()),
	)

	r, err := runner.New(session.Engine, store, runner.Config{
		ErrorDelay:     cfg.ErrorDelay,
		StatusSchedule: env.StatusSchedule,
	}, logger)
	if err != nil {
		return err
	}

	if cfg.MetricsListen != "" {
		server := api.NewServer(r, api.Info{
			Strategy:   session.Engine.Strategy().Name(),
			Subreddits: registry.Names(),
			DryRun:     session.DryRun,
		}, logger)
		go func() {
			if err := server.Run(ctx, cfg.MetricsListen); err != nil {
				logger.Error("failed to start ops endpoint", slog.String("error", err.Error()))
			}
		}()
	}

	err = r.Run(ctx)
	if errors.Is(err, runner.ErrStopped) {
		logger.Info("Stopped")
		return nil
	}
	return err
}

// resolveConfig layers built-in defaults, the optional YAML document, and
// explicitly set flags (or their env vars), in that order.
func resolveConfig(cctx *cli.Context) (config.Bot, error) {
	cfg := config.DefaultBot()
	if path := cctx.String("config"); path != "" {
		doc, err := config.LoadDocument(path)
		if err != nil {
			return cfg, fmt.Errorf("load config %s: %w", path, err)
		}
		doc.ApplyTo(&cfg)
	}

	if cctx.IsSet("user") {
		cfg.Username = cctx.String("user")
	}
	if cctx.IsSet("password") {
		cfg.Password = cctx.String("password")
	}
	if cctx.IsSet("client-id") {
		cfg.ClientID = cctx.String("client-id")
	}
	if cctx.IsSet("client-secret") {
		cfg.ClientSecret = cctx.String("client-secret")
	}
	if cctx.IsSet("subreddits") {
		cfg.Subreddits = cctx.String("subreddits")
	}
	if cctx.IsSet("default") {
		cfg.UseDefaults = cctx.Bool("default")
	}
	if cctx.IsSet("comments") {
		cfg.CheckedPath = cctx.String("comments")
	}
	if cctx.IsSet("dedup-backend") {
		cfg.DedupBackend = cctx.String("dedup-backend")
	}
	if cctx.IsSet("dry") {
		cfg.DryRun = cctx.Bool("dry")
	}
	if cctx.IsSet("getcomments") {
		cfg.Experimental = cctx.Bool("getcomments")
	}
	if cctx.IsSet("metrics-listen") {
		cfg.MetricsListen = cctx.String("metrics-listen")
	}
	return cfg, cfg.Validate()
}

func newLogger(level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(os.Stdout, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stdout, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q (expected text or json)", format)
	}
}
