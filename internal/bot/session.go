package bot

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/tusing/reddit-ffn-bot/internal/dedupe"
	"github.com/tusing/reddit-ffn-bot/internal/reply"
	"github.com/tusing/reddit-ffn-bot/internal/rules"
	"github.com/tusing/reddit-ffn-bot/internal/sources/reddit"
	"github.com/tusing/reddit-ffn-bot/internal/subreddit"
)

// Options configures a Session. Client, Store, Formulator and Parser are
// required; zero limits fall back to the defaults of config.DefaultBot.
type Options struct {
	Client     reddit.Client
	Store      dedupe.Store
	Registry   subreddit.Registry
	Formulator reply.Formulator
	Parser     Parser
	Filter     *rules.Filter

	Experimental bool
	HotLimit     int
	NewLimit     int
	CommentLimit int

	PassDelay       time.Duration
	ReplyCooldown   time.Duration
	MinReplyLength  int
	Footer          string
	DryRun          bool
	MarkFailedItems bool

	// Sleep replaces every wait (pass delay and reply cooldown). Tests use
	// it to run without real delays.
	Sleep  reply.SleepFunc
	Logger *slog.Logger
}

// Session holds everything a running bot needs. It is built once at startup
// and owned by the runner.
type Session struct {
	Registry subreddit.Registry
	Store    dedupe.Store
	DryRun   bool
	Handlers *Handlers
	Engine   *Engine
}

func NewSession(opts Options) (*Session, error) {
	if opts.Client == nil {
		return nil, fmt.Errorf("reddit client is required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("dedup store is required")
	}
	if opts.Parser == nil {
		return nil, fmt.Errorf("marker parser is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = reply.Sleep
	}

	replier, err := reply.New(opts.Formulator, reply.Config{
		Footer:    opts.Footer,
		MinLength: opts.MinReplyLength,
		Cooldown:  opts.ReplyCooldown,
		DryRun:    opts.DryRun,
	}, sleep, logger)
	if err != nil {
		return nil, fmt.Errorf("build replier: %w", err)
	}

	handlers := &Handlers{
		client:     opts.Client,
		store:      opts.Store,
		replier:    replier,
		parser:     opts.Parser,
		filter:     opts.Filter,
		markFailed: opts.MarkFailedItems,
		logger:     logger,
	}
	strategy := NewStrategy(opts.Experimental, opts.Client,
		orDefault(opts.HotLimit, 50), orDefault(opts.NewLimit, 50), orDefault(opts.CommentLimit, 100))

	return &Session{
		Registry: opts.Registry,
		Store:    opts.Store,
		DryRun:   opts.DryRun,
		Handlers: handlers,
		Engine: &Engine{
			strategy:  strategy,
			handlers:  handlers,
			forums:    opts.Registry.Names(),
			passDelay: opts.PassDelay,
			sleep:     sleep,
			logger:    logger,
		},
	}, nil
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
