package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Bot is the resolved configuration of a single run.
type Bot struct {
	Username     string
	Password     string
	ClientID     string
	ClientSecret string

	Subreddits        string
	UseDefaults       bool
	DefaultSubreddits []string

	CheckedPath  string
	DedupBackend string
	DryRun       bool
	Experimental bool

	HotLimit           int
	NewLimit           int
	CommentLimit       int
	ExpandMoreComments bool
	PassDelay          time.Duration
	ErrorDelay         time.Duration

	ReplyCooldown   time.Duration
	MinReplyLength  int
	Footer          *string
	SkipRule        string
	MarkFailedItems bool

	MetricsListen string
}

func DefaultBot() Bot {
	return Bot{
		CheckedPath:     "CHECKED_COMMENTS.txt",
		DedupBackend:    "file",
		HotLimit:        50,
		NewLimit:        50,
		CommentLimit:    100,
		PassDelay:       time.Second,
		ErrorDelay:      time.Second,
		ReplyCooldown:   20 * time.Second,
		MinReplyLength:  10,
		MarkFailedItems: true,
	}
}

func (b Bot) Validate() error {
	if strings.TrimSpace(b.CheckedPath) == "" {
		return fmt.Errorf("checked items path is required")
	}
	if b.HotLimit <= 0 || b.NewLimit <= 0 || b.CommentLimit <= 0 {
		return fmt.Errorf("fetch limits must be > 0")
	}
	if b.PassDelay < 0 || b.ErrorDelay < 0 || b.ReplyCooldown < 0 {
		return fmt.Errorf("delays must be >= 0")
	}
	if b.MinReplyLength < 0 {
		return fmt.Errorf("min reply length must be >= 0")
	}
	return nil
}

// Document is the optional YAML file layered between built-in defaults and
// CLI flags.
type Document struct {
	Subreddits        []string       `yaml:"subreddits,omitempty"`
	UseDefaults       *bool          `yaml:"use_defaults,omitempty"`
	DefaultSubreddits []string       `yaml:"default_subreddits,omitempty"`
	CheckedPath       string         `yaml:"checked_path,omitempty"`
	DedupBackend      string         `yaml:"dedup_backend,omitempty"`
	DryRun            *bool          `yaml:"dry_run,omitempty"`
	Experimental      *bool          `yaml:"experimental,omitempty"`
	Polling           PollingSection `yaml:"polling,omitempty"`
	Reply             ReplySection   `yaml:"reply,omitempty"`
	SkipRule          string         `yaml:"skip_rule,omitempty"`
	MarkFailedItems   *bool          `yaml:"mark_failed_items,omitempty"`
	MetricsListen     string         `yaml:"metrics_listen,omitempty"`
}

type PollingSection struct {
	HotLimit           int       `yaml:"hot_limit,omitempty"`
	NewLimit           int       `yaml:"new_limit,omitempty"`
	CommentLimit       int       `yaml:"comment_limit,omitempty"`
	ExpandMoreComments *bool     `yaml:"expand_more_comments,omitempty"`
	PassDelay          *Duration `yaml:"pass_delay,omitempty"`
	ErrorDelay         *Duration `yaml:"error_delay,omitempty"`
}

type ReplySection struct {
	Footer    *string   `yaml:"footer,omitempty"`
	MinLength *int      `yaml:"min_length,omitempty"`
	Cooldown  *Duration `yaml:"cooldown,omitempty"`
}

func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse ffnbot document: %w", err)
	}
	return &doc, nil
}

// ApplyTo overlays every field the document sets onto b.
func (d *Document) ApplyTo(b *Bot) {
	if d == nil || b == nil {
		return
	}
	if len(d.Subreddits) > 0 {
		b.Subreddits = strings.Join(d.Subreddits, ",")
	}
	if d.UseDefaults != nil {
		b.UseDefaults = *d.UseDefaults
	}
	if len(d.DefaultSubreddits) > 0 {
		b.DefaultSubreddits = append([]string(nil), d.DefaultSubreddits...)
	}
	if d.CheckedPath != "" {
		b.CheckedPath = d.CheckedPath
	}
	if d.DedupBackend != "" {
		b.DedupBackend = d.DedupBackend
	}
	if d.DryRun != nil {
		b.DryRun = *d.DryRun
	}
	if d.Experimental != nil {
		b.Experimental = *d.Experimental
	}

	p := d.Polling
	if p.HotLimit > 0 {
		b.HotLimit = p.HotLimit
	}
	if p.NewLimit > 0 {
		b.NewLimit = p.NewLimit
	}
	if p.CommentLimit > 0 {
		b.CommentLimit = p.CommentLimit
	}
	if p.ExpandMoreComments != nil {
		b.ExpandMoreComments = *p.ExpandMoreComments
	}
	if p.PassDelay != nil {
		b.PassDelay = p.PassDelay.Std()
	}
	if p.ErrorDelay != nil {
		b.ErrorDelay = p.ErrorDelay.Std()
	}

	r := d.Reply
	if r.Footer != nil {
		footer := *r.Footer
		b.Footer = &footer
	}
	if r.MinLength != nil {
		b.MinReplyLength = *r.MinLength
	}
	if r.Cooldown != nil {
		b.ReplyCooldown = r.Cooldown.Std()
	}

	if d.SkipRule != "" {
		b.SkipRule = d.SkipRule
	}
	if d.MarkFailedItems != nil {
		b.MarkFailedItems = *d.MarkFailedItems
	}
	if d.MetricsListen != "" {
		b.MetricsListen = d.MetricsListen
	}
}
