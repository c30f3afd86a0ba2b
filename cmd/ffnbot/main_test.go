package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/tusing/reddit-ffn-bot/internal/config"
)

// clearEnv unsets every env fallback; urfave/cli treats an empty but present
// variable as set.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, flag := range newApp().Flags {
		var vars []string
		switch f := flag.(type) {
		case *cli.StringFlag:
			vars = f.EnvVars
		case *cli.BoolFlag:
			vars = f.EnvVars
		}
		for _, key := range vars {
			t.Setenv(key, "")
			require.NoError(t, os.Unsetenv(key))
		}
	}
}

func resolveWith(t *testing.T, args ...string) (config.Bot, error) {
	t.Helper()
	clearEnv(t)
	var (
		got    config.Bot
		runErr error
	)
	app := newApp()
	app.Action = func(cctx *cli.Context) error {
		got, runErr = resolveConfig(cctx)
		return nil
	}
	require.NoError(t, app.Run(append([]string{"ffnbot"}, args...)))
	return got, runErr
}

func TestResolveConfigDefaults(t *testing.T) {
	cfg, err := resolveWith(t)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultBot(), cfg)
}

func TestResolveConfigFlagsOverrideDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ffnbot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
subreddits: [fromfile]
dry_run: false
checked_path: file.txt
reply:
  cooldown: 30s
`), 0o644))

	cfg, err := resolveWith(t, "--config", path, "-s", "HPFanfiction,r/HPMOR", "-l", "--getcomments")
	require.NoError(t, err)
	assert.Equal(t, "HPFanfiction,r/HPMOR", cfg.Subreddits)
	assert.True(t, cfg.DryRun)
	assert.True(t, cfg.Experimental)
	assert.Equal(t, "file.txt", cfg.CheckedPath)
	assert.Equal(t, 30*time.Second, cfg.ReplyCooldown)
}

func TestResolveConfigReadsEnvFallbacks(t *testing.T) {
	clearEnv(t)
	t.Setenv("FFNBOT_SUBREDDITS", "fanfiction")
	var got config.Bot
	app := newApp()
	app.Action = func(cctx *cli.Context) error {
		var err error
		got, err = resolveConfig(cctx)
		return err
	}
	require.NoError(t, app.Run([]string{"ffnbot", "-d"}))
	assert.Equal(t, "fanfiction", got.Subreddits)
	assert.True(t, got.UseDefaults)
}

func TestNewLogger(t *testing.T) {
	_, err := newLogger("debug", "json")
	require.NoError(t, err)
	_, err = newLogger("loud", "text")
	require.Error(t, err)
	_, err = newLogger("info", "xml")
	require.Error(t, err)
}
