package main

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestSetupLogger(t *testing.T) {
	// Preserve the default logger
	original := slog.Default()
	defer slog.SetDefault(original)

	newApp := func(action cli.ActionFunc) *cli.App {
		return &cli.App{
			Name: "semcache",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "log-level",
					Value: "info",
				},
			},
			Before: setupLogger,
			Action: action,
		}
	}

	t.Run("accepts valid levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "WARN"} {
			ran := false
			app := newApp(func(c *cli.Context) error {
				ran = true
				return nil
			})
			err := app.Run([]string{"semcache", "--log-level", level})
			require.NoError(t, err, "level %q should be accepted", level)
			assert.True(t, ran)
		}
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		app := newApp(func(c *cli.Context) error { return nil })
		err := app.Run([]string{"semcache", "--log-level", "verbose"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

func TestAIConfigFromFlags(t *testing.T) {
	app := &cli.App{
		Name:  "semcache",
		Flags: aiFlags(),
		Action: func(c *cli.Context) error {
			cfg := aiConfigFromFlags(c)
			assert.Equal(t, "http://models:9000/v1", cfg.Host)
			assert.Equal(t, "sk-test", cfg.Token)
			assert.Equal(t, "embed-x", cfg.EmbeddingModel)
			assert.Equal(t, "gen-y", cfg.GenerationModel)
			return nil
		},
	}

	err := app.Run([]string{"semcache",
		"--ai-host", "http://models:9000",
		"--ai-token", "sk-test",
		"--embedding-model", "embed-x",
		"--generation-model", "gen-y",
	})
	require.NoError(t, err)
}

func TestIngestCommandRequiresFile(t *testing.T) {
	tmp := t.TempDir()
	app := &cli.App{
		Name: "semcache",
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Action: ingestCommand,
				Flags: append(aiFlags(), &cli.StringFlag{
					Name:     "db",
					Required: true,
				}),
			},
		},
	}

	t.Run("db is required", func(t *testing.T) {
		err := app.Run([]string{"semcache", "ingest", "somefile.txt"})
		require.Error(t, err)
	})

	t.Run("file argument is required", func(t *testing.T) {
		err := app.Run([]string{"semcache", "ingest", "--db", tmp})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "file argument")
	})

	t.Run("missing file fails", func(t *testing.T) {
		err := app.Run([]string{"semcache", "ingest", "--db", tmp, "/no/such/file.txt"})
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
