// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/semcache"
	"github.com/poiesic/semcache/ai"
	"github.com/poiesic/semcache/orchestrator"
)

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "semcache",
		Usage: "Semantically cached question answering over your documents",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API server",
				Action: serveCommand,
				Flags: append(aiFlags(),
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
						EnvVars:  []string{"SEMCACHE_DB"},
					},
					&cli.StringFlag{
						Name:    "listen",
						Usage:   "Address to listen on",
						Value:   ":8080",
						EnvVars: []string{"SEMCACHE_LISTEN"},
					},
					&cli.Float64Flag{
						Name:  "hit-threshold",
						Usage: "Minimum similarity for a semantic cache hit",
						Value: orchestrator.DefaultHitThreshold,
					},
					&cli.DurationFlag{
						Name:  "cache-ttl",
						Usage: "Lifetime of cached answers",
						Value: orchestrator.DefaultCacheTTL,
					},
				),
			},
			{
				Name:      "ingest",
				Usage:     "Ingest a document from a file and wait for completion",
				ArgsUsage: "<file>",
				Action:    ingestCommand,
				Flags: append(aiFlags(),
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
						EnvVars:  []string{"SEMCACHE_DB"},
					},
					&cli.StringFlag{
						Name:  "document-id",
						Usage: "Document id (defaults to the file name)",
					},
				),
			},
			{
				Name:      "ask",
				Usage:     "Ask a single question against the ingested documents",
				ArgsUsage: "<question>",
				Action:    askCommand,
				Flags: append(aiFlags(),
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
						EnvVars:  []string{"SEMCACHE_DB"},
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// aiFlags are the model service flags shared by every command.
func aiFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "ai-host",
			Usage:   "OpenAI-compatible API host URL",
			Value:   "http://localhost:11434/v1",
			EnvVars: []string{"SEMCACHE_AI_HOST"},
		},
		&cli.StringFlag{
			Name:    "ai-token",
			Usage:   "API token (use \"none\" for local services)",
			Value:   "none",
			EnvVars: []string{"SEMCACHE_AI_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model name",
			Value:   "embeddinggemma",
			EnvVars: []string{"SEMCACHE_EMBEDDING_MODEL"},
		},
		&cli.StringFlag{
			Name:    "generation-model",
			Usage:   "Generation model name",
			Value:   "qwen2.5:3b",
			EnvVars: []string{"SEMCACHE_GENERATION_MODEL"},
		},
	}
}

func aiConfigFromFlags(c *cli.Context) *ai.Config {
	return ai.NewConfig(
		ai.WithHost(c.String("ai-host")),
		ai.WithToken(c.String("ai-token")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithGenerationModel(c.String("generation-model")),
	)
}

func serveCommand(c *cli.Context) error {
	system, err := semcache.New(c.String("db"),
		semcache.WithAIConfig(aiConfigFromFlags(c)),
		semcache.WithHitThreshold(c.Float64("hit-threshold")),
		semcache.WithCacheTTL(c.Duration("cache-ttl")),
	)
	if err != nil {
		return fmt.Errorf("opening system: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	system.Start(ctx)
	defer func() {
		stop()
		if err := system.Close(); err != nil {
			slog.Error("error closing system", "err", err)
		}
	}()

	server := newServer(system, slog.Default())
	return server.listenAndServe(ctx, c.String("listen"))
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one file argument")
	}
	path := c.Args().First()

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	fileName := filepath.Base(path)
	documentID := c.String("document-id")
	if documentID == "" {
		documentID = fileName
	}

	system, err := semcache.New(c.String("db"), semcache.WithAIConfig(aiConfigFromFlags(c)))
	if err != nil {
		return fmt.Errorf("opening system: %w", err)
	}

	ctx, cancel := context.WithCancel(c.Context)
	system.Start(ctx)
	defer func() {
		cancel()
		system.Close()
	}()

	jobID, err := system.Reingest(ctx, documentID, fileName, string(content))
	if err != nil {
		return err
	}

	// Poll until the background job reaches a terminal state
	for {
		job, ok := system.GetJob(jobID)
		if !ok {
			return fmt.Errorf("job %s disappeared", jobID)
		}
		if job.Status.Terminal() {
			if job.Error != "" {
				return fmt.Errorf("ingest failed: %s", job.Error)
			}
			fmt.Printf("ingested %s as %s: %d chunks\n", fileName, documentID, job.ChunkCount)
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}

func askCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one question argument")
	}

	system, err := semcache.New(c.String("db"), semcache.WithAIConfig(aiConfigFromFlags(c)))
	if err != nil {
		return fmt.Errorf("opening system: %w", err)
	}

	ctx, cancel := context.WithCancel(c.Context)
	system.Start(ctx)
	defer func() {
		cancel()
		system.Close()
	}()

	response, err := system.ProcessChat(ctx, c.Args().First())
	if err != nil {
		return err
	}

	fmt.Printf("[%s] %s\n", response.CacheStatus, response.Answer)
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
