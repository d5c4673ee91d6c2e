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
	"strings"
	"time"

	"github.com/poiesic/graphrag"
	"github.com/poiesic/graphrag/ai"
	"github.com/poiesic/graphrag/ai/openai"
	"github.com/poiesic/graphrag/ingestion"
	"github.com/poiesic/graphrag/reindex"
	"github.com/poiesic/graphrag/storage/badger"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "graphrag",
		Usage: "Hybrid graph and vector retrieval over text documents",
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
				Name:   "init",
				Usage:  "Create an empty retrieval database",
				Action: initCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
				},
			},
			{
				Name:      "ingest",
				Usage:     "Ingest documents into the knowledge graph and chunk store",
				ArgsUsage: "FILE [FILE ...]",
				Action:    ingestCommand,
				Flags: append(aiFlags(),
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Maximum chunk size in characters",
						Value: 1000,
					},
				),
			},
			{
				Name:      "query",
				Usage:     "Retrieve evidence for a query without answer generation",
				ArgsUsage: "QUERY",
				Action:    queryCommand,
				Flags: append(aiFlags(),
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
				),
			},
			{
				Name:      "ask",
				Usage:     "Retrieve evidence and generate a grounded answer",
				ArgsUsage: "QUERY",
				Action:    askCommand,
				Flags: append(aiFlags(),
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
				),
			},
			{
				Name:   "graph",
				Usage:  "Show the stored knowledge graph",
				Action: graphCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "edges",
						Usage: "List every relation instead of a summary",
					},
				},
			},
			{
				Name:   "reindex",
				Usage:  "Re-embed all stored chunks with new embeddings",
				Action: reindexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N chunks",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// aiFlags returns the flags shared by commands that talk to the AI services.
func aiFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "host",
			Usage: "Host URL for both embedding and chat services",
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL (overrides --host)",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
		},
		&cli.StringFlag{
			Name:  "chat-host",
			Usage: "Chat service host URL (overrides --host)",
		},
		&cli.StringFlag{
			Name:  "chat-model",
			Usage: "Chat model name for extraction and answer generation",
		},
	}
}

// aiConfigFromFlags builds an AI config from the shared flags, leaving
// defaults in place for anything not given.
func aiConfigFromFlags(c *cli.Context) (*ai.Config, error) {
	var opts []ai.ConfigOption
	if host := c.String("host"); host != "" {
		opts = append(opts, ai.WithHost(host))
	}
	if host := c.String("embedding-host"); host != "" {
		opts = append(opts, ai.WithEmbeddingHost(host))
	}
	if host := c.String("chat-host"); host != "" {
		opts = append(opts, ai.WithChatHost(host))
	}
	if model := c.String("embedding-model"); model != "" {
		opts = append(opts, ai.WithEmbeddingModel(model))
	}
	if model := c.String("chat-model"); model != "" {
		opts = append(opts, ai.WithChatModel(model))
	}

	config := ai.NewConfig(opts...)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}
	return config, nil
}

func initCommand(c *cli.Context) error {
	ctx := context.Background()

	dbPath := c.String("db")

	backend, err := badger.OpenBackend(dbPath, false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo := badger.NewGraphRepository(backend)
	defer repo.Close()

	if err := repo.InitGraph(ctx); err != nil {
		return fmt.Errorf("failed to initialize graph: %w", err)
	}

	fmt.Printf("Initialized database at %s\n", dbPath)
	return nil
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.NArg() == 0 {
		return fmt.Errorf("at least one input file is required")
	}

	chunkSize := c.Int("chunk-size")
	if chunkSize <= 0 {
		return fmt.Errorf("chunk-size must be greater than 0")
	}

	config, err := aiConfigFromFlags(c)
	if err != nil {
		return err
	}

	engine, err := graphrag.NewEngine(c.String("db"), graphrag.WithAIConfig(config))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer engine.Close()

	pipeline, err := engine.NewIngestionPipeline(ingestion.WithChunkSize(chunkSize))
	if err != nil {
		return fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}
	defer pipeline.Release()

	for _, path := range c.Args().Slice() {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		result, err := pipeline.IngestDocument(ctx, path, string(content))
		if err != nil {
			return fmt.Errorf("failed to ingest %s: %w", path, err)
		}

		fmt.Printf("%s: %d chunks, %d entities, %d relations (%s)\n",
			path, result.Chunks, result.Entities, result.Relations,
			result.Elapsed.Round(time.Millisecond))
	}

	snapshot := engine.GraphStore().Snapshot()
	fmt.Printf("Graph now holds %d entities and %d relations\n",
		snapshot.NodeCount(), snapshot.EdgeCount())
	return nil
}

func queryCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("a query is required")
	}

	config, err := aiConfigFromFlags(c)
	if err != nil {
		return err
	}

	engine, err := graphrag.NewEngine(c.String("db"), graphrag.WithAIConfig(config))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer engine.Close()

	orchestrator, err := engine.NewOrchestrator()
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}
	defer orchestrator.Release()

	result, err := orchestrator.Retrieve(ctx, query)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	fmt.Printf("Category: %s (score %.3f)\n", result.Category, result.Score)

	for _, match := range result.Matches {
		fmt.Printf("Entity: %s\n", match.Entity)
		for _, edge := range match.OneHop {
			fmt.Printf("  %s -[%s]-> %s\n", edge.Source, edge.Relation, edge.Target)
		}
		if len(match.MultiHop) > 0 {
			fmt.Printf("  Related: %s\n", strings.Join(match.MultiHop, ", "))
		}
	}
	for _, kw := range result.Keywords {
		fmt.Printf("Keyword: %s\n", kw.Keyword)
		if len(kw.Nodes) > 0 {
			fmt.Printf("  Nodes: %s\n", strings.Join(kw.Nodes, ", "))
		}
		for _, edge := range kw.Edges {
			fmt.Printf("  %s -[%s]-> %s\n", edge.Source, edge.Relation, edge.Target)
		}
	}

	for i, text := range result.Contexts {
		fmt.Printf("--- context %d ---\n%s\n", i+1, text)
	}
	return nil
}

func askCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("a query is required")
	}

	config, err := aiConfigFromFlags(c)
	if err != nil {
		return err
	}

	engine, err := graphrag.NewEngine(c.String("db"), graphrag.WithAIConfig(config))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer engine.Close()

	answer, err := engine.Answer(ctx, query)
	if err != nil {
		return fmt.Errorf("answer generation failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Category: %s\n", answer.Result.Category)
	fmt.Fprintf(os.Stderr, "Contexts: %d, graph matches: %d\n\n",
		len(answer.Result.Contexts), len(answer.Result.Matches))

	fmt.Println(answer.Response)
	return nil
}

func graphCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo := badger.NewGraphRepository(backend)
	defer repo.Close()

	graph, err := repo.LoadGraph(ctx)
	if err != nil {
		return fmt.Errorf("failed to load graph: %w", err)
	}

	fmt.Printf("Entities: %d, relations: %d\n", len(graph.Nodes), len(graph.Edges))

	if c.Bool("edges") {
		for _, edge := range graph.Edges {
			fmt.Printf("%s -[%s]-> %s\n", edge.Source, edge.Relation, edge.Target)
		}
	}
	return nil
}

func reindexCommand(c *cli.Context) error {
	ctx := context.Background()

	dbPath := c.String("db")

	backend, err := badger.OpenBackend(dbPath, false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo := badger.NewChunkRepository(backend)
	defer repo.Close()

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	reindexConfig := &reindex.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}

	if reindexConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reindexConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reindexConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	reindexer, err := reindex.NewReindexer(repo, embedder, reindexConfig, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to create reindexer: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Database: %s\n", dbPath)
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	if err := reindexer.Run(ctx); err != nil {
		return fmt.Errorf("reindexing failed: %w", err)
	}

	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

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

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
