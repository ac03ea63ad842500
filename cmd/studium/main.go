// Copyright 2025 Studium Labs
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
	"strconv"
	"strings"
	"time"

	"github.com/studium-hq/studium"
	"github.com/studium-hq/studium/ai"
	"github.com/studium-hq/studium/core"
	"github.com/studium-hq/studium/ingestion"
	"github.com/studium-hq/studium/reembed"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "studium",
		Usage: "Knowledge source ingestion and search for course material",
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
				Name:   "add",
				Usage:  "Add a knowledge source and wait for ingestion to finish",
				Action: addCommand,
				Flags: append(databaseFlags(), aiFlags(
					&cli.StringFlag{
						Name:     "course",
						Aliases:  []string{"c"},
						Usage:    "Course the source belongs to",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "title",
						Usage:    "Human-readable source title",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "kind",
						Usage: "Source kind (text, url, file)",
						Value: "text",
					},
					&cli.StringFlag{
						Name:     "origin",
						Usage:    "Source origin: inline text, URL, or file path",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:  "meta",
						Usage: "Source metadata as key=value pairs",
					},
					&cli.DurationFlag{
						Name:  "wait-timeout",
						Usage: "How long to wait for ingestion to finish",
						Value: 5 * time.Minute,
					},
				)...),
			},
			{
				Name:      "get",
				Usage:     "Show a source and its ingestion status",
				Action:    getCommand,
				ArgsUsage: "<source-id>",
				Flags:     databaseFlags(),
			},
			{
				Name:   "list",
				Usage:  "List the sources of a course, newest first",
				Action: listCommand,
				Flags: append(databaseFlags(),
					&cli.StringFlag{
						Name:     "course",
						Aliases:  []string{"c"},
						Usage:    "Course to list",
						Required: true,
					},
				),
			},
			{
				Name:      "delete",
				Usage:     "Delete a source and its segment embeddings",
				Action:    deleteCommand,
				ArgsUsage: "<source-id>",
				Flags:     databaseFlags(),
			},
			{
				Name:      "search",
				Usage:     "Search ingested segments by semantic similarity",
				Action:    searchCommand,
				ArgsUsage: "<query>",
				Flags: append(databaseFlags(), aiFlags(
					&cli.IntFlag{
						Name:  "max-hits",
						Usage: "Maximum number of hits to return",
						Value: 5,
					},
				)...),
			},
			{
				Name:   "sweep",
				Usage:  "Requeue sources stuck in PENDING or PROCESSING",
				Action: sweepCommand,
				Flags: append(databaseFlags(), aiFlags(
					&cli.DurationFlag{
						Name:  "older-than",
						Usage: "Minimum age before a source counts as stalled",
						Value: ingestion.DefaultStalledThreshold,
					},
					&cli.DurationFlag{
						Name:  "wait-timeout",
						Usage: "How long to wait for requeued sources to finish",
						Value: 5 * time.Minute,
					},
				)...),
			},
			{
				Name:   "reembed",
				Usage:  "Reembed the segments of a course with new embeddings",
				Action: reembedCommand,
				Flags: append(databaseFlags(), aiFlags(
					&cli.StringFlag{
						Name:     "course",
						Aliases:  []string{"c"},
						Usage:    "Course to reembed",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of segments to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N segments",
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
				)...),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func databaseFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "tenant",
			Aliases:  []string{"t"},
			Usage:    "Tenant that owns the data",
			Required: true,
		},
	}
}

func aiFlags(extra ...cli.Flag) []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
	}
	return append(flags, extra...)
}

func openDatabase(c *cli.Context) (*studium.Database, error) {
	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	db, err := studium.NewDatabase(c.String("db"), studium.WithAIConfig(aiConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func parseSourceID(c *cli.Context) (core.ID, error) {
	if c.NArg() < 1 {
		return 0, fmt.Errorf("source id argument is required")
	}
	id, err := strconv.ParseUint(c.Args().First(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid source id %q: %w", c.Args().First(), err)
	}
	return core.ID(id), nil
}

func parseMetadata(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	metadata := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid metadata pair %q: expected key=value", pair)
		}
		metadata[key] = value
	}
	return metadata, nil
}

func addCommand(c *cli.Context) error {
	kind, err := core.ParseSourceKind(c.String("kind"))
	if err != nil {
		return err
	}

	metadata, err := parseMetadata(c.StringSlice("meta"))
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		return fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}
	defer pipeline.Release()

	ctx := context.Background()
	tenantID := c.String("tenant")

	source, err := pipeline.CreateSource(ctx, ingestion.CreateSourceRequest{
		TenantID: tenantID,
		CourseID: c.String("course"),
		Title:    c.String("title"),
		Kind:     kind,
		Origin:   c.String("origin"),
		Metadata: metadata,
	})
	if err != nil {
		return fmt.Errorf("failed to create source: %w", err)
	}

	fmt.Printf("Created source %d (%s)\n", source.Id, source.Status)

	final, err := waitForSource(ctx, pipeline, tenantID, source.Id, c.Duration("wait-timeout"))
	if err != nil {
		return err
	}

	printSource(final)
	if final.Status == core.StatusFailed {
		return fmt.Errorf("ingestion failed")
	}
	return nil
}

// waitForSource polls until the source reaches a terminal status.
func waitForSource(ctx context.Context, pipeline *ingestion.Pipeline, tenantID string, id core.ID, timeout time.Duration) (*core.Source, error) {
	deadline := time.Now().Add(timeout)
	for {
		source, err := pipeline.GetSource(ctx, tenantID, id)
		if err != nil {
			return nil, fmt.Errorf("failed to poll source: %w", err)
		}
		if source.Status.Terminal() {
			return source, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("source %d still %s after %v", id, source.Status, timeout)
		}
		time.Sleep(250 * time.Millisecond)
	}
}

func getCommand(c *cli.Context) error {
	id, err := parseSourceID(c)
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	source, err := db.SourceRepository().GetSource(context.Background(), c.String("tenant"), id)
	if err != nil {
		return err
	}

	printSource(source)
	return nil
}

func listCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	sources, err := db.SourceRepository().ListCourseSources(context.Background(), c.String("tenant"), c.String("course"))
	if err != nil {
		return err
	}

	fmt.Printf("Found %d sources\n", len(sources))
	for _, source := range sources {
		chunks := "-"
		if source.ChunkCount != nil {
			chunks = strconv.Itoa(*source.ChunkCount)
		}
		fmt.Printf("%d: %q [%s] %s chunks=%s created=%s\n",
			source.Id, source.Title, source.Status, source.Kind, chunks,
			source.CreatedAt.Format(time.RFC3339))
	}
	return nil
}

func deleteCommand(c *cli.Context) error {
	id, err := parseSourceID(c)
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.SourceRepository().DeleteSource(context.Background(), c.String("tenant"), id); err != nil {
		return err
	}

	fmt.Printf("Deleted source %d\n", id)
	return nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("query argument is required")
	}
	query := strings.Join(c.Args().Slice(), " ")

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	searcher, err := db.NewSearcher()
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	hits, err := searcher.FindSegments(context.Background(), c.String("tenant"), query, c.Int("max-hits"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	fmt.Printf("Found %d hits\n", len(hits))
	for i, hit := range hits {
		fmt.Printf("%d: %q (source %d %q, segment %d)[%0.3f]\n",
			i, snippet(hit.SegmentText, 80), hit.Source.Id, hit.Source.Title,
			hit.SegmentIndex, hit.Score)
	}
	return nil
}

func sweepCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		return fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}
	defer pipeline.Release()

	ctx := context.Background()

	requeued, err := pipeline.SweepStalled(ctx, c.Duration("older-than"))
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	fmt.Printf("Requeued %d stalled sources\n", requeued)
	if requeued == 0 {
		return nil
	}

	// Give the requeued sources a chance to finish before the process exits
	deadline := time.Now().Add(c.Duration("wait-timeout"))
	for time.Now().Before(deadline) {
		pending, err := db.SourceRepository().ListSourcesByStatus(ctx, core.StatusPending, time.Now())
		if err != nil {
			return err
		}
		processing, err := db.SourceRepository().ListSourcesByStatus(ctx, core.StatusProcessing, time.Now())
		if err != nil {
			return err
		}
		if len(pending) == 0 && len(processing) == 0 {
			fmt.Println("All requeued sources finished")
			return nil
		}
		time.Sleep(250 * time.Millisecond)
	}

	return fmt.Errorf("requeued sources still in flight after %v", c.Duration("wait-timeout"))
}

func reembedCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	config := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}

	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	reembedder := db.NewReembedder(config, os.Stderr)

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	if err := reembedder.Run(context.Background(), c.String("tenant"), c.String("course")); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}

	return nil
}

func printSource(source *core.Source) {
	fmt.Printf("Source %d\n", source.Id)
	fmt.Printf("  Tenant:  %s\n", source.TenantId)
	fmt.Printf("  Course:  %s\n", source.CourseId)
	fmt.Printf("  Title:   %s\n", source.Title)
	fmt.Printf("  Kind:    %s\n", source.Kind)
	fmt.Printf("  Status:  %s\n", source.Status)
	if source.ChunkCount != nil {
		fmt.Printf("  Chunks:  %d\n", *source.ChunkCount)
	}
	if source.ErrorMessage != nil {
		fmt.Printf("  Error:   %s\n", *source.ErrorMessage)
	}
	for key, value := range source.Metadata {
		fmt.Printf("  Meta:    %s=%s\n", key, value)
	}
	fmt.Printf("  Created: %s\n", source.CreatedAt.Format(time.RFC3339))
	fmt.Printf("  Updated: %s\n", source.UpdatedAt.Format(time.RFC3339))
}

// snippet truncates on a rune boundary so multi-byte text stays valid.
func snippet(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
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
