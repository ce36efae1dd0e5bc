// Command cluso-relations converts INSPIRE records into a property graph and
// exports it as CSV batches with Cypher loader scripts.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dd0wney/cluso-relations/pkg/builders"
	"github.com/dd0wney/cluso-relations/pkg/config"
	"github.com/dd0wney/cluso-relations/pkg/consolidate"
	"github.com/dd0wney/cluso-relations/pkg/export"
	"github.com/dd0wney/cluso-relations/pkg/loader"
	"github.com/dd0wney/cluso-relations/pkg/logging"
	"github.com/dd0wney/cluso-relations/pkg/metrics"
	"github.com/dd0wney/cluso-relations/pkg/pipeline"
	"github.com/dd0wney/cluso-relations/pkg/publish"
	"github.com/dd0wney/cluso-relations/pkg/source"
)

type cliFlags struct {
	configPath  string
	source      string
	input       string
	out         string
	categories  string
	workers     int
	batchSize   int
	load        bool
	publish     bool
	tui         bool
	metricsFile string
	logLevel    string
}

func parseFlags(args []string) (*flag.FlagSet, *cliFlags, error) {
	f := &cliFlags{}
	fs := flag.NewFlagSet("cluso-relations", flag.ContinueOnError)
	fs.StringVar(&f.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&f.source, "source", source.KindJSONLines, "Record source: jsonl or postgres")
	fs.StringVar(&f.input, "input", "", "JSON lines directory or Postgres connection string")
	fs.StringVar(&f.out, "out", config.DefaultOutputDir, "Output directory (nodes/ and relations/ are created below)")
	fs.StringVar(&f.categories, "categories", "", "Comma-separated categories (default: all)")
	fs.IntVar(&f.workers, "workers", 1, "Categories consolidated in parallel")
	fs.IntVar(&f.batchSize, "batch-size", 0, "Rows per loader transaction (0 = one per statement)")
	fs.BoolVar(&f.load, "load", false, "Run the loader scripts against Neo4j")
	fs.BoolVar(&f.publish, "publish", false, "Upload the export to S3")
	fs.BoolVar(&f.tui, "tui", false, "Show an interactive progress view")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return fs, f, nil
}

// applyFlags overrides cfg with the flags given on the command line only, so
// that file and environment settings survive flag defaults.
func applyFlags(fs *flag.FlagSet, f *cliFlags, cfg *config.Config) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "source":
			cfg.Source.Kind = f.source
		case "input":
			cfg.Source.Location = f.input
		case "out":
			cfg.Output.Dir = f.out
		case "categories":
			cfg.SetCategories(f.categories)
		case "workers":
			cfg.Workers = f.workers
		case "batch-size":
			cfg.Output.BatchSize = f.batchSize
		case "load":
			cfg.Neo4j.Enabled = f.load
		case "publish":
			cfg.S3.Enabled = f.publish
		case "metrics-file":
			cfg.MetricsFile = f.metricsFile
		case "log-level":
			cfg.LogLevel = f.logLevel
		}
	})
}

func loadConfig(args []string) (*config.Config, *cliFlags, error) {
	fs, f, err := parseFlags(args)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, nil, err
	}
	applyFlags(fs, f, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, f, nil
}

func main() {
	cfg, f, err := loadConfig(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "cluso-relations: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, f.tui); err != nil {
		fmt.Fprintf(os.Stderr, "cluso-relations: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config, quiet bool) (logging.Logger, io.Closer, error) {
	if cfg.LogFile != "" {
		return logging.OpenFile(cfg.LogFile, cfg.LogLevel)
	}
	if quiet {
		// The progress view owns the terminal.
		return logging.NewNopLogger(), io.NopCloser(nil), nil
	}
	return logging.New(cfg.LogLevel), io.NopCloser(nil), nil
}

func run(ctx context.Context, cfg *config.Config, useTUI bool) (retErr error) {
	logger, closer, err := newLogger(cfg, useTUI)
	if err != nil {
		return err
	}
	defer closer.Close()

	start := time.Now()
	reg := metrics.NewRegistry()
	reg.StartRun(start)
	defer func() {
		reg.FinishRun(retErr)
		if cfg.MetricsFile == "" {
			return
		}
		if err := reg.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Error("metrics not written", logging.Path(cfg.MetricsFile), logging.Error(err))
		}
	}()

	logger.Info("run started", logging.Any("config", cfg.Redacted()))

	src, err := source.Open(ctx, cfg.Source.Kind, cfg.Source.Location)
	if err != nil {
		return err
	}
	defer src.Close()

	p := &pipeline.Pipeline{
		Source:     src,
		Registries: builders.Registries(),
		Categories: cfg.Categories,
		Workers:    cfg.Workers,
		Logger:     logger,
		Metrics:    reg,
	}

	var session *consolidate.Session
	if useTUI {
		session, err = runWithProgress(ctx, p)
	} else {
		session, err = p.Run(ctx)
	}
	if err != nil {
		return err
	}

	exporter := export.NewExporter(cfg.Output.NodesDir(), cfg.Output.RelationsDir())
	exporter.BatchSize = cfg.Output.BatchSize
	exporter.UIDIndexes = cfg.Output.UIDIndexes
	nodes, relations, err := p.Export(ctx, session, exporter)
	if err != nil {
		return err
	}

	if cfg.Neo4j.Enabled {
		if err := load(ctx, cfg, logger, exporter); err != nil {
			return err
		}
	}
	if cfg.S3.Enabled {
		if err := publishRun(ctx, cfg, logger, start, exporter); err != nil {
			return err
		}
	}

	logger.Info("run finished",
		logging.Int("node_rows", nodes.Rows),
		logging.Int("relation_rows", relations.Rows),
		logging.Int("dangling", relations.Dropped),
		logging.Duration("elapsed", time.Since(start)))
	if !useTUI {
		fmt.Printf("exported %d nodes in %d files and %d relations in %d files to %s\n",
			nodes.Rows, len(nodes.Files), relations.Rows, len(relations.Files), cfg.Output.Dir)
	}
	return nil
}

func load(ctx context.Context, cfg *config.Config, logger logging.Logger, exporter *export.Exporter) error {
	client, err := loader.New(ctx, loader.Options{
		URI:      cfg.Neo4j.URI,
		User:     cfg.Neo4j.User,
		Password: cfg.Neo4j.Password,
		Database: cfg.Neo4j.Database,
	}, logger)
	if err != nil {
		return err
	}
	defer client.Close(ctx)
	return client.Load(ctx, exporter.NodesDir, exporter.RelationsDir)
}

func publishRun(ctx context.Context, cfg *config.Config, logger logging.Logger, start time.Time, exporter *export.Exporter) error {
	pub, err := publish.New(ctx, publish.Options{
		Bucket:          cfg.S3.Bucket,
		Prefix:          cfg.S3.Prefix,
		Region:          cfg.S3.Region,
		Endpoint:        cfg.S3.Endpoint,
		PathStyle:       cfg.S3.PathStyle,
		AccessKeyID:     cfg.S3.AccessKeyID,
		SecretAccessKey: cfg.S3.SecretAccessKey,
	}, logger)
	if err != nil {
		return err
	}
	_, err = pub.Publish(ctx, publish.RunID(start), map[string]string{
		"nodes":     exporter.NodesDir,
		"relations": exporter.RelationsDir,
	})
	return err
}
