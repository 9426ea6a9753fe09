// Package main is the vecshard CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/vecshard/internal/cli"
	"github.com/hyperjump/vecshard/internal/config"
	"github.com/hyperjump/vecshard/internal/embedding"
	"github.com/hyperjump/vecshard/internal/models"
	"github.com/hyperjump/vecshard/internal/server"
	"github.com/hyperjump/vecshard/internal/store"
	"github.com/hyperjump/vecshard/internal/watcher"
	"github.com/hyperjump/vecshard/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const (
	defaultConfigPath = "/usr/local/etc/vecshard/config.yaml"
	defaultServerURL  = "http://localhost:8080"
)

// loadConfig loads config from path. When path is the default, config.yaml in
// the current directory wins if present (for development), and a missing
// default file yields pure defaults so the server starts without any config.
// Returns the config and the path that was actually loaded ("" for defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, err := os.Getwd(); err == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return config.Default(), "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stdout)
		os.Exit(1)
	}
	command, args := os.Args[1], os.Args[2:]
	var err error
	switch command {
	case "init":
		err = runInit(args, os.Stdout)
	case "server":
		err = runServer(args)
	case "upsert":
		err = runUpsert(args, os.Stdout)
	case "get":
		err = runGet(args, os.Stdout)
	case "delete":
		err = runDelete(args, os.Stdout)
	case "search":
		err = runSearch(args, os.Stdout)
	case "status":
		err = runStatus(args, os.Stdout)
	case "version", "--version", "-v":
		fmt.Printf("vecshard version %s\n", version)
	case "help", "--help", "-h":
		printUsage(os.Stdout)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage(os.Stdout)
		os.Exit(1)
	}
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServer(args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	watchConfig := fs.Bool("watch-config", false, "reload debug and search settings when the config file changes")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	debugMode := cfg.Debug || *debug
	logger, level, err := utils.NewLeveledLogger(debugMode)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode))

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize components: %w", err)
	}
	defer components.Close()

	srv := server.NewServer(components.Store, components.Embedder, cfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if *watchConfig {
		if resolvedConfigPath == "" {
			logger.Warn("--watch-config ignored: running on built-in defaults")
		} else {
			r := &reloader{
				path:       resolvedConfigPath,
				debugFlag:  *debug,
				shardCount: cfg.Store.ShardCount,
				level:      level,
				srv:        srv,
				logger:     logger,
			}
			w := watcher.NewWatcher(resolvedConfigPath, func(string) { r.reload() }, watcher.WithLogger(logger))
			if err := w.Start(ctx); err != nil {
				return fmt.Errorf("failed to watch config: %w", err)
			}
			defer w.Stop()
		}
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigChan:
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}

	logger.Info("Shutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return srv.Stop(shutdownCtx)
}

// reloader applies the hot-reloadable subset of a changed config file.
type reloader struct {
	path       string
	debugFlag  bool
	shardCount int
	level      zap.AtomicLevel
	srv        *server.Server
	logger     *zap.Logger
}

func (r *reloader) reload() {
	cfg, err := config.Load(r.path)
	if err != nil {
		r.logger.Warn("config reload failed; keeping previous settings", zap.String("path", r.path), zap.Error(err))
		return
	}
	utils.SetDebug(r.level, cfg.Debug || r.debugFlag)
	r.srv.UpdateSearchConfig(cfg.Search)
	if cfg.Store.ShardCount != r.shardCount {
		r.logger.Warn("shard_count changes require a restart",
			zap.Int("running", r.shardCount),
			zap.Int("configured", cfg.Store.ShardCount))
	}
	r.logger.Info("config reloaded",
		zap.String("path", r.path),
		zap.Bool("debug", cfg.Debug || r.debugFlag),
		zap.Int("default_k", cfg.Search.DefaultK),
		zap.Int("max_k", cfg.Search.MaxK))
}

// Components holds initialized services.
type Components struct {
	Store    *store.Store
	Embedder embedding.Embedder
}

func (c *Components) Close() {
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	embedder, err := initializeEmbedder(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	st, err := store.New(cfg.Store.ShardCount,
		store.WithLogger(logger),
		store.WithExactSearch(cfg.Store.ExactSearch))
	if err != nil {
		_ = embedder.Close()
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	logger.Info("store initialized",
		zap.Int("shards", cfg.Store.ShardCount),
		zap.Bool("exact_search", cfg.Store.ExactSearch))
	return &Components{Store: st, Embedder: embedder}, nil
}

// initializeEmbedder builds the configured embedder. An ONNX model that cannot
// be loaded falls back to DFT so the server still comes up.
func initializeEmbedder(cfg *config.Config, logger *zap.Logger) (embedding.Embedder, error) {
	opts := embedding.Options{
		Provider:   cfg.Embedding.Provider,
		ModelPath:  cfg.Embedding.ModelPath,
		Dimensions: cfg.Embedding.Dimensions,
		MaxTokens:  cfg.Embedding.MaxTokens,
		CacheSize:  cfg.Embedding.CacheSize,
	}
	e, err := embedding.New(opts)
	if err == nil {
		return e, nil
	}
	if embedding.Provider(opts.Provider) != embedding.ProviderONNX {
		return nil, err
	}
	logger.Warn("onnx embedder unavailable, falling back to dft",
		zap.String("model_path", opts.ModelPath),
		zap.Error(err))
	cfg.Embedding.Provider = string(embedding.ProviderDFT)
	cfg.Embedding.Dimensions = embedding.DefaultDFTDimensions
	opts.Provider = cfg.Embedding.Provider
	opts.Dimensions = cfg.Embedding.Dimensions
	return embedding.New(opts)
}

func runUpsert(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("upsert", flag.ContinueOnError)
	serverURL := fs.String("server", defaultServerURL, "server URL")
	vector := fs.String("vector", "", `explicit vector, e.g. "0.1,0.2,0.3" (instead of a statement)`)
	if err := fs.Parse(searchArgsReorder(fs, args)); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("usage: vecshard upsert [--server URL] [--vector \"1,2,3\"] <id> <statement...>")
	}
	input := models.VectorInput{ID: fs.Arg(0), Statement: buildSearchQuery(fs.Args()[1:])}
	if *vector != "" {
		v, err := utils.ParseVector(*vector)
		if err != nil {
			return err
		}
		input.Vector = v
	}
	if err := input.Validate(); err != nil {
		return err
	}
	var resp models.UpsertResponse
	if err := newAPIClient(*serverURL).do(http.MethodPost, "/api/v1/vectors", input, &resp); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "Upserted %s (dimension %d)\n", resp.ID, resp.Dimension)
	return err
}

func runGet(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	serverURL := fs.String("server", defaultServerURL, "server URL")
	outputFormat := fs.String("output", "text", "output format: text or json")
	if err := fs.Parse(searchArgsReorder(fs, args)); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: vecshard get [--server URL] <id>")
	}
	format, err := cli.ParseOutputFormat(*outputFormat, cli.OutputText, cli.OutputJSON)
	if err != nil {
		return err
	}
	var resp models.VectorResponse
	if err := newAPIClient(*serverURL).do(http.MethodGet, "/api/v1/vectors/"+escapeID(fs.Arg(0)), nil, &resp); err != nil {
		return err
	}
	return cli.WriteVector(out, &resp, format)
}

func runDelete(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	serverURL := fs.String("server", defaultServerURL, "server URL")
	if err := fs.Parse(searchArgsReorder(fs, args)); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: vecshard delete [--server URL] <id>")
	}
	id := fs.Arg(0)
	if err := newAPIClient(*serverURL).do(http.MethodDelete, "/api/v1/vectors/"+escapeID(id), nil, nil); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "Deleted: %s\n", id)
	return err
}

// printSearchUsage prints search subcommand usage.
func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: vecshard search [flags] <statement>\n\n")
	fmt.Fprintf(fs.Output(), "The statement is all remaining arguments joined by spaces. Multi-word statements work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  vecshard search the quick brown fox
  vecshard search --k 3 "the quick brown fox"
  vecshard search --vector 1,0,0 --k 5
  vecshard search --output compact hello world
`)
}

// buildSearchQuery joins all positional args with spaces so multi-word
// statements work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchArgsReorder moves flags (and their values) ahead of positional
// arguments so "search quick --k 3 fox" parses like "search --k 3 quick fox".
// Positionals keep their relative order; everything after "--" is positional.
func searchArgsReorder(fs *flag.FlagSet, args []string) []string {
	flags := make([]string, 0, len(args))
	positionals := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			flags = append(flags, a)
			positionals = append(positionals, args[i+1:]...)
			break
		}
		if len(a) < 2 || a[0] != '-' {
			positionals = append(positionals, a)
			continue
		}
		flags = append(flags, a)
		name := strings.TrimLeft(a, "-")
		if strings.Contains(name, "=") {
			continue
		}
		if f := fs.Lookup(name); f != nil && !isBoolFlag(f) && i+1 < len(args) {
			i++
			flags = append(flags, args[i])
		}
	}
	return append(flags, positionals...)
}

func isBoolFlag(f *flag.Flag) bool {
	b, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}

func runSearch(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	serverURL := fs.String("server", defaultServerURL, "server URL")
	k := fs.Int("k", 0, "number of results (0 = server default)")
	vector := fs.String("vector", "", `query by explicit vector, e.g. "0.1,0.2,0.3"`)
	outputFormat := fs.String("output", "text", "output format: text (human-readable), compact (one match per line), or json (parseable)")
	fs.Usage = func() { printSearchUsage(fs) }
	if err := fs.Parse(searchArgsReorder(fs, args)); err != nil {
		return err
	}
	format, err := cli.ParseOutputFormat(*outputFormat, cli.OutputText, cli.OutputCompact, cli.OutputJSON)
	if err != nil {
		return fmt.Errorf("%w; use text, compact, or json", err)
	}
	if *k < 0 {
		return errors.New("k must be positive")
	}

	query := models.SearchQuery{Statement: buildSearchQuery(fs.Args()), K: *k}
	if *vector != "" {
		v, err := utils.ParseVector(*vector)
		if err != nil {
			return err
		}
		query.Vector = v
	}
	if err := query.Validate(); err != nil {
		printSearchUsage(fs)
		return err
	}

	var resp models.SearchResponse
	if err := newAPIClient(*serverURL).do(http.MethodPost, "/api/v1/search", query, &resp); err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	return cli.WriteSearchResults(out, &resp, format)
}

func runStatus(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	serverURL := fs.String("server", defaultServerURL, "server URL")
	outputFormat := fs.String("output", "text", "output format: text or json")
	if err := fs.Parse(args); err != nil {
		return err
	}
	format, err := cli.ParseOutputFormat(*outputFormat, cli.OutputText, cli.OutputJSON)
	if err != nil {
		return fmt.Errorf("%w; use text or json", err)
	}
	var resp models.StatusResponse
	if err := newAPIClient(*serverURL).do(http.MethodGet, "/api/v1/status", nil, &resp); err != nil {
		return fmt.Errorf("status failed: %w", err)
	}
	return cli.WriteStatus(out, &resp, format)
}

// runInit writes the default config so it can be edited before the first start.
func runInit(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	configPath := fs.String("config", defaultConfigPath, "where to write the config file")
	force := fs.Bool("force", false, "overwrite an existing config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := os.Stat(*configPath); err == nil && !*force {
		return fmt.Errorf("%s already exists; use --force to overwrite", *configPath)
	}
	if err := config.Save(*configPath, config.Default()); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "Wrote default config to %s\n", *configPath)
	return err
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `vecshard - In-memory sharded vector store

Usage:
  vecshard init [--config path] [--force]   Write the default config file
  vecshard server [flags]                   Start the HTTP server
  vecshard upsert [flags] <id> <statement>  Embed a statement (or --vector) and store it
  vecshard get [flags] <id>                 Show a stored vector
  vecshard delete [flags] <id>              Delete a vector
  vecshard search [flags] <statement>       Find the nearest vectors
  vecshard status [flags]                   Show shard counts and dimensions
  vecshard version                          Show version
  vecshard help                             Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/vecshard/config.yaml)
  --debug            Enable debug logging
  --watch-config     Reload debug and search settings when the config file changes

Client Flags (upsert, get, delete, search, status):
  --server string    Server URL (default: http://localhost:8080)
  --vector string    Comma separated vector instead of a statement (upsert, search)
  --k int            Number of results (search; default from server config)
  --output string    text, compact (search only), or json

Examples:
  vecshard init --config ./config.yaml
  vecshard server --watch-config
  vecshard upsert doc-1 the quick brown fox
  vecshard upsert --vector 1,0,0 doc-2
  vecshard search --k 3 quick fox
  vecshard search --output json "quick fox"
  vecshard delete doc-1
  vecshard status --output json`)
}
