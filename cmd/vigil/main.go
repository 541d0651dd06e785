package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/af-corp/vigil/internal/config"
	"github.com/af-corp/vigil/internal/engine"
	"github.com/af-corp/vigil/internal/guard"
	"github.com/af-corp/vigil/internal/types"
)

var version = "dev"

func main() {
	configDir := flag.String("config", "", "path to configuration directory (empty uses built-in defaults)")
	source := flag.String("source", types.SourceUser, "origin of the input: user, tool, or retrieval")
	file := flag.String("file", "", "read the input from a file instead of arguments")
	stream := flag.Bool("stream", false, "scan stdin line by line, one JSON decision per line")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg := config.DefaultConfig()
	var loader *config.Loader
	if *configDir != "" {
		loader = config.NewLoader(*configDir, logger)
		if err := loader.Load(); err != nil {
			logger.Error("failed to load configuration", "error", err)
			os.Exit(1)
		}
		cfg = loader.Config()
	}

	logger = newLogger(cfg.Telemetry)
	slog.SetDefault(logger)

	eng, err := engine.BuildFromConfig(cfg, nil)
	if err != nil {
		logger.Error("failed to build scan engine", "error", err)
		os.Exit(1)
	}

	if *stream {
		runStream(loader, eng, *source)
		return
	}

	text, err := readInput(*file, flag.Args())
	if err != nil {
		logger.Error("failed to read input", "error", err)
		os.Exit(1)
	}

	d := eng.Scan(context.Background(), []types.Input{{Source: *source, Content: text}})

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		logger.Error("failed to encode decision", "error", err)
		os.Exit(1)
	}
	if d.Action == guard.ActionBlock {
		os.Exit(2)
	}
}

// runStream scans stdin one line at a time. With a config directory given,
// edits to vigil.yaml rebuild the engine between lines.
func runStream(loader *config.Loader, eng *engine.Engine, source string) {
	if loader != nil {
		if err := loader.Watch(); err != nil {
			slog.Warn("failed to start config watcher", "error", err)
		}
		loader.OnReload(func() {
			newEng, err := engine.BuildFromConfig(loader.Config(), nil)
			if err != nil {
				slog.Error("failed to rebuild scan engine", "error", err)
				return
			}
			*eng = *newEng
			slog.Info("scan engine reloaded")
		})
	}

	slog.Info("scanning stdin", "source", source, "version", version)

	anyBlocked := false
	enc := json.NewEncoder(os.Stdout)
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		d := eng.Scan(context.Background(), []types.Input{{Source: source, Content: line}})
		if d.Action == guard.ActionBlock {
			anyBlocked = true
		}
		if err := enc.Encode(d); err != nil {
			slog.Error("failed to encode decision", "error", err)
			os.Exit(1)
		}
	}
	if err := scanner.Err(); err != nil {
		slog.Error("failed to read stdin", "error", err)
		os.Exit(1)
	}
	if anyBlocked {
		os.Exit(2)
	}
}

// readInput resolves the one-shot input: a file, the remaining arguments
// joined with spaces, or all of stdin.
func readInput(file string, args []string) (string, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func newLogger(cfg config.TelemetryConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(cfg.LogFormat) == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
