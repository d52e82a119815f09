// Command graphtran translates exported graph dumps into source code through
// a chat-completion provider. Each argument is a file containing one graph
// dump; the translated units are written as JSON to stdout.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/graphtran/graphtran"
	"github.com/graphtran/graphtran/config"
	"github.com/graphtran/graphtran/promptmgr"
	"github.com/graphtran/graphtran/promptreg"
	"github.com/graphtran/graphtran/provider"
	"github.com/graphtran/graphtran/provider/ollama"
	"github.com/graphtran/graphtran/provider/openai"
	"github.com/graphtran/graphtran/translator"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "graphtran:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to graphtran.yaml (default: search . and $HOME/.graphtran)")
	target := flag.String("target", "", "output language, overrides the configured target")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	if flag.NArg() == 0 {
		return fmt.Errorf("usage: graphtran [flags] graph.json [graph.json ...]")
	}

	// Optional; a missing .env is the common case.
	_ = godotenv.Load()

	log := newLogger(*verbose)
	slog.SetDefault(log)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *target != "" {
		cfg.Target = *target
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := buildService(cfg, log)
	if err != nil {
		return err
	}

	tr, err := translator.New(svc, promptreg.New(cfg.PromptDir),
		translator.WithTarget(cfg.Target),
		translator.WithConcurrency(cfg.MaxConcurrent),
		translator.WithLogger(log),
	)
	if err != nil {
		return err
	}

	graphs := make([]string, 0, flag.NArg())
	for _, path := range flag.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read graph %q: %w", path, err)
		}
		graphs = append(graphs, string(data))
	}

	results, err := tr.TranslateAll(ctx, graphs)
	if err != nil {
		return err
	}

	units := make([]graphtran.GraphUnit, 0, len(results))
	for _, r := range results {
		units = append(units, r.Graphs...)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(units)
}

// buildService constructs and initializes the configured provider adapter.
func buildService(cfg *config.Config, log *slog.Logger) (provider.Service, error) {
	var prompts *promptmgr.Manager
	if len(cfg.SourcePaths) > 0 {
		src, err := translator.NewFileSource(cfg.SourcePaths...)
		if err != nil {
			return nil, err
		}
		prompts = promptmgr.New(promptmgr.WithSourceProvider(src))
	} else {
		prompts = promptmgr.New()
	}

	var svc provider.Service
	switch cfg.Provider {
	case "ollama":
		svc = ollama.New(ollama.WithPromptManager(prompts), ollama.WithLogger(log))
	default:
		svc = openai.New(openai.WithPromptManager(prompts), openai.WithLogger(log))
	}
	if err := svc.Initialize(cfg.ProviderConfig()); err != nil {
		return nil, err
	}
	return svc, nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
