package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/cfreality/internal"
	"github.com/starford/cfreality/internal/dictionary"
	"github.com/starford/cfreality/internal/mcpserver"
	"github.com/starford/cfreality/internal/tui"
	pkgconfig "github.com/starford/cfreality/pkg/config"
)

// loadConfig reads the --config file over the defaults. A missing file leaves
// the defaults in place and yields an empty path.
func loadConfig(cmd *cli.Command) (*internal.Config, string, error) {
	cfg := internal.NewDefaultConfig()
	configPath, err := pkgconfig.LoadWithDefaults(cmd.String("config"), "", cfg)
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, configPath, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, configPath, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithConfigPath(configPath),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

// openRuntime loads the config and opens the shared state with logs sent to w.
func openRuntime(cmd *cli.Command, w io.Writer) (*internal.Runtime, error) {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, _ := internal.NewLogger(w, cfg.App.LogLevel)
	return internal.Open(cfg, logger)
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	// stdout carries the protocol.
	rt, err := openRuntime(cmd, os.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	return mcpserver.New(rt.Session).ServeStdio()
}

func runTUI(ctx context.Context, cmd *cli.Command) error {
	rt, err := openRuntime(cmd, io.Discard)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	return tui.Run(rt.Session)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func stateShow(ctx context.Context, cmd *cli.Command) error {
	rt, err := openRuntime(cmd, cmd.Root().ErrWriter)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	return printJSON(cmd.Root().Writer, rt.Session.Snapshot())
}

func stateSet(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 2 {
		return fmt.Errorf("usage: state set <name> <value>")
	}
	name := cmd.Args().Get(0)
	value, err := strconv.Atoi(cmd.Args().Get(1))
	if err != nil {
		return fmt.Errorf("value %q is not an integer", cmd.Args().Get(1))
	}

	rt, err := openRuntime(cmd, cmd.Root().ErrWriter)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	p, err := rt.Session.SetParameter(name, value)
	if err != nil {
		return fmt.Errorf("%w (want one of distinctions, ideation, complexity)", err)
	}
	return printJSON(cmd.Root().Writer, p)
}

func stateCollapse(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("usage: state collapse <id>")
	}

	rt, err := openRuntime(cmd, cmd.Root().ErrWriter)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	changed := rt.Session.Collapse(cmd.Args().Get(0))
	return printJSON(cmd.Root().Writer, map[string]any{
		"changed": changed,
		"state":   rt.Session.Snapshot(),
	})
}

func stateReset(ctx context.Context, cmd *cli.Command) error {
	rt, err := openRuntime(cmd, cmd.Root().ErrWriter)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	rt.Session.Reset()
	return printJSON(cmd.Root().Writer, rt.Session.Snapshot())
}

func dict(ctx context.Context, cmd *cli.Command) error {
	query := strings.Join(cmd.Args().Slice(), " ")
	terms := dictionary.Filter(query, cmd.String("letter"))

	w := cmd.Root().Writer
	if len(terms) == 0 {
		_, err := fmt.Fprintln(w, "No terms found")
		return err
	}
	for _, t := range terms {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", t.Title, t.Definition); err != nil {
			return err
		}
	}
	return nil
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:   "cfreality",
		Usage:  "Interactive Consciousness-First Reality diagram: HTTP/SSE service, MCP tools and terminal UI",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API, SSE stream and animation clock",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio",
				Action: runMCP,
			},
			{
				Name:   "tui",
				Usage:  "Open the terminal UI",
				Action: runTUI,
			},
			{
				Name:  "state",
				Usage: "Inspect or change the persisted state",
				Commands: []*cli.Command{
					{Name: "show", Usage: "Print the current state", Action: stateShow},
					{Name: "set", Usage: "Set a parameter", ArgsUsage: "<name> <value>", Action: stateSet},
					{Name: "collapse", Usage: "Collapse a stage", ArgsUsage: "<id>", Action: stateCollapse},
					{Name: "reset", Usage: "Clear all collapses", Action: stateReset},
				},
			},
			{
				Name:      "dict",
				Usage:     "Search the glossary",
				ArgsUsage: "[query]",
				Action:    dict,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "letter",
						Aliases: []string{"l"},
						Usage:   "Only terms whose title starts with this letter",
					},
				},
			},
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
