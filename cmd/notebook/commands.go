package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	markdown "github.com/MichaelMure/go-term-markdown"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/starford/notebook/internal"
	"github.com/starford/notebook/internal/editor"
	"github.com/starford/notebook/internal/mcpserver"
	"github.com/starford/notebook/internal/notelist"
	"github.com/starford/notebook/internal/notestore"
	"github.com/starford/notebook/internal/richtext"
	"github.com/starford/notebook/internal/tui"
)

// storeAction is a command body that runs against an open store.
type storeAction func(ctx context.Context, cmd *cli.Command, cfg *internal.Config, store *notestore.Store, logger *slog.Logger) error

// withStore loads config, opens the store and closes it after fn returns.
func withStore(fn storeAction) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := internal.NewTextLogger(os.Stderr, cfg.App.LogLevel)

		store, err := internal.OpenStore(cfg)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := store.Close(); cerr != nil {
				logger.Error("close store", slog.String("error", cerr.Error()))
			}
		}()

		return fn(ctx, cmd, cfg, store, logger)
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve notebook tools over MCP stdio",
		Action: withStore(func(_ context.Context, _ *cli.Command, cfg *internal.Config, store *notestore.Store, logger *slog.Logger) error {
			srv := mcpserver.New(store, version,
				mcpserver.WithTheme(cfg.Editor.Theme()),
				mcpserver.WithLogger(logger),
			)
			return srv.ServeStdio()
		}),
	}
}

func tuiCommand() *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Browse and edit notes in the terminal",
		Action: withStore(func(ctx context.Context, _ *cli.Command, cfg *internal.Config, store *notestore.Store, _ *slog.Logger) error {
			// The alt screen owns the terminal; log lines would corrupt it.
			quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
			listOpts, err := internal.ListOptions(cfg, quiet)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			return tui.New(store,
				tui.WithTheme(cfg.Editor.Theme()),
				tui.WithLogger(quiet),
				tui.WithListOptions(listOpts...),
			).Run(ctx)
		}),
	}
}

func addCommand() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Create a note from arguments or stdin",
		ArgsUsage: "[line...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "markdown",
				Aliases: []string{"m"},
				Usage:   "Parse the input as notebook Markdown",
			},
		},
		Action: withStore(func(ctx context.Context, cmd *cli.Command, cfg *internal.Config, store *notestore.Store, _ *slog.Logger) error {
			text := strings.Join(cmd.Args().Slice(), "\n")
			if text == "" {
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(data)
			}
			if strings.TrimSpace(text) == "" {
				return errors.New("note text is empty")
			}

			th := cfg.Editor.Theme()
			doc := richtext.FromText(strings.TrimRight(text, "\n"), th)
			if cmd.Bool("markdown") {
				var err error
				doc, _, err = richtext.FromMarkdown([]byte(text), th)
				if err != nil {
					return err
				}
			}

			id, err := store.Create(ctx, doc)
			if err != nil {
				return err
			}
			fmt.Println(id)
			return nil
		}),
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "Print notes grouped by day, newest first",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "Only show notes whose title or description contains the query",
			},
		},
		Action: withStore(func(ctx context.Context, cmd *cli.Command, cfg *internal.Config, store *notestore.Store, logger *slog.Logger) error {
			loc, err := cfg.List.Location()
			if err != nil {
				return err
			}
			notes, err := store.FetchAll(ctx)
			if err != nil {
				return err
			}
			models := notelist.Filter(notelist.DecodeAll(notes, logger), cmd.String("query"))
			if len(models) == 0 {
				fmt.Println("no notes")
				return nil
			}
			for i, g := range notelist.GroupByDay(models, loc, cfg.List.DayLayout) {
				if i > 0 {
					fmt.Println()
				}
				fmt.Println(g.Label)
				for _, n := range g.Notes {
					fmt.Printf("  %s  %s", n.ID, n.Title)
					if n.Description != "" {
						fmt.Printf(" - %s", n.Description)
					}
					fmt.Println()
				}
			}
			return nil
		}),
	}
}

func showCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Render a note in the terminal",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "raw",
				Usage: "Print Markdown without terminal formatting",
			},
		},
		Action: withStore(func(ctx context.Context, cmd *cli.Command, _ *internal.Config, store *notestore.Store, _ *slog.Logger) error {
			id, err := requireArg(cmd, 0, "id")
			if err != nil {
				return err
			}
			n, err := store.FetchByID(ctx, id)
			if err != nil {
				return err
			}
			m, err := notelist.Decode(n)
			if err != nil {
				return err
			}
			md := richtext.ToMarkdown(m.Document)
			if cmd.Bool("raw") {
				_, err = os.Stdout.Write(md)
				return err
			}
			_, err = os.Stdout.Write(markdown.Render(string(md), terminalWidth()-4, 4))
			return err
		}),
	}
}

func deleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     "Delete a note",
		ArgsUsage: "<id>",
		Action: withStore(func(ctx context.Context, cmd *cli.Command, _ *internal.Config, store *notestore.Store, _ *slog.Logger) error {
			id, err := requireArg(cmd, 0, "id")
			if err != nil {
				return err
			}
			if err := store.DeleteByID(ctx, id); err != nil {
				return err
			}
			fmt.Printf("deleted %s\n", id)
			return nil
		}),
	}
}

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Toggle the checklist item on a line (0 is the title)",
		ArgsUsage: "<id> <line>",
		Action: withStore(func(ctx context.Context, cmd *cli.Command, cfg *internal.Config, store *notestore.Store, logger *slog.Logger) error {
			id, err := requireArg(cmd, 0, "id")
			if err != nil {
				return err
			}
			raw, err := requireArg(cmd, 1, "line")
			if err != nil {
				return err
			}
			line, err := strconv.Atoi(raw)
			if err != nil {
				return fmt.Errorf("line must be a number: %w", err)
			}

			l, err := editor.ToggleLine(ctx, store, id, line,
				editor.WithTheme(cfg.Editor.Theme()),
				editor.WithLogger(logger),
			)
			if err != nil {
				return err
			}
			state := "unchecked"
			if l.Checked {
				state = "checked"
			}
			fmt.Printf("%s: %s\n", state, strings.TrimSpace(l.Text))
			return nil
		}),
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write every note as Markdown into the export directory",
		Action: withStore(func(ctx context.Context, _ *cli.Command, cfg *internal.Config, store *notestore.Store, logger *slog.Logger) error {
			v, err := internal.OpenVault(cfg, store, logger, false)
			if err != nil {
				return err
			}
			stats, err := v.Export(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("written %d, unchanged %d, removed %d\n", stats.Written, stats.Skipped, stats.Removed)
			return nil
		}),
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import Markdown files from the inbox directory",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "Keep watching the inbox and import new files as they appear",
			},
		},
		Action: withStore(func(ctx context.Context, cmd *cli.Command, cfg *internal.Config, store *notestore.Store, logger *slog.Logger) error {
			v, err := internal.OpenVault(cfg, store, logger, true)
			if err != nil {
				return err
			}

			if cmd.Bool("watch") {
				ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
				defer stop()
				return v.Watch(ctx)
			}

			stats, err := v.ImportDir(ctx)
			if err != nil {
				return err
			}
			for _, id := range stats.Imported {
				fmt.Printf("imported %s\n", id)
			}
			for _, p := range stats.Rejected {
				fmt.Printf("rejected %s\n", p)
			}
			return nil
		}),
	}
}

func requireArg(cmd *cli.Command, i int, name string) (string, error) {
	v := strings.TrimSpace(cmd.Args().Get(i))
	if v == "" {
		return "", fmt.Errorf("missing argument <%s>", name)
	}
	return v, nil
}

// terminalWidth returns the width of stdout, or 80 when it is not a terminal.
func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 20 {
		return w
	}
	return 80
}
