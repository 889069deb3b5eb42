package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/hpungsan/shotcap/internal/capture"
	"github.com/hpungsan/shotcap/internal/config"
	"github.com/hpungsan/shotcap/internal/errors"
	"github.com/hpungsan/shotcap/internal/logger"
	"github.com/hpungsan/shotcap/internal/ocr"
	"github.com/hpungsan/shotcap/internal/ops"
	"github.com/hpungsan/shotcap/internal/store"
	"github.com/hpungsan/shotcap/internal/watch"
	"github.com/hpungsan/shotcap/internal/web"
)

// env carries what every command needs.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
}

// extractor builds the OCR collaborator. noOCR skips tesseract for this run.
func (e *env) extractor(noOCR bool) ops.TextExtractor {
	return ocr.NewExtractor(ocr.Config{
		Disabled:    e.cfg.OCRDisabled || noOCR,
		Tesseract:   e.cfg.TesseractPath,
		Lang:        e.cfg.TesseractLang,
		TessdataDir: e.cfg.TessdataDir,
		Timeout:     e.cfg.OCRTimeout(),
	}, e.logger)
}

// openStore opens --store if given, else the configured store.
func (e *env) openStore(c *cli.Context) (store.Store, error) {
	path := c.String("store")
	if path == "" {
		path = e.cfg.StorePath
	}
	return store.Open(e.cfg.StoreDriver, path)
}

func storeFlag() cli.Flag {
	return &cli.StringFlag{Name: "store", Aliases: []string{"s"}, Usage: "Capture store path (default from config: captures.json)"}
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(e *env) *cli.App {
	app := &cli.App{
		Name:      "shotcap",
		Usage:     "Replace screenshot hoarding with notes, tasks and reminders",
		Version:   Version,
		UsageText: "shotcap ingest --text 'Pay rent tomorrow' shot.png\nshotcap list\nshotcap list --json",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "debug", Usage: "Log at debug level to stderr"},
		},
		Before: func(c *cli.Context) error {
			if !c.Bool("debug") {
				return nil
			}
			l, err := logger.New(e.cfg.LogLevel, true)
			if err != nil {
				return err
			}
			e.logger = l
			return nil
		},
		Commands: []*cli.Command{
			ingestCmd(e),
			listCmd(e),
			exportCmd(e),
			clearCmd(e),
			watchCmd(e),
			serveCmd(e),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// ingestCmd creates the ingest command.
func ingestCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "ingest",
		Usage:     "Turn a screenshot into a capture and append it to the store",
		ArgsUsage: "[options] <screenshot>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "text", Aliases: []string{"t"}, Usage: "Fallback text when OCR finds nothing"},
			storeFlag(),
			&cli.BoolFlag{Name: "json", Usage: "Print the capture as JSON"},
			&cli.BoolFlag{Name: "no-ocr", Usage: "Skip tesseract for this run"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("ingest requires a screenshot path"))
			}
			if err := singleArg(c, "<screenshot>"); err != nil {
				return outputError(err)
			}

			st, err := e.openStore(c)
			if err != nil {
				return outputError(err)
			}
			defer st.Close()

			output, err := ops.Ingest(c.Context, st, e.extractor(c.Bool("no-ocr")), e.cfg, ops.IngestInput{
				Screenshot:   c.Args().First(),
				FallbackText: c.String("text"),
			})
			if err != nil {
				return outputError(err)
			}

			w := c.App.Writer
			if c.Bool("json") {
				return outputJSON(w, output.Item)
			}
			printItem(w, output.Item)
			fmt.Fprintf(w, "\nStored in: %s\n", output.Store)
			fmt.Fprintln(w, "Run: shotcap list")
			return nil
		},
	}
}

// listCmd creates the list command.
func listCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List stored captures",
		Flags: []cli.Flag{
			storeFlag(),
			&cli.BoolFlag{Name: "json", Usage: "Print the captures as a JSON array"},
			&cli.StringFlag{Name: "kind", Aliases: []string{"k"}, Usage: "Only show note, task or reminder"},
		},
		Action: func(c *cli.Context) error {
			st, err := e.openStore(c)
			if err != nil {
				return outputError(err)
			}
			defer st.Close()

			output, err := ops.List(c.Context, st, ops.ListInput{Kind: c.String("kind")})
			if err != nil {
				return outputError(err)
			}

			if c.Bool("json") {
				return outputJSON(c.App.Writer, output.Items)
			}
			printList(c.App.Writer, output.Items, output.Store)
			return nil
		},
	}
}

// exportCmd creates the export command.
func exportCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write all captures to a JSON, JSONL or YAML file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Output file (default: ~/.shotcap/exports/captures-<timestamp>.json)"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "json, jsonl or yaml (default: from --path extension)"},
			storeFlag(),
		},
		Action: func(c *cli.Context) error {
			st, err := e.openStore(c)
			if err != nil {
				return outputError(err)
			}
			defer st.Close()

			output, err := ops.Export(c.Context, st, ops.ExportInput{
				Path:   c.String("path"),
				Format: c.String("format"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// clearCmd creates the clear command.
func clearCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Remove every capture from the store",
		Flags: []cli.Flag{storeFlag()},
		Action: func(c *cli.Context) error {
			st, err := e.openStore(c)
			if err != nil {
				return outputError(err)
			}
			defer st.Close()

			output, err := ops.Clear(c.Context, st)
			if err != nil {
				return outputError(err)
			}

			fmt.Fprintf(c.App.Writer, "Cleared %d item(s) from %s.\n", output.Removed, output.Store)
			return nil
		},
	}
}

// watchCmd creates the watch command.
func watchCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Ingest new screenshots as they appear in a directory",
		ArgsUsage: "[options] <dir>",
		Flags: []cli.Flag{
			storeFlag(),
			&cli.BoolFlag{Name: "initial-scan", Usage: "Also ingest images already in the directory"},
			&cli.BoolFlag{Name: "json", Usage: "Print each capture as one JSON line"},
			&cli.BoolFlag{Name: "no-ocr", Usage: "Skip tesseract; use file names only"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("watch requires a directory"))
			}
			if err := singleArg(c, "<dir>"); err != nil {
				return outputError(err)
			}

			st, err := e.openStore(c)
			if err != nil {
				return outputError(err)
			}
			defer st.Close()

			ex := e.extractor(c.Bool("no-ocr"))
			w := c.App.Writer
			handler := func(ctx context.Context, path string) error {
				output, err := ops.Ingest(ctx, st, ex, e.cfg, ops.IngestInput{Screenshot: path})
				if err != nil {
					return err
				}
				if c.Bool("json") {
					return json.NewEncoder(w).Encode(output.Item)
				}
				printItem(w, output.Item)
				fmt.Fprintln(w)
				return nil
			}

			dir := c.Args().First()
			err = watch.Run(c.Context, watch.Config{
				Dir:         dir,
				Extensions:  e.cfg.WatchExtensions,
				Debounce:    e.cfg.WatchDebounce(),
				InitialScan: c.Bool("initial-scan"),
				Logger:      e.logger,
			}, handler)
			if stderrors.Is(err, os.ErrNotExist) {
				return outputError(errors.NewFileNotFound(dir))
			}
			if err != nil {
				return outputError(errors.NewInvalidRequest(err.Error()))
			}
			return nil
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the local web UI",
		Flags: []cli.Flag{
			storeFlag(),
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Value: 8417, Usage: "Port to listen on"},
			&cli.BoolFlag{Name: "no-ocr", Usage: "Skip tesseract for uploads"},
		},
		Action: func(c *cli.Context) error {
			port := c.Int("port")
			if port < 1 || port > 65535 {
				return outputError(errors.NewInvalidRequest("port must be between 1 and 65535"))
			}

			st, err := e.openStore(c)
			if err != nil {
				return outputError(err)
			}
			defer st.Close()

			srv, err := web.NewServer(web.Deps{
				Store:     st,
				Extractor: e.extractor(c.Bool("no-ocr")),
				Config:    e.cfg,
				Logger:    e.logger,
				Version:   Version,
			}, c.String("bind"), port)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}

			fmt.Fprintf(c.App.Writer, "shotcap UI running at http://%s\n", srv.Addr)
			if err := web.Run(c.Context, srv, e.logger); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

// Helper functions

// singleArg rejects extra positional arguments. Flags after the first
// positional argument are not parsed, so they land here.
func singleArg(c *cli.Context, name string) error {
	if c.NArg() <= 1 {
		return nil
	}
	extra := c.Args().Slice()[1:]
	return errors.NewInvalidRequest(fmt.Sprintf(
		"unexpected arguments after %s: %s (flags must come before %s)",
		name, strings.Join(extra, " "), name))
}

// printItem writes the human-readable form of one capture.
func printItem(w io.Writer, it capture.Item) {
	fmt.Fprintln(w, "Saved capture")
	fmt.Fprintf(w, "- type: %s\n", it.Kind)
	fmt.Fprintf(w, "- title: %s\n", it.Title)
	fmt.Fprintf(w, "- reminder: %s\n", formatReminder(it.ReminderAt))
	fmt.Fprintf(w, "- source: %s\n", it.Source)
}

// printList writes the numbered human-readable list, or the empty-store hint.
func printList(w io.Writer, items []capture.Item, storePath string) {
	if len(items) == 0 {
		fmt.Fprintf(w, "No captured items yet in %s.\n", storePath)
		fmt.Fprintln(w, "Tip: run ingest with --text, then run list again.")
		return
	}

	fmt.Fprintf(w, "Captured items in %s:\n", storePath)
	for i, it := range items {
		fmt.Fprintf(w, "%d. [%s] %s (reminder: %s)\n", i+1, it.Kind, it.Title, formatReminder(it.ReminderAt))
		fmt.Fprintf(w, "   source: %s\n", it.Source)
	}
}

func formatReminder(t *time.Time) string {
	if t == nil {
		return "none"
	}
	return t.UTC().Format(time.RFC3339)
}

// outputJSON writes v to w as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	cErr := errors.As(err)
	if cErr.Code == errors.ErrInternal {
		if detail, ok := cErr.Details["internal_error"]; ok {
			return cli.Exit(fmt.Sprintf("[%s] %s: %v", cErr.Code, cErr.Message, detail), 1)
		}
	}
	return cli.Exit(fmt.Sprintf("[%s] %s", cErr.Code, cErr.Message), 1)
}
