package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/okian/liftsheet/internal/adapters/csvio"
	"github.com/okian/liftsheet/internal/adapters/http/api"
	"github.com/okian/liftsheet/internal/adapters/http/swagger"
	app "github.com/okian/liftsheet/internal/app"
	"github.com/okian/liftsheet/internal/config"
	"github.com/okian/liftsheet/internal/domain/lifts"
	"github.com/okian/liftsheet/internal/domain/table"
	"github.com/okian/liftsheet/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

// Exit codes.
const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

const usage = `usage: liftsheet <command> [flags]

commands:
  transform -in FILE [-out FILE] [-stages best,round] [-sheet NAME] [-drop COLS] [-drop-empty]
      transform one sheet; "-in -" reads CSV from stdin, output defaults to stdout
  cat [-out FILE] [-drop COLS] [-drop-empty] FILE...
      concatenate sheets, matching cells by column name
  batch [-stages best,round] [-in-place] [-workers N] FILE...
      transform many sheets concurrently
  serve
      run the HTTP API
  help
      show this message

configuration: LIFTSHEET_CONFIG names a YAML file; LIFTSHEET_* env vars override it
`

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run dispatches a command and returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		_, _ = io.WriteString(stderr, usage)
		return exitUsage
	}

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "failed to load config: %v\n", err)
		return exitFail
	}
	if err := logger.InitWith(logger.Options{Format: cfg.LogFormat, Writer: stderr}); err != nil {
		fmt.Fprintf(stderr, "failed to initialize logging: %v\n", err)
		return exitFail
	}
	defer func() { _ = logger.Sync() }()

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "transform":
		err = runTransform(ctx, cfg, rest, stdin, stdout, stderr)
	case "cat":
		err = runCat(ctx, rest, stdout, stderr)
	case "batch":
		err = runBatch(ctx, cfg, rest, stdout, stderr)
	case "serve":
		err = runServe(ctx, cfg)
	case "help", "-h", "--help":
		_, _ = io.WriteString(stdout, usage)
		return exitOK
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usage)
		return exitUsage
	}

	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, flag.ErrHelp):
		return exitOK
	case errors.Is(err, errUsage):
		return exitUsage
	default:
		fmt.Fprintln(stderr, err)
		return exitFail
	}
}

var errUsage = errors.New("usage error")

func stagesFrom(cfg *config.Config, flagValue string) ([]lifts.Stage, error) {
	if strings.TrimSpace(flagValue) == "" {
		return cfg.StageList()
	}
	return lifts.ParseStages(flagValue)
}

// dropColumns removes the comma separated columns in drop and, when
// dropEmpty is set, every column left without a value.
func dropColumns(ctx context.Context, t *table.Table, drop string, dropEmpty bool) {
	for _, name := range strings.Split(drop, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if !t.RemoveColumn(name) {
			logger.Get().Warn(ctx, "no such column to drop", logger.String("column", name))
		}
	}
	if !dropEmpty {
		return
	}
	if dropped := t.RemoveEmptyColumns(); len(dropped) > 0 {
		logger.Get().Debug(ctx, "dropped empty columns", logger.Any("columns", dropped))
	}
}

// writeResult writes t to path, or to stdout when path is empty.
func writeResult(path string, stdout io.Writer, t *table.Table) error {
	if path == "" {
		return csvio.Write(stdout, t)
	}
	return csvio.WriteFile(path, t)
}

func runTransform(ctx context.Context, cfg *config.Config, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("transform", flag.ContinueOnError)
	fs.SetOutput(stderr)
	in := fs.String("in", "", `input .csv or .xlsx file, or "-" for stdin`)
	out := fs.String("out", "", "output CSV file (default stdout)")
	stageList := fs.String("stages", "", "comma separated stages (default from config)")
	sheet := fs.String("sheet", "", "workbook sheet to import (default first)")
	drop := fs.String("drop", "", "comma separated columns to remove from the result")
	dropEmpty := fs.Bool("drop-empty", false, "remove columns with no values from the result")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return errUsage
	}
	if *in == "" {
		fmt.Fprintln(stderr, "transform: -in is required")
		return errUsage
	}

	stages, err := stagesFrom(cfg, *stageList)
	if err != nil {
		return fmt.Errorf("transform: %w", err)
	}

	var src *table.Table
	switch {
	case *in == "-":
		src, err = csvio.Read(stdin)
	case *sheet != "" && csvio.IsWorkbook(*in):
		src, err = csvio.ReadXLSX(*in, *sheet)
	default:
		src, err = csvio.ReadFile(*in)
	}
	if err != nil {
		return fmt.Errorf("transform: %w", err)
	}

	svc := app.New(app.WithLogger(logger.Named("transform")), app.WithStages(stages))
	result, err := svc.Transform(ctx, src, stages)
	if err != nil {
		return fmt.Errorf("transform %s: %w", *in, err)
	}
	dropColumns(ctx, result, *drop, *dropEmpty)

	if err := writeResult(*out, stdout, result); err != nil {
		return fmt.Errorf("transform: %w", err)
	}
	if *out == "" {
		return nil
	}
	logger.Get().Info(ctx, "table transformed",
		logger.String("in", *in),
		logger.String("out", *out),
		logger.Int("rows", result.Len()),
	)
	return nil
}

func runCat(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("cat", flag.ContinueOnError)
	fs.SetOutput(stderr)
	out := fs.String("out", "", "output CSV file (default stdout)")
	drop := fs.String("drop", "", "comma separated columns to remove from the result")
	dropEmpty := fs.Bool("drop-empty", false, "remove columns with no values from the result")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return errUsage
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "cat: at least one file is required")
		return errUsage
	}

	var result *table.Table
	for _, path := range fs.Args() {
		t, err := csvio.ReadFile(path)
		if err != nil {
			return fmt.Errorf("cat: %w", err)
		}
		if result == nil {
			result = t
			continue
		}
		result.Cat(t)
	}
	dropColumns(ctx, result, *drop, *dropEmpty)

	if err := writeResult(*out, stdout, result); err != nil {
		return fmt.Errorf("cat: %w", err)
	}
	logger.Get().Debug(ctx, "tables concatenated",
		logger.Int("files", fs.NArg()),
		logger.Int("rows", result.Len()),
	)
	return nil
}

func runBatch(ctx context.Context, cfg *config.Config, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("batch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	stageList := fs.String("stages", "", "comma separated stages (default from config)")
	inPlace := fs.Bool("in-place", cfg.InPlace, "overwrite input files")
	workers := fs.Int("workers", cfg.WorkerCount, "number of concurrent workers")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return errUsage
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "batch: at least one file is required")
		return errUsage
	}

	stages, err := stagesFrom(cfg, *stageList)
	if err != nil {
		return fmt.Errorf("batch: %w", err)
	}

	svc := app.New(
		app.WithLogger(logger.Named("batch")),
		app.WithWorkerCount(*workers),
		app.WithQueueSize(max(cfg.QueueSize, fs.NArg())),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithStages(stages),
		app.WithInPlace(*inPlace),
		app.WithOutputSuffix(cfg.OutputSuffix),
	)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("batch: %w", err)
	}
	defer svc.Stop()

	var rejected []error
	for _, path := range fs.Args() {
		if _, err := svc.Submit(ctx, path); err != nil {
			if errors.Is(err, app.ErrDuplicateJob) {
				logger.Get().Warn(ctx, "skipping duplicate file", logger.String("path", path))
				continue
			}
			rejected = append(rejected, err)
			fmt.Fprintf(stdout, "FAIL %s: %v\n", path, err)
		}
	}

	results, err := svc.Wait(ctx)
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(stdout, "FAIL %v\n", r.Err)
			continue
		}
		fmt.Fprintf(stdout, "ok   %s -> %s (%d rows)\n", r.Path, r.Output, r.Rows)
	}
	if err != nil {
		return fmt.Errorf("batch: %w", err)
	}

	failed := len(rejected)
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		logger.Get().Debug(ctx, "batch failures", logger.Error(errors.Join(append(rejected, app.Failed(results))...)))
		return fmt.Errorf("batch: %d of %d files failed", failed, fs.NArg())
	}
	return nil
}

// newServeMux builds the HTTP routes. Requests transform synchronously, so
// the batch pool is never started.
func newServeMux(cfg *config.Config, log logger.Logger) (*http.ServeMux, *app.Service, error) {
	stages, err := cfg.StageList()
	if err != nil {
		return nil, nil, err
	}
	svc := app.New(app.WithLogger(log), app.WithStages(stages))

	mux := http.NewServeMux()
	swagger.Register(mux)
	api.NewServer(svc, svc, api.WithMaxBodyBytes(cfg.MaxBodyBytes)).Register(mux)
	return mux, svc, nil
}

func runServe(ctx context.Context, cfg *config.Config) error {
	log := logger.Named("serve")

	mux, _, err := newServeMux(cfg, log)
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("serve: listen %s: %w", cfg.Addr, err)
	}
	srv := &http.Server{
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info(gctx, "starting HTTP server", logger.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info(gctx, "shutting down server...")

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("serve: shutdown: %w", err)
		}
		log.Info(shutdownCtx, "server stopped")
		return nil
	})
	return g.Wait()
}
