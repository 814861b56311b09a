package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/serpwatch"
	"github.com/fwojciec/serpwatch/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Crawler collaborators for end-to-end testing. When Executor is nil a
	// real HTTP stack is wired from the command-line flags.
	Executor serpwatch.Executor
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("serpwatch"),
		kong.Description("Crawl and monitor search engine result pages."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'serpwatch --help' to see available commands")
	}

	if cmd := args[0]; cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	logger := newLogger(cli.LogLevel, cli.LogFormat, stderr)
	deps.Logger = logger

	engines, err := loadEngines(cli.EnginesFile)
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", serpwatch.ErrorMessage(err))
		return err
	}
	deps.Engines = engines

	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set SERPWATCH_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	deps.Results = sqlite.NewResultService(m.DB)
	deps.Tasks = sqlite.NewTaskService(m.DB)
	deps.Keywords = sqlite.NewKeywordService(m.DB)
	deps.Stats = sqlite.NewStatsService(m.DB)

	switch strings.Fields(kongCtx.Command())[0] {
	case "crawl", "probe", "serve":
		crawler, closeFn, err := m.newCrawler(ctx, cli.Fetch, deps)
		if err != nil {
			fmt.Fprintf(stderr, "error: %s\n", serpwatch.ErrorMessage(err))
			return err
		}
		defer closeFn()
		deps.Crawler = crawler
	}

	return kongCtx.Run(deps)
}

// newLogger builds the stderr logger for level and format.
func newLogger(level, format string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func defaultDBPath() string {
	if path := os.Getenv("SERPWATCH_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "serpwatch.db"
	}
	dir := filepath.Join(home, ".serpwatch")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "serpwatch.db")
}
