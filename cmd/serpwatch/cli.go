package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/serpwatch"
	"github.com/fwojciec/serpwatch/crawl"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	Logger   *slog.Logger
	Engines  serpwatch.EngineRegistry
	Results  serpwatch.ResultService
	Tasks    serpwatch.TaskService
	Keywords serpwatch.KeywordService
	Stats    serpwatch.StatsService
	Crawler  *crawl.Crawler
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	LogLevel    string `default:"info" enum:"debug,info,warn,error" env:"SERPWATCH_LOG_LEVEL" help:"Log level (debug, info, warn, error)"`
	LogFormat   string `default:"text" enum:"text,json" env:"SERPWATCH_LOG_FORMAT" help:"Log format (text, json)"`
	EnginesFile string `name:"engines-file" env:"SERPWATCH_ENGINES" help:"JSON engine table replacing the built-in engines"`

	Fetch FetchFlags `embed:""`

	Crawl    CrawlCmd    `cmd:"" help:"Crawl result pages for keywords across engines"`
	Probe    ProbeCmd    `cmd:"" help:"Fetch one result page per engine and report whether parsing works"`
	Serve    ServeCmd    `cmd:"" help:"Serve engine health and probes over HTTP"`
	Export   ExportCmd   `cmd:"" help:"Export stored results to an xlsx workbook"`
	Keywords KeywordsCmd `cmd:"" help:"Manage tracked keywords"`
	Tasks    TasksCmd    `cmd:"" help:"List recent crawl tasks"`
	Stats    StatsCmd    `cmd:"" help:"Show daily run statistics"`
	Engines  EnginesCmd  `cmd:"" help:"List configured engines"`
}

// FetchFlags tune requests made by crawl, probe and serve.
type FetchFlags struct {
	Timeout      time.Duration `default:"30s" env:"SERPWATCH_TIMEOUT" help:"Per-request timeout"`
	DelayMin     time.Duration `default:"1s" env:"SERPWATCH_DELAY_MIN" help:"Minimum randomized delay before each request"`
	DelayMax     time.Duration `default:"3s" env:"SERPWATCH_DELAY_MAX" help:"Maximum randomized delay before each request"`
	BlockDelay   time.Duration `default:"10s" env:"SERPWATCH_BLOCK_DELAY" help:"Extra wait before retrying a blocked page"`
	Interval     time.Duration `default:"2s" env:"SERPWATCH_INTERVAL" help:"Minimum spacing between requests to one engine"`
	Retries      int           `default:"3" env:"SERPWATCH_RETRIES" help:"Retries per page for network failures"`
	Concurrency  int           `short:"c" default:"3" env:"SERPWATCH_CONCURRENCY" help:"Concurrent keyword/engine runs"`
	UAURL        string        `name:"ua-url" env:"SERPWATCH_UA_URL" help:"URL of a user agent list (JSON array or one per line)"`
	ChromeTLS    bool          `name:"chrome-tls" env:"SERPWATCH_CHROME_TLS" help:"Present a Chrome TLS fingerprint"`
	ProbeKeyword string        `default:"python" env:"SERPWATCH_PROBE_KEYWORD" help:"Keyword used by probes"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	Keywords []string `arg:"" optional:"" help:"Keywords to crawl (default: active keywords)"`
	Engine   []string `short:"e" help:"Engine to crawl (repeatable, default: all)"`
	Pages    int      `short:"p" default:"1" help:"Maximum pages per keyword and engine"`
	Dedup    bool     `help:"Skip results whose URL is already stored for the same keyword and engine"`
}

// ProbeCmd is the "probe" subcommand.
type ProbeCmd struct {
	Engines []string `arg:"" optional:"" help:"Engines to probe (default: all)"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr string `default:":8080" env:"SERPWATCH_ADDR" help:"Listen address"`
}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	Out     string `short:"o" required:"" help:"Output xlsx path"`
	Keyword string `short:"k" help:"Only export results for this keyword"`
	Engine  string `short:"e" help:"Only export results from this engine"`
	URL     string `name:"url" help:"Only export results linking to this URL"`
	Stats   bool   `help:"Include a Statistics sheet"`
}

// KeywordsCmd groups keyword subcommands.
type KeywordsCmd struct {
	Add    KeywordsAddCmd    `cmd:"" help:"Add keywords to the crawl list"`
	Remove KeywordsRemoveCmd `cmd:"" help:"Stop crawling keywords"`
	List   KeywordsListCmd   `cmd:"" default:"1" help:"List active keywords"`
}

// KeywordsAddCmd is the "keywords add" subcommand.
type KeywordsAddCmd struct {
	Texts []string `arg:"" help:"Keywords to add"`
}

// KeywordsRemoveCmd is the "keywords remove" subcommand.
type KeywordsRemoveCmd struct {
	Texts []string `arg:"" help:"Keywords to deactivate"`
}

// KeywordsListCmd is the "keywords list" subcommand.
type KeywordsListCmd struct{}

// TasksCmd is the "tasks" subcommand.
type TasksCmd struct {
	Engine string `short:"e" help:"Only list tasks for this engine"`
	Limit  int    `short:"n" default:"20" help:"Number of tasks to show"`
}

// StatsCmd is the "stats" subcommand.
type StatsCmd struct {
	Date string `short:"d" help:"Day to show (YYYY-MM-DD, default: all days)"`
}

// EnginesCmd is the "engines" subcommand.
type EnginesCmd struct{}
