package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/serpwatch"
)

// Ensure LoggingParser implements serpwatch.Parser.
var _ serpwatch.Parser = (*LoggingParser)(nil)

// LoggingParser wraps a Parser and logs which selector candidate matched.
type LoggingParser struct {
	next   serpwatch.Parser
	logger *slog.Logger
}

// NewLoggingParser creates a new LoggingParser.
func NewLoggingParser(next serpwatch.Parser, logger *slog.Logger) *LoggingParser {
	return &LoggingParser{next: next, logger: logger}
}

// Parse delegates to the wrapped parser and logs the result.
func (p *LoggingParser) Parse(html string, engine *serpwatch.EngineConfig, keyword string, page int) (res *serpwatch.ParseResult, err error) {
	defer func(begin time.Time) {
		candidate, count := "(none)", 0
		if res != nil {
			if res.Candidate != "" {
				candidate = res.Candidate
			}
			count = len(res.Results)
		}
		p.logger.Info("parse",
			"engine", engine.Name,
			"keyword", keyword,
			"page", page,
			"candidate", candidate,
			"count", count,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return p.next.Parse(html, engine, keyword, page)
}
