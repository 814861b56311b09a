// Package slog provides log/slog decorators for serpwatch services.
package slog
