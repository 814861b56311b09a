package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	swgin "github.com/fwojciec/serpwatch/gin"
)

// shutdownTimeout bounds graceful shutdown of the HTTP server.
const shutdownTimeout = 10 * time.Second

// Run executes the serve command. It blocks until the context is canceled.
func (c *ServeCmd) Run(deps *Dependencies) error {
	if deps.Stats != nil {
		stats, err := deps.Stats.FindStatistics(deps.Ctx, time.Now().UTC().Format(time.DateOnly))
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %v\n", err)
			return err
		}
		deps.Crawler.Health.Seed(stats)
	}

	h := &swgin.Handler{
		Engines:  deps.Engines,
		Prober:   deps.Crawler,
		Health:   &deps.Crawler.Health,
		Recorder: &deps.Crawler.Health,
		Logger:   deps.Logger,
		Started:  time.Now(),
	}

	srv := &http.Server{
		Addr:              c.Addr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	fmt.Fprintf(deps.Stdout, "Listening on %s\n", c.Addr)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(deps.Stderr, "error: %v\n", err)
			return err
		}
		return nil
	case <-deps.Ctx.Done():
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
