// Command wipeusage is the administrative bulk reset: it deletes ALL course
// rows and zeroes every user's course and module counters in one transaction.
// Plan assignments and game state are preserved. Destructive; not part of the
// normal request flow.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/dmitrymomot/quotakit/pkg/config"
	"github.com/dmitrymomot/quotakit/pkg/logger"
	"github.com/dmitrymomot/quotakit/pkg/pg"
	"github.com/dmitrymomot/quotakit/pkg/usage"
)

func main() {
	confirm := flag.Bool("yes", false, "confirm the destructive wipe")
	flag.Parse()

	log := logger.New(logger.WithFormat(logger.FormatText))

	if !*confirm {
		log.Error("refusing to wipe without --yes")
		os.Exit(1)
	}

	ctx := context.Background()

	var pgCfg pg.Config
	config.MustLoad(&pgCfg)

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		fatal(log, "database connection failed", err)
	}
	defer pool.Close()

	log.InfoContext(ctx, "wiping courses and resetting usage counters")
	if err := usage.NewPGStore(pool).ResetAllCounters(ctx); err != nil {
		fatal(log, "wipe failed", err)
	}
	log.InfoContext(ctx, "done")
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "error", err)
	os.Exit(1)
}
