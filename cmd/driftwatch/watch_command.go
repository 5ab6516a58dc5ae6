package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Poll projects on an interval until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			// One watcher per state directory; a second invocation would
			// race project baselines.
			lock := flock.New(filepath.Join(cfg.Paths.StateDir, "driftwatch.lock"))
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire watch lock: %w", err)
			}
			if !locked {
				return errors.New("another driftwatch watch is already running against this state directory")
			}
			defer func() {
				_ = lock.Unlock()
			}()

			r, store, _, err := ctx.buildRunner()
			if err != nil {
				return err
			}
			defer store.Close()

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if err := r.Watch(signalCtx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}
