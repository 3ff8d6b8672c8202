package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"sharpfix/internal/diagfmt"
	"sharpfix/internal/driver"
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags] <directory>",
	Short: "Re-run diagnostics whenever C# files change",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().String("format", "short", "output format per run (pretty|short)")
	watchCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	watchCmd.Flags().Bool("disk-cache", true, "reuse diagnostics of unchanged files from the disk cache")
	watchCmd.Flags().Duration("debounce", driver.DefaultDebounce, "wait for further changes before re-running")
	watchCmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9464")
}

func runWatch(cmd *cobra.Command, args []string) error {
	target := args[0]
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	if format != "pretty" && format != "short" {
		return fmt.Errorf("unsupported format %q (must be pretty or short)", format)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	useCache, err := cmd.Flags().GetBool("disk-cache")
	if err != nil {
		return err
	}
	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return err
	}
	metricsAddr, err := cmd.Flags().GetString("metrics-addr")
	if err != nil {
		return err
	}
	if info, err := os.Stat(target); err != nil {
		return fmt.Errorf("failed to stat path: %w", err)
	} else if !info.IsDir() {
		return fmt.Errorf("watch: %s is not a directory", target)
	}

	env, err := newRunEnv(cmd, target)
	if err != nil {
		return err
	}
	env.opts.Jobs = jobs
	if err := env.enableCache(useCache); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if metricsAddr != "" {
		m := env.enableMetrics()
		srv := &http.Server{
			Addr:              metricsAddr,
			Handler:           m.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
			BaseContext:       func(net.Listener) context.Context { return ctx },
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				env.opts.Logger.Error("metrics server", "addr", metricsAddr, "err", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		env.opts.Logger.Info("serving metrics", "addr", metricsAddr)
	}

	out := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()
	return driver.Watch(ctx, target, env.opts, driver.WatchOptions{
		Debounce: debounce,
		OnResult: func(res *driver.Result, err error) {
			if err != nil {
				printError(stderr, err)
				return
			}
			env.printLoadErrors(stderr, res)
			if !env.quiet {
				fmt.Fprintf(out, "[%s] %d file(s), %d finding(s)\n",
					time.Now().Format("15:04:05"), len(res.Units), res.Bag.Len())
			}
			if format == "pretty" {
				diagfmt.Pretty(out, res.Bag, res.Files, diagfmt.PrettyOpts{Color: env.useColor, Context: 2})
			} else {
				diagfmt.Short(out, res.Bag, res.Files, false)
			}
		},
	})
}
