// Command ffl2sqlite converts an ATF FFLeZCheck fixed-width text export into
// a SQLite database with one row per licensee in the entries table.
//
// Usage:
//
//	ffl2sqlite INPUT [-o OUTPUT]
//
// OUTPUT defaults to output.db and is replaced on every run. A
// postgres:// or postgresql:// OUTPUT loads the entries table into
// PostgreSQL instead.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/ffl2sqlite/internal/config"
	"github.com/JonMunkholm/ffl2sqlite/internal/core"
	"github.com/JonMunkholm/ffl2sqlite/internal/handler"
	"github.com/JonMunkholm/ffl2sqlite/internal/logging"
	"github.com/JonMunkholm/ffl2sqlite/internal/store/postgres"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// DefaultOutput is the database written when -o is not given.
const DefaultOutput = "output.db"

// newRootCmd builds the command. Logs go to stderr.
func newRootCmd(stderr io.Writer) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "ffl2sqlite INPUT",
		Short: "Convert an FFLeZCheck text export to a SQLite database",
		Long: `Convert an ATF FFLeZCheck fixed-width text export into a database.

Every non-empty line becomes one row of the entries table. The output is
rebuilt from scratch on each run and is deleted again if the input has no
entries or the conversion fails.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logging.SetupWriter(stderr, cfg.Logging.Level, cfg.Logging.Format)

			if err := run(cmd.Context(), cfg, args[0], output); err != nil {
				return core.NewUserError(err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", DefaultOutput, "output database file or postgres:// URL")
	return cmd
}

func run(ctx context.Context, cfg *config.Config, input, output string) error {
	svc := core.NewService(core.Options{
		BatchSize: cfg.Convert.BatchSize,
		Timeout:   cfg.Convert.Timeout,
	})

	open := handler.OpenerFor(output, postgres.PoolOptions{
		MaxConns: cfg.Postgres.MaxConns,
		MinConns: cfg.Postgres.MinConns,
	})

	logOutput := output
	if postgres.IsURL(output) {
		logOutput = "postgres"
	}
	log := logging.WithFields(ctx, "output", logOutput)

	result, err := handler.ConvertFile(ctx, input, open, handler.Options{
		Service:  svc,
		Logger:   log,
		Progress: progressLogger(log),
	})
	if err != nil {
		return err
	}
	if result.Status == core.StatusEmpty {
		// Nothing to convert is not a failure.
		log.Info("Nothing to do", "input", input)
	}
	return nil
}

// progressLogger logs phase changes and per-batch progress at debug level.
func progressLogger(log *slog.Logger) core.ProgressCallback {
	var last core.RunPhase
	return func(p core.RunProgress) {
		if p.Phase != last {
			last = p.Phase
			log.Debug("Phase", "phase", p.Phase, "run_id", p.RunID)
			return
		}
		log.Debug("Progress",
			"rows", p.RowsWritten,
			"lines", p.LinesRead,
			"percent", p.Percent(),
		)
	}
}

func main() {
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(os.Stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		var ue *core.UserError
		if !errors.As(err, &ue) {
			// Usage errors from argument parsing.
			fmt.Fprintln(os.Stderr, err)
			stop()
			os.Exit(1)
		}
		if !errors.Is(ue.Technical, context.Canceled) {
			slog.Error("conversion failed", "error", ue.Technical, "code", ue.User.Code)
		}
		fmt.Fprintln(os.Stderr, ue.User)
		stop()
		os.Exit(1)
	}
}
