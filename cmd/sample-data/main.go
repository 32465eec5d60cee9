package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/surveytarget/internal/sampledata"
	"github.com/okian/surveytarget/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := sampledata.DefaultConfig()
	var start string

	cmd := &cobra.Command{
		Use:           "sample-data",
		Short:         "Write a synthetic doctor roster and a matching model artifact",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.Init(); err != nil {
				return err
			}
			t, err := time.Parse(time.DateOnly, start)
			if err != nil {
				return fmt.Errorf("invalid --start %q: %w", start, err)
			}
			cfg.Start = t
			if cfg.Records < 0 {
				return fmt.Errorf("--records must not be negative")
			}
			return sampledata.Run(cmd.Context(), cfg)
		},
	}
	cmd.Flags().IntVar(&cfg.Records, "records", cfg.Records, "number of roster rows")
	cmd.Flags().Uint64Var(&cfg.Seed, "seed", cfg.Seed, "random seed; same seed, same files")
	cmd.Flags().StringVar(&start, "start", cfg.Start.Format(time.DateOnly), "earliest login date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&cfg.Days, "days", cfg.Days, "login dates span this many days")
	cmd.Flags().StringVar(&cfg.RosterPath, "roster", cfg.RosterPath, "roster output (.xlsx or .csv)")
	cmd.Flags().StringVar(&cfg.ModelPath, "model", cfg.ModelPath, "model artifact output (.yaml)")
	return cmd
}
