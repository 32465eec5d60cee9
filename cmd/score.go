package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/okian/surveytarget/internal/adapters/export"
	"github.com/okian/surveytarget/internal/domain/query"
	"github.com/okian/surveytarget/internal/domain/targeting"
	"github.com/okian/surveytarget/pkg/logger"
)

const formatTable = "table"

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
)

type scoreFlags struct {
	hour   string
	clock  string
	day    string
	format string
	out    string
}

func newScoreCmd() *cobra.Command {
	var f scoreFlags

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score the roster once and print or export the matches",
		Example: `  surveytarget score --time 14:30 --day Friday
  surveytarget score --hour 9 --format xlsx --out targeted_doctors.xlsx`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScore(cmd, f)
		},
	}
	cmd.Flags().StringVar(&f.hour, "hour", "", "contact hour 0-23 (default from config)")
	cmd.Flags().StringVar(&f.clock, "time", "", "contact time HH:MM")
	cmd.Flags().StringVar(&f.day, "day", "", "day name or 0-6 with Monday=0 (default from config)")
	cmd.Flags().StringVar(&f.format, "format", formatTable, "output format: table|csv|xlsx")
	cmd.Flags().StringVar(&f.out, "out", "", "output file (default stdout; xlsx defaults to "+export.FileNameXLSX+")")
	return cmd
}

func runScore(cmd *cobra.Command, f scoreFlags) error {
	ctx := cmd.Context()
	// Results go to stdout; keep logs off it.
	logger.SetOutput(cmd.ErrOrStderr())
	cfg, err := setup(ctx)
	if err != nil {
		return err
	}

	var format export.Format
	if f.format != formatTable {
		if format, err = export.ParseFormat(f.format); err != nil {
			return err
		}
	}
	p, err := query.Resolve(query.Input{Hour: f.hour, Time: f.clock, Day: f.day},
		query.Params{Hour: cfg.DefaultHour, Day: cfg.DefaultDay})
	if err != nil {
		return err
	}

	svc := newService(cfg)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	out := cmd.OutOrStdout()
	path := f.out
	if path == "" && format == export.FormatXLSX {
		path = export.FileNameXLSX
	}
	if path != "" {
		fh, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer func() { _ = fh.Close() }()
		out = fh
	}

	if format == "" {
		outcome, err := svc.Targets(ctx, p)
		if err != nil {
			return err
		}
		return renderTable(out, outcome)
	}
	outcome, err := svc.Export(ctx, p, format, out)
	if err != nil {
		return err
	}
	if outcome.Result.Empty() {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "no doctors found for the selected time and day")
	}
	return nil
}

func renderTable(w io.Writer, o targeting.Outcome) error {
	when := o.Params.Clock()
	if o.DayScored {
		when += " on " + o.Params.DayName()
	}
	if o.Result.Empty() {
		_, err := fmt.Fprintf(w, "No doctors found at %s (threshold %g). Try a different combination or adjust the threshold.\n",
			when, o.Result.Threshold)
		return err
	}

	rows := make([][]string, 0, o.Result.Len())
	for _, m := range o.Result.Matches {
		rows = append(rows, []string{m.NPI, m.State, m.Region, m.Speciality, strconv.FormatFloat(m.Probability, 'f', 3, 64)})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(export.Header...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == len(export.Header)-1:
				return numberStyle
			}
			return cellStyle
		})

	_, err := fmt.Fprintf(w, "%s\n%d doctors likely to attend at %s (threshold %g)\n",
		t.Render(), o.Result.Len(), when, o.Result.Threshold)
	return err
}
