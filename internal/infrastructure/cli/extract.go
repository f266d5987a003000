package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/boardflow/internal/infrastructure/config"
	"github.com/felixgeelhaar/boardflow/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/boardflow/pkg/application"
	"github.com/felixgeelhaar/boardflow/pkg/domain/board"
	"github.com/felixgeelhaar/boardflow/pkg/storage"
)

var (
	extractBoard           string
	extractSite            string
	extractDays            int
	extractThroughputWeeks int
	extractOutputDir       string
	extractOutput          string
	extractToday           string
	extractPrint           bool
	extractCFDOnly         bool
	extractSkipTickets     bool
)

var extractCmd = &cobra.Command{
	Use:   "extract [board]",
	Short: "Fetch a board and write its flow metrics",
	Long: `Fetch the cumulative flow payload of a Jira board, replay it and write
cfd.csv, throughput.csv, leadtime.csv, tickets.csv and run.yaml to the
output directory.

The board is a numeric id or a name from board_aliases. Without one the
configured board is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := *appConfig
	applyRunFlags(cmd, &cfg)
	if cmd.Flags().Changed("site") {
		cfg.Jira.Site = extractSite
	}

	boardArg := extractBoard
	if len(args) == 1 {
		boardArg = args[0]
	}
	boardID, err := cfg.ResolveBoard(boardArg)
	if err != nil {
		return MapError(err)
	}

	services, err := wiring.BuildAppServices(&cfg, wiring.BuildOptions{
		OutputDir: extractOutputDir,
		Online:    true,
	}, logger)
	if err != nil {
		return MapError(err)
	}

	opts := services.Options(boardID)
	opts.CFDOnly = extractCFDOnly || extractOutput != ""
	opts.SkipTickets = extractSkipTickets
	if opts.Today, err = parseToday(extractToday); err != nil {
		return err
	}

	report, err := services.Metrics.Extract(cmd.Context(), opts)
	if err != nil {
		return MapError(err)
	}

	out := cmd.OutOrStdout()
	if extractOutput != "" {
		if err := storage.SaveCFDFile(extractOutput, report.Snapshots, report.Options.Reporting); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %d days of CFD to %s\n", len(report.Snapshots), extractOutput)
	} else {
		manifest, err := services.Report.Save(report)
		if err != nil {
			return err
		}
		printSummary(out, manifest, services.Reports.Root())
	}

	printWarnings(out, report)
	if extractPrint {
		fmt.Fprintln(out, cfdTable(report.Snapshots, report.Options.Reporting))
	}
	return nil
}

// applyRunFlags copies the window flags shared by extract and replay onto cfg.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("days") {
		cfg.LookbackDays = extractDays
	}
	if cmd.Flags().Changed("throughput-weeks") {
		cfg.ThroughputWeeks = extractThroughputWeeks
	}
}

func parseToday(s string) (board.Date, error) {
	if s == "" {
		return board.Date{}, nil
	}
	d, err := board.ParseDate(s)
	if err != nil {
		return board.Date{}, NewCLIError("invalid --today", "Use the YYYY-MM-DD format", err)
	}
	return d, nil
}

func printSummary(out io.Writer, m *storage.Manifest, dir string) {
	c := m.Counts
	fmt.Fprintf(out, "Board %s: %d days, %d weeks, %d lead-time items, %d completed, %d tickets\n",
		m.BoardID, c.Days, c.Weeks, c.LeadTimeItems, c.Completed, c.Tickets)
	if m.WindowFirst != "" {
		fmt.Fprintf(out, "Window: %s..%s\n", m.WindowFirst, m.WindowLast)
	}
	fmt.Fprintf(out, "Report written to %s (run %s)\n", dir, m.RunID)
}

func printWarnings(out io.Writer, report *application.Report) {
	for _, w := range report.Warnings {
		fmt.Fprintf(out, "Warning: %s\n", w.Message)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&extractDays, "days", 0, "lookback in days (0 for all history)")
	cmd.Flags().IntVar(&extractThroughputWeeks, "throughput-weeks", 4, "number of weeks of throughput")
	cmd.Flags().StringVarP(&extractOutputDir, "output-dir", "o", "", "report directory (default from config)")
	cmd.Flags().StringVar(&extractToday, "today", "", "anchor date YYYY-MM-DD (default today)")
	cmd.Flags().BoolVar(&extractPrint, "print", false, "print the CFD table")
}

func init() {
	addRunFlags(extractCmd)
	extractCmd.Flags().StringVarP(&extractBoard, "board", "b", "", "board id or alias")
	extractCmd.Flags().StringVarP(&extractSite, "site", "s", "", "Jira site (default JIRA_SITE)")
	extractCmd.Flags().StringVar(&extractOutput, "output", "", "write only the CFD to this file")
	extractCmd.Flags().BoolVar(&extractCFDOnly, "cfd-only", false, "skip throughput, lead time and tickets")
	extractCmd.Flags().BoolVar(&extractSkipTickets, "skip-tickets", false, "do not fetch completed ticket details")
	RootCmd.AddCommand(extractCmd)
}
