package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/boardflow/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/boardflow/pkg/storage"
)

var replayBoard string

var replayCmd = &cobra.Command{
	Use:   "replay <payload>",
	Short: "Recompute metrics from a cached board payload",
	Long: `Replay a payload saved by extract (payload.json.zst) or a plain JSON
payload without contacting Jira. Tickets are not fetched.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg := *appConfig
	applyRunFlags(cmd, &cfg)

	raw, err := storage.LoadPayloadFile(args[0])
	if err != nil {
		return NewCLIError("failed to read payload", "Pass a payload.json.zst written by 'boardflow extract'", err)
	}

	services, err := wiring.BuildAppServices(&cfg, wiring.BuildOptions{OutputDir: extractOutputDir}, logger)
	if err != nil {
		return MapError(err)
	}

	boardID := replayBoard
	if boardID == "" {
		boardID = cfg.Board
	}
	opts := services.Options(boardID)
	if opts.Today, err = parseToday(extractToday); err != nil {
		return err
	}

	report, err := services.Metrics.Compute(raw, opts)
	if err != nil {
		return MapError(err)
	}
	manifest, err := services.Report.Save(report)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printSummary(out, manifest, services.Reports.Root())
	printWarnings(out, report)
	if extractPrint {
		fmt.Fprintln(out, cfdTable(report.Snapshots, report.Options.Reporting))
	}
	return nil
}

func init() {
	addRunFlags(replayCmd)
	replayCmd.Flags().StringVarP(&replayBoard, "board", "b", "", "board id recorded in run.yaml")
	RootCmd.AddCommand(replayCmd)
}
