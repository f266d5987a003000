package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/boardflow/pkg/application"
	"github.com/felixgeelhaar/boardflow/pkg/domain/analytics"
	"github.com/felixgeelhaar/boardflow/pkg/storage"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats [dir]",
	Short: "Summarize a written report",
	Long: `Read throughput.csv and leadtime.csv back from a report directory and
print lead-time percentiles, throughput statistics and the predictability
class. When present, the last CFD census and the issue types of
tickets.csv are printed too.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := appConfig.OutputDir
		if len(args) == 1 {
			dir = args[0]
		}

		loc, err := appConfig.Location()
		if err != nil {
			return MapError(err)
		}
		stats, err := application.NewStatsService(storage.NewReportRepository(dir), loc).Summarize()
		if err != nil {
			return MapError(err)
		}

		out := cmd.OutOrStdout()
		if statsJSON {
			data, err := json.MarshalIndent(application.BuildDigest(stats), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		if m := stats.Manifest; m != nil {
			fmt.Fprintf(out, "Board %s, window %s..%s, generated %s\n",
				m.BoardID, m.WindowFirst, m.WindowLast, m.GeneratedAt.Format("2006-01-02 15:04"))
		}
		fmt.Fprintln(out, statsTable(stats))
		if len(stats.Periods) > 0 {
			fmt.Fprintln(out, throughputTable(stats.Periods, stats.Rolling, stats.Accumulated))
		}
		if stats.Latest != nil {
			fmt.Fprintln(out, cfdTable([]analytics.DailySnapshot{*stats.Latest}, stats.Reporting))
		}
		if len(stats.TicketTypes) > 0 {
			fmt.Fprintln(out, ticketTypesTable(stats.TicketTypes))
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "print the summary as JSON")
	RootCmd.AddCommand(statsCmd)
}
