package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/boardflow/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/boardflow/pkg/application"
)

var publishBoard string

var publishCmd = &cobra.Command{
	Use:   "publish [dir]",
	Short: "Send a report summary to the messaging adapters",
	Long: `Summarize a report directory and send the digest to every enabled
messaging adapter configured for its board.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := ""
		if len(args) == 1 {
			dir = args[0]
		}
		services, err := wiring.BuildAppServices(appConfig, wiring.BuildOptions{OutputDir: dir}, logger)
		if err != nil {
			return MapError(err)
		}

		stats, err := services.Stats.Summarize()
		if err != nil {
			return MapError(err)
		}
		digest := application.BuildDigest(stats)
		if publishBoard != "" {
			digest.BoardID = publishBoard
		}

		sent, err := services.Publish.Publish(cmd.Context(), digest)
		fmt.Fprintf(cmd.OutOrStdout(), "Published digest to %d adapter(s)\n", sent)
		if err != nil {
			return NewCLIError("publish failed", "Check messaging.adapters in "+configFileHint(), err)
		}
		return nil
	},
}

func init() {
	publishCmd.Flags().StringVarP(&publishBoard, "board", "b", "", "board id used to select adapters (default from run.yaml)")
	RootCmd.AddCommand(publishCmd)
}
