package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/boardflow/internal/infrastructure/config"
)

var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and create the configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write an example " + config.FileName,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configFileHint()
		if err := config.WriteExample(path, configInitForce); err != nil {
			return MapError(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote example configuration to %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration with secrets redacted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := redacted(appConfig)
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func configFileHint() string {
	if configPath != "" {
		return configPath
	}
	return config.FileName
}

const redactedValue = "********"

func redacted(cfg *config.Config) config.Config {
	out := *cfg
	if out.Jira.APIToken != "" {
		out.Jira.APIToken = redactedValue
	}
	if out.Jira.OAuthToken != "" {
		out.Jira.OAuthToken = redactedValue
	}
	out.Messaging.Adapters = append(out.Messaging.Adapters[:0:0], cfg.Messaging.Adapters...)
	for i := range out.Messaging.Adapters {
		if out.Messaging.Adapters[i].Secret != "" {
			out.Messaging.Adapters[i].Secret = redactedValue
		}
	}
	return out
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd, configShowCmd)
	RootCmd.AddCommand(configCmd)
}
