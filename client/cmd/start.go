package cmd

import (
	"github.com/netgfx/slack-jira-automation/common/log"
	"github.com/netgfx/slack-jira-automation/gateway"
	"github.com/netgfx/slack-jira-automation/gateway/appconfig"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:          "start",
	Short:        "Runs the http server receiving the Slack commands and interactions",
	SilenceUsage: false,
	PreRun: func(_ *cobra.Command, _ []string) {
		loadConfig()
	},
	Run: func(cmd *cobra.Command, args []string) {
		if err := gateway.Run(); err != nil {
			log.Fatal(err)
		}
	},
}

func loadConfig() {
	envFile := envFileFlag
	if envFile == "" {
		envFile = appconfig.LookupEnvFile()
	}
	if err := appconfig.Load(envFile); err != nil {
		log.Fatalf("failed loading configuration, err=%v", err)
	}
}

func init() {
	rootCmd.AddCommand(startCmd)
}
