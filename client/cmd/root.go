package cmd

import (
	"os"

	"github.com/netgfx/slack-jira-automation/common/log"
	"github.com/spf13/cobra"
)

var (
	debugFlag   bool
	envFileFlag string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:               "slack-jira",
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	Long: `Relay QA issues reported through a Slack modal to Jira.
The modal is opened with a slash command, submitted issues are created in Jira
with their attachments and the reporter channel is notified.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if debugFlag {
			log.SetDefaultLoggerLevel(log.LevelDebug)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Turn on debugging")
	rootCmd.PersistentFlags().StringVar(&envFileFlag, "env-file", "", "Path of a dotenv file with the configuration, defaults to .env when it exists")
}
