package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/briandowns/spinner"
	"github.com/netgfx/slack-jira-automation/common/log"
	"github.com/netgfx/slack-jira-automation/gateway"
	"github.com/netgfx/slack-jira-automation/gateway/appconfig"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

var checkOutputFlag string

var checkExampleDesc = `slack-jira check
slack-jira check --env-file ./config/.env
slack-jira check -o json
slack-jira check -o yaml`

var checkCmd = &cobra.Command{
	Use:          "check",
	Short:        "Validate the Slack and Jira credentials and list the Jira metadata",
	Long:         "Validate the Slack and Jira credentials and list the projects, issue types and priorities available to the Jira account. Use it to configure JIRA_DEFAULT_ISSUE_TYPE_ID and JIRA_PRIORITY_IDS.",
	Example:      checkExampleDesc,
	SilenceUsage: true,
	PreRun: func(_ *cobra.Command, _ []string) {
		loadConfig()
	},
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		loader := spinner.New(spinner.CharSets[11], 70*time.Millisecond,
			spinner.WithWriter(os.Stderr), spinner.WithHiddenCursor(true))
		loader.Suffix = " checking slack and jira credentials ..."
		if term.IsTerminal(int(os.Stderr.Fd())) {
			loader.Start()
		}
		report, err := gateway.CheckIntegrations(ctx, appconfig.Get())
		loader.Stop()
		if err != nil {
			log.Fatalf("check failed: %v", err)
		}
		if err := writeCheckReport(os.Stdout, checkOutputFlag, report); err != nil {
			log.Fatalf("failed writing report: %v", err)
		}
	},
}

func writeCheckReport(out io.Writer, format string, report *gateway.CheckReport) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	case "":
		printCheckReport(out, report)
		return nil
	}
	return fmt.Errorf("unknown output format %q", format)
}

func printCheckReport(out io.Writer, report *gateway.CheckReport) {
	fmt.Fprintf(out, "jira account: %s\n", report.JiraAccount)
	fmt.Fprintf(out, "slack team: %s, bot user: %s\n\n", report.SlackTeam, report.SlackUser)

	w := tabwriter.NewWriter(out, 6, 4, 3, ' ', tabwriter.TabIndent)
	defer w.Flush()
	fmt.Fprintln(w, "KIND\tID\tKEY\tNAME\t")
	for _, p := range report.Projects {
		fmt.Fprintf(w, "project\t%s\t%s\t%s\t\n", p.ID, p.Key, p.Name)
	}
	for _, it := range report.IssueTypes {
		if it.Subtask {
			continue
		}
		fmt.Fprintf(w, "issuetype\t%s\t-\t%s\t\n", it.ID, it.Name)
	}
	for _, p := range report.Priorities {
		fmt.Fprintf(w, "priority\t%s\t-\t%s\t\n", p.ID, p.Name)
	}
}

func init() {
	checkCmd.Flags().StringVarP(&checkOutputFlag, "output", "o", "", "Output format. One of: (json|yaml)")
	rootCmd.AddCommand(checkCmd)
}
