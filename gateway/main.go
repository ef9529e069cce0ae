package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/netgfx/slack-jira-automation/common/httpclient"
	"github.com/netgfx/slack-jira-automation/common/log"
	"github.com/netgfx/slack-jira-automation/common/monitoring"
	"github.com/netgfx/slack-jira-automation/common/version"
	"github.com/netgfx/slack-jira-automation/gateway/api"
	"github.com/netgfx/slack-jira-automation/gateway/appconfig"
	"github.com/netgfx/slack-jira-automation/gateway/attachments"
	"github.com/netgfx/slack-jira-automation/gateway/jira"
	slackservice "github.com/netgfx/slack-jira-automation/gateway/slack"
	"github.com/netgfx/slack-jira-automation/gateway/submission"
)

// Run starts the http server using the loaded configuration, it blocks until the server fails.
// Pending sentry events are flushed before it returns.
func Run() error {
	ver := version.Get()
	conf := appconfig.Get()
	if !conf.IsLoaded() {
		return fmt.Errorf("configuration is not loaded")
	}
	log.Infof("version=%v, commit=%v, jira-host=%v, default-project=%v, verify-signature=%v, tls=%v",
		ver.Version, ver.GitCommit, conf.JiraHostname(), conf.JiraProjectKey,
		!conf.SlackSkipVerification, conf.TLSCert() != "" || conf.GenerateTLS())

	sentryStarted, err := monitoring.StartSentry(conf.SentryDSN, conf.Environment)
	if err != nil {
		return fmt.Errorf("failed starting sentry: %w", err)
	}
	defer monitoring.Flush()

	tlsConfig, err := conf.GetTLSConfig()
	if err != nil {
		return fmt.Errorf("failed loading tls configuration: %w", err)
	}

	httpClient := httpclient.NewHttpClient(conf.TLSCA())
	jiraClient := NewJiraClient(conf, httpClient)
	slackSvc := NewSlackService(conf, httpClient)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if resp, err := slackSvc.AuthTest(ctx); err != nil {
		log.Warnf("slack auth test failed, err=%v", err)
	} else {
		log.Infof("slack bot authenticated, team=%v, bot-user=%v", resp.Team, resp.User)
	}

	processor := submission.New(
		jiraClient,
		slackSvc,
		attachments.New(slackSvc, jiraClient),
		conf.JiraProjectKey,
	)
	a := &api.Api{
		Metadata:          jiraClient,
		Modal:             slackSvc,
		Processor:         processor,
		SigningSecret:     conf.SlackSigningSecret,
		SkipVerification:  conf.SlackSkipVerification,
		DefaultProjectKey: conf.JiraProjectKey,
		ListenAddr:        conf.ListenAddr(),
		TLSConfig:         tlsConfig,
		SentryInit:        sentryStarted,
	}
	if conf.SlackSkipVerification {
		log.Warnf("slack signature verification is disabled, do not use it in production")
	}
	if err := a.StartAPI(); err != nil {
		monitoring.CaptureError(err, map[string]string{"stage": "http_server"})
		return fmt.Errorf("failed to start http server: %w", err)
	}
	return nil
}

// NewJiraClient builds the Jira client from the configuration
func NewJiraClient(conf appconfig.Config, client httpclient.HttpClient) *jira.Client {
	return jira.New(jira.Config{
		URL:                conf.JiraURL(),
		User:               conf.JiraUsername,
		APIToken:           conf.JiraAPIToken,
		DefaultIssueTypeID: conf.JiraDefaultIssueTypeID,
		PriorityIDs:        conf.JiraPriorityIDs,
	}, client)
}

// NewSlackService builds the Slack client from the configuration
func NewSlackService(conf appconfig.Config, client httpclient.HttpClient) *slackservice.SlackService {
	return slackservice.New(conf.SlackBotToken, conf.SlackAPIURL, client)
}

// CheckIntegrations validates the credentials of both integrations and
// reports the metadata available to them.
func CheckIntegrations(ctx context.Context, conf appconfig.Config) (*CheckReport, error) {
	httpClient := httpclient.NewHttpClient(conf.TLSCA())
	jiraClient := NewJiraClient(conf, httpClient)
	slackSvc := NewSlackService(conf, httpClient)

	jiraUser, err := jiraClient.TestAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("jira authentication failed: %w", err)
	}
	slackAuth, err := slackSvc.AuthTest(ctx)
	if err != nil {
		return nil, fmt.Errorf("slack authentication failed: %w", err)
	}
	return &CheckReport{
		JiraAccount: jiraUser.DisplayName,
		SlackTeam:   slackAuth.Team,
		SlackUser:   slackAuth.User,
		Projects:    jiraClient.FetchProjects(ctx),
		IssueTypes:  jiraClient.FetchIssueTypes(ctx),
		Priorities:  jiraClient.FetchPriorities(ctx),
	}, nil
}

type CheckReport struct {
	JiraAccount string           `json:"jiraAccount" yaml:"jiraAccount"`
	SlackTeam   string           `json:"slackTeam" yaml:"slackTeam"`
	SlackUser   string           `json:"slackUser" yaml:"slackUser"`
	Projects    []jira.Project   `json:"projects" yaml:"projects"`
	IssueTypes  []jira.IssueType `json:"issueTypes" yaml:"issueTypes"`
	Priorities  []jira.Priority  `json:"priorities" yaml:"priorities"`
}
