package slack

import (
	"bytes"
	"context"
	"fmt"

	"github.com/netgfx/slack-jira-automation/common/httpclient"
	"github.com/netgfx/slack-jira-automation/common/log"
	"github.com/slack-go/slack"
)

type SlackService struct {
	apiClient     *slack.Client
	slackBotToken string
}

// New creates the Slack Web API client. apiURL overrides the default
// endpoint (https://slack.com/api/) and must end with a slash.
func New(slackBotToken, apiURL string, client httpclient.HttpClient) *SlackService {
	opts := []slack.Option{}
	if apiURL != "" {
		opts = append(opts, slack.OptionAPIURL(apiURL))
	}
	if client != nil {
		opts = append(opts, slack.OptionHTTPClient(client))
	}
	return &SlackService{
		apiClient:     slack.New(slackBotToken, opts...),
		slackBotToken: slackBotToken,
	}
}

func (s *SlackService) BotToken() string { return s.slackBotToken }

// AuthTest validates the bot token
func (s *SlackService) AuthTest(ctx context.Context) (*slack.AuthTestResponse, error) {
	resp, err := s.apiClient.AuthTestContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("fail to validate slack bot token authentication, err=%v", err)
	}
	return resp, nil
}

// OpenModal opens the view using the trigger id of an interaction
func (s *SlackService) OpenModal(ctx context.Context, triggerID string, view slack.ModalViewRequest) error {
	if _, err := s.apiClient.OpenViewContext(ctx, triggerID, view); err != nil {
		return fmt.Errorf("failed opening slack modal, err=%v", err)
	}
	return nil
}

// GetUserProfile returns the profile of the user
func (s *SlackService) GetUserProfile(ctx context.Context, userID string) (*slack.UserProfile, error) {
	user, err := s.apiClient.GetUserInfoContext(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed fetching slack user %v, err=%v", userID, err)
	}
	return &user.Profile, nil
}

// DownloadFile downloads a private file (url_private) using the bot token
func (s *SlackService) DownloadFile(ctx context.Context, fileURL string) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.apiClient.GetFileContext(ctx, fileURL, &buf); err != nil {
		return nil, fmt.Errorf("failed downloading slack file, err=%v", err)
	}
	return buf.Bytes(), nil
}

// PostMessage sends a message to a channel or direct message to a user
func (s *SlackService) PostMessage(ctx context.Context, slackOrChannelID, message string) error {
	_, timestamp, err := s.apiClient.PostMessageContext(ctx, slackOrChannelID, slack.MsgOptionText(message, false))
	if err != nil {
		log.Warnf("failed post message to %q at %v, err=%v", slackOrChannelID, timestamp, err)
		return err
	}

	log.Infof("message successfully sent to %q at %s", slackOrChannelID, timestamp)
	return nil
}
