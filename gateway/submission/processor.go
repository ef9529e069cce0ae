package submission

import (
	"context"

	"github.com/google/uuid"
	"github.com/netgfx/slack-jira-automation/common/log"
	"github.com/netgfx/slack-jira-automation/common/monitoring"
	"github.com/netgfx/slack-jira-automation/gateway/attachments"
	"github.com/netgfx/slack-jira-automation/gateway/jira"
	"github.com/netgfx/slack-jira-automation/gateway/qaform"
	slackservice "github.com/netgfx/slack-jira-automation/gateway/slack"
	"github.com/pkg/errors"
	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

type State string

const (
	StateReceived              State = "received"
	StateAcknowledged          State = "acknowledged"
	StateIdentityResolving     State = "identity-resolving"
	StateIssueCreating         State = "issue-creating"
	StateAttachmentsProcessing State = "attachments-processing"
	StateNotifying             State = "notifying"
	StateDone                  State = "done"
	StateFailed                State = "failed"
)

type Tracker interface {
	qaform.Tracker
	FindUserByEmail(ctx context.Context, email string) *jira.User
	CreateIssue(ctx context.Context, draft jira.IssueDraft) (*jira.CreatedIssue, error)
	TestAuth(ctx context.Context) (*jira.User, error)
	GetIssueCreateMeta(ctx context.Context, projectKey string) (*jira.CreateMeta, error)
	FetchPriorities(ctx context.Context) []jira.Priority
}

type Chat interface {
	GetUserProfile(ctx context.Context, userID string) (*slack.UserProfile, error)
	PostMessage(ctx context.Context, slackOrChannelID, message string) error
}

type AttachmentRelay interface {
	Process(ctx context.Context, issueKey string, files []qaform.File) []attachments.Result
}

// Request is a view submission of the QA issue modal
type Request struct {
	Callback *slack.InteractionCallback
}

// Outcome describes how a submission was processed
type Outcome struct {
	ID            string
	State         State
	Issue         *jira.CreatedIssue
	Attachments   []attachments.Result
	NotifiedTo    string
	NotifyErr     error
	Err           error
	transitionLog []State
}

// Transitions returns the states the submission went through
func (o *Outcome) Transitions() []State { return o.transitionLog }

type Processor struct {
	tracker           Tracker
	chat              Chat
	relay             AttachmentRelay
	defaultProjectKey string
}

func New(tracker Tracker, chat Chat, relay AttachmentRelay, defaultProjectKey string) *Processor {
	return &Processor{
		tracker:           tracker,
		chat:              chat,
		relay:             relay,
		defaultProjectKey: defaultProjectKey,
	}
}

// Process creates the issue of an already acknowledged submission, attaches the files and
// notifies the originating channel. When the issue can't be created, the submitting
// user is notified. Notifications are attempted once.
func (p *Processor) Process(ctx context.Context, req Request) *Outcome {
	cb := req.Callback
	out := &Outcome{ID: uuid.NewString(), transitionLog: []State{StateReceived, StateAcknowledged}}
	out.State = StateAcknowledged
	logger := log.With("sid", out.ID, "user", cb.User.ID)

	sub := qaform.FromCallback(cb)
	channelID := qaform.ParsePrivateMetadata(cb.View.PrivateMetadata).ChannelID
	if channelID == "" {
		channelID = cb.User.ID
	}
	logger.Infof("processing submission, project=%v, priority=%v, files=%v, with-assignee=%v",
		sub.ProjectKey, sub.Priority, len(sub.Files), sub.AssigneeUserID != "")

	p.transition(logger, out, StateIdentityResolving)
	assigneeAccountID := p.resolveAssignee(ctx, logger, sub.AssigneeUserID)

	p.transition(logger, out, StateIssueCreating)
	issue, err := p.createIssue(ctx, logger, sub, assigneeAccountID)
	if err != nil {
		p.fail(ctx, logger, out, cb.User.ID, err)
		return out
	}
	out.Issue = issue
	logger.Infof("jira issue created, key=%v, url=%v", issue.Key, issue.URL)

	p.transition(logger, out, StateAttachmentsProcessing)
	out.Attachments = p.relay.Process(ctx, issue.Key, sub.Files)

	p.transition(logger, out, StateNotifying)
	out.NotifiedTo = channelID
	msg := slackservice.SuccessMessage(issue.Key, issue.URL, sub.Title, sub.Description)
	if err := p.chat.PostMessage(ctx, channelID, msg); err != nil {
		out.NotifyErr = err
		logger.Warnf("failed notifying issue %v to %v, reason=%v", issue.Key, channelID, err)
	}
	p.transition(logger, out, StateDone)
	return out
}

func (p *Processor) transition(logger *zap.SugaredLogger, out *Outcome, state State) {
	logger.Debugf("submission state %v -> %v", out.State, state)
	out.State = state
	out.transitionLog = append(out.transitionLog, state)
}

// resolveAssignee maps the Slack user to a Jira account using the e-mail of the profile.
// Any failure results in an issue without assignee.
func (p *Processor) resolveAssignee(ctx context.Context, logger *zap.SugaredLogger, slackUserID string) string {
	if slackUserID == "" {
		return ""
	}
	profile, err := p.chat.GetUserProfile(ctx, slackUserID)
	if err != nil {
		logger.Warnf("unable to resolve assignee %v, reason=%v", slackUserID, err)
		return ""
	}
	if profile == nil || profile.Email == "" {
		logger.Warnf("unable to resolve assignee %v, slack profile has no email", slackUserID)
		return ""
	}
	user := p.tracker.FindUserByEmail(ctx, profile.Email)
	if user == nil || user.AccountID == "" {
		logger.Warnf("unable to resolve assignee %v, no jira user found for its email", slackUserID)
		return ""
	}
	return user.AccountID
}

func (p *Processor) createIssue(ctx context.Context, logger *zap.SugaredLogger, sub qaform.ModalSubmission, assigneeAccountID string) (*jira.CreatedIssue, error) {
	if sub.ProjectKey == "" {
		sub.ProjectKey = p.defaultProjectKey
	}
	if err := qaform.Validate(sub); err != nil {
		return nil, err
	}
	if log.IsDebugLevel() {
		p.logDiagnostics(ctx, logger, sub.ProjectKey)
	}
	return p.tracker.CreateIssue(ctx, qaform.BuildDraft(sub, assigneeAccountID, p.tracker))
}

// logDiagnostics logs what Jira exposes to the credentials, it helps troubleshooting
// issue types and priorities ids that don't match the instance.
func (p *Processor) logDiagnostics(ctx context.Context, logger *zap.SugaredLogger, projectKey string) {
	if user, err := p.tracker.TestAuth(ctx); err != nil {
		logger.Debugf("jira auth test failed, reason=%v", err)
	} else {
		logger.Debugf("jira auth test succeeded, account=%v", user.AccountID)
	}
	if meta, err := p.tracker.GetIssueCreateMeta(ctx, projectKey); err != nil {
		logger.Debugf("failed fetching issue create metadata, reason=%v", err)
	} else {
		for _, proj := range meta.Projects {
			logger.Debugf("available issue types, project=%v, types=%+v", proj.Key, proj.IssueTypes)
		}
	}
	logger.Debugf("available priorities: %+v", p.tracker.FetchPriorities(ctx))
}

func (p *Processor) fail(ctx context.Context, logger *zap.SugaredLogger, out *Outcome, userID string, err error) {
	p.transition(logger, out, StateFailed)
	out.Err = err
	out.NotifiedTo = userID
	logger.Errorf("failed creating jira issue, reason=%v", err)
	monitoring.CaptureError(errors.Wrap(err, "create jira issue"), map[string]string{"sid": out.ID})
	if nerr := p.chat.PostMessage(ctx, userID, slackservice.ErrorMessage(err.Error())); nerr != nil {
		out.NotifyErr = nerr
		logger.Warnf("failed notifying failure to %v, reason=%v", userID, nerr)
	}
}
