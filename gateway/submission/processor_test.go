package submission

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/netgfx/slack-jira-automation/gateway/attachments"
	"github.com/netgfx/slack-jira-automation/gateway/jira"
	"github.com/netgfx/slack-jira-automation/gateway/qaform"
	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTracker struct {
	users     map[string]*jira.User
	createErr error
	drafts    []jira.IssueDraft
}

func (t *fakeTracker) PriorityID(name string) string {
	switch name {
	case "High":
		return "2"
	case "Low":
		return "4"
	}
	return "3"
}

func (t *fakeTracker) DefaultIssueTypeID() string { return "10002" }

func (t *fakeTracker) FindUserByEmail(_ context.Context, email string) *jira.User {
	return t.users[email]
}

func (t *fakeTracker) CreateIssue(_ context.Context, draft jira.IssueDraft) (*jira.CreatedIssue, error) {
	t.drafts = append(t.drafts, draft)
	if t.createErr != nil {
		return nil, t.createErr
	}
	return &jira.CreatedIssue{ID: "10100", Key: draft.ProjectKey + "-42", URL: "https://acme.atlassian.net/browse/" + draft.ProjectKey + "-42"}, nil
}

func (t *fakeTracker) TestAuth(context.Context) (*jira.User, error) {
	return &jira.User{AccountID: "bot"}, nil
}

func (t *fakeTracker) GetIssueCreateMeta(context.Context, string) (*jira.CreateMeta, error) {
	return &jira.CreateMeta{}, nil
}

func (t *fakeTracker) FetchPriorities(context.Context) []jira.Priority { return []jira.Priority{} }

type message struct {
	channel string
	text    string
}

type fakeChat struct {
	profiles   map[string]*slack.UserProfile
	postErr    error
	messages   []message
	profileReq []string
}

func (c *fakeChat) GetUserProfile(_ context.Context, userID string) (*slack.UserProfile, error) {
	c.profileReq = append(c.profileReq, userID)
	profile, ok := c.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("user_not_found")
	}
	return profile, nil
}

func (c *fakeChat) PostMessage(_ context.Context, channel, text string) error {
	c.messages = append(c.messages, message{channel, text})
	return c.postErr
}

type fakeRelay struct {
	calls int
	files []qaform.File
}

func (r *fakeRelay) Process(_ context.Context, _ string, files []qaform.File) []attachments.Result {
	r.calls++
	r.files = files
	results := []attachments.Result{}
	for _, f := range files {
		results = append(results, attachments.Result{FileID: f.ID, FileName: f.Name, Success: true})
	}
	return results
}

func newCallback(values map[string]map[string]slack.BlockAction, privateMetadata string) *slack.InteractionCallback {
	cb := &slack.InteractionCallback{Type: slack.InteractionTypeViewSubmission}
	cb.User.ID = "U999"
	cb.View.CallbackID = "qa_issue_modal"
	cb.View.PrivateMetadata = privateMetadata
	cb.View.State = &slack.ViewState{Values: values}
	return cb
}

func selected(value string) slack.BlockAction {
	return slack.BlockAction{SelectedOption: slack.OptionBlockObject{Value: value}}
}

func TestProcessCreatesIssueAndNotifiesChannel(t *testing.T) {
	tracker := &fakeTracker{users: map[string]*jira.User{"alice@acme.io": {AccountID: "acc-alice"}}}
	chat := &fakeChat{profiles: map[string]*slack.UserProfile{"U123": {Email: "alice@acme.io"}}}
	relay := &fakeRelay{}
	cb := newCallback(map[string]map[string]slack.BlockAction{
		"project_select":    {"project": selected("QA")},
		"issue_title":       {"title": {Value: "Login broken"}},
		"issue_description": {"description": {Value: strings.Repeat("x", 300)}},
		"issue_priority":    {"priority": selected("High")},
		"issue_assignee":    {"assignee": {SelectedUser: "U123"}},
	}, `{"channelId":"C123"}`)

	out := New(tracker, chat, relay, "").Process(context.Background(), Request{Callback: cb})

	require.NoError(t, out.Err)
	assert.NotEmpty(t, out.ID)
	assert.Equal(t, StateDone, out.State)
	assert.Equal(t, []State{
		StateReceived, StateAcknowledged, StateIdentityResolving, StateIssueCreating,
		StateAttachmentsProcessing, StateNotifying, StateDone,
	}, out.Transitions())

	require.Len(t, tracker.drafts, 1)
	draft := tracker.drafts[0]
	assert.Equal(t, "QA", draft.ProjectKey)
	assert.Equal(t, "Login broken", draft.Summary)
	assert.Equal(t, "2", draft.PriorityID)
	assert.Equal(t, "10002", draft.IssueTypeID)
	assert.Equal(t, "acc-alice", draft.AssigneeAccountID)
	assert.Equal(t, jira.PlainTextToADF(strings.Repeat("x", 300)), draft.Description)

	assert.Equal(t, 1, relay.calls)
	assert.Empty(t, relay.files)

	require.Len(t, chat.messages, 1)
	assert.Equal(t, "C123", chat.messages[0].channel)
	assert.Equal(t, "C123", out.NotifiedTo)
	assert.Contains(t, chat.messages[0].text, "<https://acme.atlassian.net/browse/QA-42|QA-42>")
	assert.Contains(t, chat.messages[0].text, "*Title:* Login broken")
	assert.Contains(t, chat.messages[0].text, "*Description:* "+strings.Repeat("x", 277)+"...")
	assert.NotContains(t, chat.messages[0].text, strings.Repeat("x", 278))
}

func TestProcessRelaysAttachments(t *testing.T) {
	tracker, chat, relay := &fakeTracker{}, &fakeChat{}, &fakeRelay{}
	uploaded := []slack.File{{ID: "F1", Name: "screen.png", Mimetype: "image/png", URLPrivate: "https://files.slack.com/F1"}}
	cb := newCallback(map[string]map[string]slack.BlockAction{
		"project_select":    {"project": selected("QA")},
		"issue_title":       {"title": {Value: "Crash"}},
		"issue_attachments": {"attachments": {Files: uploaded}},
	}, `{"channelId":"C123"}`)

	out := New(tracker, chat, relay, "").Process(context.Background(), Request{Callback: cb})

	require.NoError(t, out.Err)
	require.Len(t, relay.files, 1)
	assert.Equal(t, "F1", relay.files[0].ID)
	require.Len(t, out.Attachments, 1)
	assert.True(t, out.Attachments[0].Success)
}

func TestProcessIdentityResolution(t *testing.T) {
	for _, tt := range []struct {
		msg      string
		profiles map[string]*slack.UserProfile
		users    map[string]*jira.User
		assignee string
		want     string
	}{
		{
			msg:      "it should not resolve an assignee when none was selected",
			assignee: "",
			want:     "",
		},
		{
			msg:      "it should create the issue without assignee when the slack lookup fails",
			assignee: "U404",
			want:     "",
		},
		{
			msg:      "it should create the issue without assignee when the profile has no email",
			profiles: map[string]*slack.UserProfile{"U123": {}},
			assignee: "U123",
			want:     "",
		},
		{
			msg:      "it should create the issue without assignee when no jira user matches",
			profiles: map[string]*slack.UserProfile{"U123": {Email: "ghost@acme.io"}},
			users:    map[string]*jira.User{},
			assignee: "U123",
			want:     "",
		},
		{
			msg:      "it should assign the matching jira account",
			profiles: map[string]*slack.UserProfile{"U123": {Email: "bob@acme.io"}},
			users:    map[string]*jira.User{"bob@acme.io": {AccountID: "acc-bob"}},
			assignee: "U123",
			want:     "acc-bob",
		},
	} {
		t.Run(tt.msg, func(t *testing.T) {
			tracker := &fakeTracker{users: tt.users}
			chat := &fakeChat{profiles: tt.profiles}
			values := map[string]map[string]slack.BlockAction{
				"project_select": {"project": selected("QA")},
				"issue_title":    {"title": {Value: "Crash"}},
			}
			if tt.assignee != "" {
				values["issue_assignee"] = map[string]slack.BlockAction{"assignee": {SelectedUser: tt.assignee}}
			}
			out := New(tracker, chat, &fakeRelay{}, "").Process(context.Background(), Request{Callback: newCallback(values, "")})

			require.NoError(t, out.Err)
			assert.Equal(t, StateDone, out.State)
			require.Len(t, tracker.drafts, 1)
			assert.Equal(t, tt.want, tracker.drafts[0].AssigneeAccountID)
			if tt.assignee == "" {
				assert.Empty(t, chat.profileReq)
			}
		})
	}
}

func TestProcessCreationFailureNotifiesUser(t *testing.T) {
	tracker := &fakeTracker{createErr: &jira.APIError{Op: "create issue", StatusCode: 400, Body: "priority is invalid"}}
	chat, relay := &fakeChat{}, &fakeRelay{}
	cb := newCallback(map[string]map[string]slack.BlockAction{
		"project_select": {"project": selected("QA")},
		"issue_title":    {"title": {Value: "Crash"}},
	}, `{"channelId":"C123"}`)

	out := New(tracker, chat, relay, "").Process(context.Background(), Request{Callback: cb})

	require.Error(t, out.Err)
	assert.Equal(t, StateFailed, out.State)
	assert.Nil(t, out.Issue)
	assert.Equal(t, 0, relay.calls)
	assert.Equal(t, []State{StateReceived, StateAcknowledged, StateIdentityResolving, StateIssueCreating, StateFailed}, out.Transitions())

	require.Len(t, chat.messages, 1)
	assert.Equal(t, "U999", chat.messages[0].channel)
	assert.Equal(t, "U999", out.NotifiedTo)
	assert.Equal(t, "❌ Failed to create issue in Jira: unable to create issue, status=400, body=priority is invalid", chat.messages[0].text)
}

func TestProcessMissingRequiredFields(t *testing.T) {
	for _, tt := range []struct {
		msg               string
		defaultProjectKey string
		values            map[string]map[string]slack.BlockAction
		wantErr           string
	}{
		{
			msg:     "it should fail without project and title",
			values:  map[string]map[string]slack.BlockAction{},
			wantErr: "missing required fields: project, title",
		},
		{
			msg:               "it should fail without title when the project has a default",
			defaultProjectKey: "QA",
			values:            map[string]map[string]slack.BlockAction{},
			wantErr:           "missing required fields: title",
		},
	} {
		t.Run(tt.msg, func(t *testing.T) {
			tracker, chat := &fakeTracker{}, &fakeChat{}
			out := New(tracker, chat, &fakeRelay{}, tt.defaultProjectKey).
				Process(context.Background(), Request{Callback: newCallback(tt.values, "")})
			assert.EqualError(t, out.Err, tt.wantErr)
			assert.Equal(t, StateFailed, out.State)
			assert.Empty(t, tracker.drafts)
			require.Len(t, chat.messages, 1)
			assert.Equal(t, "U999", chat.messages[0].channel)
		})
	}
}

func TestProcessUsesDefaultProjectKey(t *testing.T) {
	tracker, chat := &fakeTracker{}, &fakeChat{}
	cb := newCallback(map[string]map[string]slack.BlockAction{
		"issue_title": {"title": {Value: "Crash"}},
	}, "")

	out := New(tracker, chat, &fakeRelay{}, "OPS").Process(context.Background(), Request{Callback: cb})

	require.NoError(t, out.Err)
	require.Len(t, tracker.drafts, 1)
	assert.Equal(t, "OPS", tracker.drafts[0].ProjectKey)
	assert.Equal(t, "3", tracker.drafts[0].PriorityID)
	// without a channel in the metadata the reporter is notified
	require.Len(t, chat.messages, 1)
	assert.Equal(t, "U999", chat.messages[0].channel)
}

func TestProcessNotificationTarget(t *testing.T) {
	for _, tt := range []struct {
		msg             string
		privateMetadata string
		want            string
	}{
		{msg: "it should notify the channel of the metadata", privateMetadata: `{"channelId":"C123"}`, want: "C123"},
		{msg: "it should notify the reporter without metadata", privateMetadata: "", want: "U999"},
		{msg: "it should notify the reporter when the metadata is malformed", privateMetadata: `{"channelId":`, want: "U999"},
		{msg: "it should notify the reporter when the metadata has no channel", privateMetadata: `{"other":"C123"}`, want: "U999"},
	} {
		t.Run(tt.msg, func(t *testing.T) {
			tracker, chat := &fakeTracker{}, &fakeChat{}
			cb := newCallback(map[string]map[string]slack.BlockAction{
				"project_select": {"project": selected("QA")},
				"issue_title":    {"title": {Value: "Crash"}},
			}, tt.privateMetadata)

			out := New(tracker, chat, &fakeRelay{}, "").Process(context.Background(), Request{Callback: cb})

			require.NoError(t, out.Err)
			assert.Equal(t, StateDone, out.State)
			require.Len(t, tracker.drafts, 1)
			require.Len(t, chat.messages, 1)
			assert.Equal(t, tt.want, chat.messages[0].channel)
			assert.Equal(t, tt.want, out.NotifiedTo)
		})
	}
}

func TestProcessNotificationFailureIsNotFatal(t *testing.T) {
	tracker := &fakeTracker{}
	chat := &fakeChat{postErr: fmt.Errorf("channel_not_found")}
	cb := newCallback(map[string]map[string]slack.BlockAction{
		"project_select": {"project": selected("QA")},
		"issue_title":    {"title": {Value: "Crash"}},
	}, `{"channelId":"C404"}`)

	out := New(tracker, chat, &fakeRelay{}, "").Process(context.Background(), Request{Callback: cb})

	assert.NoError(t, out.Err)
	assert.EqualError(t, out.NotifyErr, "channel_not_found")
	assert.Equal(t, StateDone, out.State)
	assert.Len(t, chat.messages, 1)
}
