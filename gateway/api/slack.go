package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/netgfx/slack-jira-automation/common/log"
	"github.com/netgfx/slack-jira-automation/gateway/jira"
	"github.com/netgfx/slack-jira-automation/gateway/qaform"
	slackservice "github.com/netgfx/slack-jira-automation/gateway/slack"
	"github.com/netgfx/slack-jira-automation/gateway/submission"
	"github.com/slack-go/slack"
	"golang.org/x/sync/errgroup"
)

// SlashCommand opens the QA issue modal in response to a slash command
func (api *Api) SlashCommand(c *gin.Context) {
	cmd, err := slack.SlashCommandParse(c.Request)
	if err != nil {
		log.Infof("failed parsing slash command, err=%v", err)
		c.JSON(http.StatusBadRequest, gin.H{"message": "unable to parse slash command"})
		return
	}
	log.Infof("received slash command %v, user=%v, channel=%v", cmd.Command, cmd.UserID, cmd.ChannelID)

	var (
		projects   []jira.Project
		issueTypes []jira.IssueType
	)
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		projects = api.Metadata.FetchProjects(ctx)
		return nil
	})
	g.Go(func() error {
		issueTypes = api.Metadata.FetchIssueTypes(ctx)
		return nil
	})
	_ = g.Wait()

	view := slackservice.NewQAIssueModal(
		projectOptions(projects),
		issueTypeOptions(issueTypes),
		api.DefaultProjectKey,
		qaform.EncodePrivateMetadata(qaform.Metadata{ChannelID: cmd.ChannelID}),
	)
	if err := api.Modal.OpenModal(c.Request.Context(), cmd.TriggerID, view); err != nil {
		log.Errorf("failed opening modal, user=%v, err=%v", cmd.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to open modal"})
		return
	}
	c.Status(http.StatusOK)
}

// Interactive acknowledges interaction payloads. Submissions of the QA issue
// modal are processed after the acknowledgment is sent.
func (api *Api) Interactive(c *gin.Context) {
	rawPayload := []byte(c.PostForm("payload"))
	var cb slack.InteractionCallback
	if err := json.Unmarshal(rawPayload, &cb); err != nil {
		log.Infof("failed parsing interaction payload, err=%v", err)
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid payload"})
		return
	}
	if cb.Type != slack.InteractionTypeViewSubmission || cb.View.CallbackID != slackservice.QAIssueModalCallbackID {
		log.Debugf("ignoring interaction, type=%v, callback=%v", cb.Type, cb.View.CallbackID)
		c.Status(http.StatusOK)
		return
	}

	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()
	c.Writer.Flush()
	api.runAsync(func() {
		// the request context is canceled once the acknowledgment is sent
		api.Processor.Process(context.Background(), submission.Request{Callback: &cb})
	})
}

func projectOptions(projects []jira.Project) []slackservice.ModalOption {
	opts := make([]slackservice.ModalOption, 0, len(projects))
	for _, p := range projects {
		opts = append(opts, slackservice.ProjectOption(p.Key, p.Name))
	}
	return opts
}

func issueTypeOptions(issueTypes []jira.IssueType) []slackservice.ModalOption {
	opts := make([]slackservice.ModalOption, 0, len(issueTypes))
	for _, it := range issueTypes {
		opts = append(opts, slackservice.ModalOption{Value: it.ID, Text: it.Name})
	}
	return opts
}
