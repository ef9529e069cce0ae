package slack

import (
	"fmt"

	"github.com/slack-go/slack"
)

const (
	QAIssueModalCallbackID = "qa_issue_modal"

	ProjectBlockID      = "project_select"
	ProjectActionID     = "project"
	TitleBlockID        = "issue_title"
	TitleActionID       = "title"
	DescriptionBlockID  = "issue_description"
	DescriptionActionID = "description"
	PriorityBlockID     = "issue_priority"
	PriorityActionID    = "priority"
	IssueTypeBlockID    = "issue_components"
	IssueTypeActionID   = "components"
	AttachmentsBlockID  = "issue_attachments"
	AttachmentsActionID = "attachments"
	AssigneeBlockID     = "issue_assignee"
	AssigneeActionID    = "assignee"

	// it's 75 characters in Slack
	maxOptionTextSize = 75
	maxAttachments    = 5
)

var (
	PriorityNames       = []string{"High", "Medium", "Low"}
	attachmentFileTypes = []string{"jpg", "jpeg", "png", "gif", "mp4", "mov", "wmv", "webm"}
)

// ModalOption is a choice of a static select
type ModalOption struct {
	Value string
	Text  string
}

func plainText(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.PlainTextType, text, false, false)
}

func inputBlock(blockID, label string, element slack.BlockElement, optional bool) *slack.InputBlock {
	return &slack.InputBlock{
		Type:     slack.MBTInput,
		BlockID:  blockID,
		Label:    plainText(label),
		Element:  element,
		Optional: optional,
	}
}

func staticSelect(actionID, placeholder string, options []ModalOption) *slack.SelectBlockElement {
	var opts []*slack.OptionBlockObject
	for _, opt := range options {
		text := opt.Text
		if runes := []rune(text); len(runes) > maxOptionTextSize {
			text = string(runes[:maxOptionTextSize-3]) + "..."
		}
		opts = append(opts, slack.NewOptionBlockObject(opt.Value, plainText(text), nil))
	}
	var placeholderObj *slack.TextBlockObject
	if placeholder != "" {
		placeholderObj = plainText(placeholder)
	}
	return slack.NewOptionsSelectBlockElement(slack.OptTypeStatic, placeholderObj, actionID, opts...)
}

// NewQAIssueModal builds the view used to report an issue.
//
// Slack refuses static selects without options, when there are no projects the project
// becomes a text input prefilled with defaultProjectKey and when there are no issue types
// the block is omitted, letting the default issue type be used.
func NewQAIssueModal(projects, issueTypes []ModalOption, defaultProjectKey, privateMetadata string) slack.ModalViewRequest {
	var projectElement slack.BlockElement
	if len(projects) > 0 {
		projectElement = staticSelect(ProjectActionID, "Select project", projects)
	} else {
		input := slack.NewPlainTextInputBlockElement(plainText("Project key, e.g: QA"), ProjectActionID)
		input.InitialValue = defaultProjectKey
		projectElement = input
	}

	description := slack.NewPlainTextInputBlockElement(plainText("Describe the issue"), DescriptionActionID)
	description.Multiline = true

	var priorities []ModalOption
	for _, name := range PriorityNames {
		priorities = append(priorities, ModalOption{Value: name, Text: name})
	}

	blocks := []slack.Block{
		inputBlock(ProjectBlockID, "Project", projectElement, false),
		inputBlock(TitleBlockID, "Issue Title (Include platform)",
			slack.NewPlainTextInputBlockElement(plainText("e.g: [Platform] Issue with live match"), TitleActionID), false),
		inputBlock(DescriptionBlockID, "Description", description, false),
		inputBlock(PriorityBlockID, "Priority", staticSelect(PriorityActionID, "", priorities), false),
	}
	if len(issueTypes) > 0 {
		blocks = append(blocks,
			inputBlock(IssueTypeBlockID, "Issue Type", staticSelect(IssueTypeActionID, "Select issue type", issueTypes), true))
	}
	blocks = append(blocks,
		inputBlock(AttachmentsBlockID, "Screenshots & Recordings",
			slack.NewFileInputBlockElement(AttachmentsActionID).
				WithFileTypes(attachmentFileTypes...).
				WithMaxFiles(maxAttachments), true),
		inputBlock(AssigneeBlockID, "Assign To",
			slack.NewOptionsSelectBlockElement(slack.OptTypeUser, plainText("Select assignee"), AssigneeActionID), true),
	)

	return slack.ModalViewRequest{
		Type:            slack.VTModal,
		CallbackID:      QAIssueModalCallbackID,
		PrivateMetadata: privateMetadata,
		Title:           plainText("Report QA Issue"),
		Submit:          plainText("Submit"),
		Close:           plainText("Cancel"),
		Blocks:          slack.Blocks{BlockSet: blocks},
	}
}

// ProjectOption formats a project as a select option
func ProjectOption(key, name string) ModalOption {
	return ModalOption{Value: key, Text: fmt.Sprintf("%s - %s", key, name)}
}
