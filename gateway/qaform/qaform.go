// Package qaform maps the values of a submitted QA issue modal into the
// fields used to create the Jira issue.
package qaform

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/netgfx/slack-jira-automation/common/log"
	"github.com/netgfx/slack-jira-automation/gateway/jira"
	slackservice "github.com/netgfx/slack-jira-automation/gateway/slack"
	"github.com/slack-go/slack"
)

const defaultPriority = "Medium"

type File struct {
	ID          string
	Name        string
	DownloadURL string
	MimeType    string
}

type ModalSubmission struct {
	ProjectKey     string `form:"project" validate:"required"`
	Title          string `form:"title" validate:"required"`
	Description    string
	Priority       string
	IssueTypeID    string
	AssigneeUserID string
	Files          []File
}

// Metadata is the private metadata of the modal, set when the modal is opened
type Metadata struct {
	ChannelID string `json:"channelId"`
}

// Tracker provides the instance specific identifiers of the issue
type Tracker interface {
	PriorityID(name string) string
	DefaultIssueTypeID() string
}

// FromCallback extracts the submission of a view_submission callback
func FromCallback(cb *slack.InteractionCallback) ModalSubmission {
	return Extract(cb.View.State)
}

// Extract reads the values of the modal state. Missing values become empty strings,
// the priority defaults to Medium.
func Extract(state *slack.ViewState) ModalSubmission {
	var values map[string]map[string]slack.BlockAction
	if state != nil {
		values = state.Values
	}
	get := func(blockID, actionID string) slack.BlockAction {
		return values[blockID][actionID]
	}

	project := get(slackservice.ProjectBlockID, slackservice.ProjectActionID)
	projectKey := project.SelectedOption.Value
	if projectKey == "" {
		projectKey = project.Value
	}
	issueType := get(slackservice.IssueTypeBlockID, slackservice.IssueTypeActionID)
	issueTypeID := issueType.SelectedOption.Value
	if issueTypeID == "" && len(issueType.SelectedOptions) > 0 {
		issueTypeID = issueType.SelectedOptions[0].Value
	}
	priority := get(slackservice.PriorityBlockID, slackservice.PriorityActionID).SelectedOption.Value
	if priority == "" {
		priority = defaultPriority
	}
	return ModalSubmission{
		ProjectKey:     strings.TrimSpace(projectKey),
		Title:          strings.TrimSpace(get(slackservice.TitleBlockID, slackservice.TitleActionID).Value),
		Description:    get(slackservice.DescriptionBlockID, slackservice.DescriptionActionID).Value,
		Priority:       priority,
		IssueTypeID:    issueTypeID,
		AssigneeUserID: get(slackservice.AssigneeBlockID, slackservice.AssigneeActionID).SelectedUser,
		Files:          extractFiles(get(slackservice.AttachmentsBlockID, slackservice.AttachmentsActionID).Files),
	}
}

// extractFiles maps the files uploaded in the file input, url_private_download is used
// when url_private is absent.
func extractFiles(uploaded []slack.File) []File {
	files := make([]File, 0, len(uploaded))
	for _, f := range uploaded {
		downloadURL := f.URLPrivate
		if downloadURL == "" {
			downloadURL = f.URLPrivateDownload
		}
		files = append(files, File{ID: f.ID, Name: f.Name, DownloadURL: downloadURL, MimeType: f.Mimetype})
	}
	return files
}

// ParsePrivateMetadata decodes the private metadata of the modal,
// malformed or empty metadata returns an empty object.
func ParsePrivateMetadata(privateMetadata string) Metadata {
	var md Metadata
	if privateMetadata == "" {
		return md
	}
	if err := json.Unmarshal([]byte(privateMetadata), &md); err != nil {
		log.Warnf("failed parsing private_metadata, reason=%v", err)
		return Metadata{}
	}
	return md
}

// EncodePrivateMetadata encodes the metadata to be sent with the modal
func EncodePrivateMetadata(md Metadata) string {
	data, _ := json.Marshal(md)
	return string(data)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("form"); name != "" {
			return name
		}
		return fld.Name
	})
	return v
}

// Validate checks the fields required to create an issue
func Validate(sub ModalSubmission) error {
	err := validate.Struct(sub)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	var fields []string
	for _, verr := range verrs {
		fields = append(fields, verr.Field())
	}
	return fmt.Errorf("missing required fields: %v", strings.Join(fields, ", "))
}

// BuildDraft maps the submission to the issue fields. When the issue type is not selected,
// the default issue type of the tracker is used.
func BuildDraft(sub ModalSubmission, assigneeAccountID string, tracker Tracker) jira.IssueDraft {
	issueTypeID := sub.IssueTypeID
	if issueTypeID == "" {
		issueTypeID = tracker.DefaultIssueTypeID()
	}
	return jira.IssueDraft{
		ProjectKey:        sub.ProjectKey,
		Summary:           sub.Title,
		Description:       jira.PlainTextToADF(sub.Description),
		IssueTypeID:       issueTypeID,
		PriorityID:        tracker.PriorityID(sub.Priority),
		AssigneeAccountID: assigneeAccountID,
	}
}
