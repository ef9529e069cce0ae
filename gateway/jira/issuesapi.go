package jira

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/netgfx/slack-jira-automation/common/log"
)

// CreateIssue creates the issue. Issue type and priority fall back to the configured
// defaults when they are empty. The assignee is set only when an account id is present.
func (c *Client) CreateIssue(ctx context.Context, draft IssueDraft) (*CreatedIssue, error) {
	fields := issueFields{
		Project:     projectRef{Key: draft.ProjectKey},
		Summary:     draft.Summary,
		Description: draft.Description,
		Issuetype:   idRef{ID: draft.IssueTypeID},
		Priority:    idRef{ID: draft.PriorityID},
	}
	if fields.Issuetype.ID == "" {
		fields.Issuetype.ID = c.conf.DefaultIssueTypeID
	}
	if fields.Priority.ID == "" {
		fields.Priority.ID = c.PriorityID(DefaultPriorityName)
	}
	if draft.AssigneeAccountID != "" {
		fields.Assignee = &idRef{ID: draft.AssigneeAccountID}
	}
	log.Infof("creating jira issue, project=%v, issuetype=%v, priority=%v, with-assignee=%v",
		fields.Project.Key, fields.Issuetype.ID, fields.Priority.ID, fields.Assignee != nil)

	var resp IssueResponse
	err := c.doJSON(ctx, "create jira issue", http.MethodPost, "/rest/api/3/issue",
		issuePayload{Fields: fields}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Key == "" {
		return nil, fmt.Errorf("jira did not return the issue key, id=%v, self=%v", resp.ID, resp.Self)
	}
	return &CreatedIssue{ID: resp.ID, Key: resp.Key, URL: c.BrowseURL(resp.Key)}, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// AttachFile uploads the file as an attachment of the issue
func (c *Client) AttachFile(ctx context.Context, issueKey string, data []byte, fileName, contentType string) ([]Attachment, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(fileName)))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed creating multipart file part, reason=%v", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed writing multipart file part, reason=%v", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed closing multipart body, reason=%v", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, fmt.Sprintf("/rest/api/3/issue/%s/attachments", issueKey), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	// required by Jira to accept multipart uploads
	req.Header.Set("X-Atlassian-Token", "no-check")

	var attachments []Attachment
	if err := c.do(req, fmt.Sprintf("attach file %v to %v", fileName, issueKey), &attachments); err != nil {
		return nil, err
	}
	return attachments, nil
}
