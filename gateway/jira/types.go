package jira

type IssueType struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Subtask bool   `json:"subtask,omitempty"`
}

type Project struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

type Priority struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type User struct {
	AccountID    string `json:"accountId"`
	EmailAddress string `json:"emailAddress,omitempty"`
	DisplayName  string `json:"displayName,omitempty"`
	Active       bool   `json:"active"`
}

// https://developer.atlassian.com/cloud/jira/platform/rest/v3/api-group-issues/#api-rest-api-3-issue-createmeta-get
type CreateMeta struct {
	Projects []struct {
		Key        string      `json:"key"`
		IssueTypes []IssueType `json:"issuetypes"`
	} `json:"projects"`
}

// IssueDraft contains the fields used to create an issue
type IssueDraft struct {
	ProjectKey        string
	Summary           string
	Description       *Document
	IssueTypeID       string
	PriorityID        string
	AssigneeAccountID string
}

// CreatedIssue is the issue created with success
type CreatedIssue struct {
	ID  string
	Key string
	URL string
}

// https://developer.atlassian.com/cloud/jira/platform/rest/v3/api-group-issues/#api-rest-api-3-issue-post
type IssueResponse struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Self string `json:"self"`
}

// https://developer.atlassian.com/cloud/jira/platform/rest/v3/api-group-issue-attachments/#api-rest-api-3-issue-issueidorkey-attachments-post
type Attachment struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
	Content  string `json:"content"`
}

type idRef struct {
	ID string `json:"id"`
}

type projectRef struct {
	Key string `json:"key"`
}

type issueFields struct {
	Project     projectRef `json:"project"`
	Summary     string     `json:"summary"`
	Description *Document  `json:"description,omitempty"`
	Issuetype   idRef      `json:"issuetype"`
	Priority    idRef      `json:"priority"`
	Assignee    *idRef     `json:"assignee,omitempty"`
}

type issuePayload struct {
	Fields issueFields `json:"fields"`
}
