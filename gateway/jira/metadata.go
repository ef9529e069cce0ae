package jira

import (
	"context"
	"net/http"
	"net/url"

	"github.com/netgfx/slack-jira-automation/common/log"
)

// FetchIssueTypes lists all issue types. It returns an empty list on failures.
func (c *Client) FetchIssueTypes(ctx context.Context) []IssueType {
	items := []IssueType{}
	if err := c.doJSON(ctx, "list issue types", http.MethodGet, "/rest/api/3/issuetype", nil, &items); err != nil {
		log.Warnf("failed fetching jira issue types, reason=%v", err)
		return []IssueType{}
	}
	return items
}

// FetchProjects lists the projects visible to the user. It returns an empty list on failures.
func (c *Client) FetchProjects(ctx context.Context) []Project {
	items := []Project{}
	if err := c.doJSON(ctx, "list projects", http.MethodGet, "/rest/api/3/project", nil, &items); err != nil {
		log.Warnf("failed fetching jira projects, reason=%v", err)
		return []Project{}
	}
	return items
}

// FetchPriorities lists all priorities. It returns an empty list on failures.
func (c *Client) FetchPriorities(ctx context.Context) []Priority {
	items := []Priority{}
	if err := c.doJSON(ctx, "list priorities", http.MethodGet, "/rest/api/3/priority", nil, &items); err != nil {
		log.Warnf("failed fetching jira priorities, reason=%v", err)
		return []Priority{}
	}
	return items
}

// GetIssueCreateMeta returns the issue types available to create issues in the project
func (c *Client) GetIssueCreateMeta(ctx context.Context, projectKey string) (*CreateMeta, error) {
	q := url.Values{}
	q.Set("projectKeys", projectKey)
	q.Set("expand", "projects.issuetypes.fields")
	var meta CreateMeta
	if err := c.doJSON(ctx, "get issue create metadata", http.MethodGet,
		"/rest/api/3/issue/createmeta?"+q.Encode(), nil, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// FindUserByEmail searches users by the email address and returns the first match.
// It returns nil when there's no match or the search fails.
func (c *Client) FindUserByEmail(ctx context.Context, email string) *User {
	var users []User
	err := c.doJSON(ctx, "search users", http.MethodGet,
		"/rest/api/3/user/search?query="+url.QueryEscape(email), nil, &users)
	if err != nil {
		log.Warnf("failed searching jira user by email, reason=%v", err)
		return nil
	}
	if len(users) == 0 {
		return nil
	}
	return &users[0]
}

// TestAuth validates the credentials returning the authenticated user
func (c *Client) TestAuth(ctx context.Context) (*User, error) {
	var user User
	if err := c.doJSON(ctx, "validate jira credentials", http.MethodGet, "/rest/api/3/myself", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
