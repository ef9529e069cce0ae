package jira

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchMetadata(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assertBasicAuth(t, r)
		switch r.URL.Path {
		case "/rest/api/3/issuetype":
			_, _ = io.WriteString(w, `[{"id":"10002","name":"Bug"},{"id":"10004","name":"Task","subtask":false}]`)
		case "/rest/api/3/project":
			_, _ = io.WriteString(w, `[{"id":"1","key":"QA","name":"Quality"}]`)
		case "/rest/api/3/priority":
			_, _ = io.WriteString(w, `[{"id":"2","name":"High"}]`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	assert.Equal(t, []IssueType{{ID: "10002", Name: "Bug"}, {ID: "10004", Name: "Task"}}, client.FetchIssueTypes(context.Background()))
	assert.Equal(t, []Project{{ID: "1", Key: "QA", Name: "Quality"}}, client.FetchProjects(context.Background()))
	assert.Equal(t, []Priority{{ID: "2", Name: "High"}}, client.FetchPriorities(context.Background()))
}

func TestFetchMetadataFailuresReturnEmptyLists(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	issueTypes := client.FetchIssueTypes(context.Background())
	require.NotNil(t, issueTypes)
	assert.Empty(t, issueTypes)

	projects := client.FetchProjects(context.Background())
	require.NotNil(t, projects)
	assert.Empty(t, projects)

	priorities := client.FetchPriorities(context.Background())
	require.NotNil(t, priorities)
	assert.Empty(t, priorities)
}

func TestFindUserByEmail(t *testing.T) {
	for _, tt := range []struct {
		msg    string
		status int
		body   string
		want   *User
	}{
		{
			msg:    "it should return the first user found",
			status: http.StatusOK,
			body:   `[{"accountId":"acc-1","emailAddress":"dev@acme.com"},{"accountId":"acc-2"}]`,
			want:   &User{AccountID: "acc-1", EmailAddress: "dev@acme.com"},
		},
		{
			msg:    "it should return nil when there is no match",
			status: http.StatusOK,
			body:   `[]`,
		},
		{
			msg:    "it should return nil when the search fails",
			status: http.StatusForbidden,
			body:   `{}`,
		},
	} {
		t.Run(tt.msg, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/rest/api/3/user/search", r.URL.Path)
				assert.Equal(t, "dev+qa@acme.com", r.URL.Query().Get("query"))
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			assert.Equal(t, tt.want, client.FindUserByEmail(context.Background(), "dev+qa@acme.com"))
		})
	}
}

func TestGetIssueCreateMeta(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/3/issue/createmeta", r.URL.Path)
		assert.Equal(t, "QA", r.URL.Query().Get("projectKeys"))
		assert.Equal(t, "projects.issuetypes.fields", r.URL.Query().Get("expand"))
		_, _ = io.WriteString(w, `{"projects":[{"key":"QA","issuetypes":[{"id":"10002","name":"Bug"}]}]}`)
	})
	meta, err := client.GetIssueCreateMeta(context.Background(), "QA")
	require.NoError(t, err)
	require.Len(t, meta.Projects, 1)
	assert.Equal(t, []IssueType{{ID: "10002", Name: "Bug"}}, meta.Projects[0].IssueTypes)
}

func TestTestAuth(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/api/3/myself" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, `{"accountId":"acc-bot","displayName":"QA Bot","active":true}`)
	})
	user, err := client.TestAuth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &User{AccountID: "acc-bot", DisplayName: "QA Bot", Active: true}, user)
}
