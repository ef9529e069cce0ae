package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/netgfx/slack-jira-automation/common/httpclient"
	"github.com/netgfx/slack-jira-automation/common/log"
)

const (
	// DefaultPriorityName is used when the priority is empty or unknown
	DefaultPriorityName = "Medium"
	fallbackPriorityID  = "3"
)

type Config struct {
	// URL is the base url of the instance, e.g.: https://acme.atlassian.net
	URL                string
	User               string
	APIToken           string
	DefaultIssueTypeID string
	PriorityIDs        map[string]string
}

type Client struct {
	conf       Config
	httpClient httpclient.HttpClient
}

// New returns a Jira Cloud REST v3 client authenticated with basic auth
func New(conf Config, client httpclient.HttpClient) *Client {
	conf.URL = strings.TrimSuffix(conf.URL, "/")
	if client == nil {
		client = httpclient.NewHttpClient("")
	}
	return &Client{conf: conf, httpClient: client}
}

// APIError is returned when Jira responds with a non 2xx status code
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("unable to %s, status=%v, body=%v", e.Op, e.StatusCode, e.Body)
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	apiURL := c.conf.URL + endpoint
	req, err := http.NewRequestWithContext(ctx, method, apiURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed creating request, reason=%v", err)
	}
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.conf.User, c.conf.APIToken)
	return req, nil
}

// doJSON performs the request encoding the payload (when not nil) and decoding
// the response into obj (when not nil).
func (c *Client) doJSON(ctx context.Context, op, method, endpoint string, payload, obj any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed encoding payload to %s, reason=%v", op, err)
		}
		body = bytes.NewBuffer(data)
	}
	req, err := c.newRequest(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, op, obj)
}

func (c *Client) do(req *http.Request, op string, obj any) error {
	log.Debugf("jira request %s %s", req.Method, req.URL.Path)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to %s, reason=%v", op, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{Op: op, StatusCode: resp.StatusCode, Body: string(body)}
	}
	if obj == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(obj); err != nil {
		return fmt.Errorf("failed decoding response to %s, reason=%v", op, err)
	}
	return nil
}

// BrowseURL returns the link of the issue in the Jira web interface
func (c *Client) BrowseURL(issueKey string) string {
	return fmt.Sprintf("%s/browse/%s", c.conf.URL, issueKey)
}

// PriorityID maps the priority name to the id configured for this Jira instance.
// Unknown or empty names map to the Medium priority id.
func (c *Client) PriorityID(name string) string {
	if id, ok := c.conf.PriorityIDs[name]; ok {
		return id
	}
	if id, ok := c.conf.PriorityIDs[DefaultPriorityName]; ok {
		return id
	}
	return fallbackPriorityID
}

// DefaultIssueTypeID returns the issue type id used when none is selected
func (c *Client) DefaultIssueTypeID() string { return c.conf.DefaultIssueTypeID }
