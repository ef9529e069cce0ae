package api

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/netgfx/slack-jira-automation/common/log"
	slackservice "github.com/netgfx/slack-jira-automation/gateway/slack"
)

// VerifySlackRequest rejects requests without a valid Slack signature.
// The body is restored so the handlers are able to parse it.
func (api *Api) VerifySlackRequest(c *gin.Context) {
	if api.SkipVerification {
		c.Next()
		return
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Infof("failed reading request body, err=%v", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "unable to read request body"})
		return
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	if err := slackservice.VerifyRequest(c.Request.Header, body, api.SigningSecret); err != nil {
		log.Infof("failed verifying slack request, path=%v, reason=%v", c.Request.URL.Path, err)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid request signature"})
		return
	}
	c.Next()
}
