package slack

import (
	"fmt"
	"net/http"

	"github.com/slack-go/slack"
)

// VerifyRequest validates the signature of a request sent by Slack.
// The signature is a HMAC-SHA256 of the timestamp and the raw body using the signing secret,
// requests older than five minutes are rejected.
// https://api.slack.com/authentication/verifying-requests-from-slack
func VerifyRequest(header http.Header, body []byte, signingSecret string) error {
	if signingSecret == "" {
		return fmt.Errorf("missing slack signing secret")
	}
	sv, err := slack.NewSecretsVerifier(header, signingSecret)
	if err != nil {
		return fmt.Errorf("invalid slack signature headers: %v", err)
	}
	if _, err := sv.Write(body); err != nil {
		return fmt.Errorf("failed computing slack signature: %v", err)
	}
	if err := sv.Ensure(); err != nil {
		return fmt.Errorf("slack signature mismatch: %v", err)
	}
	return nil
}
