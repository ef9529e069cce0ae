package slack

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func signedHeader(secret string, ts time.Time, body []byte) http.Header {
	timestamp := strconv.FormatInt(ts.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(fmt.Sprintf("v0:%s:%s", timestamp, body)))
	header := http.Header{}
	header.Set("X-Slack-Request-Timestamp", timestamp)
	header.Set("X-Slack-Signature", "v0="+hex.EncodeToString(mac.Sum(nil)))
	return header
}

func TestVerifyRequest(t *testing.T) {
	body := []byte("command=%2Fqa&trigger_id=123.456&channel_id=C123")
	for _, tt := range []struct {
		msg     string
		header  http.Header
		secret  string
		wantErr bool
	}{
		{
			msg:    "it should accept requests signed with the secret",
			header: signedHeader("s3cr3t", time.Now(), body),
			secret: "s3cr3t",
		},
		{
			msg:     "it should reject requests signed with other secret",
			header:  signedHeader("other", time.Now(), body),
			secret:  "s3cr3t",
			wantErr: true,
		},
		{
			msg:     "it should reject expired requests",
			header:  signedHeader("s3cr3t", time.Now().Add(-10*time.Minute), body),
			secret:  "s3cr3t",
			wantErr: true,
		},
		{
			msg:     "it should reject requests without signature headers",
			header:  http.Header{},
			secret:  "s3cr3t",
			wantErr: true,
		},
		{
			msg:     "it should reject when the signing secret is empty",
			header:  signedHeader("", time.Now(), body),
			secret:  "",
			wantErr: true,
		},
	} {
		t.Run(tt.msg, func(t *testing.T) {
			err := VerifyRequest(tt.header, body, tt.secret)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
