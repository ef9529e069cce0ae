package monitoring

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/netgfx/slack-jira-automation/common/version"
)

// StartSentry initializes the sentry client when a dsn is provided.
// It returns false when sentry is disabled.
func StartSentry(dsn, environment string) (bool, error) {
	if dsn == "" {
		return false, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Debug:            false,
		TracesSampleRate: 1.0,
		Environment:      environment,
		Release:          version.Get().Version,
	})
	return err == nil, err
}

// CaptureError reports err to sentry adding the tags to the event.
// It's a noop when sentry was not initialized.
func CaptureError(err error, tags map[string]string) {
	if err == nil || sentry.CurrentHub().Client() == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		sentry.CaptureException(err)
	})
}

// Flush waits for the buffered events to be sent
func Flush() { sentry.Flush(2 * time.Second) }
