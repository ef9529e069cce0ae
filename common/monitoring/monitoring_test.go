package monitoring

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStartSentryWithoutDSN(t *testing.T) {
	started, err := StartSentry("", "test")
	assert.NoError(t, err)
	assert.False(t, started)
	// noop without a client
	CaptureError(fmt.Errorf("boom"), map[string]string{"sid": "1"})
	CaptureError(nil, nil)
}

func TestStartSentryInvalidDSN(t *testing.T) {
	started, err := StartSentry("not-a-dsn", "test")
	assert.Error(t, err)
	assert.False(t, started)
}
