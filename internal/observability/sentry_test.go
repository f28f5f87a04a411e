package observability

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrisense/agrisense-go/internal/conf"
	"github.com/agrisense/agrisense-go/internal/logger"
)

func TestInitSentryWithoutDSNIsNoop(t *testing.T) {
	flush, err := InitSentry(conf.SentrySettings{},
		logger.NewSlogLogger(io.Discard, logger.LogLevelError, nil))
	require.NoError(t, err)
	require.NotNil(t, flush)
	flush()
}

func TestCaptureErrorWithoutClient(t *testing.T) {
	// Without Init the hub has no client bound; capture must not panic.
	assert.NotPanics(t, func() {
		CaptureError(errors.New("boom"), map[string]string{"path": "/api/sensor-data"})
	})
	assert.NotPanics(t, func() {
		CaptureError(nil, nil)
	})
}
