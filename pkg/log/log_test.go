package log

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestWithRunID(t *testing.T) {
	ctx, runID := WithRunID(context.Background())

	assert.NotEmpty(t, runID)
	assert.Equal(t, runID, GetRunID(ctx))
	assert.Empty(t, GetRunID(context.Background()))
}

func TestForContext_AddsRunID(t *testing.T) {
	SetupTestLogger()

	var buf bytes.Buffer
	logrus.SetOutput(&buf)
	defer logrus.SetOutput(os.Stderr)

	ctx, runID := WithRunID(context.Background())
	ForContext(ctx).WithField("state", "WAITING").Info("mensagem")

	assert.Contains(t, buf.String(), "run_id="+runID)
	assert.Contains(t, buf.String(), "state=WAITING")
}

func TestConfigure_InvalidLevel(t *testing.T) {
	Configure("verbose")
	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())

	Configure("debug")
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
}
