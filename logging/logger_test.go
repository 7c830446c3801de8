package logging

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logrus.PanicLevel, ParseLevel("silent"))
	assert.Equal(t, logrus.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, logrus.WarnLevel, ParseLevel("WARN"))
	assert.Equal(t, logrus.DebugLevel, ParseLevel(" debug "))
	assert.Equal(t, logrus.InfoLevel, ParseLevel("info"))
	assert.Equal(t, logrus.InfoLevel, ParseLevel("whatever"))
}

func TestComponentLogsAtDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New("info", &buf)
	Component(logger, "harness").Printf("hidden %d", 1)
	assert.Empty(t, buf.String())

	logger.SetLevel(logrus.DebugLevel)
	Component(logger, "harness").Printf("shown %d", 2)
	assert.Contains(t, buf.String(), "shown 2")
	assert.Contains(t, buf.String(), "component=harness")
}
