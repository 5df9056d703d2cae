package logger

import (
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestNewWithConfig(t *testing.T) {
	l := NewWithConfig("oracle", log.DebugLevel, false, false, log.TextFormatter)
	assert.Equal(t, log.DebugLevel, l.GetLevel())
	assert.Equal(t, "oracle", l.GetPrefix())

	quiet := NewWithConfig("oracle", log.WarnLevel, false, false, log.JSONFormatter)
	assert.Equal(t, log.WarnLevel, quiet.GetLevel())
}
