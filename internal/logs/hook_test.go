package logs

import (
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gleicon/rwlog/internal/testutils"
)

func TestInstanceHook_Fire(t *testing.T) {
	inst := newTestInstance(t, "hook.log", OverflowNone)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.DebugLevel)
	logger.AddHook(NewInstanceHook(inst))

	logger.WithFields(logrus.Fields{"port": 8080, "app": "web"}).Warn("listening")
	logger.Debug("filtered by the instance")
	logger.Error("boom")

	lines := testutils.ReadLines(t, inst.Path())
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[0], "WRN| listening (app=web port=8080)"), lines[0])
	assert.True(t, strings.HasSuffix(lines[1], "ERR| boom"), lines[1])
}

func TestInstanceHook_SkipsOwnDiagnostics(t *testing.T) {
	inst := newTestInstance(t, "hookdiag.log", OverflowNone)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.AddHook(NewInstanceHook(inst))

	logger.WithField("component", diagComponent).Warn("internal")
	assert.Zero(t, inst.LogSize())
}

func TestInstanceHook_DiagnosticsDoNotDeadlock(t *testing.T) {
	tc := testutils.NewTestConfig(t)

	diag := logrus.New()
	diag.SetOutput(io.Discard)
	diag.SetLevel(logrus.DebugLevel)

	registry := NewRegistry(tc.LogPath("default.log"), WithDiagnostics(diag))
	diag.AddHook(NewInstanceHook(registry.Default(OverflowRotate)))

	inst := registry.File(tc.LogPath("rotating.log"), OverflowRotate)
	inst.SetMaxLogSize(MinLogSize)
	for i := 0; i < 30; i++ {
		inst.Log(LevelNormal, payload)
	}

	assert.NotEmpty(t, testutils.RotatedSiblings(t, inst.Path()))
	assert.Zero(t, registry.Default(OverflowRotate).LogSize())
}

func TestLevelFromLogrus(t *testing.T) {
	assert.Equal(t, LevelError, levelFromLogrus(logrus.PanicLevel))
	assert.Equal(t, LevelError, levelFromLogrus(logrus.FatalLevel))
	assert.Equal(t, LevelError, levelFromLogrus(logrus.ErrorLevel))
	assert.Equal(t, LevelWarning, levelFromLogrus(logrus.WarnLevel))
	assert.Equal(t, LevelNormal, levelFromLogrus(logrus.InfoLevel))
	assert.Equal(t, LevelDebug, levelFromLogrus(logrus.DebugLevel))
	assert.Equal(t, LevelInsane, levelFromLogrus(logrus.TraceLevel))
}
