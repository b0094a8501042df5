package logs

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// InstanceHook is a logrus hook that writes logrus entries to an Instance
type InstanceHook struct {
	inst *Instance
}

// NewInstanceHook creates a new hook for logrus that writes to inst
func NewInstanceHook(inst *Instance) *InstanceHook {
	return &InstanceHook{
		inst: inst,
	}
}

// Levels returns the logrus levels this hook will fire for
func (hook *InstanceHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire is called when a log entry is made
func (hook *InstanceHook) Fire(entry *logrus.Entry) error {
	// Our own diagnostics would loop back here when the instance fails
	if component, exists := entry.Data["component"]; exists && component == diagComponent {
		return nil
	}

	message := entry.Message
	if len(entry.Data) > 0 {
		keys := make([]string, 0, len(entry.Data))
		for key := range entry.Data {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		fields := make([]string, 0, len(keys))
		for _, key := range keys {
			fields = append(fields, fmt.Sprintf("%s=%v", key, entry.Data[key]))
		}
		message = fmt.Sprintf("%s (%s)", message, strings.Join(fields, " "))
	}

	hook.inst.Log(levelFromLogrus(entry.Level), message)

	return nil
}

func levelFromLogrus(level logrus.Level) Level {
	switch level {
	case logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel:
		return LevelError
	case logrus.WarnLevel:
		return LevelWarning
	case logrus.InfoLevel:
		return LevelNormal
	case logrus.DebugLevel:
		return LevelDebug
	default:
		return LevelInsane
	}
}
