package plugin

import (
	"fmt"
	"time"
)

// LogLevel is the severity of a plugin log entry
type LogLevel int

const (
	LogDebug LogLevel = iota
	LogInfo
	LogWarning
	LogError
	LogCritical
)

func (l LogLevel) String() string {
	switch l {
	case LogDebug:
		return "Debug"
	case LogInfo:
		return "Info"
	case LogWarning:
		return "Warning"
	case LogError:
		return "Error"
	case LogCritical:
		return "Critical"
	default:
		return fmt.Sprintf("LogLevel(%d)", int(l))
	}
}

// LogEntry is one log record sent to the host
type LogEntry struct {
	Timestamp time.Time
	Level     LogLevel
	Source    string
	Message   string
	Err       error
	Args      []Value
}

func (e LogEntry) String() string {
	msg := fmt.Sprintf("[%s] [%s] [%s] %s", e.Timestamp.Format("2006-01-02 15:04:05"), e.Level, e.Source, e.Message)
	if e.Err != nil {
		msg += fmt.Sprintf("\nException: %T: %s", e.Err, e.Err.Error())
	}
	return msg
}
