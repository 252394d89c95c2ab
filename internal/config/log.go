package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

type Log struct {
	Format    LogFormat  `env:"LOG_FORMAT" envDefault:"JSON"`
	Level     slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	AddSource bool       `env:"LOG_ADD_SOURCE" envDefault:"true"`
	Output    LogOutput  `env:"LOG_OUTPUT" envDefault:"stdout"`
}

// LogFormat represents the logging format (JSON or Text).
type LogFormat uint8

const (
	LogFormatJSON LogFormat = iota
	LogFormatText
)

var logFormatNames = map[LogFormat]string{
	LogFormatJSON: "JSON",
	LogFormatText: "TEXT",
}

// String returns the string representation of the log format.
func (f LogFormat) String() string {
	if name, ok := logFormatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("LogFormat(%d)", uint8(f))
}

// UnmarshalText implements [encoding.TextUnmarshaler]. TINT is accepted as
// an alias of TEXT.
func (f *LogFormat) UnmarshalText(text []byte) error {
	switch strings.ToUpper(string(text)) {
	case "JSON":
		*f = LogFormatJSON
	case "TEXT", "TINT":
		*f = LogFormatText
	default:
		return fmt.Errorf("unknown log format: %s", text)
	}
	return nil
}

func (f LogFormat) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// LogOutput selects the stream records are written to.
type LogOutput uint8

const (
	LogOutputStdout LogOutput = iota
	LogOutputStderr
)

// UnmarshalText implements [encoding.TextUnmarshaler].
func (o *LogOutput) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "stdout":
		*o = LogOutputStdout
	case "stderr":
		*o = LogOutputStderr
	default:
		return fmt.Errorf("unknown log output: %s", text)
	}
	return nil
}

// Writer returns the stream for o.
func (o LogOutput) Writer() io.Writer {
	if o == LogOutputStderr {
		return os.Stderr
	}
	return os.Stdout
}
