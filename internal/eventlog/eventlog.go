// Package eventlog writes the monitor's audit trail: one timestamped line per
// event, echoed to standard output and appended to a log file.
package eventlog

import (
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TimeLayout is the timestamp format at the start of every line.
const TimeLayout = "2006-01-02 15:04:05"

// Logger appends "<timestamp> - <message>" lines to a file. The file is opened
// and closed on every call; no handle is kept between events.
type Logger struct {
	path    string
	out     io.Writer
	encoder zapcore.Encoder
	now     func() time.Time
	diag    *zap.SugaredLogger
}

// New returns a Logger appending to path and echoing to out. Write failures are
// reported on out; diag additionally gets them at debug level and may be nil.
func New(path string, out io.Writer, diag *zap.SugaredLogger) *Logger {
	if out == nil {
		out = os.Stdout
	}
	if diag == nil {
		diag = zap.NewNop().Sugar()
	}
	return &Logger{
		path: path,
		out:  out,
		encoder: zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			TimeKey:          "time",
			MessageKey:       "msg",
			LineEnding:       "\n",
			EncodeTime:       zapcore.TimeEncoderOfLayout(TimeLayout),
			ConsoleSeparator: " - ",
		}),
		now:  time.Now,
		diag: diag,
	}
}

// Path returns the log file path.
func (l *Logger) Path() string {
	return l.path
}

// Format renders message as a log line, including the trailing newline.
func (l *Logger) Format(message string) (string, error) {
	buf, err := l.encoder.EncodeEntry(zapcore.Entry{Time: l.now(), Message: message}, nil)
	if err != nil {
		return "", err
	}
	defer buf.Free()
	return buf.String(), nil
}

// Log writes message to the console and appends it to the log file. A failed
// file write is reported on the console and returned; it is never retried.
func (l *Logger) Log(message string) error {
	line, err := l.Format(message)
	if err != nil {
		return fmt.Errorf("failed to encode log line: %w", err)
	}
	fmt.Fprint(l.out, line)

	if err := appendLine(l.path, line); err != nil {
		fmt.Fprintf(l.out, "Could not write to log file %s: %v\n", l.path, err)
		l.diag.Debugw("event log write failed", "path", l.path, "err", err)
		return err
	}
	return nil
}

// Logf formats according to a format specifier and logs the result.
func (l *Logger) Logf(format string, args ...interface{}) error {
	return l.Log(fmt.Sprintf(format, args...))
}

func appendLine(path, line string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(line); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
