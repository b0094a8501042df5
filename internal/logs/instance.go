package logs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gleicon/rwlog/pkg/logger"
	"github.com/gleicon/rwlog/pkg/utils"
)

const (
	// MinLogSize is the lower bound for the max log size and for what truncation keeps
	MinLogSize int64 = 512
	// DefaultMaxLogSize is the max log size of a newly created instance
	DefaultMaxLogSize int64 = 1024 * 1024

	// ConsolePath is the registry key of the console logger, which never opens a file
	ConsolePath = ""

	timestampLayout = "2006-01-02 15:04:05.000000"
	// timestamp, space, 16 hex digits, space, tag, "| ", newline
	recordOverhead = len(timestampLayout) + 1 + 16 + 1 + 3 + 2 + 1

	diagComponent = "rwlog"
)

// Option configures an Instance or every Instance a Registry creates
type Option func(*options)

type options struct {
	diag   *logrus.Logger
	stdout io.Writer
	stderr io.Writer
	now    func() time.Time
}

func newOptions(opts []Option) options {
	o := options{
		stdout: os.Stdout,
		stderr: os.Stderr,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.diag == nil {
		o.diag = logger.Discard()
	}
	return o
}

// WithDiagnostics reports internal failures (dropped writes, failed rotations) on l
func WithDiagnostics(l *logrus.Logger) Option {
	return func(o *options) {
		o.diag = l
	}
}

// WithConsole replaces the standard output and standard error used for console reflection
func WithConsole(stdout, stderr io.Writer) Option {
	return func(o *options) {
		if stdout != nil {
			o.stdout = stdout
		}
		if stderr != nil {
			o.stderr = stderr
		}
	}
}

// WithClock replaces the time source used for record timestamps and rotated file names
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// Instance is one logging sink: a file, the console, or both.
// It is safe for concurrent use; records from different goroutines never interleave.
type Instance struct {
	path string

	enabled atomic.Bool
	level   atomic.Int32

	mu               sync.Mutex
	reflectToConsole bool
	maxSize          int64
	overflow         OverflowAction
	file             *os.File

	stdout io.Writer
	stderr io.Writer
	now    func() time.Time
	diag   *logrus.Entry
}

// NewInstance creates a logger for path. An empty path creates a console-only logger.
// The file itself is created on the first write; its directory is created up front.
func NewInstance(path string, action OverflowAction, opts ...Option) (*Instance, error) {
	o := newOptions(opts)

	if path != ConsolePath {
		if utils.IsDir(path) {
			return nil, fmt.Errorf("%w: %s is a directory", ErrCreate, path)
		}
		if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCreate, fileError("mkdir", filepath.Dir(path), err))
		}
	}

	inst := &Instance{
		path:     path,
		maxSize:  DefaultMaxLogSize,
		overflow: action,
		stdout:   o.stdout,
		stderr:   o.stderr,
		now:      o.now,
		diag: o.diag.WithFields(logrus.Fields{
			"component": diagComponent,
			"path":      path,
		}),
	}
	inst.enabled.Store(true)
	inst.level.Store(int32(LevelNormal))

	if path == ConsolePath {
		inst.overflow = OverflowNone
		inst.reflectToConsole = true
	}

	return inst, nil
}

// Path returns the file this instance writes to. Rotated or truncated copies are not tracked.
func (i *Instance) Path() string {
	return i.path
}

// SetEnabled turns logging on or off
func (i *Instance) SetEnabled(enabled bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.enabled.Store(enabled)
}

// IsEnabled reports whether logging is on
func (i *Instance) IsEnabled() bool {
	return i.enabled.Load()
}

// SetReflectToConsole also writes every accepted record to stdout, or stderr for errors
func (i *Instance) SetReflectToConsole(reflect bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.reflectToConsole = reflect
}

// IsReflectToConsole reports whether records are mirrored on the console
func (i *Instance) IsReflectToConsole() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.reflectToConsole
}

// SetLogLevel sets the threshold; only records at this level or more severe are written
func (i *Instance) SetLogLevel(level Level) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.level.Store(int32(level))
}

// LogLevel returns the threshold
func (i *Instance) LogLevel() Level {
	return Level(i.level.Load())
}

// SetMaxLogSize sets the approximate size ceiling of the file, never below MinLogSize.
// A file that is already larger is truncated or rotated by the next write, not now.
func (i *Instance) SetMaxLogSize(size int64) {
	if size < MinLogSize {
		size = MinLogSize
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.maxSize = size
}

// MaxLogSize returns the size ceiling
func (i *Instance) MaxLogSize() int64 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.maxSize
}

// SetOverflowAction changes what happens once the file exceeds its max size
func (i *Instance) SetOverflowAction(action OverflowAction) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.path == ConsolePath {
		return
	}
	i.overflow = action
}

// OverflowAction returns the current overflow policy
func (i *Instance) OverflowAction() OverflowAction {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.overflow
}

// LogSize returns the current size of the file in bytes, or 0 if it cannot be opened
func (i *Instance) LogSize() int64 {
	i.mu.Lock()
	defer i.mu.Unlock()
	size, _ := i.sizeLocked()
	return size
}

// Log writes message at level. Failures never reach the caller: a record that
// cannot be written to the file is dropped, console reflection still happens.
func (i *Instance) Log(level Level, message string) {
	if !i.enabled.Load() {
		return
	}
	if level > Level(i.level.Load()) {
		return
	}

	record := formatRecord(i.now(), goroutineID(), level, message)

	// Diagnostics are emitted after unlocking so a hook routed back into
	// this instance cannot deadlock.
	var failures []error
	defer func() {
		for _, err := range failures {
			i.diag.WithError(err).Debug("log record not fully written")
		}
	}()

	i.mu.Lock()
	defer i.mu.Unlock()

	if i.path != ConsolePath {
		if i.overflow != OverflowNone {
			if err := i.enforceLimitLocked(); err != nil {
				failures = append(failures, err)
			}
		}
		if err := i.writeFileLocked(record); err != nil {
			failures = append(failures, err)
		}
	}

	if i.reflectToConsole {
		out := i.stdout
		if level <= LevelError {
			out = i.stderr
		}
		io.WriteString(out, record)
	}
}

// Logf formats according to format and logs the result at level
func (i *Instance) Logf(level Level, format string, args ...any) {
	if !i.enabled.Load() || level > Level(i.level.Load()) {
		return
	}
	i.Log(level, fmt.Sprintf(format, args...))
}

func (i *Instance) Errorf(format string, args ...any) {
	i.Logf(LevelError, format, args...)
}

func (i *Instance) Warningf(format string, args ...any) {
	i.Logf(LevelWarning, format, args...)
}

func (i *Instance) Normalf(format string, args ...any) {
	i.Logf(LevelNormal, format, args...)
}

func (i *Instance) Debugf(format string, args ...any) {
	i.Logf(LevelDebug, format, args...)
}

func (i *Instance) Insanef(format string, args ...any) {
	i.Logf(LevelInsane, format, args...)
}

// formatRecord builds "<timestamp> <goroutine id> <tag>| <message>\n"
func formatRecord(ts time.Time, gid uint64, level Level, message string) string {
	return fmt.Sprintf("%s %016x %s| %s\n", ts.Format(timestampLayout), gid, level.Tag(), message)
}

// openLocked opens the file for appending, creating it if needed. No-op if already open.
func (i *Instance) openLocked() error {
	if i.file != nil {
		return nil
	}
	f, err := os.OpenFile(i.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fileError("open", i.path, err)
	}
	i.file = f
	return nil
}

func (i *Instance) closeLocked() {
	if i.file == nil {
		return
	}
	i.file.Close()
	i.file = nil
}

// writeFileLocked appends one record and closes the file again
func (i *Instance) writeFileLocked(record string) error {
	if err := i.openLocked(); err != nil {
		return err
	}
	defer i.closeLocked()

	if _, err := i.file.WriteString(record); err != nil {
		return fileError("write", i.path, err)
	}
	return nil
}

// sizeLocked measures the file by opening it, seeking to the end and closing it
func (i *Instance) sizeLocked() (int64, error) {
	if i.path == ConsolePath {
		return 0, nil
	}
	f, err := os.Open(i.path)
	if err != nil {
		return 0, fileError("open", i.path, err)
	}
	defer f.Close()

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fileError("seek", i.path, err)
	}
	return size, nil
}
