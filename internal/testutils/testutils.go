package testutils

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestConfig provides a scratch directory for log files and config files
type TestConfig struct {
	TempDir    string
	LogDir     string
	ConfigFile string
}

// NewTestConfig creates a new test configuration
func NewTestConfig(t *testing.T) *TestConfig {
	tempDir := t.TempDir()
	logDir := filepath.Join(tempDir, "logs")
	require.NoError(t, os.MkdirAll(logDir, 0755))

	return &TestConfig{
		TempDir:    tempDir,
		LogDir:     logDir,
		ConfigFile: filepath.Join(tempDir, "rwlog.yaml"),
	}
}

// LogPath returns a path for name inside the log directory
func (tc *TestConfig) LogPath(name string) string {
	return filepath.Join(tc.LogDir, name)
}

// CreateTestConfig creates a test configuration file
func (tc *TestConfig) CreateTestConfig(t *testing.T, config string) {
	require.NoError(t, os.WriteFile(tc.ConfigFile, []byte(config), 0644))
}

// FileSize returns the size of path, or 0 if it does not exist
func FileSize(t *testing.T, path string) int64 {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return 0
	}
	require.NoError(t, err)
	return info.Size()
}

// ReadLines returns the lines of path without their trailing newline
func ReadLines(t *testing.T, path string) []string {
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.NoError(t, scanner.Err())
	return lines
}

// RotatedSiblings lists files next to path named <path>_*.log, sorted
func RotatedSiblings(t *testing.T, path string) []string {
	matches, err := filepath.Glob(path + "_*.log")
	require.NoError(t, err)
	sort.Strings(matches)
	return matches
}

// TempFiles lists leftover *.tmp files in dir
func TempFiles(t *testing.T, dir string) []string {
	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	return matches
}

// CaptureOutput captures stdout and stderr from a function
func CaptureOutput(t *testing.T, fn func()) (stdout, stderr string) {
	oldStdout := os.Stdout
	oldStderr := os.Stderr

	rOut, wOut, err := os.Pipe()
	require.NoError(t, err)
	rErr, wErr, err := os.Pipe()
	require.NoError(t, err)

	os.Stdout = wOut
	os.Stderr = wErr
	defer func() {
		os.Stdout = oldStdout
		os.Stderr = oldStderr
	}()

	outDone := make(chan struct{})
	errDone := make(chan struct{})
	var outBuf, errBuf strings.Builder

	go func() {
		defer close(outDone)
		io.Copy(&outBuf, rOut)
	}()
	go func() {
		defer close(errDone)
		io.Copy(&errBuf, rErr)
	}()

	fn()

	wOut.Close()
	wErr.Close()
	<-outDone
	<-errDone

	return outBuf.String(), errBuf.String()
}
