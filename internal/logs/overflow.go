package logs

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/google/uuid"

	"github.com/gleicon/rwlog/pkg/utils"
)

const rotateTimestampLayout = "20060102_150405.000000"

// enforceLimitLocked truncates or rotates the file once it is larger than maxSize
func (i *Instance) enforceLimitLocked() error {
	size, err := i.sizeLocked()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	if size <= i.maxSize {
		return nil
	}

	switch i.overflow {
	case OverflowTruncate:
		return i.truncateLocked()
	case OverflowRotate:
		return i.rotateLocked()
	}
	return nil
}

// truncateLocked keeps roughly the last maxSize/2 bytes (at least MinLogSize) of
// whole, non-blank lines. The tail is copied to a temp sibling which then replaces the file.
func (i *Instance) truncateLocked() error {
	i.closeLocked()

	keep := i.maxSize / 2
	if keep < MinLogSize {
		keep = MinLogSize
	}

	data, err := os.ReadFile(i.path)
	if err != nil {
		return fileError("read", i.path, err)
	}
	data = tailLines(data, keep)

	tmpPath := fmt.Sprintf("%s.%s.tmp", i.path, uuid.NewString())
	tmp, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return fileError("create", tmpPath, err)
	}

	w := bufio.NewWriter(tmp)
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		w.Write(line)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fileError("write", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fileError("close", tmpPath, err)
	}

	if err := os.Remove(i.path); err != nil {
		os.Remove(tmpPath)
		return fileError("remove", i.path, err)
	}
	if err := os.Rename(tmpPath, i.path); err != nil {
		return fileError("rename", tmpPath, err)
	}

	i.diag.WithField("kept", len(data)).Debug("log file truncated")
	return nil
}

// tailLines returns the last keep bytes of data, starting at a line boundary
func tailLines(data []byte, keep int64) []byte {
	if int64(len(data)) <= keep {
		return data
	}
	cut := len(data) - int(keep)
	if data[cut-1] == '\n' {
		return data[cut:]
	}
	tail := data[cut:]
	idx := bytes.IndexByte(tail, '\n')
	if idx < 0 {
		return nil
	}
	return tail[idx+1:]
}

// rotateLocked moves the file aside as <path>_<timestamp>.log; the next write starts a new file
func (i *Instance) rotateLocked() error {
	i.closeLocked()

	target := rotatedName(i.path, i.now().Format(rotateTimestampLayout))
	if err := os.Rename(i.path, target); err != nil {
		return fileError("rename", i.path, err)
	}

	i.diag.WithField("rotated_to", target).Debug("log file rotated")
	return nil
}

// rotatedName picks a sibling name that is not taken yet
func rotatedName(path, stamp string) string {
	name := fmt.Sprintf("%s_%s.log", path, stamp)
	if !utils.FileExists(name) {
		return name
	}
	return fmt.Sprintf("%s_%s_%s.log", path, stamp, uuid.NewString()[:8])
}
