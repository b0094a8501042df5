package logs

import (
	"runtime"
	"strconv"
	"strings"
)

// goroutineID parses the id of the calling goroutine out of its stack header
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	field := strings.TrimPrefix(string(buf[:n]), "goroutine ")
	if i := strings.IndexByte(field, ' '); i >= 0 {
		field = field[:i]
	}
	id, err := strconv.ParseUint(field, 10, 64)
	if err != nil {
		return 0
	}
	return id
}
