package stacktrace

import (
	"bufio"
	"bytes"
	"strings"
)

// InternalPaths picks the "internal/<pkg>/<file>.go:<line>" frames out of a
// debug.Stack dump, dropping runtime and third-party frames.
func InternalPaths(stack []byte) []string {
	var paths []string

	sc := bufio.NewScanner(bytes.NewReader(stack))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		dot := strings.Index(line, ".go:")
		if dot == -1 {
			continue
		}
		at := strings.Index(line, "/internal/")
		if at == -1 || at > dot {
			continue
		}

		frame := line[at+1:]
		if sp := strings.IndexByte(frame, ' '); sp != -1 {
			frame = frame[:sp]
		}
		paths = append(paths, frame)
	}

	return paths
}
