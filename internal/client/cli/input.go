package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// lockedWriter serializes the prompt loop and the countdown goroutine.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func (l *lockedWriter) println(a ...any) {
	_, _ = fmt.Fprintln(l, a...)
}

func (l *lockedWriter) printf(format string, a ...any) {
	_, _ = fmt.Fprintf(l, format, a...)
}

// readLine prints prompt and reads one trimmed line. A final line without a
// newline is still returned; io.EOF is only reported once nothing is left.
func readLine(r *bufio.Reader, w io.Writer, prompt string) (string, error) {
	if _, err := fmt.Fprint(w, prompt); err != nil {
		return "", err
	}

	line, err := r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// command splits a line into its first word and the rest.
func command(line string) (string, []string) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return "", nil
	}
	return strings.ToLower(parts[0]), parts[1:]
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func formatCountdown(sec int) string {
	return fmt.Sprintf("%d:%02d", sec/60, sec%60)
}
