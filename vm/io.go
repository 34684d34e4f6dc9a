package vm

import (
	"bufio"
	"io"
	"strings"
)

// InputReader supplies lines to the String read primitive. ok is false at
// end of input.
type InputReader interface {
	ReadString() (line string, ok bool)
}

// lineReader reads newline-terminated lines from an io.Reader.
type lineReader struct {
	r *bufio.Reader
}

// NewLineReader adapts r to an InputReader. Trailing "\n" or "\r\n" is
// stripped; a final unterminated line is still returned.
func NewLineReader(r io.Reader) InputReader {
	return &lineReader{r: bufio.NewReader(r)}
}

func (lr *lineReader) ReadString() (string, bool) {
	line, err := lr.r.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, true
}

// emptyInput is always at end of input.
type emptyInput struct{}

func (emptyInput) ReadString() (string, bool) { return "", false }

// writeString sends text to a sink, turning write failures into internal errors.
func writeString(w io.StringWriter, text string) {
	if _, err := w.WriteString(text); err != nil {
		raise(KindInternal, "write failed: %v", err)
	}
}
