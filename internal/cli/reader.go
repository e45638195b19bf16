package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// ErrInputCancelled is returned when the context ends before an answer arrives.
var ErrInputCancelled = errors.New("input canceled")

type answerLine struct {
	err  error
	text string
}

// AnswerReader reads the reviewer's typed answers one line at a time. A single
// goroutine pulls lines from the input, so a line that arrives after a
// canceled ReadLine is handed to the next call instead of being dropped.
type AnswerReader struct {
	scanner *bufio.Scanner
	lines   chan answerLine
	start   sync.Once
}

// NewAnswerReader reads answers from in.
func NewAnswerReader(in io.Reader) *AnswerReader {
	return &AnswerReader{
		scanner: bufio.NewScanner(in),
		lines:   make(chan answerLine, 1),
	}
}

func (r *AnswerReader) pump() {
	defer close(r.lines)
	for r.scanner.Scan() {
		r.lines <- answerLine{text: r.scanner.Text()}
	}
	err := r.scanner.Err()
	if err == nil {
		err = io.EOF
	}
	r.lines <- answerLine{err: err}
}

// ReadLine returns the next answer with surrounding whitespace removed. It
// returns io.EOF once the input is exhausted.
func (r *AnswerReader) ReadLine(ctx context.Context) (string, error) {
	if ctx.Err() != nil {
		return "", ErrInputCancelled
	}
	r.start.Do(func() { go r.pump() })

	select {
	case <-ctx.Done():
		return "", ErrInputCancelled
	case line, ok := <-r.lines:
		if !ok {
			return "", io.EOF
		}
		if line.err != nil {
			return "", line.err
		}
		return strings.TrimSpace(line.text), nil
	}
}
