package svmlight

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Writer writes examples one per line
type Writer struct {
	w *bufio.Writer
}

// NewWriter wraps w
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write formats and writes one example
func (w *Writer) Write(e Example) error {
	line, err := FormatExample(e)
	if err != nil {
		return err
	}
	if _, err := w.w.WriteString(line); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

// Flush flushes buffered output
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// Reader reads examples, skipping blank and comment-only lines
type Reader struct {
	s    *bufio.Scanner
	line int
}

// NewReader wraps r
func NewReader(r io.Reader) *Reader {
	return &Reader{s: bufio.NewScanner(r)}
}

// Read returns the next example or io.EOF
func (r *Reader) Read() (Example, error) {
	for r.s.Scan() {
		r.line++
		text := strings.TrimSpace(r.s.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		ex, err := ParseExample(strings.TrimSuffix(r.s.Text(), "\r"))
		if err != nil {
			return ex, fmt.Errorf("line %d: %w", r.line, err)
		}
		return ex, nil
	}
	if err := r.s.Err(); err != nil {
		return Example{}, err
	}
	return Example{}, io.EOF
}

// ReadAll reads every remaining example
func (r *Reader) ReadAll() ([]Example, error) {
	var out []Example
	for {
		ex, err := r.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, ex)
	}
}

// ReadPredictions parses a classifier result file: one decision value per line
func ReadPredictions(r io.Reader) ([]float64, error) {
	var scores []float64
	s := bufio.NewScanner(r)
	line := 0
	for s.Scan() {
		line++
		text := strings.TrimSpace(s.Text())
		if text == "" {
			continue
		}

		// some builds print extra columns; the decision value comes first
		first := strings.Fields(text)[0]
		score, err := strconv.ParseFloat(first, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w: bad score %q", line, ErrSyntax, first)
		}
		scores = append(scores, score)
	}
	return scores, s.Err()
}

// ClassFromScore maps a decision value to a label: positive scores are
// Positive, everything else Negative
func ClassFromScore(score float64) Label {
	if score > 0 {
		return Positive
	}
	return Negative
}
