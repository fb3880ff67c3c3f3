// Package svmlight reads and writes the sparse example format used by
// SVMlight-style classifiers:
//
//	<label> <index>:<value> <index>:<value> ... # <comment>
//
// Labels are 1 (positive), -1 (negative) or 0 (unknown, classification only).
package svmlight

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Label is the class of an example
type Label int

const (
	Negative Label = -1
	Unknown  Label = 0
	Positive Label = 1
)

func (l Label) String() string {
	switch l {
	case Positive:
		return "1"
	case Negative:
		return "-1"
	default:
		return "0"
	}
}

// ParseLabel accepts "1", "+1", "-1" and "0"
func ParseLabel(s string) (Label, error) {
	switch s {
	case "1", "+1":
		return Positive, nil
	case "-1":
		return Negative, nil
	case "0":
		return Unknown, nil
	default:
		return Unknown, fmt.Errorf("%w: invalid label %q", ErrSyntax, s)
	}
}

// Feature is one index:value pair. Indices start at 1.
type Feature struct {
	Index int
	Value float64
}

// Example is one line of a feature file
type Example struct {
	Label    Label
	Features []Feature
	Comment  string
}

// ErrSyntax is wrapped by all parse errors
var ErrSyntax = errors.New("svmlight syntax error")

// Map returns the features keyed by index
func (e Example) Map() map[int]float64 {
	m := make(map[int]float64, len(e.Features))
	for _, f := range e.Features {
		m[f.Index] = f.Value
	}
	return m
}

// FormatExample renders an example as a single line without a trailing newline.
// Features must have strictly increasing positive indices and finite values.
func FormatExample(e Example) (string, error) {
	var b strings.Builder
	b.WriteString(e.Label.String())

	prev := 0
	for _, f := range e.Features {
		if f.Index <= prev {
			return "", fmt.Errorf("feature index %d must be positive and greater than %d", f.Index, prev)
		}
		if math.IsNaN(f.Value) || math.IsInf(f.Value, 0) {
			return "", fmt.Errorf("feature %d has non-finite value %v", f.Index, f.Value)
		}
		prev = f.Index

		b.WriteByte(' ')
		b.WriteString(strconv.Itoa(f.Index))
		b.WriteByte(':')
		b.WriteString(strconv.FormatFloat(f.Value, 'g', -1, 64))
	}

	if e.Comment != "" {
		if strings.ContainsAny(e.Comment, "\r\n") {
			return "", fmt.Errorf("comment must be a single line")
		}
		b.WriteString(" # ")
		b.WriteString(e.Comment)
	}

	return b.String(), nil
}

// ParseExample parses one line produced by FormatExample (or by hand)
func ParseExample(line string) (Example, error) {
	var ex Example

	body := line
	if i := strings.IndexByte(line, '#'); i >= 0 {
		body = line[:i]
		// only the single separator space written by FormatExample is dropped
		ex.Comment = strings.TrimPrefix(line[i+1:], " ")
	}

	fields := strings.Fields(body)
	if len(fields) == 0 {
		return ex, fmt.Errorf("%w: missing label", ErrSyntax)
	}

	label, err := ParseLabel(fields[0])
	if err != nil {
		return ex, err
	}
	ex.Label = label

	prev := 0
	for _, tok := range fields[1:] {
		idxStr, valStr, ok := strings.Cut(tok, ":")
		if !ok {
			return ex, fmt.Errorf("%w: expected index:value, got %q", ErrSyntax, tok)
		}

		idx, err := strconv.Atoi(idxStr)
		if err != nil || idx <= prev {
			return ex, fmt.Errorf("%w: bad feature index %q", ErrSyntax, idxStr)
		}

		val, err := strconv.ParseFloat(valStr, 64)
		if err != nil {
			return ex, fmt.Errorf("%w: bad feature value %q", ErrSyntax, valStr)
		}

		ex.Features = append(ex.Features, Feature{Index: idx, Value: val})
		prev = idx
	}

	return ex, nil
}
