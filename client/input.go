package client

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var (
	ErrEmptyInput    = errors.New("no values entered")
	ErrTooManyValues = errors.New("too many values")
	ErrTooFewValues  = errors.New("too few values")
	ErrInvalidValue  = errors.New("values must be integers separated by spaces")
)

// ReadArray reads one line from r and parses exactly size integers
// separated by spaces.
func ReadArray(r *bufio.Reader, size int) ([]int64, error) {
	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		if err == io.EOF {
			return nil, ErrEmptyInput
		}
		return nil, err
	}
	fields := strings.Fields(line)
	switch {
	case len(fields) == 0:
		return nil, ErrEmptyInput
	case len(fields) > size:
		return nil, fmt.Errorf("%w: want %d, got %d", ErrTooManyValues, size, len(fields))
	case len(fields) < size:
		return nil, fmt.Errorf("%w: want %d, got %d", ErrTooFewValues, size, len(fields))
	}
	values := make([]int64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidValue, f)
		}
		values[i] = v
	}
	return values, nil
}
