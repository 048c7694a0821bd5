package export

import (
	"encoding/json"
	"io"
)

// JSONSink frames records as a single JSON array document. The array
// brackets force framing state, but each record is encoded and written as
// it arrives; only the encoder output of one record is held at a time.
type JSONSink[T any] struct {
	w       io.Writer
	started bool
	closed  bool
}

// NewJSONSink returns a sink producing one JSON array document on w.
func NewJSONSink[T any](w io.Writer) *JSONSink[T] {
	return &JSONSink[T]{w: w}
}

func (s *JSONSink[T]) Write(record T) error {
	separator := ","
	if !s.started {
		separator = "["
		s.started = true
	}
	if _, err := io.WriteString(s.w, separator); err != nil {
		return err
	}

	encoded, err := json.Marshal(record)
	if err != nil {
		return err
	}
	_, err = s.w.Write(encoded)
	return err
}

func (s *JSONSink[T]) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if !s.started {
		_, err := io.WriteString(s.w, "[]\n")
		return err
	}
	_, err := io.WriteString(s.w, "]\n")
	return err
}
