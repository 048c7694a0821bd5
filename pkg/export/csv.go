package export

import (
	"encoding/csv"
	"io"
)

// CSVSink emits a header row followed by one row per record. Column names
// come from the record struct's json tags, so CSV and JSON exports carry
// the same field names.
type CSVSink[T any] struct {
	w      *csv.Writer
	header bool
}

// NewCSVSink returns a sink producing CSV on w.
func NewCSVSink[T any](w io.Writer) *CSVSink[T] {
	return &CSVSink[T]{w: csv.NewWriter(w)}
}

func (s *CSVSink[T]) Write(record T) error {
	if !s.header {
		if err := s.w.Write(columnsOf[T]()); err != nil {
			return err
		}
		s.header = true
	}
	return s.w.Write(textValues(record))
}

func (s *CSVSink[T]) Close() error {
	if !s.header {
		// Header is still useful for an empty result set.
		if err := s.w.Write(columnsOf[T]()); err != nil {
			return err
		}
	}
	s.w.Flush()
	return s.w.Error()
}
