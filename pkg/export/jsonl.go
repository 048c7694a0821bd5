package export

import (
	"encoding/json"
	"io"
)

// JSONLSink emits one JSON object per line. Fully streaming: no state
// beyond the underlying writer.
type JSONLSink[T any] struct {
	enc *json.Encoder
}

// NewJSONLSink returns a sink producing JSON lines on w.
func NewJSONLSink[T any](w io.Writer) *JSONLSink[T] {
	return &JSONLSink[T]{enc: json.NewEncoder(w)}
}

func (s *JSONLSink[T]) Write(record T) error {
	return s.enc.Encode(record)
}

func (s *JSONLSink[T]) Close() error { return nil }
