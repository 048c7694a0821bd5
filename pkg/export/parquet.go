package export

import (
	"io"

	"github.com/parquet-go/parquet-go"
)

// ParquetSink emits typed Parquet columns. The schema is derived from the
// record struct, so string fields stay string columns and float fields stay
// DOUBLE columns regardless of how the upstream API encoded them.
type ParquetSink[T any] struct {
	w *parquet.GenericWriter[T]
}

// NewParquetSink returns a sink producing a Parquet file on w.
func NewParquetSink[T any](w io.Writer) *ParquetSink[T] {
	return &ParquetSink[T]{w: parquet.NewGenericWriter[T](w)}
}

func (s *ParquetSink[T]) Write(record T) error {
	_, err := s.w.Write([]T{record})
	return err
}

// Close flushes buffered row groups and writes the file footer.
func (s *ParquetSink[T]) Close() error {
	return s.w.Close()
}
