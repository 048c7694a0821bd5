package export

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

// TextSink renders records as a plain aligned table for reading in a
// terminal. Rows are buffered until Close so column widths can be computed
// over the whole record set.
type TextSink[T any] struct {
	w       io.Writer
	columns []string
	rows    [][]string
	closed  bool
}

// NewTextSink returns a sink producing an aligned text table on w.
func NewTextSink[T any](w io.Writer) *TextSink[T] {
	return &TextSink[T]{w: w, columns: columnsOf[T]()}
}

func (s *TextSink[T]) Write(record T) error {
	s.rows = append(s.rows, textValues(record))
	return nil
}

func (s *TextSink[T]) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	table := tablewriter.NewWriter(s.w)
	table.SetHeader(s.columns)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	table.AppendBulk(s.rows)
	table.Render()

	if len(s.rows) == 0 {
		_, err := fmt.Fprintln(s.w, "No results.")
		return err
	}
	return nil
}
