// Package export encodes fetched records into one of the supported output
// formats: an aligned text table, a JSON array document, JSON lines, CSV,
// or Parquet.
//
// Every encoder implements the same streaming Sink interface so fetchers
// and encoders compose without materializing a full record set when the
// format does not require it. Type rules are identical across formats:
// installation IDs and timestamps are always text, the three metering
// quantities are always floating point.
package export

import (
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
)

// Format selects an output encoding.
type Format string

const (
	FormatText    Format = "text"
	FormatJSON    Format = "json"
	FormatJSONL   Format = "jsonl"
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
)

// ParseFormat parses a user-supplied format name.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatJSONL:
		return FormatJSONL, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatParquet:
		return FormatParquet, nil
	}
	return "", fmt.Errorf("export: unknown format %q (expected text, json, jsonl, csv or parquet)", value)
}

func (f Format) String() string { return string(f) }

// Sink consumes records one at a time and writes their encoding to an
// underlying writer. Close flushes format framing (CSV buffers, JSON array
// brackets, the Parquet footer) and must be called exactly once.
type Sink[T any] interface {
	Write(record T) error
	Close() error
}

// NewSink returns the sink for a format, writing to w.
func NewSink[T any](format Format, w io.Writer) (Sink[T], error) {
	switch format {
	case FormatText:
		return NewTextSink[T](w), nil
	case FormatJSON:
		return NewJSONSink[T](w), nil
	case FormatJSONL:
		return NewJSONLSink[T](w), nil
	case FormatCSV:
		return NewCSVSink[T](w), nil
	case FormatParquet:
		return NewParquetSink[T](w), nil
	}
	return nil, fmt.Errorf("export: unknown format %q", format)
}

// Encode writes all records in the given format and closes the sink.
func Encode[T any](format Format, w io.Writer, records []T) error {
	sink, err := NewSink[T](format, w)
	if err != nil {
		return err
	}
	return drain(sink, records)
}

// drain writes every record and always closes the sink, so buffered
// framing is flushed even when a record fails mid-stream.
func drain[T any](sink Sink[T], records []T) error {
	for _, record := range records {
		if err := sink.Write(record); err != nil {
			_ = sink.Close()
			return err
		}
	}
	return sink.Close()
}

// columnsOf derives the ordered column names of a record struct from its
// json tags.
func columnsOf[T any]() []string {
	t := reflect.TypeOf(*new(T))
	columns := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		columns = append(columns, columnName(t.Field(i)))
	}
	return columns
}

func columnName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag != "" {
		if name, _, _ := strings.Cut(tag, ","); name != "" && name != "-" {
			return name
		}
	}
	return field.Name
}

// textValues renders a record's fields as text cells. Strings pass through
// untouched; numbers keep their shortest exact representation.
func textValues(record any) []string {
	v := reflect.ValueOf(record)
	values := make([]string, 0, v.NumField())
	for i := 0; i < v.NumField(); i++ {
		values = append(values, textValue(v.Field(i)))
	}
	return values
}

func textValue(v reflect.Value) string {
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}
