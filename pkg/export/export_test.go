package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/parquet-go/parquet-go"

	"github.com/nhedger/energiapro/pkg/models"
)

func sampleMeasurements() []models.Measurement {
	return []models.Measurement{
		{
			ClientID:       507167,
			InstallationID: "5806.000",
			Timestamp:      "2024-04-01 15:00:00",
			IndexM3:        145506.00,
			ConsumptionM3:  77.10,
			ConsumptionKWh: 798.45,
		},
		{
			ClientID:       507167,
			InstallationID: "5806.000",
			Timestamp:      "2024-04-01 16:00:00",
			IndexM3:        145595.00,
			ConsumptionM3:  89.30,
			ConsumptionKWh: 924.80,
		},
	}
}

func TestParseFormat(t *testing.T) {
	is := is.New(t)

	for _, name := range []string{"text", "json", "jsonl", "csv", "parquet", " JSON "} {
		_, err := ParseFormat(name)
		is.NoErr(err)
	}

	_, err := ParseFormat("xml")
	is.True(err != nil)
}

func TestTextExportRendersAlignedTable(t *testing.T) {
	is := is.New(t)

	var buf bytes.Buffer
	is.NoErr(Encode(FormatText, &buf, sampleMeasurements()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	is.Equal(len(lines), 3) // header + 2 rows

	is.True(strings.HasPrefix(lines[0], "client_id"))
	is.True(strings.Contains(lines[0], "installation_id"))
	is.True(strings.Contains(lines[1], "5806.000"))
	is.True(strings.Contains(lines[1], "2024-04-01 15:00:00"))
	is.True(strings.Contains(lines[2], "2024-04-01 16:00:00"))

	// Cells line up under their headers.
	is.Equal(strings.Index(lines[1], "5806.000"), strings.Index(lines[0], "installation_id"))
}

func TestTextExportEmptyRecordSet(t *testing.T) {
	is := is.New(t)

	var buf bytes.Buffer
	is.NoErr(Encode(FormatText, &buf, []models.Measurement{}))

	output := buf.String()
	is.True(strings.Contains(output, "client_id"))
	is.True(strings.Contains(output, "No results."))
}

func TestJSONExportIsSingleArrayWithTypedFields(t *testing.T) {
	is := is.New(t)

	var buf bytes.Buffer
	is.NoErr(Encode(FormatJSON, &buf, sampleMeasurements()))

	var rows []map[string]any
	is.NoErr(json.Unmarshal(buf.Bytes(), &rows))
	is.Equal(len(rows), 2)

	_, idIsString := rows[0]["installation_id"].(string)
	is.True(idIsString)
	_, tsIsString := rows[0]["timestamp"].(string)
	is.True(tsIsString)
	_, indexIsNumber := rows[0]["index_m3"].(float64)
	is.True(indexIsNumber)
	_, consM3IsNumber := rows[0]["consumption_m3"].(float64)
	is.True(consM3IsNumber)
	_, consKWhIsNumber := rows[0]["consumption_kwh"].(float64)
	is.True(consKWhIsNumber)
}

func TestJSONExportEmptyRecordSet(t *testing.T) {
	is := is.New(t)

	var buf bytes.Buffer
	is.NoErr(Encode(FormatJSON, &buf, []models.Measurement{}))
	is.Equal(strings.TrimSpace(buf.String()), "[]")
}

func TestJSONLExportOneObjectPerLine(t *testing.T) {
	is := is.New(t)

	var buf bytes.Buffer
	is.NoErr(Encode(FormatJSONL, &buf, sampleMeasurements()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	is.Equal(len(lines), 2)
	for _, line := range lines {
		is.True(strings.HasPrefix(line, "{"))
		var row map[string]any
		is.NoErr(json.Unmarshal([]byte(line), &row))
		_, idIsString := row["installation_id"].(string)
		is.True(idIsString)
	}
}

func TestCSVRoundTrip(t *testing.T) {
	is := is.New(t)

	records := sampleMeasurements()
	var buf bytes.Buffer
	is.NoErr(Encode(FormatCSV, &buf, records))

	parsed, err := csv.NewReader(&buf).ReadAll()
	is.NoErr(err)
	is.Equal(len(parsed), 3) // header + 2 rows

	header := parsed[0]
	is.Equal(header, []string{"client_id", "installation_id", "timestamp", "index_m3", "consumption_m3", "consumption_kwh"})

	for i, want := range records {
		row := parsed[i+1]
		is.Equal(row[1], want.InstallationID)
		is.Equal(row[2], want.Timestamp)

		for j, wantValue := range []float64{want.IndexM3, want.ConsumptionM3, want.ConsumptionKWh} {
			got, err := strconv.ParseFloat(row[3+j], 64)
			is.NoErr(err)
			is.True(math.Abs(got-wantValue) < 1e-9)
		}
	}
}

func TestCSVEmptyRecordSetKeepsHeader(t *testing.T) {
	is := is.New(t)

	var buf bytes.Buffer
	is.NoErr(Encode(FormatCSV, &buf, []models.Measurement{}))
	is.Equal(strings.TrimSpace(buf.String()), "client_id,installation_id,timestamp,index_m3,consumption_m3,consumption_kwh")
}

func TestParquetRoundTrip(t *testing.T) {
	is := is.New(t)

	records := sampleMeasurements()
	var buf bytes.Buffer
	is.NoErr(Encode(FormatParquet, &buf, records))

	decoded, err := parquet.Read[models.Measurement](bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	is.NoErr(err)
	is.Equal(decoded, records)
}

func TestParquetSchemaTypes(t *testing.T) {
	is := is.New(t)

	schema := parquet.SchemaOf(models.Measurement{})
	fields := map[string]parquet.Field{}
	for _, field := range schema.Fields() {
		fields[field.Name()] = field
	}

	for _, name := range []string{"installation_id", "timestamp"} {
		is.Equal(fields[name].Type().Kind(), parquet.ByteArray) // text columns stay text
	}
	for _, name := range []string{"index_m3", "consumption_m3", "consumption_kwh"} {
		is.Equal(fields[name].Type().Kind(), parquet.Double) // metering quantities stay numeric
	}
}

// flakySink fails every Write after the first and records whether Close ran.
type flakySink struct {
	writes int
	closed bool
}

func (s *flakySink) Write(models.Measurement) error {
	s.writes++
	if s.writes > 1 {
		return errors.New("disk full")
	}
	return nil
}

func (s *flakySink) Close() error {
	s.closed = true
	return nil
}

func TestWriteFailureStillClosesSink(t *testing.T) {
	is := is.New(t)

	sink := &flakySink{}
	err := drain[models.Measurement](sink, sampleMeasurements())

	is.True(err != nil)
	is.Equal(err.Error(), "disk full")
	is.True(sink.closed) // buffered framing must be flushed on the error path
}

func TestStreamingSinksAcceptRecordsIncrementally(t *testing.T) {
	is := is.New(t)

	var buf bytes.Buffer
	sink, err := NewSink[models.Measurement](FormatJSONL, &buf)
	is.NoErr(err)

	for _, record := range sampleMeasurements() {
		is.NoErr(sink.Write(record))
	}
	is.NoErr(sink.Close())

	is.Equal(len(strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")), 2)
}

func TestInstallationExport(t *testing.T) {
	is := is.New(t)

	installations := []models.Installation{
		{ID: "5806.000", StreetName: "Crets", StreetAddress: "Rue des Crets 3", BuildingNumber: 3, PostalCode: "1037", City: "Etagnieres"},
	}

	var buf bytes.Buffer
	is.NoErr(Encode(FormatJSON, &buf, installations))

	var rows []map[string]any
	is.NoErr(json.Unmarshal(buf.Bytes(), &rows))
	is.Equal(rows[0]["id"], "5806.000")

	buf.Reset()
	is.NoErr(Encode(FormatCSV, &buf, installations))
	is.True(strings.HasPrefix(buf.String(), "id,street_name,street_address,building_number,postal_code,city\n"))
}
