package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RecordPolicy selects how the normalizer treats malformed rows in a batch.
type RecordPolicy int

const (
	// PolicySkipMalformed drops malformed rows and keeps decoding.
	PolicySkipMalformed RecordPolicy = iota
	// PolicyAbortOnMalformed stops at the first malformed row.
	PolicyAbortOnMalformed
)

// MalformedRecordError reports a single upstream row that could not be
// normalized into its canonical record shape.
type MalformedRecordError struct {
	Index  int
	Field  string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record at index %d: field %q: %s", e.Index, e.Field, e.Reason)
}

// Field aliases used by the upstream API. The first alias present on a row
// wins; every canonical field maps to exactly one value.
var (
	measurementClientID    = []string{"client_id"}
	measurementInstID      = []string{"installation_id", "num_inst"}
	measurementTimestamp   = []string{"timestamp", "date"}
	measurementIndexM3     = []string{"index_m3"}
	measurementConsM3      = []string{"consumption_m3", "quantite_m3"}
	measurementConsKWh     = []string{"consumption_kwh", "consommation_kw_h"}
	installationID         = []string{"id", "insID", "installation_id"}
	installationStreetName = []string{"street_name", "adrNomRueC"}
	installationStreetAddr = []string{"street_address", "adrRueC"}
	installationBuildingNo = []string{"building_number", "adrNumImm"}
	installationPostalCode = []string{"postal_code", "adrCPC"}
	installationCity       = []string{"city", "adrLocaliteC"}
)

// DecodeMeasurements normalizes raw upstream rows into Measurement records.
// The returned count reports how many rows were skipped under
// PolicySkipMalformed; under PolicyAbortOnMalformed the first bad row is
// returned as a *MalformedRecordError and no further rows are decoded.
func DecodeMeasurements(rows []map[string]any, policy RecordPolicy) ([]Measurement, int, error) {
	records := make([]Measurement, 0, len(rows))
	skipped := 0

	for i, row := range rows {
		record, err := decodeMeasurement(i, row)
		if err != nil {
			if policy == PolicyAbortOnMalformed {
				return records, skipped, err
			}
			skipped++
			continue
		}
		records = append(records, record)
	}

	return records, skipped, nil
}

// DecodeInstallations normalizes raw upstream rows into Installation records
// under the same policy rules as DecodeMeasurements.
func DecodeInstallations(rows []map[string]any, policy RecordPolicy) ([]Installation, int, error) {
	records := make([]Installation, 0, len(rows))
	skipped := 0

	for i, row := range rows {
		record, err := decodeInstallation(i, row)
		if err != nil {
			if policy == PolicyAbortOnMalformed {
				return records, skipped, err
			}
			skipped++
			continue
		}
		records = append(records, record)
	}

	return records, skipped, nil
}

func decodeMeasurement(index int, row map[string]any) (Measurement, error) {
	var record Measurement
	var err error

	if record.ClientID, err = uintField(index, row, measurementClientID); err != nil {
		return Measurement{}, err
	}
	if record.InstallationID, err = stringField(index, row, measurementInstID); err != nil {
		return Measurement{}, err
	}
	if record.Timestamp, err = stringField(index, row, measurementTimestamp); err != nil {
		return Measurement{}, err
	}
	if record.IndexM3, err = floatField(index, row, measurementIndexM3); err != nil {
		return Measurement{}, err
	}
	if record.ConsumptionM3, err = floatField(index, row, measurementConsM3); err != nil {
		return Measurement{}, err
	}
	if record.ConsumptionKWh, err = floatField(index, row, measurementConsKWh); err != nil {
		return Measurement{}, err
	}

	return record, nil
}

func decodeInstallation(index int, row map[string]any) (Installation, error) {
	var record Installation
	var err error

	if record.ID, err = stringField(index, row, installationID); err != nil {
		return Installation{}, err
	}

	// Address metadata is optional; decode whatever is present.
	record.StreetName, _ = optionalString(row, installationStreetName)
	record.StreetAddress, _ = optionalString(row, installationStreetAddr)
	record.PostalCode, _ = optionalString(row, installationPostalCode)
	record.City, _ = optionalString(row, installationCity)

	if value, ok := lookup(row, installationBuildingNo); ok {
		number, err := toFloat(value)
		if err != nil {
			return Installation{}, &MalformedRecordError{Index: index, Field: installationBuildingNo[0], Reason: err.Error()}
		}
		record.BuildingNumber = int64(number)
	}

	return record, nil
}

func lookup(row map[string]any, aliases []string) (any, bool) {
	for _, key := range aliases {
		if value, ok := row[key]; ok {
			return value, true
		}
	}
	return nil, false
}

func stringField(index int, row map[string]any, aliases []string) (string, error) {
	value, ok := lookup(row, aliases)
	if !ok {
		return "", &MalformedRecordError{Index: index, Field: aliases[0], Reason: "missing required field"}
	}
	text, err := toString(value)
	if err != nil {
		return "", &MalformedRecordError{Index: index, Field: aliases[0], Reason: err.Error()}
	}
	return text, nil
}

func optionalString(row map[string]any, aliases []string) (string, bool) {
	value, ok := lookup(row, aliases)
	if !ok {
		return "", false
	}
	text, err := toString(value)
	if err != nil {
		return "", false
	}
	return text, true
}

func floatField(index int, row map[string]any, aliases []string) (float64, error) {
	value, ok := lookup(row, aliases)
	if !ok {
		return 0, &MalformedRecordError{Index: index, Field: aliases[0], Reason: "missing required field"}
	}
	number, err := toFloat(value)
	if err != nil {
		return 0, &MalformedRecordError{Index: index, Field: aliases[0], Reason: err.Error()}
	}
	return number, nil
}

func uintField(index int, row map[string]any, aliases []string) (uint64, error) {
	number, err := floatField(index, row, aliases)
	if err != nil {
		return 0, err
	}
	if number < 0 || number != math.Trunc(number) {
		return 0, &MalformedRecordError{Index: index, Field: aliases[0], Reason: "not a non-negative integer"}
	}
	return uint64(number), nil
}

func toString(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("expected string, got %T", value)
	}
}

func toFloat(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case string:
		number, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("not a numeric value: %q", v)
		}
		return number, nil
	default:
		return 0, fmt.Errorf("expected number, got %T", value)
	}
}
