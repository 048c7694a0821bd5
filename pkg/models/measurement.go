package models

// Measurement is one timestamped meter reading for an installation.
//
// The upstream API encodes numeric values either as JSON numbers or as
// numeric strings depending on the requested scope; the normalizer in this
// package always produces float64 values.
type Measurement struct {
	ClientID       uint64  `json:"client_id" parquet:"client_id"`
	InstallationID string  `json:"installation_id" parquet:"installation_id"`
	Timestamp      string  `json:"timestamp" parquet:"timestamp"`
	IndexM3        float64 `json:"index_m3" parquet:"index_m3"`
	ConsumptionM3  float64 `json:"consumption_m3" parquet:"consumption_m3"`
	ConsumptionKWh float64 `json:"consumption_kwh" parquet:"consumption_kwh"`
}
