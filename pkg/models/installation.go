package models

// Installation identifies a meterable site belonging to a client.
type Installation struct {
	ID             string `json:"id" parquet:"id"`
	StreetName     string `json:"street_name" parquet:"street_name"`
	StreetAddress  string `json:"street_address" parquet:"street_address"`
	BuildingNumber int64  `json:"building_number" parquet:"building_number"`
	PostalCode     string `json:"postal_code" parquet:"postal_code"`
	City           string `json:"city" parquet:"city"`
}
