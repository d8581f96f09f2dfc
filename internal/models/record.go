package models

type Category string

const (
	CategoryFlight     Category = "flight"
	CategoryHotel      Category = "hotel"
	CategoryActivity   Category = "activity"
	CategoryTravelInfo Category = "travel_info"
)

// RawRecord is a source-specific bag of fields tagged with the source
// that produced it. Adapters map their wire schema onto the canonical
// field names each category's normalizer expects; nothing outside one
// orchestration pass ever sees a RawRecord.
type RawRecord struct {
	Source   string
	Category Category
	Fields   map[string]any
}

// Record is implemented by the normalized per-category shapes.
type Record interface {
	RecordSource() string
	DedupeKey() string
}
