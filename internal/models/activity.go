package models

type Activity struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	PriceRange  string   `json:"price_range,omitempty"`
	Location    string   `json:"location,omitempty"`
	Source      string   `json:"source"`
}

func (a Activity) RecordSource() string { return a.Source }
func (a Activity) DedupeKey() string    { return a.Name }
