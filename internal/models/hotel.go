package models

type Hotel struct {
	Name      string   `json:"name"`
	Address   string   `json:"address,omitempty"`
	Price     *Money   `json:"price,omitempty"`
	PriceText string   `json:"price_text,omitempty"`
	Rating    *float64 `json:"rating,omitempty"`
	Amenities []string `json:"amenities,omitempty"`
	Source    string   `json:"source"`
}

func (h Hotel) RecordSource() string { return h.Source }
func (h Hotel) DedupeKey() string    { return h.Name }
