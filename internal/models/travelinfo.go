package models

type VisaInfo struct {
	Requirement string `json:"requirement,omitempty"`
	Description string `json:"description,omitempty"`
}

type Advisory struct {
	Source  string `json:"source"`
	Level   string `json:"level,omitempty"`
	Summary string `json:"summary,omitempty"`
}

type HealthInfo struct {
	Summary      string   `json:"summary,omitempty"`
	Vaccinations []string `json:"vaccinations,omitempty"`
}

// TravelInfo is single-source and unranked; any of its sections may be
// missing when the lookups came back empty.
type TravelInfo struct {
	Visa       VisaInfo   `json:"visa"`
	Advisories []Advisory `json:"advisories,omitempty"`
	Health     HealthInfo `json:"health"`
}
