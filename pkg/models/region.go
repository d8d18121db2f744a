package models

// Region is one geographic market to harvest. Regions are loaded once at
// startup and never mutated afterwards.
type Region struct {
	Key             string
	Name            string
	Country         string
	SubdivisionCode string
	Providers       []ProviderSpec
}

// ProviderSpec is one data source configured for a region. Priority defines
// the fallback order: lower values are consulted first.
type ProviderSpec struct {
	Kind     ProviderKind
	BaseURL  string
	Priority int
}
