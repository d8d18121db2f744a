package config

import (
	"fmt"
	"gopkg.in/yaml.v3"
	"leadharvest/pkg/models"
	"os"
)

// Categories is the fixed list of business verticals. Order matters: output
// blocks follow it exactly.
var Categories = []string{
	"Clothing & Apparel", "Electronics & Gadgets", "Beauty & Personal Care",
	"Jewelry & Accessories", "Furniture & Décor", "Legal Services",
	"Accounting & Tax", "Consulting", "Real Estate Agency",
	"Financial Planning", "Hospitals & Clinics", "Fitness Centers",
	"Restaurants", "Cafes", "Catering Services", "Coaching Institutes",
}

// Regions returns the built-in region table: Kansas (US) and Nunavut (CA),
// each with its providers in fallback priority order.
func Regions() []models.Region {
	return []models.Region{
		{
			Key:             "kansas",
			Name:            "Kansas",
			Country:         "United States",
			SubdivisionCode: "KS",
			Providers: []models.ProviderSpec{
				{Kind: models.YellowPagesUS, BaseURL: "https://www.yellowpages.com", Priority: 1},
				{Kind: models.Yelp, BaseURL: "https://www.yelp.com", Priority: 2},
				{Kind: models.Manta, BaseURL: "https://www.manta.com", Priority: 3},
			},
		},
		{
			Key:             "nunavut",
			Name:            "Nunavut",
			Country:         "Canada",
			SubdivisionCode: "NU",
			Providers: []models.ProviderSpec{
				{Kind: models.YellowPagesCA, BaseURL: "https://www.yellowpages.ca", Priority: 1},
				{Kind: models.Yelp, BaseURL: "https://www.yelp.ca", Priority: 2},
				{Kind: models.Canada411, BaseURL: "https://www.canada411.ca", Priority: 3},
			},
		},
	}
}

// File shape for REGIONS_FILE. Provider priority is the list position.
type regionsFile struct {
	Regions []struct {
		Key             string `yaml:"key"`
		Name            string `yaml:"name"`
		Country         string `yaml:"country"`
		SubdivisionCode string `yaml:"subdivision"`
		Providers       []struct {
			Kind    string `yaml:"kind"`
			BaseURL string `yaml:"base_url"`
		} `yaml:"providers"`
	} `yaml:"regions"`
}

// LoadRegions returns the region table, replaced by the YAML file at path
// when path is non-empty.
func LoadRegions(path string) ([]models.Region, error) {
	if path == "" {
		return Regions(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read regions file: %w", err)
	}

	var file regionsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse regions file: %w", err)
	}
	if len(file.Regions) == 0 {
		return nil, fmt.Errorf("regions file %s defines no regions", path)
	}

	regions := make([]models.Region, 0, len(file.Regions))
	for _, r := range file.Regions {
		if len(r.Providers) == 0 {
			return nil, fmt.Errorf("region %q: provider list is empty", r.Key)
		}

		region := models.Region{
			Key:             r.Key,
			Name:            r.Name,
			Country:         r.Country,
			SubdivisionCode: r.SubdivisionCode,
		}
		for i, p := range r.Providers {
			kind, err := models.ParseProviderKind(p.Kind)
			if err != nil {
				return nil, fmt.Errorf("region %q: %w", r.Key, err)
			}
			region.Providers = append(region.Providers, models.ProviderSpec{
				Kind:     kind,
				BaseURL:  p.BaseURL,
				Priority: i + 1,
			})
		}
		regions = append(regions, region)
	}
	return regions, nil
}
