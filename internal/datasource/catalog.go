package datasource

import (
	"github.com/stwalsh4118/wardlens/internal/dictionary"
)

// Catalog names the file behind each dataset.
type Catalog struct {
	Economic    string
	Housing     string
	Social      string
	Demographic string
	Retailers   string
	FoodAccess  string
	Incidents   string
	Boundaries  string
}

// DefaultCatalog returns the file names of the published 2025-11-03 extract.
func DefaultCatalog() Catalog {
	return Catalog{
		Economic:    "ward7-8_acs_economic_5year_20251103.json",
		Housing:     "ward7-8_acs_housing_5year_20251103.json",
		Social:      "ward7-8_acs_social_5year_20251103.json",
		Demographic: "ward7-8_acs_demographic_5year_20251103.json",
		Retailers:   "ward7-8_snap_retailers_20251103.json",
		FoodAccess:  "dc_all_food_access_atlas_20251103.json",
		Incidents:   "ward7-8_crime_incidents_2020-2025_combined_20251103.json",
		Boundaries:  "dc_ward_boundaries_2022.geojson",
	}
}

// Survey returns the dataset holding the given survey domain, or "" for
// domains without a survey file.
func (c Catalog) Survey(domain dictionary.Domain) string {
	switch domain {
	case dictionary.Economic:
		return c.Economic
	case dictionary.Housing:
		return c.Housing
	case dictionary.Social:
		return c.Social
	case dictionary.Demographic:
		return c.Demographic
	default:
		return ""
	}
}

// All lists every configured dataset, skipping blanks.
func (c Catalog) All() []string {
	names := []string{
		c.Economic, c.Housing, c.Social, c.Demographic,
		c.Retailers, c.FoodAccess, c.Incidents, c.Boundaries,
	}
	out := names[:0]
	for _, n := range names {
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}
