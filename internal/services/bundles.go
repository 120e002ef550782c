package services

import (
	"github.com/stwalsh4118/wardlens/internal/census"
	"github.com/stwalsh4118/wardlens/internal/comparison"
	"github.com/stwalsh4118/wardlens/internal/dictionary"
	"github.com/stwalsh4118/wardlens/internal/models"
	"github.com/stwalsh4118/wardlens/internal/reference"
	"github.com/stwalsh4118/wardlens/internal/retail"
)

// Every bundle carries IsLoading. While it is true the derived fields are
// nil; once it is false they are fully computed.

// Reference holds the citywide benchmark shown next to district values.
type Reference struct {
	Label                 string  `json:"label"`
	MedianHouseholdIncome float64 `json:"medianHouseholdIncome"`
	UnemploymentRate      float64 `json:"unemploymentRate"`
	PovertyRate           float64 `json:"povertyRate"`
	HomeownershipRate     float64 `json:"homeownershipRate"`
	BachelorsDegreeRate   float64 `json:"bachelorsDegreeRate"`
	HighSchoolGradRate    float64 `json:"highSchoolGradRate"`
	TotalPopulation       float64 `json:"totalPopulation"`
}

// Citywide returns the citywide benchmark.
func Citywide() Reference {
	return Reference{
		Label:                 reference.Label,
		MedianHouseholdIncome: reference.MedianHouseholdIncome,
		UnemploymentRate:      reference.UnemploymentRate,
		PovertyRate:           reference.PovertyRate,
		HomeownershipRate:     reference.HomeownershipRate,
		BachelorsDegreeRate:   reference.BachelorsDegreeRate,
		HighSchoolGradRate:    reference.HighSchoolGradRate,
		TotalPopulation:       reference.TotalPopulation,
	}
}

// ComparisonBundle is the headline district comparison.
type ComparisonBundle struct {
	IsLoading          bool                        `json:"isLoading"`
	Districts          []models.DistrictComparison `json:"data"`
	EducationBreakdown []models.EducationBreakdown `json:"educationBreakdown"`
	Charts             *models.ChartSeries         `json:"charts"`
	ComparisonChart    []models.GroupedBarPoint    `json:"comparisonChart"`
	Unjoined           []census.Unjoined           `json:"unjoined"`
	Reference          *Reference                  `json:"reference"`
}

// FoodAccessBundle summarizes retailer access and the food access atlas.
type FoodAccessBundle struct {
	IsLoading        bool                       `json:"isLoading"`
	ByPostalCode     []models.PostalCodeSummary `json:"snapByZip"`
	StoreTypes       []models.CategoryShare     `json:"storeTypes"`
	Stats            *models.RetailerSummary    `json:"stats"`
	PostalCodeChart  *retail.StackedChart       `json:"postalCodeChart"`
	ActiveRetailers  []models.Retailer          `json:"activeRetailers"`
	TotalRetailers   *int                       `json:"totalRetailers"`
	FoodAccessTracts []models.RawRecord         `json:"foodAccessTracts"`
}

// Sparklines holds per-district yearly counts.
type Sparklines struct {
	DistrictA []int `json:"districtA"`
	DistrictB []int `json:"districtB"`
}

// IncidentBundle is the crime analysis view.
type IncidentBundle struct {
	IsLoading    bool                     `json:"isLoading"`
	Year         *int                     `json:"year"`
	Stats        *models.IncidentStats    `json:"stats"`
	TopOffenses  []models.IncidentBucket  `json:"topOffenses"`
	ByCategory   []models.IncidentBucket  `json:"byCategory"`
	OffenseChart []models.GroupedBarPoint `json:"offenseChartData"`
	ShiftChart   []models.GroupedBarPoint `json:"shiftChartData"`
	MethodChart  []models.GroupedBarPoint `json:"methodChartData"`
	YearlyChart  []models.YearBucket      `json:"yearlyChartData"`
	Sparklines   *Sparklines              `json:"sparklines"`
}

// MetricsBundle is the full metric comparison of one survey domain.
type MetricsBundle struct {
	IsLoading  bool                      `json:"isLoading"`
	Domain     dictionary.Domain         `json:"domain"`
	Category   string                    `json:"category,omitempty"`
	Source     *dictionary.Source        `json:"source"`
	Metrics    []models.MetricComparison `json:"metrics"`
	Categories []string                  `json:"categories"`
	ByCategory []comparison.Group        `json:"metricsByCategory"`
}

// DictionaryBundle is every survey metric tagged with its source, plus the
// catalog of survey extracts.
type DictionaryBundle struct {
	IsLoading   bool                   `json:"isLoading"`
	Metrics     []models.SourcedMetric `json:"allMetrics"`
	DataSources []models.DataSource    `json:"dataSources"`
}

// MapQuery narrows the map layers. Zero values mean no restriction.
type MapQuery struct {
	Year      int
	Offense   string
	StoreType string
}

// MapLayersBundle is the district outlines with point markers.
type MapLayersBundle struct {
	IsLoading           bool                       `json:"isLoading"`
	Year                *int                       `json:"year"`
	Boundaries          *models.BoundaryCollection `json:"boundaries"`
	BoundariesAvailable bool                       `json:"boundariesAvailable"`
	Retailers           []models.MapMarker         `json:"retailers"`
	Incidents           []models.MapMarker         `json:"incidents"`
	AvailableYears      []int                      `json:"availableYears"`
}
