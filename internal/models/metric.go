package models

// MetricComparison compares one dictionary field between the two districts.
// A nil value means the district had no observation for the field.
type MetricComparison struct {
	FieldCode   string       `json:"fieldCode"`
	Label       string       `json:"label"`
	Description string       `json:"description"`
	Format      NumberFormat `json:"format"`
	Category    string       `json:"category,omitempty"`
	ValueA      *float64     `json:"valueA"`
	ValueB      *float64     `json:"valueB"`
	Gap         *float64     `json:"gap"`
	GapPercent  *float64     `json:"gapPercent"`
}

// SourcedMetric is a metric comparison tagged with the dataset it came from.
type SourcedMetric struct {
	MetricComparison
	Source string `json:"source"`
}

// DataSource describes one survey extract in the data dictionary view.
type DataSource struct {
	Name         string `json:"name"`
	File         string `json:"file"`
	Prefix       string `json:"prefix"`
	Description  string `json:"description"`
	MetricsCount int    `json:"metricsCount"`
	Available    bool   `json:"available"`
}
