package models

// Incident is one row of the crime incident feed. JSON keys follow the feed.
type Incident struct {
	CCN                 Code     `json:"CCN"`
	ReportTimestamp     int64    `json:"REPORT_DAT"`
	Shift               string   `json:"SHIFT"`
	Method              string   `json:"METHOD"`
	Offense             string   `json:"OFFENSE"`
	Block               string   `json:"BLOCK,omitempty"`
	Ward                Code     `json:"WARD"`
	ANC                 Code     `json:"ANC,omitempty"`
	PoliceDistrict      Code     `json:"DISTRICT,omitempty"`
	PSA                 Code     `json:"PSA,omitempty"`
	NeighborhoodCluster string   `json:"NEIGHBORHOOD_CLUSTER,omitempty"`
	CensusTract         Code     `json:"CENSUS_TRACT,omitempty"`
	Latitude            *float64 `json:"LATITUDE,omitempty"`
	Longitude           *float64 `json:"LONGITUDE,omitempty"`
}

// YearBucket counts incidents of one calendar year per district.
type YearBucket struct {
	Year   int `json:"year"`
	CountA int `json:"countA"`
	CountB int `json:"countB"`
	Total  int `json:"total"`
}

// IncidentBucket counts incidents sharing one key (offense, shift or method).
type IncidentBucket struct {
	Key    string `json:"key"`
	CountA int    `json:"countA"`
	CountB int    `json:"countB"`
	Total  int    `json:"total"`
}

// Direction classifies a year-over-year change.
type Direction string

const (
	DirectionUp     Direction = "up"
	DirectionDown   Direction = "down"
	DirectionStable Direction = "stable"
)

// Trend is the change between the two most recent years of data.
type Trend struct {
	CurrentYear  int       `json:"currentYear,omitempty"`
	PreviousYear int       `json:"previousYear,omitempty"`
	ChangeA      int       `json:"changeA"`
	ChangeB      int       `json:"changeB"`
	PercentA     float64   `json:"percentA"`
	PercentB     float64   `json:"percentB"`
	DirectionA   Direction `json:"directionA"`
	DirectionB   Direction `json:"directionB"`
}

// IncidentTotals are grand totals across all years.
type IncidentTotals struct {
	CountA int `json:"countA"`
	CountB int `json:"countB"`
	All    int `json:"all"`
}

// YearSnapshot is the count for the latest year present in the data.
type YearSnapshot struct {
	Year   int `json:"year"`
	CountA int `json:"countA"`
	CountB int `json:"countB"`
}

// IncidentStats bundles every incident aggregation.
type IncidentStats struct {
	TotalByYear []YearBucket     `json:"totalByYear"`
	ByOffense   []IncidentBucket `json:"byOffense"`
	ByShift     []IncidentBucket `json:"byShift"`
	ByMethod    []IncidentBucket `json:"byMethod"`
	Trend       Trend            `json:"trend"`
	Totals      IncidentTotals   `json:"totals"`
	LatestYear  YearSnapshot     `json:"latestYear"`
}
