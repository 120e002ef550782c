package models

// DistrictComparison is the joined economic/housing/social view of one district.
// Rate fields are percentages in [0,100]; a zero denominator upstream yields 0.
type DistrictComparison struct {
	District            int     `json:"district"`
	DistrictName        string  `json:"districtName"`
	MedianIncome        float64 `json:"medianIncome"`
	HomeownershipRate   float64 `json:"homeownershipRate"`
	BachelorsDegreeRate float64 `json:"bachelorsDegreeRate"`
	UnemploymentRate    float64 `json:"unemploymentRate"`
	PovertyRate         float64 `json:"povertyRate"`
	Population          float64 `json:"population"`
}

// EducationBreakdown is the attainment distribution of one district, each
// field a share of the total education population.
type EducationBreakdown struct {
	District       int     `json:"district"`
	DistrictName   string  `json:"districtName"`
	LessHighSchool float64 `json:"lessHighSchool"`
	HighSchool     float64 `json:"highSchool"`
	SomeCollege    float64 `json:"someCollege"`
	Associates     float64 `json:"associates"`
	Bachelors      float64 `json:"bachelors"`
	Graduate       float64 `json:"graduate"`
}

// GroupedBarPoint is one category of a grouped bar chart carrying both
// districts' values and, optionally, a citywide reference value.
type GroupedBarPoint struct {
	Category  string   `json:"category"`
	ValueA    float64  `json:"valueA"`
	ValueB    float64  `json:"valueB"`
	Reference *float64 `json:"reference,omitempty"`
}

// ChartSeries groups the survey comparison charts by topic.
type ChartSeries struct {
	Income     []GroupedBarPoint `json:"income"`
	Housing    []GroupedBarPoint `json:"housing"`
	Education  []GroupedBarPoint `json:"education"`
	Employment []GroupedBarPoint `json:"employment"`
}
