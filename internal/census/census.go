// Package census turns the economic, housing and social survey extracts into
// per-district comparison records and chart series.
package census

import (
	"sort"

	"github.com/stwalsh4118/wardlens/internal/matcher"
	"github.com/stwalsh4118/wardlens/internal/models"
	"github.com/stwalsh4118/wardlens/internal/rates"
	"github.com/stwalsh4118/wardlens/internal/reference"
)

// Survey field codes read by the transformer.
const (
	FieldMedianIncome     = "DP03_0063E"
	FieldUnemploymentRate = "DP03_0009PE"
	FieldPovertyRate      = "DP03_0128PE"
	FieldPopulation       = "DP03_0001E"

	FieldOwnerOccupied  = "DP04_0046E"
	FieldRenterOccupied = "DP04_0047E"

	FieldLessThanNinthGrade = "DP02_0059E"
	FieldNoDiploma          = "DP02_0060E"
	FieldHighSchoolGrad     = "DP02_0061E"
	FieldSomeCollege        = "DP02_0062E"
	FieldAssociates         = "DP02_0063E"
	FieldBachelors          = "DP02_0064E"
	FieldGraduate           = "DP02_0065E"
)

// Reasons a district could not be joined.
const (
	ReasonUnresolved     = "unresolved district"
	ReasonDuplicate      = "duplicate district"
	ReasonMissingHousing = "missing housing record"
	ReasonMissingSocial  = "missing social record"
)

// Unjoined describes an economic record that produced no comparison.
type Unjoined struct {
	RecordID string `json:"recordId"`
	District int    `json:"district,omitempty"`
	Reason   string `json:"reason"`
}

// JoinResult carries the joined districts and the ones that were skipped.
type JoinResult struct {
	Districts []models.DistrictComparison `json:"districts"`
	Unjoined  []Unjoined                  `json:"unjoined"`
}

// Transformer joins survey extracts for a pair of districts.
type Transformer struct {
	Districts models.DistrictPair
}

// NewTransformer creates a Transformer for the given districts.
func NewTransformer(districts models.DistrictPair) *Transformer {
	return &Transformer{Districts: districts}
}

// Join builds one comparison record per district present in economic that
// also has housing and social counterparts. Absent numeric fields read as 0.
// The result is sorted ascending by district number.
func (t *Transformer) Join(economic, housing, social []models.RawRecord) JoinResult {
	numbers := t.Districts.Numbers()
	result := JoinResult{
		Districts: []models.DistrictComparison{},
		Unjoined:  []Unjoined{},
	}
	seen := make(map[int]bool)

	for _, econ := range economic {
		if econ == nil {
			continue
		}
		district, ok := matcher.ResolveDistrict(econ, numbers)
		if !ok {
			result.Unjoined = append(result.Unjoined, Unjoined{RecordID: econ.ID(), Reason: ReasonUnresolved})
			continue
		}
		if seen[district] {
			result.Unjoined = append(result.Unjoined, Unjoined{RecordID: econ.ID(), District: district, Reason: ReasonDuplicate})
			continue
		}
		seen[district] = true

		h := matcher.MatchDistrict(housing, district)
		if h == nil {
			result.Unjoined = append(result.Unjoined, Unjoined{RecordID: econ.ID(), District: district, Reason: ReasonMissingHousing})
			continue
		}
		s := matcher.MatchDistrict(social, district)
		if s == nil {
			result.Unjoined = append(result.Unjoined, Unjoined{RecordID: econ.ID(), District: district, Reason: ReasonMissingSocial})
			continue
		}

		result.Districts = append(result.Districts, t.compare(district, econ, h, s))
	}

	sort.SliceStable(result.Districts, func(i, j int) bool {
		return result.Districts[i].District < result.Districts[j].District
	})
	return result
}

func (t *Transformer) compare(district int, econ, housing, social models.RawRecord) models.DistrictComparison {
	owner := housing.NumberOr(FieldOwnerOccupied, 0)
	renter := housing.NumberOr(FieldRenterOccupied, 0)

	bachelorsPlus := social.NumberOr(FieldBachelors, 0) + social.NumberOr(FieldGraduate, 0)

	d, _ := t.Districts.Get(district)
	return models.DistrictComparison{
		District:            district,
		DistrictName:        d.Name(),
		MedianIncome:        econ.NumberOr(FieldMedianIncome, 0),
		HomeownershipRate:   rates.PercentOf(owner, owner+renter),
		BachelorsDegreeRate: rates.PercentOf(bachelorsPlus, educationTotal(social)),
		UnemploymentRate:    econ.NumberOr(FieldUnemploymentRate, 0),
		PovertyRate:         econ.NumberOr(FieldPovertyRate, 0),
		Population:          econ.NumberOr(FieldPopulation, 0),
	}
}

var educationFields = []string{
	FieldLessThanNinthGrade,
	FieldNoDiploma,
	FieldHighSchoolGrad,
	FieldSomeCollege,
	FieldAssociates,
	FieldBachelors,
	FieldGraduate,
}

func educationTotal(r models.RawRecord) float64 {
	var total float64
	for _, f := range educationFields {
		total += r.NumberOr(f, 0)
	}
	return total
}

// EducationBreakdown returns the attainment distribution of each district
// found in social, sorted by district number. The two below-high-school
// buckets are combined.
func (t *Transformer) EducationBreakdown(social []models.RawRecord) []models.EducationBreakdown {
	out := []models.EducationBreakdown{}
	numbers := t.Districts.Numbers()
	seen := make(map[int]bool)

	for _, r := range social {
		district, ok := matcher.ResolveDistrict(r, numbers)
		if !ok || seen[district] {
			continue
		}
		seen[district] = true

		total := educationTotal(r)
		d, _ := t.Districts.Get(district)
		out = append(out, models.EducationBreakdown{
			District:       district,
			DistrictName:   d.Name(),
			LessHighSchool: rates.PercentOf(r.NumberOr(FieldLessThanNinthGrade, 0)+r.NumberOr(FieldNoDiploma, 0), total),
			HighSchool:     rates.PercentOf(r.NumberOr(FieldHighSchoolGrad, 0), total),
			SomeCollege:    rates.PercentOf(r.NumberOr(FieldSomeCollege, 0), total),
			Associates:     rates.PercentOf(r.NumberOr(FieldAssociates, 0), total),
			Bachelors:      rates.PercentOf(r.NumberOr(FieldBachelors, 0), total),
			Graduate:       rates.PercentOf(r.NumberOr(FieldGraduate, 0), total),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].District < out[j].District })
	return out
}

// Charts builds the grouped bar series. Both districts must be present;
// otherwise every series is empty.
func (t *Transformer) Charts(districts []models.DistrictComparison) models.ChartSeries {
	empty := models.ChartSeries{
		Income:     []models.GroupedBarPoint{},
		Housing:    []models.GroupedBarPoint{},
		Education:  []models.GroupedBarPoint{},
		Employment: []models.GroupedBarPoint{},
	}

	a, b, ok := t.pair(districts)
	if !ok {
		return empty
	}

	return models.ChartSeries{
		Income: []models.GroupedBarPoint{
			point("Median Household Income", a.MedianIncome, b.MedianIncome, reference.MedianHouseholdIncome),
		},
		Housing: []models.GroupedBarPoint{
			point("Homeownership Rate (%)", a.HomeownershipRate, b.HomeownershipRate, reference.HomeownershipRate),
		},
		Education: []models.GroupedBarPoint{
			point("Bachelor's Degree or Higher (%)", a.BachelorsDegreeRate, b.BachelorsDegreeRate, reference.BachelorsDegreeRate),
		},
		Employment: []models.GroupedBarPoint{
			point("Unemployment Rate (%)", a.UnemploymentRate, b.UnemploymentRate, reference.UnemploymentRate),
			point("Poverty Rate (%)", a.PovertyRate, b.PovertyRate, reference.PovertyRate),
		},
	}
}

// ComparisonChart is the headline chart combining income, homeownership and
// degree attainment. Empty unless both districts are present.
func (t *Transformer) ComparisonChart(districts []models.DistrictComparison) []models.GroupedBarPoint {
	a, b, ok := t.pair(districts)
	if !ok {
		return []models.GroupedBarPoint{}
	}
	return []models.GroupedBarPoint{
		point("Median Income ($)", a.MedianIncome, b.MedianIncome, reference.MedianHouseholdIncome),
		point("Homeownership (%)", a.HomeownershipRate, b.HomeownershipRate, reference.HomeownershipRate),
		point("Bachelor's+ (%)", a.BachelorsDegreeRate, b.BachelorsDegreeRate, reference.BachelorsDegreeRate),
	}
}

func (t *Transformer) pair(districts []models.DistrictComparison) (a, b models.DistrictComparison, ok bool) {
	var foundA, foundB bool
	for _, d := range districts {
		switch d.District {
		case t.Districts.A.Number:
			if !foundA {
				a, foundA = d, true
			}
		case t.Districts.B.Number:
			if !foundB {
				b, foundB = d, true
			}
		}
	}
	return a, b, foundA && foundB
}

func point(category string, a, b, ref float64) models.GroupedBarPoint {
	return models.GroupedBarPoint{Category: category, ValueA: a, ValueB: b, Reference: &ref}
}
