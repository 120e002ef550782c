// Package reference holds citywide benchmark values used as chart baselines.
package reference

// Citywide averages for the District of Columbia, 2023 ACS 5-year estimates.
const (
	MedianHouseholdIncome = 106287.0
	UnemploymentRate      = 5.5
	PovertyRate           = 14.0
	HomeownershipRate     = 41.1
	BachelorsDegreeRate   = 63.0
	HighSchoolGradRate    = 91.0
	TotalPopulation       = 672000.0
)

// Label describes the benchmark in chart legends.
const Label = "DC Average"
