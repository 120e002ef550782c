package incident

import (
	"strings"

	"github.com/stwalsh4118/wardlens/internal/models"
)

// Shift codes in presentation order.
const (
	ShiftDay      = "DAY"
	ShiftEvening  = "EVENING"
	ShiftMidnight = "MIDNIGHT"
)

// Shifts is the fixed presentation order of the shift buckets.
var Shifts = []string{ShiftDay, ShiftEvening, ShiftMidnight}

var shiftLabels = map[string]string{
	ShiftDay:      "Day (7am-3pm)",
	ShiftEvening:  "Evening (3pm-11pm)",
	ShiftMidnight: "Midnight (11pm-7am)",
}

var methodLabels = map[string]string{
	"GUN":    "Gun",
	"KNIFE":  "Knife",
	"OTHERS": "Other",
}

var offenseLabels = map[string]string{
	"THEFT/OTHER":                "Theft",
	"THEFT F/AUTO":               "Theft from Auto",
	"MOTOR VEHICLE THEFT":        "Motor Vehicle Theft",
	"ASSAULT W/DANGEROUS WEAPON": "Assault w/ Weapon",
	"SEX ABUSE":                  "Sex Abuse",
	"HOMICIDE":                   "Homicide",
	"ROBBERY":                    "Robbery",
	"BURGLARY":                   "Burglary",
	"ARSON":                      "Arson",
}

// ShiftLabel returns the display label of a shift code, or the code itself.
func ShiftLabel(code string) string {
	if l, ok := shiftLabels[code]; ok {
		return l
	}
	return code
}

// MethodLabel returns the display label of a method code, or the code itself.
func MethodLabel(code string) string {
	if l, ok := methodLabels[code]; ok {
		return l
	}
	return code
}

// OffenseLabel returns the display name of an offense, or the offense itself.
func OffenseLabel(offense string) string {
	if l, ok := offenseLabels[offense]; ok {
		return l
	}
	return offense
}

// Category groups offenses for summary displays.
type Category string

const (
	CategoryViolent  Category = "violent"
	CategoryProperty Category = "property"
	CategoryOther    Category = "other"
)

var offenseCategories = map[string]Category{
	"HOMICIDE":                   CategoryViolent,
	"ASSAULT W/DANGEROUS WEAPON": CategoryViolent,
	"ROBBERY":                    CategoryViolent,
	"SEX ABUSE":                  CategoryViolent,
	"THEFT/OTHER":                CategoryProperty,
	"THEFT F/AUTO":               CategoryProperty,
	"MOTOR VEHICLE THEFT":        CategoryProperty,
	"BURGLARY":                   CategoryProperty,
	"ARSON":                      CategoryProperty,
}

// OffenseCategory classifies an offense as violent, property or other.
func OffenseCategory(offense string) Category {
	if c, ok := offenseCategories[strings.ToUpper(strings.TrimSpace(offense))]; ok {
		return c
	}
	return CategoryOther
}

// Categories lists every offense category in presentation order.
var Categories = []Category{CategoryViolent, CategoryProperty, CategoryOther}

// ByCategory folds offense buckets into one bucket per category. Every
// category is present, in presentation order.
func ByCategory(byOffense []models.IncidentBucket) []models.IncidentBucket {
	totals := make(map[Category]*models.IncidentBucket, len(Categories))
	out := make([]models.IncidentBucket, len(Categories))
	for i, c := range Categories {
		out[i].Key = string(c)
		totals[c] = &out[i]
	}

	for _, b := range byOffense {
		t := totals[OffenseCategory(b.Key)]
		t.CountA += b.CountA
		t.CountB += b.CountB
		t.Total += b.Total
	}
	return out
}
