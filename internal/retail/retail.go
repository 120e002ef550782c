// Package retail aggregates SNAP-authorized retailer listings into
// food-access statistics.
package retail

import (
	"sort"
	"strings"
	"time"

	"github.com/stwalsh4118/wardlens/internal/models"
	"github.com/stwalsh4118/wardlens/internal/rates"
)

// DefaultPostalCodes are the postal codes covering Wards 7 and 8.
var DefaultPostalCodes = []string{"20019", "20020", "20032"}

type rule struct {
	category models.StoreCategory
	patterns []string
}

// rules are evaluated in order; the first rule with a pattern contained in
// the lowercased store type wins.
var rules = []rule{
	{models.CategorySupermarket, []string{"supermarket", "super store"}},
	{models.CategoryGrocery, []string{"large grocery", "medium grocery", "small grocery"}},
	{models.CategoryConvenience, []string{"convenience"}},
	{models.CategoryFarmersMarket, []string{"farmer"}},
}

// NormalizeStoreType maps a raw store type to a category. Unrecognized
// types are Other.
func NormalizeStoreType(raw string) models.StoreCategory {
	lower := strings.ToLower(raw)
	for _, r := range rules {
		for _, p := range r.patterns {
			if strings.Contains(lower, p) {
				return r.category
			}
		}
	}
	return models.CategoryOther
}

var endDateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseEndDate parses a retailer end date. Date-only values are read in the
// location of ref.
func ParseEndDate(s string, ref time.Time) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range endDateLayouts {
		if t, err := time.ParseInLocation(layout, s, ref.Location()); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// IsActive reports whether a retailer is still authorized at now: it has no
// end date, or its end date is strictly after now. An unparseable end date
// counts as inactive.
func IsActive(r models.Retailer, now time.Time) bool {
	if strings.TrimSpace(r.EndDate) == "" {
		return true
	}
	end, ok := ParseEndDate(r.EndDate, now)
	if !ok {
		return false
	}
	return end.After(now)
}

// FilterActive returns the retailers active at now, preserving order.
func FilterActive(retailers []models.Retailer, now time.Time) []models.Retailer {
	out := make([]models.Retailer, 0, len(retailers))
	for _, r := range retailers {
		if IsActive(r, now) {
			out = append(out, r)
		}
	}
	return out
}

// ByPostalCode counts retailers per postal code and category, keeps only
// codes in allow (all codes when allow is empty), and sorts by total
// descending then postal code.
func ByPostalCode(retailers []models.Retailer, allow []string) []models.PostalCodeSummary {
	allowed := make(map[string]bool, len(allow))
	for _, code := range allow {
		allowed[strings.TrimSpace(code)] = true
	}

	groups := make(map[string]*models.PostalCodeSummary)
	for _, r := range retailers {
		code := r.PostalCode.String()
		if len(allowed) > 0 && !allowed[code] {
			continue
		}
		s, ok := groups[code]
		if !ok {
			s = &models.PostalCodeSummary{PostalCode: code}
			groups[code] = s
		}
		s.Total++
		switch NormalizeStoreType(r.StoreType) {
		case models.CategorySupermarket:
			s.Supermarkets++
		case models.CategoryGrocery:
			s.Grocery++
		case models.CategoryConvenience:
			s.Convenience++
		case models.CategoryFarmersMarket:
			s.FarmersMarket++
		default:
			s.Other++
		}
	}

	out := make([]models.PostalCodeSummary, 0, len(groups))
	for _, s := range groups {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].PostalCode < out[j].PostalCode
	})
	return out
}

// Distribution returns the count and share of each category present,
// sorted by count descending then category name.
func Distribution(retailers []models.Retailer) []models.CategoryShare {
	counts := make(map[models.StoreCategory]int)
	for _, r := range retailers {
		counts[NormalizeStoreType(r.StoreType)]++
	}

	total := float64(len(retailers))
	out := make([]models.CategoryShare, 0, len(counts))
	for category, n := range counts {
		out = append(out, models.CategoryShare{
			Category:   category,
			Count:      n,
			Percentage: rates.PercentOf(float64(n), total),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// Summarize computes the headline food-access figures.
func Summarize(retailers []models.Retailer) models.RetailerSummary {
	summary := models.RetailerSummary{TotalRetailers: len(retailers)}
	for _, share := range Distribution(retailers) {
		switch share.Category {
		case models.CategorySupermarket:
			summary.SupermarketCount = share.Count
			summary.SupermarketPercent = share.Percentage
		case models.CategoryConvenience:
			summary.ConvenienceCount = share.Count
			summary.ConveniencePercent = share.Percentage
		}
	}
	summary.ConveniencePerSupermarket = rates.Ratio(float64(summary.ConvenienceCount), float64(summary.SupermarketCount))
	return summary
}

// CategorySeries is one stacked layer of the postal code chart.
type CategorySeries struct {
	Category models.StoreCategory `json:"category"`
	Values   []int                `json:"values"`
}

// StackedChart is a stacked bar chart with one bar per postal code.
type StackedChart struct {
	Labels []string         `json:"labels"`
	Totals []int            `json:"totals"`
	Series []CategorySeries `json:"series"`
}

// PostalCodeChart lays out postal code summaries as a stacked bar chart,
// one series per category in presentation order.
func PostalCodeChart(summaries []models.PostalCodeSummary) StackedChart {
	chart := StackedChart{
		Labels: make([]string, len(summaries)),
		Totals: make([]int, len(summaries)),
		Series: make([]CategorySeries, len(models.StoreCategories)),
	}
	for i, c := range models.StoreCategories {
		chart.Series[i] = CategorySeries{Category: c, Values: make([]int, len(summaries))}
	}

	for i, s := range summaries {
		chart.Labels[i] = s.PostalCode
		chart.Totals[i] = s.Total
		counts := []int{s.Supermarkets, s.Grocery, s.Convenience, s.FarmersMarket, s.Other}
		for j := range chart.Series {
			chart.Series[j].Values[i] = counts[j]
		}
	}
	return chart
}
