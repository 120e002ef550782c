// Package comparison builds per-field comparisons between the two districts
// from a survey extract and a dictionary slice.
package comparison

import (
	"github.com/stwalsh4118/wardlens/internal/dictionary"
	"github.com/stwalsh4118/wardlens/internal/matcher"
	"github.com/stwalsh4118/wardlens/internal/models"
	"github.com/stwalsh4118/wardlens/internal/rates"
)

// Build emits one comparison per field, in field order. Fields with no value
// for either district are omitted; a missing side is nil. Gap is set only
// when both sides are present, and GapPercent only when the B side is
// nonzero.
func Build(records []models.RawRecord, fields []dictionary.Field, districts models.DistrictPair) []models.MetricComparison {
	recA := matcher.MatchDistrict(records, districts.A.Number)
	recB := matcher.MatchDistrict(records, districts.B.Number)

	out := make([]models.MetricComparison, 0, len(fields))
	for _, f := range fields {
		a := value(recA, f.Code)
		b := value(recB, f.Code)
		if a == nil && b == nil {
			continue
		}

		m := models.MetricComparison{
			FieldCode:   f.Code,
			Label:       f.Label,
			Description: f.Description,
			Format:      f.Format,
			Category:    f.Category,
			ValueA:      a,
			ValueB:      b,
		}
		if a != nil && b != nil {
			gap := rates.Gap(*a, *b)
			m.Gap = &gap
			m.GapPercent = rates.GapPercent(gap, *b)
		}
		out = append(out, m)
	}
	return out
}

func value(r models.RawRecord, code string) *float64 {
	if r == nil {
		return nil
	}
	v, ok := r.Number(code)
	if !ok {
		return nil
	}
	return &v
}

func categoryOf(m models.MetricComparison) string {
	if m.Category == "" {
		return dictionary.UncategorizedLabel
	}
	return m.Category
}

// GroupByCategory partitions metrics by category. Uncategorized metrics go
// under "Other". Order within each group follows the input.
func GroupByCategory(metrics []models.MetricComparison) map[string][]models.MetricComparison {
	groups := make(map[string][]models.MetricComparison)
	for _, m := range metrics {
		c := categoryOf(m)
		groups[c] = append(groups[c], m)
	}
	return groups
}

// Categories returns the group names of metrics in first-seen order,
// including "Other" when uncategorized metrics exist.
func Categories(metrics []models.MetricComparison) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range metrics {
		c := categoryOf(m)
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// Group is one category and its metrics.
type Group struct {
	Category string                    `json:"category"`
	Metrics  []models.MetricComparison `json:"metrics"`
}

// Ordered returns the category groups in first-seen order.
func Ordered(metrics []models.MetricComparison) []Group {
	groups := GroupByCategory(metrics)
	cats := Categories(metrics)
	out := make([]Group, 0, len(cats))
	for _, c := range cats {
		out = append(out, Group{Category: c, Metrics: groups[c]})
	}
	return out
}

// Filter keeps the metrics of one category. An empty category keeps all.
func Filter(metrics []models.MetricComparison, category string) []models.MetricComparison {
	if category == "" {
		return metrics
	}
	out := make([]models.MetricComparison, 0)
	for _, m := range metrics {
		if categoryOf(m) == category {
			out = append(out, m)
		}
	}
	return out
}
