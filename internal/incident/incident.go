// Package incident aggregates crime incident records for the two compared
// districts: yearly counts, offense/shift/method breakdowns and trends.
package incident

import (
	"sort"
	"strings"
	"time"

	"github.com/stwalsh4118/wardlens/internal/models"
)

// DefaultTopOffenses is the usual size of the top offense list.
const DefaultTopOffenses = 8

// Analyzer aggregates incidents. Incidents in neither district are ignored.
// Years are computed in Location (UTC when nil).
type Analyzer struct {
	Districts models.DistrictPair
	Location  *time.Location
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(districts models.DistrictPair, loc *time.Location) *Analyzer {
	return &Analyzer{Districts: districts, Location: loc}
}

// Year returns the calendar year an incident was reported in.
func (a *Analyzer) Year(inc models.Incident) int {
	loc := a.Location
	if loc == nil {
		loc = time.UTC
	}
	return time.UnixMilli(inc.ReportTimestamp).In(loc).Year()
}

type counts struct {
	a, b int
}

func (c *counts) add(side models.Side) {
	switch side {
	case models.SideA:
		c.a++
	case models.SideB:
		c.b++
	}
}

func (a *Analyzer) side(inc models.Incident) models.Side {
	return a.Districts.SideOf(inc.Ward.String())
}

// groupBy counts incidents per key for incidents in either district.
func (a *Analyzer) groupBy(incidents []models.Incident, key func(models.Incident) string) map[string]*counts {
	groups := make(map[string]*counts)
	for _, inc := range incidents {
		side := a.side(inc)
		if side == models.SideNone {
			continue
		}
		k := key(inc)
		c, ok := groups[k]
		if !ok {
			c = &counts{}
			groups[k] = c
		}
		c.add(side)
	}
	return groups
}

func bucket(key string, c *counts) models.IncidentBucket {
	return models.IncidentBucket{Key: key, CountA: c.a, CountB: c.b, Total: c.a + c.b}
}

func sortByTotal(buckets []models.IncidentBucket) {
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Total != buckets[j].Total {
			return buckets[i].Total > buckets[j].Total
		}
		return buckets[i].Key < buckets[j].Key
	})
}

func normalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ByYear counts incidents per year, ascending by year.
func (a *Analyzer) ByYear(incidents []models.Incident) []models.YearBucket {
	years := make(map[int]*counts)
	for _, inc := range incidents {
		side := a.side(inc)
		if side == models.SideNone {
			continue
		}
		y := a.Year(inc)
		c, ok := years[y]
		if !ok {
			c = &counts{}
			years[y] = c
		}
		c.add(side)
	}

	out := make([]models.YearBucket, 0, len(years))
	for y, c := range years {
		out = append(out, models.YearBucket{Year: y, CountA: c.a, CountB: c.b, Total: c.a + c.b})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// ByOffense counts incidents per raw offense string, descending by total.
func (a *Analyzer) ByOffense(incidents []models.Incident) []models.IncidentBucket {
	groups := a.groupBy(incidents, func(inc models.Incident) string { return inc.Offense })
	out := make([]models.IncidentBucket, 0, len(groups))
	for k, c := range groups {
		out = append(out, bucket(k, c))
	}
	sortByTotal(out)
	return out
}

// ByShift counts incidents per shift. DAY, EVENING and MIDNIGHT are always
// present in that order; other shift values follow, sorted by key.
func (a *Analyzer) ByShift(incidents []models.Incident) []models.IncidentBucket {
	groups := a.groupBy(incidents, func(inc models.Incident) string { return normalizeCode(inc.Shift) })

	out := make([]models.IncidentBucket, 0, len(Shifts)+len(groups))
	for _, s := range Shifts {
		c, ok := groups[s]
		if !ok {
			c = &counts{}
		}
		out = append(out, bucket(s, c))
		delete(groups, s)
	}

	extras := make([]string, 0, len(groups))
	for k := range groups {
		extras = append(extras, k)
	}
	sort.Strings(extras)
	for _, k := range extras {
		out = append(out, bucket(k, groups[k]))
	}
	return out
}

// ByMethod counts incidents per method, descending by total.
func (a *Analyzer) ByMethod(incidents []models.Incident) []models.IncidentBucket {
	groups := a.groupBy(incidents, func(inc models.Incident) string { return normalizeCode(inc.Method) })
	out := make([]models.IncidentBucket, 0, len(groups))
	for k, c := range groups {
		out = append(out, bucket(k, c))
	}
	sortByTotal(out)
	return out
}

// Trend compares the two most recent years present. Years need not be
// adjacent. With fewer than two years the trend is zero and stable.
func Trend(years []models.YearBucket) models.Trend {
	if len(years) < 2 {
		return models.Trend{DirectionA: models.DirectionStable, DirectionB: models.DirectionStable}
	}

	sorted := make([]models.YearBucket, len(years))
	copy(sorted, years)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Year > sorted[j].Year })
	current, previous := sorted[0], sorted[1]

	changeA := current.CountA - previous.CountA
	changeB := current.CountB - previous.CountB
	return models.Trend{
		CurrentYear:  current.Year,
		PreviousYear: previous.Year,
		ChangeA:      changeA,
		ChangeB:      changeB,
		PercentA:     percentChange(changeA, previous.CountA),
		PercentB:     percentChange(changeB, previous.CountB),
		DirectionA:   direction(changeA),
		DirectionB:   direction(changeB),
	}
}

// percentChange is 0 when there is nothing to compare against.
func percentChange(change, previous int) float64 {
	if previous == 0 {
		return 0
	}
	return float64(change) / float64(previous) * 100
}

func direction(change int) models.Direction {
	switch {
	case change > 0:
		return models.DirectionUp
	case change < 0:
		return models.DirectionDown
	default:
		return models.DirectionStable
	}
}

// TopOffenses returns the first n buckets of an already sorted list.
func TopOffenses(byOffense []models.IncidentBucket, n int) []models.IncidentBucket {
	if n < 0 {
		n = 0
	}
	if n > len(byOffense) {
		n = len(byOffense)
	}
	return byOffense[:n]
}

// FilterByYear keeps incidents reported in year.
func (a *Analyzer) FilterByYear(incidents []models.Incident, year int) []models.Incident {
	out := make([]models.Incident, 0)
	for _, inc := range incidents {
		if a.Year(inc) == year {
			out = append(out, inc)
		}
	}
	return out
}

// Sparkline returns one district's yearly counts in year order.
func Sparkline(years []models.YearBucket, side models.Side) []int {
	out := make([]int, 0, len(years))
	for _, y := range years {
		switch side {
		case models.SideA:
			out = append(out, y.CountA)
		case models.SideB:
			out = append(out, y.CountB)
		default:
			out = append(out, y.Total)
		}
	}
	return out
}

// Stats computes the full statistics bundle.
func (a *Analyzer) Stats(incidents []models.Incident) models.IncidentStats {
	byYear := a.ByYear(incidents)

	var totals models.IncidentTotals
	for _, inc := range incidents {
		switch a.side(inc) {
		case models.SideA:
			totals.CountA++
		case models.SideB:
			totals.CountB++
		}
	}
	totals.All = totals.CountA + totals.CountB

	var latest models.YearSnapshot
	if n := len(byYear); n > 0 {
		last := byYear[n-1]
		latest = models.YearSnapshot{Year: last.Year, CountA: last.CountA, CountB: last.CountB}
	}

	return models.IncidentStats{
		TotalByYear: byYear,
		ByOffense:   a.ByOffense(incidents),
		ByShift:     a.ByShift(incidents),
		ByMethod:    a.ByMethod(incidents),
		Trend:       Trend(byYear),
		Totals:      totals,
		LatestYear:  latest,
	}
}

// ChartRows converts buckets into grouped bar points with display labels.
func ChartRows(buckets []models.IncidentBucket, label func(string) string) []models.GroupedBarPoint {
	out := make([]models.GroupedBarPoint, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, models.GroupedBarPoint{
			Category: label(b.Key),
			ValueA:   float64(b.CountA),
			ValueB:   float64(b.CountB),
		})
	}
	return out
}
