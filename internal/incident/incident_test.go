package incident

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stwalsh4118/wardlens/internal/models"
)

func ms(year int, month time.Month, day int) int64 {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC).UnixMilli()
}

func inc(ward string, ts int64, offense, shift, method string) models.Incident {
	return models.Incident{
		Ward:            models.Code(ward),
		ReportTimestamp: ts,
		Offense:         offense,
		Shift:           shift,
		Method:          method,
	}
}

func newTestAnalyzer() *Analyzer {
	return NewAnalyzer(models.NewDistrictPair(7, 8, "Ward"), time.UTC)
}

func sampleIncidents() []models.Incident {
	return []models.Incident{
		inc("7", ms(2023, 3, 1), "THEFT/OTHER", "DAY", "OTHERS"),
		inc("7", ms(2023, 5, 1), "ROBBERY", "EVENING", "GUN"),
		inc("8", ms(2023, 7, 1), "THEFT/OTHER", "MIDNIGHT", "OTHERS"),
		inc("8", ms(2024, 1, 10), "HOMICIDE", "MIDNIGHT", "GUN"),
		inc("8", ms(2024, 2, 10), "THEFT/OTHER", "DAY", "OTHERS"),
		inc("7", ms(2024, 3, 10), "THEFT/OTHER", "DAY", "KNIFE"),
		inc("8", ms(2024, 4, 10), "ARSON", "DAY", "OTHERS"),
		inc("3", ms(2024, 4, 10), "ARSON", "DAY", "OTHERS"),
	}
}

func TestByYear(t *testing.T) {
	got := newTestAnalyzer().ByYear(sampleIncidents())

	want := []models.YearBucket{
		{Year: 2023, CountA: 2, CountB: 1, Total: 3},
		{Year: 2024, CountA: 1, CountB: 3, Total: 4},
	}
	assert.Empty(t, cmp.Diff(want, got))
}

func TestYearUsesLocation(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 2024-01-01 03:00 UTC is still 2023 in New York.
	i := models.Incident{Ward: "7", ReportTimestamp: time.Date(2024, 1, 1, 3, 0, 0, 0, time.UTC).UnixMilli()}

	assert.Equal(t, 2024, NewAnalyzer(models.NewDistrictPair(7, 8, "Ward"), nil).Year(i))
	assert.Equal(t, 2023, NewAnalyzer(models.NewDistrictPair(7, 8, "Ward"), ny).Year(i))
}

func TestByOffense(t *testing.T) {
	got := newTestAnalyzer().ByOffense(sampleIncidents())

	require.Len(t, got, 4)
	assert.Equal(t, models.IncidentBucket{Key: "THEFT/OTHER", CountA: 2, CountB: 2, Total: 4}, got[0])
	// ties of one ordered by key
	assert.Equal(t, "ARSON", got[1].Key)
	assert.Equal(t, 1, got[1].Total)
	assert.Equal(t, "HOMICIDE", got[2].Key)
	assert.Equal(t, "ROBBERY", got[3].Key)
}

func TestByShiftFixedOrder(t *testing.T) {
	a := newTestAnalyzer()

	empty := a.ByShift(nil)
	require.Len(t, empty, 3)
	assert.Equal(t, ShiftDay, empty[0].Key)
	assert.Equal(t, ShiftEvening, empty[1].Key)
	assert.Equal(t, ShiftMidnight, empty[2].Key)
	assert.Equal(t, 0, empty[1].Total)

	incidents := append(sampleIncidents(),
		inc("7", ms(2024, 6, 1), "ROBBERY", "UNKNOWN", "GUN"),
		inc("8", ms(2024, 6, 1), "ROBBERY", "", "GUN"),
	)
	got := a.ByShift(incidents)
	require.Len(t, got, 5)
	assert.Equal(t, models.IncidentBucket{Key: ShiftDay, CountA: 2, CountB: 2, Total: 4}, got[0])
	assert.Equal(t, models.IncidentBucket{Key: ShiftEvening, CountA: 1, Total: 1}, got[1])
	assert.Equal(t, models.IncidentBucket{Key: ShiftMidnight, CountB: 2, Total: 2}, got[2])
	assert.Equal(t, "", got[3].Key)
	assert.Equal(t, "UNKNOWN", got[4].Key)
}

func TestByMethod(t *testing.T) {
	got := newTestAnalyzer().ByMethod(sampleIncidents())

	require.Len(t, got, 3)
	assert.Equal(t, "OTHERS", got[0].Key)
	assert.Equal(t, 4, got[0].Total)
	assert.Equal(t, "GUN", got[1].Key)
	assert.Equal(t, "KNIFE", got[2].Key)
}

func TestAggregationsOrderIndependent(t *testing.T) {
	a := newTestAnalyzer()
	incidents := sampleIncidents()
	reversed := make([]models.Incident, len(incidents))
	for i := range incidents {
		reversed[len(incidents)-1-i] = incidents[i]
	}

	assert.Empty(t, cmp.Diff(a.Stats(incidents), a.Stats(reversed)))
	assert.Empty(t, cmp.Diff(a.Stats(incidents), a.Stats(incidents)))
}

func TestTrend(t *testing.T) {
	tests := []struct {
		name  string
		years []models.YearBucket
		want  models.Trend
	}{
		{
			name:  "empty",
			years: nil,
			want:  models.Trend{DirectionA: models.DirectionStable, DirectionB: models.DirectionStable},
		},
		{
			name:  "single year",
			years: []models.YearBucket{{Year: 2024, CountA: 5, CountB: 5}},
			want:  models.Trend{DirectionA: models.DirectionStable, DirectionB: models.DirectionStable},
		},
		{
			name: "sparse years compare 2024 with 2021",
			years: []models.YearBucket{
				{Year: 2024, CountA: 150, CountB: 80},
				{Year: 2021, CountA: 100, CountB: 100},
			},
			want: models.Trend{
				CurrentYear: 2024, PreviousYear: 2021,
				ChangeA: 50, ChangeB: -20,
				PercentA: 50, PercentB: -20,
				DirectionA: models.DirectionUp, DirectionB: models.DirectionDown,
			},
		},
		{
			name: "only the two latest years count",
			years: []models.YearBucket{
				{Year: 2020, CountA: 1, CountB: 1},
				{Year: 2022, CountA: 10, CountB: 0},
				{Year: 2023, CountA: 10, CountB: 4},
			},
			want: models.Trend{
				CurrentYear: 2023, PreviousYear: 2022,
				ChangeA: 0, ChangeB: 4,
				PercentA: 0, PercentB: 0,
				DirectionA: models.DirectionStable, DirectionB: models.DirectionUp,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Trend(tt.years))
		})
	}
}

func TestTopOffenses(t *testing.T) {
	buckets := []models.IncidentBucket{{Key: "A"}, {Key: "B"}, {Key: "C"}}

	assert.Len(t, TopOffenses(buckets, 2), 2)
	assert.Len(t, TopOffenses(buckets, DefaultTopOffenses), 3)
	assert.Empty(t, TopOffenses(buckets, 0))
	assert.Empty(t, TopOffenses(buckets, -1))
	assert.Empty(t, TopOffenses(nil, 8))
}

func TestStats(t *testing.T) {
	stats := newTestAnalyzer().Stats(sampleIncidents())

	assert.Equal(t, models.IncidentTotals{CountA: 3, CountB: 4, All: 7}, stats.Totals)
	assert.Equal(t, models.YearSnapshot{Year: 2024, CountA: 1, CountB: 3}, stats.LatestYear)
	assert.Equal(t, 2024, stats.Trend.CurrentYear)
	assert.Equal(t, -1, stats.Trend.ChangeA)
	assert.Equal(t, 2, stats.Trend.ChangeB)
	assert.InDelta(t, 200.0, stats.Trend.PercentB, 1e-9)
}

func TestStatsEmpty(t *testing.T) {
	stats := newTestAnalyzer().Stats(nil)

	assert.Equal(t, models.YearSnapshot{}, stats.LatestYear)
	assert.Equal(t, models.IncidentTotals{}, stats.Totals)
	assert.Empty(t, stats.TotalByYear)
	assert.Len(t, stats.ByShift, 3)
}

func TestFilterByYearAndSparkline(t *testing.T) {
	a := newTestAnalyzer()
	incidents := sampleIncidents()

	assert.Len(t, a.FilterByYear(incidents, 2023), 3)
	assert.Len(t, a.FilterByYear(incidents, 2024), 5)
	assert.Empty(t, a.FilterByYear(incidents, 2019))

	years := a.ByYear(incidents)
	assert.Equal(t, []int{2, 1}, Sparkline(years, models.SideA))
	assert.Equal(t, []int{1, 3}, Sparkline(years, models.SideB))
	assert.Equal(t, []int{3, 4}, Sparkline(years, models.SideNone))
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "Day (7am-3pm)", ShiftLabel(ShiftDay))
	assert.Equal(t, "UNKNOWN", ShiftLabel("UNKNOWN"))
	assert.Equal(t, "Other", MethodLabel("OTHERS"))
	assert.Equal(t, "Theft from Auto", OffenseLabel("THEFT F/AUTO"))
	assert.Equal(t, "LOITERING", OffenseLabel("LOITERING"))

	assert.Equal(t, CategoryViolent, OffenseCategory("HOMICIDE"))
	assert.Equal(t, CategoryProperty, OffenseCategory("theft f/auto"))
	assert.Equal(t, CategoryOther, OffenseCategory("LOITERING"))
}

func TestChartRows(t *testing.T) {
	a := newTestAnalyzer()
	rows := ChartRows(a.ByShift(sampleIncidents()), ShiftLabel)

	require.Len(t, rows, 3)
	assert.Equal(t, "Day (7am-3pm)", rows[0].Category)
	assert.Equal(t, 2.0, rows[0].ValueA)
	assert.Nil(t, rows[0].Reference)
}

func TestByCategory(t *testing.T) {
	a := newTestAnalyzer()
	got := ByCategory(a.ByOffense(sampleIncidents()))

	want := []models.IncidentBucket{
		{Key: "violent", CountA: 1, CountB: 1, Total: 2},
		{Key: "property", CountA: 2, CountB: 3, Total: 5},
		{Key: "other", CountA: 0, CountB: 0, Total: 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ByCategory mismatch (-want +got):\n%s", diff)
	}

	assert.Len(t, ByCategory(nil), len(Categories))
}
