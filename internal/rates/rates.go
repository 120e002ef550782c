// Package rates implements the percentage and gap arithmetic shared by the
// transformers. A zero denominator yields 0 from PercentOf and nil from
// GapPercent; callers rely on the difference.
package rates

// PercentOf returns num/den*100, or 0 when den is 0.
func PercentOf(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den * 100
}

// Gap returns a-b.
func Gap(a, b float64) float64 {
	return a - b
}

// GapPercent returns gap/base*100, or nil when base is 0.
func GapPercent(gap, base float64) *float64 {
	if base == 0 {
		return nil
	}
	v := gap / base * 100
	return &v
}

// Ratio returns num/den, or nil when den is 0.
func Ratio(num, den float64) *float64 {
	if den == 0 {
		return nil
	}
	v := num / den
	return &v
}
