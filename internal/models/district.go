package models

import (
	"fmt"
	"strconv"
	"strings"
)

// District is one of the two compared municipal districts.
type District struct {
	Number int    `json:"number"`
	Label  string `json:"label"`
}

// Name renders the district for display, e.g. "Ward 7".
func (d District) Name() string {
	label := d.Label
	if label == "" {
		label = "District"
	}
	return fmt.Sprintf("%s %d", label, d.Number)
}

// Side identifies which of the two compared districts a value belongs to.
type Side int

const (
	SideNone Side = iota
	SideA
	SideB
)

// DistrictPair holds the two districts every comparison is made between.
type DistrictPair struct {
	A District `json:"a"`
	B District `json:"b"`
}

// NewDistrictPair builds a pair sharing one label.
func NewDistrictPair(a, b int, label string) DistrictPair {
	return DistrictPair{
		A: District{Number: a, Label: label},
		B: District{Number: b, Label: label},
	}
}

// Numbers returns the district numbers in A, B order.
func (p DistrictPair) Numbers() []int {
	return []int{p.A.Number, p.B.Number}
}

// Get returns the district for a number, if it is part of the pair.
func (p DistrictPair) Get(number int) (District, bool) {
	switch number {
	case p.A.Number:
		return p.A, true
	case p.B.Number:
		return p.B, true
	}
	return District{}, false
}

// SideOf maps a ward code as it appears in incident feeds ("7", " 8")
// to a side of the pair. Codes are compared exactly after trimming.
func (p DistrictPair) SideOf(code string) Side {
	code = strings.TrimSpace(code)
	switch code {
	case strconv.Itoa(p.A.Number):
		return SideA
	case strconv.Itoa(p.B.Number):
		return SideB
	}
	return SideNone
}
