// PlaqueMS - Carotid Plaque Proteomics Analytics and Prediction
// Copyright 2026 Nikolaos Samperis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NikolaosSamperis/plaquems

package graph

// Filter selects a cohort. Empty slices mean "no restriction"; values within
// one field are OR-ed, fields are AND-ed together.
type Filter struct {
	Sex           []string `json:"sex,omitempty"`
	AgeGroups     []string `json:"age_groups,omitempty"`
	Symptoms      []string `json:"symptoms,omitempty"`
	Histology     []string `json:"histology,omitempty"`
	Ultrasound    []string `json:"ultrasound,omitempty"`
	Calcification []string `json:"calcification,omitempty"`
	Conditions    []string `json:"clinical_conditions,omitempty"`
	Outcomes      []string `json:"clinical_outcomes,omitempty"`
	Medications   []string `json:"medications,omitempty"`
	SmokerStatus  []string `json:"smoker_status,omitempty"`
	BMIRanges     []string `json:"bmi_ranges,omitempty"`
	PackYears     []string `json:"pack_years,omitempty"`
}

// Empty reports whether the filter places no restriction at all.
func (f Filter) Empty() bool {
	return len(f.Sex) == 0 && len(f.AgeGroups) == 0 && len(f.Symptoms) == 0 &&
		len(f.Histology) == 0 && len(f.Ultrasound) == 0 && len(f.Calcification) == 0 &&
		len(f.Conditions) == 0 && len(f.Outcomes) == 0 && len(f.Medications) == 0 &&
		len(f.SmokerStatus) == 0 && len(f.BMIRanges) == 0 && len(f.PackYears) == 0
}

// Range is a half-open numeric interval [Lo, Hi). A negative Hi means
// unbounded above.
type Range struct {
	Lo float64
	Hi float64
}

// Contains reports whether v falls inside the interval.
func (r Range) Contains(v float64) bool {
	if v < r.Lo {
		return false
	}
	return r.Hi < 0 || v < r.Hi
}

// Named group labels accepted in filters. AgeGroupNames and friends also
// drive the derived entries in FilterValues.
var (
	AgeGroupNames  = []string{"under40", "40to60", "over60"}
	BMIRangeNames  = []string{"underweight", "normal", "overweight", "obese"}
	PackYearNames  = []string{"light", "moderate", "heavy"}
	ageGroupBounds = map[string]Range{
		"under40": {Lo: 0, Hi: 40},
		"40to60":  {Lo: 40, Hi: 60},
		"over60":  {Lo: 60, Hi: -1},
	}
	bmiRangeBounds = map[string]Range{
		"underweight": {Lo: 0, Hi: 18.5},
		"normal":      {Lo: 18.5, Hi: 25},
		"overweight":  {Lo: 25, Hi: 30},
		"obese":       {Lo: 30, Hi: -1},
	}
	packYearBounds = map[string]Range{
		"light":    {Lo: 0, Hi: 10},
		"moderate": {Lo: 10, Hi: 30},
		"heavy":    {Lo: 30, Hi: -1},
	}
)

// AgeGroupBounds resolves a named age group to its interval.
func AgeGroupBounds(name string) (Range, bool) {
	r, ok := ageGroupBounds[name]
	return r, ok
}

// BMIRangeBounds resolves a named BMI range to its interval.
func BMIRangeBounds(name string) (Range, bool) {
	r, ok := bmiRangeBounds[name]
	return r, ok
}

// PackYearBounds resolves a named pack-year range to its interval.
func PackYearBounds(name string) (Range, bool) {
	r, ok := packYearBounds[name]
	return r, ok
}

// AgeGroupOf derives the named group an age belongs to. Ages are always
// covered by exactly one group.
func AgeGroupOf(age float64) string {
	for _, name := range AgeGroupNames {
		if ageGroupBounds[name].Contains(age) {
			return name
		}
	}
	return ""
}
