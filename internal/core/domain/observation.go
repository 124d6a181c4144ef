package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

type ObservationStatus string

const (
	ObsNormal   ObservationStatus = "normal"
	ObsLow      ObservationStatus = "low"
	ObsHigh     ObservationStatus = "high"
	ObsCritical ObservationStatus = "critical"
	ObsUnknown  ObservationStatus = "unknown"
)

// ParseObservationStatus collapses anything outside the known set to "unknown".
func ParseObservationStatus(raw string) ObservationStatus {
	switch ObservationStatus(raw) {
	case ObsNormal, ObsLow, ObsHigh, ObsCritical, ObsUnknown:
		return ObservationStatus(raw)
	default:
		return ObsUnknown
	}
}

type TestCategory string

const (
	CategoryMetabolic    TestCategory = "metabolic"
	CategoryLipid        TestCategory = "lipid"
	CategoryCBC          TestCategory = "cbc"
	CategoryThyroid      TestCategory = "thyroid"
	CategoryLiver        TestCategory = "liver"
	CategoryKidney       TestCategory = "kidney"
	CategoryCardiac      TestCategory = "cardiac"
	CategoryInflammatory TestCategory = "inflammatory"
	CategoryVitamin      TestCategory = "vitamin"
	CategoryHormone      TestCategory = "hormone"
	CategoryOther        TestCategory = "other"
)

// ParseTestCategory collapses anything outside the known set to "other".
func ParseTestCategory(raw string) TestCategory {
	switch TestCategory(raw) {
	case CategoryMetabolic, CategoryLipid, CategoryCBC, CategoryThyroid,
		CategoryLiver, CategoryKidney, CategoryCardiac, CategoryInflammatory,
		CategoryVitamin, CategoryHormone, CategoryOther:
		return TestCategory(raw)
	default:
		return CategoryOther
	}
}

// ObservationValue holds either a finite numeric measurement or an opaque
// string (qualitative results such as "trace" or "positive"). It marshals to
// a JSON number or string accordingly.
type ObservationValue struct {
	number  float64
	text    string
	numeric bool
}

func NumericValue(v float64) ObservationValue {
	return ObservationValue{number: v, numeric: true}
}

func TextValue(s string) ObservationValue {
	return ObservationValue{text: s}
}

// ParseValue attempts a numeric interpretation of s and falls back to the
// verbatim string. Non-finite parses (NaN, Inf) are treated as text.
func ParseValue(s string) ObservationValue {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return TextValue(s)
	}
	return NumericValue(n)
}

func (v ObservationValue) IsNumeric() bool { return v.numeric }

// Float returns the numeric measurement; valid only when IsNumeric.
func (v ObservationValue) Float() float64 { return v.number }

func (v ObservationValue) Text() string { return v.text }

func (v ObservationValue) String() string {
	if v.numeric {
		return strconv.FormatFloat(v.number, 'f', -1, 64)
	}
	return v.text
}

func (v ObservationValue) MarshalJSON() ([]byte, error) {
	if v.numeric {
		return json.Marshal(v.number)
	}
	return json.Marshal(v.text)
}

func (v *ObservationValue) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*v = NumericValue(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*v = TextValue(s)
	return nil
}

// ReferenceRange bounds are optional: a nil bound means "no bound", never
// "bound of zero". Text is the as-displayed range for humans.
type ReferenceRange struct {
	Low  *float64 `json:"low,omitempty"`
	High *float64 `json:"high,omitempty"`
	Text string   `json:"text,omitempty"`
}

// LabObservation is one measured test result tied to one source document.
// It is created once during normalization and immutable thereafter.
type LabObservation struct {
	ID             string            `json:"id"`
	TestName       string            `json:"test_name"`
	Value          ObservationValue  `json:"value"`
	Unit           string            `json:"unit,omitempty"`
	ReferenceRange *ReferenceRange   `json:"reference_range,omitempty"`
	Status         ObservationStatus `json:"status"`
	Category       TestCategory      `json:"category"`
}

// CanonicalKey is the grouping key for trend aggregation: the lower-cased
// test name.
func (o LabObservation) CanonicalKey() string {
	return strings.ToLower(o.TestName)
}
