package domain

type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendWorsening TrendDirection = "worsening"
	TrendStable    TrendDirection = "stable"
	TrendUnknown   TrendDirection = "unknown"
)

// TrendPoint is one numeric observation on a trend's time axis.
type TrendPoint struct {
	Date   string            `json:"date"`
	Value  float64           `json:"value"`
	Status ObservationStatus `json:"status"`
}

// LabTrend is a derived, recomputed-on-demand view over all documents'
// observations for one test identity. It is never persisted; it is a pure
// function of the current document set.
type LabTrend struct {
	TestName       string          `json:"test_name"`
	Category       TestCategory    `json:"category"`
	Unit           string          `json:"unit,omitempty"`
	DataPoints     []TrendPoint    `json:"data_points"`
	CurrentStatus  TrendDirection  `json:"current_status"`
	ReferenceRange *ReferenceRange `json:"reference_range,omitempty"`

	// MixedUnits is set when the underlying group reports more than one
	// distinct non-empty unit. No conversion is attempted; the series keeps
	// the earliest document's unit label.
	MixedUnits bool `json:"mixed_units,omitempty"`
}
