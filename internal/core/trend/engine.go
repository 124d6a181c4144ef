// Package trend derives per-test time series and per-document alerts from
// normalized observations. Both entry points are pure: they read their inputs
// and build fresh outputs, so callers may invoke them from any concurrency
// context and must recompute whenever the document set changes.
package trend

import (
	"math"
	"sort"
	"strings"

	"github.com/mkravets/medrecords-ai/internal/core/domain"
)

// Changes within 5% of the previous value are treated as measurement noise.
const stabilityBand = 0.05

type dated struct {
	date string
	obs  domain.LabObservation
}

// Compute aggregates observations across all documents into one LabTrend per
// distinct test identity (lower-cased test name). Empty input yields empty
// output; groups with no numeric observations emit no trend.
func Compute(docs []domain.MedicalDocument) []domain.LabTrend {
	groups := map[string][]dated{}
	order := []string{}
	for _, doc := range docs {
		for _, obs := range doc.LabResults {
			key := obs.CanonicalKey()
			if strings.TrimSpace(key) == "" {
				continue
			}
			if _, seen := groups[key]; !seen {
				order = append(order, key)
			}
			groups[key] = append(groups[key], dated{date: doc.Date, obs: obs})
		}
	}

	trends := []domain.LabTrend{}
	for _, key := range order {
		if t, ok := buildTrend(groups[key]); ok {
			trends = append(trends, t)
		}
	}
	return trends
}

func buildTrend(group []dated) (domain.LabTrend, bool) {
	// ISO dates order lexicographically; the stable sort keeps extraction
	// order for same-day observations.
	sort.SliceStable(group, func(i, j int) bool {
		return group[i].date < group[j].date
	})

	// The chronologically earliest observation labels the whole series, even
	// if later documents used different casing or units.
	first := group[0].obs
	t := domain.LabTrend{
		TestName:       first.TestName,
		Category:       first.Category,
		Unit:           first.Unit,
		ReferenceRange: first.ReferenceRange,
		DataPoints:     []domain.TrendPoint{},
	}

	units := map[string]struct{}{}
	for _, d := range group {
		if d.obs.Unit != "" {
			units[d.obs.Unit] = struct{}{}
		}
		if !d.obs.Value.IsNumeric() {
			// Non-numeric observations are invisible to the series (they
			// still count for alerts).
			continue
		}
		t.DataPoints = append(t.DataPoints, domain.TrendPoint{
			Date:   d.date,
			Value:  d.obs.Value.Float(),
			Status: d.obs.Status,
		})
	}
	if len(t.DataPoints) == 0 {
		return domain.LabTrend{}, false
	}

	t.MixedUnits = len(units) > 1
	t.CurrentStatus = classify(t.DataPoints)
	return t, true
}

// classify compares the two most recent points inside a 5%-of-previous noise
// band, then applies the status-flip and away-from-abnormal-baseline rules.
// A value moving back toward normal from an abnormal baseline without
// reaching normal status deliberately reads as stable.
func classify(points []domain.TrendPoint) domain.TrendDirection {
	if len(points) < 2 {
		return domain.TrendUnknown
	}
	recent := points[len(points)-1]
	previous := points[len(points)-2]
	firstStatus := points[0].Status

	diff := recent.Value - previous.Value
	threshold := math.Abs(previous.Value) * stabilityBand

	switch {
	case math.Abs(diff) <= threshold:
		return domain.TrendStable
	case recent.Status == domain.ObsNormal && previous.Status != domain.ObsNormal:
		return domain.TrendImproving
	case recent.Status != domain.ObsNormal && previous.Status == domain.ObsNormal:
		return domain.TrendWorsening
	case diff > 0 && firstStatus == domain.ObsHigh:
		return domain.TrendWorsening
	case diff < 0 && firstStatus == domain.ObsLow:
		return domain.TrendWorsening
	default:
		return domain.TrendStable
	}
}
