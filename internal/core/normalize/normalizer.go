// Package normalize converts the untrusted, weakly-typed JSON produced by the
// document-understanding model into the strict domain shape. The source is
// unreliable by nature, so every field-level problem degrades to a documented
// default; only an unrecoverable payload fails.
package normalize

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mkravets/medrecords-ai/internal/core/domain"
)

const (
	// The model does not report a usable confidence signal, so every
	// extraction carries the same constant.
	defaultConfidence = 0.85

	defaultTitle = "Medical Document"

	dateLayout = "2006-01-02"
)

type Normalizer struct {
	now func() time.Time
}

func New() *Normalizer {
	return &Normalizer{now: time.Now}
}

// NewWithClock pins the processing date used for documents without one.
func NewWithClock(now func() time.Time) *Normalizer {
	return &Normalizer{now: now}
}

// Normalize converts raw model output into an ExtractionRecord. It returns
// domain.ErrMalformedExtraction only when no JSON object can be recovered
// after fence stripping and outermost-brace fallback.
func (n *Normalizer) Normalize(raw string) (*domain.ExtractionRecord, error) {
	obj, ok := recoverJSONObject(raw)
	if !ok {
		return nil, domain.WrapError(domain.ErrMalformedExtraction, "normalize extraction",
			errors.New("no JSON object in model output"))
	}

	rec := &domain.ExtractionRecord{
		DocumentType:    domain.ParseDocumentType(stringField(obj["documentType"])),
		Title:           stringField(obj["title"]),
		Date:            stringField(obj["date"]),
		Provider:        stringField(obj["provider"]),
		Facility:        stringField(obj["facility"]),
		PatientInfo:     n.patientInfo(obj["patientInfo"]),
		LabResults:      n.labResults(obj["labResults"]),
		Medications:     n.medications(obj["medications"]),
		Diagnoses:       stringList(obj["diagnoses"]),
		Recommendations: stringList(obj["recommendations"]),
		RawText:         stringField(obj["rawText"]),
		Confidence:      defaultConfidence,
	}

	if rec.Title == "" {
		rec.Title = defaultTitle
	}
	if rec.Date == "" {
		rec.Date = n.now().UTC().Format(dateLayout)
	}
	return rec, nil
}

func (n *Normalizer) labResults(raw json.RawMessage) []domain.LabObservation {
	results := []domain.LabObservation{}
	for _, entry := range objectList(raw) {
		// Identity is owned here: IDs from the model, if any, are ignored.
		results = append(results, domain.LabObservation{
			ID:             uuid.NewString(),
			TestName:       stringField(entry["testName"]),
			Value:          valueField(entry["value"]),
			Unit:           stringField(entry["unit"]),
			ReferenceRange: referenceRange(entry["referenceRange"]),
			Status:         domain.ParseObservationStatus(stringField(entry["status"])),
			Category:       domain.ParseTestCategory(stringField(entry["category"])),
		})
	}
	return results
}

// valueField keeps numbers as-is and attempts a numeric parse of strings,
// falling back to the verbatim text. Parse failure is expected input here,
// never an error.
func valueField(raw json.RawMessage) domain.ObservationValue {
	if len(raw) == 0 {
		return domain.TextValue("")
	}
	var direct float64
	if err := json.Unmarshal(raw, &direct); err == nil {
		return domain.NumericValue(direct)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return domain.ParseValue(s)
	}
	return domain.TextValue("")
}

func referenceRange(raw json.RawMessage) *domain.ReferenceRange {
	obj, ok := decodeObject(string(raw))
	if !ok {
		return nil
	}
	rr := &domain.ReferenceRange{
		Low:  numberField(obj["low"]),
		High: numberField(obj["high"]),
		Text: stringField(obj["text"]),
	}
	if rr.Low == nil && rr.High == nil && rr.Text == "" {
		return nil
	}
	return rr
}

func (n *Normalizer) medications(raw json.RawMessage) []domain.Medication {
	meds := []domain.Medication{}
	for _, entry := range objectList(raw) {
		med := domain.Medication{
			Name:         stringField(entry["name"]),
			Dosage:       stringField(entry["dosage"]),
			Frequency:    stringField(entry["frequency"]),
			Instructions: stringField(entry["instructions"]),
		}
		if med.Name == "" {
			continue
		}
		meds = append(meds, med)
	}
	return meds
}

func (n *Normalizer) patientInfo(raw json.RawMessage) *domain.PatientInfo {
	obj, ok := decodeObject(string(raw))
	if !ok {
		return nil
	}
	info := &domain.PatientInfo{
		Name:        stringField(obj["name"]),
		DateOfBirth: stringField(obj["dateOfBirth"]),
		Gender:      stringField(obj["gender"]),
	}
	if info.Name == "" && info.DateOfBirth == "" && info.Gender == "" {
		return nil
	}
	return info
}
