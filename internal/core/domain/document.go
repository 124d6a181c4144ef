package domain

import "time"

type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusFailed     DocumentStatus = "failed"
)

type DocumentType string

const (
	DocTypeLabReport        DocumentType = "lab_report"
	DocTypePrescription     DocumentType = "prescription"
	DocTypeImaging          DocumentType = "imaging"
	DocTypeDischargeSummary DocumentType = "discharge_summary"
	DocTypeConsultation     DocumentType = "consultation"
	DocTypeVaccination      DocumentType = "vaccination"
	DocTypeOther            DocumentType = "other"
)

// ParseDocumentType collapses anything outside the known set to "other".
func ParseDocumentType(raw string) DocumentType {
	switch DocumentType(raw) {
	case DocTypeLabReport, DocTypePrescription, DocTypeImaging,
		DocTypeDischargeSummary, DocTypeConsultation, DocTypeVaccination, DocTypeOther:
		return DocumentType(raw)
	default:
		return DocTypeOther
	}
}

// MedicalDocument is one uploaded source document together with the record
// extracted from it. The document exclusively owns its LabObservations:
// deleting the document destroys them.
type MedicalDocument struct {
	ID          string         `json:"id"`
	Filename    string         `json:"filename"`
	MimeType    string         `json:"mime_type"`
	StoragePath string         `json:"storage_path"`
	Status      DocumentStatus `json:"status"`
	Error       string         `json:"error,omitempty"`

	// Date is the clinically relevant date of the document (YYYY-MM-DD),
	// distinct from CreatedAt. It is the sole time axis for trends.
	Date string `json:"date,omitempty"`

	DocumentType    DocumentType     `json:"document_type,omitempty"`
	Title           string           `json:"title,omitempty"`
	Provider        string           `json:"provider,omitempty"`
	Facility        string           `json:"facility,omitempty"`
	PatientInfo     *PatientInfo     `json:"patient_info,omitempty"`
	LabResults      []LabObservation `json:"lab_results"`
	Medications     []Medication     `json:"medications"`
	Diagnoses       []string         `json:"diagnoses"`
	Recommendations []string         `json:"recommendations"`
	RawText         string           `json:"raw_text,omitempty"`
	Confidence      float64          `json:"confidence,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PatientInfo struct {
	Name        string `json:"name,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	Gender      string `json:"gender,omitempty"`
}

type Medication struct {
	Name         string `json:"name"`
	Dosage       string `json:"dosage,omitempty"`
	Frequency    string `json:"frequency,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

// ExtractionRecord is the normalizer's output: the strictly-typed view of one
// document's AI extraction, before it is attached to a MedicalDocument.
type ExtractionRecord struct {
	DocumentType    DocumentType     `json:"document_type"`
	Title           string           `json:"title"`
	Date            string           `json:"date"`
	Provider        string           `json:"provider,omitempty"`
	Facility        string           `json:"facility,omitempty"`
	PatientInfo     *PatientInfo     `json:"patient_info,omitempty"`
	LabResults      []LabObservation `json:"lab_results"`
	Medications     []Medication     `json:"medications"`
	Diagnoses       []string         `json:"diagnoses"`
	Recommendations []string         `json:"recommendations"`
	RawText         string           `json:"raw_text,omitempty"`
	Confidence      float64          `json:"confidence"`
}

// ApplyExtraction attaches a normalized extraction to the document.
func (d *MedicalDocument) ApplyExtraction(rec *ExtractionRecord) {
	d.DocumentType = rec.DocumentType
	d.Title = rec.Title
	d.Date = rec.Date
	d.Provider = rec.Provider
	d.Facility = rec.Facility
	d.PatientInfo = rec.PatientInfo
	d.LabResults = rec.LabResults
	d.Medications = rec.Medications
	d.Diagnoses = rec.Diagnoses
	d.Recommendations = rec.Recommendations
	d.RawText = rec.RawText
	d.Confidence = rec.Confidence
}
