package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/mkravets/medrecords-ai/internal/core/domain"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *DocumentRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082601)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	mime_type TEXT NOT NULL,
	storage_path TEXT NOT NULL,
	status TEXT NOT NULL,
	error_message TEXT,
	document_date TEXT,
	document_type TEXT,
	title TEXT,
	provider TEXT,
	facility TEXT,
	patient_info JSONB,
	lab_results JSONB NOT NULL DEFAULT '[]'::jsonb,
	medications JSONB NOT NULL DEFAULT '[]'::jsonb,
	diagnoses JSONB NOT NULL DEFAULT '[]'::jsonb,
	recommendations JSONB NOT NULL DEFAULT '[]'::jsonb,
	raw_text TEXT,
	confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);
CREATE INDEX IF NOT EXISTS idx_documents_document_date ON documents(document_date);

CREATE TABLE IF NOT EXISTS alerts (
	id TEXT PRIMARY KEY,
	alert_type TEXT NOT NULL,
	document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	observation_id TEXT NOT NULL,
	test_name TEXT NOT NULL,
	title TEXT NOT NULL,
	message TEXT NOT NULL,
	alert_date TEXT,
	dismissed BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_alerts_document_id ON alerts(document_id);
CREATE INDEX IF NOT EXISTS idx_alerts_dismissed ON alerts(dismissed);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

const documentColumns = `id, filename, mime_type, storage_path, status, error_message, document_date,
document_type, title, provider, facility, patient_info, lab_results, medications, diagnoses,
recommendations, raw_text, confidence, created_at, updated_at`

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.MedicalDocument) error {
	payload, err := marshalExtractionPayload(doc)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO documents (`+documentColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
`,
		doc.ID, doc.Filename, doc.MimeType, doc.StoragePath, string(doc.Status), doc.Error, doc.Date,
		string(doc.DocumentType), doc.Title, doc.Provider, doc.Facility, payload.patientInfo,
		payload.labResults, payload.medications, payload.diagnoses, payload.recommendations,
		doc.RawText, doc.Confidence, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.MedicalDocument, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE id = $1
`, id)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	return doc, nil
}

func (r *DocumentRepository) List(ctx context.Context) ([]domain.MedicalDocument, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+documentColumns+`
FROM documents
ORDER BY document_date, created_at
`)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	docs := []domain.MedicalDocument{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE documents
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	return requireRowAffected(res, "update document status", id)
}

func (r *DocumentRepository) SaveExtraction(ctx context.Context, id string, rec *domain.ExtractionRecord) error {
	doc := domain.MedicalDocument{}
	doc.ApplyExtraction(rec)
	payload, err := marshalExtractionPayload(&doc)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
UPDATE documents
SET document_type = $2, title = $3, document_date = $4, provider = $5, facility = $6,
    patient_info = $7, lab_results = $8, medications = $9, diagnoses = $10,
    recommendations = $11, raw_text = $12, confidence = $13, updated_at = $14
WHERE id = $1
`, id, string(rec.DocumentType), rec.Title, rec.Date, rec.Provider, rec.Facility,
		payload.patientInfo, payload.labResults, payload.medications, payload.diagnoses,
		payload.recommendations, rec.RawText, rec.Confidence, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save extraction: %w", err)
	}
	return requireRowAffected(res, "save extraction", id)
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return requireRowAffected(res, "delete document", id)
}

func requireRowAffected(res sql.Result, operation, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", operation, err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrDocumentNotFound, operation, fmt.Errorf("id=%s", id))
	}
	return nil
}

type extractionPayload struct {
	patientInfo     []byte
	labResults      []byte
	medications     []byte
	diagnoses       []byte
	recommendations []byte
}

func marshalExtractionPayload(doc *domain.MedicalDocument) (extractionPayload, error) {
	var out extractionPayload
	var err error

	if doc.PatientInfo != nil {
		if out.patientInfo, err = json.Marshal(doc.PatientInfo); err != nil {
			return out, fmt.Errorf("marshal patient info: %w", err)
		}
	}
	if out.labResults, err = json.Marshal(emptyIfNilObs(doc.LabResults)); err != nil {
		return out, fmt.Errorf("marshal lab results: %w", err)
	}
	if out.medications, err = json.Marshal(emptyIfNilMeds(doc.Medications)); err != nil {
		return out, fmt.Errorf("marshal medications: %w", err)
	}
	if out.diagnoses, err = json.Marshal(emptyIfNilStrings(doc.Diagnoses)); err != nil {
		return out, fmt.Errorf("marshal diagnoses: %w", err)
	}
	if out.recommendations, err = json.Marshal(emptyIfNilStrings(doc.Recommendations)); err != nil {
		return out, fmt.Errorf("marshal recommendations: %w", err)
	}
	return out, nil
}

func emptyIfNilObs(v []domain.LabObservation) []domain.LabObservation {
	if v == nil {
		return []domain.LabObservation{}
	}
	return v
}

func emptyIfNilMeds(v []domain.Medication) []domain.Medication {
	if v == nil {
		return []domain.Medication{}
	}
	return v
}

func emptyIfNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.MedicalDocument, error) {
	var doc domain.MedicalDocument
	var status, docType string
	var errMessage, docDate, title, provider, facility, rawText sql.NullString
	var patientInfo []byte
	var labResults, medications, diagnoses, recommendations []byte

	err := row.Scan(
		&doc.ID, &doc.Filename, &doc.MimeType, &doc.StoragePath, &status, &errMessage, &docDate,
		&docType, &title, &provider, &facility, &patientInfo, &labResults, &medications,
		&diagnoses, &recommendations, &rawText, &doc.Confidence, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	doc.Status = domain.DocumentStatus(status)
	doc.DocumentType = domain.DocumentType(docType)
	doc.Error = errMessage.String
	doc.Date = docDate.String
	doc.Title = title.String
	doc.Provider = provider.String
	doc.Facility = facility.String
	doc.RawText = rawText.String

	if len(patientInfo) > 0 {
		info := domain.PatientInfo{}
		if err := json.Unmarshal(patientInfo, &info); err != nil {
			return nil, fmt.Errorf("unmarshal patient info: %w", err)
		}
		doc.PatientInfo = &info
	}
	if err := json.Unmarshal(labResults, &doc.LabResults); err != nil {
		return nil, fmt.Errorf("unmarshal lab results: %w", err)
	}
	if err := json.Unmarshal(medications, &doc.Medications); err != nil {
		return nil, fmt.Errorf("unmarshal medications: %w", err)
	}
	if err := json.Unmarshal(diagnoses, &doc.Diagnoses); err != nil {
		return nil, fmt.Errorf("unmarshal diagnoses: %w", err)
	}
	if err := json.Unmarshal(recommendations, &doc.Recommendations); err != nil {
		return nil, fmt.Errorf("unmarshal recommendations: %w", err)
	}
	return &doc, nil
}
