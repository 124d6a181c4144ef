package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mkravets/medrecords-ai/internal/core/domain"
)

type AlertRepository struct {
	db *sql.DB
}

func NewAlertRepository(db *sql.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) CreateBatch(ctx context.Context, alerts []domain.HealthAlert) error {
	if len(alerts) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin alerts tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, alert := range alerts {
		_, err := tx.ExecContext(ctx, `
INSERT INTO alerts (id, alert_type, document_id, observation_id, test_name, title, message, alert_date, dismissed, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
`,
			alert.ID, string(alert.Type), alert.DocumentID, alert.ObservationID, alert.TestName,
			alert.Title, alert.Message, alert.Date, alert.Dismissed, alert.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert alert: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit alerts tx: %w", err)
	}
	return nil
}

func (r *AlertRepository) List(ctx context.Context, includeDismissed bool) ([]domain.HealthAlert, error) {
	query := `
SELECT id, alert_type, document_id, observation_id, test_name, title, message, alert_date, dismissed, created_at
FROM alerts
`
	if !includeDismissed {
		query += "WHERE dismissed = FALSE\n"
	}
	query += "ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	alerts := []domain.HealthAlert{}
	for rows.Next() {
		var alert domain.HealthAlert
		var alertType string
		var alertDate sql.NullString
		err := rows.Scan(
			&alert.ID, &alertType, &alert.DocumentID, &alert.ObservationID, &alert.TestName,
			&alert.Title, &alert.Message, &alertDate, &alert.Dismissed, &alert.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		alert.Type = domain.AlertType(alertType)
		alert.Date = alertDate.String
		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alerts: %w", err)
	}
	return alerts, nil
}

func (r *AlertRepository) Dismiss(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE alerts SET dismissed = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("dismiss alert: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("dismiss alert rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrAlertNotFound, "dismiss alert", fmt.Errorf("id=%s", id))
	}
	return nil
}

func (r *AlertRepository) DeleteByDocument(ctx context.Context, documentID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM alerts WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("delete alerts by document: %w", err)
	}
	return nil
}
