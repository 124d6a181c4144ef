package trend

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkravets/medrecords-ai/internal/core/domain"
)

// Alerts derives HealthAlerts from a single document's observations. Every
// call mints fresh identities: reprocessing the same document produces new
// alert entries rather than deduplicating against earlier ones.
func Alerts(doc domain.MedicalDocument) []domain.HealthAlert {
	now := time.Now().UTC()
	alerts := []domain.HealthAlert{}
	for _, obs := range doc.LabResults {
		alert, ok := alertFor(doc, obs, now)
		if !ok {
			continue
		}
		alerts = append(alerts, alert)
	}
	return alerts
}

func alertFor(doc domain.MedicalDocument, obs domain.LabObservation, now time.Time) (domain.HealthAlert, bool) {
	base := domain.HealthAlert{
		ID:            uuid.NewString(),
		DocumentID:    doc.ID,
		ObservationID: obs.ID,
		TestName:      obs.TestName,
		Date:          doc.Date,
		CreatedAt:     now,
	}

	switch obs.Status {
	case domain.ObsCritical:
		base.Type = domain.AlertCritical
		base.Title = fmt.Sprintf("Critical: %s", obs.TestName)
		base.Message = fmt.Sprintf("%s is at a critical level: %s %s", obs.TestName, obs.Value, obs.Unit)
		return base, true
	case domain.ObsHigh:
		base.Type = domain.AlertWarning
		base.Title = fmt.Sprintf("Elevated %s", obs.TestName)
		base.Message = fmt.Sprintf("%s is %s %s, above the normal range", obs.TestName, obs.Value, obs.Unit)
		return base, true
	case domain.ObsLow:
		base.Type = domain.AlertWarning
		base.Title = fmt.Sprintf("Low %s", obs.TestName)
		base.Message = fmt.Sprintf("%s is %s %s, below the normal range", obs.TestName, obs.Value, obs.Unit)
		return base, true
	default:
		return domain.HealthAlert{}, false
	}
}
