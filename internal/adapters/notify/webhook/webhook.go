package webhook

import (
	"context"
	"time"

	"patient-portal-api/internal/domain/medications"
	"patient-portal-api/internal/platform/httpclient"
	"patient-portal-api/internal/platform/logger"
)

// Notifier postea recordatorios de refill a un webhook configurado.
// Best-effort: un webhook caído nunca hace fallar la mutación que lo
// disparó, solo se loguea.
type Notifier struct {
	client *httpclient.Client
	url    string
	log    logger.Logger
}

func New(url string, client *httpclient.Client, log logger.Logger) *Notifier {
	if client == nil {
		client = httpclient.New(httpclient.DefaultTimeout)
	}
	return &Notifier{
		client: client,
		url:    url,
		log:    log,
	}
}

type refillDuePayload struct {
	Event          string `json:"event"`
	MedicationID   string `json:"medication_id"`
	PatientID      string `json:"patient_id"`
	Name           string `json:"name"`
	Dosage         string `json:"dosage"`
	RefillDate     string `json:"refill_date"`
	RefillSchedule string `json:"refill_schedule"`
}

func (n *Notifier) RefillDue(ctx context.Context, m medications.Medication) {
	if n == nil || n.url == "" {
		return
	}

	// timeout corto propio: el request que dispara el aviso no espera al webhook
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	payload := refillDuePayload{
		Event:          "medication.refill_due",
		MedicationID:   m.ID,
		PatientID:      m.PatientID,
		Name:           m.Name,
		Dosage:         m.Dosage,
		RefillDate:     m.RefillDate.Format("2006-01-02"),
		RefillSchedule: m.RefillSchedule,
	}

	if err := n.client.PostJSON(ctx, n.url, payload, nil); err != nil {
		n.log.Warn("refill webhook failed", map[string]any{
			"medication_id": m.ID,
			"error":         err.Error(),
		})
		return
	}

	n.log.Debug("refill webhook sent", map[string]any{
		"medication_id": m.ID,
	})
}
