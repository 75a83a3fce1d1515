package analytics

import "fmt"

type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

const (
	PendingConsultationLimit = 5
	PendingTicketLimit       = 4
	AcceptanceRateFloor      = 70
	ResolveHoursLimit        = 18
)

type Anomaly struct {
	Title    string   `json:"title"`
	Detail   string   `json:"detail"`
	Severity Severity `json:"severity"`
	Action   string   `json:"action"`
}

// DetectAnomalies applies every threshold rule and returns the matches in rule
// order. The completion rate rule needs at least one booking to mean anything.
func DetectAnomalies(m Metrics) []Anomaly {
	out := []Anomaly{}
	if m.PendingConsultationCount > PendingConsultationLimit {
		out = append(out, Anomaly{
			Title:    "Pending consultation backlog",
			Detail:   fmt.Sprintf("%d consultations are waiting for confirmation (limit %d).", m.PendingConsultationCount, PendingConsultationLimit),
			Severity: SeverityHigh,
			Action:   "Confirm or reassign pending consultations.",
		})
	}
	if m.PendingTicketCount > PendingTicketLimit {
		out = append(out, Anomaly{
			Title:    "Open ticket queue growing",
			Detail:   fmt.Sprintf("%d consulting tickets are still open (limit %d).", m.PendingTicketCount, PendingTicketLimit),
			Severity: SeverityMedium,
			Action:   "Triage open tickets and add responders.",
		})
	}
	if m.ConsultationCount > 0 && m.OfferAcceptanceRate < AcceptanceRateFloor {
		out = append(out, Anomaly{
			Title:    "Low consultation completion rate",
			Detail:   fmt.Sprintf("Only %d%% of consultations completed (target %d%%).", m.OfferAcceptanceRate, AcceptanceRateFloor),
			Severity: SeverityMedium,
			Action:   "Review cancellations and no-shows with consultants.",
		})
	}
	if m.TimeToResolveHours > ResolveHoursLimit {
		out = append(out, Anomaly{
			Title:    "Slow ticket resolution",
			Detail:   fmt.Sprintf("Tickets take %.1f hours to resolve on average (limit %d).", m.TimeToResolveHours, ResolveHoursLimit),
			Severity: SeverityMedium,
			Action:   "Escalate tickets older than the SLA.",
		})
	}
	return out
}
