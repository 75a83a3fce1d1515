package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectAnomalies_PendingBacklogOnly(t *testing.T) {
	got := DetectAnomalies(Metrics{
		PendingConsultationCount: 6,
		PendingTicketCount:       2,
		OfferAcceptanceRate:      85,
		TimeToResolveHours:       5,
		ConsultationCount:        40,
	})
	require.Len(t, got, 1)
	assert.Equal(t, SeverityHigh, got[0].Severity)
	assert.Equal(t, "Pending consultation backlog", got[0].Title)
	assert.Contains(t, got[0].Detail, "6 consultations")
}

func TestDetectAnomalies_AllRulesInOrder(t *testing.T) {
	got := DetectAnomalies(Metrics{
		PendingConsultationCount: 9,
		PendingTicketCount:       5,
		OfferAcceptanceRate:      40,
		TimeToResolveHours:       30,
		ConsultationCount:        20,
	})
	require.Len(t, got, 4)
	assert.Equal(t,
		"high:Pending consultation backlog|medium:Open ticket queue growing|medium:Low consultation completion rate|medium:Slow ticket resolution",
		Signature(got))
}

func TestDetectAnomalies_BoundariesDoNotFire(t *testing.T) {
	got := DetectAnomalies(Metrics{
		PendingConsultationCount: PendingConsultationLimit,
		PendingTicketCount:       PendingTicketLimit,
		OfferAcceptanceRate:      AcceptanceRateFloor,
		TimeToResolveHours:       ResolveHoursLimit,
		ConsultationCount:        10,
	})
	assert.Empty(t, got)
}
