package tracking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roadside-service/internal/model"
)

func km(v float64) *float64 {
	return &v
}

func kinds(alerts []Alert) []AlertKind {
	out := make([]AlertKind, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, a.Kind)
	}
	return out
}

func TestAlerterStatusChanges(t *testing.T) {
	var a Alerter

	assert.Empty(t, a.Observe(Snapshot{RequestID: "r", Status: model.RequestStatusPending}))

	alerts := a.Observe(Snapshot{RequestID: "r", Status: model.RequestStatusAssigned})
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertStatusChange, alerts[0].Kind)
	assert.False(t, alerts[0].RequireInteraction)
	assert.Equal(t, "request-r-status", alerts[0].Tag)

	assert.Empty(t, a.Observe(Snapshot{RequestID: "r", Status: model.RequestStatusAssigned}))

	alerts = a.Observe(Snapshot{RequestID: "r", Status: model.RequestStatusCancelled})
	require.Len(t, alerts, 1)
	assert.True(t, alerts[0].RequireInteraction)
}

func TestAlerterCompletedRequiresInteraction(t *testing.T) {
	var a Alerter
	a.Observe(Snapshot{Status: model.RequestStatusInProgress})

	alerts := a.Observe(Snapshot{Status: model.RequestStatusCompleted})
	require.Len(t, alerts, 1)
	assert.True(t, alerts[0].RequireInteraction)
	assert.Equal(t, model.RequestStatusCompleted, alerts[0].Status)
}

func TestAlerterApproachHysteresis(t *testing.T) {
	var a Alerter
	a.Observe(Snapshot{Status: model.RequestStatusEnRoute})

	var approaching []float64
	var arrivals int
	for _, d := range []float64{1.8, 1.6, 1.5, 1.0, 0.4} {
		for _, alert := range a.Observe(Snapshot{Status: model.RequestStatusEnRoute, DistanceKm: km(d)}) {
			switch alert.Kind {
			case AlertApproaching:
				approaching = append(approaching, *alert.DistanceKm)
			case AlertArrival:
				arrivals++
				assert.Equal(t, 0.4, *alert.DistanceKm)
				assert.True(t, alert.Sound)
				assert.True(t, alert.RequireInteraction)
			}
		}
	}

	assert.Equal(t, []float64{1.8, 1.0}, approaching)
	assert.Equal(t, 1, arrivals)
}

func TestAlerterIgnoresFarAndUnknownDistances(t *testing.T) {
	var a Alerter
	a.Observe(Snapshot{Status: model.RequestStatusEnRoute})

	assert.Empty(t, a.Observe(Snapshot{Status: model.RequestStatusEnRoute, DistanceKm: km(5)}))
	assert.Empty(t, a.Observe(Snapshot{Status: model.RequestStatusEnRoute}))
	assert.Equal(t, []AlertKind{AlertApproaching},
		kinds(a.Observe(Snapshot{Status: model.RequestStatusEnRoute, DistanceKm: km(2)})))
}

func TestAlerterSoundLatchResetsWhenProviderMovesAway(t *testing.T) {
	var a Alerter
	a.Observe(Snapshot{Status: model.RequestStatusEnRoute})

	assert.Equal(t, []AlertKind{AlertArrival}, kinds(a.Observe(Snapshot{Status: model.RequestStatusEnRoute, DistanceKm: km(0.45)})))
	assert.Empty(t, a.Observe(Snapshot{Status: model.RequestStatusEnRoute, DistanceKm: km(0.3)}))
	assert.True(t, a.SoundPlayed())

	a.Observe(Snapshot{Status: model.RequestStatusEnRoute, DistanceKm: km(0.7)})
	assert.False(t, a.SoundPlayed())

	assert.Equal(t, []AlertKind{AlertArrival}, kinds(a.Observe(Snapshot{Status: model.RequestStatusEnRoute, DistanceKm: km(0.2)})))
}

func TestAlerterSoundLatchResetsOnServiceStart(t *testing.T) {
	var a Alerter
	a.Observe(Snapshot{Status: model.RequestStatusEnRoute})
	a.Observe(Snapshot{Status: model.RequestStatusEnRoute, DistanceKm: km(0.1)})
	require.True(t, a.SoundPlayed())

	alerts := a.Observe(Snapshot{Status: model.RequestStatusInProgress, DistanceKm: km(0.05)})
	assert.Equal(t, []AlertKind{AlertStatusChange}, kinds(alerts))
	assert.False(t, a.SoundPlayed())
}

func TestAlerterArrivalOnlyWhileEnRoute(t *testing.T) {
	var a Alerter
	a.Observe(Snapshot{Status: model.RequestStatusAccepted})

	assert.Empty(t, a.Observe(Snapshot{Status: model.RequestStatusAccepted, DistanceKm: km(0.2)}))
	assert.False(t, a.SoundPlayed())
}
