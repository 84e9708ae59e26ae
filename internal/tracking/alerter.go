package tracking

import (
	"fmt"

	"roadside-service/internal/model"
)

const (
	// ApproachRadiusKm is where "approaching" alerts start.
	ApproachRadiusKm = 2.0
	// ApproachStepKm is the minimum drop between two approaching alerts.
	ApproachStepKm = 0.5
	// ArrivalRadiusKm is where the one-shot sound alert fires.
	ArrivalRadiusKm = 0.5
)

type AlertKind string

const (
	AlertStatusChange AlertKind = "status_change"
	AlertApproaching  AlertKind = "approaching"
	AlertArrival      AlertKind = "arrival"
)

type Alert struct {
	Kind               AlertKind           `json:"kind"`
	Title              string              `json:"title"`
	Body               string              `json:"body"`
	Tag                string              `json:"tag"`
	RequireInteraction bool                `json:"require_interaction"`
	Sound              bool                `json:"sound"`
	Status             model.RequestStatus `json:"status"`
	DistanceKm         *float64            `json:"distance_km,omitempty"`
}

// Snapshot is what a tracking view knows about a request at one moment.
// A nil DistanceKm means the distance is unknown.
type Snapshot struct {
	RequestID  string
	Status     model.RequestStatus
	DistanceKm *float64
}

var statusMessages = map[model.RequestStatus][2]string{
	model.RequestStatusAssigned:   {"Provider assigned", "A provider has been assigned to your request."},
	model.RequestStatusAccepted:   {"Request accepted", "Your provider accepted the request and is getting ready."},
	model.RequestStatusEnRoute:    {"Provider on the way", "Your provider is on the way to your location."},
	model.RequestStatusInProgress: {"Service started", "Your provider has started working on your vehicle."},
	model.RequestStatusCompleted:  {"Service completed", "Your service is complete. Thank you for choosing us."},
	model.RequestStatusCancelled:  {"Request cancelled", "Your service request has been cancelled."},
}

// Alerter turns a stream of snapshots of one request into notifications. It
// is owned by a single tracking view and is not safe for concurrent use.
type Alerter struct {
	seen                 bool
	lastStatus           model.RequestStatus
	lastNotifiedDistance *float64
	soundPlayed          bool
}

// Observe records s and returns the alerts it triggers, status alerts first.
// The first snapshot only primes the status; opening a view does not notify.
func (a *Alerter) Observe(s Snapshot) []Alert {
	var alerts []Alert

	if a.seen && s.Status != a.lastStatus {
		if msg, ok := statusMessages[s.Status]; ok {
			final := s.Status == model.RequestStatusCompleted || s.Status == model.RequestStatusCancelled
			alerts = append(alerts, Alert{
				Kind:               AlertStatusChange,
				Title:              msg[0],
				Body:               msg[1],
				Tag:                fmt.Sprintf("request-%s-status", s.RequestID),
				RequireInteraction: final,
				Status:             s.Status,
			})
		}
		if s.Status == model.RequestStatusInProgress {
			a.soundPlayed = false
		}
	}
	a.seen = true
	a.lastStatus = s.Status

	if s.DistanceKm == nil {
		return alerts
	}
	d := *s.DistanceKm

	if d > ArrivalRadiusKm {
		a.soundPlayed = false
	}

	if approachAlerts(s.Status) && d <= ApproachRadiusKm && d > ArrivalRadiusKm &&
		(a.lastNotifiedDistance == nil || *a.lastNotifiedDistance-d > ApproachStepKm) {
		alerts = append(alerts, Alert{
			Kind:       AlertApproaching,
			Title:      "Provider approaching",
			Body:       fmt.Sprintf("Your provider is %.1f km away.", d),
			Tag:        fmt.Sprintf("request-%s-approaching", s.RequestID),
			Status:     s.Status,
			DistanceKm: &d,
		})
		a.lastNotifiedDistance = &d
	}

	if s.Status == model.RequestStatusEnRoute && d <= ArrivalRadiusKm && !a.soundPlayed {
		alerts = append(alerts, Alert{
			Kind:               AlertArrival,
			Title:              "Provider is almost there",
			Body:               fmt.Sprintf("Your provider is %.0f m away.", d*1000),
			Tag:                fmt.Sprintf("request-%s-arrival", s.RequestID),
			RequireInteraction: true,
			Sound:              true,
			Status:             s.Status,
			DistanceKm:         &d,
		})
		a.soundPlayed = true
	}

	return alerts
}

// SoundPlayed reports the state of the arrival latch.
func (a *Alerter) SoundPlayed() bool {
	return a.soundPlayed
}

func approachAlerts(status model.RequestStatus) bool {
	switch status {
	case model.RequestStatusAssigned, model.RequestStatusAccepted, model.RequestStatusEnRoute:
		return true
	default:
		return false
	}
}
