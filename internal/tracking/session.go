package tracking

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"

	"roadside-service/internal/model"
	"roadside-service/internal/realtime"
)

// Update is what a tracking view renders after each change of its request.
type Update struct {
	Request    *model.ServiceRequest `json:"request"`
	Deleted    bool                  `json:"deleted,omitempty"`
	DistanceKm *float64              `json:"distance_km"`
	Alerts     []Alert               `json:"alerts,omitempty"`
}

// Session is one open tracking view of a single request.
type Session struct {
	alerter  Alerter
	notifier Notifier
	target   string
	log      zerolog.Logger
}

// NewSession creates a view whose alerts are also pushed to target through
// notifier.
func NewSession(notifier Notifier, target string, log zerolog.Logger) *Session {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Session{notifier: notifier, target: target, log: log}
}

// Apply recomputes distance and alerts for req and dispatches the alerts.
// Dispatch is best effort: failures never block the update itself.
func (s *Session) Apply(ctx context.Context, req *model.ServiceRequest) Update {
	update := Update{Request: req}
	if km, ok := DistanceBetween(req.ProviderLat, req.ProviderLng, req.CustomerLat, req.CustomerLng); ok {
		update.DistanceKm = &km
	}

	update.Alerts = s.alerter.Observe(Snapshot{
		RequestID:  req.ID.String(),
		Status:     req.Status,
		DistanceKm: update.DistanceKm,
	})

	for _, alert := range update.Alerts {
		err := s.notifier.Notify(ctx, s.target, alert)
		switch {
		case err == nil:
		case errors.Is(err, ErrPermissionDenied):
			s.log.Debug().Str("target", s.target).Str("kind", string(alert.Kind)).Msg("notification permission denied, alert skipped")
		default:
			s.log.Warn().Err(err).Str("target", s.target).Str("kind", string(alert.Kind)).Msg("failed to dispatch alert")
		}
	}

	return update
}

// Run applies every event of sub and hands the result to emit until the
// subscription ends, ctx is done, the request is deleted, or emit fails. The
// caller still owns sub and must release it.
func (s *Session) Run(ctx context.Context, sub *realtime.Subscription, emit func(Update) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-sub.Events():
			if !ok {
				return nil
			}

			var req model.ServiceRequest
			if err := json.Unmarshal(event.Row(), &req); err != nil {
				s.log.Warn().Err(err).Msg("skipping undecodable request event")
				continue
			}

			if event.Type == realtime.EventDelete {
				return emit(Update{Request: &req, Deleted: true})
			}

			if err := emit(s.Apply(ctx, &req)); err != nil {
				return err
			}
		}
	}
}
