package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"roadside-service/internal/model"
	"roadside-service/internal/realtime"
	"roadside-service/internal/tracking"
)

// AvailabilityService manages provider availability and the location watch
// that runs while a provider is online.
type AvailabilityService struct {
	requestWriter
	profiles ProfileStore
	pings    LocationPingStore
	presence *tracking.Presence
}

func NewAvailabilityService(
	requests RequestStore,
	profiles ProfileStore,
	pings LocationPingStore,
	feed Publisher,
	locationBuffer int,
	log zerolog.Logger,
) *AvailabilityService {
	s := &AvailabilityService{
		requestWriter: requestWriter{requests: requests, feed: feed, log: log},
		profiles:      profiles,
		pings:         pings,
	}
	s.presence = tracking.NewPresence(s, locationBuffer, log)
	return s
}

// GoOnline marks the provider available at the given position and starts
// its location watch.
func (s *AvailabilityService) GoOnline(ctx context.Context, principal model.Principal, lat, lng float64) (*model.Profile, error) {
	if !principal.IsProvider() {
		return nil, ErrPermissionDenied
	}
	if !validCoordinates(lat, lng) {
		return nil, invalidInput("coordinates out of range")
	}

	before, err := s.LoadProfile(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.profiles.SetAvailability(ctx, principal.UserID, true, &lat, &lng); err != nil {
		return nil, err
	}
	s.presence.Start(principal.UserID)

	s.log.Info().Str("provider_id", principal.UserID.String()).Msg("provider online")
	return s.reloadAndPublish(ctx, before)
}

// GoOffline stops the location watch and clears the provider's position.
// It is safe to call when already offline.
func (s *AvailabilityService) GoOffline(ctx context.Context, principal model.Principal) (*model.Profile, error) {
	if !principal.IsProvider() {
		return nil, ErrPermissionDenied
	}

	s.presence.Stop(principal.UserID)

	before, err := s.LoadProfile(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.profiles.SetAvailability(ctx, principal.UserID, false, nil, nil); err != nil {
		return nil, err
	}

	s.log.Info().Str("provider_id", principal.UserID.String()).Msg("provider offline")
	return s.reloadAndPublish(ctx, before)
}

// PushLocation queues a position sample from an online provider. A provider
// whose profile is still available gets its watch back on the first push.
func (s *AvailabilityService) PushLocation(ctx context.Context, principal model.Principal, lat, lng float64) error {
	if !principal.IsProvider() {
		return ErrPermissionDenied
	}
	if !validCoordinates(lat, lng) {
		return invalidInput("coordinates out of range")
	}

	point := tracking.Point{Lat: lat, Lng: lng}
	err := s.presence.Push(principal.UserID, point)
	if !errors.Is(err, tracking.ErrNotWatching) {
		return err
	}

	// watches do not survive a restart; resume for a provider still marked available
	profile, err := s.LoadProfile(ctx, principal.UserID)
	if err != nil {
		return err
	}
	if !profile.IsAvailable {
		return conflict("provider is offline")
	}
	if s.presence.Ensure(principal.UserID) {
		s.log.Info().Str("provider_id", principal.UserID.String()).Msg("location watch resumed")
	}

	if err := s.presence.Push(principal.UserID, point); err != nil {
		if errors.Is(err, tracking.ErrNotWatching) {
			return conflict("provider is offline")
		}
		return err
	}
	return nil
}

// RecordProviderLocation persists one sample from the location watch: the
// profile, every request the provider is working and the ping history.
func (s *AvailabilityService) RecordProviderLocation(ctx context.Context, providerID uuid.UUID, p tracking.Point, at time.Time) error {
	if err := s.profiles.UpdateLocation(ctx, providerID, p.Lat, p.Lng, at); err != nil {
		return err
	}

	active, err := s.requests.ListActiveByProvider(ctx, providerID)
	if err != nil {
		return err
	}

	recorded := 0
	for _, listed := range active {
		req, err := s.requests.UpdateProviderLocation(ctx, listed.ID, p.Lat, p.Lng)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// left the active statuses since it was listed
			continue
		}
		if err != nil {
			return err
		}
		before := *req
		before.ProviderLat = listed.ProviderLat
		before.ProviderLng = listed.ProviderLng
		s.publish(realtime.TableServiceRequests, realtime.EventUpdate, &before, req)

		requestID := req.ID
		if err := s.pings.Create(ctx, &model.LocationPing{
			ProviderID:       providerID,
			ServiceRequestID: &requestID,
			Latitude:         p.Lat,
			Longitude:        p.Lng,
			RecordedAt:       at,
		}); err != nil {
			return err
		}
		recorded++
	}

	if recorded == 0 {
		return s.pings.Create(ctx, &model.LocationPing{
			ProviderID: providerID,
			Latitude:   p.Lat,
			Longitude:  p.Lng,
			RecordedAt: at,
		})
	}
	return nil
}

// LoadProfile returns the profile of userID. A profile that claims to be
// available without coordinates is switched off and saved that way, so the
// provider has to go online again.
func (s *AvailabilityService) LoadProfile(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if profile.RepairAvailability() {
		s.log.Warn().Str("provider_id", userID.String()).Msg("available provider without coordinates, availability reset")
		s.presence.Stop(userID)
		if err := s.profiles.SetAvailability(ctx, userID, false, nil, nil); err != nil {
			return nil, err
		}
	}
	return profile, nil
}

// ListProviders returns provider profiles for dispatch, optionally only
// those currently available.
func (s *AvailabilityService) ListProviders(ctx context.Context, principal model.Principal, onlyAvailable bool) ([]model.Profile, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	profiles, err := s.profiles.ListProviders(ctx, onlyAvailable)
	if err != nil {
		return nil, err
	}

	result := profiles[:0]
	for _, p := range profiles {
		p.RepairAvailability()
		if onlyAvailable && !p.IsAvailable {
			continue
		}
		result = append(result, p)
	}
	return result, nil
}

func (s *AvailabilityService) LastLocation(ctx context.Context, principal model.Principal, providerID string) (*model.LocationPing, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	id, err := parseID(providerID)
	if err != nil {
		return nil, err
	}
	ping, err := s.pings.GetLastByProviderID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return ping, nil
}

// Online reports whether a location watch is running for providerID.
func (s *AvailabilityService) Online(providerID uuid.UUID) bool {
	return s.presence.Watching(providerID)
}

// Shutdown stops every location watch.
func (s *AvailabilityService) Shutdown() {
	s.presence.StopAll()
}

func (s *AvailabilityService) reloadAndPublish(ctx context.Context, before *model.Profile) (*model.Profile, error) {
	after, err := s.profiles.GetByID(ctx, before.ID)
	if err != nil {
		return nil, err
	}
	s.publish(realtime.TableProfiles, realtime.EventUpdate, before, after)
	return after, nil
}
