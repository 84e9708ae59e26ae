package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"roadside-service/internal/model"
	"roadside-service/internal/realtime"
	"roadside-service/internal/repository"
)

// requestWriter persists service request changes and announces them on the
// change feed.
type requestWriter struct {
	requests RequestStore
	feed     Publisher
	log      zerolog.Logger
}

func (w requestWriter) load(ctx context.Context, id string) (*model.ServiceRequest, error) {
	requestID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	req, err := w.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return req, nil
}

// save writes req if nobody changed it since before was read. The provider
// coordinates are only written when the caller changed them, so a location
// sample recorded in between survives. req is reloaded from the committed row.
func (w requestWriter) save(ctx context.Context, before model.ServiceRequest, req *model.ServiceRequest) error {
	withLocation := movedProvider(&before, req)
	if err := w.requests.UpdateVersioned(ctx, req, before.Version, withLocation); err != nil {
		if errors.Is(err, repository.ErrStaleVersion) {
			return ErrConflict
		}
		return err
	}
	w.publish(realtime.TableServiceRequests, realtime.EventUpdate, &before, req)
	return nil
}

func movedProvider(before, after *model.ServiceRequest) bool {
	return !sameCoordinate(before.ProviderLat, after.ProviderLat) ||
		!sameCoordinate(before.ProviderLng, after.ProviderLng)
}

func sameCoordinate(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// publish is best effort: the row change has already been committed.
func (w requestWriter) publish(table string, typ realtime.EventType, before, after any) {
	if w.feed == nil {
		return
	}
	if err := w.feed.Publish(table, typ, before, after); err != nil {
		w.log.Warn().Err(err).Str("table", table).Str("type", string(typ)).Msg("failed to publish change event")
	}
}

// checkVersion rejects a write whose caller saw an older row.
func checkVersion(req *model.ServiceRequest, expected *int) error {
	if expected != nil && *expected != req.Version {
		return ErrConflict
	}
	return nil
}
