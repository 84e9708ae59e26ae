package service

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"roadside-service/internal/model"
	"roadside-service/internal/realtime"
	"roadside-service/internal/repository"
)

const maxReviewLength = 2000

type RatingService struct {
	requestWriter
	ratings RatingStore
}

func NewRatingService(requests RequestStore, ratings RatingStore, feed Publisher, log zerolog.Logger) *RatingService {
	return &RatingService{
		requestWriter: requestWriter{requests: requests, feed: feed, log: log},
		ratings:       ratings,
	}
}

// Submit stores the customer's rating of a completed request. Rating the
// same request again revises the existing rating.
func (s *RatingService) Submit(ctx context.Context, principal model.Principal, requestID string, score int, review *string) (*model.Rating, error) {
	if !principal.IsCustomer() {
		return nil, ErrPermissionDenied
	}
	if score < 1 || score > 5 {
		return nil, invalidInput("rating must be between 1 and 5")
	}
	review = trimmed(review)
	if review != nil && utf8.RuneCountInString(*review) > maxReviewLength {
		return nil, invalidInput("review is longer than %d characters", maxReviewLength)
	}

	req, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.CustomerID == nil || *req.CustomerID != principal.UserID {
		return nil, ErrPermissionDenied
	}
	if req.Status != model.RequestStatusCompleted || req.ProviderID == nil {
		return nil, conflict("only completed requests can be rated")
	}

	rating := &model.Rating{
		ServiceRequestID: req.ID,
		CustomerID:       principal.UserID,
		ProviderID:       *req.ProviderID,
		Rating:           score,
		Review:           review,
	}

	err = s.ratings.Create(ctx, rating)
	if err == nil {
		s.log.Info().Str("request_id", req.ID.String()).Int("rating", score).Msg("rating submitted")
		s.publish(realtime.TableRatings, realtime.EventInsert, nil, rating)
		return rating, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, err
	}

	existing, err := s.ratings.GetByRequestAndCustomer(ctx, req.ID, principal.UserID)
	if err != nil {
		return nil, err
	}
	before := *existing
	existing.Rating = score
	existing.Review = review
	if err := s.ratings.Update(ctx, existing); err != nil {
		return nil, err
	}

	s.log.Info().Str("request_id", req.ID.String()).Int("rating", score).Msg("rating revised")
	s.publish(realtime.TableRatings, realtime.EventUpdate, &before, existing)
	return existing, nil
}

type ProviderRatings struct {
	Summary repository.RatingSummary `json:"summary"`
	Ratings []model.Rating           `json:"ratings"`
}

func (s *RatingService) ListForProvider(ctx context.Context, providerID string) (*ProviderRatings, error) {
	id, err := parseID(providerID)
	if err != nil {
		return nil, err
	}
	ratings, err := s.ratings.ListByProvider(ctx, id)
	if err != nil {
		return nil, err
	}
	summary, err := s.ratings.SummaryForProvider(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ProviderRatings{Summary: summary, Ratings: ratings}, nil
}

func (s *RatingService) ListForRequest(ctx context.Context, principal model.Principal, requestID string) ([]model.Rating, error) {
	req, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !principal.IsAdmin() && !req.HasParty(principal.UserID) {
		return nil, ErrPermissionDenied
	}
	return s.ratings.ListByRequest(ctx, req.ID)
}
