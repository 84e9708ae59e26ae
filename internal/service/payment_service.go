package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"roadside-service/internal/config"
	"roadside-service/internal/model"
	"roadside-service/internal/realtime"
	"roadside-service/internal/repository"
)

type PaymentService struct {
	requestWriter
	transactions TransactionStore
	cfg          config.PaymentConfig
	now          func() time.Time
}

func NewPaymentService(requests RequestStore, transactions TransactionStore, feed Publisher, cfg config.PaymentConfig, log zerolog.Logger) *PaymentService {
	return &PaymentService{
		requestWriter: requestWriter{requests: requests, feed: feed, log: log},
		transactions:  transactions,
		cfg:           cfg,
		now:           time.Now,
	}
}

type RecordPaymentInput struct {
	Amount             float64
	ProviderPercentage *float64
	PaymentMethod      string
	TransactionType    string
	ReferenceNumber    *string
	Notes              *string
}

// RecordPayment books the customer payment of a finished request and
// completes the request if the provider has not done so yet.
func (s *PaymentService) RecordPayment(ctx context.Context, principal model.Principal, requestID string, input RecordPaymentInput) (*model.Transaction, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	pct := s.cfg.DefaultProviderPercentage
	if input.ProviderPercentage != nil {
		pct = *input.ProviderPercentage
	}
	if err := s.validateSplit(input.Amount, pct); err != nil {
		return nil, err
	}

	txnType := model.TransactionTypeCustomerToBusiness
	if t := strings.TrimSpace(input.TransactionType); t != "" {
		txnType = model.TransactionType(t)
		if txnType != model.TransactionTypeCustomerToBusiness && txnType != model.TransactionTypeBusinessToProvider {
			return nil, invalidInput("unknown transaction type %q", t)
		}
	}

	method := strings.TrimSpace(input.PaymentMethod)
	if method == "" {
		method = "cash"
	}

	req, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != model.RequestStatusInProgress && req.Status != model.RequestStatusCompleted {
		return nil, conflict("payment can only be recorded for a request in progress or completed")
	}

	existing, err := s.transactions.GetByRequestID(ctx, req.ID)
	switch {
	case err == nil && existing != nil:
		return nil, conflict("payment already recorded for this request")
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	now := s.now()
	txn := &model.Transaction{
		ServiceRequestID:   req.ID,
		Amount:             input.Amount,
		ProviderPercentage: pct,
		TransactionType:    txnType,
		PaymentMethod:      method,
		ConfirmedBy:        principal.UserID,
		ConfirmedAt:        now,
		ReferenceNumber:    trimmed(input.ReferenceNumber),
		Notes:              trimmed(input.Notes),
	}
	txn.ApplySplit()

	// an unfinished request is completed together with the payment insert
	before := *req
	var completed *model.ServiceRequest
	if req.Status != model.RequestStatusCompleted {
		req.Status = model.RequestStatusCompleted
		req.CompletedAt = &now
		completed = req
	}

	if err := s.transactions.Settle(ctx, txn, completed, before.Version); err != nil {
		switch {
		case errors.Is(err, repository.ErrStaleVersion):
			return nil, ErrConflict
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, conflict("payment already recorded for this request")
		}
		return nil, err
	}
	if completed != nil {
		s.publish(realtime.TableServiceRequests, realtime.EventUpdate, &before, completed)
	}

	s.log.Info().
		Str("request_id", req.ID.String()).
		Str("transaction_id", txn.ID.String()).
		Float64("amount", txn.Amount).
		Float64("provider_amount", txn.ProviderAmount).
		Float64("platform_amount", txn.PlatformAmount).
		Msg("payment recorded")
	s.publish(realtime.TableTransactions, realtime.EventInsert, nil, txn)

	return txn, nil
}

type UpdateTransactionInput struct {
	Amount             *float64
	ProviderPercentage *float64
	PaymentMethod      *string
	ReferenceNumber    *string
	Notes              *string
}

// UpdateTransaction edits a recorded payment. Both shares are recomputed
// from the resulting amount and percentage.
func (s *PaymentService) UpdateTransaction(ctx context.Context, principal model.Principal, id string, input UpdateTransactionInput) (*model.Transaction, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	txnID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	txn, err := s.transactions.GetByID(ctx, txnID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	before := *txn
	if input.Amount != nil {
		txn.Amount = *input.Amount
	}
	if input.ProviderPercentage != nil {
		txn.ProviderPercentage = *input.ProviderPercentage
	}
	if err := s.validateSplit(txn.Amount, txn.ProviderPercentage); err != nil {
		return nil, err
	}
	if input.PaymentMethod != nil {
		if method := strings.TrimSpace(*input.PaymentMethod); method != "" {
			txn.PaymentMethod = method
		}
	}
	if input.ReferenceNumber != nil {
		txn.ReferenceNumber = trimmed(input.ReferenceNumber)
	}
	if input.Notes != nil {
		txn.Notes = trimmed(input.Notes)
	}
	txn.ApplySplit()

	if err := s.transactions.Update(ctx, txn); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("transaction_id", txn.ID.String()).
		Float64("amount", txn.Amount).
		Float64("provider_percentage", txn.ProviderPercentage).
		Msg("transaction updated")
	s.publish(realtime.TableTransactions, realtime.EventUpdate, &before, txn)

	return txn, nil
}

// GetForRequest returns the payment of a request to its parties and admins.
func (s *PaymentService) GetForRequest(ctx context.Context, principal model.Principal, requestID string) (*model.Transaction, error) {
	req, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !principal.IsAdmin() && !req.HasParty(principal.UserID) {
		return nil, ErrPermissionDenied
	}

	txn, err := s.transactions.GetByRequestID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return txn, nil
}

func (s *PaymentService) validateSplit(amount, pct float64) error {
	if math.Round(amount*100) < 1 {
		return invalidInput("amount must be at least 0.01")
	}
	if amount > s.cfg.MaxAmount {
		return invalidInput("amount exceeds the maximum of %.2f", s.cfg.MaxAmount)
	}
	if pct < 0 || pct > 100 {
		return invalidInput("provider percentage must be within [0, 100]")
	}
	return nil
}
