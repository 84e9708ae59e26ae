package service

import (
	"context"
	"time"

	"github.com/jinzhu/now"

	"roadside-service/internal/model"
	"roadside-service/internal/repository"
)

type DashboardService struct {
	requests     RequestStore
	transactions TransactionStore
	clock        func() time.Time
}

func NewDashboardService(requests RequestStore, transactions TransactionStore) *DashboardService {
	return &DashboardService{requests: requests, transactions: transactions, clock: time.Now}
}

type DashboardStats struct {
	ByStatus       map[model.RequestStatus]int64 `json:"by_status"`
	Open           int64                         `json:"open"`
	CreatedToday   int64                         `json:"created_today"`
	RevenueMonth   repository.Revenue            `json:"revenue_month"`
	MonthStartedAt time.Time                     `json:"month_started_at"`
}

func (s *DashboardService) Stats(ctx context.Context, principal model.Principal) (*DashboardStats, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	period := now.New(s.clock())
	dayStart := period.BeginningOfDay()
	monthStart := period.BeginningOfMonth()
	nextMonth := period.EndOfMonth().Add(time.Nanosecond)

	byStatus, err := s.requests.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	createdToday, err := s.requests.CountCreatedBetween(ctx, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	revenue, err := s.transactions.SumBetween(ctx, monthStart, nextMonth)
	if err != nil {
		return nil, err
	}

	var open int64
	for status, count := range byStatus {
		if !status.IsTerminal() {
			open += count
		}
	}

	return &DashboardStats{
		ByStatus:       byStatus,
		Open:           open,
		CreatedToday:   createdToday,
		RevenueMonth:   revenue,
		MonthStartedAt: monthStart,
	}, nil
}
