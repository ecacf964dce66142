package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"expense-ledger/internal/domain"
	"expense-ledger/internal/repository"
)

// ErrInvalidFilter wraps malformed filter criteria.
var ErrInvalidFilter = errors.New("invalid filter")

// FilterCriteria narrows a user's expense set. Zero values are no-ops;
// supplied criteria are ANDed. Dates are raw YYYY-MM-DD form text.
type FilterCriteria struct {
	StartDate string
	EndDate   string
	Category  string
}

// FilterResult is the outcome of one filter pass: the surviving rows in
// store order plus their total.
type FilterResult struct {
	Expenses []domain.ExpenseRecord
	Total    int64
}

// ReportService computes the dashboard aggregations and ad hoc filters.
type ReportService interface {
	SumByCategory(ctx context.Context, userID int64) ([]domain.CategoryTotal, error)
	SumByDate(ctx context.Context, userID int64) ([]domain.DateTotal, error)
	TotalAll(ctx context.Context, userID int64) (int64, error)
	Filter(ctx context.Context, userID int64, criteria FilterCriteria) (*FilterResult, error)
}

type reportService struct {
	expenses repository.ExpenseRepository
}

func NewReportService(expenses repository.ExpenseRepository) ReportService {
	return &reportService{expenses: expenses}
}

func (s *reportService) SumByCategory(ctx context.Context, userID int64) ([]domain.CategoryTotal, error) {
	return s.expenses.SumByCategory(ctx, userID)
}

func (s *reportService) SumByDate(ctx context.Context, userID int64) ([]domain.DateTotal, error) {
	return s.expenses.SumByDate(ctx, userID)
}

func (s *reportService) TotalAll(ctx context.Context, userID int64) (int64, error) {
	return s.expenses.TotalAll(ctx, userID)
}

func (s *reportService) Filter(ctx context.Context, userID int64, criteria FilterCriteria) (*FilterResult, error) {
	start, err := parseFilterDate(criteria.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseFilterDate(criteria.EndDate)
	if err != nil {
		return nil, err
	}
	category := strings.TrimSpace(criteria.Category)

	expenses, err := s.expenses.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &FilterResult{Expenses: []domain.ExpenseRecord{}}
	for _, e := range expenses {
		if start != nil && e.Date.Before(*start) {
			continue
		}
		if end != nil && e.Date.After(*end) {
			continue
		}
		if category != "" && e.Category != category {
			continue
		}
		result.Expenses = append(result.Expenses, e.Record())
		result.Total += e.Amt
	}
	return result, nil
}

func parseFilterDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(domain.DateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("%w: dates must be in YYYY-MM-DD format", ErrInvalidFilter)
	}
	return &parsed, nil
}
