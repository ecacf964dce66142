package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"expense-ledger/internal/domain"
	"expense-ledger/internal/repository"
)

const (
	maxDescLen     = 100
	maxCategoryLen = 20
	recentCount    = 5
)

var (
	// ErrExpenseNotFound is returned when an expense does not exist or
	// belongs to a different user.
	ErrExpenseNotFound = errors.New("expense not found")
	// ErrInvalidExpense wraps all add-expense validation failures.
	ErrInvalidExpense = errors.New("invalid expense")
)

// ExpenseService covers the create/delete/list lifecycle of expenses.
// Amount and date arrive as the raw form text and are validated here.
type ExpenseService interface {
	Add(ctx context.Context, userID int64, desc, amt, category, date string) (*domain.Expense, error)
	Delete(ctx context.Context, userID, expenseID int64) error
	List(ctx context.Context, userID int64) ([]domain.Expense, error)
	Recent(ctx context.Context, userID int64) ([]domain.Expense, error)
}

type expenseService struct {
	expenses repository.ExpenseRepository
	now      func() time.Time
}

func NewExpenseService(expenses repository.ExpenseRepository) ExpenseService {
	return &expenseService{
		expenses: expenses,
		now:      time.Now,
	}
}

func (s *expenseService) Add(ctx context.Context, userID int64, desc, amt, category, date string) (*domain.Expense, error) {
	desc = strings.TrimSpace(desc)
	category = strings.TrimSpace(category)

	if desc == "" {
		return nil, fmt.Errorf("%w: description is required", ErrInvalidExpense)
	}
	if len(desc) > maxDescLen {
		return nil, fmt.Errorf("%w: description exceeds %d characters", ErrInvalidExpense, maxDescLen)
	}
	if category == "" {
		return nil, fmt.Errorf("%w: category is required", ErrInvalidExpense)
	}
	if len(category) > maxCategoryLen {
		return nil, fmt.Errorf("%w: category exceeds %d characters", ErrInvalidExpense, maxCategoryLen)
	}

	amount, err := strconv.ParseInt(strings.TrimSpace(amt), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: amount must be a whole number", ErrInvalidExpense)
	}

	// blank date defaults to the creation day
	day := s.now().Format(domain.DateLayout)
	if strings.TrimSpace(date) != "" {
		day = strings.TrimSpace(date)
	}
	parsed, err := time.Parse(domain.DateLayout, day)
	if err != nil {
		return nil, fmt.Errorf("%w: date must be in YYYY-MM-DD format", ErrInvalidExpense)
	}

	expense := &domain.Expense{
		Desc:     desc,
		Amt:      amount,
		Category: category,
		Date:     parsed,
		UserID:   userID,
	}

	if _, err := s.expenses.Create(ctx, expense); err != nil {
		return nil, err
	}
	return expense, nil
}

func (s *expenseService) Delete(ctx context.Context, userID, expenseID int64) error {
	deleted, err := s.expenses.DeleteOwned(ctx, expenseID, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrExpenseNotFound
	}
	return nil
}

func (s *expenseService) List(ctx context.Context, userID int64) ([]domain.Expense, error) {
	return s.expenses.ListByUser(ctx, userID)
}

func (s *expenseService) Recent(ctx context.Context, userID int64) ([]domain.Expense, error) {
	return s.expenses.RecentByUser(ctx, userID, recentCount)
}
