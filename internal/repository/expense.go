package repository

import (
	"context"

	"expense-ledger/internal/domain"
)

// ExpenseRepository defines persistence operations for Expense entities.
// Every query is scoped by the owning user id; there is no cross-user access.
type ExpenseRepository interface {
	Create(ctx context.Context, expense *domain.Expense) (int64, error)
	// DeleteOwned removes the expense only when both id and owner match.
	// It reports whether a row was actually deleted.
	DeleteOwned(ctx context.Context, id, userID int64) (bool, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Expense, error)
	// RecentByUser returns up to limit expenses in store order, newest first.
	RecentByUser(ctx context.Context, userID int64, limit int) ([]domain.Expense, error)
	SumByCategory(ctx context.Context, userID int64) ([]domain.CategoryTotal, error)
	SumByDate(ctx context.Context, userID int64) ([]domain.DateTotal, error)
	TotalAll(ctx context.Context, userID int64) (int64, error)
}
