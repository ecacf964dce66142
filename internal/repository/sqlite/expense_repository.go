package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"expense-ledger/internal/domain"
	"expense-ledger/internal/repository"
)

type ExpenseRepository struct {
	db *sql.DB
}

func NewExpenseRepository(db *sql.DB) repository.ExpenseRepository {
	return &ExpenseRepository{db: db}
}

func (r *ExpenseRepository) Create(ctx context.Context, expense *domain.Expense) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
INSERT INTO expenses ("desc", amt, category, date, user_id)
VALUES (?, ?, ?, ?, ?)`,
		expense.Desc,
		expense.Amt,
		expense.Category,
		expense.Date.Format(domain.DateLayout),
		expense.UserID,
	)
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("expense last insert id: %w", err)
	}
	expense.ID = id
	return id, nil
}

func (r *ExpenseRepository) DeleteOwned(ctx context.Context, id, userID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
DELETE FROM expenses
WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("delete expense: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete expense rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *ExpenseRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, "desc", amt, category, date, user_id
FROM expenses
WHERE user_id = ?
ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	return collectExpenses(rows)
}

func (r *ExpenseRepository) RecentByUser(ctx context.Context, userID int64, limit int) ([]domain.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, "desc", amt, category, date, user_id
FROM expenses
WHERE user_id = ?
ORDER BY id DESC
LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent expenses: %w", err)
	}
	defer rows.Close()

	return collectExpenses(rows)
}

func (r *ExpenseRepository) SumByCategory(ctx context.Context, userID int64) ([]domain.CategoryTotal, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT category, SUM(amt)
FROM expenses
WHERE user_id = ?
GROUP BY category
ORDER BY category`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sum by category: %w", err)
	}
	defer rows.Close()

	var totals []domain.CategoryTotal
	for rows.Next() {
		var category string
		var total int64
		if err := rows.Scan(&category, &total); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		totals = append(totals, domain.CategoryTotal{Category: category, Total: float64(total)})
	}
	return totals, rows.Err()
}

func (r *ExpenseRepository) SumByDate(ctx context.Context, userID int64) ([]domain.DateTotal, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT date, SUM(amt)
FROM expenses
WHERE user_id = ?
GROUP BY date
ORDER BY date`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sum by date: %w", err)
	}
	defer rows.Close()

	var totals []domain.DateTotal
	for rows.Next() {
		var date string
		var total int64
		if err := rows.Scan(&date, &total); err != nil {
			return nil, fmt.Errorf("scan date total: %w", err)
		}
		totals = append(totals, domain.DateTotal{Date: date, Total: float64(total)})
	}
	return totals, rows.Err()
}

func (r *ExpenseRepository) TotalAll(ctx context.Context, userID int64) (int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `
SELECT COALESCE(SUM(amt), 0)
FROM expenses
WHERE user_id = ?`,
		userID,
	).Scan(&total); err != nil {
		return 0, fmt.Errorf("total all: %w", err)
	}
	return total, nil
}

func collectExpenses(rows *sql.Rows) ([]domain.Expense, error) {
	var expenses []domain.Expense
	for rows.Next() {
		var e domain.Expense
		var dateText string
		if err := rows.Scan(&e.ID, &e.Desc, &e.Amt, &e.Category, &dateText, &e.UserID); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		date, err := time.Parse(domain.DateLayout, dateText)
		if err != nil {
			return nil, fmt.Errorf("parse expense date %q: %w", dateText, err)
		}
		e.Date = date
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}
