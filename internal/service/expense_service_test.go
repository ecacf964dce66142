package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expense-ledger/internal/domain"
)

func newExpenseFixture(t *testing.T) (ExpenseService, int64, int64) {
	users, expenses := testRepos(t)
	ctx := context.Background()

	alice, err := users.Create(ctx, &domain.User{Username: "alice", PasswordHash: "x"})
	require.NoError(t, err)
	bob, err := users.Create(ctx, &domain.User{Username: "bob", PasswordHash: "x"})
	require.NoError(t, err)

	return NewExpenseService(expenses), alice, bob
}

func TestAddExpense(t *testing.T) {
	svc, alice, _ := newExpenseFixture(t)
	ctx := context.Background()

	expense, err := svc.Add(ctx, alice, "Coffee", "5", "Food", "2024-01-01")
	require.NoError(t, err)
	assert.NotZero(t, expense.ID)
	assert.Equal(t, int64(5), expense.Amt)
	assert.Equal(t, "2024-01-01", expense.DateText())
	assert.Equal(t, alice, expense.UserID)
}

func TestAddExpenseDefaultsDateToToday(t *testing.T) {
	svc, alice, _ := newExpenseFixture(t)

	expense, err := svc.Add(context.Background(), alice, "Coffee", "5", "Food", "")
	require.NoError(t, err)
	assert.Equal(t, time.Now().Format(domain.DateLayout), expense.DateText())
}

func TestAddExpenseValidation(t *testing.T) {
	svc, alice, _ := newExpenseFixture(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		desc     string
		amt      string
		category string
		date     string
	}{
		{"blank description", "", "5", "Food", "2024-01-01"},
		{"long description", strings.Repeat("x", 101), "5", "Food", "2024-01-01"},
		{"blank category", "Coffee", "5", "", "2024-01-01"},
		{"long category", "Coffee", "5", strings.Repeat("x", 21), "2024-01-01"},
		{"fractional amount", "Coffee", "5.50", "Food", "2024-01-01"},
		{"non-numeric amount", "Coffee", "five", "Food", "2024-01-01"},
		{"malformed date", "Coffee", "5", "Food", "01/01/2024"},
		{"impossible date", "Coffee", "5", "Food", "2024-13-40"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Add(ctx, alice, tc.desc, tc.amt, tc.category, tc.date)
			assert.ErrorIs(t, err, ErrInvalidExpense)
		})
	}

	list, err := svc.List(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, list, "rejected expenses must not be persisted")
}

func TestDeleteExpense(t *testing.T) {
	svc, alice, _ := newExpenseFixture(t)
	ctx := context.Background()

	expense, err := svc.Add(ctx, alice, "Coffee", "5", "Food", "2024-01-01")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, alice, expense.ID))

	list, err := svc.List(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.ErrorIs(t, svc.Delete(ctx, alice, expense.ID), ErrExpenseNotFound)
}

func TestDeleteExpenseOtherUser(t *testing.T) {
	svc, alice, bob := newExpenseFixture(t)
	ctx := context.Background()

	expense, err := svc.Add(ctx, alice, "Coffee", "5", "Food", "2024-01-01")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, bob, expense.ID), ErrExpenseNotFound)

	list, err := svc.List(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, list, 1, "the record must survive a foreign delete")
}

func TestRecentReturnsLastFiveNewestFirst(t *testing.T) {
	svc, alice, _ := newExpenseFixture(t)
	ctx := context.Background()

	for _, desc := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		_, err := svc.Add(ctx, alice, desc, "1", "Misc", "2024-01-01")
		require.NoError(t, err)
	}

	recent, err := svc.Recent(ctx, alice)
	require.NoError(t, err)
	require.Len(t, recent, 5)
	assert.Equal(t, "g", recent[0].Desc)
	assert.Equal(t, "c", recent[4].Desc)
}
