package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"expense-ledger/internal/domain"
)

type ExpenseRepositorySuite struct {
	suite.Suite
	db    *sql.DB
	users *UserRepository
	repo  *ExpenseRepository
	ctx   context.Context

	alice int64
	bob   int64
}

func (s *ExpenseRepositorySuite) SetupTest() {
	db, err := Open(":memory:")
	require.NoError(s.T(), err, "failed to open test database")
	require.NoError(s.T(), ApplyMigrations(db))

	s.db = db
	s.users = NewUserRepository(db).(*UserRepository)
	s.repo = NewExpenseRepository(db).(*ExpenseRepository)
	s.ctx = context.Background()

	s.alice = s.createUser("alice")
	s.bob = s.createUser("bob")
}

func (s *ExpenseRepositorySuite) TearDownTest() {
	if s.db != nil {
		s.db.Close()
	}
}

func (s *ExpenseRepositorySuite) createUser(username string) int64 {
	id, err := s.users.Create(s.ctx, &domain.User{Username: username, PasswordHash: "x"})
	require.NoError(s.T(), err)
	return id
}

func (s *ExpenseRepositorySuite) addExpense(userID int64, desc string, amt int64, category, date string) int64 {
	day, err := time.Parse(domain.DateLayout, date)
	require.NoError(s.T(), err)
	id, err := s.repo.Create(s.ctx, &domain.Expense{
		Desc:     desc,
		Amt:      amt,
		Category: category,
		Date:     day,
		UserID:   userID,
	})
	require.NoError(s.T(), err)
	return id
}

func (s *ExpenseRepositorySuite) TestCreateAndList() {
	s.addExpense(s.alice, "Coffee", 5, "Food", "2024-01-01")
	s.addExpense(s.alice, "Bus", 3, "Transport", "2024-01-02")
	s.addExpense(s.bob, "Cinema", 9, "Fun", "2024-01-02")

	expenses, err := s.repo.ListByUser(s.ctx, s.alice)
	require.NoError(s.T(), err)
	require.Len(s.T(), expenses, 2)

	// store order is id ascending
	assert.Equal(s.T(), "Coffee", expenses[0].Desc)
	assert.Equal(s.T(), "Bus", expenses[1].Desc)
	assert.Equal(s.T(), "2024-01-01", expenses[0].DateText())
	assert.Equal(s.T(), s.alice, expenses[0].UserID)
}

func (s *ExpenseRepositorySuite) TestRecentNewestFirst() {
	for i, desc := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		s.addExpense(s.alice, desc, int64(i+1), "Misc", "2024-01-01")
	}

	recent, err := s.repo.RecentByUser(s.ctx, s.alice, 5)
	require.NoError(s.T(), err)
	require.Len(s.T(), recent, 5)
	assert.Equal(s.T(), "g", recent[0].Desc)
	assert.Equal(s.T(), "c", recent[4].Desc)
}

func (s *ExpenseRepositorySuite) TestDeleteOwnedMatchesOwner() {
	id := s.addExpense(s.alice, "Coffee", 5, "Food", "2024-01-01")

	deleted, err := s.repo.DeleteOwned(s.ctx, id, s.bob)
	require.NoError(s.T(), err)
	assert.False(s.T(), deleted, "bob must not delete alice's expense")

	deleted, err = s.repo.DeleteOwned(s.ctx, id, s.alice)
	require.NoError(s.T(), err)
	assert.True(s.T(), deleted)

	expenses, err := s.repo.ListByUser(s.ctx, s.alice)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), expenses)
}

func (s *ExpenseRepositorySuite) TestSumByCategory() {
	s.addExpense(s.alice, "Coffee", 5, "Food", "2024-01-01")
	s.addExpense(s.alice, "Bus", 3, "Transport", "2024-01-02")
	s.addExpense(s.alice, "Lunch", 12, "Food", "2024-01-02")
	s.addExpense(s.bob, "Cinema", 9, "Fun", "2024-01-02")

	totals, err := s.repo.SumByCategory(s.ctx, s.alice)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []domain.CategoryTotal{
		{Category: "Food", Total: 17},
		{Category: "Transport", Total: 3},
	}, totals)
}

func (s *ExpenseRepositorySuite) TestSumByDateAscending() {
	s.addExpense(s.alice, "Lunch", 12, "Food", "2024-01-02")
	s.addExpense(s.alice, "Coffee", 5, "Food", "2024-01-01")
	s.addExpense(s.alice, "Bus", 3, "Transport", "2024-01-02")

	totals, err := s.repo.SumByDate(s.ctx, s.alice)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []domain.DateTotal{
		{Date: "2024-01-01", Total: 5},
		{Date: "2024-01-02", Total: 15},
	}, totals)
}

func (s *ExpenseRepositorySuite) TestTotalAll() {
	total, err := s.repo.TotalAll(s.ctx, s.alice)
	require.NoError(s.T(), err)
	assert.Zero(s.T(), total, "empty ledger totals zero")

	s.addExpense(s.alice, "Coffee", 5, "Food", "2024-01-01")
	s.addExpense(s.alice, "Bus", 3, "Transport", "2024-01-02")

	total, err = s.repo.TotalAll(s.ctx, s.alice)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(8), total)
}

func (s *ExpenseRepositorySuite) TestDuplicateUsernameRejected() {
	_, err := s.users.Create(s.ctx, &domain.User{Username: "alice", PasswordHash: "y"})
	require.Error(s.T(), err)
	assert.Contains(s.T(), err.Error(), "already exists")
}

func TestExpenseRepositorySuite(t *testing.T) {
	suite.Run(t, new(ExpenseRepositorySuite))
}
