package domain

import "time"

// DateLayout is the textual calendar-date format used everywhere an expense
// date crosses a boundary: forms, storage, aggregation labels, CSV rows.
const DateLayout = "2006-01-02"

// Expense is a single spending entry recorded by a user. Amounts are whole
// integer units; fractional cents are not modeled.
type Expense struct {
	ID       int64
	Desc     string
	Amt      int64
	Category string
	Date     time.Time
	UserID   int64
}

// DateText renders the expense date in the canonical YYYY-MM-DD form.
func (e Expense) DateText() string {
	return e.Date.Format(DateLayout)
}

// Record flattens the expense into the plain row shape kept in the
// session stash and written to CSV exports.
func (e Expense) Record() ExpenseRecord {
	return ExpenseRecord{
		Desc:     e.Desc,
		Amt:      e.Amt,
		Category: e.Category,
		Date:     e.DateText(),
	}
}

// ExpenseRecord is a detached expense row: no id, no owner, date already
// formatted as text.
type ExpenseRecord struct {
	Desc     string
	Amt      int64
	Category string
	Date     string
}

// CategoryTotal is one slice of the by-category aggregation.
type CategoryTotal struct {
	Category string
	Total    float64
}

// DateTotal is one slice of the by-date aggregation, Date in YYYY-MM-DD form.
type DateTotal struct {
	Date  string
	Total float64
}
