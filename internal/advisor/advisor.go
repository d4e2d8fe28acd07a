// Package advisor produces natural-language answers about a user's
// spending, either through a hosted language model or a deterministic
// keyword matcher.
package advisor

import "context"

// Expense is the advisor's view of a stored expense record
type Expense struct {
	Amount      float64
	Category    string
	Description string
	Date        string
	Flag        string
}

// Responder answers free-text questions about a set of expenses and
// produces standing analysis reports.
type Responder interface {
	// Chat answers a user's question in the context of their expenses
	Chat(ctx context.Context, query string, expenses []Expense) (string, error)
	// Analyze produces a spending analysis report
	Analyze(ctx context.Context, expenses []Expense) (string, error)
}
