package advisor

import (
	"context"
	"fmt"
	"strings"
)

// RuleResponder is the deterministic fallback: it matches the query
// against keyword buckets and answers from computed statistics. It never
// fails.
type RuleResponder struct{}

// NewRuleResponder creates a new RuleResponder
func NewRuleResponder() *RuleResponder {
	return &RuleResponder{}
}

var (
	totalQueryWords   = []string{"total", "spent", "spend", "money", "much"}
	categoryWords     = []string{"category", "categories", "breakdown", "where"}
	budgetWords       = []string{"budget", "save", "saving", "reduce", "cut"}
	adviceWords       = []string{"advice", "tip", "tips", "help", "improve"}
	recentQueryWords  = []string{"recent", "latest", "last", "yesterday", "today"}
	highestQueryWords = []string{"highest", "biggest", "largest", "most", "expensive"}
	greetingWords     = []string{"hello", "hi", "hey", "start"}
)

var savingTips = []string{
	"Cook at home more - it's usually 3x cheaper than eating out",
	"Use the 24-hour rule for non-essential purchases over ₹500",
	"Set up spending alerts to stay aware of your habits",
	"Focus on your top 3 expense categories for maximum impact",
	"Automate your savings - pay yourself first",
	"Make a shopping list and stick to it to avoid impulse buys",
}

func matchesAny(query string, words []string) bool {
	for _, word := range words {
		if strings.Contains(query, word) {
			return true
		}
	}
	return false
}

// Chat answers the query from keyword buckets tried in a fixed order
func (r *RuleResponder) Chat(_ context.Context, query string, expenses []Expense) (string, error) {
	queryLower := strings.ToLower(strings.TrimSpace(query))
	total := totalAmount(expenses)

	switch {
	case matchesAny(queryLower, totalQueryWords):
		if len(expenses) == 0 {
			return "You haven't recorded any expenses yet. Start tracking to see your spending patterns!", nil
		}
		return fmt.Sprintf("You've spent a total of ₹%.2f across %d transactions.", total, len(expenses)), nil

	case matchesAny(queryLower, categoryWords):
		if len(expenses) == 0 {
			return "You don't have any expenses categorized yet. Add some expenses to see the breakdown!", nil
		}
		var sb strings.Builder
		sb.WriteString("Your spending by category:\n")
		totals := categoryTotals(expenses)
		shown := totals
		if len(shown) > 5 {
			shown = shown[:5]
		}
		for _, ct := range shown {
			fmt.Fprintf(&sb, "- %s: ₹%.2f (%.1f%%)\n", ct.Category, ct.Amount, ct.Amount/total*100)
		}
		if len(totals) > 5 {
			fmt.Fprintf(&sb, "... and %d more categories", len(totals)-5)
		}
		return strings.TrimRight(sb.String(), "\n"), nil

	case matchesAny(queryLower, budgetWords):
		if len(expenses) == 0 {
			return "Budgeting tips: start by tracking all your expenses, set realistic limits for each category, and use the 50/30/20 rule as a guideline.", nil
		}
		avg := total / float64(len(expenses))
		return fmt.Sprintf("Budgeting tips for you:\n- Your average transaction is ₹%.2f\n- Try the 50/30/20 rule: 50%% needs, 30%% wants, 20%% savings\n- Set weekly spending limits to stay on track\n- Review your largest expenses first for savings opportunities", avg), nil

	case matchesAny(queryLower, adviceWords):
		tip := savingTips[len(expenses)%len(savingTips)]
		return fmt.Sprintf("Smart money tip: %s", tip), nil

	case matchesAny(queryLower, recentQueryWords):
		if len(expenses) == 0 {
			return "You haven't recorded any recent expenses. Add your first expense to get started!", nil
		}
		latest := expenses[0]
		return fmt.Sprintf("Your most recent expense: ₹%.2f on %s (%s, %s).", latest.Amount, latest.Description, latest.Category, latest.Date), nil

	case matchesAny(queryLower, highestQueryWords):
		if len(expenses) == 0 {
			return "No expenses to analyze yet. Add some expenses first!", nil
		}
		highest := expenses[0]
		for _, e := range expenses[1:] {
			if e.Amount > highest.Amount {
				highest = e
			}
		}
		return fmt.Sprintf("Your highest expense: ₹%.2f on %s (%q, %s).", highest.Amount, highest.Category, highest.Description, highest.Date), nil

	case matchesAny(queryLower, greetingWords):
		if len(expenses) == 0 {
			return "Hello! I'm your Brokemate assistant. Ask me about your total spending, category breakdowns, money-saving tips, or recent expenses once you've added some transactions.", nil
		}
		return fmt.Sprintf("Hello! I'm your Brokemate assistant. You currently have %d transactions totaling ₹%.2f. Ask me about your total spending, category breakdowns, money-saving tips, or recent expenses.", len(expenses), total), nil

	default:
		return "I can help with your spending! Try asking about your total, a category breakdown, budgeting, recent expenses, or money-saving tips.", nil
	}
}

// Analyze produces a plain-text analysis report from the summary statistics
func (r *RuleResponder) Analyze(_ context.Context, expenses []Expense) (string, error) {
	if len(expenses) == 0 {
		return "You haven't added any expenses yet! Start tracking your spending to get personalized insights.", nil
	}

	total := totalAmount(expenses)
	avg := total / float64(len(expenses))
	red, green := flagCounts(expenses)
	top := categoryTotals(expenses)[0]

	tip := "Your spending looks well-distributed across categories. Keep it up!"
	if top.Amount > total*0.4 {
		tip = fmt.Sprintf("Consider reviewing your %s expenses - they're your biggest spending category!", strings.ToLower(top.Category))
	}

	return fmt.Sprintf(`Financial Analysis Report

Spending overview:
- Total expenses: ₹%.2f
- Number of transactions: %d
- Average expense: ₹%.2f

Top spending category: %s (₹%.2f)

Flags summary:
- Concerning expenses: %d
- Good spending choices: %d

Smart tip: %s`, total, len(expenses), avg, top.Category, top.Amount, red, green, tip), nil
}
