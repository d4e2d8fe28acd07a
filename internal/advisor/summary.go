package advisor

import (
	"fmt"
	"sort"
	"strings"
)

// categoryTotal pairs a category with its summed spend
type categoryTotal struct {
	Category string
	Amount   float64
}

// totalAmount sums all expense amounts
func totalAmount(expenses []Expense) float64 {
	var total float64
	for _, e := range expenses {
		total += e.Amount
	}
	return total
}

// categoryTotals sums spend per category, largest first
func categoryTotals(expenses []Expense) []categoryTotal {
	sums := make(map[string]float64)
	for _, e := range expenses {
		sums[e.Category] += e.Amount
	}

	totals := make([]categoryTotal, 0, len(sums))
	for category, amount := range sums {
		totals = append(totals, categoryTotal{Category: category, Amount: amount})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Amount != totals[j].Amount {
			return totals[i].Amount > totals[j].Amount
		}
		return totals[i].Category < totals[j].Category
	})
	return totals
}

// flagCounts counts red and green flagged expenses
func flagCounts(expenses []Expense) (red, green int) {
	for _, e := range expenses {
		switch e.Flag {
		case "red":
			red++
		case "green":
			green++
		}
	}
	return red, green
}

// Summarize renders a deterministic plain-text overview of the expenses:
// total, per-category breakdown sorted by spend, and flag counts. It is
// both the context handed to the language model and the raw material for
// the rule-based responder.
func Summarize(expenses []Expense) string {
	if len(expenses) == 0 {
		return "No expenses recorded yet."
	}

	total := totalAmount(expenses)
	red, green := flagCounts(expenses)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Total expenses: ₹%.2f across %d transactions.\n", total, len(expenses))
	sb.WriteString("Spending by category:\n")
	for _, ct := range categoryTotals(expenses) {
		percentage := ct.Amount / total * 100
		fmt.Fprintf(&sb, "  - %s: ₹%.2f (%.1f%%)\n", ct.Category, ct.Amount, percentage)
	}
	fmt.Fprintf(&sb, "Flagged expenses: %d concerning (red), %d good choices (green)", red, green)

	return sb.String()
}
