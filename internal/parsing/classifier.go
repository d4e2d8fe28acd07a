package parsing

import (
	"context"
	"strings"
)

// Classifier assigns a category to an item name. Implementations never
// fail: there is always a category, even if it is CategoryOther.
type Classifier interface {
	Classify(ctx context.Context, itemName string) Category
}

// RuleClassifier is the deterministic keyword fallback. Keyword sets are
// tried in a fixed priority order; the first set containing a substring of
// the lowercased item name wins.
type RuleClassifier struct{}

// NewRuleClassifier creates a new RuleClassifier.
func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{}
}

var foodKeywords = []string{
	"bread", "milk", "cheese", "fruit", "vegetable", "rice", "pasta",
	"meat", "chicken", "beef", "pork", "fish", "coffee", "tea", "juice",
	"water", "soda", "beer", "wine",
}

var electronicsKeywords = []string{
	"phone", "laptop", "computer", "tablet", "headphones", "charger",
	"cable", "battery",
}

var healthKeywords = []string{
	"medicine", "tablet", "capsule", "syrup", "cream", "bandage", "vitamin",
}

var transportKeywords = []string{
	"fuel", "gas", "petrol", "diesel", "ticket", "bus", "train", "taxi", "uber",
}

// Classify matches the item name against the keyword sets. There is no
// keyword set for Entertainment or Utilities; those categories are only
// reachable through the model-backed path.
func (c *RuleClassifier) Classify(_ context.Context, itemName string) Category {
	lower := strings.ToLower(itemName)

	if containsAny(lower, foodKeywords) {
		return CategoryFood
	}
	if containsAny(lower, electronicsKeywords) {
		return CategoryShopping
	}
	if containsAny(lower, healthKeywords) {
		return CategoryHealth
	}
	if containsAny(lower, transportKeywords) {
		return CategoryTransport
	}
	return CategoryOther
}

func containsAny(s string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}
