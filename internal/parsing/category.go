package parsing

// Category is one of the fixed output categories every classified item
// must land in.
type Category string

const (
	CategoryFood          Category = "Food"
	CategoryShopping      Category = "Shopping"
	CategoryHealth        Category = "Health"
	CategoryTransport     Category = "Transport"
	CategoryEntertainment Category = "Entertainment"
	CategoryUtilities     Category = "Utilities"
	CategoryOther         Category = "Other"
)

// candidateLabels is the fine-grained label set offered to the zero-shot
// classifier. Results are normalized back down to a Category.
var candidateLabels = []string{
	"Groceries", "Food", "Beverages", "Electronics", "Technology",
	"Pharmacy", "Medicine", "Healthcare", "Clothing", "Fashion",
	"Transport", "Transportation", "Fuel", "Entertainment",
	"Movies", "Games", "Utilities", "Bills", "Other",
}

// labelCategories maps fine-grained classifier labels to the coarse
// category vocabulary.
var labelCategories = map[string]Category{
	"Groceries":      CategoryFood,
	"Food":           CategoryFood,
	"Beverages":      CategoryFood,
	"Drinks":         CategoryFood,
	"Electronics":    CategoryShopping,
	"Technology":     CategoryShopping,
	"Pharmacy":       CategoryHealth,
	"Medicine":       CategoryHealth,
	"Healthcare":     CategoryHealth,
	"Clothing":       CategoryShopping,
	"Fashion":        CategoryShopping,
	"Transport":      CategoryTransport,
	"Transportation": CategoryTransport,
	"Fuel":           CategoryTransport,
	"Gas":            CategoryTransport,
	"Entertainment":  CategoryEntertainment,
	"Movies":         CategoryEntertainment,
	"Games":          CategoryEntertainment,
	"Utilities":      CategoryUtilities,
	"Bills":          CategoryUtilities,
	"Other":          CategoryOther,
}

// NormalizeLabel maps a raw classifier label into the category vocabulary.
// The boolean reports whether the label was recognized; unrecognized labels
// normalize to CategoryOther.
func NormalizeLabel(label string) (Category, bool) {
	if category, ok := labelCategories[label]; ok {
		return category, true
	}
	return CategoryOther, false
}
