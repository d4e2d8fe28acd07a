package parsing

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ItemCandidate is a single item/price pair pulled out of OCR text.
type ItemCandidate struct {
	Name  string
	Price float64
}

const (
	// maxItemPrice rejects OCR garbage (dates, barcodes, page numbers)
	// misread as prices on the primary extraction path.
	maxItemPrice = 1_000_000

	// maxFallbackAmount is the stricter bound used when salvaging bare
	// amounts from otherwise unparseable text.
	maxFallbackAmount = 100_000

	// maxFallbackItems limits how many bare amounts the fallback turns
	// into synthetic items.
	maxFallbackItems = 5
)

// itemPatterns are tried per line in priority order; the first pattern that
// yields a parseable, valid candidate wins. They tolerate dollar and rupee
// symbols, an "Rs." prefix, and both '.' and ',' as the decimal separator.
// The trailing anchor means a quantity earlier in the line is never mistaken
// for the price.
var itemPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(.*?)[\s:]+(\d+[.,]\d{2})$`),
	regexp.MustCompile(`^(.*?)[\s:]+\$?\s*(\d+[.,]\d{2})$`),
	regexp.MustCompile(`^(.*?)[\s:]+₹?\s*(\d+[.,]\d{2})$`),
	regexp.MustCompile(`^(.*?)[\s:]+Rs\.?\s*(\d+[.,]\d{2})$`),
	regexp.MustCompile(`^(.*?)\s+(\d{1,6}\.\d{2})$`),
	regexp.MustCompile(`^(.*?)\s+(\d{1,6},\d{2})$`),
	regexp.MustCompile(`^(.*?)\s+(\d+)\.(\d{2})$`),
	regexp.MustCompile(`^(.*?)\s+(\d+),(\d{2})$`),
}

// bareAmountPattern matches any two-decimal number anywhere in the text,
// used only by the fallback path.
var bareAmountPattern = regexp.MustCompile(`\d+[.,]\d{2}`)

// trailingCurrencyPattern matches a currency marker left dangling at the end
// of a captured name. When the marker sits between the name and the amount
// with whitespace on both sides ("Samosa Rs. 25.00"), the generic pattern
// wins first and the lazy name capture absorbs the marker.
var trailingCurrencyPattern = regexp.MustCompile(`(\s+Rs\.?|\s*[₹$])$`)

// priceCharPattern strips everything but digits and separators from a
// captured price string.
var priceCharPattern = regexp.MustCompile(`[^\d.,]`)

// boilerplateWords disqualify a line from being treated as a purchasable
// item when any of them appears in the name, case-insensitively.
var boilerplateWords = []string{
	"total", "subtotal", "tax", "amount", "paid", "change",
	"balance", "receipt", "thank you",
}

// ExtractItems parses item/price candidates out of raw OCR text. Lines are
// processed in order and candidates come back in first-encountered order
// with no deduplication. Lines that match no pattern, fail to parse, or
// fail validation simply produce nothing. If the whole text yields no
// candidates, bare two-decimal amounts are salvaged as "Item N" entries.
func ExtractItems(text string) []ItemCandidate {
	var items []ItemCandidate

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		for _, pattern := range itemPatterns {
			match := pattern.FindStringSubmatch(line)
			if match == nil {
				continue
			}

			name := strings.TrimSpace(match[1])
			name = trailingCurrencyPattern.ReplaceAllString(name, "")

			// Patterns that capture the separator as its own group
			// yield integer and fractional parts separately.
			var priceStr string
			if len(match) == 4 {
				priceStr = fmt.Sprintf("%s.%s", match[2], match[3])
			} else {
				priceStr = strings.TrimSpace(match[2])
			}

			priceStr = priceCharPattern.ReplaceAllString(priceStr, "")
			priceStr = strings.ReplaceAll(priceStr, ",", ".")

			price, err := strconv.ParseFloat(priceStr, 64)
			if err != nil {
				continue
			}

			if validCandidate(name, price) {
				items = append(items, ItemCandidate{Name: name, Price: price})
				break
			}
		}
	}

	if len(items) == 0 {
		items = extractBareAmounts(text)
	}

	return items
}

// validCandidate applies the sanity checks that keep OCR noise out of the
// result: a positive bounded price, a name longer than one character that
// has not swallowed another price, and no receipt boilerplate in the name.
func validCandidate(name string, price float64) bool {
	if price <= 0 || price >= maxItemPrice {
		return false
	}
	if len(name) <= 1 {
		return false
	}
	// A name containing its own two-decimal amount means the line held
	// several prices and the lazy name capture absorbed the earlier ones.
	// Such lines are noise; the bare-amount fallback handles them.
	if bareAmountPattern.MatchString(name) {
		return false
	}
	lower := strings.ToLower(name)
	for _, word := range boilerplateWords {
		if strings.Contains(lower, word) {
			return false
		}
	}
	return true
}

// extractBareAmounts scans the whole text for two-decimal numbers and
// synthesizes "Item N" candidates from the first few, numbered by their
// position in the scan.
func extractBareAmounts(text string) []ItemCandidate {
	matches := bareAmountPattern.FindAllString(text, -1)
	if len(matches) > maxFallbackItems {
		matches = matches[:maxFallbackItems]
	}

	var items []ItemCandidate
	for idx, amountStr := range matches {
		amountStr = strings.ReplaceAll(amountStr, ",", ".")
		amount, err := strconv.ParseFloat(amountStr, 64)
		if err != nil {
			continue
		}
		if amount <= 0 || amount >= maxFallbackAmount {
			continue
		}
		items = append(items, ItemCandidate{
			Name:  fmt.Sprintf("Item %d", idx+1),
			Price: amount,
		})
	}
	return items
}
