package parsing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnreadableInput indicates the OCR text was too short to contain
// anything useful.
var ErrUnreadableInput = errors.New("could not extract readable text from the image")

// ErrNoItems indicates that no valid item/price pairs survived extraction.
var ErrNoItems = errors.New("no items could be extracted from the receipt")

// CategorizedExpense is the pipeline's terminal output, one per extracted
// item.
type CategorizedExpense struct {
	Amount      float64  `json:"amount"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
	Date        string   `json:"date"` // YYYY-MM-DD
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Pipeline turns raw OCR text into categorized expense records. It holds
// no per-call state; invocations are independent.
type Pipeline struct {
	classifier Classifier
	timeSource TimeSource
}

// NewPipeline creates a Pipeline using the given classifier and the real
// clock.
func NewPipeline(classifier Classifier) *Pipeline {
	return &Pipeline{
		classifier: classifier,
		timeSource: &defaultTimeSource{},
	}
}

// NewPipelineWithTimeSource creates a Pipeline with a custom time source
// for testing.
func NewPipelineWithTimeSource(classifier Classifier, timeSource TimeSource) *Pipeline {
	return &Pipeline{
		classifier: classifier,
		timeSource: timeSource,
	}
}

// Process extracts items from rawText, classifies each one, and emits the
// resulting expenses in extraction order. The expense date is the current
// day in UTC. The two failure modes stay distinguishable with errors.Is so
// callers can log them separately even when they surface the same response.
func (p *Pipeline) Process(ctx context.Context, rawText, description string) ([]CategorizedExpense, error) {
	if len(strings.TrimSpace(rawText)) < 5 {
		return nil, fmt.Errorf("%w: ensure the image is clear and well-lit", ErrUnreadableInput)
	}

	items := ExtractItems(rawText)
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: ensure the receipt shows clear item names and prices", ErrNoItems)
	}

	today := p.timeSource.Now().UTC().Format("2006-01-02")

	expenses := make([]CategorizedExpense, 0, len(items))
	for _, item := range items {
		category := p.classifier.Classify(ctx, item.Name)
		expenses = append(expenses, CategorizedExpense{
			Amount:      item.Price,
			Category:    category,
			Description: fmt.Sprintf("%s - %s", description, item.Name),
			Date:        today,
		})
	}

	return expenses, nil
}
