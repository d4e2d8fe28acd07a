package parsing

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// fixedTimeSource pins the pipeline clock for deterministic dates
type fixedTimeSource struct {
	now time.Time
}

func (t *fixedTimeSource) Now() time.Time {
	return t.now
}

var _ = Describe("Pipeline", func() {
	var (
		pipeline    *Pipeline
		rawText     string
		description string
		expenses    []CategorizedExpense
		err         error
	)

	BeforeEach(func() {
		timeSource := &fixedTimeSource{now: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)}
		pipeline = NewPipelineWithTimeSource(NewRuleClassifier(), timeSource)
		description = "Groceries"
	})

	JustBeforeEach(func() {
		expenses, err = pipeline.Process(context.Background(), rawText, description)
	})

	When("processing a readable receipt", func() {
		BeforeEach(func() {
			rawText = "Milk 45.00\nBread 30.50\nTotal 75.50"
		})

		It("does not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("emits one categorized expense per item, skipping the total line", func() {
			Expect(expenses).To(Equal([]CategorizedExpense{
				{Amount: 45.00, Category: CategoryFood, Description: "Groceries - Milk", Date: "2026-03-14"},
				{Amount: 30.50, Category: CategoryFood, Description: "Groceries - Bread", Date: "2026-03-14"},
			}))
		})
	})

	When("the text is whitespace only", func() {
		BeforeEach(func() {
			rawText = "  "
		})

		It("fails with an unreadable-input error", func() {
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, ErrUnreadableInput)).To(BeTrue())
		})

		It("is not the no-items error", func() {
			Expect(errors.Is(err, ErrNoItems)).To(BeFalse())
		})
	})

	When("the text holds no prices at all", func() {
		BeforeEach(func() {
			rawText = "hello world this has no prices"
		})

		It("fails with a no-items error", func() {
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, ErrNoItems)).To(BeTrue())
		})

		It("is not the unreadable-input error", func() {
			Expect(errors.Is(err, ErrUnreadableInput)).To(BeFalse())
		})
	})

	When("items span multiple categories", func() {
		BeforeEach(func() {
			rawText = "Bus ticket 15.00\nParacetamol medicine 8.50\nNotebook 45.00"
			description = "Errands"
		})

		It("classifies each item independently", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(expenses).To(HaveLen(3))
			Expect(expenses[0].Category).To(Equal(CategoryTransport))
			Expect(expenses[1].Category).To(Equal(CategoryHealth))
			Expect(expenses[2].Category).To(Equal(CategoryOther))
		})

		It("prefixes every description", func() {
			Expect(expenses[0].Description).To(Equal("Errands - Bus ticket"))
		})
	})
})
