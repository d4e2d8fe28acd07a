package parsing

import (
	"context"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

var _ = Describe("RuleClassifier", func() {
	var (
		classifier *RuleClassifier
		itemName   string
		category   Category
	)

	BeforeEach(func() {
		classifier = NewRuleClassifier()
	})

	JustBeforeEach(func() {
		category = classifier.Classify(context.Background(), itemName)
	})

	When("the name contains a food keyword", func() {
		BeforeEach(func() {
			itemName = "chicken breast"
		})

		It("returns Food", func() {
			Expect(category).To(Equal(CategoryFood))
		})
	})

	When("the name contains an electronics keyword", func() {
		BeforeEach(func() {
			itemName = "USB charger"
		})

		It("returns Shopping", func() {
			Expect(category).To(Equal(CategoryShopping))
		})
	})

	When("the name contains a health keyword", func() {
		BeforeEach(func() {
			itemName = "cough syrup"
		})

		It("returns Health", func() {
			Expect(category).To(Equal(CategoryHealth))
		})
	})

	When("the name contains a transport keyword", func() {
		BeforeEach(func() {
			itemName = "bus ticket"
		})

		It("returns Transport", func() {
			Expect(category).To(Equal(CategoryTransport))
		})
	})

	When("the name matches several keyword sets", func() {
		BeforeEach(func() {
			// "tablet" is both an electronics and a health keyword
			itemName = "tablet"
		})

		It("prefers the earlier set", func() {
			Expect(category).To(Equal(CategoryShopping))
		})
	})

	When("the name is empty", func() {
		BeforeEach(func() {
			itemName = ""
		})

		It("returns Other", func() {
			Expect(category).To(Equal(CategoryOther))
		})
	})

	When("the name matches nothing", func() {
		BeforeEach(func() {
			itemName = "movie night"
		})

		It("returns Other", func() {
			Expect(category).To(Equal(CategoryOther))
		})
	})
})

var _ = Describe("NormalizeLabel", func() {
	It("maps fine-grained labels to the coarse vocabulary", func() {
		category, ok := NormalizeLabel("Groceries")
		Expect(ok).To(BeTrue())
		Expect(category).To(Equal(CategoryFood))

		category, ok = NormalizeLabel("Movies")
		Expect(ok).To(BeTrue())
		Expect(category).To(Equal(CategoryEntertainment))

		category, ok = NormalizeLabel("Bills")
		Expect(ok).To(BeTrue())
		Expect(category).To(Equal(CategoryUtilities))
	})

	It("reports unknown labels and defaults them to Other", func() {
		category, ok := NormalizeLabel("Cryptocurrency")
		Expect(ok).To(BeFalse())
		Expect(category).To(Equal(CategoryOther))
	})
})

var _ = Describe("ZeroShotClassifier", func() {
	var (
		server     *ghttp.Server
		classifier *ZeroShotClassifier
		err        error
	)

	BeforeEach(func() {
		server = ghttp.NewServer()
	})

	AfterEach(func() {
		server.Close()
	})

	When("the endpoint answers the probe", func() {
		BeforeEach(func() {
			server.AppendHandlers(
				ghttp.RespondWithJSONEncoded(http.StatusOK, zeroShotResponse{
					Labels: []string{"Other"},
					Scores: []float64{0.9},
				}),
			)
			classifier, err = NewZeroShotClassifier(server.URL())
		})

		It("initializes", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(classifier).NotTo(BeNil())
		})

		It("normalizes the top-ranked label", func() {
			server.AppendHandlers(
				ghttp.RespondWithJSONEncoded(http.StatusOK, zeroShotResponse{
					Labels: []string{"Pharmacy", "Groceries"},
					Scores: []float64{0.8, 0.2},
				}),
			)
			Expect(classifier.Classify(context.Background(), "aspirin")).To(Equal(CategoryHealth))
		})

		It("falls back to rules on a server error", func() {
			server.AppendHandlers(
				ghttp.RespondWith(http.StatusInternalServerError, "model loading"),
			)
			Expect(classifier.Classify(context.Background(), "bus ticket")).To(Equal(CategoryTransport))
		})

		It("falls back to rules on an unrecognized label", func() {
			server.AppendHandlers(
				ghttp.RespondWithJSONEncoded(http.StatusOK, zeroShotResponse{
					Labels: []string{"Cryptocurrency"},
					Scores: []float64{0.9},
				}),
			)
			Expect(classifier.Classify(context.Background(), "chicken curry")).To(Equal(CategoryFood))
		})
	})

	When("the endpoint is down", func() {
		BeforeEach(func() {
			url := server.URL()
			server.Close()
			classifier, err = NewZeroShotClassifier(url)
		})

		It("fails initialization", func() {
			Expect(err).To(HaveOccurred())
			Expect(classifier).To(BeNil())
		})
	})

	When("no endpoint is configured", func() {
		It("fails initialization", func() {
			_, err := NewZeroShotClassifier("")
			Expect(err).To(HaveOccurred())
		})
	})
})
