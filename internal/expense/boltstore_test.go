package expense

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BoltStore", func() {
	var (
		tempDir string
		store   *BoltStore
		err     error
	)

	BeforeEach(func() {
		tempDir, err = os.MkdirTemp("", "brokemate-test-*")
		Expect(err).NotTo(HaveOccurred())

		store, err = NewBoltStore(filepath.Join(tempDir, "test.db"))
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		store.Close()
		os.RemoveAll(tempDir)
	})

	Describe("users", func() {
		It("round-trips a user", func() {
			user := &User{
				Username:       "alice@example.com",
				HashedPassword: "hashed",
				CreatedAt:      time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
			}
			Expect(store.CreateUser(user)).To(Succeed())

			got, err := store.GetUser("alice@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Username).To(Equal("alice@example.com"))
			Expect(got.HashedPassword).To(Equal("hashed"))
		})

		It("rejects duplicate usernames", func() {
			user := &User{Username: "alice@example.com"}
			Expect(store.CreateUser(user)).To(Succeed())
			Expect(errors.Is(store.CreateUser(user), ErrUserExists)).To(BeTrue())
		})

		It("returns ErrNotFound for unknown users", func() {
			_, err := store.GetUser("nobody")
			Expect(errors.Is(err, ErrNotFound)).To(BeTrue())
		})
	})

	Describe("expenses", func() {
		BeforeEach(func() {
			Expect(store.CreateUser(&User{Username: "alice@example.com"})).To(Succeed())
		})

		It("round-trips an expense", func() {
			expense := &Expense{
				ID:          "e1",
				Amount:      45.00,
				Category:    "Food",
				Description: "Groceries - Milk",
				Date:        "2026-03-14",
			}
			Expect(store.SaveExpense("alice@example.com", expense)).To(Succeed())

			got, err := store.GetExpense("alice@example.com", "e1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(expense))
		})

		It("lists all expenses for a user", func() {
			Expect(store.SaveExpense("alice@example.com", &Expense{ID: "e1", Amount: 1})).To(Succeed())
			Expect(store.SaveExpense("alice@example.com", &Expense{ID: "e2", Amount: 2})).To(Succeed())

			expenses, err := store.ListExpenses("alice@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(expenses).To(HaveLen(2))
		})

		It("keeps users isolated", func() {
			Expect(store.CreateUser(&User{Username: "bob@example.com"})).To(Succeed())
			Expect(store.SaveExpense("alice@example.com", &Expense{ID: "e1", Amount: 1})).To(Succeed())

			expenses, err := store.ListExpenses("bob@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(expenses).To(BeEmpty())
		})

		It("deletes an expense", func() {
			Expect(store.SaveExpense("alice@example.com", &Expense{ID: "e1", Amount: 1})).To(Succeed())
			Expect(store.DeleteExpense("alice@example.com", "e1")).To(Succeed())

			_, err := store.GetExpense("alice@example.com", "e1")
			Expect(errors.Is(err, ErrNotFound)).To(BeTrue())
		})

		It("returns ErrNotFound when deleting a missing expense", func() {
			Expect(errors.Is(store.DeleteExpense("alice@example.com", "nope"), ErrNotFound)).To(BeTrue())
		})

		It("returns ErrNotFound for operations on unknown users", func() {
			_, err := store.ListExpenses("nobody")
			Expect(errors.Is(err, ErrNotFound)).To(BeTrue())
		})
	})
})
