package expense

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/brokemate/brokemate/internal/advisor"
)

// stubResponder is a canned advisor.Responder
type stubResponder struct {
	lastQuery   string
	panicOnChat bool
}

func (s *stubResponder) Chat(_ context.Context, query string, _ []advisor.Expense) (string, error) {
	if s.panicOnChat {
		panic("responder blew up")
	}
	s.lastQuery = query
	return "chat response", nil
}

func (s *stubResponder) Analyze(_ context.Context, _ []advisor.Expense) (string, error) {
	return "analysis report", nil
}

var _ = Describe("Server", func() {
	var (
		engine    *mockEngine
		responder *stubResponder
		server    *Server
	)

	BeforeEach(func() {
		engine = &mockEngine{}
		responder = &stubResponder{}

		tokens, err := NewTokenManager("test-secret", time.Hour)
		Expect(err).NotTo(HaveOccurred())

		service := newTestService(NewMemoryStore(), engine)
		_, err = service.Register("alice@example.com", "password123")
		Expect(err).NotTo(HaveOccurred())

		server = NewServer(service, responder, tokens, nil)
	})

	do := func(req *http.Request) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)
		return rec
	}

	login := func(username, password string) string {
		form := url.Values{"username": {username}, "password": {password}}
		req := httptest.NewRequest("POST", "/token", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := do(req)
		Expect(rec.Code).To(Equal(http.StatusOK))

		var body map[string]string
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body["token_type"]).To(Equal("bearer"))
		return body["access_token"]
	}

	authed := func(method, path string, body []byte, token string) *http.Request {
		req := httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+token)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		return req
	}

	Describe("health check", func() {
		It("answers without authentication", func() {
			rec := do(httptest.NewRequest("GET", "/", nil))
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring("healthy"))
		})
	})

	Describe("registration and login", func() {
		It("registers a new user", func() {
			payload := []byte(`{"username":"bob@example.com","password":"hunter22"}`)
			req := httptest.NewRequest("POST", "/register", bytes.NewReader(payload))
			rec := do(req)
			Expect(rec.Code).To(Equal(http.StatusCreated))
			Expect(rec.Body.String()).NotTo(ContainSubstring("hunter22"))
		})

		It("rejects duplicate registration", func() {
			payload := []byte(`{"username":"alice@example.com","password":"whatever"}`)
			req := httptest.NewRequest("POST", "/register", bytes.NewReader(payload))
			rec := do(req)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("issues a token for valid credentials", func() {
			token := login("alice@example.com", "password123")
			Expect(token).NotTo(BeEmpty())
		})

		It("rejects bad credentials", func() {
			form := url.Values{"username": {"alice@example.com"}, "password": {"wrong"}}
			req := httptest.NewRequest("POST", "/token", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			Expect(do(req).Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("authentication middleware", func() {
		It("rejects requests without a token", func() {
			Expect(do(httptest.NewRequest("GET", "/expenses", nil)).Code).To(Equal(http.StatusUnauthorized))
		})

		It("rejects garbage tokens", func() {
			req := httptest.NewRequest("GET", "/expenses", nil)
			req.Header.Set("Authorization", "Bearer nonsense")
			Expect(do(req).Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("expense endpoints", func() {
		var token string

		BeforeEach(func() {
			token = login("alice@example.com", "password123")
		})

		addExpense := func(amount float64, category, description, date string) *Expense {
			payload, _ := json.Marshal(expenseRequest{Amount: amount, Category: category, Description: description, Date: date})
			rec := do(authed("POST", "/add-expense", payload, token))
			Expect(rec.Code).To(Equal(http.StatusCreated))

			var e Expense
			Expect(json.Unmarshal(rec.Body.Bytes(), &e)).To(Succeed())
			return &e
		}

		It("adds and lists expenses", func() {
			addExpense(250.00, "Food", "Lunch", "2026-03-10")
			addExpense(150.00, "Transport", "Metro", "2026-03-12")

			rec := do(authed("GET", "/expenses", nil, token))
			Expect(rec.Code).To(Equal(http.StatusOK))

			var expenses []Expense
			Expect(json.Unmarshal(rec.Body.Bytes(), &expenses)).To(Succeed())
			Expect(expenses).To(HaveLen(2))
			Expect(expenses[0].Date).To(Equal("2026-03-12"))
		})

		It("rejects invalid expense payloads", func() {
			payload := []byte(`{"amount":-5,"category":"Food","date":"2026-03-10"}`)
			Expect(do(authed("POST", "/add-expense", payload, token)).Code).To(Equal(http.StatusBadRequest))
		})

		It("edits an expense", func() {
			e := addExpense(250.00, "Food", "Lunch", "2026-03-10")

			payload, _ := json.Marshal(expenseRequest{Amount: 300.00, Category: "Food", Description: "Dinner", Date: "2026-03-11"})
			rec := do(authed("PUT", "/edit-expense/"+e.ID, payload, token))
			Expect(rec.Code).To(Equal(http.StatusOK))

			var edited Expense
			Expect(json.Unmarshal(rec.Body.Bytes(), &edited)).To(Succeed())
			Expect(edited.Amount).To(Equal(300.00))
		})

		It("returns 404 when editing a missing expense", func() {
			payload, _ := json.Marshal(expenseRequest{Amount: 300.00, Category: "Food", Date: "2026-03-11"})
			Expect(do(authed("PUT", "/edit-expense/nope", payload, token)).Code).To(Equal(http.StatusNotFound))
		})

		It("flags an expense", func() {
			e := addExpense(250.00, "Food", "Lunch", "2026-03-10")

			payload := []byte(fmt.Sprintf(`{"id":%q,"flag":"red"}`, e.ID))
			rec := do(authed("POST", "/flag-expense", payload, token))
			Expect(rec.Code).To(Equal(http.StatusOK))

			var flagged Expense
			Expect(json.Unmarshal(rec.Body.Bytes(), &flagged)).To(Succeed())
			Expect(flagged.Flag).To(Equal(FlagRed))
		})

		It("deletes an expense", func() {
			e := addExpense(250.00, "Food", "Lunch", "2026-03-10")
			Expect(do(authed("DELETE", "/delete-expense/"+e.ID, nil, token)).Code).To(Equal(http.StatusNoContent))
			Expect(do(authed("DELETE", "/delete-expense/"+e.ID, nil, token)).Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("receipt processing", func() {
		var token string

		BeforeEach(func() {
			token = login("alice@example.com", "password123")
		})

		uploadReceipt := func(description string) *httptest.ResponseRecorder {
			var buf bytes.Buffer
			writer := multipart.NewWriter(&buf)
			part, err := writer.CreateFormFile("file", "receipt.png")
			Expect(err).NotTo(HaveOccurred())
			_, err = part.Write([]byte("fake image bytes"))
			Expect(err).NotTo(HaveOccurred())
			if description != "" {
				Expect(writer.WriteField("description", description)).To(Succeed())
			}
			Expect(writer.Close()).To(Succeed())

			req := httptest.NewRequest("POST", "/process-receipt", &buf)
			req.Header.Set("Authorization", "Bearer "+token)
			req.Header.Set("Content-Type", writer.FormDataContentType())
			return do(req)
		}

		When("the receipt parses", func() {
			BeforeEach(func() {
				engine.text = "Milk 45.00\nBread 30.50\nTotal 75.50"
			})

			It("adds the extracted expenses", func() {
				rec := uploadReceipt("Groceries")
				Expect(rec.Code).To(Equal(http.StatusCreated))

				var body struct {
					Message       string    `json:"message"`
					ExpensesAdded int       `json:"expenses_added"`
					Expenses      []Expense `json:"expenses"`
				}
				Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
				Expect(body.ExpensesAdded).To(Equal(2))
				Expect(body.Expenses[0].Description).To(Equal("Groceries - Milk"))
				Expect(body.Expenses[0].Category).To(Equal("Food"))
			})

			It("defaults the description when none is sent", func() {
				rec := uploadReceipt("")
				Expect(rec.Code).To(Equal(http.StatusCreated))
				Expect(rec.Body.String()).To(ContainSubstring("Receipt items - Milk"))
			})
		})

		When("the OCR text is unreadable", func() {
			BeforeEach(func() {
				engine.text = " "
			})

			It("returns a 400 with the failure message", func() {
				rec := uploadReceipt("Groceries")
				Expect(rec.Code).To(Equal(http.StatusBadRequest))
				Expect(rec.Body.String()).To(ContainSubstring("readable text"))
			})
		})

		When("no items can be extracted", func() {
			BeforeEach(func() {
				engine.text = "hello world this has no prices"
			})

			It("returns a 400 with the failure message", func() {
				rec := uploadReceipt("Groceries")
				Expect(rec.Code).To(Equal(http.StatusBadRequest))
				Expect(rec.Body.String()).To(ContainSubstring("no items could be extracted"))
			})
		})

		It("rejects uploads without a file", func() {
			var buf bytes.Buffer
			writer := multipart.NewWriter(&buf)
			Expect(writer.WriteField("description", "Groceries")).To(Succeed())
			Expect(writer.Close()).To(Succeed())

			req := httptest.NewRequest("POST", "/process-receipt", &buf)
			req.Header.Set("Authorization", "Bearer "+token)
			req.Header.Set("Content-Type", writer.FormDataContentType())
			Expect(do(req).Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("advisor endpoints", func() {
		var token string

		BeforeEach(func() {
			token = login("alice@example.com", "password123")
		})

		It("returns the analysis", func() {
			rec := do(authed("POST", "/analyze", nil, token))
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring("analysis report"))
		})

		It("relays the chat query", func() {
			payload := []byte(`{"query":"how much have I spent?"}`)
			rec := do(authed("POST", "/chat", payload, token))
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring("chat response"))
			Expect(responder.lastQuery).To(Equal("how much have I spent?"))
		})

		It("turns a handler panic into a 500", func() {
			responder.panicOnChat = true
			payload := []byte(`{"query":"anything"}`)
			rec := do(authed("POST", "/chat", payload, token))
			Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		})
	})
})
