package expense

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/brokemate/brokemate/internal/ocr"
	"github.com/brokemate/brokemate/internal/parsing"
)

// IDGenerator generates unique IDs for expenses
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

type uuidGenerator struct{}

func (g *uuidGenerator) Generate() string {
	return uuid.NewString()
}

type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// bcrypt rejects anything longer
const maxPasswordLength = 72

// Service handles user and expense operations, including the receipt
// pipeline from uploaded image to stored expenses.
type Service struct {
	store       Store
	engine      ocr.Engine
	pipeline    *parsing.Pipeline
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with UUID IDs and the real clock
func NewService(store Store, engine ocr.Engine, pipeline *parsing.Pipeline) *Service {
	return &Service{
		store:       store,
		engine:      engine,
		pipeline:    pipeline,
		idGenerator: &uuidGenerator{},
		timeSource:  &defaultTimeSource{},
	}
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(store Store, engine ocr.Engine, pipeline *parsing.Pipeline, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		store:       store,
		engine:      engine,
		pipeline:    pipeline,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// Register creates a new user with a bcrypt-hashed password
func (s *Service) Register(username, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if password == "" {
		return nil, fmt.Errorf("password is required")
	}
	if len(password) > maxPasswordLength {
		password = password[:maxPasswordLength]
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &User{
		Username:       username,
		HashedPassword: string(hashed),
		CreatedAt:      s.timeSource.Now(),
	}
	if err := s.store.CreateUser(user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return user, nil
}

// DemoUsername is the account SeedDemo creates, with password "password123".
const DemoUsername = "user@example.com"

const demoPassword = "password123"

// SeedDemo creates a demo account with a few sample expenses so the API is
// explorable out of the box. Does nothing if the account already exists.
func (s *Service) SeedDemo() error {
	if _, err := s.Register(DemoUsername, demoPassword); err != nil {
		if errors.Is(err, ErrUserExists) {
			return nil
		}
		return fmt.Errorf("seeding demo user: %w", err)
	}

	today := s.timeSource.Now().UTC()
	samples := []struct {
		amount      float64
		category    string
		description string
		daysAgo     int
		flag        Flag
	}{
		{250.00, "Food", "Lunch with colleagues", 1, FlagNone},
		{1200.50, "Shopping", "New headphones", 2, FlagRed},
		{150.00, "Transport", "Metro card recharge", 3, FlagGreen},
	}
	for _, sample := range samples {
		date := today.AddDate(0, 0, -sample.daysAgo).Format("2006-01-02")
		expense, err := s.AddExpense(DemoUsername, sample.amount, sample.category, sample.description, date)
		if err != nil {
			return fmt.Errorf("seeding demo expense: %w", err)
		}
		if sample.flag != FlagNone {
			if _, err := s.FlagExpense(DemoUsername, expense.ID, sample.flag); err != nil {
				return fmt.Errorf("flagging demo expense: %w", err)
			}
		}
	}
	return nil
}

// Authenticate checks a username/password pair and returns the user
func (s *Service) Authenticate(username, password string) (*User, error) {
	user, err := s.store.GetUser(username)
	if err != nil {
		return nil, fmt.Errorf("incorrect username or password")
	}
	if len(password) > maxPasswordLength {
		password = password[:maxPasswordLength]
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, fmt.Errorf("incorrect username or password")
	}
	return user, nil
}

// validateExpenseInput checks the fields shared by add and edit
func validateExpenseInput(amount float64, category, date string) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}
	if strings.TrimSpace(category) == "" {
		return fmt.Errorf("category is required")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}
	return nil
}

// AddExpense records a new expense for a user
func (s *Service) AddExpense(username string, amount float64, category, description, date string) (*Expense, error) {
	if err := validateExpenseInput(amount, category, date); err != nil {
		return nil, err
	}

	now := s.timeSource.Now()
	expense := &Expense{
		ID:          s.idGenerator.Generate(),
		Amount:      amount,
		Category:    category,
		Description: description,
		Date:        date,
		Flag:        FlagNone,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.SaveExpense(username, expense); err != nil {
		return nil, fmt.Errorf("saving expense: %w", err)
	}
	return expense, nil
}

// ListExpenses returns a user's expenses, newest date first
func (s *Service) ListExpenses(username string) ([]*Expense, error) {
	expenses, err := s.store.ListExpenses(username)
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}
	// ISO dates sort lexicographically; creation time breaks ties
	sort.Slice(expenses, func(i, j int) bool {
		if expenses[i].Date != expenses[j].Date {
			return expenses[i].Date > expenses[j].Date
		}
		return expenses[i].CreatedAt.After(expenses[j].CreatedAt)
	})
	return expenses, nil
}

// EditExpense updates an existing expense's fields
func (s *Service) EditExpense(username, id string, amount float64, category, description, date string) (*Expense, error) {
	if err := validateExpenseInput(amount, category, date); err != nil {
		return nil, err
	}

	expense, err := s.store.GetExpense(username, id)
	if err != nil {
		return nil, fmt.Errorf("getting expense: %w", err)
	}

	expense.Amount = amount
	expense.Category = category
	expense.Description = description
	expense.Date = date
	expense.UpdatedAt = s.timeSource.Now()

	if err := s.store.SaveExpense(username, expense); err != nil {
		return nil, fmt.Errorf("updating expense: %w", err)
	}
	return expense, nil
}

// FlagExpense marks an expense as a red or green spending choice
func (s *Service) FlagExpense(username, id string, flag Flag) (*Expense, error) {
	if !flag.Valid() {
		return nil, fmt.Errorf("flag must be %q or %q", FlagRed, FlagGreen)
	}

	expense, err := s.store.GetExpense(username, id)
	if err != nil {
		return nil, fmt.Errorf("getting expense: %w", err)
	}

	expense.Flag = flag
	expense.UpdatedAt = s.timeSource.Now()

	if err := s.store.SaveExpense(username, expense); err != nil {
		return nil, fmt.Errorf("updating expense: %w", err)
	}
	return expense, nil
}

// DeleteExpense removes an expense
func (s *Service) DeleteExpense(username, id string) error {
	if err := s.store.DeleteExpense(username, id); err != nil {
		return fmt.Errorf("deleting expense: %w", err)
	}
	return nil
}

// ProcessReceipt runs OCR over an uploaded receipt image, extracts and
// categorizes the items, and stores one expense per item. The pipeline's
// two failure modes pass through unwrapped so callers can tell them apart.
func (s *Service) ProcessReceipt(ctx context.Context, username string, imageData []byte, contentType, description string) ([]*Expense, error) {
	rawText, err := s.engine.ExtractText(imageData, contentType)
	if err != nil {
		slog.Error("Failed to extract text from receipt",
			"content_type", contentType,
			"file_size", len(imageData),
			"error", err,
		)
		return nil, fmt.Errorf("extracting text: %w", err)
	}

	categorized, err := s.pipeline.Process(ctx, rawText, description)
	if err != nil {
		return nil, err
	}

	now := s.timeSource.Now()
	expenses := make([]*Expense, 0, len(categorized))
	for _, c := range categorized {
		expense := &Expense{
			ID:          s.idGenerator.Generate(),
			Amount:      c.Amount,
			Category:    string(c.Category),
			Description: c.Description,
			Date:        c.Date,
			Flag:        FlagNone,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.store.SaveExpense(username, expense); err != nil {
			return nil, fmt.Errorf("saving expense: %w", err)
		}
		expenses = append(expenses, expense)
	}

	slog.Info("Processed receipt", "user", username, "expenses_added", len(expenses))
	return expenses, nil
}
