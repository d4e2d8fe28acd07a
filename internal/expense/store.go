package expense

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound indicates the requested user or expense does not exist
var ErrNotFound = errors.New("not found")

// ErrUserExists indicates a registration attempt for a taken username
var ErrUserExists = errors.New("username already registered")

// Store defines the interface for user and expense persistence
type Store interface {
	// CreateUser saves a new user; fails with ErrUserExists on duplicates
	CreateUser(user *User) error

	// GetUser retrieves a user by username
	GetUser(username string) (*User, error)

	// SaveExpense inserts or updates an expense for a user
	SaveExpense(username string, expense *Expense) error

	// GetExpense retrieves one expense by ID for a user
	GetExpense(username, id string) (*Expense, error)

	// ListExpenses returns all expenses for a user
	ListExpenses(username string) ([]*Expense, error)

	// DeleteExpense removes an expense for a user
	DeleteExpense(username, id string) error

	// Close closes the store
	Close() error
}

// MemoryStore implements Store with mutex-guarded maps. It is the default
// backing for development and mirrors the per-user in-memory layout of the
// HTTP API it serves.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]*User
	expenses map[string]map[string]*Expense
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]*User),
		expenses: make(map[string]map[string]*Expense),
	}
}

// CreateUser saves a new user
func (m *MemoryStore) CreateUser(user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.Username]; ok {
		return ErrUserExists
	}
	m.users[user.Username] = user
	m.expenses[user.Username] = make(map[string]*Expense)
	return nil
}

// GetUser retrieves a user by username
func (m *MemoryStore) GetUser(username string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[username]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", username, ErrNotFound)
	}
	return user, nil
}

// SaveExpense inserts or updates an expense for a user
func (m *MemoryStore) SaveExpense(username string, expense *Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	userExpenses, ok := m.expenses[username]
	if !ok {
		return fmt.Errorf("user %s: %w", username, ErrNotFound)
	}
	userExpenses[expense.ID] = expense
	return nil
}

// GetExpense retrieves one expense by ID for a user
func (m *MemoryStore) GetExpense(username, id string) (*Expense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	userExpenses, ok := m.expenses[username]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", username, ErrNotFound)
	}
	expense, ok := userExpenses[id]
	if !ok {
		return nil, fmt.Errorf("expense %s: %w", id, ErrNotFound)
	}
	return expense, nil
}

// ListExpenses returns all expenses for a user
func (m *MemoryStore) ListExpenses(username string) ([]*Expense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	userExpenses, ok := m.expenses[username]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", username, ErrNotFound)
	}
	expenses := make([]*Expense, 0, len(userExpenses))
	for _, e := range userExpenses {
		expenses = append(expenses, e)
	}
	return expenses, nil
}

// DeleteExpense removes an expense for a user
func (m *MemoryStore) DeleteExpense(username, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	userExpenses, ok := m.expenses[username]
	if !ok {
		return fmt.Errorf("user %s: %w", username, ErrNotFound)
	}
	if _, ok := userExpenses[id]; !ok {
		return fmt.Errorf("expense %s: %w", id, ErrNotFound)
	}
	delete(userExpenses, id)
	return nil
}

// Close closes the store
func (m *MemoryStore) Close() error {
	return nil
}
