package expense

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const (
	userBucketName    = "users"
	expenseBucketName = "expenses"
)

// BoltStore implements the Store interface using BoltDB. Expenses live in
// one nested bucket per user under the top-level expenses bucket.
type BoltStore struct {
	db *bbolt.DB
}

// NewBoltStore creates a new BoltStore instance
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(userBucketName)); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(expenseBucketName)); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

type storedUser struct {
	Username       string    `json:"username"`
	HashedPassword string    `json:"hashed_password"`
	CreatedAt      time.Time `json:"created_at"`
}

// CreateUser saves a new user
func (b *BoltStore) CreateUser(user *User) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(userBucketName))
		if bucket.Get([]byte(user.Username)) != nil {
			return ErrUserExists
		}
		data, err := json.Marshal(storedUser{
			Username:       user.Username,
			HashedPassword: user.HashedPassword,
			CreatedAt:      user.CreatedAt,
		})
		if err != nil {
			return fmt.Errorf("marshaling user: %w", err)
		}
		if err := bucket.Put([]byte(user.Username), data); err != nil {
			return err
		}
		_, err = tx.Bucket([]byte(expenseBucketName)).CreateBucketIfNotExists([]byte(user.Username))
		return err
	})
}

// GetUser retrieves a user by username
func (b *BoltStore) GetUser(username string) (*User, error) {
	var user *User
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(userBucketName)).Get([]byte(username))
		if data == nil {
			return fmt.Errorf("user %s: %w", username, ErrNotFound)
		}
		var stored storedUser
		if err := json.Unmarshal(data, &stored); err != nil {
			return fmt.Errorf("unmarshaling user: %w", err)
		}
		user = &User{
			Username:       stored.Username,
			HashedPassword: stored.HashedPassword,
			CreatedAt:      stored.CreatedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// userExpenses returns the nested expense bucket for a user, or an error
// wrapping ErrNotFound if the user was never created.
func userExpenses(tx *bbolt.Tx, username string) (*bbolt.Bucket, error) {
	bucket := tx.Bucket([]byte(expenseBucketName)).Bucket([]byte(username))
	if bucket == nil {
		return nil, fmt.Errorf("user %s: %w", username, ErrNotFound)
	}
	return bucket, nil
}

// SaveExpense inserts or updates an expense for a user
func (b *BoltStore) SaveExpense(username string, expense *Expense) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := userExpenses(tx, username)
		if err != nil {
			return err
		}
		data, err := json.Marshal(expense)
		if err != nil {
			return fmt.Errorf("marshaling expense: %w", err)
		}
		return bucket.Put([]byte(expense.ID), data)
	})
}

// GetExpense retrieves one expense by ID for a user
func (b *BoltStore) GetExpense(username, id string) (*Expense, error) {
	var expense *Expense
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket, err := userExpenses(tx, username)
		if err != nil {
			return err
		}
		data := bucket.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("expense %s: %w", id, ErrNotFound)
		}
		return json.Unmarshal(data, &expense)
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

// ListExpenses returns all expenses for a user
func (b *BoltStore) ListExpenses(username string) ([]*Expense, error) {
	expenses := make([]*Expense, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket, err := userExpenses(tx, username)
		if err != nil {
			return err
		}
		return bucket.ForEach(func(k, v []byte) error {
			var expense Expense
			if err := json.Unmarshal(v, &expense); err != nil {
				return fmt.Errorf("unmarshaling expense: %w", err)
			}
			expenses = append(expenses, &expense)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return expenses, nil
}

// DeleteExpense removes an expense for a user
func (b *BoltStore) DeleteExpense(username, id string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := userExpenses(tx, username)
		if err != nil {
			return err
		}
		if bucket.Get([]byte(id)) == nil {
			return fmt.Errorf("expense %s: %w", id, ErrNotFound)
		}
		return bucket.Delete([]byte(id))
	})
}

// Close closes the database connection
func (b *BoltStore) Close() error {
	return b.db.Close()
}
