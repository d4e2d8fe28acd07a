package expense

import "time"

// Flag marks an expense as a concerning or good spending choice
type Flag string

const (
	FlagNone  Flag = ""
	FlagRed   Flag = "red"
	FlagGreen Flag = "green"
)

// Valid reports whether the flag is one of the accepted values
func (f Flag) Valid() bool {
	return f == FlagRed || f == FlagGreen
}

// Expense represents a single expense record owned by a user
type Expense struct {
	ID          string    `json:"id"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Date        string    `json:"date"` // YYYY-MM-DD
	Flag        Flag      `json:"flag,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// User represents a registered account
type User struct {
	Username       string    `json:"username"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}
