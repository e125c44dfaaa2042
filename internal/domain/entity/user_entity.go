package entity

import (
	"time"
)

// User is the aggregate root for the account domain.
// PasswordHash holds a bcrypt hash; the plaintext credential never leaves
// the signup/login request scope.
//
// ReceiptURLs is append-only: uploads add one URL per success and nothing
// in this service removes entries.
type User struct {
	ID            string
	FirstName     string
	LastName      string
	Email         string
	PasswordHash  string
	CompanyName   string
	CompanySlogan string
	ReceiptURLs   []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
