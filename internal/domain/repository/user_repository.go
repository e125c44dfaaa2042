package repository

import (
	"context"
	"errors"

	"github.com/abdulwahab5547/receiptify-api/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no user matches the given id or email.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when a create would violate email uniqueness.
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// AppendReceiptURL atomically appends one URL to the user's receipt list.
	// It must not read-modify-write the whole row; concurrent appends for
	// the same user both have to land.
	AppendReceiptURL(ctx context.Context, id, url string) error
}
