package repositories

import (
	"context"

	"github.com/postureperfect/avatar-server/domain/entities"
)

// UserRepository defines data access methods for users
type UserRepository interface {
	// Create inserts a new user. Returns entities.ErrEmailTaken when the
	// email is already registered.
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id string) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
}

// ContactRepository defines data access methods for contact-form submissions
type ContactRepository interface {
	Create(ctx context.Context, contact *entities.Contact) error
}
