package repository

import (
	"context"

	"github.com/ErlanBelekov/invoice-console/internal/domain"
)

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.User, error)
}

type RegisterInput struct {
	Name      string
	Email     string
	Password1 string
	Password2 string
}

// AuthGateway covers the unauthenticated auth endpoints of the API.
type AuthGateway interface {
	Login(ctx context.Context, email, password string) (domain.TokenPair, error)
	Register(ctx context.Context, input RegisterInput) error
	Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
}
