package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ErlanBelekov/invoice-console/internal/domain"
	"github.com/ErlanBelekov/invoice-console/internal/repository"
	"github.com/ErlanBelekov/invoice-console/internal/sessionctx"
)

type AccountUsecase struct {
	users  repository.UserRepository
	logger *slog.Logger
}

func NewAccountUsecase(users repository.UserRepository, logger *slog.Logger) *AccountUsecase {
	return &AccountUsecase{users: users, logger: logger.With("component", "account")}
}

// Profile loads the signed-in user.
func (u *AccountUsecase) Profile(ctx context.Context) (*domain.User, error) {
	id := sessionctx.UserID(ctx)
	if id == "" {
		return nil, domain.ErrLoggedOut
	}
	user, err := u.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return user, nil
}

// UpdateProfile saves the account form. The avatar is only replaced when a
// non-empty file was uploaded.
func (u *AccountUsecase) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.User, error) {
	if sessionctx.UserID(ctx) == "" {
		return nil, domain.ErrLoggedOut
	}
	update.Name = strings.TrimSpace(update.Name)
	if update.Avatar != nil && len(update.Avatar.Data) == 0 {
		update.Avatar = nil
	}

	user, err := u.users.UpdateProfile(ctx, update)
	if err != nil {
		return nil, err
	}
	u.logger.InfoContext(ctx, "profile updated", "avatar_changed", update.Avatar != nil)
	return user, nil
}
