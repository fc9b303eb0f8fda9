package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/election/internal/core/domain"
	"github.com/vncsmyrnk/election/internal/core/ports"
)

type userService struct {
	users  ports.UserRepository
	tokens ports.AuthRepository
	opts   options
}

func NewUserService(users ports.UserRepository, tokens ports.AuthRepository, opts ...Option) ports.UserService {
	return &userService{
		users:  users,
		tokens: tokens,
		opts:   buildOptions(opts),
	}
}

// Profile reports the stored role, what it grants, and how many refresh
// tokens are still usable.
func (s *userService) Profile(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	sessions, err := s.tokens.CountActiveSessions(ctx, id, s.opts.now())
	if err != nil {
		return nil, fmt.Errorf("failed to count sessions: %w", err)
	}

	roles := domain.EffectiveRoles(user.Role)
	return &domain.Profile{
		User:           *user,
		Roles:          roles,
		Permissions:    domain.PermissionsFor(roles),
		ActiveSessions: sessions,
	}, nil
}
