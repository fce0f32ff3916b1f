package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/avela/taskboard-backend/internal/core/domain"
	"github.com/avela/taskboard-backend/internal/core/ports"
)

// UserService reads identity-provider-synced profiles. Accounts are
// created and updated upstream; this service never writes profile data.
type UserService struct {
	userRepo ports.UserRepository
	logger   *slog.Logger
}

var _ ports.UserService = (*UserService)(nil)

// NewUserService creates a new user service
func NewUserService(userRepo ports.UserRepository, logger *slog.Logger) ports.UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger.With("component", "user_service"),
	}
}

// GetProfile returns the user's profile and stamps their last activity.
// The stamp is best effort; a failed write never blocks the read.
func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.TouchLastActive(ctx, userID); err != nil {
		s.logger.Warn("failed to stamp last activity", "user_id", userID, "error", err)
	}
	return user, nil
}
