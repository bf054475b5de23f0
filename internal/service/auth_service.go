package service

import (
	"fmt"
	"strings"

	"pdf-tools-server/internal/domain"
)

type authService struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

func NewAuthService(
	supabaseClient domain.SupabaseClient,
	logger domain.Logger,
) *authService {
	return &authService{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

// ValidateToken validates a bearer token against Supabase Auth and returns the user
func (s *authService) ValidateToken(token string) (*domain.SupabaseUser, error) {
	if strings.TrimSpace(token) == "" {
		return nil, domain.ErrInvalidToken
	}
	user, err := s.supabaseClient.ValidateToken(token)
	if err != nil {
		s.logger.Error("Failed to validate token with Supabase", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return user, nil
}
