package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/vietanh2810/raffle-api/internal/pkg/jwthelper"
)

const AdminSubject = "admin"

// AuthService exchanges the shared admin secret for a short-lived JWT.
type AuthService struct {
	secretHash []byte
	signingKey []byte
	ttl        time.Duration
}

func NewAuthService(adminSecret, signingKey string, ttl time.Duration) (*AuthService, error) {
	if adminSecret == "" {
		return nil, errors.New("admin secret is empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminSecret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("bcrypt.GenerateFromPassword -> %w", err)
	}

	return &AuthService{
		secretHash: hash,
		signingKey: []byte(signingKey),
		ttl:        ttl,
	}, nil
}

func (s *AuthService) Login(_ context.Context, token, userAgent string) (string, error) {
	if err := bcrypt.CompareHashAndPassword(s.secretHash, []byte(token)); err != nil {
		return "", ErrWrongAdminToken
	}

	signed, err := jwthelper.GenerateToken(s.signingKey, AdminSubject, userAgent, s.ttl)
	if err != nil {
		return "", fmt.Errorf("jwthelper.GenerateToken -> %w", err)
	}

	return signed, nil
}
