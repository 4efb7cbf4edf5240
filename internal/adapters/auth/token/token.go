package token

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"patient-portal-api/internal/ports/auth"
)

var (
	ErrBadToken      = errors.New("invalid session token")
	ErrNoSecret      = errors.New("session secret is empty")
	ErrMissingClaims = errors.New("token claims incomplete")
)

// TTL corto: el cliente guarda el token, el server no mantiene sesiones.
const DefaultTTL = 15 * time.Minute

type sessionClaims struct {
	PatientID string `json:"pid,omitempty"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// Service emite y verifica tokens HS256. Implementa auth.SessionIssuer
// y auth.SessionVerifier sobre el mismo secreto.
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func New(secret string, ttl time.Duration) (*Service, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrNoSecret
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

func (s *Service) Issue(ctx context.Context, c auth.Claims) (string, error) {
	if c.Role == "" {
		return "", ErrMissingClaims
	}
	if c.Role == auth.RolePatient && strings.TrimSpace(c.PatientID) == "" {
		return "", ErrMissingClaims
	}

	now := s.now()
	sc := sessionClaims{
		PatientID: c.PatientID,
		Role:      string(c.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, sc).SignedString(s.secret)
}

func (s *Service) Verify(ctx context.Context, raw string) (auth.Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return auth.Claims{}, ErrBadToken
	}

	tok, err := jwt.ParseWithClaims(raw, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		// bloquear confusión de algoritmos
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadToken
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil {
		return auth.Claims{}, ErrBadToken
	}

	sc, ok := tok.Claims.(*sessionClaims)
	if !ok || !tok.Valid {
		return auth.Claims{}, ErrBadToken
	}

	role := auth.Role(sc.Role)
	if role != auth.RolePatient && role != auth.RoleAdmin {
		return auth.Claims{}, ErrBadToken
	}
	if role == auth.RolePatient && sc.PatientID == "" {
		return auth.Claims{}, ErrBadToken
	}

	return auth.Claims{
		PatientID: sc.PatientID,
		Email:     sc.Subject,
		Role:      role,
	}, nil
}
