package auth

import "context"

// SessionVerifier verifica un token de sesión y devuelve claims o error.
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

// SessionIssuer emite un token de sesión firmado para los claims dados.
type SessionIssuer interface {
	Issue(ctx context.Context, claims Claims) (string, error)
}
