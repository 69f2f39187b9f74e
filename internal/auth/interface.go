package auth

import "dossier/internal/domain/models"

// JWTVerifier validates bearer tokens from the identity provider.
type JWTVerifier interface {
	// VerifyToken validates a JWT and extracts its claims. Returns
	// domain.ErrUnauthorized for any invalid, expired or anonymous
	// token.
	VerifyToken(tokenString string) (*models.AccessClaims, error)

	// Close releases verifier resources.
	Close() error
}
