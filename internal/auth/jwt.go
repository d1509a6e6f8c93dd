package auth

import (
	"crypto/rsa"
	"errors"
	"time"

	"identity-platform/internal/config"
	"identity-platform/internal/keys"
	"identity-platform/internal/users"

	"github.com/golang-jwt/jwt/v5"
)

// Manager encodes and decodes identity claims as RS512-signed tokens.
// The private key signs, the public key verifies; only a process holding the
// private key can mint tokens.
type Manager struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	issuer     string
	ttl        time.Duration
}

func NewManager(pair keys.Pair, cfg config.AuthConfig) (*Manager, error) {
	if pair.Private == nil || pair.Public == nil {
		return nil, errors.New("auth: key pair is required")
	}
	if cfg.Issuer == "" {
		return nil, errors.New("auth: issuer is required")
	}
	// TokenTTL is taken as-is; config validation owns the defaults. A zero
	// TTL yields tokens that expire at their issuance instant.
	return &Manager{
		privateKey: pair.Private,
		publicKey:  pair.Public,
		issuer:     cfg.Issuer,
		ttl:        cfg.TokenTTL,
	}, nil
}

// Encode signs a claim snapshot of u valid for the configured TTL from now.
func (m *Manager) Encode(u users.User, now time.Time) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   SubjectAuthorization,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		UserID:   u.ID,
		Roles:    u.Roles,
		Username: u.Login,
	}

	t := jwt.NewWithClaims(jwt.SigningMethodRS512, claims)
	return t.SignedString(m.privateKey)
}

// Decode verifies signature, issuer (exact, case-sensitive) and expiry.
//
// iat is deliberately not validated: tokens whose issued-at sits slightly in
// the future still verify, absorbing clock drift between nodes. Expiry gets
// no such leeway. Decode success means "validly signed by us for this issuer
// and not expired", nothing more; there is no revocation store to consult.
func (m *Manager) Decode(tokenString string, now time.Time) (Claims, error) {
	var claims Claims

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS512.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithIssuer(m.issuer),
		jwt.WithSubject(SubjectAuthorization),
		jwt.WithExpirationRequired(),
	)

	_, err := parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		return m.publicKey, nil
	})
	if err != nil {
		return Claims{}, err
	}

	if claims.UserID == 0 {
		return Claims{}, errors.New("user_id missing")
	}
	return claims, nil
}
