package password

import "golang.org/x/crypto/bcrypt"

// Hasher is the credential-hashing capability consumed by the auth layer.
// Compare must be constant-time with respect to the clear password.
type Hasher interface {
	Hash(clear string) (string, error)
	Compare(clear, hashed string) bool
}

// BcryptHasher hashes with bcrypt. The salt is embedded in the produced hash.
type BcryptHasher struct {
	// Cost of 0 means bcrypt.DefaultCost.
	Cost int
}

func NewBcryptHasher(cost int) BcryptHasher {
	return BcryptHasher{Cost: cost}
}

func (h BcryptHasher) Hash(clear string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	out, err := bcrypt.GenerateFromPassword([]byte(clear), cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (h BcryptHasher) Compare(clear, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(clear)) == nil
}
